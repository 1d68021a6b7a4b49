// Package server is the HTTP front door of the cost calculators.
//
// DESIGN: One http.ServeMux carries three groups of routes:
//   - /api/*:          JSON API over travelcost.Service
//   - /mcp, /mcp/ws:   MCP transports (internal/mcp)
//   - /stats, /prices: operator pages, loopback only
//
// Every route runs behind the same middleware chain:
// recover -> request ID -> log -> security headers -> CORS -> rate limit -> body limit.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tripcost/travelcost/internal/config"
	"github.com/tripcost/travelcost/internal/mcp"
	"github.com/tripcost/travelcost/internal/monitoring"
	"github.com/tripcost/travelcost/internal/travelcost"
)

// Server serves the HTTP API.
type Server struct {
	cfg        *config.Config
	svc        *travelcost.Service
	mcp        *mcp.Server
	metrics    *monitoring.MetricsCollector
	tracker    *monitoring.Tracker
	recorder   *monitoring.Recorder
	limiter    *RateLimiter
	httpServer *http.Server
	handler    http.Handler
	version    string
}

// Option configures a Server.
type Option func(*Server)

// WithTracker records tool calls to telemetry.
func WithTracker(t *monitoring.Tracker) Option {
	return func(s *Server) { s.tracker = t }
}

// WithVersion sets the version reported by /health and MCP initialize.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New wires a server. The listener is not opened until Start.
func New(cfg *config.Config, svc *travelcost.Service, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		svc:     svc,
		metrics: monitoring.NewMetricsCollector(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recorder = &monitoring.Recorder{Metrics: s.metrics, Tracker: s.tracker}
	s.mcp = mcp.NewServer(svc, mcp.WithRecorder(s.recorder), mcp.WithVersion(s.version))

	rate := cfg.Server.RateLimit
	if rate == 0 {
		rate = config.DefaultRateLimit
	}
	if rate > 0 {
		s.limiter = NewRateLimiter(rate, time.Second, config.MaxRateLimitBuckets)
	}

	s.handler = s.middleware(s.routes())
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/tools", s.handleTools)
	mux.HandleFunc("GET /api/destinations", s.handleDestinations)
	mux.HandleFunc("POST /api/calculate-cost", s.handleCalculateCost)
	mux.HandleFunc("GET /api/destination/{destination}", s.handleDestinationInfo)
	mux.HandleFunc("POST /api/compare-destinations", s.handleCompare)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /prices", s.handlePrices)
	mux.Handle("POST /mcp", s.mcp.HTTPHandler())
	mux.Handle("GET /mcp/ws", s.mcp.WebSocketHandler(s.cfg.Server.CORSOrigins))
	return mux
}

// Handler returns the full handler chain, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// Metrics returns the server's counters.
func (s *Server) Metrics() *monitoring.MetricsCollector { return s.metrics }

// Start listens on the configured port and blocks until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln and blocks until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	log.Info().
		Str("addr", ln.Addr().String()).
		Int("destinations", len(s.svc.Destinations())).
		Msg("travelcost server listening")

	s.tracker.RecordInit(&monitoring.InitEvent{
		Timestamp:            time.Now(),
		Event:                "server_init",
		ServerPort:           s.cfg.Server.Port,
		ServerReadTimeoutMs:  s.cfg.Server.ReadTimeout.Milliseconds(),
		ServerWriteTimeoutMs: s.cfg.Server.WriteTimeout.Milliseconds(),
		PricingSource:        s.cfg.Pricing.Source,
		Destinations:         len(s.svc.Destinations()),
		BudgetUnit:           s.svc.BudgetUnit(),
		RateLimit:            s.cfg.Server.RateLimit,
	})

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	err := s.httpServer.Shutdown(ctx)
	if s.tracker != nil {
		_ = s.tracker.Close()
	}
	return err
}
