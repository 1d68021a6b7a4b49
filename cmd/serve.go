package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/tripcost/travelcost/internal/config"
	"github.com/tripcost/travelcost/internal/mcp"
	"github.com/tripcost/travelcost/internal/monitoring"
	"github.com/tripcost/travelcost/internal/server"
)

// runServeCommand runs the HTTP API until SIGINT or SIGTERM.
func runServeCommand(args []string, stdout, stderr io.Writer) int {
	p := newPrinter(stderr)
	opts, err := parseOptions(args, commonFlags|serveFlags)
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}
	if len(opts.positional) > 0 {
		p.errorf("serve takes no arguments, got %q", opts.positional[0])
		return exitError
	}

	loadEnvFiles()
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		p.errorf("failed to load config: %v", err)
		return exitError
	}
	if opts.port != 0 {
		if opts.port < 1 || opts.port > 65535 {
			p.errorf("invalid port '%d'", opts.port)
			return exitError
		}
		cfg.Server.Port = opts.port
	}
	if opts.debug {
		cfg.Monitoring.LogLevel = "debug"
	}

	closer, err := monitoring.SetupLogger(cfg.Monitoring.Logger())
	if err != nil {
		p.errorf("failed to set up logging: %v", err)
		return exitError
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Str("source", cfg.Pricing.Source).Msg("failed to load price table")
		return exitError
	}

	tracker, err := monitoring.NewTracker(cfg.Monitoring.Telemetry())
	if err != nil {
		log.Error().Err(err).Msg("failed to create telemetry tracker")
		return exitError
	}

	srv := server.New(cfg, svc, server.WithTracker(tracker), server.WithVersion(Version))
	fmt.Fprintf(stdout, "travelcost %s listening on :%d\n", Version, cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
			return exitError
		}
		return exitOK
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
		return exitError
	}
	return exitOK
}

// runMCPCommand serves MCP over stdin/stdout until EOF or a signal.
// Logs always go to stderr since stdout carries the protocol.
func runMCPCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	p := newPrinter(stderr)
	opts, err := parseOptions(args, commonFlags)
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}

	loadEnvFiles()
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		p.errorf("failed to load config: %v", err)
		return exitError
	}
	if cfg.Monitoring.LogOutput == "" || cfg.Monitoring.LogOutput == "stdout" {
		cfg.Monitoring.LogOutput = "stderr"
	}
	cfg.Monitoring.LogToStdout = false

	closer, err := monitoring.SetupLogger(cfg.Monitoring.Logger())
	if err != nil {
		p.errorf("failed to set up logging: %v", err)
		return exitError
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Str("source", cfg.Pricing.Source).Msg("failed to load price table")
		return exitError
	}

	tracker, err := monitoring.NewTracker(cfg.Monitoring.Telemetry())
	if err != nil {
		log.Error().Err(err).Msg("failed to create telemetry tracker")
		return exitError
	}
	defer func() { _ = tracker.Close() }()

	recorder := &monitoring.Recorder{Metrics: monitoring.NewMetricsCollector(), Tracker: tracker}
	srv := mcp.NewServer(svc, mcp.WithRecorder(recorder), mcp.WithVersion(Version))

	log.Info().Int("destinations", len(svc.Destinations())).Msg("mcp server ready on stdio")
	if err := srv.ServeStdio(ctx, stdin, stdout); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("mcp server failed")
		return exitError
	}
	return exitOK
}
