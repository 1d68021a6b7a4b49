package mcp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tripcost/travelcost/internal/monitoring"
)

// maxMessageSize bounds one JSON-RPC message on every transport.
const maxMessageSize = 1 << 20

// SessionHeader carries the session ID assigned on initialize.
const SessionHeader = "Mcp-Session-Id"

// ServeStdio reads newline-delimited messages from r and writes responses
// to w until r is exhausted or ctx is cancelled. Cancellation returns at
// once; a read still blocked on r is abandoned and its line discarded.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
		for sc.Scan() {
			line := bytes.Clone(bytes.TrimSpace(sc.Bytes()))
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
		readErr <- sc.Err()
	}()

	bw := bufio.NewWriter(w)
	for {
		var line []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("failed to read message: %w", err)
			}
			return nil
		case line = <-lines:
		}

		resp := s.HandleMessage(monitoring.WithRequestID(ctx, uuid.NewString()), monitoring.TransportMCPStdio, line)
		if resp == nil {
			continue
		}
		if _, err := bw.Write(append(resp, '\n')); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("failed to flush response: %w", err)
		}
	}
}

// HTTPHandler serves one JSON-RPC message per POST. Notifications get 202
// with no body.
func (s *Server) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageSize+1))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		if len(body) > maxMessageSize {
			http.Error(w, "message too large", http.StatusRequestEntityTooLarge)
			return
		}

		resp := s.HandleMessage(r.Context(), monitoring.TransportMCPHTTP, body)
		if resp == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		if isInitialize(body) {
			w.Header().Set(SessionHeader, uuid.NewString())
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(resp)
	})
}

// WebSocketHandler upgrades the connection and serves one message per
// text frame until the client disconnects.
func (s *Server) WebSocketHandler(originPatterns []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"mcp"},
			OriginPatterns: originPatterns,
		})
		if err != nil {
			log.Warn().Err(err).Msg("mcp: websocket upgrade failed")
			return
		}
		defer func() { _ = conn.CloseNow() }()
		conn.SetReadLimit(maxMessageSize)

		ctx := r.Context()
		sessionID := uuid.NewString()
		log.Debug().Str("session_id", sessionID).Msg("mcp: websocket connected")

		for {
			typ, data, err := conn.Read(ctx)
			if err != nil {
				status := websocket.CloseStatus(err)
				if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
					log.Debug().Err(err).Str("session_id", sessionID).Msg("mcp: websocket closed")
				}
				return
			}
			if typ != websocket.MessageText {
				_ = conn.Close(websocket.StatusUnsupportedData, "text frames only")
				return
			}

			resp := s.HandleMessage(monitoring.WithRequestID(ctx, uuid.NewString()), monitoring.TransportMCPWS, data)
			if resp == nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, resp); err != nil {
				log.Debug().Err(err).Str("session_id", sessionID).Msg("mcp: websocket write failed")
				return
			}
		}
	})
}

func isInitialize(body []byte) bool {
	req, rpcErr := parseRequest(body)
	return rpcErr == nil && req.method == MethodInitialize
}
