// Package monitoring - telemetry.go records events to JSONL files.
//
// DESIGN: Tracker writes structured events as JSONL (one JSON object per line):
//   - ToolEvent: Every calculation, from HTTP, MCP or the CLI
//   - InitEvent: Server startup configuration (init.jsonl next to the log)
//
// Events are appended to files immediately after each event for real-time logging.
package monitoring

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Tracker handles telemetry event recording to file and stdout.
type Tracker struct {
	config      TelemetryConfig
	toolLogPath string
	initLogPath string
	toolCount   int
	mu          sync.Mutex
}

// NewTracker creates a new telemetry tracker.
func NewTracker(cfg TelemetryConfig) (*Tracker, error) {
	t := &Tracker{
		config: cfg,
	}

	if !cfg.Enabled || cfg.LogPath == "" {
		return t, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0750); err != nil {
		return nil, err
	}
	t.toolLogPath = cfg.LogPath
	t.initLogPath = filepath.Join(filepath.Dir(cfg.LogPath), "init.jsonl")
	for _, path := range []string{t.toolLogPath, t.initLogPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if f, err := os.Create(path); err == nil { // #nosec G304 -- path from config
				_ = f.Close()
			}
		}
	}

	return t, nil
}

// appendJSONL appends a single JSON object as a line to the file.
func appendJSONL(path string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) // #nosec G304 -- path from config
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = f.Write(data)
	return err
}

// RecordTool records a tool call event. A nil Tracker records nothing.
func (t *Tracker) RecordTool(event *ToolEvent) {
	if t == nil || !t.config.Enabled || event == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.config.LogToStdout {
		reqID := event.RequestID
		if len(reqID) > 8 {
			reqID = reqID[:8]
		}
		log.Info().
			Str("request_id", reqID).
			Str("transport", string(event.Transport)).
			Str("tool", event.Tool).
			Str("outcome", string(event.Outcome)).
			Int64("latency_ms", event.LatencyMs).
			Msg("telemetry")
	}

	if t.toolLogPath != "" {
		if err := appendJSONL(t.toolLogPath, event); err != nil {
			log.Error().Err(err).Str("path", t.toolLogPath).Msg("telemetry: failed to write tool event")
		} else {
			t.toolCount++
		}
	}
}

// RecordInit records a server initialization event to a dedicated init JSONL.
func (t *Tracker) RecordInit(event *InitEvent) {
	if t == nil || !t.config.Enabled || t.initLogPath == "" || event == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := appendJSONL(t.initLogPath, event); err != nil {
		log.Error().Err(err).Str("path", t.initLogPath).Msg("telemetry: failed to write init event")
	}
}

// Close logs a summary of the session.
func (t *Tracker) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.toolLogPath != "" && t.toolCount > 0 {
		log.Info().
			Str("path", t.toolLogPath).
			Int("events", t.toolCount).
			Msg("telemetry: session complete")
	}

	return nil
}
