// Package monitoring - types.go defines shared types.
//
// DESIGN: These types are used by server/, mcp/ and monitoring/ packages.
// Defined here ONCE to avoid duplication and circular imports.
//
// TYPES:
//   - Transport:   Which front door a tool call came through
//   - Outcome:     How a tool call ended
//   - ToolEvent:   Telemetry data for each tool call
//   - Config types: TelemetryConfig, LoggerConfig
package monitoring

import "time"

// =============================================================================
// TRANSPORTS AND OUTCOMES
// =============================================================================

// Transport identifies the entry point of a tool call.
type Transport string

const (
	TransportHTTP     Transport = "http"
	TransportMCPHTTP  Transport = "mcp_http"
	TransportMCPWS    Transport = "mcp_ws"
	TransportMCPStdio Transport = "mcp_stdio"
)

// Outcome classifies the result of a tool call.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeInfeasible  Outcome = "infeasible"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeUnsupported Outcome = "unsupported"
	OutcomeError       Outcome = "error"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// ToolEvent captures one calculation, whatever the transport.
type ToolEvent struct {
	RequestID   string    `json:"request_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Transport   Transport `json:"transport"`
	Tool        string    `json:"tool"`
	Destination string    `json:"destination,omitempty"`
	Mode        string    `json:"mode,omitempty"` // fixed_tier or budget
	Outcome     Outcome   `json:"outcome"`
	Error       string    `json:"error,omitempty"`
	GrandTotal  int64     `json:"grand_total,omitempty"`
	LatencyMs   int64     `json:"latency_ms"`
}

// InitEvent captures server startup configuration.
type InitEvent struct {
	Timestamp            time.Time `json:"timestamp"`
	Event                string    `json:"event"`
	ServerPort           int       `json:"server_port"`
	ServerReadTimeoutMs  int64     `json:"server_read_timeout_ms"`
	ServerWriteTimeoutMs int64     `json:"server_write_timeout_ms"`
	PricingSource        string    `json:"pricing_source"`
	Destinations         int       `json:"destinations"`
	BudgetUnit           int64     `json:"budget_unit"`
	RateLimit            int       `json:"rate_limit"`
}

// =============================================================================
// CONFIG TYPES
// =============================================================================

// TelemetryConfig contains telemetry configuration.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	LogPath     string `yaml:"log_path"`
	LogToStdout bool   `yaml:"log_to_stdout"`
}

// LoggerConfig contains logging configuration.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	Output string `yaml:"output"` // stdout, stderr, or file path
}
