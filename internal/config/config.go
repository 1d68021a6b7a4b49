// Package config loads the travelcost configuration.
//
// DESIGN: One YAML file, four sections:
//   - server:       listen port, timeouts, CORS, rate limit
//   - pricing:      where the price table comes from
//   - cost_control: budget unit arithmetic
//   - monitoring:   logging and telemetry
//
// ${VAR} and ${VAR:-default} references are expanded before parsing, so
// secrets and per-host values stay in the environment (or a .env file).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tripcost/travelcost/internal/costcontrol"
	"github.com/tripcost/travelcost/internal/monitoring"
)

// Price table sources.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceSQLite   = "sqlite"
)

// Config is the root configuration.
type Config struct {
	Server      ServerConfig                  `yaml:"server"`
	Pricing     PricingConfig                 `yaml:"pricing"`
	CostControl costcontrol.CostControlConfig `yaml:"cost_control"`
	Monitoring  MonitoringConfig              `yaml:"monitoring"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins"` // empty = allow any origin
	RateLimit    int           `yaml:"rate_limit"`   // requests per second per IP, 0 = DefaultRateLimit, <0 = off
}

// PricingConfig selects the price table.
type PricingConfig struct {
	Source            string `yaml:"source"`              // embedded, file, sqlite
	Path              string `yaml:"path"`                // YAML file or SQLite database for file/sqlite
	DefaultFlightCost int64  `yaml:"default_flight_cost"` // used when a destination has none
	PriceCurrency     string `yaml:"price_currency"`      // label printed after amounts
}

// MonitoringConfig configures logging and telemetry.
type MonitoringConfig struct {
	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"`
	LogOutput        string `yaml:"log_output"`
	TelemetryEnabled bool   `yaml:"telemetry_enabled"`
	TelemetryPath    string `yaml:"telemetry_path"`
	LogToStdout      bool   `yaml:"log_to_stdout"`
}

// Logger returns the logger settings.
func (m MonitoringConfig) Logger() monitoring.LoggerConfig {
	return monitoring.LoggerConfig{Level: m.LogLevel, Format: m.LogFormat, Output: m.LogOutput}
}

// Telemetry returns the telemetry settings.
func (m MonitoringConfig) Telemetry() monitoring.TelemetryConfig {
	return monitoring.TelemetryConfig{
		Enabled:     m.TelemetryEnabled,
		LogPath:     m.TelemetryPath,
		LogToStdout: m.LogToStdout,
	}
}

// Default returns a configuration that serves the embedded price table.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         DefaultPort,
			ReadTimeout:  DefaultServerReadTimeout,
			WriteTimeout: DefaultServerWriteTimeout,
			RateLimit:    DefaultRateLimit,
		},
		Pricing: PricingConfig{
			Source:        SourceEmbedded,
			PriceCurrency: DefaultPriceCurrency,
		},
		Monitoring: MonitoringConfig{
			LogLevel:  "info",
			LogFormat: "console",
			LogOutput: "stderr",
		},
	}
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the -c flag
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses YAML over Default(), expands env references and
// validates the result.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader([]byte(ExpandEnvWithDefaults(string(data)))))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// ExpandEnvWithDefaults replaces ${VAR} and ${VAR:-default}. An unset or
// empty VAR takes the default (or "" without one).
func ExpandEnvWithDefaults(s string) string {
	return envRefPattern.ReplaceAllStringFunc(s, func(ref string) string {
		m := envRefPattern.FindStringSubmatch(ref)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		return m[3]
	})
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Pricing.Validate(); err != nil {
		return err
	}
	if err := c.CostControl.Validate(); err != nil {
		return err
	}
	return c.Monitoring.Validate()
}

// Validate checks server configuration.
func (s *ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", s.Port)
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	for _, o := range s.CORSOrigins {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("server.cors_origins must not contain empty entries")
		}
	}
	return nil
}

// Validate checks pricing configuration.
func (p *PricingConfig) Validate() error {
	switch p.Source {
	case "", SourceEmbedded:
	case SourceFile, SourceSQLite:
		if strings.TrimSpace(p.Path) == "" {
			return fmt.Errorf("pricing.path is required for source %q", p.Source)
		}
	default:
		return fmt.Errorf("pricing.source must be one of embedded, file, sqlite, got %q", p.Source)
	}
	if p.DefaultFlightCost < 0 {
		return fmt.Errorf("pricing.default_flight_cost must be >= 0, got %d", p.DefaultFlightCost)
	}
	return nil
}

// Validate checks monitoring configuration.
func (m *MonitoringConfig) Validate() error {
	switch strings.ToLower(m.LogLevel) {
	case "", "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("monitoring.log_level %q is not a valid level", m.LogLevel)
	}
	switch m.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("monitoring.log_format must be json or console, got %q", m.LogFormat)
	}
	if m.TelemetryEnabled && m.TelemetryPath == "" && !m.LogToStdout {
		return fmt.Errorf("monitoring.telemetry_path is required when telemetry is enabled")
	}
	return nil
}
