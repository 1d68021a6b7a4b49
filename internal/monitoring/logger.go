// Package monitoring - logger.go configures the global zerolog logger.
package monitoring

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogger points the global logger at cfg.Output and returns a closer
// for the underlying file, if any. Console format is colored only when the
// output is a terminal. An empty Format picks console on a terminal and
// json otherwise.
func SetupLogger(cfg LoggerConfig) (io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = l
	}

	var (
		out    *os.File
		closer io.Closer = nopCloser{}
	)
	switch cfg.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 -- path from config
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.Output, err)
		}
		out, closer = f, f
	}

	isTTY := term.IsTerminal(int(out.Fd()))
	format := cfg.Format
	if format == "" {
		format = "json"
		if isTTY {
			format = "console"
		}
	}

	log.Logger = NewLogger(out, format, !isTTY).Level(level)
	zerolog.SetGlobalLevel(level)
	return closer, nil
}

// NewLogger builds a logger writing to w in json or console format.
func NewLogger(w io.Writer, format string, noColor bool) zerolog.Logger {
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: noColor}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}
