package pricing

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/destinations.yaml
var defaultTableYAML []byte

// tableFile is the on-disk YAML layout.
type tableFile struct {
	Destinations []DestinationProfile `yaml:"destinations"`
}

// Default builds the table shipped with the binary.
func Default(opts ...TableOption) (*Table, error) {
	return Parse(defaultTableYAML, opts...)
}

// Parse builds a table from YAML. Unknown fields are rejected so typos in a
// price file fail loudly instead of silently pricing at zero.
func Parse(data []byte, opts ...TableOption) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f tableFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("price table is empty")
		}
		return nil, fmt.Errorf("failed to parse price table: %w", err)
	}
	return NewTable(f.Destinations, opts...)
}

// LoadFile reads a YAML price table from disk.
func LoadFile(path string, opts ...TableOption) (*Table, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- trusted config paths
	if err != nil {
		return nil, fmt.Errorf("failed to read price table %s: %w", path, err)
	}
	return Parse(data, opts...)
}

// Open builds a table from a configured source: "embedded" (or ""), "file"
// for a YAML file, or "sqlite" for a database written by ExportSQLite.
func Open(ctx context.Context, source, path string, opts ...TableOption) (*Table, error) {
	switch source {
	case "", "embedded":
		return Default(opts...)
	case "file":
		return LoadFile(path, opts...)
	case "sqlite":
		return LoadSQLite(ctx, path, opts...)
	default:
		return nil, fmt.Errorf("unknown price table source %q", source)
	}
}
