package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tripcost/travelcost/internal/pricing"
)

// runExportCommand writes the configured price table to a new SQLite
// database, ready for pricing.source: sqlite.
func runExportCommand(args []string, stdout, stderr io.Writer) int {
	p := newPrinter(stderr)
	opts, err := parseOptions(args, commonFlags)
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}
	if len(opts.positional) != 1 {
		p.errorf("usage: travelcost export-sqlite FILE [-c CONFIG]")
		return exitError
	}
	path := opts.positional[0]
	if _, err := os.Stat(path); err == nil {
		p.errorf("%s already exists", path)
		return exitError
	}

	loadEnvFiles()
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		p.errorf("failed to load config: %v", err)
		return exitError
	}
	setupCLILogger(cfg)

	ctx := context.Background()
	table, err := loadTable(ctx, cfg)
	if err != nil {
		p.errorf("failed to load price table: %v", err)
		return exitError
	}
	if err := pricing.ExportSQLite(ctx, path, table); err != nil {
		p.errorf("export failed: %v", err)
		return exitError
	}

	newPrinter(stdout).success(fmt.Sprintf("wrote %d destinations to %s", table.Len(), path))
	return exitOK
}
