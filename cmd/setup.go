package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tripcost/travelcost/internal/config"
	"github.com/tripcost/travelcost/internal/monitoring"
	"github.com/tripcost/travelcost/internal/pricing"
	"github.com/tripcost/travelcost/internal/travelcost"
)

// loadEnvFiles loads .env from the working directory and the user config
// directory. Variables already set in the environment win.
func loadEnvFiles() {
	_ = godotenv.Load(".env")
	if dir := getConfigDir(); dir != "" {
		_ = godotenv.Load(filepath.Join(dir, ".env"))
	}
}

// getConfigDir returns ~/.config/travelcost
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "travelcost")
}

// loadConfig reads the config at path, falling back to $TRAVELCOST_CONFIG
// and then to the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("TRAVELCOST_CONFIG")
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// loadTable opens the price table the config points at.
func loadTable(ctx context.Context, cfg *config.Config) (*pricing.Table, error) {
	var opts []pricing.TableOption
	if cfg.Pricing.DefaultFlightCost > 0 {
		opts = append(opts, pricing.WithDefaultFlightCost(cfg.Pricing.DefaultFlightCost))
	}
	return pricing.Open(ctx, cfg.Pricing.Source, cfg.Pricing.Path, opts...)
}

func newService(ctx context.Context, cfg *config.Config) (*travelcost.Service, error) {
	table, err := loadTable(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return travelcost.NewService(table, cfg.CostControl, travelcost.WithPriceCurrency(cfg.Pricing.PriceCurrency)), nil
}

// setupCLILogger keeps one-shot commands quiet unless the config asks for
// warnings or worse.
func setupCLILogger(cfg *config.Config) {
	lc := cfg.Monitoring.Logger()
	switch strings.ToLower(lc.Level) {
	case "", "trace", "debug", "info":
		lc.Level = "warn"
	}
	if lc.Output == "stdout" {
		lc.Output = "stderr"
	}
	_, _ = monitoring.SetupLogger(lc)
}
