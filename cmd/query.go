package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tripcost/travelcost/internal/costclient"
	"github.com/tripcost/travelcost/internal/costcontrol"
	"github.com/tripcost/travelcost/internal/pricing"
	"github.com/tripcost/travelcost/internal/travelcost"
)

// infeasibleResult is what --json prints for a budget that cannot cover
// the trip, matching the MCP structured result.
type infeasibleResult struct {
	Feasible bool `json:"feasible"`
	*costcontrol.InfeasibleBudgetError
}

// reportError prints a query failure and returns its exit code.
func reportError(stdout, stderr io.Writer, jsonOut bool, err error) int {
	var ie *infeasibleError
	if errors.As(err, &ie) {
		if werr := writeResult(stdout, jsonOut, ie.Text, infeasibleResult{InfeasibleBudgetError: ie.Detail}); werr != nil {
			newPrinter(stderr).errorf("%v", werr)
			return exitError
		}
		return exitInfeasible
	}
	newPrinter(stderr).errorf("%v", err)
	return exitError
}

// runQuoteCommand estimates a trip at a fixed tier, or plans one within
// --budget units.
func runQuoteCommand(args []string, stdout, stderr io.Writer) int {
	p := newPrinter(stderr)
	opts, err := parseOptions(args, commonFlags|remoteFlags|quoteFlags)
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}
	if len(opts.positional) != 2 {
		p.errorf("usage: travelcost quote DEST DAYS [OPTIONS]")
		return exitError
	}
	days, err := parseDays(opts.positional[1])
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}

	req := travelcost.CalculateRequest{
		Destination:       opts.positional[0],
		Days:              days,
		BudgetLevel:       opts.level,
		Travelers:         opts.travelers,
		AccommodationType: opts.lodging,
		TotalBudget:       opts.budget,
		SpendingLevel:     opts.spending,
	}
	if !req.BudgetMode() && req.BudgetLevel == "" {
		req.BudgetLevel = string(pricing.TierMid)
	}

	loadEnvFiles()
	ctx := context.Background()
	b, err := openBackend(ctx, opts)
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}

	r, err := b.CalculateCost(ctx, req)
	if err != nil {
		return reportError(stdout, stderr, opts.jsonOut, err)
	}
	if err := writeResult(stdout, opts.jsonOut, r.Text, r.Result); err != nil {
		p.errorf("%v", err)
		return exitError
	}
	return exitOK
}

// runCompareCommand ranks destinations by total cost.
func runCompareCommand(args []string, stdout, stderr io.Writer) int {
	p := newPrinter(stderr)
	opts, err := parseOptions(args, commonFlags|remoteFlags|quoteFlags)
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}
	if len(opts.positional) < 2 {
		p.errorf("usage: travelcost compare DAYS DEST... [OPTIONS]")
		return exitError
	}
	days, err := parseDays(opts.positional[0])
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}
	level := opts.level
	if level == "" {
		level = string(pricing.TierMid)
	}

	loadEnvFiles()
	ctx := context.Background()
	b, err := openBackend(ctx, opts)
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}

	r, err := b.CompareDestinations(ctx, opts.positional[1:], days, level)
	if err != nil {
		return reportError(stdout, stderr, opts.jsonOut, err)
	}
	if err := writeResult(stdout, opts.jsonOut, r.Text, r.Result); err != nil {
		p.errorf("%v", err)
		return exitError
	}
	return exitOK
}

// runInfoCommand prints every price of one destination.
func runInfoCommand(args []string, stdout, stderr io.Writer) int {
	p := newPrinter(stderr)
	opts, err := parseOptions(args, commonFlags|remoteFlags)
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}
	if len(opts.positional) == 0 {
		p.errorf("usage: travelcost info DEST [OPTIONS]")
		return exitError
	}

	loadEnvFiles()
	ctx := context.Background()
	b, err := openBackend(ctx, opts)
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}

	r, err := b.DestinationInfo(ctx, strings.Join(opts.positional, " "))
	if err != nil {
		return reportError(stdout, stderr, opts.jsonOut, err)
	}
	if err := writeResult(stdout, opts.jsonOut, r.Text, r.Result); err != nil {
		p.errorf("%v", err)
		return exitError
	}
	return exitOK
}

// runDestinationsCommand lists the supported destinations.
func runDestinationsCommand(args []string, stdout, stderr io.Writer) int {
	p := newPrinter(stderr)
	opts, err := parseOptions(args, commonFlags|remoteFlags)
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}

	loadEnvFiles()
	ctx := context.Background()
	b, err := openBackend(ctx, opts)
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}

	names, err := b.Destinations(ctx)
	if err != nil {
		return reportError(stdout, stderr, opts.jsonOut, err)
	}
	text := fmt.Sprintf("Supported destinations (%d):\n  %s", len(names), strings.Join(names, "\n  "))
	if err := writeResult(stdout, opts.jsonOut, text, map[string]any{"destinations": names}); err != nil {
		p.errorf("%v", err)
		return exitError
	}
	return exitOK
}

// runCheckCommand reports whether a server answers its health check.
func runCheckCommand(args []string, stdout, stderr io.Writer) int {
	p := newPrinter(stderr)
	opts, err := parseOptions(args, commonFlags|remoteFlags)
	if err != nil {
		p.errorf("%v", err)
		return exitError
	}

	loadEnvFiles()
	baseURL := opts.url
	if baseURL == "" && opts.configPath != "" {
		cfg, err := loadConfig(opts.configPath)
		if err != nil {
			p.errorf("failed to load config: %v", err)
			return exitError
		}
		baseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}

	client := costclient.NewClient(baseURL)
	out := newPrinter(stdout)
	if !client.IsAvailable(context.Background()) {
		out.errorf("no server at %s", client.BaseURL())
		return exitError
	}
	out.success("server is up at " + client.BaseURL())
	return exitOK
}
