package main

import (
	"context"
	"errors"

	"github.com/tripcost/travelcost/internal/costclient"
	"github.com/tripcost/travelcost/internal/costcontrol"
	"github.com/tripcost/travelcost/internal/travelcost"
)

// report is a rendered answer and the structured result behind it.
type report struct {
	Text   string
	Result any
}

// backend answers CLI queries from the local price table or a running
// server.
type backend interface {
	CalculateCost(ctx context.Context, req travelcost.CalculateRequest) (*report, error)
	DestinationInfo(ctx context.Context, destination string) (*report, error)
	CompareDestinations(ctx context.Context, destinations []string, days int, budgetLevel string) (*report, error)
	Destinations(ctx context.Context) ([]string, error)
}

// infeasibleError carries the rendered explanation of a budget that cannot
// cover a trip.
type infeasibleError struct {
	Text   string
	Detail *costcontrol.InfeasibleBudgetError
}

func (e *infeasibleError) Error() string { return e.Detail.Error() }
func (e *infeasibleError) Unwrap() error { return e.Detail }

// =============================================================================
// LOCAL
// =============================================================================

type localBackend struct {
	svc *travelcost.Service
}

func (b *localBackend) CalculateCost(_ context.Context, req travelcost.CalculateRequest) (*report, error) {
	r, err := b.svc.CalculateCost(req)
	if err != nil {
		var ie *costcontrol.InfeasibleBudgetError
		if errors.As(err, &ie) {
			return nil, &infeasibleError{Text: b.svc.FormatInfeasible(ie), Detail: ie}
		}
		return nil, err
	}
	return &report{Text: b.svc.FormatReport(r), Result: r}, nil
}

func (b *localBackend) DestinationInfo(_ context.Context, destination string) (*report, error) {
	p, err := b.svc.DestinationInfo(destination)
	if err != nil {
		return nil, err
	}
	return &report{Text: b.svc.FormatDestinationInfo(p), Result: p}, nil
}

func (b *localBackend) CompareDestinations(_ context.Context, destinations []string, days int, budgetLevel string) (*report, error) {
	c, err := b.svc.CompareDestinations(destinations, days, budgetLevel)
	if err != nil {
		return nil, err
	}
	return &report{Text: b.svc.FormatComparison(c), Result: c}, nil
}

func (b *localBackend) Destinations(context.Context) ([]string, error) {
	return b.svc.Destinations(), nil
}

// =============================================================================
// REMOTE
// =============================================================================

type remoteBackend struct {
	client *costclient.Client
}

func (b *remoteBackend) CalculateCost(ctx context.Context, req travelcost.CalculateRequest) (*report, error) {
	resp, err := b.client.CalculateCost(ctx, req)
	if err != nil {
		var apiErr *costclient.APIError
		if errors.As(err, &apiErr) && apiErr.Infeasible != nil {
			return nil, &infeasibleError{Text: apiErr.Text, Detail: apiErr.Infeasible}
		}
		return nil, err
	}
	return &report{Text: resp.Text, Result: resp.Result}, nil
}

func (b *remoteBackend) DestinationInfo(ctx context.Context, destination string) (*report, error) {
	resp, err := b.client.DestinationInfo(ctx, destination)
	if err != nil {
		return nil, err
	}
	return &report{Text: resp.Text, Result: resp.Result}, nil
}

func (b *remoteBackend) CompareDestinations(ctx context.Context, destinations []string, days int, budgetLevel string) (*report, error) {
	resp, err := b.client.CompareDestinations(ctx, destinations, days, budgetLevel)
	if err != nil {
		return nil, err
	}
	return &report{Text: resp.Text, Result: resp.Result}, nil
}

func (b *remoteBackend) Destinations(ctx context.Context) ([]string, error) {
	return b.client.Destinations(ctx)
}

// openBackend picks the remote backend when a URL is given, the local
// price table otherwise.
func openBackend(ctx context.Context, opts *options) (backend, error) {
	if opts.url != "" {
		return &remoteBackend{client: costclient.NewClient(opts.url)}, nil
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	setupCLILogger(cfg)
	svc, err := newService(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &localBackend{svc: svc}, nil
}
