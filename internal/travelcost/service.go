// Package travelcost exposes the cost calculators as request/response
// operations shared by the HTTP API, the MCP tools and the CLI.
package travelcost

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tripcost/travelcost/internal/costcontrol"
	"github.com/tripcost/travelcost/internal/monitoring"
	"github.com/tripcost/travelcost/internal/pricing"
)

// DefaultPriceCurrency labels amounts in reports. Table prices are quoted in
// this currency whatever the destination's local currency is.
const DefaultPriceCurrency = "KRW"

// Report modes.
const (
	ModeFixedTier = "fixed_tier"
	ModeBudget    = "budget"
)

// Service answers cost questions against one price table.
type Service struct {
	table         *pricing.Table
	allocator     *costcontrol.Allocator
	priceCurrency string
}

// Option configures a Service.
type Option func(*Service)

// WithPriceCurrency sets the label printed after amounts.
func WithPriceCurrency(currency string) Option {
	return func(s *Service) {
		if currency != "" {
			s.priceCurrency = currency
		}
	}
}

// NewService creates a service over an immutable table.
func NewService(table *pricing.Table, cfg costcontrol.CostControlConfig, opts ...Option) *Service {
	s := &Service{
		table:         table,
		allocator:     costcontrol.NewAllocator(cfg),
		priceCurrency: DefaultPriceCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BudgetUnit returns the currency amount of one budget unit.
func (s *Service) BudgetUnit() int64 { return s.allocator.BudgetUnit() }

// PriceCurrency returns the currency label used in reports.
func (s *Service) PriceCurrency() string { return s.priceCurrency }

// CalculateRequest is the input of CalculateCost. Field names follow the
// public API.
type CalculateRequest struct {
	Destination       string `json:"destination"`
	Days              int    `json:"days"`
	BudgetLevel       string `json:"budget_level,omitempty"`
	Travelers         int    `json:"travelers,omitempty"`
	AccommodationType string `json:"accommodation_type,omitempty"`
	TotalBudget       int64  `json:"total_budget,omitempty"`
	SpendingLevel     string `json:"spending_level,omitempty"`
}

// BudgetMode reports whether the request asks for a budget allocation.
func (r CalculateRequest) BudgetMode() bool {
	return r.TotalBudget != 0 || strings.TrimSpace(r.SpendingLevel) != ""
}

// CostReport is the result of CalculateCost. Exactly one of Estimate and
// Allocation is set, matching Mode.
type CostReport struct {
	Mode         string                        `json:"mode"`
	Destination  string                        `json:"destination"`
	Currency     string                        `json:"currency"`
	ExchangeRate float64                       `json:"exchange_rate"`
	Tips         string                        `json:"tips,omitempty"`
	Estimate     *costcontrol.Estimate         `json:"estimate,omitempty"`
	Allocation   *costcontrol.AllocationResult `json:"allocation,omitempty"`
	GrandTotal   int64                         `json:"grand_total"`
}

// CalculateCost prices a trip. With total_budget and spending_level it runs
// the budget allocator, otherwise it prices every category at budget_level.
func (s *Service) CalculateCost(req CalculateRequest) (*CostReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	profile, err := s.table.GetProfile(req.Destination)
	if err != nil {
		return nil, err
	}

	travelers := req.Travelers
	if travelers == 0 {
		travelers = 1
	}
	lodging, err := pricing.ParseLodgingType(req.AccommodationType)
	if err != nil {
		return nil, &costcontrol.InvalidArgumentError{Field: "accommodation_type", Reason: err.Error()}
	}

	report := &CostReport{
		Destination:  profile.Name,
		Currency:     profile.Currency,
		ExchangeRate: profile.ExchangeRate,
		Tips:         profile.Tips,
	}

	if req.BudgetMode() {
		if req.TotalBudget == 0 || strings.TrimSpace(req.SpendingLevel) == "" {
			return nil, &costcontrol.InvalidArgumentError{
				Field:  "total_budget",
				Reason: "total_budget and spending_level must be given together",
			}
		}
		policy, err := costcontrol.ParseSpendingPolicy(req.SpendingLevel)
		if err != nil {
			return nil, err
		}
		alloc, err := s.allocator.Allocate(costcontrol.BudgetRequest{
			Destination: profile.Name,
			Days:        req.Days,
			Travelers:   travelers,
			Lodging:     lodging,
			TotalBudget: req.TotalBudget,
			Policy:      policy,
		}, profile)
		if err != nil {
			return nil, err
		}
		report.Mode = ModeBudget
		report.Allocation = alloc
		report.GrandTotal = alloc.GrandTotal
		return report, nil
	}

	tier, err := parseTier(req.BudgetLevel)
	if err != nil {
		return nil, err
	}
	est, err := costcontrol.EstimateTrip(profile, req.Days, travelers, lodging, tier)
	if err != nil {
		return nil, err
	}
	report.Mode = ModeFixedTier
	report.Estimate = est
	report.GrandTotal = est.GrandTotal
	return report, nil
}

// DestinationInfo returns the full price profile of a destination.
func (s *Service) DestinationInfo(destination string) (*pricing.DestinationProfile, error) {
	return s.table.GetProfile(destination)
}

// MaxCompareDestinations caps one comparison request.
const MaxCompareDestinations = 50

// CompareDestinations ranks destinations at a fixed tier.
func (s *Service) CompareDestinations(destinations []string, days int, budgetLevel string) (*costcontrol.Comparison, error) {
	if len(destinations) > MaxCompareDestinations {
		return nil, &costcontrol.InvalidArgumentError{
			Field:  "destinations",
			Reason: fmt.Sprintf("at most %d destinations per comparison, got %d", MaxCompareDestinations, len(destinations)),
		}
	}
	tier, err := parseTier(budgetLevel)
	if err != nil {
		return nil, err
	}
	return costcontrol.Compare(s.table, destinations, days, tier)
}

// Destinations lists the supported destination names.
func (s *Service) Destinations() []string {
	return s.table.ListSupportedDestinations()
}

func parseTier(level string) (pricing.CostTier, error) {
	if strings.TrimSpace(level) == "" {
		return "", &costcontrol.InvalidArgumentError{Field: "budget_level", Reason: "is required (budget, mid or luxury)"}
	}
	tier, err := pricing.ParseCostTier(level)
	if err != nil {
		return "", &costcontrol.InvalidArgumentError{Field: "budget_level", Reason: err.Error()}
	}
	return tier, nil
}

// Validate checks a request's shape without pricing it.
func (r CalculateRequest) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return &costcontrol.InvalidArgumentError{Field: "destination", Reason: "is required"}
	}
	if r.Days == 0 {
		return &costcontrol.InvalidArgumentError{Field: "days", Reason: "is required"}
	}
	if !r.BudgetMode() && strings.TrimSpace(r.BudgetLevel) == "" {
		return &costcontrol.InvalidArgumentError{Field: "budget_level", Reason: "is required unless total_budget and spending_level are given"}
	}
	return nil
}

// Outcome classifies an operation error for metrics and telemetry.
func Outcome(err error) monitoring.Outcome {
	switch {
	case err == nil:
		return monitoring.OutcomeOK
	case errors.Is(err, costcontrol.ErrInfeasibleBudget):
		return monitoring.OutcomeInfeasible
	case errors.Is(err, costcontrol.ErrInvalidArgument):
		return monitoring.OutcomeInvalid
	case errors.Is(err, pricing.ErrUnsupportedDestination):
		return monitoring.OutcomeUnsupported
	}
	return monitoring.OutcomeError
}
