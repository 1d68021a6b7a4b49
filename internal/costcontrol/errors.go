package costcontrol

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

var (
	// ErrInfeasibleBudget is matched by every InfeasibleBudgetError.
	ErrInfeasibleBudget = errors.New("infeasible budget")
	// ErrInvalidArgument is matched by every InvalidArgumentError.
	ErrInvalidArgument = errors.New("invalid argument")
)

// InfeasibleReason says which feasibility gate rejected the budget.
type InfeasibleReason string

const (
	// ReasonFlight: the flights alone use up the whole budget.
	ReasonFlight InfeasibleReason = "flight"
	// ReasonLocalMinimum: flights fit but budget-tier local costs do not.
	ReasonLocalMinimum InfeasibleReason = "local_minimum"
)

// InfeasibleBudgetError carries the figures a caller needs to suggest a
// workable budget. Currency amounts are in the table's currency; *Units
// fields are rounded up to whole budget units.
type InfeasibleBudgetError struct {
	Reason               InfeasibleReason `json:"reason"`
	Destination          string           `json:"destination"`
	Days                 int              `json:"days"`
	Travelers            int              `json:"travelers"`
	TotalBudget          int64            `json:"total_budget"`
	TotalBudgetUnits     int64            `json:"total_budget_units"`
	FlightCost           int64            `json:"flight_cost"`
	MinimumDaily         Breakdown        `json:"minimum_daily"`
	MinimumLocalCost     int64            `json:"minimum_local_cost"`
	MinimumRequired      int64            `json:"minimum_required"`
	MinimumRequiredUnits int64            `json:"minimum_required_units"`
	Shortfall            int64            `json:"shortfall"`
	ShortfallUnits       int64            `json:"shortfall_units"`
}

func (e *InfeasibleBudgetError) Error() string {
	if e.Reason == ReasonFlight {
		return fmt.Sprintf("infeasible budget: flights to %s cost %s, more than the budget of %s; short by %s (%d units), at least %d units are required",
			e.Destination, humanize.Comma(e.FlightCost), humanize.Comma(e.TotalBudget),
			humanize.Comma(e.Shortfall), e.ShortfallUnits, e.MinimumRequiredUnits)
	}
	return fmt.Sprintf("infeasible budget: %s for %d days needs at least %d units (%s), short by %s",
		e.Destination, e.Days, e.MinimumRequiredUnits, humanize.Comma(e.MinimumRequired), humanize.Comma(e.Shortfall))
}

// Is makes errors.Is(err, ErrInfeasibleBudget) work.
func (e *InfeasibleBudgetError) Is(target error) bool {
	return target == ErrInfeasibleBudget
}

// InvalidArgumentError rejects a request before any arithmetic runs.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidArgument) work.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalid(field, format string, args ...any) error {
	return &InvalidArgumentError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ceilDiv rounds a positive quotient up.
func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
