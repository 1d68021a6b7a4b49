// Package costcontrol turns a price table into trip cost figures.
//
// DESIGN: Three pure calculators over an immutable pricing.Table:
//   - Allocator: splits a total budget by spending policy and picks the
//     richest affordable tier per category, or reports infeasibility.
//   - Compare:   ranks destinations by grand total at a fixed tier.
//   - Estimate:  prices a trip with every category at one tier.
//
// Nothing here does I/O or holds mutable state.
package costcontrol

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tripcost/travelcost/internal/pricing"
)

// DefaultBudgetUnit is the currency amount of one budget unit (10,000 won).
const DefaultBudgetUnit int64 = 10000

// DefaultNominalFloor is added to the flight cost when quoting the minimum
// budget for a trip whose flights alone exhaust the budget.
const DefaultNominalFloor int64 = 100000

// CostControlConfig holds budget arithmetic settings.
type CostControlConfig struct {
	BudgetUnit   int64 `yaml:"budget_unit"`   // Currency per budget unit. 0 = DefaultBudgetUnit.
	NominalFloor int64 `yaml:"nominal_floor"` // Local spend quoted when flights exceed the budget. 0 = DefaultNominalFloor.
}

// Validate checks cost control configuration.
func (c *CostControlConfig) Validate() error {
	if c.BudgetUnit < 0 {
		return fmt.Errorf("cost_control.budget_unit must be >= 0, got %d", c.BudgetUnit)
	}
	if c.NominalFloor < 0 {
		return fmt.Errorf("cost_control.nominal_floor must be >= 0, got %d", c.NominalFloor)
	}
	return nil
}

func (c CostControlConfig) unit() int64 {
	if c.BudgetUnit <= 0 {
		return DefaultBudgetUnit
	}
	return c.BudgetUnit
}

func (c CostControlConfig) floor() int64 {
	if c.NominalFloor <= 0 {
		return DefaultNominalFloor
	}
	return c.NominalFloor
}

// =============================================================================
// SPENDING POLICY
// =============================================================================

// SpendingPolicy is a named weighting of the budget across categories.
type SpendingPolicy string

const (
	PolicyLean     SpendingPolicy = "lean"
	PolicyBalanced SpendingPolicy = "balanced"
	PolicyMax      SpendingPolicy = "max"
)

// Policies lists every policy.
var Policies = []SpendingPolicy{PolicyLean, PolicyBalanced, PolicyMax}

// CategoryWeights is the share of the local budget each category receives.
type CategoryWeights struct {
	Accommodation decimal.Decimal
	Food          decimal.Decimal
	Transport     decimal.Decimal
	Activities    decimal.Decimal
}

// Sum adds the four weights.
func (w CategoryWeights) Sum() decimal.Decimal {
	return w.Accommodation.Add(w.Food).Add(w.Transport).Add(w.Activities)
}

func weights(acc, food, transport, activities string) CategoryWeights {
	return CategoryWeights{
		Accommodation: decimal.RequireFromString(acc),
		Food:          decimal.RequireFromString(food),
		Transport:     decimal.RequireFromString(transport),
		Activities:    decimal.RequireFromString(activities),
	}
}

var policyWeights = map[SpendingPolicy]CategoryWeights{
	PolicyLean:     weights("0.30", "0.30", "0.20", "0.20"),
	PolicyBalanced: weights("0.40", "0.25", "0.15", "0.20"),
	PolicyMax:      weights("0.50", "0.20", "0.10", "0.20"),
}

// Weights returns the category weights of a policy.
func (p SpendingPolicy) Weights() (CategoryWeights, bool) {
	w, ok := policyWeights[p]
	return w, ok
}

// policyAliases maps the labels used by the survey front-end.
var policyAliases = map[string]SpendingPolicy{
	"가성비 지출": PolicyLean,
	"적당히 지출": PolicyBalanced,
	"모두 지출":  PolicyMax,
}

// ParseSpendingPolicy accepts lean/balanced/max or the Korean labels.
func ParseSpendingPolicy(s string) (SpendingPolicy, error) {
	s = strings.TrimSpace(s)
	if p, ok := policyAliases[s]; ok {
		return p, nil
	}
	p := SpendingPolicy(strings.ToLower(s))
	if _, ok := policyWeights[p]; ok {
		return p, nil
	}
	return "", &InvalidArgumentError{Field: "spending_level", Reason: fmt.Sprintf("unknown spending policy %q (want lean, balanced or max)", s)}
}

// =============================================================================
// REQUESTS AND RESULTS
// =============================================================================

// BudgetRequest asks the allocator to fit a trip into a total budget.
type BudgetRequest struct {
	Destination string
	Days        int
	Travelers   int
	Lodging     pricing.LodgingType
	TotalBudget int64 // In budget units.
	Policy      SpendingPolicy
}

// Breakdown is a cost split across the four categories.
type Breakdown struct {
	Accommodation int64 `json:"accommodation"`
	Food          int64 `json:"food"`
	Transport     int64 `json:"transport"`
	Activities    int64 `json:"activities"`
	Total         int64 `json:"total"`
}

func newBreakdown(acc, food, transport, activities int64) Breakdown {
	return Breakdown{
		Accommodation: acc,
		Food:          food,
		Transport:     transport,
		Activities:    activities,
		Total:         acc + food + transport + activities,
	}
}

// Scale multiplies every figure by n.
func (b Breakdown) Scale(n int64) Breakdown {
	return newBreakdown(b.Accommodation*n, b.Food*n, b.Transport*n, b.Activities*n)
}

// SelectedTiers records the tier chosen for each tiered category.
type SelectedTiers struct {
	Accommodation pricing.CostTier `json:"accommodation"`
	Food          pricing.CostTier `json:"food"`
	Activities    pricing.CostTier `json:"activities"`
}

// AllocationResult is a feasible budget allocation. Currency figures are in
// the table's currency, not budget units.
type AllocationResult struct {
	Feasible        bool                `json:"feasible"`
	Destination     string              `json:"destination"`
	Days            int                 `json:"days"`
	Travelers       int                 `json:"travelers"`
	Lodging         pricing.LodgingType `json:"accommodation_type"`
	Policy          SpendingPolicy      `json:"spending_level"`
	TotalBudget     int64               `json:"total_budget"`
	FlightCost      int64               `json:"flight_cost"`
	AvailableBudget int64               `json:"available_budget"`
	CategoryBudgets Breakdown           `json:"budget_distribution"`
	DailyBudgets    Breakdown           `json:"daily_budgets"`
	SelectedTiers   SelectedTiers       `json:"selected_levels"`
	Daily           Breakdown           `json:"daily_breakdown"`
	Total           Breakdown           `json:"total_breakdown"`
	GrandTotal      int64               `json:"grand_total"`
	BudgetRemaining int64               `json:"budget_remaining"`
}
