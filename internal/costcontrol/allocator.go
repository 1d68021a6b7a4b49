package costcontrol

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/tripcost/travelcost/internal/pricing"
)

// Upper bounds that keep every product of days, travelers and prices well
// inside int64.
const (
	MaxDays      = 3650
	MaxTravelers = 1000
)

// Allocator fits trips into a total budget. It is safe for concurrent use.
type Allocator struct {
	cfg CostControlConfig
}

// NewAllocator creates an allocator. A zero config uses the defaults.
func NewAllocator(cfg CostControlConfig) *Allocator {
	return &Allocator{cfg: cfg}
}

// BudgetUnit returns the currency amount of one budget unit.
func (a *Allocator) BudgetUnit() int64 { return a.cfg.unit() }

// Allocate splits req.TotalBudget across the four categories using the
// policy weights and picks the richest affordable tier per category.
//
// Steps:
//  1. flights (per traveler) come off the top; nothing left is infeasible
//  2. budget-tier local costs must fit in what remains, else infeasible
//  3. the rest is weighted per category and per traveler-day
//  4. categories short of their budget-tier price borrow from the others'
//     surplus, so the total never exceeds the budget
//  5. each tiered category takes the richest tier its share covers;
//     transport costs min(local, share)
func (a *Allocator) Allocate(req BudgetRequest, profile *pricing.DestinationProfile) (*AllocationResult, error) {
	if profile == nil {
		return nil, invalid("destination", "no price profile")
	}
	if err := validateTrip(req.Days, req.Travelers); err != nil {
		return nil, err
	}
	unit := a.cfg.unit()
	if req.TotalBudget < 1 {
		return nil, invalid("total_budget", "must be >= 1, got %d", req.TotalBudget)
	}
	if req.TotalBudget > math.MaxInt64/unit/4 {
		return nil, invalid("total_budget", "%d is too large", req.TotalBudget)
	}
	w, ok := req.Policy.Weights()
	if !ok {
		return nil, invalid("spending_level", "unknown spending policy %q", req.Policy)
	}
	lodging := req.Lodging
	if lodging == "" {
		lodging = pricing.LodgingHotel
	}
	acc, ok := profile.Lodging(lodging)
	if !ok {
		return nil, invalid("accommodation_type", "unknown accommodation type %q", lodging)
	}

	n := int64(req.Days) * int64(req.Travelers)
	totalBudget := req.TotalBudget * unit
	flight := profile.FlightCostEstimate * int64(req.Travelers)
	available := totalBudget - flight
	minDaily := newBreakdown(acc.Budget, profile.Food.Budget, profile.Transport.Local, profile.Activities.Budget)

	infeasible := func(reason InfeasibleReason, minRequired int64) error {
		shortfall := minRequired - totalBudget
		return &InfeasibleBudgetError{
			Reason:               reason,
			Destination:          profile.Name,
			Days:                 req.Days,
			Travelers:            req.Travelers,
			TotalBudget:          totalBudget,
			TotalBudgetUnits:     req.TotalBudget,
			FlightCost:           flight,
			MinimumDaily:         minDaily,
			MinimumLocalCost:     minDaily.Total * n,
			MinimumRequired:      minRequired,
			MinimumRequiredUnits: ceilDiv(minRequired, unit),
			Shortfall:            shortfall,
			ShortfallUnits:       ceilDiv(shortfall, unit),
		}
	}

	if available <= 0 {
		return nil, infeasible(ReasonFlight, flight+a.cfg.floor())
	}
	minLocal := minDaily.Total * n
	if available < minLocal {
		return nil, infeasible(ReasonLocalMinimum, flight+minLocal)
	}

	categoryBudgets := newBreakdown(
		floorMul(available, w.Accommodation),
		floorMul(available, w.Food),
		floorMul(available, w.Transport),
		floorMul(available, w.Activities),
	)

	shares := newBreakdown(
		floorMulDiv(available, w.Accommodation, n),
		floorMulDiv(available, w.Food, n),
		floorMulDiv(available, w.Transport, n),
		floorMulDiv(available, w.Activities, n),
	)

	limits := coverDeficits(
		[]int64{shares.Accommodation, shares.Food, shares.Activities},
		[]int64{acc.Budget, profile.Food.Budget, profile.Activities.Budget},
	)
	tiers := SelectedTiers{
		Accommodation: acc.RichestWithin(limits[0]),
		Food:          profile.Food.RichestWithin(limits[1]),
		Activities:    profile.Activities.RichestWithin(limits[2]),
	}

	daily := newBreakdown(
		acc.Price(tiers.Accommodation),
		profile.Food.Price(tiers.Food),
		min(profile.Transport.Local, shares.Transport),
		profile.Activities.Price(tiers.Activities),
	)
	total := daily.Scale(n)
	grand := total.Total + flight

	return &AllocationResult{
		Feasible:        true,
		Destination:     profile.Name,
		Days:            req.Days,
		Travelers:       req.Travelers,
		Lodging:         lodging,
		Policy:          req.Policy,
		TotalBudget:     totalBudget,
		FlightCost:      flight,
		AvailableBudget: available,
		CategoryBudgets: categoryBudgets,
		DailyBudgets:    shares,
		SelectedTiers:   tiers,
		Daily:           daily,
		Total:           total,
		GrandTotal:      grand,
		BudgetRemaining: totalBudget - grand,
	}, nil
}

// coverDeficits returns the spending limit of each tiered category. A
// category whose share is below its budget-tier price is raised to that
// price; the cost comes out of the other categories' surplus, pro rata.
// With no deficit the limits equal the shares.
func coverDeficits(shares, floors []int64) []int64 {
	var surplus, deficit int64
	for i := range shares {
		if shares[i] >= floors[i] {
			surplus += shares[i] - floors[i]
		} else {
			deficit += floors[i] - shares[i]
		}
	}
	spare := surplus - deficit

	limits := make([]int64, len(shares))
	for i := range shares {
		limits[i] = floors[i]
		if spare <= 0 || shares[i] <= floors[i] {
			continue
		}
		own := decimal.NewFromInt(shares[i] - floors[i])
		q, _ := own.Mul(decimal.NewFromInt(spare)).QuoRem(decimal.NewFromInt(surplus), 0)
		limits[i] += q.IntPart()
	}
	return limits
}

// floorMul returns floor(v * w) without float rounding.
func floorMul(v int64, w decimal.Decimal) int64 {
	return decimal.NewFromInt(v).Mul(w).Floor().IntPart()
}

// floorMulDiv returns floor(v * w / n) with a single rounding step, so a
// share that is exactly a tier price stays exactly that price.
func floorMulDiv(v int64, w decimal.Decimal, n int64) int64 {
	q, _ := decimal.NewFromInt(v).Mul(w).QuoRem(decimal.NewFromInt(n), 0)
	return q.IntPart()
}

func validateTrip(days, travelers int) error {
	if days < 1 || days > MaxDays {
		return invalid("days", "must be between 1 and %d, got %d", MaxDays, days)
	}
	if travelers < 1 || travelers > MaxTravelers {
		return invalid("travelers", "must be between 1 and %d, got %d", MaxTravelers, travelers)
	}
	return nil
}
