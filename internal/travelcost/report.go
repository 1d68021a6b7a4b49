package travelcost

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tripcost/travelcost/internal/costcontrol"
	"github.com/tripcost/travelcost/internal/pricing"
)

var tierLabels = map[pricing.CostTier]string{
	pricing.TierBudget: "budget",
	pricing.TierMid:    "mid-range",
	pricing.TierLuxury: "luxury",
}

var policyLabels = map[costcontrol.SpendingPolicy]string{
	costcontrol.PolicyLean:     "value first",
	costcontrol.PolicyBalanced: "balanced",
	costcontrol.PolicyMax:      "make the most of it",
}

func (s *Service) amount(v int64) string {
	return humanize.Comma(v) + " " + s.priceCurrency
}

// FormatReport renders a CostReport as plain text.
func (s *Service) FormatReport(r *CostReport) string {
	if r.Allocation != nil {
		return s.formatAllocation(r.Allocation, r.Tips)
	}
	if r.Estimate != nil {
		return s.formatEstimate(r.Estimate, r.Tips)
	}
	return ""
}

func (s *Service) formatEstimate(e *costcontrol.Estimate, tips string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s trip cost estimate\n\n", e.Destination)
	fmt.Fprintf(&b, "Days: %d\n", e.Days)
	fmt.Fprintf(&b, "Travelers: %d\n", e.Travelers)
	fmt.Fprintf(&b, "Budget level: %s\n", tierLabels[e.Tier])
	fmt.Fprintf(&b, "Accommodation: %s\n\n", e.Lodging)

	b.WriteString("Daily cost (per traveler):\n")
	s.writeBreakdown(&b, e.Daily, "Daily total")
	b.WriteString("\nTrip cost:\n")
	s.writeBreakdown(&b, e.Total, "Local subtotal")
	fmt.Fprintf(&b, "  Flights (estimate): %s\n\n", s.amount(e.FlightCost))
	fmt.Fprintf(&b, "Total trip cost: %s\n", s.amount(e.GrandTotal))
	writeTips(&b, tips)
	return b.String()
}

func (s *Service) formatAllocation(a *costcontrol.AllocationResult, tips string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s budget plan (%s)\n\n", a.Destination, policyLabels[a.Policy])
	fmt.Fprintf(&b, "Budget: %s units (%s)\n", humanize.Comma(a.TotalBudget/s.BudgetUnit()), s.amount(a.TotalBudget))
	fmt.Fprintf(&b, "Trip: %d days, %d travelers\n", a.Days, a.Travelers)
	fmt.Fprintf(&b, "Accommodation: %s\n\n", a.Lodging)

	b.WriteString("Budget split:\n")
	fmt.Fprintf(&b, "  Flights: %s\n", s.amount(a.FlightCost))
	fmt.Fprintf(&b, "  Accommodation: %s (%s)\n", s.amount(a.CategoryBudgets.Accommodation), a.SelectedTiers.Accommodation)
	fmt.Fprintf(&b, "  Food: %s (%s)\n", s.amount(a.CategoryBudgets.Food), a.SelectedTiers.Food)
	fmt.Fprintf(&b, "  Transport: %s\n", s.amount(a.CategoryBudgets.Transport))
	fmt.Fprintf(&b, "  Activities: %s (%s)\n\n", s.amount(a.CategoryBudgets.Activities), a.SelectedTiers.Activities)

	b.WriteString("Daily cost (per traveler):\n")
	s.writeBreakdown(&b, a.Daily, "Daily total")
	fmt.Fprintf(&b, "\nExpected total: %s\n", s.amount(a.GrandTotal))
	fmt.Fprintf(&b, "Budget remaining: %s\n", s.amount(a.BudgetRemaining))
	writeTips(&b, tips)
	return b.String()
}

// FormatInfeasible explains why a budget cannot cover the trip.
func (s *Service) FormatInfeasible(e *costcontrol.InfeasibleBudgetError) string {
	var b strings.Builder
	units := humanize.Comma(e.TotalBudgetUnits)
	if e.Reason == costcontrol.ReasonFlight {
		fmt.Fprintf(&b, "Budget too small: %s units do not even cover the flights (%s).\n", units, s.amount(e.FlightCost))
		fmt.Fprintf(&b, "At least %s units are required.\n", humanize.Comma(e.MinimumRequiredUnits))
		fmt.Fprintf(&b, "Shortfall: %s units (%s)\n", humanize.Comma(e.ShortfallUnits), s.amount(e.Shortfall))
		return b.String()
	}

	n := int64(e.Days)
	fmt.Fprintf(&b, "Budget too small: a %d-day trip to %s needs at least %s units.\n\n",
		e.Days, e.Destination, humanize.Comma(e.MinimumRequiredUnits))
	b.WriteString("Minimum cost:\n")
	fmt.Fprintf(&b, "  Flights: %s\n", s.amount(e.FlightCost))
	fmt.Fprintf(&b, "  Accommodation (budget): %s\n", s.amount(e.MinimumDaily.Accommodation*n))
	fmt.Fprintf(&b, "  Food (budget): %s\n", s.amount(e.MinimumDaily.Food*n))
	fmt.Fprintf(&b, "  Transport: %s\n", s.amount(e.MinimumDaily.Transport*n))
	fmt.Fprintf(&b, "  Activities (budget): %s\n", s.amount(e.MinimumDaily.Activities*n))
	fmt.Fprintf(&b, "  Minimum total: %s\n\n", s.amount(e.MinimumRequired))
	fmt.Fprintf(&b, "Current budget: %s units (%s)\n", units, s.amount(e.TotalBudget))
	fmt.Fprintf(&b, "Shortfall: %s units\n", humanize.Comma(e.ShortfallUnits))
	return b.String()
}

// FormatDestinationInfo lists every price of a destination.
func (s *Service) FormatDestinationInfo(p *pricing.DestinationProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s travel prices\n\n", p.Name)
	fmt.Fprintf(&b, "Local currency: %s (1 %s = %s %s)\n", p.Currency, p.Currency, humanize.Ftoa(p.ExchangeRate), s.priceCurrency)
	fmt.Fprintf(&b, "Flights (round trip estimate): %s\n\n", s.amount(p.FlightCostEstimate))

	b.WriteString("Accommodation per night (budget / mid / luxury):\n")
	for _, lt := range pricing.LodgingTypes {
		fmt.Fprintf(&b, "  %s: %s\n", lt, s.tiers(p.Accommodation[lt]))
	}
	fmt.Fprintf(&b, "\nFood per day: %s\n", s.tiers(p.Food))
	fmt.Fprintf(&b, "Activities per day: %s\n", s.tiers(p.Activities))
	fmt.Fprintf(&b, "\nTransport per day:\n  local: %s\n  intercity: %s\n  long distance: %s\n",
		s.amount(p.Transport.Local), s.amount(p.Transport.City), s.amount(p.Transport.Country))
	writeTips(&b, p.Tips)
	return b.String()
}

// FormatComparison renders a ranking, cheapest first.
func (s *Service) FormatComparison(c *costcontrol.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Destination comparison (%d days, %s)\n\n", c.Days, tierLabels[c.Tier])
	for i, e := range c.Ranked() {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, e.Destination, s.amount(e.GrandTotal))
		fmt.Fprintf(&b, "   (local %s + flights %s)\n", s.amount(e.TotalCost), s.amount(e.FlightCost))
	}
	if missing := c.Unsupported(); len(missing) > 0 {
		fmt.Fprintf(&b, "\nUnsupported destinations: %s\n", strings.Join(missing, ", "))
	}
	return b.String()
}

func (s *Service) writeBreakdown(b *strings.Builder, bd costcontrol.Breakdown, totalLabel string) {
	fmt.Fprintf(b, "  Accommodation: %s\n", s.amount(bd.Accommodation))
	fmt.Fprintf(b, "  Food: %s\n", s.amount(bd.Food))
	fmt.Fprintf(b, "  Transport: %s\n", s.amount(bd.Transport))
	fmt.Fprintf(b, "  Activities: %s\n", s.amount(bd.Activities))
	fmt.Fprintf(b, "  %s: %s\n", totalLabel, s.amount(bd.Total))
}

func (s *Service) tiers(p pricing.CategoryPrices) string {
	return fmt.Sprintf("%s / %s / %s", s.amount(p.Budget), s.amount(p.Mid), s.amount(p.Luxury))
}

func writeTips(b *strings.Builder, tips string) {
	if tips != "" {
		fmt.Fprintf(b, "\nTip: %s\n", tips)
	}
}
