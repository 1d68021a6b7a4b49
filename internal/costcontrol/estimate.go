package costcontrol

import "github.com/tripcost/travelcost/internal/pricing"

// Estimate prices a trip with every tiered category at one tier.
type Estimate struct {
	Destination string              `json:"destination"`
	Days        int                 `json:"days"`
	Travelers   int                 `json:"travelers"`
	Lodging     pricing.LodgingType `json:"accommodation_type"`
	Tier        pricing.CostTier    `json:"budget_level"`
	Daily       Breakdown           `json:"daily_breakdown"`
	Total       Breakdown           `json:"total_breakdown"`
	FlightCost  int64               `json:"flight_cost"`
	GrandTotal  int64               `json:"grand_total"`
}

// EstimateTrip computes a fixed-tier estimate. Transport is always the local
// daily rate; flights are charged per traveler.
func EstimateTrip(profile *pricing.DestinationProfile, days, travelers int, lodging pricing.LodgingType, tier pricing.CostTier) (*Estimate, error) {
	if profile == nil {
		return nil, invalid("destination", "no price profile")
	}
	if err := validateTrip(days, travelers); err != nil {
		return nil, err
	}
	if tier.Rank() < 0 {
		return nil, invalid("budget_level", "unknown cost tier %q", tier)
	}
	if lodging == "" {
		lodging = pricing.LodgingHotel
	}
	acc, ok := profile.Lodging(lodging)
	if !ok {
		return nil, invalid("accommodation_type", "unknown accommodation type %q", lodging)
	}

	daily := newBreakdown(acc.Price(tier), profile.Food.Price(tier), profile.Transport.Local, profile.Activities.Price(tier))
	total := daily.Scale(int64(days) * int64(travelers))
	flight := profile.FlightCostEstimate * int64(travelers)

	return &Estimate{
		Destination: profile.Name,
		Days:        days,
		Travelers:   travelers,
		Lodging:     lodging,
		Tier:        tier,
		Daily:       daily,
		Total:       total,
		FlightCost:  flight,
		GrandTotal:  total.Total + flight,
	}, nil
}
