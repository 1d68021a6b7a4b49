package costcontrol

import (
	"errors"
	"sort"

	"github.com/tripcost/travelcost/internal/pricing"
)

// ProfileLookup resolves destination names. *pricing.Table implements it.
type ProfileLookup interface {
	GetProfile(destination string) (*pricing.DestinationProfile, error)
}

// ComparisonEntry is one destination in a comparison. Entries with Error
// set carry no figures.
type ComparisonEntry struct {
	Destination string `json:"destination"`
	DailyCost   int64  `json:"daily_cost,omitempty"`
	TotalCost   int64  `json:"total_cost,omitempty"`
	FlightCost  int64  `json:"flight_cost,omitempty"`
	GrandTotal  int64  `json:"grand_total,omitempty"`
	Error       string `json:"error,omitempty"`
}

// OK reports whether the entry was priced.
func (e ComparisonEntry) OK() bool { return e.Error == "" }

// Comparison ranks destinations by grand total. Priced entries come first in
// ascending order, then unpriced entries in input order.
type Comparison struct {
	Days    int               `json:"days"`
	Tier    pricing.CostTier  `json:"budget_level"`
	Entries []ComparisonEntry `json:"comparisons"`
}

// Ranked returns the priced entries.
func (c *Comparison) Ranked() []ComparisonEntry {
	var out []ComparisonEntry
	for _, e := range c.Entries {
		if e.OK() {
			out = append(out, e)
		}
	}
	return out
}

// Unsupported returns the destinations that could not be priced.
func (c *Comparison) Unsupported() []string {
	var out []string
	for _, e := range c.Entries {
		if !e.OK() {
			out = append(out, e.Destination)
		}
	}
	return out
}

// Compare prices each destination for one traveler staying days nights in
// a hotel at the given tier, flight included once. Unknown destinations
// become error entries; duplicates are kept.
func Compare(lookup ProfileLookup, destinations []string, days int, tier pricing.CostTier) (*Comparison, error) {
	if len(destinations) == 0 {
		return nil, invalid("destinations", "at least one destination is required")
	}
	if err := validateTrip(days, 1); err != nil {
		return nil, err
	}
	if tier.Rank() < 0 {
		return nil, invalid("budget_level", "unknown cost tier %q", tier)
	}

	var ranked, failed []ComparisonEntry
	for _, dest := range destinations {
		profile, err := lookup.GetProfile(dest)
		if err != nil {
			msg := err.Error()
			if errors.Is(err, pricing.ErrUnsupportedDestination) {
				msg = pricing.ErrUnsupportedDestination.Error()
			}
			failed = append(failed, ComparisonEntry{Destination: dest, Error: msg})
			continue
		}

		hotel := profile.Accommodation[pricing.LodgingHotel]
		daily := hotel.Price(tier) + profile.Food.Price(tier) + profile.Transport.Local + profile.Activities.Price(tier)
		total := daily * int64(days)
		ranked = append(ranked, ComparisonEntry{
			Destination: profile.Name,
			DailyCost:   daily,
			TotalCost:   total,
			FlightCost:  profile.FlightCostEstimate,
			GrandTotal:  total + profile.FlightCostEstimate,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].GrandTotal < ranked[j].GrandTotal
	})

	return &Comparison{
		Days:    days,
		Tier:    tier,
		Entries: append(ranked, failed...),
	}, nil
}
