// Package pricing holds the static per-destination price table.
//
// FILES:
//   - types.go:  Tiers, lodging types, destination profiles
//   - table.go:  Immutable lookup table with normalized keys
//   - load.go:   YAML sources (embedded default and external file)
//   - sqlite.go: Read-only SQLite source
//   - errors.go: Lookup and validation errors
package pricing

import (
	"fmt"
	"strings"
)

// MaxPrice bounds every price in a table. Four daily prices times the
// largest traveler-day count must still fit in int64.
const MaxPrice int64 = 100_000_000_000

// =============================================================================
// COST TIERS
// =============================================================================

// CostTier is an ordered quality-of-spend level: budget < mid < luxury.
type CostTier string

const (
	TierBudget CostTier = "budget"
	TierMid    CostTier = "mid"
	TierLuxury CostTier = "luxury"
)

// Tiers lists every tier from cheapest to richest.
var Tiers = []CostTier{TierBudget, TierMid, TierLuxury}

// ParseCostTier accepts a tier name, ignoring case and surrounding space.
func ParseCostTier(s string) (CostTier, error) {
	switch CostTier(strings.ToLower(strings.TrimSpace(s))) {
	case TierBudget:
		return TierBudget, nil
	case TierMid:
		return TierMid, nil
	case TierLuxury:
		return TierLuxury, nil
	}
	return "", fmt.Errorf("unknown cost tier %q (want budget, mid or luxury)", s)
}

// Rank orders tiers; higher is richer. Unknown tiers rank -1.
func (t CostTier) Rank() int {
	switch t {
	case TierBudget:
		return 0
	case TierMid:
		return 1
	case TierLuxury:
		return 2
	}
	return -1
}

// =============================================================================
// LODGING TYPES
// =============================================================================

// LodgingType selects which accommodation price row applies.
type LodgingType string

const (
	LodgingHotel      LodgingType = "hotel"
	LodgingGuesthouse LodgingType = "guesthouse"
	LodgingResort     LodgingType = "resort"
	LodgingPension    LodgingType = "pension"
)

// LodgingTypes lists every lodging type in display order.
var LodgingTypes = []LodgingType{LodgingHotel, LodgingGuesthouse, LodgingResort, LodgingPension}

// lodgingAliases maps the labels used by the survey front-end.
var lodgingAliases = map[string]LodgingType{
	"호텔":     LodgingHotel,
	"게스트하우스": LodgingGuesthouse,
	"리조트":    LodgingResort,
	"펜션":     LodgingPension,
}

// ParseLodgingType accepts the English key or the Korean label.
// An empty string means hotel.
func ParseLodgingType(s string) (LodgingType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LodgingHotel, nil
	}
	if lt, ok := lodgingAliases[s]; ok {
		return lt, nil
	}
	lt := LodgingType(strings.ToLower(s))
	for _, known := range LodgingTypes {
		if lt == known {
			return lt, nil
		}
	}
	return "", fmt.Errorf("unknown accommodation type %q (want hotel, guesthouse, resort or pension)", s)
}

// =============================================================================
// PRICES
// =============================================================================

// CategoryPrices is the per-day-per-traveler cost of each tier.
type CategoryPrices struct {
	Budget int64 `yaml:"budget" json:"budget"`
	Mid    int64 `yaml:"mid" json:"mid"`
	Luxury int64 `yaml:"luxury" json:"luxury"`
}

// Price returns the cost for a tier. Unknown tiers cost the budget price.
func (p CategoryPrices) Price(t CostTier) int64 {
	switch t {
	case TierMid:
		return p.Mid
	case TierLuxury:
		return p.Luxury
	}
	return p.Budget
}

// RichestWithin picks the most expensive tier costing at most limit.
// The budget tier is the floor even when it does not fit.
func (p CategoryPrices) RichestWithin(limit int64) CostTier {
	if limit >= p.Luxury {
		return TierLuxury
	}
	if limit >= p.Mid {
		return TierMid
	}
	return TierBudget
}

func (p CategoryPrices) validate() error {
	if p.Budget < 0 {
		return fmt.Errorf("budget price must be >= 0, got %d", p.Budget)
	}
	if p.Budget > p.Mid || p.Mid > p.Luxury {
		return fmt.Errorf("prices must satisfy budget <= mid <= luxury, got %d/%d/%d", p.Budget, p.Mid, p.Luxury)
	}
	if p.Luxury > MaxPrice {
		return fmt.Errorf("luxury price %d exceeds the maximum of %d", p.Luxury, MaxPrice)
	}
	return nil
}

// AccommodationPrices holds one price row per lodging type.
type AccommodationPrices map[LodgingType]CategoryPrices

// TransportPrices is a flat daily cost. Only Local feeds the calculators;
// City and Country are informational.
type TransportPrices struct {
	Local   int64 `yaml:"local" json:"local"`
	City    int64 `yaml:"city" json:"city"`
	Country int64 `yaml:"country" json:"country"`
}

// DestinationProfile is the static price data for one destination.
type DestinationProfile struct {
	Name               string              `yaml:"name" json:"name"`
	Aliases            []string            `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Accommodation      AccommodationPrices `yaml:"accommodation" json:"accommodation"`
	Food               CategoryPrices      `yaml:"food" json:"food"`
	Transport          TransportPrices     `yaml:"transport" json:"transport"`
	Activities         CategoryPrices      `yaml:"activities" json:"activities"`
	Currency           string              `yaml:"currency" json:"currency"`
	ExchangeRate       float64             `yaml:"exchange_rate" json:"exchange_rate"`
	Tips               string              `yaml:"tips,omitempty" json:"tips,omitempty"`
	FlightCostEstimate int64               `yaml:"flight_cost" json:"flight_cost_estimate"`
}

// Lodging returns the accommodation row for a lodging type.
func (d *DestinationProfile) Lodging(lt LodgingType) (CategoryPrices, bool) {
	p, ok := d.Accommodation[lt]
	return p, ok
}

// MinimumDailyCost is the budget-tier cost of one traveler-day.
func (d *DestinationProfile) MinimumDailyCost(lt LodgingType) int64 {
	acc := d.Accommodation[lt]
	return acc.Budget + d.Food.Budget + d.Transport.Local + d.Activities.Budget
}

// Validate checks tier ordering and completeness of the profile.
func (d *DestinationProfile) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("destination name is required")
	}
	for _, lt := range LodgingTypes {
		p, ok := d.Accommodation[lt]
		if !ok {
			return fmt.Errorf("%s: accommodation.%s is missing", d.Name, lt)
		}
		if err := p.validate(); err != nil {
			return fmt.Errorf("%s: accommodation.%s: %w", d.Name, lt, err)
		}
	}
	if err := d.Food.validate(); err != nil {
		return fmt.Errorf("%s: food: %w", d.Name, err)
	}
	if err := d.Activities.validate(); err != nil {
		return fmt.Errorf("%s: activities: %w", d.Name, err)
	}
	for _, v := range []int64{d.Transport.Local, d.Transport.City, d.Transport.Country} {
		if v < 0 || v > MaxPrice {
			return fmt.Errorf("%s: transport prices must be between 0 and %d, got %d", d.Name, MaxPrice, v)
		}
	}
	if d.FlightCostEstimate < 0 || d.FlightCostEstimate > MaxPrice {
		return fmt.Errorf("%s: flight_cost must be between 0 and %d, got %d", d.Name, MaxPrice, d.FlightCostEstimate)
	}
	if strings.TrimSpace(d.Currency) == "" {
		return fmt.Errorf("%s: currency is required", d.Name)
	}
	return nil
}
