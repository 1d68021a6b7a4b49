package pricing

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultFlightCost applies to destinations whose source data carries no
// flight estimate.
const DefaultFlightCost int64 = 500000

// Table is an immutable destination lookup. Build it once with NewTable and
// share it freely; no method mutates it.
type Table struct {
	profiles []DestinationProfile
	index    map[string]int
}

// TableOption configures NewTable.
type TableOption func(*tableOptions)

type tableOptions struct {
	defaultFlightCost int64
}

// WithDefaultFlightCost overrides the flight estimate used when a profile
// leaves flight_cost unset.
func WithDefaultFlightCost(cost int64) TableOption {
	return func(o *tableOptions) {
		o.defaultFlightCost = cost
	}
}

// NewTable validates the profiles and indexes them by name and alias.
func NewTable(profiles []DestinationProfile, opts ...TableOption) (*Table, error) {
	o := tableOptions{defaultFlightCost: DefaultFlightCost}
	for _, opt := range opts {
		opt(&o)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("price table has no destinations")
	}

	t := &Table{
		profiles: make([]DestinationProfile, 0, len(profiles)),
		index:    make(map[string]int, len(profiles)*2),
	}
	for _, p := range profiles {
		p = p.clone()
		if p.FlightCostEstimate == 0 {
			p.FlightCostEstimate = o.defaultFlightCost
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid price table: %w", err)
		}
		pos := len(t.profiles)
		for _, key := range append([]string{p.Name}, p.Aliases...) {
			k := normalizeKey(key)
			if k == "" {
				continue
			}
			if prev, dup := t.index[k]; dup {
				return nil, fmt.Errorf("invalid price table: %q of %s collides with %s", key, p.Name, t.profiles[prev].Name)
			}
			t.index[k] = pos
		}
		t.profiles = append(t.profiles, p)
	}
	return t, nil
}

// GetProfile looks a destination up by display name or alias. Matching
// ignores case, surrounding space and diacritics. The returned profile is a
// copy.
func (t *Table) GetProfile(destination string) (*DestinationProfile, error) {
	pos, ok := t.index[normalizeKey(destination)]
	if !ok {
		return nil, &UnsupportedDestinationError{
			Destination: destination,
			Supported:   t.ListSupportedDestinations(),
		}
	}
	p := t.profiles[pos].clone()
	return &p, nil
}

// ListSupportedDestinations returns display names in table order.
func (t *Table) ListSupportedDestinations() []string {
	names := make([]string, len(t.profiles))
	for i, p := range t.profiles {
		names[i] = p.Name
	}
	return names
}

// Len returns the number of destinations.
func (t *Table) Len() int { return len(t.profiles) }

func (d DestinationProfile) clone() DestinationProfile {
	d.Aliases = slices.Clone(d.Aliases)
	acc := make(AccommodationPrices, len(d.Accommodation))
	for k, v := range d.Accommodation {
		acc[k] = v
	}
	d.Accommodation = acc
	return d
}

// normalizeKey strips diacritics and case so "Japan", " JAPAN " and
// "japán" share one key. Hangul survives the NFKD/NFC round trip.
func normalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(strings.Join(strings.Fields(stripped), " "))
}
