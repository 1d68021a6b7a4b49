package costcontrol_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcost/travelcost/internal/costcontrol"
	"github.com/tripcost/travelcost/internal/pricing"
)

func TestCompare_SortsAscendingWithErrorsLast(t *testing.T) {
	cmp, err := costcontrol.Compare(loadTable(t),
		[]string{"France", "Atlantis", "Japan", "Vietnam", "El Dorado"}, 5, pricing.TierBudget)
	require.NoError(t, err)

	require.Len(t, cmp.Entries, 5)
	assert.Equal(t, "Vietnam", cmp.Entries[0].Destination)
	assert.Equal(t, "Japan", cmp.Entries[1].Destination)
	assert.Equal(t, "France", cmp.Entries[2].Destination)
	assert.Equal(t, costcontrol.ComparisonEntry{Destination: "Atlantis", Error: "unsupported destination"}, cmp.Entries[3])
	assert.Equal(t, "El Dorado", cmp.Entries[4].Destination)

	ranked := cmp.Ranked()
	require.Len(t, ranked, 3)
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i-1].GrandTotal, ranked[i].GrandTotal)
	}
	assert.Equal(t, []string{"Atlantis", "El Dorado"}, cmp.Unsupported())
}

func TestCompare_Figures(t *testing.T) {
	cmp, err := costcontrol.Compare(loadTable(t), []string{"japan"}, 3, pricing.TierMid)
	require.NoError(t, err)

	// hotel 140,000 + food 60,000 + local 15,000 + activities 50,000
	assert.Equal(t, costcontrol.ComparisonEntry{
		Destination: "Japan",
		DailyCost:   265000,
		TotalCost:   795000,
		FlightCost:  200000,
		GrandTotal:  995000,
	}, cmp.Entries[0])
	assert.Equal(t, 3, cmp.Days)
	assert.Equal(t, pricing.TierMid, cmp.Tier)
}

func TestCompare_StableForTies(t *testing.T) {
	cmp, err := costcontrol.Compare(loadTable(t), []string{"Italy", "Japan", "Italy", "japan"}, 2, pricing.TierLuxury)
	require.NoError(t, err)

	require.Len(t, cmp.Entries, 4)
	assert.Equal(t, cmp.Entries[0].GrandTotal, cmp.Entries[1].GrandTotal)
	assert.Equal(t, "Japan", cmp.Entries[0].Destination)
	assert.Equal(t, "Japan", cmp.Entries[1].Destination)
	assert.Equal(t, "Italy", cmp.Entries[2].Destination)
	assert.Equal(t, "Italy", cmp.Entries[3].Destination)
}

func TestCompare_InvalidArguments(t *testing.T) {
	table := loadTable(t)

	_, err := costcontrol.Compare(table, nil, 3, pricing.TierBudget)
	assert.True(t, errors.Is(err, costcontrol.ErrInvalidArgument))

	_, err = costcontrol.Compare(table, []string{"Japan"}, 0, pricing.TierBudget)
	assert.True(t, errors.Is(err, costcontrol.ErrInvalidArgument))

	_, err = costcontrol.Compare(table, []string{"Japan"}, 3, "premium")
	assert.True(t, errors.Is(err, costcontrol.ErrInvalidArgument))
}

func TestEstimateTrip(t *testing.T) {
	est, err := costcontrol.EstimateTrip(profile(t, "Japan"), 3, 2, pricing.LodgingGuesthouse, pricing.TierMid)
	require.NoError(t, err)

	assert.Equal(t, costcontrol.Breakdown{
		Accommodation: 80000, Food: 60000, Transport: 15000, Activities: 50000, Total: 205000,
	}, est.Daily)
	assert.Equal(t, int64(1230000), est.Total.Total)
	assert.Equal(t, int64(400000), est.FlightCost)
	assert.Equal(t, int64(1630000), est.GrandTotal)
}

func TestEstimateTrip_DefaultsToHotel(t *testing.T) {
	est, err := costcontrol.EstimateTrip(profile(t, "Japan"), 1, 1, "", pricing.TierLuxury)
	require.NoError(t, err)
	assert.Equal(t, pricing.LodgingHotel, est.Lodging)
	assert.Equal(t, int64(350000), est.Daily.Accommodation)
}

func TestEstimateTrip_InvalidArguments(t *testing.T) {
	p := profile(t, "Japan")

	_, err := costcontrol.EstimateTrip(p, 0, 1, "", pricing.TierBudget)
	assert.True(t, errors.Is(err, costcontrol.ErrInvalidArgument))

	_, err = costcontrol.EstimateTrip(p, 1, 0, "", pricing.TierBudget)
	assert.True(t, errors.Is(err, costcontrol.ErrInvalidArgument))

	_, err = costcontrol.EstimateTrip(p, 1, 1, "", "gold")
	assert.True(t, errors.Is(err, costcontrol.ErrInvalidArgument))

	_, err = costcontrol.EstimateTrip(nil, 1, 1, "", pricing.TierBudget)
	assert.True(t, errors.Is(err, costcontrol.ErrInvalidArgument))
}
