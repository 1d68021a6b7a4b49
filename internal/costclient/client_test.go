package costclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcost/travelcost/internal/config"
	"github.com/tripcost/travelcost/internal/costclient"
	"github.com/tripcost/travelcost/internal/costcontrol"
	"github.com/tripcost/travelcost/internal/pricing"
	"github.com/tripcost/travelcost/internal/server"
	"github.com/tripcost/travelcost/internal/travelcost"
)

func newTestServer(t *testing.T, rateLimit int) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.RateLimit = rateLimit

	table, err := pricing.Default()
	require.NoError(t, err)
	srv := server.New(cfg, travelcost.NewService(table, cfg.CostControl))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestNewClient_BaseURL(t *testing.T) {
	t.Setenv("TRAVELCOST_URL", "")
	assert.Equal(t, config.DefaultBaseURL, costclient.NewClient("").BaseURL())

	t.Setenv("TRAVELCOST_URL", "http://trips.internal:8080/")
	assert.Equal(t, "http://trips.internal:8080", costclient.NewClient("").BaseURL())

	assert.Equal(t, "http://explicit:1", costclient.NewClient("http://explicit:1").BaseURL())
}

func TestClient_CalculateCost(t *testing.T) {
	ts := newTestServer(t, -1)
	c := costclient.NewClient(ts.URL)

	resp, err := c.CalculateCost(context.Background(), travelcost.CalculateRequest{
		Destination: "Japan",
		Days:        3,
		BudgetLevel: "budget",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(575000), resp.Result.GrandTotal)
	assert.Equal(t, travelcost.ModeFixedTier, resp.Result.Mode)
	require.NotNil(t, resp.Result.Estimate)
	assert.Contains(t, resp.Text, "575,000 KRW")
}

func TestClient_BudgetMode(t *testing.T) {
	ts := newTestServer(t, -1)
	c := costclient.NewClient(ts.URL)

	resp, err := c.CalculateCost(context.Background(), travelcost.CalculateRequest{
		Destination:   "Japan",
		Days:          3,
		TotalBudget:   200,
		SpendingLevel: "balanced",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Result.Allocation)
	assert.Equal(t, int64(525000), resp.Result.Allocation.BudgetRemaining)
}

func TestClient_Infeasible(t *testing.T) {
	ts := newTestServer(t, -1)
	c := costclient.NewClient(ts.URL)

	_, err := c.CalculateCost(context.Background(), travelcost.CalculateRequest{
		Destination:   "Japan",
		Days:          3,
		TotalBudget:   40,
		SpendingLevel: "lean",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, costcontrol.ErrInfeasibleBudget))

	var apiErr *costclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	require.NotNil(t, apiErr.Infeasible)
	assert.Equal(t, int64(58), apiErr.Infeasible.MinimumRequiredUnits)
	assert.Contains(t, apiErr.Text, "Shortfall: 18 units")
}

func TestClient_DestinationInfo(t *testing.T) {
	ts := newTestServer(t, -1)
	c := costclient.NewClient(ts.URL)

	resp, err := c.DestinationInfo(context.Background(), "미국")
	require.NoError(t, err)
	assert.Equal(t, "United States", resp.Result.Name)
	assert.Equal(t, int64(900000), resp.Result.FlightCostEstimate)

	_, err = c.DestinationInfo(context.Background(), "Mars")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pricing.ErrUnsupportedDestination))
	var apiErr *costclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Len(t, apiErr.Supported, 12)

	_, err = c.DestinationInfo(context.Background(), "  ")
	assert.Error(t, err)
}

func TestClient_CompareDestinations(t *testing.T) {
	ts := newTestServer(t, -1)
	c := costclient.NewClient(ts.URL)

	resp, err := c.CompareDestinations(context.Background(), []string{"France", "Vietnam"}, 5, "mid")
	require.NoError(t, err)
	require.Len(t, resp.Result.Entries, 2)
	assert.Equal(t, "Vietnam", resp.Result.Entries[0].Destination)

	_, err = c.CompareDestinations(context.Background(), nil, 5, "mid")
	assert.True(t, errors.Is(err, costcontrol.ErrInvalidArgument))
}

func TestClient_Destinations(t *testing.T) {
	ts := newTestServer(t, -1)
	c := costclient.NewClient(ts.URL)

	names, err := c.Destinations(context.Background())
	require.NoError(t, err)
	assert.Len(t, names, 12)
	assert.Contains(t, names, "Canada")
}

func TestClient_RateLimited(t *testing.T) {
	ts := newTestServer(t, 1)
	c := costclient.NewClient(ts.URL)

	_, err := c.Destinations(context.Background())
	require.NoError(t, err)
	_, err = c.Destinations(context.Background())

	var apiErr *costclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, costclient.ErrTypeRateLimited, apiErr.Type)
}

func TestClient_PlainTextError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := costclient.NewClient(ts.URL).Destinations(context.Background())
	var apiErr *costclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.NoError(t, apiErr.Unwrap())
}

func TestClient_IsAvailable(t *testing.T) {
	ts := newTestServer(t, -1)
	assert.True(t, costclient.NewClient(ts.URL).IsAvailable(context.Background()))

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer slow.Close()
	c := costclient.NewClient(slow.URL, costclient.WithTimeout(50*time.Millisecond))
	assert.False(t, c.IsAvailable(context.Background()))

	ts.Close()
	assert.False(t, costclient.NewClient(ts.URL).IsAvailable(context.Background()))
}
