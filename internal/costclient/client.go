// Package costclient provides a client for the travel cost HTTP API.
//
// FILES:
//   - client.go: API client and HTTP helpers
//   - errors.go: typed API errors
package costclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tripcost/travelcost/internal/config"
	"github.com/tripcost/travelcost/internal/costcontrol"
	"github.com/tripcost/travelcost/internal/pricing"
	"github.com/tripcost/travelcost/internal/travelcost"
)

// userAgent is sent with every request.
const userAgent = "travelcost-client/1.0"

// =============================================================================
// Client
// =============================================================================

// Client is the travel cost API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(client *Client) {
		client.httpClient.Timeout = timeout
	}
}

// NewClient creates a new API client.
// It reads TRAVELCOST_URL from environment if baseURL is empty.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("TRAVELCOST_URL")
	}
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.DefaultClientTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Response is a successful API response: the rendered report and the
// structured result behind it.
type Response[T any] struct {
	Text   string `json:"text"`
	Result T      `json:"result"`
}

// =============================================================================
// API Methods
// =============================================================================

// CalculateCost prices a trip. Budget mode failures come back as *APIError
// matching costcontrol.ErrInfeasibleBudget.
func (c *Client) CalculateCost(ctx context.Context, req travelcost.CalculateRequest) (*Response[travelcost.CostReport], error) {
	var resp Response[travelcost.CostReport]
	if err := c.do(ctx, http.MethodPost, "/api/calculate-cost", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DestinationInfo fetches the full price profile of one destination.
func (c *Client) DestinationInfo(ctx context.Context, destination string) (*Response[pricing.DestinationProfile], error) {
	if strings.TrimSpace(destination) == "" {
		return nil, fmt.Errorf("destination is required")
	}

	var resp Response[pricing.DestinationProfile]
	if err := c.do(ctx, http.MethodGet, "/api/destination/"+url.PathEscape(destination), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CompareDestinations ranks destinations by total trip cost.
func (c *Client) CompareDestinations(ctx context.Context, destinations []string, days int, budgetLevel string) (*Response[costcontrol.Comparison], error) {
	payload := struct {
		Destinations []string `json:"destinations"`
		Days         int      `json:"days"`
		BudgetLevel  string   `json:"budget_level"`
	}{
		Destinations: destinations,
		Days:         days,
		BudgetLevel:  budgetLevel,
	}

	var resp Response[costcontrol.Comparison]
	if err := c.do(ctx, http.MethodPost, "/api/compare-destinations", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Destinations lists the supported destination names.
func (c *Client) Destinations(ctx context.Context) ([]string, error) {
	var resp struct {
		Destinations []string `json:"destinations"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/destinations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Destinations, nil
}

// IsAvailable reports whether the server answers its health check.
func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultHealthTimeout)
	defer cancel()

	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return false
	}
	return resp.Status == "ok"
}

// =============================================================================
// HTTP Helpers
// =============================================================================

func (c *Client) do(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxRequestBodySize))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	return nil
}
