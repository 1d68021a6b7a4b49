package costclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tripcost/travelcost/internal/costcontrol"
	"github.com/tripcost/travelcost/internal/pricing"
	"github.com/tripcost/travelcost/internal/utils"
)

// Error types reported by the server.
const (
	ErrTypeInvalidRequest = "invalid_request"
	ErrTypeUnsupported    = "unsupported_destination"
	ErrTypeInfeasible     = "infeasible_budget"
	ErrTypeRateLimited    = "rate_limited"
)

// maxErrorText bounds how much of a non-JSON error body is kept.
const maxErrorText = 200

// APIError is a non-200 response from the server. It unwraps to the
// service sentinel matching Type, so errors.Is works across the wire.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Field      string
	Supported  []string
	Infeasible *costcontrol.InfeasibleBudgetError
	// Text is the rendered infeasibility report, when the server sent one.
	Text string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Type {
	case ErrTypeUnsupported:
		return pricing.ErrUnsupportedDestination
	case ErrTypeInfeasible:
		return costcontrol.ErrInfeasibleBudget
	case ErrTypeInvalidRequest:
		return costcontrol.ErrInvalidArgument
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var parsed struct {
		Error struct {
			Message    string                             `json:"message"`
			Type       string                             `json:"type"`
			Field      string                             `json:"field"`
			Supported  []string                           `json:"supported"`
			Infeasible *costcontrol.InfeasibleBudgetError `json:"infeasible"`
			Text       string                             `json:"text"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Type != "" {
		apiErr.Type = parsed.Error.Type
		apiErr.Message = parsed.Error.Message
		apiErr.Field = parsed.Error.Field
		apiErr.Supported = parsed.Error.Supported
		apiErr.Infeasible = parsed.Error.Infeasible
		apiErr.Text = parsed.Error.Text
		return apiErr
	}

	// Plain text bodies come from the middleware (rate limit, forbidden).
	apiErr.Message = utils.Truncate(strings.TrimSpace(string(body)), maxErrorText)
	if status == http.StatusTooManyRequests {
		apiErr.Type = ErrTypeRateLimited
	}
	return apiErr
}
