package mcp

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/tripcost/travelcost/internal/travelcost"
)

// Tool names.
const (
	ToolCalculateCost   = "calculate_travel_cost"
	ToolDestinationInfo = "get_destination_info"
	ToolCompare         = "compare_destinations"
)

// Tool describes one callable tool in tools/list.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

var tierEnum = []string{"budget", "mid", "luxury"}

// Tools returns the tool catalogue.
func Tools() []Tool {
	return []Tool{
		{
			Name: ToolCalculateCost,
			Description: "Estimates the cost of a trip. Give budget_level for a fixed-tier estimate, " +
				"or total_budget and spending_level to fit the trip into a budget.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"destination": map[string]any{"type": "string", "description": "Destination country (e.g. Japan, 일본, France)"},
					"days":        map[string]any{"type": "number", "description": "Trip length in days"},
					"budget_level": map[string]any{
						"type": "string", "enum": tierEnum,
						"description": "Price tier for every category (budget, mid, luxury)",
					},
					"travelers": map[string]any{"type": "number", "description": "Number of travelers", "default": 1},
					"accommodation_type": map[string]any{
						"type": "string", "enum": []string{"hotel", "guesthouse", "resort", "pension", "호텔", "게스트하우스", "리조트", "펜션"},
						"description": "Lodging type", "default": "hotel",
					},
					"total_budget": map[string]any{"type": "number", "description": "Total budget in units of 10,000 KRW; enables budget mode"},
					"spending_level": map[string]any{
						"type": "string", "enum": []string{"lean", "balanced", "max", "가성비 지출", "적당히 지출", "모두 지출"},
						"description": "How much of the budget to spend (lean, balanced, max)",
					},
				},
				"required": []string{"destination", "days"},
			},
		},
		{
			Name:        ToolDestinationInfo,
			Description: "Returns every price recorded for a destination.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"destination": map[string]any{"type": "string", "description": "Destination country"},
				},
				"required": []string{"destination"},
			},
		},
		{
			Name:        ToolCompare,
			Description: "Compares the cost of a trip across several destinations, cheapest first.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"destinations": map[string]any{
						"type": "array", "items": map[string]any{"type": "string"},
						"description": "Destinations to compare",
					},
					"days":         map[string]any{"type": "number", "description": "Trip length in days"},
					"budget_level": map[string]any{"type": "string", "enum": tierEnum, "description": "Price tier"},
				},
				"required": []string{"destinations", "days", "budget_level"},
			},
		},
	}
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

func invalidParams(format string, args ...any) *RPCError {
	return &RPCError{Code: CodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

func stringArg(args gjson.Result, name string) (string, *RPCError) {
	v := args.Get(name)
	if !v.Exists() || v.Type == gjson.Null {
		return "", nil
	}
	if v.Type != gjson.String {
		return "", invalidParams("%s must be a string", name)
	}
	return v.String(), nil
}

// maxIntArg keeps float64 arguments in the exactly representable range.
const maxIntArg = 1 << 53

func intArg(args gjson.Result, name string) (int64, *RPCError) {
	v := args.Get(name)
	if !v.Exists() || v.Type == gjson.Null {
		return 0, nil
	}
	if v.Type != gjson.Number {
		return 0, invalidParams("%s must be a number", name)
	}
	f := v.Float()
	if f != math.Trunc(f) {
		return 0, invalidParams("%s must be a whole number, got %s", name, v.Raw)
	}
	if math.Abs(f) > maxIntArg {
		return 0, invalidParams("%s is out of range", name)
	}
	return int64(f), nil
}

func stringsArg(args gjson.Result, name string) ([]string, *RPCError) {
	v := args.Get(name)
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, invalidParams("%s must be an array of strings", name)
	}
	var out []string
	var bad *RPCError
	v.ForEach(func(_, item gjson.Result) bool {
		if item.Type != gjson.String {
			bad = invalidParams("%s must be an array of strings", name)
			return false
		}
		out = append(out, item.String())
		return true
	})
	return out, bad
}

// clampInt converts a parsed argument to int. Values beyond the int32 range
// are clamped; the service rejects them as out of range anyway.
func clampInt(v int64) int {
	return int(max(min(v, math.MaxInt32), math.MinInt32))
}

func parseCalculateArgs(args gjson.Result) (travelcost.CalculateRequest, *RPCError) {
	var req travelcost.CalculateRequest
	var err *RPCError

	if req.Destination, err = stringArg(args, "destination"); err != nil {
		return req, err
	}
	days, err := intArg(args, "days")
	if err != nil {
		return req, err
	}
	req.Days = clampInt(days)
	if req.BudgetLevel, err = stringArg(args, "budget_level"); err != nil {
		return req, err
	}
	travelers, err := intArg(args, "travelers")
	if err != nil {
		return req, err
	}
	req.Travelers = clampInt(travelers)
	if req.AccommodationType, err = stringArg(args, "accommodation_type"); err != nil {
		return req, err
	}
	if req.TotalBudget, err = intArg(args, "total_budget"); err != nil {
		return req, err
	}
	if req.SpendingLevel, err = stringArg(args, "spending_level"); err != nil {
		return req, err
	}
	return req, nil
}

type compareArgs struct {
	Destinations []string
	Days         int
	BudgetLevel  string
}

func parseCompareArgs(args gjson.Result) (compareArgs, *RPCError) {
	var out compareArgs
	var err *RPCError

	if out.Destinations, err = stringsArg(args, "destinations"); err != nil {
		return out, err
	}
	days, err := intArg(args, "days")
	if err != nil {
		return out, err
	}
	out.Days = clampInt(days)
	if out.BudgetLevel, err = stringArg(args, "budget_level"); err != nil {
		return out, err
	}
	return out, nil
}
