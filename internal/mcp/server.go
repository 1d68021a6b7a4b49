package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/tripcost/travelcost/internal/costcontrol"
	"github.com/tripcost/travelcost/internal/monitoring"
	"github.com/tripcost/travelcost/internal/pricing"
	"github.com/tripcost/travelcost/internal/travelcost"
)

// Server dispatches MCP messages to the cost service. It holds no
// per-session state and is safe for concurrent use.
type Server struct {
	svc      *travelcost.Service
	recorder *monitoring.Recorder
	version  string
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder records every tool call.
func WithRecorder(r *monitoring.Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithVersion sets the version reported by initialize.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// NewServer creates an MCP server over svc.
func NewServer(svc *travelcost.Service, opts ...Option) *Server {
	s := &Server{svc: svc, version: "dev"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ToolResult is the result of tools/call.
type ToolResult struct {
	Content           []Content `json:"content"`
	StructuredContent any       `json:"structuredContent,omitempty"`
	IsError           bool      `json:"isError"`
}

// Content is one content block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textResult(text string, structured any) *ToolResult {
	return &ToolResult{Content: []Content{{Type: "text", Text: text}}, StructuredContent: structured}
}

// infeasibleResult is the structured content of an infeasible budget.
type infeasibleResult struct {
	Feasible bool `json:"feasible"`
	*costcontrol.InfeasibleBudgetError
}

// HandleMessage processes one JSON-RPC message and returns the encoded
// response, or nil for notifications.
func (s *Server) HandleMessage(ctx context.Context, transport monitoring.Transport, data []byte) []byte {
	req, rpcErr := parseRequest(data)
	if rpcErr != nil {
		return errorResponse(requestID(data), rpcErr)
	}

	result, rpcErr := s.dispatch(ctx, transport, req)
	if req.id == "" {
		// Notifications never get a response, even on error.
		return nil
	}
	if rpcErr != nil {
		return errorResponse(req.id, rpcErr)
	}
	out, err := resultResponse(req.id, result)
	if err != nil {
		log.Error().Err(err).Str("method", req.method).Msg("mcp: failed to encode result")
		return errorResponse(req.id, &RPCError{Code: CodeInternalError, Message: "Internal error"})
	}
	return out
}

func (s *Server) dispatch(ctx context.Context, transport monitoring.Transport, req *request) (any, *RPCError) {
	switch req.method {
	case MethodInitialize:
		return map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": ServerName, "version": s.version},
		}, nil
	case MethodInitialized:
		return nil, nil
	case MethodPing:
		return map[string]any{}, nil
	case MethodToolsList:
		return map[string]any{"tools": Tools()}, nil
	case MethodToolsCall:
		return s.callTool(ctx, transport, req.params)
	}
	return nil, &RPCError{Code: CodeMethodNotFound, Message: "Method not found: " + req.method}
}

func (s *Server) callTool(ctx context.Context, transport monitoring.Transport, params gjson.Result) (*ToolResult, *RPCError) {
	name := params.Get("name")
	if name.Type != gjson.String {
		return nil, invalidParams("params.name must be a string")
	}
	args := params.Get("arguments")
	if args.Exists() && args.Type != gjson.Null && !args.IsObject() {
		return nil, invalidParams("params.arguments must be an object")
	}

	start := time.Now()
	ev := &monitoring.ToolEvent{
		RequestID: monitoring.RequestID(ctx),
		Timestamp: start,
		Transport: transport,
		Tool:      name.String(),
	}

	var (
		result *ToolResult
		rpcErr *RPCError
	)
	switch name.String() {
	case ToolCalculateCost:
		result, rpcErr = s.calculateCost(args, ev)
	case ToolDestinationInfo:
		result, rpcErr = s.destinationInfo(args, ev)
	case ToolCompare:
		result, rpcErr = s.compare(args, ev)
	default:
		return nil, &RPCError{Code: CodeMethodNotFound, Message: "Unknown tool: " + name.String()}
	}

	ev.LatencyMs = time.Since(start).Milliseconds()
	if rpcErr != nil && ev.Outcome == "" {
		ev.Outcome = monitoring.OutcomeInvalid
		ev.Error = rpcErr.Message
	}
	s.recorder.Record(ev)
	log.Debug().
		Str("request_id", ev.RequestID).
		Str("tool", ev.Tool).
		Str("outcome", string(ev.Outcome)).
		Int64("latency_ms", ev.LatencyMs).
		Msg("mcp: tool call")
	return result, rpcErr
}

func (s *Server) calculateCost(args gjson.Result, ev *monitoring.ToolEvent) (*ToolResult, *RPCError) {
	req, rpcErr := parseCalculateArgs(args)
	if rpcErr != nil {
		return nil, rpcErr
	}
	ev.Destination = req.Destination

	report, err := s.svc.CalculateCost(req)
	ev.Outcome = travelcost.Outcome(err)
	if err != nil {
		ev.Error = err.Error()
		var ie *costcontrol.InfeasibleBudgetError
		if errors.As(err, &ie) {
			ev.Mode = travelcost.ModeBudget
			return textResult(s.svc.FormatInfeasible(ie), infeasibleResult{InfeasibleBudgetError: ie}), nil
		}
		return nil, toRPCError(err)
	}
	ev.Destination = report.Destination
	ev.Mode = report.Mode
	ev.GrandTotal = report.GrandTotal
	return textResult(s.svc.FormatReport(report), report), nil
}

func (s *Server) destinationInfo(args gjson.Result, ev *monitoring.ToolEvent) (*ToolResult, *RPCError) {
	dest, rpcErr := stringArg(args, "destination")
	if rpcErr != nil {
		return nil, rpcErr
	}
	ev.Destination = dest
	if dest == "" {
		return nil, invalidParams("destination is required")
	}

	profile, err := s.svc.DestinationInfo(dest)
	ev.Outcome = travelcost.Outcome(err)
	if err != nil {
		ev.Error = err.Error()
		return nil, toRPCError(err)
	}
	ev.Destination = profile.Name
	return textResult(s.svc.FormatDestinationInfo(profile), profile), nil
}

func (s *Server) compare(args gjson.Result, ev *monitoring.ToolEvent) (*ToolResult, *RPCError) {
	ca, rpcErr := parseCompareArgs(args)
	if rpcErr != nil {
		return nil, rpcErr
	}

	cmp, err := s.svc.CompareDestinations(ca.Destinations, ca.Days, ca.BudgetLevel)
	ev.Outcome = travelcost.Outcome(err)
	if err != nil {
		ev.Error = err.Error()
		return nil, toRPCError(err)
	}
	return textResult(s.svc.FormatComparison(cmp), cmp), nil
}

// toRPCError maps service errors to JSON-RPC errors.
func toRPCError(err error) *RPCError {
	var ude *pricing.UnsupportedDestinationError
	if errors.As(err, &ude) {
		return &RPCError{
			Code:    CodeInvalidParams,
			Message: err.Error(),
			Data:    map[string]any{"destination": ude.Destination, "supported": ude.Supported},
		}
	}
	var iae *costcontrol.InvalidArgumentError
	if errors.As(err, &iae) {
		return &RPCError{Code: CodeInvalidParams, Message: err.Error(), Data: map[string]any{"field": iae.Field}}
	}
	log.Error().Err(err).Msg("mcp: tool failed")
	return &RPCError{Code: CodeInternalError, Message: "Internal error"}
}
