package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tripcost/travelcost/internal/costcontrol"
	"github.com/tripcost/travelcost/internal/mcp"
	"github.com/tripcost/travelcost/internal/monitoring"
	"github.com/tripcost/travelcost/internal/pricing"
	"github.com/tripcost/travelcost/internal/travelcost"
	"github.com/tripcost/travelcost/internal/utils"
)

// Response is the body of every successful /api call: the rendered text
// report and the structured result it was rendered from.
type Response struct {
	Text   string `json:"text,omitempty"`
	Result any    `json:"result"`
}

// ErrorBody is the body of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an API error. Supported is set for unknown
// destinations, Infeasible for budgets that cannot cover the trip.
type ErrorDetail struct {
	Message    string                             `json:"message"`
	Type       string                             `json:"type"`
	Field      string                             `json:"field,omitempty"`
	Supported  []string                           `json:"supported,omitempty"`
	Infeasible *costcontrol.InfeasibleBudgetError `json:"infeasible,omitempty"`
	Text       string                             `json:"text,omitempty"`
}

// Error types.
const (
	ErrTypeInvalidRequest = "invalid_request"
	ErrTypeUnsupported    = "unsupported_destination"
	ErrTypeInfeasible     = "infeasible_budget"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := utils.MarshalNoEscape(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg, typ string, detail *ErrorDetail) {
	if detail == nil {
		detail = &ErrorDetail{}
	}
	detail.Message = msg
	detail.Type = typ
	writeJSON(w, status, ErrorBody{Error: *detail})
}

// writeServiceError maps service errors to status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var (
		ude *pricing.UnsupportedDestinationError
		ie  *costcontrol.InfeasibleBudgetError
		iae *costcontrol.InvalidArgumentError
	)
	switch {
	case errors.As(err, &ude):
		writeError(w, http.StatusNotFound, err.Error(), ErrTypeUnsupported, &ErrorDetail{Supported: ude.Supported})
	case errors.As(err, &ie):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), ErrTypeInfeasible,
			&ErrorDetail{Infeasible: ie, Text: s.svc.FormatInfeasible(ie)})
	case errors.As(err, &iae):
		writeError(w, http.StatusBadRequest, err.Error(), ErrTypeInvalidRequest, &ErrorDetail{Field: iae.Field})
	default:
		log.Error().Err(err).Msg("unexpected service error")
		writeError(w, http.StatusInternalServerError, "internal error", "server_error", nil)
	}
}

// decodeBody decodes a JSON request body, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// record stores a tool event for an /api call.
func (s *Server) record(r *http.Request, tool, destination string, start time.Time, err error) *monitoring.ToolEvent {
	ev := &monitoring.ToolEvent{
		RequestID:   monitoring.RequestID(r.Context()),
		Timestamp:   start,
		Transport:   monitoring.TransportHTTP,
		Tool:        tool,
		Destination: destination,
		Outcome:     travelcost.Outcome(err),
		LatencyMs:   time.Since(start).Milliseconds(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"message":      "Travel cost API server is running",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"version":      s.version,
		"destinations": len(s.svc.Destinations()),
	})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": mcp.Tools()})
}

func (s *Server) handleDestinations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"destinations": s.svc.Destinations()})
}

func (s *Server) handleCalculateCost(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req travelcost.CalculateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), ErrTypeInvalidRequest, nil)
		return
	}

	report, err := s.svc.CalculateCost(req)
	ev := s.record(r, mcp.ToolCalculateCost, req.Destination, start, err)
	if req.BudgetMode() {
		ev.Mode = travelcost.ModeBudget
	} else {
		ev.Mode = travelcost.ModeFixedTier
	}
	if err != nil {
		s.recorder.Record(ev)
		s.writeServiceError(w, err)
		return
	}
	ev.Destination = report.Destination
	ev.GrandTotal = report.GrandTotal
	s.recorder.Record(ev)
	writeJSON(w, http.StatusOK, Response{Text: s.svc.FormatReport(report), Result: report})
}

func (s *Server) handleDestinationInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	dest := strings.TrimSpace(r.PathValue("destination"))

	profile, err := s.svc.DestinationInfo(dest)
	s.recorder.Record(s.record(r, mcp.ToolDestinationInfo, dest, start, err))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Text: s.svc.FormatDestinationInfo(profile), Result: profile})
}

type compareRequest struct {
	Destinations []string `json:"destinations"`
	Days         int      `json:"days"`
	BudgetLevel  string   `json:"budget_level"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req compareRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), ErrTypeInvalidRequest, nil)
		return
	}

	cmp, err := s.svc.CompareDestinations(req.Destinations, req.Days, req.BudgetLevel)
	s.recorder.Record(s.record(r, mcp.ToolCompare, "", start, err))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Text: s.svc.FormatComparison(cmp), Result: cmp})
}
