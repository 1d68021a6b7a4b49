// Package monitoring - metrics.go provides simple counters.
//
// DESIGN: Lightweight in-memory counters for operational metrics:
//   - requests/successes: HTTP request counts
//   - tool calls:         Per-tool call and error counts, any transport
//   - budgets:            Estimates, allocations and infeasible budgets
//   - rate_limited:       Requests rejected by the per-IP limiter
package monitoring

import (
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector collects operational metrics.
type MetricsCollector struct {
	startedAt time.Time

	// Request counters
	requests    atomic.Int64
	successes   atomic.Int64
	rateLimited atomic.Int64

	// Calculation counters
	estimates   atomic.Int64
	allocations atomic.Int64
	infeasible  atomic.Int64
	comparisons atomic.Int64

	mu         sync.Mutex
	toolCalls  map[string]int64
	toolErrors map[string]int64
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		startedAt:  time.Now(),
		toolCalls:  make(map[string]int64),
		toolErrors: make(map[string]int64),
	}
}

// RecordRequest records an HTTP request. Any status below 500 counts as a
// success; client errors are the caller's problem, not ours.
func (mc *MetricsCollector) RecordRequest(success bool, _ time.Duration) {
	mc.requests.Add(1)
	if success {
		mc.successes.Add(1)
	}
}

// RecordRateLimited records a request rejected by the rate limiter.
func (mc *MetricsCollector) RecordRateLimited() { mc.rateLimited.Add(1) }

// RecordToolCall records a tool call and its outcome.
func (mc *MetricsCollector) RecordToolCall(ev *ToolEvent) {
	mc.mu.Lock()
	mc.toolCalls[ev.Tool]++
	if ev.Outcome != OutcomeOK && ev.Outcome != OutcomeInfeasible {
		mc.toolErrors[ev.Tool]++
	}
	mc.mu.Unlock()

	switch {
	case ev.Outcome == OutcomeInfeasible:
		mc.infeasible.Add(1)
	case ev.Outcome != OutcomeOK:
	case ev.Mode == "budget":
		mc.allocations.Add(1)
	case ev.Mode == "fixed_tier":
		mc.estimates.Add(1)
	}
	if ev.Tool == "compare_destinations" && ev.Outcome == OutcomeOK {
		mc.comparisons.Add(1)
	}
}

// StartedAt returns when the metrics collector was created.
func (mc *MetricsCollector) StartedAt() time.Time { return mc.startedAt }

// FullStats returns all metrics in a structured format for the /stats endpoint.
func (mc *MetricsCollector) FullStats() StatsResponse {
	uptime := time.Since(mc.startedAt)
	requests := mc.requests.Load()
	successes := mc.successes.Load()

	mc.mu.Lock()
	calls := maps.Clone(mc.toolCalls)
	errs := maps.Clone(mc.toolErrors)
	mc.mu.Unlock()

	var total, failed int64
	for _, n := range calls {
		total += n
	}
	for _, n := range errs {
		failed += n
	}

	return StatsResponse{
		Uptime:        formatDuration(uptime),
		UptimeSeconds: int64(uptime.Seconds()),
		StartedAt:     mc.startedAt.Format(time.RFC3339),
		Requests: RequestStats{
			Total:       requests,
			Successful:  successes,
			Failed:      requests - successes,
			RateLimited: mc.rateLimited.Load(),
		},
		Tools: ToolStats{
			Calls:  total,
			Errors: failed,
			ByTool: calls,
		},
		Budgets: BudgetStats{
			Estimates:   mc.estimates.Load(),
			Allocations: mc.allocations.Load(),
			Infeasible:  mc.infeasible.Load(),
			Comparisons: mc.comparisons.Load(),
		},
	}
}

// StatsResponse is the structured response for the /stats endpoint.
type StatsResponse struct {
	Uptime        string       `json:"uptime"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartedAt     string       `json:"started_at"`
	Requests      RequestStats `json:"requests"`
	Tools         ToolStats    `json:"tools"`
	Budgets       BudgetStats  `json:"budgets"`
}

// RequestStats holds request count metrics.
type RequestStats struct {
	Total       int64 `json:"total"`
	Successful  int64 `json:"successful"`
	Failed      int64 `json:"failed"`
	RateLimited int64 `json:"rate_limited"`
}

// ToolStats holds tool call metrics.
type ToolStats struct {
	Calls  int64            `json:"calls"`
	Errors int64            `json:"errors"`
	ByTool map[string]int64 `json:"by_tool"`
}

// BudgetStats holds calculation metrics.
type BudgetStats struct {
	Estimates   int64 `json:"estimates"`
	Allocations int64 `json:"allocations"`
	Infeasible  int64 `json:"infeasible"`
	Comparisons int64 `json:"comparisons"`
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
