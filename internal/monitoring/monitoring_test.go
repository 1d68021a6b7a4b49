package monitoring_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcost/travelcost/internal/monitoring"
)

func TestMetricsCollector_FullStats(t *testing.T) {
	mc := monitoring.NewMetricsCollector()

	mc.RecordRequest(true, 0)
	mc.RecordRequest(true, 0)
	mc.RecordRequest(false, 0)
	mc.RecordRateLimited()

	mc.RecordToolCall(&monitoring.ToolEvent{Tool: "calculate_travel_cost", Mode: "fixed_tier", Outcome: monitoring.OutcomeOK})
	mc.RecordToolCall(&monitoring.ToolEvent{Tool: "calculate_travel_cost", Mode: "budget", Outcome: monitoring.OutcomeOK})
	mc.RecordToolCall(&monitoring.ToolEvent{Tool: "calculate_travel_cost", Mode: "budget", Outcome: monitoring.OutcomeInfeasible})
	mc.RecordToolCall(&monitoring.ToolEvent{Tool: "get_destination_info", Outcome: monitoring.OutcomeUnsupported})
	mc.RecordToolCall(&monitoring.ToolEvent{Tool: "compare_destinations", Outcome: monitoring.OutcomeOK})

	s := mc.FullStats()
	assert.Equal(t, monitoring.RequestStats{Total: 3, Successful: 2, Failed: 1, RateLimited: 1}, s.Requests)
	assert.Equal(t, int64(5), s.Tools.Calls)
	assert.Equal(t, int64(1), s.Tools.Errors)
	assert.Equal(t, map[string]int64{
		"calculate_travel_cost": 3,
		"get_destination_info":  1,
		"compare_destinations":  1,
	}, s.Tools.ByTool)
	assert.Equal(t, monitoring.BudgetStats{Estimates: 1, Allocations: 1, Infeasible: 1, Comparisons: 1}, s.Budgets)
	assert.Equal(t, "0m", s.Uptime)
}

func TestMetricsCollector_Concurrent(t *testing.T) {
	mc := monitoring.NewMetricsCollector()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				mc.RecordRequest(true, 0)
				mc.RecordToolCall(&monitoring.ToolEvent{Tool: "ping", Outcome: monitoring.OutcomeOK})
			}
		}()
	}
	wg.Wait()

	s := mc.FullStats()
	assert.Equal(t, int64(1000), s.Requests.Total)
	assert.Equal(t, int64(1000), s.Tools.ByTool["ping"])
}

func TestTracker_Disabled(t *testing.T) {
	tr, err := monitoring.NewTracker(monitoring.TelemetryConfig{})
	require.NoError(t, err)
	tr.RecordTool(&monitoring.ToolEvent{Tool: "x"})
	assert.NoError(t, tr.Close())
}

func TestTracker_WritesJSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "tools.jsonl")

	tr, err := monitoring.NewTracker(monitoring.TelemetryConfig{Enabled: true, LogPath: path})
	require.NoError(t, err)

	tr.RecordTool(&monitoring.ToolEvent{Tool: "calculate_travel_cost", Destination: "Japan", Outcome: monitoring.OutcomeOK, GrandTotal: 575000})
	tr.RecordTool(&monitoring.ToolEvent{Tool: "compare_destinations", Outcome: monitoring.OutcomeInvalid, Error: "invalid days"})
	tr.RecordInit(&monitoring.InitEvent{Event: "server_init", ServerPort: 3000, Destinations: 12})
	require.NoError(t, tr.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var events []monitoring.ToolEvent
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev monitoring.ToolEvent
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		events = append(events, ev)
	}
	require.Len(t, events, 2)
	assert.Equal(t, "Japan", events[0].Destination)
	assert.Equal(t, int64(575000), events[0].GrandTotal)
	assert.Equal(t, monitoring.OutcomeInvalid, events[1].Outcome)

	initData, err := os.ReadFile(filepath.Join(dir, "logs", "init.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(initData), `"event":"server_init"`)
}

func TestSetupLogger_File(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "travelcost.log")
	closer, err := monitoring.SetupLogger(monitoring.LoggerConfig{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info().Msg("dropped")
	log.Warn().Str("destination", "Japan").Msg("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"destination":"Japan"`)
}

func TestSetupLogger_BadLevel(t *testing.T) {
	_, err := monitoring.SetupLogger(monitoring.LoggerConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := monitoring.NewLogger(&buf, "console", true)
	logger.Info().Str("tool", "ping").Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "tool=ping")
}
