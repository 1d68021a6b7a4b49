package mcp_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/tripcost/travelcost/internal/costcontrol"
	"github.com/tripcost/travelcost/internal/mcp"
	"github.com/tripcost/travelcost/internal/monitoring"
	"github.com/tripcost/travelcost/internal/pricing"
	"github.com/tripcost/travelcost/internal/travelcost"
)

func newServer(t *testing.T, opts ...mcp.Option) *mcp.Server {
	t.Helper()
	table, err := pricing.Default()
	require.NoError(t, err)
	return mcp.NewServer(travelcost.NewService(table, costcontrol.CostControlConfig{}), opts...)
}

func call(t *testing.T, s *mcp.Server, msg string) gjson.Result {
	t.Helper()
	resp := s.HandleMessage(context.Background(), monitoring.TransportMCPStdio, []byte(msg))
	require.NotNil(t, resp, "expected a response to %s", msg)
	require.True(t, gjson.ValidBytes(resp), string(resp))
	return gjson.ParseBytes(resp)
}

// =============================================================================
// PROTOCOL
// =============================================================================

func TestInitialize(t *testing.T) {
	s := newServer(t, mcp.WithVersion("1.2.3"))

	r := call(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`)
	assert.Equal(t, "2.0", r.Get("jsonrpc").String())
	assert.Equal(t, int64(1), r.Get("id").Int())
	assert.Equal(t, mcp.ProtocolVersion, r.Get("result.protocolVersion").String())
	assert.Equal(t, "travel-cost-predictor", r.Get("result.serverInfo.name").String())
	assert.Equal(t, "1.2.3", r.Get("result.serverInfo.version").String())
	assert.True(t, r.Get("result.capabilities.tools").IsObject())
}

func TestIDEchoedVerbatim(t *testing.T) {
	s := newServer(t)

	r := call(t, s, `{"jsonrpc":"2.0","id":"abc-1","method":"ping"}`)
	assert.Equal(t, `"abc-1"`, r.Get("id").Raw)
	assert.True(t, r.Get("result").IsObject())

	r = call(t, s, `{"jsonrpc":"2.0","id":12345678901234567,"method":"ping"}`)
	assert.Equal(t, `12345678901234567`, r.Get("id").Raw)
}

func TestNotificationsGetNoResponse(t *testing.T) {
	s := newServer(t)
	assert.Nil(t, s.HandleMessage(context.Background(), monitoring.TransportMCPStdio,
		[]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)))
	assert.Nil(t, s.HandleMessage(context.Background(), monitoring.TransportMCPStdio,
		[]byte(`{"jsonrpc":"2.0","method":"no/such/method"}`)))
}

func TestProtocolErrors(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name string
		msg  string
		code int64
	}{
		{"malformed json", `{"jsonrpc":"2.0","id":1,"method":`, mcp.CodeParseError},
		{"array batch", `[{"jsonrpc":"2.0","id":1,"method":"ping"}]`, mcp.CodeInvalidRequest},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"ping"}`, mcp.CodeInvalidRequest},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, mcp.CodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`, mcp.CodeMethodNotFound},
		{"unknown tool", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"book_flight","arguments":{}}}`, mcp.CodeMethodNotFound},
		{"missing tool name", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{}}`, mcp.CodeInvalidParams},
		{"arguments not object", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_destination_info","arguments":[1]}}`, mcp.CodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := call(t, s, tt.msg)
			assert.Equal(t, tt.code, r.Get("error.code").Int(), r.Raw)
			assert.False(t, r.Get("result").Exists())
		})
	}
}

func TestParseErrorHasNullID(t *testing.T) {
	r := call(t, newServer(t), `not json`)
	assert.Equal(t, "null", r.Get("id").Raw)
}

func TestToolsList(t *testing.T) {
	r := call(t, newServer(t), `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)

	var names []string
	for _, tool := range r.Get("result.tools").Array() {
		names = append(names, tool.Get("name").String())
		assert.Equal(t, "object", tool.Get("inputSchema.type").String())
	}
	assert.Equal(t, []string{"calculate_travel_cost", "get_destination_info", "compare_destinations"}, names)
}

// =============================================================================
// TOOLS
// =============================================================================

func TestCalculateTravelCost_FixedTier(t *testing.T) {
	r := call(t, newServer(t), `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{
		"name":"calculate_travel_cost",
		"arguments":{"destination":"일본","days":3,"budget_level":"mid","travelers":2,"accommodation_type":"게스트하우스"}}}`)

	assert.False(t, r.Get("result.isError").Bool())
	assert.Equal(t, "text", r.Get("result.content.0.type").String())
	assert.Contains(t, r.Get("result.content.0.text").String(), "1,630,000 KRW")
	assert.Equal(t, "fixed_tier", r.Get("result.structuredContent.mode").String())
	assert.Equal(t, int64(1630000), r.Get("result.structuredContent.grand_total").Int())
}

func TestCalculateTravelCost_BudgetMode(t *testing.T) {
	r := call(t, newServer(t), `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{
		"name":"calculate_travel_cost",
		"arguments":{"destination":"Japan","days":3,"total_budget":200,"spending_level":"balanced"}}}`)

	sc := r.Get("result.structuredContent")
	assert.Equal(t, "budget", sc.Get("mode").String())
	assert.True(t, sc.Get("allocation.feasible").Bool())
	assert.Equal(t, "mid", sc.Get("allocation.selected_levels.accommodation").String())
	assert.Equal(t, int64(525000), sc.Get("allocation.budget_remaining").Int())
}

func TestCalculateTravelCost_InfeasibleIsNotAnError(t *testing.T) {
	r := call(t, newServer(t), `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{
		"name":"calculate_travel_cost",
		"arguments":{"destination":"Japan","days":3,"total_budget":40,"spending_level":"적당히 지출"}}}`)

	require.False(t, r.Get("error").Exists(), r.Raw)
	assert.False(t, r.Get("result.isError").Bool())
	sc := r.Get("result.structuredContent")
	assert.False(t, sc.Get("feasible").Bool())
	assert.Equal(t, "local_minimum", sc.Get("reason").String())
	assert.Equal(t, int64(58), sc.Get("minimum_required_units").Int())
	assert.Equal(t, int64(18), sc.Get("shortfall_units").Int())
	assert.Contains(t, r.Get("result.content.0.text").String(), "Shortfall: 18 units")
}

func TestCalculateTravelCost_InvalidParams(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name string
		args string
	}{
		{"days as string", `{"destination":"Japan","days":"3","budget_level":"mid"}`},
		{"fractional days", `{"destination":"Japan","days":2.5,"budget_level":"mid"}`},
		{"destination number", `{"destination":7,"days":3,"budget_level":"mid"}`},
		{"missing tier", `{"destination":"Japan","days":3}`},
		{"bad tier", `{"destination":"Japan","days":3,"budget_level":"premium"}`},
		{"zero days", `{"destination":"Japan","days":0,"budget_level":"mid"}`},
		{"huge days", `{"destination":"Japan","days":1e12,"budget_level":"mid"}`},
		{"half budget mode", `{"destination":"Japan","days":3,"total_budget":100}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := call(t, s, `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"calculate_travel_cost","arguments":`+tt.args+`}}`)
			assert.Equal(t, int64(mcp.CodeInvalidParams), r.Get("error.code").Int(), r.Raw)
		})
	}
}

func TestUnsupportedDestination(t *testing.T) {
	r := call(t, newServer(t), `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{
		"name":"get_destination_info","arguments":{"destination":"Atlantis"}}}`)

	assert.Equal(t, int64(mcp.CodeInvalidParams), r.Get("error.code").Int())
	assert.Equal(t, "Atlantis", r.Get("error.data.destination").String())
	assert.Len(t, r.Get("error.data.supported").Array(), 12)
}

func TestGetDestinationInfo(t *testing.T) {
	r := call(t, newServer(t), `{"jsonrpc":"2.0","id":8,"method":"tools/call","params":{
		"name":"get_destination_info","arguments":{"destination":"united states"}}}`)

	sc := r.Get("result.structuredContent")
	assert.Equal(t, "United States", sc.Get("name").String())
	assert.Equal(t, int64(900000), sc.Get("flight_cost_estimate").Int())
	assert.Equal(t, int64(650000), sc.Get("accommodation.hotel.luxury").Int())
	assert.Contains(t, r.Get("result.content.0.text").String(), "United States travel prices")
}

func TestCompareDestinations(t *testing.T) {
	r := call(t, newServer(t), `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{
		"name":"compare_destinations","arguments":{"destinations":["France","Atlantis","Vietnam"],"days":5,"budget_level":"budget"}}}`)

	entries := r.Get("result.structuredContent.comparisons").Array()
	require.Len(t, entries, 3)
	assert.Equal(t, "Vietnam", entries[0].Get("destination").String())
	assert.Equal(t, "France", entries[1].Get("destination").String())
	assert.Equal(t, "unsupported destination", entries[2].Get("error").String())

	r = call(t, newServer(t), `{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{
		"name":"compare_destinations","arguments":{"destinations":"France","days":5,"budget_level":"budget"}}}`)
	assert.Equal(t, int64(mcp.CodeInvalidParams), r.Get("error.code").Int())
}

func TestToolCallsAreRecorded(t *testing.T) {
	metrics := monitoring.NewMetricsCollector()
	s := newServer(t, mcp.WithRecorder(&monitoring.Recorder{Metrics: metrics}))

	call(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"calculate_travel_cost","arguments":{"destination":"Japan","days":3,"budget_level":"mid"}}}`)
	call(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"calculate_travel_cost","arguments":{"destination":"Japan","days":3,"total_budget":40,"spending_level":"max"}}}`)
	call(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_destination_info","arguments":{"destination":"Mars"}}}`)

	stats := metrics.FullStats()
	assert.Equal(t, int64(3), stats.Tools.Calls)
	assert.Equal(t, int64(1), stats.Tools.Errors)
	assert.Equal(t, int64(1), stats.Budgets.Estimates)
	assert.Equal(t, int64(1), stats.Budgets.Infeasible)
}

// =============================================================================
// TRANSPORTS
// =============================================================================

func TestServeStdio(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, newServer(t).ServeStdio(context.Background(), in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, int64(1), gjson.Get(lines[0], "id").Int())
	assert.Equal(t, int64(2), gjson.Get(lines[1], "id").Int())
	assert.Equal(t, int64(3), gjson.Get(lines[2], "id").Int())
}

func TestServeStdio_CancelWhileWaitingForInput(t *testing.T) {
	in, feed := io.Pipe()
	defer func() { _ = feed.Close() }()
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- newServer(t).ServeStdio(ctx, in, &out) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("ServeStdio did not return after cancel")
	}
	assert.Empty(t, out.String())
}

func TestServeStdio_ServesLinesUntilCancelled(t *testing.T) {
	in, feed := io.Pipe()
	defer func() { _ = feed.Close() }()
	out := &syncBuffer{}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- newServer(t).ServeStdio(ctx, in, out) }()

	_, err := io.WriteString(feed, `{"jsonrpc":"2.0","id":7,"method":"ping"}`+"\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return gjson.Get(strings.TrimSpace(out.String()), "id").Int() == 7
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("ServeStdio did not return after cancel")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestHTTPHandler(t *testing.T) {
	ts := httptest.NewServer(newServer(t).HTTPHandler())
	defer ts.Close()

	resp, err := http.Post(ts.URL, "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(mcp.SessionHeader))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	note, err := http.Post(ts.URL, "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	require.NoError(t, err)
	defer func() { _ = note.Body.Close() }()
	assert.Equal(t, http.StatusAccepted, note.StatusCode)
}

func TestWebSocketHandler(t *testing.T) {
	ts := httptest.NewServer(newServer(t).WebSocketHandler(nil))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "done") }()

	msg := `{"jsonrpc":"2.0","id":"w1","method":"tools/call","params":{"name":"compare_destinations","arguments":{"destinations":["Japan","Thailand"],"days":2,"budget_level":"mid"}}}`
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(msg)))

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)
	r := gjson.ParseBytes(data)
	assert.Equal(t, "w1", r.Get("id").String())
	assert.Equal(t, "Thailand", r.Get("result.structuredContent.comparisons.0.destination").String())
}
