package monitoring

import "context"

type requestIDKey struct{}

// WithRequestID returns a context carrying a request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Recorder fans a tool event out to metrics and telemetry. Either may be nil.
type Recorder struct {
	Metrics *MetricsCollector
	Tracker *Tracker
}

// Record stores ev in every configured sink.
func (r *Recorder) Record(ev *ToolEvent) {
	if r == nil || ev == nil {
		return
	}
	if r.Metrics != nil {
		r.Metrics.RecordToolCall(ev)
	}
	if r.Tracker != nil {
		r.Tracker.RecordTool(ev)
	}
}
