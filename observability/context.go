package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RunContext holds observability context for one graph run.
type RunContext struct {
	Job       string
	RunID     string
	StartTime time.Time
	Metrics   *Metrics
}

// NewRunContext creates a run context.
// If metrics is nil, metric recording is silently skipped.
func NewRunContext(job, runID string, metrics *Metrics) *RunContext {
	return &RunContext{
		Job:       job,
		RunID:     runID,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

type runContextKey struct{}

// WithRunContext stores a RunContext in the context.
func WithRunContext(ctx context.Context, rc *RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, rc)
}

// RunContextFromContext retrieves the RunContext from context, or nil.
func RunContextFromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runContextKey{}).(*RunContext); ok {
		return rc
	}
	return nil
}

// StartRun starts the span covering the whole run.
func (rc *RunContext) StartRun(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanRun)
	span.SetAttributes(
		attribute.String(AttrJob, rc.Job),
		attribute.String(AttrRunID, rc.RunID),
	)
	return ctx, span
}

// EndRun ends the run span and records run metrics.
func (rc *RunContext) EndRun(ctx context.Context, span trace.Span, status string, err error) {
	duration := time.Since(rc.StartTime)
	if err != nil {
		span.RecordError(err)
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if rc.Metrics != nil {
		rc.Metrics.RecordRun(ctx, rc.Job, status, duration)
	}
}

// StartNode starts a span for one node computation.
func (rc *RunContext) StartNode(ctx context.Context, node string, operations int) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanNode)
	span.SetAttributes(
		attribute.String(AttrRunID, rc.RunID),
		attribute.String(AttrNode, node),
		attribute.Int(AttrOperations, operations),
	)
	return ctx, span
}

// EndNode ends a node span and records node metrics.
func (rc *RunContext) EndNode(ctx context.Context, span trace.Span, node, status string, records int, duration time.Duration, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int(AttrRecords, records),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if rc.Metrics != nil {
		rc.Metrics.RecordNode(ctx, node, status, records, duration)
	}
}

// Duration returns the elapsed time since the run started.
func (rc *RunContext) Duration() time.Duration {
	return time.Since(rc.StartTime)
}
