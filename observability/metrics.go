package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the engine's metric instruments.
type Metrics struct {
	runTotal     metric.Int64Counter
	runDuration  metric.Float64Histogram
	nodeTotal    metric.Int64Counter
	nodeDuration metric.Float64Histogram
	recordsOut   metric.Int64Counter
	memoHits     metric.Int64Counter
	diagnostics  metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runTotal, err := meter.Int64Counter("graphx.run.total",
		metric.WithDescription("Total number of graph runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating graphx.run.total counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("graphx.run.duration",
		metric.WithDescription("Duration of graph runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating graphx.run.duration histogram: %w", err)
	}

	nodeTotal, err := meter.Int64Counter("graphx.node.total",
		metric.WithDescription("Total number of node computations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating graphx.node.total counter: %w", err)
	}

	nodeDuration, err := meter.Float64Histogram("graphx.node.duration",
		metric.WithDescription("Duration of node computations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating graphx.node.duration histogram: %w", err)
	}

	recordsOut, err := meter.Int64Counter("graphx.node.records",
		metric.WithDescription("Records produced by node computations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating graphx.node.records counter: %w", err)
	}

	memoHits, err := meter.Int64Counter("graphx.node.memo_hits",
		metric.WithDescription("Node requests served from the memoized table"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating graphx.node.memo_hits counter: %w", err)
	}

	diagnostics, err := meter.Int64Counter("graphx.diagnostics.total",
		metric.WithDescription("Recoverable conditions by code and node"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating graphx.diagnostics.total counter: %w", err)
	}

	return &Metrics{
		runTotal:     runTotal,
		runDuration:  runDuration,
		nodeTotal:    nodeTotal,
		nodeDuration: nodeDuration,
		recordsOut:   recordsOut,
		memoHits:     memoHits,
		diagnostics:  diagnostics,
	}, nil
}

// RecordRun records a completed graph run.
func (m *Metrics) RecordRun(ctx context.Context, job, status string, duration time.Duration) {
	m.runTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("job", job),
		attribute.String("status", status),
	))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("job", job),
	))
}

// RecordNode records one node computation and the records it produced.
func (m *Metrics) RecordNode(ctx context.Context, node, status string, records int, duration time.Duration) {
	m.nodeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("node", node),
		attribute.String("status", status),
	))
	m.nodeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("node", node),
	))
	m.recordsOut.Add(ctx, int64(records), metric.WithAttributes(
		attribute.String("node", node),
	))
}

// RecordMemoHit records a node request served without recomputation.
func (m *Metrics) RecordMemoHit(ctx context.Context, node string) {
	m.memoHits.Add(ctx, 1, metric.WithAttributes(attribute.String("node", node)))
}

// RecordDiagnostic records a recoverable condition.
func (m *Metrics) RecordDiagnostic(ctx context.Context, code, node string) {
	m.diagnostics.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("node", node),
	))
}
