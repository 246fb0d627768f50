package dag

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/graphx/errors"
	"github.com/kbukum/graphx/logger"
	"github.com/kbukum/graphx/observability"
	"github.com/kbukum/graphx/ops"
)

// NodeInfo identifies a chain computation for hooks.
type NodeInfo struct {
	ID         int
	Name       string
	Operations int
}

// Hook observes a run. NodeStarted may return a derived context that is
// used for the computation and handed back to NodeFinished.
type Hook interface {
	NodeStarted(ctx context.Context, n NodeInfo) context.Context
	NodeFinished(ctx context.Context, n NodeInfo, records int, duration time.Duration, err error)
	// NodeServed is called when a request is answered from the cache.
	NodeServed(ctx context.Context, n NodeInfo)
	Diagnostic(ctx context.Context, d ops.Diagnostic)
}

func nodeStatus(err error) string {
	if err != nil {
		return StatusFailed
	}
	return StatusCompleted
}

// tracingHook opens one span per chain computation and records metrics
// through the run's observability.RunContext.
type tracingHook struct{}

// TracingHook returns a Hook creating OpenTelemetry spans per computation.
// Metrics are recorded when the run context carries observability.Metrics.
func TracingHook() Hook { return tracingHook{} }

func (tracingHook) NodeStarted(ctx context.Context, n NodeInfo) context.Context {
	rc := observability.RunContextFromContext(ctx)
	if rc == nil {
		return ctx
	}
	ctx, _ = rc.StartNode(ctx, n.Name, n.Operations)
	return ctx
}

func (tracingHook) NodeFinished(ctx context.Context, n NodeInfo, records int, duration time.Duration, err error) {
	rc := observability.RunContextFromContext(ctx)
	if rc == nil {
		return
	}
	rc.EndNode(ctx, trace.SpanFromContext(ctx), n.Name, nodeStatus(err), records, duration, err)
}

func (tracingHook) NodeServed(ctx context.Context, n NodeInfo) {
	if rc := observability.RunContextFromContext(ctx); rc != nil && rc.Metrics != nil {
		rc.Metrics.RecordMemoHit(ctx, n.Name)
	}
}

func (tracingHook) Diagnostic(ctx context.Context, d ops.Diagnostic) {
	observability.Annotate(ctx, attribute.String(observability.AttrErrorCode, string(d.Err.Code)))
	if rc := observability.RunContextFromContext(ctx); rc != nil && rc.Metrics != nil {
		rc.Metrics.RecordDiagnostic(ctx, string(d.Err.Code), d.Node)
	}
}

// loggingHook logs computations, cache hits and diagnostics.
type loggingHook struct {
	log     *logger.Logger
	verbose bool
}

// LoggingHook returns a Hook logging to log. Node progress is logged at
// debug level, or info when verbose is set; diagnostics at warn and
// failures at error.
func LoggingHook(log *logger.Logger, verbose bool) Hook {
	return &loggingHook{log: log, verbose: verbose}
}

func (h *loggingHook) progress(ctx context.Context, msg string, fields map[string]interface{}) {
	l := h.log.WithContext(ctx)
	if h.verbose {
		l.Info(msg, fields)
		return
	}
	l.Debug(msg, fields)
}

func (h *loggingHook) NodeStarted(ctx context.Context, n NodeInfo) context.Context {
	h.progress(ctx, "chain started", logger.Fields(
		logger.FieldNode, n.Name,
		"operations", n.Operations,
	))
	return ctx
}

func (h *loggingHook) NodeFinished(ctx context.Context, n NodeInfo, records int, duration time.Duration, err error) {
	if err != nil {
		fields := logger.Fields(
			logger.FieldNode, n.Name,
			logger.FieldCode, string(errors.CodeOf(err)),
			logger.FieldDuration, duration.Milliseconds(),
			logger.FieldError, err.Error(),
		)
		h.log.WithContext(ctx).Error("chain failed", fields)
		return
	}
	h.progress(ctx, "chain completed", logger.Fields(
		logger.FieldNode, n.Name,
		logger.FieldRecords, records,
		logger.FieldDuration, duration.Milliseconds(),
	))
}

func (h *loggingHook) NodeServed(ctx context.Context, n NodeInfo) {
	h.log.WithContext(ctx).Debug("chain served from cache", logger.Fields(logger.FieldNode, n.Name))
}

func (h *loggingHook) Diagnostic(ctx context.Context, d ops.Diagnostic) {
	h.log.WithContext(ctx).Warn(d.Err.Message, logger.Fields(
		logger.FieldNode, d.Node,
		logger.FieldStep, d.Step,
		logger.FieldOperation, string(d.Operation),
		logger.FieldCode, string(d.Err.Code),
	))
}
