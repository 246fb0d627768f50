package observability

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	if metrics == nil {
		t.Fatal("expected non-nil metrics")
	}

	ctx := context.Background()
	metrics.RecordRun(ctx, "wordcount", "completed", 100*time.Millisecond)
	metrics.RecordNode(ctx, "tokens", "completed", 42, 50*time.Millisecond)
	metrics.RecordMemoHit(ctx, "tokens")
	metrics.RecordDiagnostic(ctx, "SORT_PRECONDITION", "counts")
}

func TestRunContextFromContext(t *testing.T) {
	rc := NewRunContext("wordcount", "run-1", nil)
	ctx := WithRunContext(context.Background(), rc)

	if got := RunContextFromContext(ctx); got != rc {
		t.Fatalf("expected stored run context, got %v", got)
	}
	if got := RunContextFromContext(context.Background()); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestRunContext_Duration(t *testing.T) {
	rc := NewRunContext("job", "run", nil)
	time.Sleep(5 * time.Millisecond)
	if rc.Duration() < 5*time.Millisecond {
		t.Errorf("expected duration >= 5ms, got %v", rc.Duration())
	}
}

func TestRunContext_Spans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rc := NewRunContext("wordcount", "run-42", metrics)

	ctx, runSpan := rc.StartRun(context.Background())
	nodeCtx, nodeSpan := rc.StartNode(ctx, "tokens", 2)
	rc.EndNode(nodeCtx, nodeSpan, "tokens", "failed", 7, time.Millisecond, fmt.Errorf("boom"))
	rc.EndRun(ctx, runSpan, "failed", fmt.Errorf("boom"))

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	node := spans[0]
	if node.Name != SpanNode {
		t.Fatalf("expected node span first, got %q", node.Name)
	}
	if !hasAttr(node.Attributes, attribute.Int(AttrRecords, 7)) || !hasAttr(node.Attributes, attribute.String(AttrNode, "tokens")) {
		t.Errorf("missing node attributes: %v", node.Attributes)
	}
	if len(node.Events) == 0 {
		t.Error("expected error event on node span")
	}
	if spans[1].Name != SpanRun || !hasAttr(spans[1].Attributes, attribute.String(AttrRunID, "run-42")) {
		t.Errorf("unexpected run span: %s %v", spans[1].Name, spans[1].Attributes)
	}
}

func hasAttr(attrs []attribute.KeyValue, want attribute.KeyValue) bool {
	for _, a := range attrs {
		if a.Key == want.Key && a.Value.Emit() == want.Value.Emit() {
			return true
		}
	}
	return false
}

func TestAnnotate(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), SpanNode)
	Annotate(ctx, attribute.String(AttrErrorCode, "SORT_PRECONDITION"), attribute.Int(AttrRecords, 3))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 || len(spans[0].Attributes) != 2 {
		t.Fatalf("expected one span with 2 attributes, got %v", spans)
	}
	if !hasAttr(spans[0].Attributes, attribute.String(AttrErrorCode, "SORT_PRECONDITION")) {
		t.Errorf("missing error code: %v", spans[0].Attributes)
	}
}

func TestAnnotateWithoutSpan(t *testing.T) {
	Annotate(context.Background(), attribute.String("key", "value"))
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.5, "ParentBased{root:TraceIDRatioBased{0.5}"},
	}
	for _, tc := range tests {
		got := sampler(tc.rate).Description()
		if !strings.HasPrefix(got, tc.want) {
			t.Errorf("sampler(%v) = %q, want prefix %q", tc.rate, got, tc.want)
		}
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("graphx", "1.0.0", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, kv := range res.Attributes() {
		if kv.Key == "service.name" && kv.Value.AsString() == "graphx" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected service.name attribute, got %v", res.Attributes())
	}
}

func TestInit(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	}()

	tel, err := Init(context.Background(), Config{
		ServiceName: "graphx",
		Endpoint:    "localhost:4318",
		Insecure:    true,
		SampleRate:  0.5,
		Interval:    time.Minute,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tel.Metrics == nil {
		t.Fatal("expected engine metrics")
	}
	tel.Metrics.RecordRun(context.Background(), "wordcount", "completed", time.Millisecond)
	shutdown(t, tel.Shutdown)
}

// shutdown flushes with a short deadline; nothing listens on the endpoint.
func shutdown(t *testing.T, fn func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = fn(ctx)
}
