package dag

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/graphx/errors"
	"github.com/kbukum/graphx/logger"
	"github.com/kbukum/graphx/observability"
	"github.com/kbukum/graphx/ops"
	"github.com/kbukum/graphx/record"
	"github.com/kbukum/graphx/stream"
)

// Engine runs chains. Runs are independent: each owns its memo states, so
// one Engine may run chains from several goroutines.
type Engine struct {
	log       *logger.Logger
	verbose   bool
	release   bool
	telemetry bool
	metrics   *observability.Metrics
	hooks     []Hook
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for run progress.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithVerbose logs chain progress at info instead of debug level.
func WithVerbose(verbose bool) Option {
	return func(e *Engine) { e.verbose = verbose }
}

// WithMemoRelease controls whether a shared chain output is dropped once
// every consumer was served. Enabled by default.
func WithMemoRelease(release bool) Option {
	return func(e *Engine) { e.release = release }
}

// WithTelemetry opens a span per run and per chain computation. metrics may
// be nil.
func WithTelemetry(metrics *observability.Metrics) Option {
	return func(e *Engine) {
		e.telemetry = true
		e.metrics = metrics
	}
}

// WithHooks adds hooks observing every run.
func WithHooks(hooks ...Hook) Option {
	return func(e *Engine) { e.hooks = append(e.hooks, hooks...) }
}

// NewEngine creates an engine logging to the "dag" component logger.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{release: true}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Get("dag")
	}
	return e
}

// RunOption configures a single run.
type RunOption func(*runOptions)

type runOptions struct {
	runID uuid.UUID
	job   string
}

// WithRunID sets the run identifier instead of a random one.
func WithRunID(id uuid.UUID) RunOption {
	return func(o *runOptions) { o.runID = id }
}

// WithJob names the run in logs, spans and the Result. Defaults to the
// target chain's name.
func WithJob(name string) RunOption {
	return func(o *runOptions) { o.job = name }
}

// Run computes target over inputs. Every named input reachable from target
// must be bound before anything runs. Each reachable chain is computed at
// most once; chains requested several times share the materialized table.
//
// On failure the partial Result is returned alongside the error.
func (e *Engine) Run(ctx context.Context, target Chain, inputs Inputs, opts ...RunOption) (*Result, error) {
	start := time.Now()
	ro := runOptions{}
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.runID == uuid.Nil {
		ro.runID = uuid.New()
	}
	if ro.job == "" {
		ro.job = target.Name()
	}

	p, err := buildPlan(target)
	if err != nil {
		return nil, err
	}
	if err := checkInputs(p, inputs); err != nil {
		return nil, err
	}

	ctx = logger.ContextWithRun(ctx, ro.job, ro.runID.String())
	hooks := append([]Hook{LoggingHook(e.log, e.verbose)}, e.hooks...)

	var rc *observability.RunContext
	var span trace.Span
	if e.telemetry {
		rc = observability.NewRunContext(ro.job, ro.runID.String(), e.metrics)
		ctx = observability.WithRunContext(ctx, rc)
		ctx, span = rc.StartRun(ctx)
		hooks = append(hooks, TracingHook())
	}

	r := newRunner(ctx, p, inputs, hooks, e.release)
	table, err := r.RunNode(ctx, p.target)

	res := &Result{
		RunID:       ro.runID,
		Job:         ro.job,
		Table:       table,
		Diagnostics: r.diags.List(),
		Nodes:       r.results(),
		Duration:    time.Since(start),
	}

	status := nodeStatus(err)
	if rc != nil {
		rc.EndRun(ctx, span, status, err)
	}
	fields := logger.Fields(
		logger.FieldStatus, status,
		logger.FieldRecords, len(table),
		"diagnostics", len(res.Diagnostics),
		logger.FieldDuration, res.Duration.Milliseconds(),
	)
	if e.verbose {
		e.log.WithContext(ctx).Info("run finished", fields)
	} else {
		e.log.WithContext(ctx).Debug("run finished", fields)
	}

	if err != nil {
		return res, err
	}
	return res, nil
}

// checkInputs fails with UNKNOWN_NAMED_INPUT for the first unbound input.
func checkInputs(p *runPlan, inputs Inputs) error {
	var missing []string
	for _, name := range p.inputNames() {
		if inputs[name] == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.UnknownInput(missing[0]).WithDetail("missing", missing)
	}
	return nil
}

// runner holds the state of one run. Runs are single-threaded: joins resolve
// their chains synchronously from inside the pull loop.
type runner struct {
	plan    *runPlan
	memos   map[int]*memo
	inputs  Inputs
	shared  map[string]record.Table
	release bool
	hooks   []Hook
	diags   *ops.Diagnostics
}

func newRunner(ctx context.Context, p *runPlan, inputs Inputs, hooks []Hook, release bool) *runner {
	r := &runner{
		plan:    p,
		memos:   make(map[int]*memo, len(p.nodes)),
		inputs:  inputs,
		shared:  make(map[string]record.Table),
		release: release,
		hooks:   hooks,
	}
	for id := range p.nodes {
		r.memos[id] = &memo{expected: p.consumers[id]}
	}
	r.diags = ops.NewDiagnostics(func(d ops.Diagnostic) {
		for _, h := range r.hooks {
			h.Diagnostic(ctx, d)
		}
	})
	return r
}

// RunNode returns the output of chain id, computing it on first request.
func (r *runner) RunNode(ctx context.Context, id int) (record.Table, error) {
	m, ok := r.memos[id]
	if !ok {
		return nil, errors.Internal(fmt.Errorf("chain %d is not part of this run", id))
	}
	n := r.plan.nodes[id]
	info := NodeInfo{ID: id, Name: n.name, Operations: len(n.ops)}

	switch m.state {
	case stateRunning:
		return nil, errors.CyclicGraph(n.name)
	case stateDone:
		for _, h := range r.hooks {
			h.NodeServed(ctx, info)
		}
		return m.serve(r.release), nil
	}

	// Not started, or released and requested again.
	m.state = stateRunning
	nctx := ctx
	for _, h := range r.hooks {
		nctx = h.NodeStarted(nctx, info)
	}
	start := time.Now()
	table, err := r.compute(nctx, n)
	m.duration = time.Since(start)
	m.computed++
	for _, h := range slices.Backward(r.hooks) {
		h.NodeFinished(nctx, info, len(table), m.duration, err)
	}
	if err != nil {
		m.state, m.err = stateNotStarted, err
		return nil, err
	}
	m.state, m.table, m.records, m.err = stateDone, table, len(table), nil
	return m.serve(r.release), nil
}

func (r *runner) compute(ctx context.Context, n *node) (record.Table, error) {
	it, err := r.source(ctx, n)
	if err != nil {
		return nil, err
	}
	for i, op := range n.ops {
		env := &ops.Env{Node: n.name, Step: i, Diagnostics: r.diags, Upstream: r}
		it = op.Apply(ctx, it, env)
	}
	out, err := stream.Collect(ctx, it)
	if err != nil {
		return nil, err
	}
	return record.Table(out), nil
}

func (r *runner) source(ctx context.Context, n *node) (stream.Iterator[record.Record], error) {
	if n.from >= 0 {
		t, err := r.RunNode(ctx, n.from)
		if err != nil {
			return nil, err
		}
		return stream.FromSlice(t), nil
	}
	return r.openInput(ctx, n.input)
}

// openInput opens a named input. One-shot sources read by several chains
// are materialized on first use.
func (r *runner) openInput(ctx context.Context, name string) (stream.Iterator[record.Record], error) {
	if t, ok := r.shared[name]; ok {
		return stream.FromSlice(t), nil
	}
	src := r.inputs[name]
	it, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	if src.Replayable() || r.plan.inputs[name] < 2 {
		return it, nil
	}
	t, err := stream.Collect(ctx, it)
	if err != nil {
		return nil, err
	}
	r.shared[name] = t
	return stream.FromSlice(t), nil
}

func (r *runner) results() []NodeResult {
	order := r.plan.order()
	out := make([]NodeResult, 0, len(order))
	for _, id := range order {
		m := r.memos[id]
		out = append(out, NodeResult{
			ID:       id,
			Name:     r.plan.nodes[id].name,
			Status:   m.status(),
			Computed: m.computed,
			Served:   m.served,
			Records:  m.records,
			Duration: m.duration,
			Error:    m.err,
		})
	}
	return out
}
