package ops

import (
	"context"
	"fmt"

	"github.com/kbukum/graphx/errors"
	"github.com/kbukum/graphx/record"
	"github.com/kbukum/graphx/stream"
)

// Kind identifies an operation type.
type Kind string

const (
	KindMap    Kind = "map"
	KindSort   Kind = "sort"
	KindFold   Kind = "fold"
	KindReduce Kind = "reduce"
	KindJoin   Kind = "join"
)

// Operation transforms a record stream. Operations are immutable and may be
// applied any number of times.
type Operation interface {
	Kind() Kind
	String() string
	Apply(ctx context.Context, in stream.Iterator[record.Record], env *Env) stream.Iterator[record.Record]
}

// Upstream runs other chains of the graph on behalf of a Join.
type Upstream interface {
	RunNode(ctx context.Context, id int) (record.Table, error)
}

// Env carries per-run collaborators into an operation.
type Env struct {
	// Node is the name of the chain being run.
	Node string
	// Step is the position of the operation within the chain.
	Step int
	// Diagnostics collects recoverable conditions; may be nil.
	Diagnostics *Diagnostics
	// Upstream resolves chains referenced by Join; may be nil when no chain
	// is referenced.
	Upstream Upstream
}

func (e *Env) report(kind Kind, err *errors.AppError) {
	if e == nil || e.Diagnostics == nil {
		return
	}
	e.Diagnostics.Report(Diagnostic{Node: e.Node, Step: e.Step, Operation: kind, Err: err})
}

// deferredIter computes its whole output on the first pull.
type deferredIter struct {
	compute func(ctx context.Context) ([]record.Record, error)
	in      stream.Iterator[record.Record]
	out     []record.Record
	pos     int
	done    bool
}

func deferred(in stream.Iterator[record.Record], compute func(ctx context.Context) ([]record.Record, error)) stream.Iterator[record.Record] {
	return &deferredIter{in: in, compute: compute}
}

func (it *deferredIter) Next(ctx context.Context) (record.Record, bool, error) {
	if !it.done {
		out, err := it.compute(ctx)
		it.done = true
		if err != nil {
			return record.Record{}, false, err
		}
		it.out = out
	}
	if it.pos >= len(it.out) {
		return record.Record{}, false, nil
	}
	r := it.out[it.pos]
	it.pos++
	return r, true, nil
}

func (it *deferredIter) Close() error { return it.in.Close() }

// drain reads the rest of in without closing it.
func drain(ctx context.Context, in stream.Iterator[record.Record]) ([]record.Record, error) {
	var out []record.Record
	for {
		rec, ok, err := in.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, rec)
	}
}

// safeNext pulls from a user-produced iterator, turning panics into errors.
func safeNext(ctx context.Context, it stream.Iterator[record.Record]) (rec record.Record, ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return it.Next(ctx)
}

// isContextErr reports whether err is the cancellation of ctx.
func isContextErr(ctx context.Context, err error) bool {
	return ctx.Err() != nil && err == ctx.Err()
}
