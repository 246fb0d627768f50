package dag

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kbukum/graphx/errors"
	"github.com/kbukum/graphx/ops"
	"github.com/kbukum/graphx/record"
)

// Graph is an arena of chain definitions. Chains are handles into it and
// may only reference chains of the same graph. A Graph may be extended and
// run from several goroutines.
type Graph struct {
	mu    sync.RWMutex
	nodes []*node
}

// node is an immutable chain definition.
type node struct {
	id    int
	name  string
	input string // named external input; empty when from is set
	from  int    // upstream chain, -1 for a named input
	ops   []ops.Operation
	err   error // deferred builder error, surfaced by Run and Explain
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

func (g *Graph) add(n node) Chain {
	g.mu.Lock()
	defer g.mu.Unlock()
	n.id = len(g.nodes)
	if n.name == "" {
		n.name = fmt.Sprintf("node-%d", n.id)
	}
	g.nodes = append(g.nodes, &n)
	return Chain{g: g, id: n.id}
}

func (g *Graph) node(id int) *node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[id]
}

// Len returns the number of chain definitions in the arena.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Input starts a chain reading the named external input.
func (g *Graph) Input(name string) Chain {
	n := node{input: name, from: -1}
	if name == "" {
		n.err = errors.InvalidInput("input", "input name must not be empty")
	}
	return g.add(n)
}

// From starts a chain whose source is the materialized output of c. Every
// chain started from c shares one computation of c per run.
func (g *Graph) From(c Chain) Chain {
	n := node{from: c.id}
	if err := g.owns(c); err != nil {
		n.from, n.err = -1, err
	}
	return g.add(n)
}

func (g *Graph) owns(c Chain) error {
	if c.g != g {
		return errors.InvalidInput("chain", "chain belongs to a different graph")
	}
	return nil
}

// Chain is an immutable handle to a chain definition. Every builder method
// returns a new Chain and leaves the receiver untouched, so a Chain may be
// extended in several directions. Extensions do not share work at run time;
// use Graph.From to share one computation between consumers.
type Chain struct {
	g  *Graph
	id int
}

// Graph returns the arena the chain belongs to.
func (c Chain) Graph() *Graph { return c.g }

// ID returns the chain's index in its graph.
func (c Chain) ID() int { return c.id }

// Name returns the chain's name.
func (c Chain) Name() string { return c.def().name }

// Err returns the first error recorded while building the chain.
func (c Chain) Err() error { return c.def().err }

// Operations returns the chain's operations in order.
func (c Chain) Operations() []ops.Operation {
	return slices.Clone(c.def().ops)
}

func (c Chain) def() *node {
	if c.g == nil {
		panic("dag: use of zero Chain")
	}
	return c.g.node(c.id)
}

func (c Chain) extend(op ops.Operation, err error) Chain {
	n := *c.def()
	n.name = ""
	n.ops = append(slices.Clip(n.ops), op)
	if n.err == nil {
		n.err = err
	}
	return c.g.add(n)
}

// Named returns a copy of the chain carrying name. Names show up in logs,
// diagnostics, plans and per-node results.
func (c Chain) Named(name string) Chain {
	n := *c.def()
	n.name = name
	return c.g.add(n)
}

// AddMap appends a Map operation.
func (c Chain) AddMap(fn ops.Mapper) Chain {
	return c.extend(ops.Map{Mapper: fn}, nil)
}

// AddNamedMap appends a Map operation labeled name.
func (c Chain) AddNamedMap(name string, fn ops.Mapper) Chain {
	return c.extend(ops.Map{Mapper: fn, Name: name}, nil)
}

// AddSort appends a stable Sort by keys.
func (c Chain) AddSort(keys []string, reverse bool) Chain {
	return c.extend(ops.Sort{Keys: slices.Clone(keys), Reverse: reverse}, nil)
}

// AddFold appends a Fold. A nil initial starts from a copy of the first
// record and folds the rest into it.
func (c Chain) AddFold(fn ops.Folder, initial *record.Record) Chain {
	return c.extend(ops.Fold{Folder: fn, Initial: cloneInitial(initial)}, nil)
}

// AddNamedFold appends a Fold labeled name.
func (c Chain) AddNamedFold(name string, fn ops.Folder, initial *record.Record) Chain {
	return c.extend(ops.Fold{Folder: fn, Initial: cloneInitial(initial), Name: name}, nil)
}

// AddReduce appends a Reduce over runs of equal keys.
func (c Chain) AddReduce(fn ops.Reducer, keys []string) Chain {
	return c.extend(ops.Reduce{Reducer: fn, Keys: slices.Clone(keys)}, nil)
}

// AddNamedReduce appends a Reduce labeled name.
func (c Chain) AddNamedReduce(name string, fn ops.Reducer, keys []string) Chain {
	return c.extend(ops.Reduce{Reducer: fn, Keys: slices.Clone(keys), Name: name}, nil)
}

// AddJoin appends a sort-merge Join with other, which is either a Chain of
// the same graph or a static table. This chain is the left side. Strategy
// names are case-insensitive; an unknown one fails the run with
// INVALID_JOIN_STRATEGY.
func (c Chain) AddJoin(other ops.Side, keys []string, strategy ops.Strategy) Chain {
	st, err := ops.ParseStrategy(string(strategy))
	if err != nil {
		st = strategy
	}
	if oc, ok := other.(Chain); ok && err == nil {
		err = c.g.owns(oc)
	}
	if other == nil && err == nil {
		err = errors.InvalidInput("join", "join needs another side")
	}
	return c.extend(ops.Join{Other: other, Keys: slices.Clone(keys), Strategy: st}, err)
}

// Load resolves the chain as the other side of a Join inside a run.
func (c Chain) Load(ctx context.Context, env *ops.Env) (record.Table, error) {
	if env == nil || env.Upstream == nil {
		return nil, errors.Internal(fmt.Errorf("chain %q used outside of a run", c.Name()))
	}
	return env.Upstream.RunNode(ctx, c.id)
}

// Run runs the chain with a default engine and returns its output.
func (c Chain) Run(ctx context.Context, inputs Inputs) (record.Table, error) {
	res, err := NewEngine().Run(ctx, c, inputs)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// String describes the chain's source and operations.
func (c Chain) String() string {
	n := c.def()
	src := "input:" + n.input
	if n.from >= 0 {
		src = "from:" + c.g.node(n.from).name
	}
	s := n.name + " <- " + src
	for _, op := range n.ops {
		s += " | " + op.String()
	}
	return s
}

func cloneInitial(r *record.Record) *record.Record {
	if r == nil {
		return nil
	}
	clone := r.Clone()
	return &clone
}
