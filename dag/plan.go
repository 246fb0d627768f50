package dag

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/graphx/ops"
)

// runPlan is the reachable subgraph of a target chain.
type runPlan struct {
	target    int
	levels    [][]int
	nodes     map[int]*node
	deps      map[int][]int  // chains a node requests, one entry per request
	consumers map[int]int    // expected requests per chain, including the caller's
	inputs    map[string]int // chains reading each named input
}

// dependencies lists the chains n requests: its source, then one entry per
// join against a chain.
func dependencies(n *node) []int {
	var deps []int
	if n.from >= 0 {
		deps = append(deps, n.from)
	}
	for _, op := range n.ops {
		if j, ok := op.(ops.Join); ok {
			if c, ok := j.Other.(Chain); ok {
				deps = append(deps, c.id)
			}
		}
	}
	return deps
}

func buildPlan(target Chain) (*runPlan, error) {
	g := target.g
	if g == nil {
		panic("dag: use of zero Chain")
	}
	p := &runPlan{
		target:    target.id,
		nodes:     make(map[int]*node),
		deps:      make(map[int][]int),
		consumers: make(map[int]int),
		inputs:    make(map[string]int),
	}

	stack := []int{target.id}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := p.nodes[id]; seen {
			continue
		}
		n := g.node(id)
		if n.err != nil {
			return nil, n.err
		}
		p.nodes[id] = n
		p.deps[id] = dependencies(n)
		stack = append(stack, p.deps[id]...)
	}

	ids := make([]int, 0, len(p.nodes))
	for id := range p.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var edges []Edge[int]
	for _, id := range ids {
		n := p.nodes[id]
		if n.from < 0 {
			p.inputs[n.input]++
		}
		for _, dep := range p.deps[id] {
			p.consumers[dep]++
			edges = append(edges, Edge[int]{From: dep, To: id})
		}
	}
	p.consumers[target.id]++

	levels, err := BuildLevels(ids, edges)
	if err != nil {
		return nil, err
	}
	p.levels = levels
	return p, nil
}

// inputNames lists the named inputs the plan reads, sorted.
func (p *runPlan) inputNames() []string {
	names := make([]string, 0, len(p.inputs))
	for name := range p.inputs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// order returns the plan's chains in dependency order.
func (p *runPlan) order() []int {
	var ids []int
	for _, level := range p.levels {
		ids = append(ids, level...)
	}
	return ids
}

// Plan describes what a run of a chain would compute.
type Plan struct {
	Target string       `json:"target"`
	Inputs []string     `json:"inputs"`
	Levels [][]PlanNode `json:"levels"`
}

// PlanNode is one chain of a Plan.
type PlanNode struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Source     string   `json:"source"`
	Operations []string `json:"operations"`
	Joins      []string `json:"joins,omitempty"`
	// Consumers is the number of requests for the chain's output in one run.
	// Chains requested more than once are computed once and shared.
	Consumers int `json:"consumers"`
}

// Explain returns the reachable chains of c grouped by dependency level.
func Explain(c Chain) (*Plan, error) {
	p, err := buildPlan(c)
	if err != nil {
		return nil, err
	}
	plan := &Plan{Target: p.nodes[p.target].name, Inputs: p.inputNames()}
	for _, level := range p.levels {
		nodes := make([]PlanNode, 0, len(level))
		for _, id := range level {
			nodes = append(nodes, p.describe(id))
		}
		plan.Levels = append(plan.Levels, nodes)
	}
	return plan, nil
}

func (p *runPlan) describe(id int) PlanNode {
	n := p.nodes[id]
	pn := PlanNode{ID: id, Name: n.name, Consumers: p.consumers[id]}
	if n.from >= 0 {
		pn.Source = "from:" + p.nodes[n.from].name
	} else {
		pn.Source = "input:" + n.input
	}
	for _, op := range n.ops {
		pn.Operations = append(pn.Operations, op.String())
		if j, ok := op.(ops.Join); ok {
			if c, ok := j.Other.(Chain); ok {
				pn.Joins = append(pn.Joins, p.nodes[c.id].name)
			} else {
				pn.Joins = append(pn.Joins, "<table>")
			}
		}
	}
	return pn
}

// Len returns the number of chains in the plan.
func (p *Plan) Len() int {
	n := 0
	for _, level := range p.Levels {
		n += len(level)
	}
	return n
}

// String renders the plan one chain per line, indented by level.
func (p *Plan) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "plan %s: %d chains, inputs [%s]\n", p.Target, p.Len(), strings.Join(p.Inputs, ", "))
	for i, level := range p.Levels {
		fmt.Fprintf(&sb, "level %d\n", i)
		for _, n := range level {
			fmt.Fprintf(&sb, "  %s <- %s", n.Name, n.Source)
			if n.Consumers > 1 {
				fmt.Fprintf(&sb, " (shared by %d)", n.Consumers)
			}
			sb.WriteByte('\n')
			for _, op := range n.Operations {
				fmt.Fprintf(&sb, "    %s\n", op)
			}
		}
	}
	return sb.String()
}
