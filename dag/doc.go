// Package dag builds and runs graphs of lazily evaluated record chains.
//
// A Chain is an immutable sequence of operations (Map, Sort, Fold, Reduce,
// Join) over a source, which is either a named external input or the output
// of another chain. Chains live in a Graph arena and are only evaluated by
// an Engine:
//
//	g := dag.NewGraph()
//	words := g.Input("docs").AddMap(split).AddSort([]string{"word"}, false)
//	counts := words.AddReduce(count, []string{"word"})
//	res, err := dag.NewEngine().Run(ctx, counts, dag.Inputs{"docs": dag.Lines(r)})
//
// Within one run every reachable chain is computed at most once. A chain
// requested by several consumers (through Graph.From or as the other side of
// a Join) is materialized on first request, served to the rest from the
// cache and dropped after its last consumer.
//
// Jobs can also be declared in YAML and bound to functions registered in a
// Registry; see Job and BuildJob.
package dag
