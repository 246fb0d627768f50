// Package algorithms builds text and road-graph analytics on top of dag.
//
// Every builder takes a graph and the names of its inputs and returns the
// output chain:
//
//	g := dag.NewGraph()
//	index := algorithms.InvertedIndex(g, "docs")
//	table, err := index.Run(ctx, dag.Inputs{"docs": dag.File("docs.jsonl")})
//
// Register exposes the same mappers, reducers and folders to YAML jobs, and
// the jobs directory holds YAML versions of the built-in algorithms.
package algorithms
