package dag

import (
	"fmt"
	"slices"

	"github.com/kbukum/graphx/errors"
)

// Edge represents a dependency: To depends on From.
type Edge[K comparable] struct {
	From K
	To   K
}

// BuildLevels uses Kahn's algorithm to group nodes by dependency level.
// Every node of a level depends only on nodes of earlier levels; nodes keep
// their order of appearance within a level. A cycle fails with CYCLIC_GRAPH
// naming the first node that could not be placed.
func BuildLevels[K comparable](nodes []K, edges []Edge[K]) ([][]K, error) {
	order := make(map[K]int, len(nodes))
	for i, n := range nodes {
		order[n] = i
	}

	inDegree := make(map[K]int, len(nodes))
	dependents := make(map[K][]K)
	for _, e := range edges {
		if _, ok := order[e.From]; !ok {
			return nil, errors.Validation(fmt.Sprintf("edge references unknown node %v", e.From))
		}
		if _, ok := order[e.To]; !ok {
			return nil, errors.Validation(fmt.Sprintf("edge references unknown node %v", e.To))
		}
		inDegree[e.To]++
		dependents[e.From] = append(dependents[e.From], e.To)
	}

	var queue []K
	for _, n := range nodes {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	var levels [][]K
	placed := make(map[K]bool, len(nodes))
	for len(queue) > 0 {
		levels = append(levels, queue)
		var next []K
		for _, n := range queue {
			placed[n] = true
			for _, dep := range dependents[n] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		slices.SortFunc(next, func(a, b K) int { return order[a] - order[b] })
		queue = next
	}

	if len(placed) != len(nodes) {
		for _, n := range nodes {
			if !placed[n] {
				return nil, errors.CyclicGraph(fmt.Sprint(n))
			}
		}
	}
	return levels, nil
}
