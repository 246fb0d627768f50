package ops

import (
	"context"

	"github.com/kbukum/graphx/record"
	"github.com/kbukum/graphx/stream"
)

// group is a maximal run of adjacent records sharing a key.
type group struct {
	key     record.Key
	records []record.Record
}

// sortCheck selects how a grouper detects unsorted input.
type sortCheck int

const (
	// checkRepeat flags a key reappearing after a different key.
	checkRepeat sortCheck = iota
	// checkOrder flags a key lower than the previous group's key.
	checkOrder
)

// grouper partitions a stream into adjacency groups.
type grouper struct {
	source     stream.Iterator[record.Record]
	keys       []string
	check      sortCheck
	onUnsorted func()

	pending    record.Record
	hasPending bool
	exhausted  bool
	prev       record.Key
	hasPrev    bool
	seen       map[string]struct{}
}

func newGrouper(source stream.Iterator[record.Record], keys []string, check sortCheck, onUnsorted func()) *grouper {
	g := &grouper{source: source, keys: keys, check: check, onUnsorted: onUnsorted}
	if check == checkRepeat {
		g.seen = make(map[string]struct{})
	}
	return g
}

// next returns the next group, or false when the source is exhausted.
func (g *grouper) next(ctx context.Context) (group, bool, error) {
	if !g.hasPending {
		if g.exhausted {
			return group{}, false, nil
		}
		rec, ok, err := g.source.Next(ctx)
		if err != nil {
			return group{}, false, err
		}
		if !ok {
			g.exhausted = true
			return group{}, false, nil
		}
		g.pending, g.hasPending = rec, true
	}

	grp := group{key: g.pending.Key(g.keys), records: []record.Record{g.pending}}
	g.hasPending = false
	for {
		rec, ok, err := g.source.Next(ctx)
		if err != nil {
			return group{}, false, err
		}
		if !ok {
			g.exhausted = true
			break
		}
		if record.CompareKeys(rec.Key(g.keys), grp.key) != 0 {
			g.pending, g.hasPending = rec, true
			break
		}
		grp.records = append(grp.records, rec)
	}
	g.observe(grp.key)
	return grp, true, nil
}

func (g *grouper) observe(key record.Key) {
	unsorted := false
	switch g.check {
	case checkRepeat:
		id := key.String()
		if _, dup := g.seen[id]; dup {
			unsorted = true
		}
		g.seen[id] = struct{}{}
	case checkOrder:
		unsorted = g.hasPrev && record.CompareKeys(key, g.prev) < 0
	}
	g.prev, g.hasPrev = key, true
	if unsorted && g.onUnsorted != nil {
		g.onUnsorted()
	}
}
