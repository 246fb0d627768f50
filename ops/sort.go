package ops

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/graphx/errors"
	"github.com/kbukum/graphx/record"
	"github.com/kbukum/graphx/stream"
)

// Sort orders records by the values at Keys. The sort is stable in both
// directions.
type Sort struct {
	Keys    []string
	Reverse bool
}

func (s Sort) Kind() Kind { return KindSort }

func (s Sort) String() string {
	order := "asc"
	if s.Reverse {
		order = "desc"
	}
	return fmt.Sprintf("sort[%s %s]", strings.Join(s.Keys, ","), order)
}

func (s Sort) Apply(_ context.Context, in stream.Iterator[record.Record], env *Env) stream.Iterator[record.Record] {
	return deferred(in, func(ctx context.Context) ([]record.Record, error) {
		table, err := drain(ctx, in)
		if err != nil {
			return nil, err
		}
		return s.sort(table, env), nil
	})
}

func (s Sort) sort(table []record.Record, env *Env) []record.Record {
	if len(table) == 0 {
		return table
	}
	used := make([]string, 0, len(s.Keys))
	var missing []string
	for _, k := range s.Keys {
		if table[0].Has(k) {
			used = append(used, k)
		}
		if slices.ContainsFunc(table, func(r record.Record) bool { return !r.Has(k) }) {
			missing = append(missing, k)
		}
	}
	// Keys come from the first record; a key absent from any record is
	// still reported.
	if len(missing) > 0 {
		env.report(KindSort, errors.MissingSortKey(missing, used))
	}

	type keyed struct {
		key record.Key
		rec record.Record
	}
	entries := make([]keyed, len(table))
	for i, r := range table {
		entries[i] = keyed{key: r.Key(used), rec: r}
	}
	slices.SortStableFunc(entries, func(a, b keyed) int {
		c := record.CompareKeys(a.key, b.key)
		if s.Reverse {
			return -c
		}
		return c
	})
	out := make([]record.Record, len(entries))
	for i, e := range entries {
		out[i] = e.rec
	}
	return out
}
