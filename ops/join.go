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

// Strategy selects which unmatched rows a Join keeps.
type Strategy string

const (
	Inner Strategy = "inner"
	Left  Strategy = "left"
	Right Strategy = "right"
	Outer Strategy = "outer"
)

// ParseStrategy parses a strategy name, ignoring case.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case Inner, Left, Right, Outer:
		return st, nil
	}
	return "", errors.InvalidStrategy(s)
}

func (s Strategy) keepsLeft() bool  { return s == Left || s == Outer }
func (s Strategy) keepsRight() bool { return s == Right || s == Outer }

// Side is the other input of a Join.
type Side interface {
	// Load returns the side's table. Called at most once per application.
	Load(ctx context.Context, env *Env) (record.Table, error)
}

// StaticTable is a Join side backed by an in-memory table.
type StaticTable record.Table

// Load returns the table itself.
func (t StaticTable) Load(context.Context, *Env) (record.Table, error) {
	return record.Table(t), nil
}

// Table wraps t as a Join side.
func Table(t record.Table) Side { return StaticTable(t) }

// Join merges the stream with Other on Keys using a sort-merge walk. The
// stream is the left side. Both sides must be sorted ascending by Keys.
//
// Merged records carry the left columns followed by the right non-key
// columns; a non-key name present on both sides is replaced by name1 (left)
// and name2 (right). The stream stays the left side for every strategy, so
// name1 always holds the receiver's value, including for right joins.
// Unmatched rows kept by the strategy are padded with nil for the columns of
// the other side's current schema.
type Join struct {
	Other    Side
	Keys     []string
	Strategy Strategy
}

func (j Join) Kind() Kind { return KindJoin }

func (j Join) String() string {
	return fmt.Sprintf("join[%s %s]", strings.Join(j.Keys, ","), j.Strategy)
}

func (j Join) Apply(_ context.Context, in stream.Iterator[record.Record], env *Env) stream.Iterator[record.Record] {
	return &joinIter{join: j, source: in, env: env}
}

type joinIter struct {
	join   Join
	source stream.Iterator[record.Record]
	env    *Env

	started bool
	left    *grouper
	right   *grouper
	lg, rg  group
	lok     bool
	rok     bool

	leftSchema  []string
	rightSchema []string

	buf []record.Record
	pos int
}

func (it *joinIter) Next(ctx context.Context) (record.Record, bool, error) {
	for {
		if it.pos < len(it.buf) {
			r := it.buf[it.pos]
			it.pos++
			return r, true, nil
		}
		it.buf, it.pos = it.buf[:0], 0

		if !it.started {
			if err := it.start(ctx); err != nil {
				return record.Record{}, false, err
			}
		}
		if !it.lok && !it.rok {
			return record.Record{}, false, nil
		}
		if err := it.step(ctx); err != nil {
			return record.Record{}, false, err
		}
	}
}

func (it *joinIter) start(ctx context.Context) error {
	it.started = true
	if it.join.Other == nil {
		return errors.Validation("join has no other side")
	}
	other, err := it.join.Other.Load(ctx, it.env)
	if err != nil {
		return err
	}
	onUnsorted := func() {
		it.env.report(KindJoin, errors.SortPrecondition(string(KindJoin), it.join.Keys))
	}
	it.left = newGrouper(it.source, it.join.Keys, checkOrder, onUnsorted)
	it.right = newGrouper(stream.FromSlice(other), it.join.Keys, checkOrder, onUnsorted)
	if err := it.advanceLeft(ctx); err != nil {
		return err
	}
	return it.advanceRight(ctx)
}

func (it *joinIter) advanceLeft(ctx context.Context) error {
	g, ok, err := it.left.next(ctx)
	if err != nil {
		return err
	}
	it.lg, it.lok = g, ok
	if ok {
		it.leftSchema = g.records[0].Columns()
	}
	return nil
}

func (it *joinIter) advanceRight(ctx context.Context) error {
	g, ok, err := it.right.next(ctx)
	if err != nil {
		return err
	}
	it.rg, it.rok = g, ok
	if ok {
		it.rightSchema = g.records[0].Columns()
	}
	return nil
}

func (it *joinIter) step(ctx context.Context) error {
	c := 0
	switch {
	case !it.rok:
		c = -1
	case !it.lok:
		c = 1
	default:
		c = record.CompareKeys(it.lg.key, it.rg.key)
	}

	switch {
	case c < 0:
		if it.join.Strategy.keepsLeft() {
			for _, l := range it.lg.records {
				it.buf = append(it.buf, it.padLeft(l))
			}
		}
		return it.advanceLeft(ctx)
	case c > 0:
		if it.join.Strategy.keepsRight() {
			for _, r := range it.rg.records {
				it.buf = append(it.buf, it.padRight(r))
			}
		}
		return it.advanceRight(ctx)
	default:
		for _, l := range it.lg.records {
			for _, r := range it.rg.records {
				it.buf = append(it.buf, it.merge(l, r))
			}
		}
		if err := it.advanceLeft(ctx); err != nil {
			return err
		}
		return it.advanceRight(ctx)
	}
}

func (it *joinIter) isKey(name string) bool {
	return slices.Contains(it.join.Keys, name)
}

func (it *joinIter) merge(l, r record.Record) record.Record {
	b := record.NewBuilder(l.Len() + r.Len())
	for _, f := range l.Fields() {
		b.Set(f.Name, f.Value)
	}
	for _, f := range r.Fields() {
		if it.isKey(f.Name) {
			continue
		}
		lv, collides := l.Get(f.Name)
		if !collides {
			b.Set(f.Name, f.Value)
			continue
		}
		b.Delete(f.Name)
		b.Set(f.Name+"1", lv)
		b.Set(f.Name+"2", f.Value)
	}
	return b.Record()
}

func (it *joinIter) padLeft(l record.Record) record.Record {
	b := record.NewBuilder(l.Len() + len(it.rightSchema))
	for _, f := range l.Fields() {
		b.Set(f.Name, f.Value)
	}
	for _, name := range it.rightSchema {
		if it.isKey(name) || b.Has(name) {
			continue
		}
		b.Set(name, nil)
	}
	return b.Record()
}

func (it *joinIter) padRight(r record.Record) record.Record {
	b := record.NewBuilder(len(it.leftSchema) + r.Len())
	for _, name := range it.leftSchema {
		switch {
		case it.isKey(name):
			b.Set(name, r.Value(name))
		case r.Has(name):
		default:
			b.Set(name, nil)
		}
	}
	for _, f := range r.Fields() {
		if b.Has(f.Name) {
			continue
		}
		b.Set(f.Name, f.Value)
	}
	return b.Record()
}

func (it *joinIter) Close() error { return it.source.Close() }
