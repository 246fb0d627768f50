package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/graphx/errors"
	"github.com/kbukum/graphx/record"
	"github.com/kbukum/graphx/stream"
)

// Reducer consumes one group of records and produces output records.
type Reducer func(group stream.Iterator[record.Record]) stream.Iterator[record.Record]

// Reduce invokes its Reducer once per adjacency group of Keys. The input must
// already be sorted by Keys; Reduce does not sort.
type Reduce struct {
	Reducer Reducer
	Keys    []string
	Name    string
}

func (r Reduce) Kind() Kind { return KindReduce }

func (r Reduce) String() string {
	return fmt.Sprintf("%s[%s]", label(KindReduce, r.Name), strings.Join(r.Keys, ","))
}

func (r Reduce) Apply(_ context.Context, in stream.Iterator[record.Record], env *Env) stream.Iterator[record.Record] {
	onUnsorted := func() { env.report(KindReduce, errors.SortPrecondition(string(KindReduce), r.Keys)) }
	return &reduceIter{
		source:  in,
		groups:  newGrouper(in, r.Keys, checkRepeat, onUnsorted),
		reducer: r.Reducer,
		index:   -1,
	}
}

type reduceIter struct {
	source  stream.Iterator[record.Record]
	groups  *grouper
	reducer Reducer
	current stream.Iterator[record.Record]
	index   int
}

func (it *reduceIter) Next(ctx context.Context) (record.Record, bool, error) {
	for {
		if it.current != nil {
			rec, ok, err := safeNext(ctx, it.current)
			if err != nil {
				if isContextErr(ctx, err) {
					return record.Record{}, false, err
				}
				return record.Record{}, false, errors.MapperFailure(string(KindReduce), it.index, err)
			}
			if ok {
				return rec, true, nil
			}
			_ = it.current.Close()
			it.current = nil
		}

		grp, ok, err := it.groups.next(ctx)
		if err != nil || !ok {
			return record.Record{}, false, err
		}
		it.index++
		produced, err := it.call(grp.records)
		if err != nil {
			return record.Record{}, false, errors.MapperFailure(string(KindReduce), it.index, err)
		}
		it.current = produced
	}
}

func (it *reduceIter) call(records []record.Record) (out stream.Iterator[record.Record], err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	out = it.reducer(stream.FromSlice(records))
	if out == nil {
		out = stream.Empty[record.Record]()
	}
	return out, nil
}

func (it *reduceIter) Close() error {
	if it.current != nil {
		_ = it.current.Close()
		it.current = nil
	}
	return it.source.Close()
}
