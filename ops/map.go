package ops

import (
	"context"
	"fmt"

	"github.com/kbukum/graphx/errors"
	"github.com/kbukum/graphx/record"
	"github.com/kbukum/graphx/stream"
)

// Mapper produces zero or more records for one input record.
type Mapper func(rec record.Record) stream.Iterator[record.Record]

// Map emits, for each input record in order, the records its Mapper produces.
type Map struct {
	Mapper Mapper
	// Name labels the mapper in plans and logs.
	Name string
}

func (m Map) Kind() Kind { return KindMap }

func (m Map) String() string { return label(KindMap, m.Name) }

func (m Map) Apply(_ context.Context, in stream.Iterator[record.Record], _ *Env) stream.Iterator[record.Record] {
	return &mapIter{source: in, fn: m.Mapper, index: -1}
}

type mapIter struct {
	source  stream.Iterator[record.Record]
	fn      Mapper
	current stream.Iterator[record.Record]
	index   int
}

func (it *mapIter) Next(ctx context.Context) (record.Record, bool, error) {
	for {
		if it.current != nil {
			rec, ok, err := safeNext(ctx, it.current)
			if err != nil {
				if isContextErr(ctx, err) {
					return record.Record{}, false, err
				}
				return record.Record{}, false, errors.MapperFailure(string(KindMap), it.index, err)
			}
			if ok {
				return rec, true, nil
			}
			_ = it.current.Close()
			it.current = nil
		}

		rec, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return record.Record{}, false, err
		}
		it.index++
		produced, err := it.call(rec)
		if err != nil {
			return record.Record{}, false, errors.MapperFailure(string(KindMap), it.index, err)
		}
		it.current = produced
	}
}

func (it *mapIter) call(rec record.Record) (out stream.Iterator[record.Record], err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	out = it.fn(rec)
	if out == nil {
		out = stream.Empty[record.Record]()
	}
	return out, nil
}

func (it *mapIter) Close() error {
	if it.current != nil {
		_ = it.current.Close()
		it.current = nil
	}
	return it.source.Close()
}

func label(kind Kind, name string) string {
	if name == "" {
		return string(kind)
	}
	return fmt.Sprintf("%s(%s)", kind, name)
}
