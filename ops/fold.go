package ops

import (
	"context"
	"fmt"

	"github.com/kbukum/graphx/errors"
	"github.com/kbukum/graphx/record"
	"github.com/kbukum/graphx/stream"
)

// Folder combines the accumulated state with the next record.
type Folder func(state, rec record.Record) (record.Record, error)

// Fold reduces the whole table to a single record.
type Fold struct {
	Folder Folder
	// Initial is the starting state; when nil the first record is used.
	Initial *record.Record
	Name    string
}

func (f Fold) Kind() Kind { return KindFold }

func (f Fold) String() string { return label(KindFold, f.Name) }

func (f Fold) Apply(_ context.Context, in stream.Iterator[record.Record], _ *Env) stream.Iterator[record.Record] {
	return deferred(in, func(ctx context.Context) ([]record.Record, error) {
		var (
			state   record.Record
			started bool
			index   = -1
		)
		if f.Initial != nil {
			state, started = f.Initial.Clone(), true
		}
		for {
			rec, ok, err := in.Next(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			index++
			if !started {
				state, started = rec.Clone(), true
				continue
			}
			if state, err = f.call(state, rec); err != nil {
				return nil, errors.MapperFailure(string(KindFold), index, err)
			}
		}
		if !started {
			return nil, nil
		}
		return []record.Record{state}, nil
	})
}

func (f Fold) call(state, rec record.Record) (out record.Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return f.Folder(state, rec)
}
