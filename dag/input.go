package dag

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"sync"

	"github.com/kbukum/graphx/errors"
	"github.com/kbukum/graphx/record"
	"github.com/kbukum/graphx/stream"
)

// Source supplies the records of a named input.
type Source interface {
	// Open returns a fresh stream of the input's records. name is the input
	// name the source is bound to.
	Open(ctx context.Context, name string) (stream.Iterator[record.Record], error)
	// Replayable reports whether Open may be called more than once.
	Replayable() bool
}

// Inputs binds named inputs to their sources for one run.
type Inputs map[string]Source

// Table serves an in-memory table. It may be read any number of times.
func Table(t record.Table) Source { return tableSource(t) }

type tableSource record.Table

func (t tableSource) Open(context.Context, string) (stream.Iterator[record.Record], error) {
	return stream.FromSlice(t), nil
}

func (t tableSource) Replayable() bool { return true }

// Lines decodes JSON lines from r, one object per line. It can be read once;
// inputs referenced by several chains are materialized on first use.
func Lines(r io.Reader) Source {
	return &oneShot{open: func(name string) (stream.Iterator[record.Record], error) {
		return decodeLines(name, record.NewReader(r)), nil
	}}
}

// Stream serves records pulled from it. Like Lines it can be read once.
func Stream(it stream.Iterator[record.Record]) Source {
	return &oneShot{open: func(string) (stream.Iterator[record.Record], error) {
		return it, nil
	}}
}

// File decodes the JSON-lines file at path, reopening it on every read.
func File(path string) Source { return fileSource(path) }

type fileSource string

func (f fileSource) Open(_ context.Context, name string) (stream.Iterator[record.Record], error) {
	fh, err := os.Open(string(f))
	if err != nil {
		return nil, errors.InvalidInput("input."+name, err.Error())
	}
	return decodeLines(name, record.NewReader(fh)), nil
}

func (f fileSource) Replayable() bool { return true }

type oneShot struct {
	mu     sync.Mutex
	opened bool
	open   func(name string) (stream.Iterator[record.Record], error)
}

func (s *oneShot) Open(_ context.Context, name string) (stream.Iterator[record.Record], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil, errors.InvalidInput("input."+name, "input stream was already consumed")
	}
	s.opened = true
	return s.open(name)
}

func (s *oneShot) Replayable() bool { return false }

// decodeLines maps malformed lines to INVALID_RECORD errors.
func decodeLines(name string, rd *record.Reader) stream.Iterator[record.Record] {
	return stream.FromFunc(func(ctx context.Context) (record.Record, bool, error) {
		rec, ok, err := rd.Next(ctx)
		if err != nil {
			var le *record.LineError
			if stderrors.As(err, &le) {
				return record.Record{}, false, errors.InvalidRecord(name, le.Line, le.Err)
			}
			return record.Record{}, false, err
		}
		return rec, ok, nil
	}, rd.Close)
}
