package stream

import (
	"context"
	"iter"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// --- Constructors ---

// FromSlice iterates over a slice without copying it.
func FromSlice[T any](items []T) Iterator[T] {
	return &sliceIter[T]{items: items}
}

// Of iterates over the given values.
func Of[T any](items ...T) Iterator[T] {
	return &sliceIter[T]{items: items}
}

// Empty returns an exhausted iterator.
func Empty[T any]() Iterator[T] {
	return &sliceIter[T]{}
}

// Fail returns an iterator whose first Next reports err.
func Fail[T any](err error) Iterator[T] {
	return &funcIter[T]{next: func(context.Context) (T, bool, error) {
		var zero T
		return zero, false, err
	}}
}

// FromFunc adapts a next function into an Iterator. close may be nil.
func FromFunc[T any](next func(ctx context.Context) (T, bool, error), close func() error) Iterator[T] {
	return &funcIter[T]{next: next, close: close}
}

// Generate runs fn as a generator: every value passed to yield is handed to
// the consumer on demand. yield returns false once the consumer stopped, and
// fn should then return. An error returned by fn is reported by Next after
// all yielded values.
func Generate[T any](fn func(yield func(T) bool) error) Iterator[T] {
	seq := func(yield func(T, error) bool) {
		err := fn(func(v T) bool { return yield(v, nil) })
		if err != nil {
			var zero T
			yield(zero, err)
		}
	}
	next, stop := iter.Pull2(seq)
	return &pullIter[T]{next: next, stop: stop}
}

// --- Terminals ---

// Collect drains the iterator into a slice and closes it.
func Collect[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	defer it.Close()
	var result []T
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, val)
	}
}

// ForEach pulls all values, calls fn for each, and closes the iterator.
func ForEach[T any](ctx context.Context, it Iterator[T], fn func(T) error) error {
	defer it.Close()
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(val); err != nil {
			return err
		}
	}
}

// --- Internal iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if it.index >= len(it.items) {
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type funcIter[T any] struct {
	next  func(ctx context.Context) (T, bool, error)
	close func() error
	done  bool
}

func (it *funcIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	val, ok, err := it.next(ctx)
	if err != nil || !ok {
		it.done = true
	}
	return val, ok, err
}

func (it *funcIter[T]) Close() error {
	it.done = true
	if it.close != nil {
		return it.close()
	}
	return nil
}

type pullIter[T any] struct {
	next func() (T, error, bool)
	stop func()
}

func (it *pullIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		it.stop()
		return zero, false, err
	}
	val, err, ok := it.next()
	if !ok {
		return zero, false, nil
	}
	if err != nil {
		it.stop()
		return zero, false, err
	}
	return val, true, nil
}

func (it *pullIter[T]) Close() error {
	it.stop()
	return nil
}
