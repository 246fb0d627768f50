// Package stream provides lazy, pull-based sequences.
//
// An Iterator is finite and not restartable: each value is produced once,
// on demand, when the consumer calls Next. Operations compose by wrapping
// iterators, so no work happens until values are pulled via Collect or
// ForEach.
//
// Generators are written with Generate:
//
//	words := stream.Generate(func(yield func(string) bool) error {
//	    for _, w := range strings.Fields(text) {
//	        if !yield(w) {
//	            return nil
//	        }
//	    }
//	    return nil
//	})
//	all, err := stream.Collect(ctx, words)
package stream
