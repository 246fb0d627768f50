// Package errors provides the graphx error taxonomy.
// It implements structured error types with machine-readable codes and
// separates fatal errors, which abort a run, from recoverable conditions
// that are reported as diagnostics while processing continues.
package errors
