// Package ops implements the graphx operation set: Map, Sort, Fold, Reduce
// and the sort-merge Join.
//
// Every operation transforms a lazy record stream into another lazy record
// stream. Sort, Fold and Join's other side materialize their input on the
// first pull; Map and Reduce stream. Grouping for Reduce and Join is by
// adjacency: a group is a maximal run of consecutive records sharing the
// values of the key columns, so both require input sorted by those keys.
//
// Recoverable anomalies (unsorted input, missing sort keys) are reported to
// the run's Diagnostics instead of failing the run.
package ops
