// Package record provides the data model of graphx: scalar values,
// ordered records with a sparse schema, tables, and a JSON-lines codec.
//
// A Record keeps its columns in insertion order so that output written with
// a Writer is stable, while equality ignores column order:
//
//	r := record.New("text", "cat", "count", 1)
//	r.Set("count", 2)
//	n, _ := r.GetInt("count")
//
// Values are normalized on insertion: Go integers become int64 and float32
// becomes float64, so comparisons and JSON round trips are predictable.
package record
