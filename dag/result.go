package dag

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/graphx/ops"
	"github.com/kbukum/graphx/record"
)

// Node statuses reported in NodeResult.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusNotRun    = "not_run"
)

// Result holds the outcome of a run.
type Result struct {
	RunID       uuid.UUID
	Job         string
	Table       record.Table
	Diagnostics []ops.Diagnostic
	// Nodes lists every reachable chain in dependency order.
	Nodes    []NodeResult
	Duration time.Duration
}

// NodeResult holds the outcome of one chain within a run.
type NodeResult struct {
	ID       int
	Name     string
	Status   string // "completed" | "failed" | "not_run"
	Computed int    // times the chain was computed
	Served   int    // requests answered, from the computation or the cache
	Records  int
	// Duration is the wall time of the last computation, including upstream
	// chains it triggered.
	Duration time.Duration
	Error    error
}

// Node returns the result of the chain called name.
func (r *Result) Node(name string) (NodeResult, bool) {
	for _, n := range r.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeResult{}, false
}

// WriteTo writes the output table as JSON lines.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	rw := record.NewWriter(cw)
	if err := rw.WriteTable(r.Table); err != nil {
		return cw.n, err
	}
	err := rw.Flush()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
