package ops

import (
	"fmt"
	"sync"

	"github.com/kbukum/graphx/errors"
)

// Diagnostic is a recoverable condition observed while running an operation.
type Diagnostic struct {
	Node      string           `json:"node"`
	Step      int              `json:"step"`
	Operation Kind             `json:"operation"`
	Err       *errors.AppError `json:"error"`
	// Count is the number of occurrences folded into this diagnostic.
	Count int `json:"count"`
}

// Diagnostics collects diagnostics of one run, folding repeated occurrences
// of the same code at the same operation into one entry.
type Diagnostics struct {
	mu       sync.Mutex
	items    []*Diagnostic
	index    map[string]*Diagnostic
	onReport func(Diagnostic)
}

// NewDiagnostics creates a collector. onReport, if set, is called for the
// first occurrence of every distinct diagnostic.
func NewDiagnostics(onReport func(Diagnostic)) *Diagnostics {
	return &Diagnostics{index: make(map[string]*Diagnostic), onReport: onReport}
}

// Report records a diagnostic.
func (d *Diagnostics) Report(diag Diagnostic) {
	if d == nil || diag.Err == nil {
		return
	}
	key := fmt.Sprintf("%s/%d/%s", diag.Node, diag.Step, diag.Err.Code)

	d.mu.Lock()
	if existing, ok := d.index[key]; ok {
		existing.Count++
		d.mu.Unlock()
		return
	}
	diag.Count = 1
	stored := diag
	d.items = append(d.items, &stored)
	d.index[key] = &stored
	d.mu.Unlock()

	if d.onReport != nil {
		d.onReport(diag)
	}
}

// List returns a snapshot of the collected diagnostics in report order.
func (d *Diagnostics) List() []Diagnostic {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.items))
	for i, item := range d.items {
		out[i] = *item
	}
	return out
}

// Has reports whether a diagnostic with the given code was recorded.
func (d *Diagnostics) Has(code errors.ErrorCode) bool {
	for _, diag := range d.List() {
		if diag.Err.Code == code {
			return true
		}
	}
	return false
}
