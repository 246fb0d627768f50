package dag

import (
	"time"

	"github.com/kbukum/graphx/record"
)

// memoState is the lifecycle of one chain's output within a run.
type memoState int

const (
	stateNotStarted memoState = iota
	stateRunning
	stateDone
	stateReleased
)

func (s memoState) String() string {
	switch s {
	case stateNotStarted:
		return "not_started"
	case stateRunning:
		return "running"
	case stateDone:
		return "done"
	case stateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// memo tracks one chain's output for the duration of a run.
type memo struct {
	state    memoState
	table    record.Table
	expected int // requests planned for the chain
	served   int // requests answered so far
	computed int // times the chain was computed
	records  int
	duration time.Duration
	err      error
}

// serve hands out the cached table and counts the request. The cache is
// dropped once every expected consumer was served and release is set.
func (m *memo) serve(release bool) record.Table {
	t := m.table
	m.served++
	if release && m.served >= m.expected {
		m.table = nil
		m.state = stateReleased
	}
	return t
}

// status summarizes the memo for a NodeResult.
func (m *memo) status() string {
	switch {
	case m.err != nil:
		return StatusFailed
	case m.computed > 0:
		return StatusCompleted
	default:
		return StatusNotRun
	}
}
