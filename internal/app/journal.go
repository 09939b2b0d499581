package app

import (
	"sync"

	"github.com/quantfeed/blockwatch/pkg/types"
)

// DecisionJournal keeps the most recent decisions in memory for the
// /api/decisions endpoint. Oldest entries fall off once capacity is reached.
type DecisionJournal struct {
	mu       sync.RWMutex
	entries  []*types.AlertDecision
	capacity int
	next     int
	full     bool
}

// NewDecisionJournal creates a journal holding up to capacity decisions.
func NewDecisionJournal(capacity int) *DecisionJournal {
	if capacity < 1 {
		capacity = 1
	}
	return &DecisionJournal{
		entries:  make([]*types.AlertDecision, capacity),
		capacity: capacity,
	}
}

// Add records a decision.
func (j *DecisionJournal) Add(d *types.AlertDecision) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries[j.next] = d
	j.next = (j.next + 1) % j.capacity
	if j.next == 0 {
		j.full = true
	}
}

// Recent returns up to limit decisions, newest first.
func (j *DecisionJournal) Recent(limit int) []*types.AlertDecision {
	j.mu.RLock()
	defer j.mu.RUnlock()

	size := j.next
	if j.full {
		size = j.capacity
	}
	if limit > size {
		limit = size
	}

	out := make([]*types.AlertDecision, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (j.next - i + j.capacity) % j.capacity
		out = append(out, j.entries[idx])
	}
	return out
}
