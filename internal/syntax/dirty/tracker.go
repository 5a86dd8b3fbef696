// Package dirty tracks the character range that still needs classification.
package dirty

import (
	"fmt"
	"sync"
)

// Tracker tracks the pending [processed, target] character range.
//
// processed is the leftmost character not yet known to be classified and
// target the rightmost character that must be classified. Marks only ever
// widen the range until a completed pass resets it.
type Tracker struct {
	mu sync.RWMutex

	processed int
	target    int

	// pending is true while a marked range has not been fully processed.
	pending bool

	// marks counts Mark calls since creation, for stats.
	marks uint64

	// resets counts completed passes.
	resets uint64
}

// NewTracker creates a tracker for a buffer of length n with nothing pending.
func NewTracker(n int) *Tracker {
	t := &Tracker{}
	t.reset(n)
	return t
}

// Mark widens the pending range to include [start, end].
// Repeated or overlapping marks never narrow the range.
func (t *Tracker) Mark(start, end int) {
	if start < 0 || end < start {
		panic(fmt.Sprintf("dirty: invalid range [%d,%d]", start, end))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.processed = min(t.processed, start)
	t.target = max(t.target, end)
	t.pending = true
	t.marks++
}

// Clamp keeps both cursors inside [0, n-1] after the buffer length changed.
// An empty buffer has nothing to classify and is reset.
func (t *Tracker) Clamp(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n <= 0 {
		t.reset(0)
		return
	}
	last := n - 1
	t.processed = max(0, min(t.processed, last))
	t.target = max(0, min(t.target, last))
}

// Shift moves a pending range along with an edit so it keeps covering the
// same characters. A positive delta is an insertion of delta characters at
// at; a negative delta is the deletion of [at, at-delta).
func (t *Tracker) Shift(at, delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.pending || delta == 0 {
		return
	}
	if delta > 0 {
		if t.processed > at {
			t.processed += delta
		}
		if t.target >= at {
			t.target += delta
		}
		return
	}

	end := at - delta
	shift := func(c int) int {
		switch {
		case c >= end:
			return c + delta
		case c > at:
			return at
		default:
			return c
		}
	}
	t.processed = shift(t.processed)
	t.target = shift(t.target)
}

// Begin records the start of a scan. The scan start is never to the right of
// the current processed cursor, so this only moves it left.
func (t *Tracker) Begin(start int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.processed = min(t.processed, start)
}

// Reset marks everything as classified for a buffer of length n.
func (t *Tracker) Reset(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reset(n)
	t.resets++
}

func (t *Tracker) reset(n int) {
	t.processed = n - 1
	t.target = 0
	t.pending = false
}

// Range returns the current processed and target cursors.
func (t *Tracker) Range() (processed, target int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.processed, t.target
}

// IsClean returns true if nothing is pending.
func (t *Tracker) IsClean() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.pending
}

// IsPending returns true if offset lies inside the pending range.
func (t *Tracker) IsPending(offset int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pending && offset >= t.processed && offset <= t.target
}

// Stats returns statistics about the tracker state.
func (t *Tracker) Stats() TrackerStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return TrackerStats{
		Processed: t.processed,
		Target:    t.target,
		Pending:   t.pending,
		Marks:     t.marks,
		Passes:    t.resets,
	}
}

// TrackerStats contains statistics about the tracker state.
type TrackerStats struct {
	Processed int
	Target    int
	Pending   bool
	Marks     uint64
	Passes    uint64
}
