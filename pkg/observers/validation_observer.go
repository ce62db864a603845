package observers

import (
	"context"
	"fmt"
	"sync"

	"github.com/anggasct/tjunction"
)

// ValidationObserver checks junction behavior against its own record of
// arrivals. It flags releases that skip the oldest waiting vehicle, vehicles
// twice without arriving again, or never seen arriving, exits that disagree with the rule
// table, and deferrals whose blocking approach was empty.
type ValidationObserver struct {
	tjunction.BaseObserver
	pending    [3][]string
	released   map[string]bool // released since their last arrival
	snapshots  map[uint64]tjunction.Snapshot
	violations []string
	mutex      sync.RWMutex
}

// NewValidationObserver creates a new validation observer
func NewValidationObserver() *ValidationObserver {
	o := &ValidationObserver{}
	o.reset()
	return o
}

func (o *ValidationObserver) reset() {
	for i := range o.pending {
		o.pending[i] = make([]string, 0)
	}
	o.released = make(map[string]bool)
	o.snapshots = make(map[uint64]tjunction.Snapshot)
	o.violations = make([]string, 0)
}

// addViolation records a violation; callers hold the lock
func (o *ValidationObserver) addViolation(format string, args ...any) {
	o.violations = append(o.violations, fmt.Sprintf(format, args...))
}

// OnArrival tracks the vehicle as waiting on approach
func (o *ValidationObserver) OnArrival(ctx context.Context, approach tjunction.Approach, v tjunction.Vehicle) {
	if !approach.Valid() {
		return
	}
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.pending[approach] = append(o.pending[approach], v.ID())
	// a released ID may come back as a new arrival
	delete(o.released, v.ID())
}

// OnCycleStarted keeps the snapshot so deferrals can be checked against it
func (o *ValidationObserver) OnCycleStarted(ctx context.Context, cycle uint64, snap tjunction.Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.snapshots[cycle] = snap
}

// OnDecision validates a release or deferral
func (o *ValidationObserver) OnDecision(ctx context.Context, cycle uint64, d tjunction.Decision) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	switch {
	case d.Released():
		o.checkRelease(cycle, d)
	case d.Deferred() && d.Err == nil:
		snap, ok := o.snapshots[cycle]
		if ok && !snap.Occupied(d.BlockedBy) {
			o.addViolation("cycle %d: %s deferred %s for %s, which was empty",
				cycle, d.Approach, d.Vehicle.ID(), d.BlockedBy)
		}
	}
}

func (o *ValidationObserver) checkRelease(cycle uint64, d tjunction.Decision) {
	id := d.Vehicle.ID()
	if o.released[id] {
		o.addViolation("cycle %d: vehicle %s released twice", cycle, id)
		return
	}
	o.released[id] = true

	rule, ok := tjunction.LookupRule(d.Approach, d.Vehicle.Intent())
	if !ok {
		o.addViolation("cycle %d: %s released %s with no movement for %s",
			cycle, d.Approach, id, d.Vehicle.Intent())
	} else if rule.Exit != d.Exit {
		o.addViolation("cycle %d: %s %s exited %s, expected %s",
			cycle, d.Approach, d.Vehicle.Intent(), d.Exit, rule.Exit)
	}

	queue := o.pending[d.Approach]
	if len(queue) == 0 {
		o.addViolation("cycle %d: %s released %s without an arrival", cycle, d.Approach, id)
		return
	}
	if queue[0] != id {
		o.addViolation("cycle %d: %s released %s ahead of %s", cycle, d.Approach, id, queue[0])
		for i, pending := range queue {
			if pending == id {
				o.pending[d.Approach] = append(queue[:i:i], queue[i+1:]...)
				return
			}
		}
		return
	}
	o.pending[d.Approach] = queue[1:]
}

// OnCycleCompleted drops the stored snapshot
func (o *ValidationObserver) OnCycleCompleted(ctx context.Context, result *tjunction.CycleResult) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	delete(o.snapshots, result.Cycle)
}

// GetViolations returns all recorded violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// HasViolations returns true if any violations were recorded
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Pending returns the IDs the observer expects to still be waiting on approach
func (o *ValidationObserver) Pending(approach tjunction.Approach) []string {
	if !approach.Valid() {
		return nil
	}
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	result := make([]string, len(o.pending[approach]))
	copy(result, o.pending[approach])
	return result
}

// Reset clears all tracking data
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.reset()
}
