package tjunction

import (
	"context"
	"sync"
	"testing"
)

// RecordingObserver is a mock observer for testing that captures every notification
type RecordingObserver struct {
	mutex     sync.RWMutex
	Arrivals  []ArrivalRecord
	Rejected  []ArrivalRecord
	Decisions []DecisionRecord
	Started   []CycleRecord
	Completed []*CycleResult
	Errors    []error
}

type ArrivalRecord struct {
	Approach Approach
	Vehicle  Vehicle
	Err      error
}

type DecisionRecord struct {
	Cycle    uint64
	Decision Decision
}

type CycleRecord struct {
	Cycle    uint64
	Snapshot Snapshot
}

// NewRecordingObserver creates a new recording observer
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{
		Arrivals:  make([]ArrivalRecord, 0),
		Rejected:  make([]ArrivalRecord, 0),
		Decisions: make([]DecisionRecord, 0),
		Started:   make([]CycleRecord, 0),
		Completed: make([]*CycleResult, 0),
		Errors:    make([]error, 0),
	}
}

// Observer interface implementations
func (o *RecordingObserver) OnArrival(ctx context.Context, approach Approach, v Vehicle) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Arrivals = append(o.Arrivals, ArrivalRecord{Approach: approach, Vehicle: v})
}

func (o *RecordingObserver) OnDecision(ctx context.Context, cycle uint64, d Decision) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Decisions = append(o.Decisions, DecisionRecord{Cycle: cycle, Decision: d})
}

// ExtendedObserver interface implementations
func (o *RecordingObserver) OnArrivalRejected(ctx context.Context, approach Approach, v Vehicle, err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Rejected = append(o.Rejected, ArrivalRecord{Approach: approach, Vehicle: v, Err: err})
}

func (o *RecordingObserver) OnCycleStarted(ctx context.Context, cycle uint64, snap Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Started = append(o.Started, CycleRecord{Cycle: cycle, Snapshot: snap})
}

func (o *RecordingObserver) OnCycleCompleted(ctx context.Context, result *CycleResult) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Completed = append(o.Completed, result)
}

func (o *RecordingObserver) OnError(ctx context.Context, err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

// Helper methods for test assertions
func (o *RecordingObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Arrivals = nil
	o.Rejected = nil
	o.Decisions = nil
	o.Started = nil
	o.Completed = nil
	o.Errors = nil
}

func (o *RecordingObserver) ArrivalCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Arrivals)
}

func (o *RecordingObserver) RejectedCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Rejected)
}

func (o *RecordingObserver) ErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Errors)
}

// DecisionsFor returns the recorded decisions for approach, oldest first
func (o *RecordingObserver) DecisionsFor(approach Approach) []Decision {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	result := make([]Decision, 0)
	for _, rec := range o.Decisions {
		if rec.Decision.Approach == approach {
			result = append(result, rec.Decision)
		}
	}
	return result
}

// LastCompleted returns the most recent cycle result, or nil
func (o *RecordingObserver) LastCompleted() *CycleResult {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	if len(o.Completed) == 0 {
		return nil
	}
	return o.Completed[len(o.Completed)-1]
}

// Test assertions and utilities

// AssertReleased fails the test unless approach released a vehicle to exit in result
func AssertReleased(t *testing.T, result *CycleResult, approach, exit Approach) {
	t.Helper()
	d, ok := result.Decision(approach)
	if !ok {
		t.Fatalf("no decision for %s in cycle %d", approach, result.Cycle)
	}
	if !d.Released() {
		t.Errorf("expected %s to release, got %s (err: %v)", approach, d.Outcome, d.Err)
		return
	}
	if d.Exit != exit {
		t.Errorf("expected %s to exit %s, got %s", approach, exit, d.Exit)
	}
}

// AssertDeferred fails the test unless approach was deferred in result
func AssertDeferred(t *testing.T, result *CycleResult, approach Approach) {
	t.Helper()
	d, ok := result.Decision(approach)
	if !ok {
		t.Fatalf("no decision for %s in cycle %d", approach, result.Cycle)
	}
	if !d.Deferred() {
		t.Errorf("expected %s to be deferred, got %s", approach, d.Outcome)
	}
}

// AssertIdle fails the test unless approach had nothing to decide in result
func AssertIdle(t *testing.T, result *CycleResult, approach Approach) {
	t.Helper()
	d, ok := result.Decision(approach)
	if !ok {
		t.Fatalf("no decision for %s in cycle %d", approach, result.Cycle)
	}
	if d.Outcome != OutcomeIdle {
		t.Errorf("expected %s to be idle, got %s", approach, d.Outcome)
	}
}
