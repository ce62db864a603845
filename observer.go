package tjunction

import (
	"context"
	"fmt"
	"sync"
)

// Observer represents an entity that observes junction activity
type Observer interface {
	// Required methods

	// OnArrival is called after a vehicle has been enqueued
	OnArrival(ctx context.Context, approach Approach, v Vehicle)

	// OnDecision is called once per approach per cycle, after any release
	OnDecision(ctx context.Context, cycle uint64, d Decision)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnArrivalRejected is called when a vehicle fails arrival validation
	OnArrivalRejected(ctx context.Context, approach Approach, v Vehicle, err error)

	// OnCycleStarted is called with the snapshot the cycle will decide on
	OnCycleStarted(ctx context.Context, cycle uint64, snap Snapshot)

	// OnCycleCompleted is called when every approach has been decided
	OnCycleCompleted(ctx context.Context, result *CycleResult)

	// OnError is called when an error occurs during processing
	OnError(ctx context.Context, err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnArrival implements the required Observer method
func (o *BaseObserver) OnArrival(ctx context.Context, approach Approach, v Vehicle) {}

// OnDecision implements the required Observer method
func (o *BaseObserver) OnDecision(ctx context.Context, cycle uint64, d Decision) {}

// OnArrivalRejected implements the optional ExtendedObserver method
func (o *BaseObserver) OnArrivalRejected(ctx context.Context, approach Approach, v Vehicle, err error) {
}

// OnCycleStarted implements the optional ExtendedObserver method
func (o *BaseObserver) OnCycleStarted(ctx context.Context, cycle uint64, snap Snapshot) {}

// OnCycleCompleted implements the optional ExtendedObserver method
func (o *BaseObserver) OnCycleCompleted(ctx context.Context, result *CycleResult) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(ctx context.Context, err error) {}

// ObserverManager manages a collection of observers
type ObserverManager struct {
	observers []Observer
	mutex     sync.RWMutex
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	om.mutex.Lock()
	defer om.mutex.Unlock()
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	return len(om.observers)
}

func (om *ObserverManager) snapshot() []Observer {
	om.mutex.RLock()
	defer om.mutex.RUnlock()
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	return observers
}

// guard runs fn and turns an observer panic into an OnError notification
// on the same observer, swallowing any panic from that too
func guard(ctx context.Context, observer Observer, method string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if extObs, ok := observer.(ExtendedObserver); ok {
				func() {
					defer func() { recover() }()
					extObs.OnError(ctx, fmt.Errorf("observer panic in %s: %v", method, r))
				}()
			}
		}
	}()
	fn()
}

// NotifyArrival notifies all observers of an accepted arrival
func (om *ObserverManager) NotifyArrival(ctx context.Context, approach Approach, v Vehicle) {
	for _, observer := range om.snapshot() {
		guard(ctx, observer, "OnArrival", func() {
			observer.OnArrival(ctx, approach, v)
		})
	}
}

// NotifyDecision notifies all observers of a decision
func (om *ObserverManager) NotifyDecision(ctx context.Context, cycle uint64, d Decision) {
	for _, observer := range om.snapshot() {
		guard(ctx, observer, "OnDecision", func() {
			observer.OnDecision(ctx, cycle, d)
		})
	}
}

// NotifyArrivalRejected notifies all observers of a rejected arrival
func (om *ObserverManager) NotifyArrivalRejected(ctx context.Context, approach Approach, v Vehicle, err error) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			guard(ctx, observer, "OnArrivalRejected", func() {
				extObs.OnArrivalRejected(ctx, approach, v, err)
			})
		}
	}
}

// NotifyCycleStarted notifies all observers that a cycle has started
func (om *ObserverManager) NotifyCycleStarted(ctx context.Context, cycle uint64, snap Snapshot) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			guard(ctx, observer, "OnCycleStarted", func() {
				extObs.OnCycleStarted(ctx, cycle, snap)
			})
		}
	}
}

// NotifyCycleCompleted notifies all observers that a cycle has completed
func (om *ObserverManager) NotifyCycleCompleted(ctx context.Context, result *CycleResult) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			guard(ctx, observer, "OnCycleCompleted", func() {
				extObs.OnCycleCompleted(ctx, result)
			})
		}
	}
}

// NotifyError notifies all observers of errors
func (om *ObserverManager) NotifyError(ctx context.Context, err error) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			guard(ctx, observer, "OnError", func() {
				extObs.OnError(ctx, err)
			})
		}
	}
}
