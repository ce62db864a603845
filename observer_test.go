package tjunction

import (
	"context"
	"strings"
	"sync"
	"testing"
)

type panickingObserver struct {
	RecordingObserver
}

func (o *panickingObserver) OnArrival(ctx context.Context, approach Approach, v Vehicle) {
	panic("observer exploded")
}

type minimalObserver struct {
	arrivals int
}

func (o *minimalObserver) OnArrival(ctx context.Context, approach Approach, v Vehicle) {
	o.arrivals++
}

func (o *minimalObserver) OnDecision(ctx context.Context, cycle uint64, d Decision) {}

func TestObserver_BasicInterface(t *testing.T) {
	var _ Observer = &BaseObserver{}
	var _ ExtendedObserver = &BaseObserver{}
	var _ ExtendedObserver = NewRecordingObserver()
}

func TestObserverManager_AddRemove(t *testing.T) {
	om := NewObserverManager()
	first := NewRecordingObserver()
	second := NewRecordingObserver()

	om.AddObserver(first)
	om.AddObserver(second)
	if om.Len() != 2 {
		t.Fatalf("Expected 2 observers, got %d", om.Len())
	}

	om.RemoveObserver(first)
	if om.Len() != 1 {
		t.Fatalf("Expected 1 observer, got %d", om.Len())
	}

	om.NotifyArrival(context.Background(), West, NewVehicle(Straight))
	if first.ArrivalCount() != 0 || second.ArrivalCount() != 1 {
		t.Error("Only the remaining observer should be notified")
	}
}

func TestObserverManager_PanicRecovery(t *testing.T) {
	om := NewObserverManager()
	bad := &panickingObserver{}
	good := NewRecordingObserver()
	om.AddObserver(bad)
	om.AddObserver(good)

	om.NotifyArrival(context.Background(), East, NewVehicle(Straight))

	if good.ArrivalCount() != 1 {
		t.Error("A panicking observer must not stop later observers")
	}
	if bad.ErrorCount() != 1 {
		t.Fatalf("Expected the panic reported to the panicking observer, got %d errors", bad.ErrorCount())
	}
	if !strings.Contains(bad.Errors[0].Error(), "OnArrival") {
		t.Errorf("Expected method name in panic error: %v", bad.Errors[0])
	}
}

func TestObserverManager_RequiredOnly(t *testing.T) {
	om := NewObserverManager()
	obs := &minimalObserver{}
	om.AddObserver(obs)

	ctx := context.Background()
	om.NotifyArrival(ctx, South, NewVehicle(TurnLeft))
	om.NotifyArrivalRejected(ctx, South, NewVehicle(Straight), ErrNoMovement)
	om.NotifyCycleStarted(ctx, 1, Snapshot{})
	om.NotifyCycleCompleted(ctx, NewCycleResult(1, Snapshot{}))
	om.NotifyError(ctx, ErrEmptyQueue)

	if obs.arrivals != 1 {
		t.Errorf("Expected 1 arrival, got %d", obs.arrivals)
	}
}

func TestObserverManager_Concurrent(t *testing.T) {
	om := NewObserverManager()
	recorder := NewRecordingObserver()
	om.AddObserver(recorder)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			om.NotifyDecision(context.Background(), 1, Decision{Approach: West})
		}()
		go func() {
			defer wg.Done()
			extra := NewRecordingObserver()
			om.AddObserver(extra)
			om.RemoveObserver(extra)
		}()
	}
	wg.Wait()

	if len(recorder.DecisionsFor(West)) != 10 {
		t.Errorf("Expected 10 decisions, got %d", len(recorder.DecisionsFor(West)))
	}
}
