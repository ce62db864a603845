package tjunction

import (
	"context"
	"encoding/json"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Junction arbitrates right of way at a T junction. It owns the three
// approach queues; arrival handlers registered with the host append to them
// and only the junction's cycles remove from them.
type Junction struct {
	name        string
	host        Host
	queues      [len(Approaches)]*Queue
	observers   *ObserverManager
	parallel    bool
	waitNotices bool

	// waiting indexes vehicle IDs currently queued, to keep a vehicle in
	// at most one queue
	waiting      map[string]Approach
	waitingMutex sync.Mutex

	cycles uint64
	mutex  sync.Mutex
}

// newJunction creates a junction with empty queues and no host
func newJunction(name string) *Junction {
	j := &Junction{
		name:      name,
		observers: NewObserverManager(),
		waiting:   make(map[string]Approach),
	}
	for _, a := range Approaches {
		j.queues[a] = NewQueue(a)
	}
	return j
}

// attach registers one arrival handler per input port. If a registration
// fails, handlers already bound are removed again when the host supports it;
// otherwise they stay bound and the host cannot take another junction.
func (j *Junction) attach(host Host) error {
	j.host = host
	for i, a := range Approaches {
		if err := host.RegisterArrivalHandler(a.InputPort(), j.arrivalHandler(a)); err != nil {
			j.detach(host, Approaches[:i])
			return NewRegistrationError(a.InputPort(), err)
		}
	}
	return nil
}

// detach unbinds the handlers of approaches, best effort
func (j *Junction) detach(host Host, approaches []Approach) {
	remover, ok := host.(HandlerRemover)
	if !ok {
		return
	}
	for _, a := range approaches {
		_ = remover.UnregisterArrivalHandler(a.InputPort())
	}
}

// arrivalHandler binds Arrive to approach for the host
func (j *Junction) arrivalHandler(approach Approach) ArrivalHandler {
	return func(ctx context.Context, v Vehicle) error {
		return j.Arrive(ctx, approach, v)
	}
}

// Name returns the junction name
func (j *Junction) Name() string {
	return j.name
}

// Arrive validates v and appends it to the queue of approach.
// Invalid vehicles are rejected and never enqueued.
func (j *Junction) Arrive(ctx context.Context, approach Approach, v Vehicle) error {
	if err := ValidateMovement(approach, v.Intent()); err != nil {
		if intentErr, ok := err.(*IntentError); ok {
			intentErr.VehicleID = v.ID()
		}
		j.observers.NotifyArrivalRejected(ctx, approach, v, err)
		return err
	}

	j.waitingMutex.Lock()
	if v.ID() != "" {
		if other, exists := j.waiting[v.ID()]; exists {
			j.waitingMutex.Unlock()
			err := NewDuplicateVehicleError(approach, v.ID(), other)
			j.observers.NotifyArrivalRejected(ctx, approach, v, err)
			return err
		}
		j.waiting[v.ID()] = approach
	}
	j.queues[approach].Enqueue(v)
	j.waitingMutex.Unlock()

	j.observers.NotifyArrival(ctx, approach, v)
	return nil
}

// React runs one cycle; it lets a host trigger the junction after an arrival batch
func (j *Junction) React(ctx context.Context) *CycleResult {
	return j.Cycle(ctx)
}

// Cycle runs one arbitration cycle. The queues are snapshot once, every
// approach is decided against that snapshot in WEST, EAST, SOUTH order,
// and then releases are sent.
func (j *Junction) Cycle(ctx context.Context) *CycleResult {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	j.cycles++
	cycle := j.cycles

	snap := TakeSnapshot(j.queues[West], j.queues[East], j.queues[South])
	result := NewCycleResult(cycle, snap)
	j.observers.NotifyCycleStarted(ctx, cycle, snap)

	decisions := make([]Decision, len(Approaches))
	for i, a := range Approaches {
		decisions[i] = Decide(a, snap)
	}

	if j.parallel {
		j.applyParallel(ctx, decisions)
	} else {
		for i := range decisions {
			decisions[i] = j.apply(ctx, decisions[i])
		}
	}

	for _, d := range decisions {
		result.Decisions = append(result.Decisions, d)
		j.observers.NotifyDecision(ctx, cycle, d)
		if d.Err != nil {
			j.observers.NotifyError(ctx, d.Err)
		}
	}
	result.collectErrors()

	j.observers.NotifyCycleCompleted(ctx, result)
	return result
}

// applyParallel carries out decisions concurrently, one goroutine per
// approach. Each goroutine only touches its own queue.
func (j *Junction) applyParallel(ctx context.Context, decisions []Decision) {
	var g errgroup.Group
	for i := range decisions {
		if decisions[i].Outcome == OutcomeIdle {
			continue
		}
		i := i
		g.Go(func() error {
			decisions[i] = j.apply(ctx, decisions[i])
			return decisions[i].Err
		})
	}
	// per-decision errors stay on the decisions
	_ = g.Wait()
}

// apply carries out a decision against the queues and the host
func (j *Junction) apply(ctx context.Context, d Decision) Decision {
	switch d.Outcome {
	case OutcomeRelease:
		return j.release(ctx, d)
	case OutcomeDefer:
		if j.waitNotices && d.Err == nil {
			port := d.Approach.WaitPort()
			if err := j.host.Send(ctx, port, d.Vehicle); err != nil {
				d.Err = NewSendError(port, d.Vehicle.ID(), err)
			}
		}
	}
	return d
}

// release sends the candidate to its exit and then removes it from the
// head of its queue. A failed send leaves the queue untouched.
func (j *Junction) release(ctx context.Context, d Decision) Decision {
	q := j.queues[d.Approach]

	head, ok := q.PeekOldest()
	if !ok {
		d.Err = NewEmptyQueueError(d.Approach)
		return d
	}
	if head.ID() != d.Vehicle.ID() {
		d.Err = NewReleaseMismatchError(d.Approach, d.Vehicle.ID(), head.ID())
		return d
	}

	port := d.Exit.ExitPort()
	if err := j.host.Send(ctx, port, d.Vehicle); err != nil {
		d.Err = NewSendError(port, d.Vehicle.ID(), err)
		return d
	}

	released, err := q.ReleaseOldest()
	if err != nil {
		d.Err = err
		return d
	}

	j.waitingMutex.Lock()
	delete(j.waiting, released.ID())
	j.waitingMutex.Unlock()
	return d
}

// Settle runs cycles until one releases nothing, a cycle fails, ctx is
// done, or maxCycles have run
func (j *Junction) Settle(ctx context.Context, maxCycles int) ([]*CycleResult, error) {
	if maxCycles <= 0 {
		return nil, NewConfigurationError("Junction", "settle needs at least one cycle")
	}

	results := make([]*CycleResult, 0)
	for n := 0; n < maxCycles; n++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := j.Cycle(ctx)
		results = append(results, result)
		if result.Error != nil {
			return results, result.Error
		}
		if result.ReleasedCount() == 0 {
			break
		}
	}
	return results, nil
}

// Snapshot captures the current queue state
func (j *Junction) Snapshot() Snapshot {
	return TakeSnapshot(j.queues[West], j.queues[East], j.queues[South])
}

// Waiting returns the vehicles waiting on approach, oldest first
func (j *Junction) Waiting(approach Approach) []Vehicle {
	if !approach.Valid() {
		return nil
	}
	return j.queues[approach].Vehicles()
}

// Cycles returns the number of cycles run so far
func (j *Junction) Cycles() uint64 {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return j.cycles
}

// AddObserver adds an observer to the junction
func (j *Junction) AddObserver(observer Observer) {
	j.observers.AddObserver(observer)
}

// RemoveObserver removes an observer from the junction
func (j *Junction) RemoveObserver(observer Observer) {
	j.observers.RemoveObserver(observer)
}

type vehicleJSON struct {
	ID         string         `json:"id"`
	Intent     TurnIntent     `json:"intent"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type junctionJSON struct {
	Name    string                   `json:"name"`
	Cycles  uint64                   `json:"cycles"`
	Waiting map[string][]vehicleJSON `json:"waiting"`
}

// MarshalJSON serializes the junction name, cycle count and waiting vehicles
func (j *Junction) MarshalJSON() ([]byte, error) {
	state := junctionJSON{
		Name:    j.name,
		Cycles:  j.Cycles(),
		Waiting: make(map[string][]vehicleJSON, len(Approaches)),
	}
	for _, a := range Approaches {
		vehicles := j.queues[a].Vehicles()
		entries := make([]vehicleJSON, 0, len(vehicles))
		for _, v := range vehicles {
			attrs := v.Attributes()
			if len(attrs) == 0 {
				attrs = nil
			}
			entries = append(entries, vehicleJSON{ID: v.ID(), Intent: v.Intent(), Attributes: attrs})
		}
		state.Waiting[a.String()] = entries
	}
	return json.Marshal(state)
}
