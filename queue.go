package tjunction

import "sync"

// Queue is the FIFO buffer of vehicles waiting on one approach.
// The oldest vehicle is both the candidate the rules inspect and the
// only vehicle that can be released.
type Queue struct {
	approach Approach
	vehicles []Vehicle
	mutex    sync.Mutex
}

// NewQueue creates an empty queue for approach
func NewQueue(approach Approach) *Queue {
	return &Queue{
		approach: approach,
		vehicles: make([]Vehicle, 0),
	}
}

// Approach returns the approach this queue buffers
func (q *Queue) Approach() Approach {
	return q.approach
}

// Enqueue appends v at the arrival end
func (q *Queue) Enqueue(v Vehicle) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.vehicles = append(q.vehicles, v)
}

// PeekOldest returns the longest-waiting vehicle without removing it
func (q *Queue) PeekOldest() (Vehicle, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.peekLocked()
}

// ReleaseOldest removes and returns the longest-waiting vehicle.
// It fails with an empty-queue error rather than returning a zero Vehicle.
func (q *Queue) ReleaseOldest() (Vehicle, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if len(q.vehicles) == 0 {
		return Vehicle{}, NewEmptyQueueError(q.approach)
	}

	oldest := q.vehicles[0]
	q.vehicles[0] = Vehicle{}
	q.vehicles = q.vehicles[1:]
	return oldest, nil
}

// Len returns the number of waiting vehicles
func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.vehicles)
}

// Vehicles returns a copy of the waiting vehicles, oldest first
func (q *Queue) Vehicles() []Vehicle {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	result := make([]Vehicle, len(q.vehicles))
	copy(result, q.vehicles)
	return result
}

func (q *Queue) peekLocked() (Vehicle, bool) {
	if len(q.vehicles) == 0 {
		return Vehicle{}, false
	}
	return q.vehicles[0], true
}
