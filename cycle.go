package tjunction

import "errors"

// Outcome is the result of applying the rule table to one approach
type Outcome int

const (
	// OutcomeIdle means the approach had no waiting vehicle
	OutcomeIdle Outcome = iota
	// OutcomeRelease means the candidate proceeds to its exit
	OutcomeRelease
	// OutcomeDefer means the candidate stays at the head of its queue
	OutcomeDefer
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeRelease:
		return "release"
	case OutcomeDefer:
		return "defer"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Decision records what happened to one approach in one cycle.
// Exit is meaningful for releases, BlockedBy for deferrals without Err.
type Decision struct {
	Approach  Approach
	Vehicle   Vehicle
	Outcome   Outcome
	Exit      Approach
	BlockedBy Approach
	Rule      Rule
	Err       error
}

// Released reports whether the vehicle actually left the junction
func (d Decision) Released() bool {
	return d.Outcome == OutcomeRelease && d.Err == nil
}

// Deferred reports whether the candidate was held for a later cycle
func (d Decision) Deferred() bool {
	return d.Outcome == OutcomeDefer
}

// CycleResult represents the result of one reaction cycle
type CycleResult struct {
	Cycle     uint64
	Snapshot  Snapshot
	Decisions []Decision
	Error     error
}

// NewCycleResult creates a result for cycle with the given snapshot
func NewCycleResult(cycle uint64, snap Snapshot) *CycleResult {
	return &CycleResult{
		Cycle:     cycle,
		Snapshot:  snap,
		Decisions: make([]Decision, 0, len(Approaches)),
	}
}

// Decision returns the decision taken for approach in this cycle
func (r *CycleResult) Decision(approach Approach) (Decision, bool) {
	for _, d := range r.Decisions {
		if d.Approach == approach {
			return d, true
		}
	}
	return Decision{}, false
}

// Releases returns the decisions that released a vehicle, in evaluation order
func (r *CycleResult) Releases() []Decision {
	result := make([]Decision, 0, len(r.Decisions))
	for _, d := range r.Decisions {
		if d.Released() {
			result = append(result, d)
		}
	}
	return result
}

// ReleasedCount returns the number of vehicles that left the junction
func (r *CycleResult) ReleasedCount() int {
	return len(r.Releases())
}

// DeferredCount returns the number of deferred candidates
func (r *CycleResult) DeferredCount() int {
	count := 0
	for _, d := range r.Decisions {
		if d.Deferred() {
			count++
		}
	}
	return count
}

// Success returns true if the cycle completed without errors
func (r *CycleResult) Success() bool {
	return r.Error == nil
}

// collectErrors joins the per-decision errors into the cycle error
func (r *CycleResult) collectErrors() {
	errs := make([]error, 0)
	for _, d := range r.Decisions {
		if d.Err != nil {
			errs = append(errs, d.Err)
		}
	}
	r.Error = errors.Join(errs...)
}
