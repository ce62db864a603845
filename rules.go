package tjunction

// Rule describes one movement through the junction: the candidate on
// Approach with Intent leaves by Exit, unless one of the YieldTo approaches
// holds a waiting vehicle at the start of the cycle.
//
// The table is asymmetric. WEST turning right and SOUTH turning
// right never yield even where a symmetric conflict could be argued.
type Rule struct {
	Approach    Approach
	Intent      TurnIntent
	Exit        Approach
	YieldTo     []Approach
	Description string
}

// Unconditional reports whether the movement never yields
func (r Rule) Unconditional() bool {
	return len(r.YieldTo) == 0
}

var ruleTable = []Rule{
	{
		Approach:    West,
		Intent:      Straight,
		Exit:        East,
		YieldTo:     []Approach{South},
		Description: "crosses to EAST; a SOUTH vehicle pulling in would cross the path",
	},
	{
		Approach:    West,
		Intent:      TurnRight,
		Exit:        South,
		Description: "peels off to SOUTH without crossing oncoming through traffic",
	},
	{
		Approach:    East,
		Intent:      Straight,
		Exit:        West,
		Description: "crosses to WEST",
	},
	{
		Approach:    East,
		Intent:      TurnLeft,
		Exit:        West,
		YieldTo:     []Approach{West},
		Description: "crosses the WEST lane",
	},
	{
		Approach:    South,
		Intent:      TurnRight,
		Exit:        East,
		Description: "merges toward EAST",
	},
	{
		Approach:    South,
		Intent:      TurnLeft,
		Exit:        West,
		YieldTo:     []Approach{East},
		Description: "crosses the EAST lane toward WEST",
	},
}

// Rules returns a copy of the rule table in evaluation order
func Rules() []Rule {
	result := make([]Rule, len(ruleTable))
	for i, r := range ruleTable {
		r.YieldTo = append([]Approach(nil), r.YieldTo...)
		result[i] = r
	}
	return result
}

// LookupRule finds the movement for a candidate with intent on approach
func LookupRule(approach Approach, intent TurnIntent) (Rule, bool) {
	for _, r := range ruleTable {
		if r.Approach == approach && r.Intent == intent {
			return r, true
		}
	}
	return Rule{}, false
}

// ValidateMovement checks that a vehicle with intent can be arbitrated on approach
func ValidateMovement(approach Approach, intent TurnIntent) error {
	if !approach.Valid() {
		return NewInvalidApproachError(approach)
	}
	if !intent.Valid() {
		err := NewUnknownIntentError(intent)
		err.Approach = approach.String()
		return err
	}
	if _, ok := LookupRule(approach, intent); !ok {
		return NewNoMovementError(approach, intent)
	}
	return nil
}

// Snapshot is the state of all three queues captured at cycle start.
// Conflict checks read occupancy from the snapshot only, so a release
// earlier in a cycle never changes a later approach's decision.
type Snapshot struct {
	candidates [len(Approaches)]Vehicle
	lengths    [len(Approaches)]int
}

// TakeSnapshot captures the queues atomically. Locks are taken in
// WEST, EAST, SOUTH order.
func TakeSnapshot(west, east, south *Queue) Snapshot {
	queues := [...]*Queue{west, east, south}
	for _, q := range queues {
		q.mutex.Lock()
	}
	defer func() {
		for i := len(queues) - 1; i >= 0; i-- {
			queues[i].mutex.Unlock()
		}
	}()

	var snap Snapshot
	for i, q := range queues {
		snap.lengths[i] = len(q.vehicles)
		if candidate, ok := q.peekLocked(); ok {
			snap.candidates[i] = candidate
		}
	}
	return snap
}

// Occupied reports whether approach had at least one waiting vehicle
func (s Snapshot) Occupied(approach Approach) bool {
	return approach.Valid() && s.lengths[approach] > 0
}

// Candidate returns the oldest vehicle waiting on approach
func (s Snapshot) Candidate(approach Approach) (Vehicle, bool) {
	if !s.Occupied(approach) {
		return Vehicle{}, false
	}
	return s.candidates[approach], true
}

// Len returns the queue length of approach
func (s Snapshot) Len(approach Approach) int {
	if !approach.Valid() {
		return 0
	}
	return s.lengths[approach]
}

// Total returns the number of vehicles waiting across the junction
func (s Snapshot) Total() int {
	total := 0
	for _, n := range s.lengths {
		total += n
	}
	return total
}

// Decide applies the rule table to the candidate of approach.
// It is a pure function of its inputs.
func Decide(approach Approach, snap Snapshot) Decision {
	d := Decision{Approach: approach, Outcome: OutcomeIdle}

	candidate, ok := snap.Candidate(approach)
	if !ok {
		return d
	}
	d.Vehicle = candidate

	rule, found := LookupRule(approach, candidate.Intent())
	if !found {
		// Arrival validation keeps these out; hold the vehicle and report it.
		d.Outcome = OutcomeDefer
		d.Err = ValidateMovement(approach, candidate.Intent())
		return d
	}
	d.Rule = rule

	for _, other := range rule.YieldTo {
		if snap.Occupied(other) {
			d.Outcome = OutcomeDefer
			d.BlockedBy = other
			return d
		}
	}

	d.Outcome = OutcomeRelease
	d.Exit = rule.Exit
	return d
}
