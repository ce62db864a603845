package tjunction

import (
	"errors"
	"testing"
)

// snapshotOf builds a snapshot from per-approach intents, oldest first
func snapshotOf(west, east, south []TurnIntent) Snapshot {
	queues := [...]*Queue{NewQueue(West), NewQueue(East), NewQueue(South)}
	for i, intents := range [][]TurnIntent{west, east, south} {
		for _, intent := range intents {
			queues[i].Enqueue(NewVehicle(intent))
		}
	}
	return TakeSnapshot(queues[West], queues[East], queues[South])
}

func TestRules_Table(t *testing.T) {
	testCases := []struct {
		approach Approach
		intent   TurnIntent
		exit     Approach
		yieldTo  []Approach
	}{
		{West, Straight, East, []Approach{South}},
		{West, TurnRight, South, nil},
		{East, Straight, West, nil},
		{East, TurnLeft, West, []Approach{West}},
		{South, TurnRight, East, nil},
		{South, TurnLeft, West, []Approach{East}},
	}

	rules := Rules()
	if len(rules) != len(testCases) {
		t.Fatalf("Expected %d rules, got %d", len(testCases), len(rules))
	}

	for i, tc := range testCases {
		rule, ok := LookupRule(tc.approach, tc.intent)
		if !ok {
			t.Errorf("Missing rule for %s %s", tc.approach, tc.intent)
			continue
		}
		if rule.Exit != tc.exit {
			t.Errorf("%s %s: expected exit %s, got %s", tc.approach, tc.intent, tc.exit, rule.Exit)
		}
		if len(rule.YieldTo) != len(tc.yieldTo) {
			t.Errorf("%s %s: expected yields %v, got %v", tc.approach, tc.intent, tc.yieldTo, rule.YieldTo)
		}
		for j := range tc.yieldTo {
			if rule.YieldTo[j] != tc.yieldTo[j] {
				t.Errorf("%s %s: expected yields %v, got %v", tc.approach, tc.intent, tc.yieldTo, rule.YieldTo)
			}
		}
		if rule.Unconditional() != (len(tc.yieldTo) == 0) {
			t.Errorf("%s %s: wrong Unconditional()", tc.approach, tc.intent)
		}
		if rules[i].Approach != tc.approach || rules[i].Intent != tc.intent {
			t.Errorf("Rule %d out of order: %s %s", i, rules[i].Approach, rules[i].Intent)
		}
	}
}

func TestRules_CopyIsolation(t *testing.T) {
	rules := Rules()
	rules[0].YieldTo[0] = East
	rules[0].Exit = South

	rule, _ := LookupRule(West, Straight)
	if rule.YieldTo[0] != South || rule.Exit != East {
		t.Error("Mutating Rules() must not change the rule table")
	}
}

func TestValidateMovement(t *testing.T) {
	for _, rule := range Rules() {
		if err := ValidateMovement(rule.Approach, rule.Intent); err != nil {
			t.Errorf("%s %s should be valid: %v", rule.Approach, rule.Intent, err)
		}
	}

	noMovement := []struct {
		approach Approach
		intent   TurnIntent
	}{
		{West, TurnLeft},
		{East, TurnRight},
		{South, Straight},
	}
	for _, tc := range noMovement {
		err := ValidateMovement(tc.approach, tc.intent)
		if !errors.Is(err, ErrNoMovement) {
			t.Errorf("%s %s: expected ErrNoMovement, got %v", tc.approach, tc.intent, err)
		}
		if GetErrorCode(err) != ErrCodeNoMovement {
			t.Errorf("%s %s: expected no movement code", tc.approach, tc.intent)
		}
	}

	err := ValidateMovement(East, TurnIntent(2))
	if !errors.Is(err, ErrUnknownIntent) {
		t.Errorf("Expected ErrUnknownIntent, got %v", err)
	}
	var intentErr *IntentError
	if !errors.As(err, &intentErr) || intentErr.Approach != "EAST" {
		t.Errorf("Expected intent error tagged with EAST, got %v", err)
	}

	if err := ValidateMovement(Approach(3), Straight); !errors.Is(err, ErrInvalidApproach) {
		t.Errorf("Expected ErrInvalidApproach, got %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	snap := snapshotOf([]TurnIntent{Straight, TurnRight}, nil, []TurnIntent{TurnLeft})

	if !snap.Occupied(West) || snap.Occupied(East) || !snap.Occupied(South) {
		t.Error("Unexpected occupancy")
	}
	if snap.Len(West) != 2 || snap.Len(East) != 0 || snap.Len(South) != 1 {
		t.Error("Unexpected queue lengths")
	}
	if snap.Total() != 3 {
		t.Errorf("Expected 3 waiting, got %d", snap.Total())
	}

	candidate, ok := snap.Candidate(West)
	if !ok || candidate.Intent() != Straight {
		t.Error("Expected the oldest WEST vehicle as candidate")
	}
	if _, ok := snap.Candidate(East); ok {
		t.Error("Expected no EAST candidate")
	}
	if snap.Occupied(Approach(5)) || snap.Len(Approach(5)) != 0 {
		t.Error("Invalid approaches should read as empty")
	}
}

func TestDecide_Scenarios(t *testing.T) {
	testCases := []struct {
		name              string
		west, east, south []TurnIntent
		expected          [3]Outcome
		exits             map[Approach]Approach
		blocked           map[Approach]Approach
	}{
		{
			name:     "west straight alone",
			west:     []TurnIntent{Straight},
			expected: [3]Outcome{OutcomeRelease, OutcomeIdle, OutcomeIdle},
			exits:    map[Approach]Approach{West: East},
		},
		{
			name:     "west straight yields to south left",
			west:     []TurnIntent{Straight},
			south:    []TurnIntent{TurnLeft},
			expected: [3]Outcome{OutcomeDefer, OutcomeIdle, OutcomeRelease},
			exits:    map[Approach]Approach{South: West},
			blocked:  map[Approach]Approach{West: South},
		},
		{
			name:     "east left yields to west right",
			west:     []TurnIntent{TurnRight},
			east:     []TurnIntent{TurnLeft},
			expected: [3]Outcome{OutcomeRelease, OutcomeDefer, OutcomeIdle},
			exits:    map[Approach]Approach{West: South},
			blocked:  map[Approach]Approach{East: West},
		},
		{
			name:     "all empty",
			expected: [3]Outcome{OutcomeIdle, OutcomeIdle, OutcomeIdle},
		},
		{
			name:     "south left yields to east straight",
			east:     []TurnIntent{Straight},
			south:    []TurnIntent{TurnLeft},
			expected: [3]Outcome{OutcomeIdle, OutcomeRelease, OutcomeDefer},
			exits:    map[Approach]Approach{East: West},
			blocked:  map[Approach]Approach{South: East},
		},
		{
			name:     "unconditional movements ignore occupancy",
			west:     []TurnIntent{TurnRight},
			east:     []TurnIntent{Straight},
			south:    []TurnIntent{TurnRight},
			expected: [3]Outcome{OutcomeRelease, OutcomeRelease, OutcomeRelease},
			exits:    map[Approach]Approach{West: South, East: West, South: East},
		},
		{
			name:     "mutual yield holds everyone",
			west:     []TurnIntent{Straight},
			east:     []TurnIntent{TurnLeft},
			south:    []TurnIntent{TurnLeft},
			expected: [3]Outcome{OutcomeDefer, OutcomeDefer, OutcomeDefer},
			blocked:  map[Approach]Approach{West: South, East: West, South: East},
		},
		{
			name:     "only the oldest vehicle is a candidate",
			west:     []TurnIntent{Straight, TurnRight},
			south:    []TurnIntent{TurnRight},
			expected: [3]Outcome{OutcomeDefer, OutcomeIdle, OutcomeRelease},
			exits:    map[Approach]Approach{South: East},
			blocked:  map[Approach]Approach{West: South},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snap := snapshotOf(tc.west, tc.east, tc.south)
			for _, a := range Approaches {
				d := Decide(a, snap)
				if d.Approach != a {
					t.Errorf("Decision for %s carries approach %s", a, d.Approach)
				}
				if d.Outcome != tc.expected[a] {
					t.Errorf("%s: expected %s, got %s", a, tc.expected[a], d.Outcome)
				}
				if d.Err != nil {
					t.Errorf("%s: unexpected error %v", a, d.Err)
				}
				if exit, ok := tc.exits[a]; ok && d.Exit != exit {
					t.Errorf("%s: expected exit %s, got %s", a, exit, d.Exit)
				}
				if blocker, ok := tc.blocked[a]; ok && d.BlockedBy != blocker {
					t.Errorf("%s: expected blocked by %s, got %s", a, blocker, d.BlockedBy)
				}
			}
		})
	}
}

func TestDecide_Deterministic(t *testing.T) {
	snap := snapshotOf([]TurnIntent{Straight}, []TurnIntent{TurnLeft}, []TurnIntent{TurnRight})

	first := make([]Decision, 0)
	for _, a := range Approaches {
		first = append(first, Decide(a, snap))
	}

	for run := 0; run < 10; run++ {
		for i, a := range Approaches {
			d := Decide(a, snap)
			if d.Outcome != first[i].Outcome || d.Exit != first[i].Exit ||
				d.BlockedBy != first[i].BlockedBy || d.Vehicle.ID() != first[i].Vehicle.ID() {
				t.Fatalf("Decide is not deterministic for %s", a)
			}
		}
	}
}

func TestDecide_DoesNotTouchQueues(t *testing.T) {
	west, east, south := NewQueue(West), NewQueue(East), NewQueue(South)
	west.Enqueue(NewVehicle(Straight))
	south.Enqueue(NewVehicle(TurnLeft))

	snap := TakeSnapshot(west, east, south)
	for _, a := range Approaches {
		_ = Decide(a, snap)
	}

	if west.Len() != 1 || south.Len() != 1 {
		t.Error("Decide must not remove vehicles")
	}
}

func TestDecide_UnroutableCandidate(t *testing.T) {
	west := NewQueue(West)
	west.Enqueue(NewVehicle(TurnLeft))

	d := Decide(West, TakeSnapshot(west, NewQueue(East), NewQueue(South)))
	if d.Outcome != OutcomeDefer {
		t.Errorf("Expected unroutable candidate to be held, got %s", d.Outcome)
	}
	if !errors.Is(d.Err, ErrNoMovement) {
		t.Errorf("Expected ErrNoMovement, got %v", d.Err)
	}
	if d.Released() {
		t.Error("Unroutable candidate must not count as released")
	}
}
