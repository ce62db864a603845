package sim

import (
	"fmt"
	"io"
	"strings"

	"github.com/anggasct/tjunction"
	"github.com/anggasct/tjunction/pkg/host"
	"github.com/anggasct/tjunction/pkg/observers"
)

// Report is the outcome of one scenario run
type Report struct {
	Scenario   string              `json:"scenario"`
	Junction   string              `json:"junction"`
	Steps      []StepReport        `json:"steps"`
	Released   int                 `json:"released"`
	Exits      map[string][]string `json:"exits"`
	Waiting    map[string][]string `json:"waiting"`
	Violations []string            `json:"violations,omitempty"`
}

// StepReport covers one arrival batch and the cycles it triggered
type StepReport struct {
	Index    int           `json:"index"`
	Rejected []Rejection   `json:"rejected,omitempty"`
	Cycles   []CycleReport `json:"cycles"`
}

// Rejection is an arrival the junction refused
type Rejection struct {
	VehicleID string `json:"vehicle_id,omitempty"`
	Error     string `json:"error"`
}

// CycleReport lists the decisions of one cycle
type CycleReport struct {
	Cycle     uint64           `json:"cycle"`
	Decisions []DecisionReport `json:"decisions"`
}

// DecisionReport is the serialized form of a non-idle decision
type DecisionReport struct {
	Approach  string `json:"approach"`
	VehicleID string `json:"vehicle_id"`
	Intent    string `json:"intent"`
	Outcome   string `json:"outcome"`
	Exit      string `json:"exit,omitempty"`
	BlockedBy string `json:"blocked_by,omitempty"`
	Error     string `json:"error,omitempty"`
}

func newReport(scenario, junction string) *Report {
	return &Report{
		Scenario: scenario,
		Junction: junction,
		Steps:    make([]StepReport, 0),
		Exits:    make(map[string][]string),
		Waiting:  make(map[string][]string),
	}
}

func newCycleReport(result *tjunction.CycleResult) CycleReport {
	cr := CycleReport{
		Cycle:     result.Cycle,
		Decisions: make([]DecisionReport, 0, len(result.Decisions)),
	}
	for _, d := range result.Decisions {
		if d.Outcome == tjunction.OutcomeIdle {
			continue
		}
		dr := DecisionReport{
			Approach:  d.Approach.String(),
			VehicleID: d.Vehicle.ID(),
			Intent:    d.Vehicle.Intent().String(),
			Outcome:   d.Outcome.String(),
		}
		switch {
		case d.Err != nil:
			dr.Error = d.Err.Error()
		case d.Outcome == tjunction.OutcomeRelease:
			dr.Exit = d.Exit.String()
		default:
			dr.BlockedBy = d.BlockedBy.String()
		}
		cr.Decisions = append(cr.Decisions, dr)
	}
	return cr
}

func (r *Report) finish(j *tjunction.Junction, h *host.Local, validation *observers.ValidationObserver) {
	for _, a := range tjunction.Approaches {
		exited := h.Sent(a.ExitPort())
		ids := make([]string, 0, len(exited))
		for _, v := range exited {
			ids = append(ids, v.ID())
		}
		r.Exits[a.String()] = ids
		r.Released += len(ids)

		waiting := j.Waiting(a)
		ids = make([]string, 0, len(waiting))
		for _, v := range waiting {
			ids = append(ids, v.ID())
		}
		r.Waiting[a.String()] = ids
	}
	r.Violations = validation.GetViolations()
}

// WaitingCount returns how many vehicles were still queued at the end
func (r *Report) WaitingCount() int {
	n := 0
	for _, ids := range r.Waiting {
		n += len(ids)
	}
	return n
}

// Cycles returns every cycle in the report, in run order
func (r *Report) Cycles() []CycleReport {
	result := make([]CycleReport, 0)
	for _, step := range r.Steps {
		result = append(result, step.Cycles...)
	}
	return result
}

// WriteText renders the report for a terminal
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario %s on junction %s\n", r.Scenario, r.Junction)
	for _, step := range r.Steps {
		fmt.Fprintf(&b, "step %d\n", step.Index+1)
		for _, rej := range step.Rejected {
			fmt.Fprintf(&b, "  rejected %s: %s\n", rej.VehicleID, rej.Error)
		}
		for _, cycle := range step.Cycles {
			if len(cycle.Decisions) == 0 {
				fmt.Fprintf(&b, "  cycle %d: idle\n", cycle.Cycle)
				continue
			}
			fmt.Fprintf(&b, "  cycle %d:\n", cycle.Cycle)
			for _, d := range cycle.Decisions {
				switch {
				case d.Error != "":
					fmt.Fprintf(&b, "    %-5s %-10s %s failed: %s\n", d.Approach, d.Intent, d.VehicleID, d.Error)
				case d.Exit != "":
					fmt.Fprintf(&b, "    %-5s %-10s %s -> %s\n", d.Approach, d.Intent, d.VehicleID, d.Exit)
				default:
					fmt.Fprintf(&b, "    %-5s %-10s %s waits for %s\n", d.Approach, d.Intent, d.VehicleID, d.BlockedBy)
				}
			}
		}
	}
	fmt.Fprintf(&b, "released %d, waiting %d\n", r.Released, r.WaitingCount())
	for _, a := range tjunction.Approaches {
		if ids := r.Waiting[a.String()]; len(ids) > 0 {
			fmt.Fprintf(&b, "  %s: %s\n", a, strings.Join(ids, ", "))
		}
	}
	for _, v := range r.Violations {
		fmt.Fprintf(&b, "violation: %s\n", v)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
