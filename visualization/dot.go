package visualization

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/tjunction"
)

// DOTGenerator renders a junction's rule table as a Graphviz digraph:
// one node per approach entry, one per exit, and one edge per movement
type DOTGenerator struct {
	rules    []tjunction.Rule
	snapshot *tjunction.Snapshot
	options  DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowYields      bool
	ShowQueues      bool
	RankDirection   string // "TB", "LR", "BT", "RL"
	EntryShape      string
	ExitShape       string
	YieldEdgeStyle  string
	ReleaseColor    string
	DeferColor      string
	OccupiedColor   string
	UnoccupiedColor string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowYields:      true,
		ShowQueues:      true,
		RankDirection:   "LR",
		EntryShape:      "box",
		ExitShape:       "ellipse",
		YieldEdgeStyle:  "dashed",
		ReleaseColor:    "darkgreen",
		DeferColor:      "firebrick",
		OccupiedColor:   "khaki",
		UnoccupiedColor: "lightblue",
	}
}

// NewDOTGenerator creates a new DOT generator for rules
func NewDOTGenerator(rules []tjunction.Rule, options ...DOTOptions) *DOTGenerator {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator{
		rules:   rules,
		options: opts,
	}
}

// WithSnapshot colors the graph with the decisions snap would produce:
// occupied entries are filled and each candidate's movement is drawn in the
// release or defer color
func (g *DOTGenerator) WithSnapshot(snap tjunction.Snapshot) *DOTGenerator {
	g.snapshot = &snap
	return g
}

// Generate creates a DOT representation of the rule table
func (g *DOTGenerator) Generate() (string, error) {
	if len(g.rules) == 0 {
		return "", fmt.Errorf("no rules to render")
	}

	var dot strings.Builder

	dot.WriteString("digraph Junction {\n")
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString("  edge [fontsize=10];\n\n")

	g.generateEntries(&dot)
	g.generateExits(&dot)

	if err := g.generateMovements(&dot); err != nil {
		return "", fmt.Errorf("failed to generate movements: %w", err)
	}

	dot.WriteString("}\n")

	return dot.String(), nil
}

func entryID(a tjunction.Approach) string {
	return string(a.InputPort())
}

func exitID(a tjunction.Approach) string {
	return string(a.ExitPort())
}

// generateEntries writes one node per approach queue
func (g *DOTGenerator) generateEntries(dot *strings.Builder) {
	dot.WriteString("  // Entries\n")
	for _, a := range tjunction.Approaches {
		fill := g.options.UnoccupiedColor
		label := a.String()
		if g.snapshot != nil {
			if g.snapshot.Occupied(a) {
				fill = g.options.OccupiedColor
			}
			if g.options.ShowQueues {
				label = fmt.Sprintf("%s\\n%d waiting", a, g.snapshot.Len(a))
			}
		}
		dot.WriteString(fmt.Sprintf("  \"%s\" [shape=%s style=\"filled\" fillcolor=%s label=\"%s\"];\n",
			entryID(a), g.options.EntryShape, fill, label))
	}
	dot.WriteString("\n")
}

// generateExits writes one node per exit road
func (g *DOTGenerator) generateExits(dot *strings.Builder) {
	dot.WriteString("  // Exits\n")
	for _, a := range tjunction.Approaches {
		dot.WriteString(fmt.Sprintf("  \"%s\" [shape=%s label=\"exit %s\"];\n",
			exitID(a), g.options.ExitShape, a))
	}
	dot.WriteString("\n")
}

// generateMovements writes one edge per rule, plus dashed yield edges
func (g *DOTGenerator) generateMovements(dot *strings.Builder) error {
	dot.WriteString("  // Movements\n")

	for _, rule := range g.rules {
		if !rule.Approach.Valid() || !rule.Exit.Valid() {
			return fmt.Errorf("rule %s %s has an invalid approach or exit", rule.Approach, rule.Intent)
		}

		label := rule.Intent.String()
		if g.options.ShowYields && !rule.Unconditional() {
			yields := make([]string, 0, len(rule.YieldTo))
			for _, y := range rule.YieldTo {
				yields = append(yields, y.String())
			}
			label = fmt.Sprintf("%s\\nyield %s", label, strings.Join(yields, ","))
		}

		attrs := fmt.Sprintf("label=\"%s\"", label)
		if color, ok := g.movementColor(rule); ok {
			attrs += fmt.Sprintf(" color=%s penwidth=2", color)
		}
		dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [%s];\n",
			entryID(rule.Approach), exitID(rule.Exit), attrs))

		if g.options.ShowYields {
			for _, y := range rule.YieldTo {
				dot.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [style=%s arrowhead=tee label=\"%s yields\"];\n",
					entryID(y), entryID(rule.Approach), g.options.YieldEdgeStyle, rule.Intent))
			}
		}
	}

	return nil
}

// movementColor reports the decision color when rule is the one a
// snapshot candidate would take
func (g *DOTGenerator) movementColor(rule tjunction.Rule) (string, bool) {
	if g.snapshot == nil {
		return "", false
	}
	candidate, ok := g.snapshot.Candidate(rule.Approach)
	if !ok || candidate.Intent() != rule.Intent {
		return "", false
	}
	if tjunction.Decide(rule.Approach, *g.snapshot).Outcome == tjunction.OutcomeRelease {
		return g.options.ReleaseColor, true
	}
	return g.options.DeferColor, true
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// SVGGenerator generates SVG representations by calling Graphviz
type SVGGenerator struct {
	dotGenerator *DOTGenerator
}

// NewSVGGenerator creates a new SVG generator
func NewSVGGenerator(rules []tjunction.Rule, options ...DOTOptions) *SVGGenerator {
	return &SVGGenerator{
		dotGenerator: NewDOTGenerator(rules, options...),
	}
}

// Generate creates an SVG representation of the rule table
func (g *SVGGenerator) Generate() (string, error) {
	dotContent, err := g.dotGenerator.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}

// GenerateSVG is a convenience wrapper around SVGGenerator
func (g *DOTGenerator) GenerateSVG() (string, error) {
	svgGen := &SVGGenerator{dotGenerator: g}
	return svgGen.Generate()
}
