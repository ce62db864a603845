package tjunction

import (
	"fmt"
	"strings"
)

// Approach identifies one of the three roads meeting at the junction.
// The same values name the exits, since every exit leads onto one of them.
type Approach int

const (
	// West is one end of the through road
	West Approach = iota
	// East is the other end of the through road
	East
	// South is the stub road
	South
)

// Approaches lists every approach in per-cycle evaluation order
var Approaches = [...]Approach{West, East, South}

// Port names a channel exposed by the reactive host
type Port string

// Input ports on which the host delivers arriving vehicles
const (
	PortCarWest  Port = "carWEST"
	PortCarEast  Port = "carEAST"
	PortCarSouth Port = "carSOUTH"
)

// Exit ports to which released vehicles are sent
const (
	PortExitWest  Port = "OWEST"
	PortExitEast  Port = "OEAST"
	PortExitSouth Port = "OSOUTH"
)

// Wait ports receive deferred candidates when wait notices are enabled
const (
	PortWaitWest  Port = "waitW"
	PortWaitEast  Port = "waitE"
	PortWaitSouth Port = "waitS"
)

// String returns the upper-case road name
func (a Approach) String() string {
	switch a {
	case West:
		return "WEST"
	case East:
		return "EAST"
	case South:
		return "SOUTH"
	default:
		return fmt.Sprintf("Approach(%d)", int(a))
	}
}

// Valid reports whether a is one of the three junction roads
func (a Approach) Valid() bool {
	return a >= West && a <= South
}

// InputPort returns the host port that delivers vehicles arriving on a
func (a Approach) InputPort() Port {
	return [...]Port{PortCarWest, PortCarEast, PortCarSouth}[a]
}

// ExitPort returns the host port that leads out of the junction onto a
func (a Approach) ExitPort() Port {
	return [...]Port{PortExitWest, PortExitEast, PortExitSouth}[a]
}

// WaitPort returns the host port that receives wait notices for a
func (a Approach) WaitPort() Port {
	return [...]Port{PortWaitWest, PortWaitEast, PortWaitSouth}[a]
}

// MarshalText implements encoding.TextMarshaler
func (a Approach) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid approach %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Approach) UnmarshalText(text []byte) error {
	parsed, err := ParseApproach(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseApproach converts a road name (case-insensitive) or input port name into an Approach
func ParseApproach(s string) (Approach, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WEST", "W", "CARWEST":
		return West, nil
	case "EAST", "E", "CAREAST":
		return East, nil
	case "SOUTH", "S", "CARSOUTH":
		return South, nil
	}
	return 0, fmt.Errorf("unknown approach %q", s)
}

// ApproachForInput maps an input port back to its approach
func ApproachForInput(port Port) (Approach, bool) {
	for _, a := range Approaches {
		if a.InputPort() == port {
			return a, true
		}
	}
	return 0, false
}
