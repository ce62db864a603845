package tjunction

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TurnIntent is the movement a vehicle declares before entering the junction
type TurnIntent int

const (
	// TurnLeft crosses the oncoming lane
	TurnLeft TurnIntent = -1
	// Straight continues along the through road
	Straight TurnIntent = 0
	// TurnRight peels off without crossing oncoming traffic
	TurnRight TurnIntent = 1
)

// String returns the intent name
func (t TurnIntent) String() string {
	switch t {
	case TurnLeft:
		return "TURN_LEFT"
	case Straight:
		return "STRAIGHT"
	case TurnRight:
		return "TURN_RIGHT"
	default:
		return fmt.Sprintf("TurnIntent(%d)", int(t))
	}
}

// Valid reports whether t is one of the three known intents
func (t TurnIntent) Valid() bool {
	return t == TurnLeft || t == Straight || t == TurnRight
}

// MarshalText implements encoding.TextMarshaler
func (t TurnIntent) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, NewUnknownIntentError(t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *TurnIntent) UnmarshalText(text []byte) error {
	parsed, err := ParseTurnIntent(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTurnIntent accepts intent names ("STRAIGHT", "turn_left", "right", ...)
// as well as the numeric indicator encoding used by the car records (0, 1, -1).
func ParseTurnIntent(s string) (TurnIntent, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	switch normalized {
	case "STRAIGHT":
		return Straight, nil
	case "TURN_RIGHT", "RIGHT":
		return TurnRight, nil
	case "TURN_LEFT", "LEFT":
		return TurnLeft, nil
	}

	if n, err := strconv.Atoi(normalized); err == nil {
		intent := TurnIntent(n)
		if !intent.Valid() {
			return 0, NewUnknownIntentError(intent)
		}
		return intent, nil
	}
	return 0, fmt.Errorf("unknown turn intent %q", s)
}

// Vehicle is an immutable arrival record. The arbiter only looks at the
// turn intent; the ID and attributes travel with the vehicle to its exit.
type Vehicle struct {
	id         string
	intent     TurnIntent
	arrivedAt  time.Time
	attributes map[string]any
}

// NewVehicle creates a vehicle with a generated ID
func NewVehicle(intent TurnIntent) Vehicle {
	return Vehicle{
		id:        uuid.New().String(),
		intent:    intent,
		arrivedAt: time.Now(),
	}
}

// NewVehicleWithAttributes creates a vehicle carrying a copy of attrs
func NewVehicleWithAttributes(intent TurnIntent, attrs map[string]any) Vehicle {
	v := NewVehicle(intent)
	v.attributes = copyAttributes(attrs)
	return v
}

// NewVehicleWithID creates a vehicle with a caller-chosen ID. An empty id
// falls back to a generated one.
func NewVehicleWithID(id string, intent TurnIntent, attrs map[string]any) Vehicle {
	v := NewVehicleWithAttributes(intent, attrs)
	if id != "" {
		v.id = id
	}
	return v
}

// ID returns the vehicle identifier
func (v Vehicle) ID() string {
	return v.id
}

// Intent returns the declared turn intent
func (v Vehicle) Intent() TurnIntent {
	return v.intent
}

// ArrivedAt returns the time the vehicle record was created
func (v Vehicle) ArrivedAt() time.Time {
	return v.arrivedAt
}

// Attribute returns a single attribute value
func (v Vehicle) Attribute(key string) (any, bool) {
	value, ok := v.attributes[key]
	return value, ok
}

// Attributes returns a copy of the vehicle attributes
func (v Vehicle) Attributes() map[string]any {
	return copyAttributes(v.attributes)
}

// IsZero reports whether v is the zero Vehicle
func (v Vehicle) IsZero() bool {
	return v.id == ""
}

// String returns a short human readable form
func (v Vehicle) String() string {
	return fmt.Sprintf("%s(%s)", v.id, v.intent)
}

func copyAttributes(attrs map[string]any) map[string]any {
	result := make(map[string]any, len(attrs))
	for k, val := range attrs {
		result[k] = val
	}
	return result
}
