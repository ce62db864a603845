// Package sim replays recorded arrival scenarios against a junction running
// on an in-process host and reports every decision it makes.
package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/anggasct/tjunction"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var scenarioValidate *validator.Validate

func init() {
	scenarioValidate = validator.New()
	mustRegister("approach", validateApproach)
	mustRegister("intent", validateIntent)
}

func mustRegister(tag string, fn validator.Func) {
	if err := scenarioValidate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("sim: register validation %q: %v", tag, err))
	}
}

func validateApproach(fl validator.FieldLevel) bool {
	_, err := tjunction.ParseApproach(fl.Field().String())
	return err == nil
}

// intent accepts any integer so unknown intents reach the junction and are
// rejected there like any other bad arrival
func validateIntent(fl validator.FieldLevel) bool {
	_, err := tjunction.ParseTurnIntent(fl.Field().String())
	return err == nil || tjunction.IsIntentError(err)
}

// Scenario is an ordered list of arrival batches
type Scenario struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps" validate:"required,min=1,dive"`
}

// Step delivers its arrivals and then triggers one reaction. With Settle
// set, reactions continue until a cycle releases nothing.
type Step struct {
	Arrivals []ArrivalSpec `yaml:"arrivals" validate:"dive"`
	Settle   bool          `yaml:"settle,omitempty"`
}

// ArrivalSpec describes one vehicle arriving on an approach
type ArrivalSpec struct {
	Approach   string         `yaml:"approach" validate:"required,approach"`
	Intent     string         `yaml:"intent" validate:"required,intent"`
	ID         string         `yaml:"id,omitempty"`
	Attributes map[string]any `yaml:"attributes,omitempty"`
}

// Vehicle builds the approach and vehicle this arrival describes. Intents that
// parse as numbers but name no turn are passed through unvalidated.
func (a ArrivalSpec) Vehicle() (tjunction.Approach, tjunction.Vehicle, error) {
	approach, err := tjunction.ParseApproach(a.Approach)
	if err != nil {
		return approach, tjunction.Vehicle{}, err
	}
	intent, err := tjunction.ParseTurnIntent(a.Intent)
	if err != nil && !tjunction.IsIntentError(err) {
		return approach, tjunction.Vehicle{}, err
	}
	if err != nil {
		intent, err = rawIntent(a.Intent)
		if err != nil {
			return approach, tjunction.Vehicle{}, err
		}
	}
	return approach, tjunction.NewVehicleWithID(a.ID, intent, a.Attributes), nil
}

func rawIntent(s string) (tjunction.TurnIntent, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("intent '%s': %w", s, err)
	}
	return tjunction.TurnIntent(n), nil
}

// Validate checks the scenario structure
func (s *Scenario) Validate() error {
	if err := scenarioValidate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			issues := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				issues = append(issues, fmt.Sprintf("%s: invalid %s '%v'", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid scenario: %s", strings.Join(issues, "; "))
		}
		return fmt.Errorf("invalid scenario: %w", err)
	}
	return nil
}

// ParseScenario decodes and validates a YAML scenario
func ParseScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty scenario")
		}
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenario reads a scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(bytes.NewReader(data))
}
