package tjunction

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the junction
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Release was attempted on an empty approach queue
	ErrCodeEmptyQueue
	// Vehicle carries an intent outside STRAIGHT, TURN_RIGHT, TURN_LEFT
	ErrCodeUnknownIntent
	// Intent is known but has no exit from the approach
	ErrCodeNoMovement
	// Approach value is not WEST, EAST or SOUTH
	ErrCodeInvalidApproach
	// Host rejected a send to an exit or wait port
	ErrCodeSendFailed
	// Released vehicle was not the candidate that was decided on
	ErrCodeReleaseMismatch
	// Host rejected an arrival handler registration
	ErrCodeRegistrationFailed
	// Junction configuration is invalid
	ErrCodeInvalidConfiguration
	// Vehicle ID is already waiting somewhere in the junction
	ErrCodeDuplicateVehicle
)

// Sentinel errors for use with errors.Is
var (
	ErrEmptyQueue       = errors.New("approach queue is empty")
	ErrUnknownIntent    = errors.New("unknown turn intent")
	ErrNoMovement       = errors.New("no movement for intent from approach")
	ErrInvalidApproach  = errors.New("invalid approach")
	ErrReleaseMismatch  = errors.New("released vehicle is not the decided candidate")
	ErrDuplicateVehicle = errors.New("vehicle is already waiting")
)

// QueueError represents approach queue misuse
type QueueError struct {
	Code      ErrorCode
	Approach  Approach
	VehicleID string
	Message   string
}

func (e *QueueError) Error() string {
	return fmt.Sprintf("queue error [%s]: %s", e.Approach, e.Message)
}

func (e *QueueError) Unwrap() error {
	switch e.Code {
	case ErrCodeEmptyQueue:
		return ErrEmptyQueue
	case ErrCodeReleaseMismatch:
		return ErrReleaseMismatch
	case ErrCodeDuplicateVehicle:
		return ErrDuplicateVehicle
	default:
		return nil
	}
}

// NewEmptyQueueError creates an error for a release from an empty queue
func NewEmptyQueueError(approach Approach) *QueueError {
	return &QueueError{
		Code:     ErrCodeEmptyQueue,
		Approach: approach,
		Message:  "release called on empty queue",
	}
}

// NewReleaseMismatchError creates an error for a release that removed a
// different vehicle than the one the rule table decided on
func NewReleaseMismatchError(approach Approach, expectedID, actualID string) *QueueError {
	return &QueueError{
		Code:     ErrCodeReleaseMismatch,
		Approach: approach,
		Message:  fmt.Sprintf("expected to release '%s', removed '%s'", expectedID, actualID),
	}
}

// NewDuplicateVehicleError creates an error for a vehicle ID delivered while
// the same ID is still waiting on waitingOn
func NewDuplicateVehicleError(approach Approach, vehicleID string, waitingOn Approach) *QueueError {
	return &QueueError{
		Code:      ErrCodeDuplicateVehicle,
		Approach:  approach,
		VehicleID: vehicleID,
		Message:   fmt.Sprintf("vehicle '%s' is already waiting on %s", vehicleID, waitingOn),
	}
}

// IntentError represents a vehicle whose intent cannot be arbitrated
type IntentError struct {
	Code      ErrorCode
	Approach  string
	Intent    TurnIntent
	VehicleID string
}

func (e *IntentError) Error() string {
	switch e.Code {
	case ErrCodeNoMovement:
		return fmt.Sprintf("intent error [%s]: %s has no exit from this approach", e.Approach, e.Intent)
	default:
		if e.Approach != "" {
			return fmt.Sprintf("intent error [%s]: unknown turn intent %d", e.Approach, int(e.Intent))
		}
		return fmt.Sprintf("intent error: unknown turn intent %d", int(e.Intent))
	}
}

func (e *IntentError) Unwrap() error {
	if e.Code == ErrCodeNoMovement {
		return ErrNoMovement
	}
	return ErrUnknownIntent
}

// NewUnknownIntentError creates an error for an intent outside the known set
func NewUnknownIntentError(intent TurnIntent) *IntentError {
	return &IntentError{
		Code:   ErrCodeUnknownIntent,
		Intent: intent,
	}
}

// NewNoMovementError creates an error for an intent that leads nowhere from approach
func NewNoMovementError(approach Approach, intent TurnIntent) *IntentError {
	return &IntentError{
		Code:     ErrCodeNoMovement,
		Approach: approach.String(),
		Intent:   intent,
	}
}

// ApproachError represents an approach value outside the junction
type ApproachError struct {
	Approach Approach
}

func (e *ApproachError) Error() string {
	return fmt.Sprintf("approach error: %d is not a junction approach", int(e.Approach))
}

func (e *ApproachError) Unwrap() error {
	return ErrInvalidApproach
}

// NewInvalidApproachError creates an error for an unknown approach
func NewInvalidApproachError(approach Approach) *ApproachError {
	return &ApproachError{Approach: approach}
}

// SendError represents a failed send through the host
type SendError struct {
	Port        Port
	VehicleID   string
	OriginalErr error
}

func (e *SendError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("send of '%s' to '%s' failed: %v", e.VehicleID, e.Port, e.OriginalErr)
	}
	return fmt.Sprintf("send of '%s' to '%s' failed", e.VehicleID, e.Port)
}

func (e *SendError) Unwrap() error {
	return e.OriginalErr
}

// NewSendError creates a new send error
func NewSendError(port Port, vehicleID string, err error) *SendError {
	return &SendError{
		Port:        port,
		VehicleID:   vehicleID,
		OriginalErr: err,
	}
}

// HostError represents a failure while wiring the junction into its host
type HostError struct {
	Port        Port
	Operation   string
	OriginalErr error
}

func (e *HostError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("host error during %s on '%s': %v", e.Operation, e.Port, e.OriginalErr)
	}
	return fmt.Sprintf("host error during %s on '%s'", e.Operation, e.Port)
}

func (e *HostError) Unwrap() error {
	return e.OriginalErr
}

// NewRegistrationError creates an error for a rejected handler registration
func NewRegistrationError(port Port, err error) *HostError {
	return &HostError{
		Port:        port,
		Operation:   "handler registration",
		OriginalErr: err,
	}
}

// ConfigurationError represents junction configuration issues
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// IsQueueError checks if an error is a QueueError
func IsQueueError(err error) bool {
	var target *QueueError
	return errors.As(err, &target)
}

// IsIntentError checks if an error is an IntentError
func IsIntentError(err error) bool {
	var target *IntentError
	return errors.As(err, &target)
}

// IsSendError checks if an error is a SendError
func IsSendError(err error) bool {
	var target *SendError
	return errors.As(err, &target)
}

// IsHostError checks if an error is a HostError
func IsHostError(err error) bool {
	var target *HostError
	return errors.As(err, &target)
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		queueErr    *QueueError
		intentErr   *IntentError
		approachErr *ApproachError
		sendErr     *SendError
		hostErr     *HostError
		configErr   *ConfigurationError
	)
	switch {
	case errors.As(err, &queueErr):
		return queueErr.Code
	case errors.As(err, &intentErr):
		return intentErr.Code
	case errors.As(err, &approachErr):
		return ErrCodeInvalidApproach
	case errors.As(err, &sendErr):
		return ErrCodeSendFailed
	case errors.As(err, &hostErr):
		return ErrCodeRegistrationFailed
	case errors.As(err, &configErr):
		return ErrCodeInvalidConfiguration
	default:
		return ErrCodeNone
	}
}
