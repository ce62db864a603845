package tjunction

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrors_ErrorCode(t *testing.T) {
	testCases := []ErrorCode{
		ErrCodeNone,
		ErrCodeEmptyQueue,
		ErrCodeUnknownIntent,
		ErrCodeNoMovement,
		ErrCodeInvalidApproach,
		ErrCodeSendFailed,
		ErrCodeReleaseMismatch,
		ErrCodeRegistrationFailed,
		ErrCodeInvalidConfiguration,
		ErrCodeDuplicateVehicle,
	}

	for i, code := range testCases {
		if int(code) != i {
			t.Errorf("Expected error code %d to have value %d", i, int(code))
		}
	}
}

func TestQueueError_Creation(t *testing.T) {
	err := NewEmptyQueueError(East)

	if err.Code != ErrCodeEmptyQueue {
		t.Errorf("Expected error code %v, got %v", ErrCodeEmptyQueue, err.Code)
	}

	if err.Approach != East {
		t.Errorf("Expected approach EAST, got %s", err.Approach)
	}

	if !strings.Contains(err.Error(), "EAST") {
		t.Error("Expected error string to contain the approach")
	}

	if !errors.Is(err, ErrEmptyQueue) {
		t.Error("Expected empty queue error to match ErrEmptyQueue")
	}
}

func TestQueueError_Variants(t *testing.T) {
	mismatch := NewReleaseMismatchError(West, "a", "b")
	if !errors.Is(mismatch, ErrReleaseMismatch) {
		t.Error("Expected mismatch to match ErrReleaseMismatch")
	}
	if !strings.Contains(mismatch.Error(), "'a'") || !strings.Contains(mismatch.Error(), "'b'") {
		t.Errorf("Expected both IDs in message: %s", mismatch.Error())
	}

	dup := NewDuplicateVehicleError(South, "car-9", West)
	if !errors.Is(dup, ErrDuplicateVehicle) {
		t.Error("Expected duplicate to match ErrDuplicateVehicle")
	}
	if !strings.Contains(dup.Error(), "already waiting on WEST") {
		t.Errorf("Unexpected duplicate message: %s", dup.Error())
	}
	if dup.VehicleID != "car-9" {
		t.Errorf("Expected VehicleID car-9, got %q", dup.VehicleID)
	}

	unknown := &QueueError{Code: ErrCodeNone, Approach: West, Message: "x"}
	if unknown.Unwrap() != nil {
		t.Error("Expected no sentinel for an uncoded queue error")
	}
}

func TestIntentError(t *testing.T) {
	noMove := NewNoMovementError(South, Straight)
	if !errors.Is(noMove, ErrNoMovement) || errors.Is(noMove, ErrUnknownIntent) {
		t.Error("No movement error should only match ErrNoMovement")
	}
	if !strings.Contains(noMove.Error(), "STRAIGHT has no exit") {
		t.Errorf("Unexpected message: %s", noMove.Error())
	}

	unknown := NewUnknownIntentError(TurnIntent(3))
	if !errors.Is(unknown, ErrUnknownIntent) {
		t.Error("Expected ErrUnknownIntent")
	}
	if unknown.Error() != "intent error: unknown turn intent 3" {
		t.Errorf("Unexpected message: %s", unknown.Error())
	}

	unknown.Approach = "WEST"
	if !strings.Contains(unknown.Error(), "[WEST]") {
		t.Errorf("Expected approach tag: %s", unknown.Error())
	}
}

func TestSendError(t *testing.T) {
	cause := errors.New("link down")
	err := NewSendError(PortExitEast, "car-1", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected send error to unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "OEAST") || !strings.Contains(err.Error(), "car-1") {
		t.Errorf("Unexpected message: %s", err.Error())
	}

	bare := NewSendError(PortWaitWest, "car-2", nil)
	if strings.Contains(bare.Error(), "<nil>") {
		t.Errorf("Unexpected message: %s", bare.Error())
	}
}

func TestHostAndConfigurationErrors(t *testing.T) {
	cause := errors.New("busy")
	hostErr := NewRegistrationError(PortCarSouth, cause)
	if !errors.Is(hostErr, cause) {
		t.Error("Expected host error to unwrap")
	}
	if !strings.Contains(hostErr.Error(), "handler registration") {
		t.Errorf("Unexpected message: %s", hostErr.Error())
	}

	cfgErr := NewConfigurationError("JunctionBuilder", "no host configured")
	if cfgErr.Error() != "configuration error in JunctionBuilder: no host configured" {
		t.Errorf("Unexpected message: %s", cfgErr.Error())
	}

	approachErr := NewInvalidApproachError(Approach(4))
	if !errors.Is(approachErr, ErrInvalidApproach) {
		t.Error("Expected ErrInvalidApproach")
	}
}

func TestErrorHelpers(t *testing.T) {
	testCases := []struct {
		err   error
		check func(error) bool
		code  ErrorCode
	}{
		{NewEmptyQueueError(West), IsQueueError, ErrCodeEmptyQueue},
		{NewDuplicateVehicleError(West, "x", East), IsQueueError, ErrCodeDuplicateVehicle},
		{NewNoMovementError(West, TurnLeft), IsIntentError, ErrCodeNoMovement},
		{NewUnknownIntentError(7), IsIntentError, ErrCodeUnknownIntent},
		{NewSendError(PortExitWest, "x", nil), IsSendError, ErrCodeSendFailed},
		{NewRegistrationError(PortCarWest, nil), IsHostError, ErrCodeRegistrationFailed},
		{NewConfigurationError("x", "y"), IsConfigurationError, ErrCodeInvalidConfiguration},
		{NewInvalidApproachError(9), func(err error) bool { return errors.Is(err, ErrInvalidApproach) }, ErrCodeInvalidApproach},
	}

	for _, tc := range testCases {
		wrapped := fmt.Errorf("cycle 3: %w", tc.err)
		if !tc.check(wrapped) {
			t.Errorf("Expected predicate to match wrapped %T", tc.err)
		}
		if GetErrorCode(wrapped) != tc.code {
			t.Errorf("Expected code %v for %T, got %v", tc.code, tc.err, GetErrorCode(wrapped))
		}
	}

	if GetErrorCode(errors.New("other")) != ErrCodeNone {
		t.Error("Expected ErrCodeNone for unknown errors")
	}
	if IsQueueError(errors.New("other")) {
		t.Error("Plain error should not be a queue error")
	}
}
