package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in the
	// current state, e.g. a vendor accept arriving after the user cancelled.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrGuardFailed is returned when every candidate transition's guard rejects
	ErrGuardFailed = errors.New("guard condition failed")
)
