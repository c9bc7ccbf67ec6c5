package control

import "errors"

// Control errors.
var (
	// ErrInvalidOverrideDuration indicates an override duration outside
	// the permitted 5-180 minute range.
	ErrInvalidOverrideDuration = errors.New("control: override duration out of range")

	// ErrActuation indicates the setpoint could not be transmitted.
	// No decision is recorded when actuation fails.
	ErrActuation = errors.New("control: actuation failed")

	// ErrNoDecisions indicates the decision log is empty.
	ErrNoDecisions = errors.New("control: no decisions recorded")

	// ErrOverrideNotFound indicates no active override exists.
	ErrOverrideNotFound = errors.New("control: no active override")
)
