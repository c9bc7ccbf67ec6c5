package actuator

import "errors"

// Actuator errors.
var (
	// ErrUnknownMode indicates an unrecognised DALI mode in configuration.
	ErrUnknownMode = errors.New("actuator: unknown DALI mode")

	// ErrTransmission indicates the command could not be put on the bus.
	ErrTransmission = errors.New("actuator: bus transmission failed")

	// ErrSensorUnsupported indicates the actuator has no sensor head.
	ErrSensorUnsupported = errors.New("actuator: sensor reads not supported")
)
