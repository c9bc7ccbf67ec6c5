package inference

import "errors"

// Inference errors. Validation errors are surfaced to the caller and never
// retried; provider failures are retried and then replaced by the fallback.
var (
	// ErrNoWindows indicates an empty feature window sequence.
	ErrNoWindows = errors.New("inference: no feature windows")

	// ErrPayloadTooLarge indicates the serialized payload exceeds the
	// configured byte cap.
	ErrPayloadTooLarge = errors.New("inference: payload exceeds cap")

	// ErrTooManyWindows indicates more windows than the batch limit.
	ErrTooManyWindows = errors.New("inference: too many feature windows")

	// ErrInvalidResponse indicates the provider returned a response
	// without the required fields.
	ErrInvalidResponse = errors.New("inference: invalid provider response")

	// ErrProviderNotConfigured indicates no endpoint or key is set.
	ErrProviderNotConfigured = errors.New("inference: provider not configured")
)
