package inference

import "time"

// FeatureWindow is an opaque aggregate of sensor data over a time window,
// produced by the feature pipeline and consumed read-only here.
type FeatureWindow struct {
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// Setpoint is a validated decision engine output.
type Setpoint struct {
	// Intensity is the recommended percent intensity, clamped to 0-100.
	Intensity int `json:"intensity_0_100"`

	// ColorTempK is the recommended colour temperature, clamped to
	// 1800-6500 Kelvin.
	ColorTempK int `json:"cct_1800_6500"`

	// Reason is a short explanation, at most 256 characters.
	Reason string `json:"reason"`
}

// Result is a Setpoint together with how it was produced.
type Result struct {
	Setpoint Setpoint

	// PayloadBytes is the serialized size of the provider request.
	PayloadBytes int

	// Fallback reports whether the deterministic rules produced the
	// setpoint because every provider attempt failed.
	Fallback bool

	// Attempts is how many provider calls were made.
	Attempts int
}
