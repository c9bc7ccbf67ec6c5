package control

import "time"

// Source identifies what produced a setpoint request.
type Source string

// Setpoint sources.
const (
	SourceAI         Source = "ai"
	SourceManual     Source = "manual"
	SourceSimulation Source = "simulation"
)

// SetpointRequest is a single request to change the luminaire's state.
type SetpointRequest struct {
	// Intensity is the requested percent intensity. Clamped to 0-100.
	Intensity int `json:"intensity"`

	// ColorTempK is the requested colour temperature in Kelvin.
	// Clamped to 1800-6500.
	ColorTempK int `json:"color_temp_k"`

	// Reason is a short human-readable explanation of the request.
	Reason string `json:"reason"`

	// Source records what produced the request.
	Source Source `json:"source"`

	// OverrideMinutes, when non-zero, pins this setpoint as a manual
	// override for the given duration. Must be within 5-180 minutes.
	OverrideMinutes int `json:"override_minutes,omitempty"`

	// PayloadBytes is the size of the inference payload that produced
	// this request, recorded on the decision for audit. Zero for manual
	// requests.
	PayloadBytes int `json:"payload_bytes,omitempty"`
}

// AppliedState is the last state actually transmitted to the gear.
type AppliedState struct {
	Intensity int
	CCT       int
	Timestamp time.Time
}

// ManualOverride pins a setpoint until it expires or is deactivated.
type ManualOverride struct {
	ID        string    `json:"id"`
	Intensity int       `json:"intensity"`
	CCTKelvin int       `json:"cct_kelvin"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
}

// Expired reports whether the override has passed its expiry at the
// given instant.
func (o ManualOverride) Expired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}

// Decision is one applied control cycle, recorded append-only.
type Decision struct {
	ID              string    `json:"id"`
	DecidedAt       time.Time `json:"decided_at"`
	Intensity       int       `json:"intensity"`
	CCTKelvin       int       `json:"cct_kelvin"`
	Reason          string    `json:"reason"`
	Source          Source    `json:"source"`
	PayloadBytes    int       `json:"payload_bytes"`
	OverrideApplied bool      `json:"override_applied"`

	// EnergySaving estimates the fraction of full power saved by this
	// decision: (100 - intensity) / 100.
	EnergySaving float64 `json:"energy_saving"`
}
