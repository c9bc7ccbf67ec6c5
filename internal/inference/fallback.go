package inference

import (
	"strings"

	"github.com/lumenlogic/lumen-core/internal/dali"
)

// fallbackReason marks setpoints produced by the rules below.
const fallbackReason = "Fallback rules applied"

// Fallback computes a setpoint from the latest feature window using fixed
// rules. It is a pure function: no randomness, no I/O, no clock. Identical
// input always yields identical output.
//
// Intensity: below-threshold occupancy dims to 10. Otherwise a base of
// 60 - ambient/10, adjusted for the accessibility category (low vision
// +10, photosensitive -15), dull weather (+10), and evening or night
// hours (-5), floored at 20.
//
// CCT: photosensitive occupants get 3200 K regardless of time; otherwise
// morning gets 5000 K, evening and night 3000 K, and everything else a
// neutral 4000 K.
func Fallback(windows []FeatureWindow) Setpoint {
	var latest map[string]any
	if len(windows) > 0 {
		latest = windows[len(windows)-1].Payload
	}

	ambient := numberOr(latest, "ambient_lux", 300)
	occupancy := numberOr(latest, "occupancy", 0)
	impairment := stringOr(latest, "impairment_enum", "none")
	weather := strings.ToLower(stringOr(latest, "weather_summary", "clear"))
	timeOfDay := stringOr(latest, "time_of_day", "day")

	var intensity int
	if occupancy < 0.5 {
		intensity = 10
	} else {
		base := 60 - int(ambient/10)
		switch impairment {
		case "low_vision":
			base += 10
		case "photosensitive":
			base -= 15
		}
		if weather == "overcast" || weather == "rain" {
			base += 10
		}
		if timeOfDay == "evening" || timeOfDay == "night" {
			base -= 5
		}
		intensity = base
		if intensity < 20 {
			intensity = 20
		}
	}

	var cct int
	switch {
	case impairment == "photosensitive":
		cct = 3200
	case timeOfDay == "morning":
		cct = 5000
	case timeOfDay == "evening" || timeOfDay == "night":
		cct = 3000
	default:
		cct = 4000
	}

	return Setpoint{
		Intensity:  dali.ClampIntensity(intensity),
		ColorTempK: dali.ClampCCT(cct),
		Reason:     fallbackReason,
	}
}

// numberOr reads a numeric payload value, accepting the types JSON
// decoding produces.
func numberOr(payload map[string]any, key string, fallback float64) float64 {
	if payload == nil {
		return fallback
	}
	switch v := payload[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

func stringOr(payload map[string]any, key string, fallback string) string {
	if payload == nil {
		return fallback
	}
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
