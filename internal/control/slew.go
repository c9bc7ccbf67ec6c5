package control

import (
	"time"
)

// cctBudgetFactor widens the slew budget for the CCT channel, which spans
// thousands of Kelvin against intensity's hundred percent points.
const cctBudgetFactor = 20

// SlewLimiter bounds how fast the applied state may move between control
// cycles, protecting the gear and its occupants from visible flicker.
//
// Two mechanisms apply, in order:
//
//  1. A hard debounce: any request arriving within MinUpdateInterval of
//     the previous applied state is replaced by that state outright.
//  2. A per-second delta budget: outside the debounce window, each channel
//     may move at most RatePerSecond units per elapsed second (CCT gets a
//     20x budget). Elapsed time is floored at one second so a long idle
//     gap cannot be cashed in for an instant jump of less than a second's
//     worth, and an over-budget request is stepped toward the target
//     rather than rejected.
type SlewLimiter struct {
	// RatePerSecond is the intensity delta budget per elapsed second.
	RatePerSecond float64

	// MinUpdateInterval is the debounce window.
	MinUpdateInterval time.Duration
}

// Limit applies the anti-flicker contract to a clamped request.
//
// prev is the last applied state, or nil when nothing has been applied
// yet; a nil prev passes the request through unmodified. When the gear
// has no CCT channel the colour temperature is pinned to the previous
// value regardless of budget.
func (l SlewLimiter) Limit(intensity, cct int, prev *AppliedState, now time.Time, supportsCCT bool) (int, int) {
	if prev == nil {
		return intensity, cct
	}

	elapsed := now.Sub(prev.Timestamp)
	if elapsed < l.MinUpdateInterval {
		return prev.Intensity, prev.CCT
	}

	seconds := elapsed.Seconds()
	if seconds < 1 {
		seconds = 1
	}
	budget := l.RatePerSecond * seconds

	intensity = stepToward(prev.Intensity, intensity, budget)
	if !supportsCCT {
		cct = prev.CCT
	} else {
		cct = stepToward(prev.CCT, cct, budget*cctBudgetFactor)
	}
	return intensity, cct
}

// stepToward moves current toward target by at most limit units.
// The step is truncated to whole units.
func stepToward(current, target int, limit float64) int {
	delta := target - current
	if float64(delta) > limit {
		return current + int(limit)
	}
	if float64(-delta) > limit {
		return current - int(limit)
	}
	return target
}
