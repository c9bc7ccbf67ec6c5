package actuator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/lumenlogic/lumen-core/internal/dali"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/logging"
)

// Default anti-flicker contract for the simulated gear. These mirror the
// conservative limits of real DT8 drivers and keep bench runs reproducible.
const (
	defaultSimRatePerSecond     = 20.0
	defaultSimMinUpdateInterval = 5.0

	// simCCTBudgetFactor widens the slew budget for the CCT channel, which
	// spans a far larger numeric range than intensity.
	simCCTBudgetFactor = 20
)

// SimulatedConfig tunes the simulated gear's internal behaviour.
type SimulatedConfig struct {
	// Seed initialises the sensor noise generator. The same seed always
	// produces the same observation sequence.
	Seed int64

	// RatePerSecond is the gear's own slew limit in intensity units.
	RatePerSecond float64

	// MinUpdateInterval is the gear's own debounce window, in seconds.
	MinUpdateInterval float64
}

// Simulated is an in-memory luminaire with its own internal clock.
//
// It enforces its own anti-flicker contract independently of the control
// service, the way real DT8 drivers do, and synthesises deterministic
// sensor readings from a seeded generator. The internal clock advances one
// second per call rather than tracking wall time, so tests and bench runs
// are exactly reproducible.
type Simulated struct {
	log *logging.Logger
	cfg SimulatedConfig

	mu             sync.Mutex
	rng            *rand.Rand
	clock          float64
	lastUpdateTick float64
	intensity      int
	cct            int
	history        int
}

// NewSimulated creates a simulated luminaire with deterministic behaviour.
func NewSimulated(cfg SimulatedConfig, log *logging.Logger) *Simulated {
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = defaultSimRatePerSecond
	}
	if cfg.MinUpdateInterval <= 0 {
		cfg.MinUpdateInterval = defaultSimMinUpdateInterval
	}
	return &Simulated{
		log:            log,
		cfg:            cfg,
		rng:            rand.New(rand.NewSource(cfg.Seed)),
		lastUpdateTick: -cfg.MinUpdateInterval,
		intensity:      0,
		cct:            4000,
	}
}

// SupportsCCT always returns true for the simulated gear.
func (a *Simulated) SupportsCCT() bool { return true }

// tick advances the internal clock by one second.
func (a *Simulated) tick() float64 {
	a.clock = math.Round((a.clock+1.0)*1000) / 1000
	return a.clock
}

// limitDelta moves current toward target by at most limit units.
func limitDelta(current, target int, limit float64) int {
	delta := target - current
	if math.Abs(float64(delta)) <= limit {
		return target
	}
	if delta > 0 {
		return current + int(limit)
	}
	return current - int(limit)
}

// SendSetpoint applies a setpoint against the gear's internal anti-flicker
// contract. Requests inside the debounce window are dropped; otherwise the
// state moves toward the target within the per-second budget.
func (a *Simulated) SendSetpoint(_ context.Context, intensity, cct int) error {
	intensity = dali.ClampIntensity(intensity)
	cct = dali.ClampCCT(cct)

	a.mu.Lock()
	defer a.mu.Unlock()

	elapsed := a.clock - a.lastUpdateTick
	applied := false
	if elapsed >= a.cfg.MinUpdateInterval {
		budget := a.cfg.RatePerSecond * math.Max(elapsed, 1.0)
		newIntensity := limitDelta(a.intensity, intensity, budget)
		newCCT := limitDelta(a.cct, cct, budget*simCCTBudgetFactor)
		applied = newIntensity != a.intensity || newCCT != a.cct
		a.intensity = newIntensity
		a.cct = newCCT
		a.lastUpdateTick = a.clock
	}

	a.tick()
	a.history++

	a.log.Debug("simulated setpoint applied",
		"intensity", a.intensity,
		"cct", a.cct,
		"applied", applied,
		"clock", a.clock)
	return nil
}

// ReadSensor synthesises a deterministic pseudo-random observation.
//
// Ambient lux falls as the luminaire's own output rises (the sensor head
// points away from the window), and presence becomes more likely at higher
// intensities since the light is on because someone asked for it.
func (a *Simulated) ReadSensor() (SensorReading, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.tick()
	baseline := 600 - a.intensity*3
	if baseline < 80 {
		baseline = 80
	}
	lux := baseline + a.rng.Intn(41) - 20
	if lux < 10 {
		lux = 10
	}
	threshold := math.Min(0.3+float64(a.intensity)/250.0, 0.9)
	presence := a.rng.Float64() < threshold

	return SensorReading{
		Lux:       lux,
		Presence:  presence,
		Timestamp: time.Now(),
	}, nil
}

// Diagnostics reports the simulated gear's internal state.
func (a *Simulated) Diagnostics() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return map[string]string{
		"status":    "simulated",
		"mode":      "simulated",
		"intensity": strconv.Itoa(a.intensity),
		"cct":       strconv.Itoa(a.cct),
		"clock":     fmt.Sprintf("%.3f", a.clock),
	}
}

// State returns the gear's current intensity and CCT. Used by tests and
// the diagnostics publisher.
func (a *Simulated) State() (intensity, cct int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.intensity, a.cct
}
