package actuator

import (
	"context"
	"fmt"
	"time"

	"github.com/lumenlogic/lumen-core/internal/infrastructure/config"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/logging"
)

// SensorReading is an ambient observation taken at the luminaire.
type SensorReading struct {
	// Lux is the measured ambient illuminance.
	Lux int `json:"lux"`

	// Presence reports whether occupancy was detected.
	Presence bool `json:"presence"`

	// Timestamp is when the reading was taken.
	Timestamp time.Time `json:"timestamp"`
}

// Actuator drives a DALI luminaire. Implementations must be safe for
// concurrent use; the control service serialises setpoints but diagnostics
// may be read from other goroutines.
type Actuator interface {
	// SupportsCCT reports whether the gear has a colour temperature channel.
	SupportsCCT() bool

	// SendSetpoint transmits an intensity/CCT setpoint to the bus.
	// Implementations without a CCT channel ignore cct.
	SendSetpoint(ctx context.Context, intensity, cct int) error

	// Diagnostics returns the actuator's current status as string pairs,
	// suitable for publishing on the diagnostics topic.
	Diagnostics() map[string]string

	// ReadSensor returns an ambient reading from the luminaire's sensor
	// head, or ErrSensorUnsupported when no sensor is fitted.
	ReadSensor() (SensorReading, error)
}

// New builds the actuator selected by the DALI configuration.
func New(cfg config.DALIConfig, log *logging.Logger) (Actuator, error) {
	switch cfg.Mode {
	case config.DALIModeTunableWhite:
		return NewTunableWhite(log), nil
	case config.DALIModeBasic:
		return NewBasic(log), nil
	case config.DALIModeSimulated:
		return NewSimulated(SimulatedConfig{
			Seed:              cfg.SimulationSeed,
			RatePerSecond:     defaultSimRatePerSecond,
			MinUpdateInterval: defaultSimMinUpdateInterval,
		}, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
}
