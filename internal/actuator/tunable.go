package actuator

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lumenlogic/lumen-core/internal/dali"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/logging"
)

// transmitDelay models the forward-frame transmission time on the bus.
const transmitDelay = 50 * time.Millisecond

// TunableWhite drives DT8 tunable-white gear over a broadcast address.
type TunableWhite struct {
	log *logging.Logger

	mu       sync.Mutex
	lastCmd  *dali.Command
	sent     int
	lastSent time.Time
}

// NewTunableWhite creates an actuator for DT8 tunable-white gear.
func NewTunableWhite(log *logging.Logger) *TunableWhite {
	return &TunableWhite{log: log}
}

// SupportsCCT always returns true for DT8 gear.
func (a *TunableWhite) SupportsCCT() bool { return true }

// SendSetpoint encodes and transmits a DT8 command. The transmission delay
// is interruptible via ctx.
func (a *TunableWhite) SendSetpoint(ctx context.Context, intensity, cct int) error {
	cmd := dali.EncodeTunableWhite(intensity, cct)

	a.log.Info("sending DT8 command",
		"address", fmt.Sprintf("0x%02X", cmd.Address),
		"intensity", cmd.Intensity,
		"cct_word", cmd.CCTWord)

	if err := waitTransmit(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	a.lastCmd = &cmd
	a.sent++
	a.lastSent = time.Now()
	a.mu.Unlock()
	return nil
}

// Diagnostics reports the last transmitted command, or idle if none.
func (a *TunableWhite) Diagnostics() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.lastCmd == nil {
		return map[string]string{"status": "idle"}
	}
	return map[string]string{
		"status":         "ok",
		"last_intensity": strconv.Itoa(int(a.lastCmd.Intensity)),
		"last_cct_value": strconv.Itoa(int(a.lastCmd.CCTWord)),
		"commands_sent":  strconv.Itoa(a.sent),
	}
}

// ReadSensor reports that DT8 broadcast gear carries no sensor head.
func (a *TunableWhite) ReadSensor() (SensorReading, error) {
	return SensorReading{}, ErrSensorUnsupported
}

// waitTransmit blocks for the transmission delay or until ctx is cancelled.
func waitTransmit(ctx context.Context) error {
	timer := time.NewTimer(transmitDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrTransmission, ctx.Err())
	case <-timer.C:
		return nil
	}
}
