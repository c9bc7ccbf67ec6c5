package actuator

import (
	"context"
	"strconv"
	"sync"

	"github.com/lumenlogic/lumen-core/internal/dali"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/logging"
)

// Basic drives gear without a colour temperature channel using broadcast
// level commands only.
type Basic struct {
	log *logging.Logger

	mu      sync.Mutex
	lastCmd *dali.BasicCommand
	sent    int
}

// NewBasic creates an actuator for basic broadcast gear.
func NewBasic(log *logging.Logger) *Basic {
	return &Basic{log: log}
}

// SupportsCCT always returns false; basic gear has no CCT channel.
func (a *Basic) SupportsCCT() bool { return false }

// SendSetpoint encodes and transmits a broadcast level command.
// The cct argument is ignored.
func (a *Basic) SendSetpoint(ctx context.Context, intensity, _ int) error {
	cmd := dali.EncodeBasic(intensity)

	a.log.Info("sending basic command",
		"opcode", cmd.Opcode.String(),
		"arc_power", cmd.ArcPower)

	if err := waitTransmit(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	a.lastCmd = &cmd
	a.sent++
	a.mu.Unlock()
	return nil
}

// Diagnostics reports the last transmitted command, or idle if none.
func (a *Basic) Diagnostics() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.lastCmd == nil {
		return map[string]string{"status": "idle"}
	}
	diag := map[string]string{
		"status":        "ok",
		"last_command":  a.lastCmd.Opcode.String(),
		"commands_sent": strconv.Itoa(a.sent),
	}
	if a.lastCmd.Opcode == dali.OpcodeDirectArcPower {
		diag["last_arc_power"] = strconv.Itoa(int(a.lastCmd.ArcPower))
	}
	return diag
}

// ReadSensor reports that basic gear carries no sensor head.
func (a *Basic) ReadSensor() (SensorReading, error) {
	return SensorReading{}, ErrSensorUnsupported
}
