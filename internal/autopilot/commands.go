package autopilot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lumenlogic/lumen-core/internal/control"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/mqtt"
)

// setpointCommand is the JSON shape accepted on lumen/command/setpoint.
type setpointCommand struct {
	Intensity       int    `json:"intensity"`
	ColorTempK      int    `json:"color_temp_k"`
	Reason          string `json:"reason"`
	OverrideMinutes int    `json:"override_minutes"`
}

// HandleSetpointCommand parses an operator setpoint request and applies it
// through the control service as a manual request. The applied decision is
// published retained on the state topic.
func (l *Loop) HandleSetpointCommand(_ string, payload []byte) error {
	var cmd setpointCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("parsing setpoint command: %w", err)
	}

	decision, err := l.svc.Apply(context.Background(), control.SetpointRequest{
		Intensity:       cmd.Intensity,
		ColorTempK:      cmd.ColorTempK,
		Reason:          cmd.Reason,
		Source:          control.SourceManual,
		OverrideMinutes: cmd.OverrideMinutes,
	})
	if err != nil {
		if errors.Is(err, control.ErrInvalidOverrideDuration) {
			l.log.Warn("rejected setpoint command", "error", err)
			return nil
		}
		return fmt.Errorf("applying setpoint command: %w", err)
	}

	l.log.Info("manual setpoint applied",
		"decision_id", decision.ID,
		"intensity", decision.Intensity,
		"cct", decision.CCTKelvin)
	l.publishDecision(decision)
	l.publishDiagnostics()
	return nil
}

// HandleOverrideClear releases any active manual override.
func (l *Loop) HandleOverrideClear(_ string, _ []byte) error {
	count, err := l.svc.ClearOverride(context.Background())
	if err != nil {
		return fmt.Errorf("clearing override: %w", err)
	}
	l.log.Info("override clear command handled", "cleared", count)
	l.publishDiagnostics()
	return nil
}

// SubscribeCommands wires the command handlers onto the MQTT client.
func (l *Loop) SubscribeCommands(client *mqtt.Client, qos byte) error {
	topics := mqtt.Topics{}
	if err := client.Subscribe(topics.CommandSetpoint(), qos, l.HandleSetpointCommand); err != nil {
		return fmt.Errorf("subscribing to setpoint commands: %w", err)
	}
	if err := client.Subscribe(topics.CommandOverrideClear(), qos, l.HandleOverrideClear); err != nil {
		return fmt.Errorf("subscribing to override clear: %w", err)
	}
	return nil
}
