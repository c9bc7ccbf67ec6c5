package autopilot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lumenlogic/lumen-core/internal/actuator"
	"github.com/lumenlogic/lumen-core/internal/control"
	"github.com/lumenlogic/lumen-core/internal/inference"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/config"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/logging"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/mqtt"
)

// WindowSource supplies recent feature windows, oldest first.
type WindowSource interface {
	Append(ctx context.Context, w inference.FeatureWindow) error
	Recent(ctx context.Context, limit int) ([]inference.FeatureWindow, error)
}

// Publisher publishes retained state messages. Satisfied by mqtt.Client;
// may be nil when the broker is unavailable.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
}

// Telemetry receives loop metrics. Satisfied by influxdb.Client.
type Telemetry interface {
	WriteInferenceMetric(attempts, payloadBytes int, fallback bool)
	WriteSensorMetric(lux int, presence bool)
}

// Loop runs the periodic AI-driven control cycle.
//
// Each tick it samples the luminaire's sensor (when fitted), folds the
// reading into the feature window store, asks the decision engine for a
// setpoint, applies it through the control service, and publishes the
// applied decision and actuator diagnostics retained.
type Loop struct {
	svc       *control.Service
	engine    *inference.Engine
	act       actuator.Actuator
	windows   WindowSource
	publisher Publisher
	telemetry Telemetry
	batch     int
	interval  time.Duration
	log       *logging.Logger
}

// NewLoop creates the autopilot loop. publisher and telemetry may be nil.
func NewLoop(
	svc *control.Service,
	engine *inference.Engine,
	act actuator.Actuator,
	windows WindowSource,
	publisher Publisher,
	telemetry Telemetry,
	cfg config.Config,
	log *logging.Logger,
) *Loop {
	return &Loop{
		svc:       svc,
		engine:    engine,
		act:       act,
		windows:   windows,
		publisher: publisher,
		telemetry: telemetry,
		batch:     cfg.AI.PayloadBatchLimit,
		interval:  cfg.Control.GetLoopInterval(),
		log:       log,
	}
}

// Run executes cycles at the configured interval until ctx is cancelled.
// One cycle runs immediately on start so a restart does not leave the
// luminaire unmanaged for a full interval.
func (l *Loop) Run(ctx context.Context) {
	l.log.Info("autopilot loop started", "interval", l.interval.String())

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			l.log.Info("autopilot loop stopped")
			return
		case <-ticker.C:
			l.runCycle(ctx)
		}
	}
}

// runCycle executes one sample-decide-apply pass. Failures are logged and
// the loop carries on; a bad cycle must not kill the daemon.
func (l *Loop) runCycle(ctx context.Context) {
	if err := l.sampleSensor(ctx); err != nil {
		l.log.Warn("sensor sampling failed", "error", err)
	}

	windows, err := l.windows.Recent(ctx, l.batch)
	if err != nil {
		l.log.Error("reading feature windows failed", "error", err)
		return
	}
	if len(windows) == 0 {
		l.log.Debug("no feature windows yet, skipping cycle")
		return
	}

	result, err := l.engine.ComputeSetpoint(ctx, windows)
	if err != nil {
		l.log.Error("decision engine rejected input", "error", err)
		return
	}
	if l.telemetry != nil {
		l.telemetry.WriteInferenceMetric(result.Attempts, result.PayloadBytes, result.Fallback)
	}

	decision, err := l.svc.Apply(ctx, control.SetpointRequest{
		Intensity:    result.Setpoint.Intensity,
		ColorTempK:   result.Setpoint.ColorTempK,
		Reason:       result.Setpoint.Reason,
		Source:       control.SourceAI,
		PayloadBytes: result.PayloadBytes,
	})
	if err != nil {
		l.log.Error("applying autopilot setpoint failed", "error", err)
		return
	}

	l.publishDecision(decision)
	l.publishDiagnostics()
}

// sampleSensor reads the luminaire's sensor head and records a feature
// window from the observation. Gear without a sensor is not an error.
func (l *Loop) sampleSensor(ctx context.Context) error {
	reading, err := l.act.ReadSensor()
	if err != nil {
		if errors.Is(err, actuator.ErrSensorUnsupported) {
			return nil
		}
		return fmt.Errorf("reading sensor: %w", err)
	}

	if l.telemetry != nil {
		l.telemetry.WriteSensorMetric(reading.Lux, reading.Presence)
	}

	occupancy := 0.0
	if reading.Presence {
		occupancy = 1.0
	}
	window := inference.FeatureWindow{
		Payload: map[string]any{
			"ambient_lux": float64(reading.Lux),
			"occupancy":   occupancy,
			"time_of_day": timeOfDay(reading.Timestamp),
		},
		Timestamp: reading.Timestamp,
	}
	if err := l.windows.Append(ctx, window); err != nil {
		return fmt.Errorf("storing feature window: %w", err)
	}
	return nil
}

// publishDecision publishes the applied decision retained so late
// subscribers see the current state.
func (l *Loop) publishDecision(decision control.Decision) {
	if l.publisher == nil {
		return
	}
	payload, err := json.Marshal(decision)
	if err != nil {
		l.log.Error("encoding decision failed", "error", err)
		return
	}
	if err := l.publisher.PublishRetained(mqtt.Topics{}.StateDecision(), payload); err != nil {
		l.log.Warn("publishing decision failed", "error", err)
	}
}

// publishDiagnostics publishes the actuator's diagnostics retained.
func (l *Loop) publishDiagnostics() {
	if l.publisher == nil {
		return
	}
	payload, err := json.Marshal(l.svc.Diagnostics())
	if err != nil {
		l.log.Error("encoding diagnostics failed", "error", err)
		return
	}
	if err := l.publisher.PublishRetained(mqtt.Topics{}.StateDiagnostics(), payload); err != nil {
		l.log.Warn("publishing diagnostics failed", "error", err)
	}
}

// timeOfDay buckets a timestamp the way the fallback rules expect.
func timeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h < 6:
		return "night"
	case h < 12:
		return "morning"
	case h < 18:
		return "day"
	case h < 22:
		return "evening"
	default:
		return "night"
	}
}
