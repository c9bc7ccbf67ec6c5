package inference

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lumenlogic/lumen-core/internal/infrastructure/config"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/logging"
)

type scriptedProvider struct {
	calls     int
	failUntil int
	setpoint  Setpoint
	lastCtx   context.Context
}

func (p *scriptedProvider) Infer(ctx context.Context, _ []byte) (Setpoint, error) {
	p.calls++
	p.lastCtx = ctx
	if p.calls <= p.failUntil {
		return Setpoint{}, errors.New("provider unavailable")
	}
	return p.setpoint, nil
}

func newEngineForTest(p Provider) *Engine {
	e := NewEngine(p, config.AIConfig{
		PayloadCapBytes:       2048,
		PayloadBatchLimit:     3,
		AttemptTimeoutSeconds: 3,
	}, logging.Default())
	e.sleep = func(time.Duration) {}
	return e
}

func windowsForTest(n int) []FeatureWindow {
	out := make([]FeatureWindow, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, FeatureWindow{
			Payload:   map[string]any{"ambient_lux": 200.0, "occupancy": 0.8},
			Timestamp: time.Date(2026, 8, 27, 9, 0, i, 0, time.UTC),
		})
	}
	return out
}

func TestComputeSetpointFirstAttemptSucceeds(t *testing.T) {
	provider := &scriptedProvider{
		setpoint: Setpoint{Intensity: 70, ColorTempK: 4500, Reason: "bright room"},
	}
	engine := newEngineForTest(provider)

	result, err := engine.ComputeSetpoint(context.Background(), windowsForTest(2))
	if err != nil {
		t.Fatalf("ComputeSetpoint() error = %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
	if result.Fallback {
		t.Error("Fallback = true, want false")
	}
	if result.Setpoint.Intensity != 70 || result.Setpoint.ColorTempK != 4500 {
		t.Errorf("setpoint = %+v, want 70/4500", result.Setpoint)
	}
	if result.PayloadBytes == 0 {
		t.Error("PayloadBytes = 0, want serialized size")
	}
}

func TestComputeSetpointClampsProviderOutput(t *testing.T) {
	provider := &scriptedProvider{
		setpoint: Setpoint{Intensity: 500, ColorTempK: 100, Reason: strings.Repeat("x", 300)},
	}
	engine := newEngineForTest(provider)

	result, err := engine.ComputeSetpoint(context.Background(), windowsForTest(1))
	if err != nil {
		t.Fatalf("ComputeSetpoint() error = %v", err)
	}
	if result.Setpoint.Intensity != 100 {
		t.Errorf("Intensity = %d, want clamped 100", result.Setpoint.Intensity)
	}
	if result.Setpoint.ColorTempK != 1800 {
		t.Errorf("ColorTempK = %d, want clamped 1800", result.Setpoint.ColorTempK)
	}
	if len(result.Setpoint.Reason) != 256 {
		t.Errorf("len(Reason) = %d, want 256", len(result.Setpoint.Reason))
	}
}

func TestComputeSetpointRetriesThenSucceeds(t *testing.T) {
	provider := &scriptedProvider{
		failUntil: 2,
		setpoint:  Setpoint{Intensity: 50, ColorTempK: 4000, Reason: "recovered"},
	}
	engine := newEngineForTest(provider)

	var slept []time.Duration
	engine.sleep = func(d time.Duration) { slept = append(slept, d) }

	result, err := engine.ComputeSetpoint(context.Background(), windowsForTest(1))
	if err != nil {
		t.Fatalf("ComputeSetpoint() error = %v", err)
	}
	if provider.calls != 3 {
		t.Errorf("provider calls = %d, want 3", provider.calls)
	}
	if result.Fallback {
		t.Error("Fallback = true, want false on eventual success")
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}

	// Linear backoff between attempts only: 0.5s then 1.0s, no sleep
	// after the final attempt.
	want := []time.Duration{500 * time.Millisecond, time.Second}
	if len(slept) != len(want) {
		t.Fatalf("sleeps = %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("sleep %d = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestComputeSetpointFallsBackAfterExhaustion(t *testing.T) {
	provider := &scriptedProvider{failUntil: 3}
	engine := newEngineForTest(provider)

	result, err := engine.ComputeSetpoint(context.Background(), windowsForTest(1))
	if err != nil {
		t.Fatalf("ComputeSetpoint() error = %v, provider failure must not surface", err)
	}
	if !result.Fallback {
		t.Error("Fallback = false, want true after three failed attempts")
	}
	if result.Setpoint.Reason != fallbackReason {
		t.Errorf("Reason = %q, want %q", result.Setpoint.Reason, fallbackReason)
	}
}

func TestComputeSetpointTooManyWindowsSkipsProvider(t *testing.T) {
	provider := &scriptedProvider{}
	engine := newEngineForTest(provider)

	_, err := engine.ComputeSetpoint(context.Background(), windowsForTest(4))
	if !errors.Is(err, ErrTooManyWindows) {
		t.Fatalf("ComputeSetpoint() error = %v, want ErrTooManyWindows", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider calls = %d, want 0 for a validation error", provider.calls)
	}
}

func TestComputeSetpointAttemptsAreDeadlineBounded(t *testing.T) {
	provider := &scriptedProvider{setpoint: Setpoint{Intensity: 50, ColorTempK: 4000, Reason: "ok"}}
	engine := newEngineForTest(provider)

	if _, err := engine.ComputeSetpoint(context.Background(), windowsForTest(1)); err != nil {
		t.Fatalf("ComputeSetpoint() error = %v", err)
	}
	if _, ok := provider.lastCtx.Deadline(); !ok {
		t.Error("provider context has no deadline, want per-attempt timeout")
	}
}
