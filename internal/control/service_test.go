package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumenlogic/lumen-core/internal/actuator"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/config"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeActuator struct {
	supportsCCT bool
	sendErr     error
	sent        [][2]int
}

func (f *fakeActuator) SupportsCCT() bool { return f.supportsCCT }

func (f *fakeActuator) SendSetpoint(_ context.Context, intensity, cct int) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, [2]int{intensity, cct})
	return nil
}

func (f *fakeActuator) Diagnostics() map[string]string {
	return map[string]string{"status": "fake"}
}

func (f *fakeActuator) ReadSensor() (actuator.SensorReading, error) {
	return actuator.SensorReading{}, actuator.ErrSensorUnsupported
}

type memOverrideStore struct {
	overrides []ManualOverride
}

func (m *memOverrideStore) Create(_ context.Context, o ManualOverride) error {
	m.overrides = append(m.overrides, o)
	return nil
}

func (m *memOverrideStore) FindCurrent(_ context.Context, now time.Time) (*ManualOverride, error) {
	var best *ManualOverride
	for i := range m.overrides {
		o := &m.overrides[i]
		if !o.Active || o.Expired(now) {
			continue
		}
		if best == nil || o.ExpiresAt.After(best.ExpiresAt) {
			best = o
		}
	}
	if best == nil {
		return nil, ErrOverrideNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *memOverrideStore) Deactivate(_ context.Context) (int, error) {
	count := 0
	for i := range m.overrides {
		if m.overrides[i].Active {
			m.overrides[i].Active = false
			count++
		}
	}
	return count, nil
}

type memDecisionStore struct {
	decisions []Decision
}

func (m *memDecisionStore) Append(_ context.Context, d Decision) error {
	m.decisions = append(m.decisions, d)
	return nil
}

func (m *memDecisionStore) Latest(_ context.Context) (*Decision, error) {
	if len(m.decisions) == 0 {
		return nil, ErrNoDecisions
	}
	cp := m.decisions[len(m.decisions)-1]
	return &cp, nil
}

type fixture struct {
	svc       *Service
	act       *fakeActuator
	overrides *memOverrideStore
	decisions *memDecisionStore
	clock     time.Time
}

func newFixture(t *testing.T, supportsCCT bool) *fixture {
	t.Helper()

	f := &fixture{
		act:       &fakeActuator{supportsCCT: supportsCCT},
		overrides: &memOverrideStore{},
		decisions: &memDecisionStore{},
		clock:     time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.act, f.overrides, f.decisions, nil, config.ControlConfig{
		RatePerSecond:            8,
		MinUpdateIntervalSeconds: 5,
	}, logging.Default())
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

// ─────────────────────────────────────────────────────────────────────────────
// Apply pipeline
// ─────────────────────────────────────────────────────────────────────────────

func TestApplyFirstCyclePassesThrough(t *testing.T) {
	f := newFixture(t, true)

	d, err := f.svc.Apply(context.Background(), SetpointRequest{
		Intensity: 80, ColorTempK: 4000, Reason: "bright morning", Source: SourceAI,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if d.Intensity != 80 || d.CCTKelvin != 4000 {
		t.Errorf("decision = %d/%d, want 80/4000", d.Intensity, d.CCTKelvin)
	}
	if d.EnergySaving != 0.2 {
		t.Errorf("EnergySaving = %v, want 0.2", d.EnergySaving)
	}
	if len(f.act.sent) != 1 || f.act.sent[0] != [2]int{80, 4000} {
		t.Errorf("actuator received %v, want [[80 4000]]", f.act.sent)
	}
}

func TestApplyClampsRequest(t *testing.T) {
	f := newFixture(t, true)

	d, err := f.svc.Apply(context.Background(), SetpointRequest{
		Intensity: 150, ColorTempK: 9000, Source: SourceManual,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if d.Intensity != 100 || d.CCTKelvin != 6500 {
		t.Errorf("decision = %d/%d, want clamped 100/6500", d.Intensity, d.CCTKelvin)
	}
	if d.EnergySaving != 0 {
		t.Errorf("EnergySaving = %v, want 0", d.EnergySaving)
	}
}

func TestApplySlewLimitsLargeJump(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	if _, err := f.svc.Apply(ctx, SetpointRequest{Intensity: 10, ColorTempK: 4000, Source: SourceAI}); err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}

	// Six seconds later the budget is 48 intensity units, so a request
	// for 100 is stepped to 10 + 48.
	f.advance(6 * time.Second)
	d, err := f.svc.Apply(ctx, SetpointRequest{Intensity: 100, ColorTempK: 4000, Source: SourceAI})
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if d.Intensity != 58 {
		t.Errorf("intensity = %d, want 58 (10 + 8*6)", d.Intensity)
	}
}

func TestApplyDebounceReturnsPreviousState(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	if _, err := f.svc.Apply(ctx, SetpointRequest{Intensity: 40, ColorTempK: 4000, Source: SourceAI}); err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}

	f.advance(2 * time.Second)
	d, err := f.svc.Apply(ctx, SetpointRequest{Intensity: 90, ColorTempK: 5000, Source: SourceAI})
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if d.Intensity != 40 || d.CCTKelvin != 4000 {
		t.Errorf("decision = %d/%d, want previous 40/4000", d.Intensity, d.CCTKelvin)
	}
	// The debounced cycle still transmits and still records a decision.
	if len(f.act.sent) != 2 {
		t.Errorf("sends = %d, want 2", len(f.act.sent))
	}
	if len(f.decisions.decisions) != 2 {
		t.Errorf("decisions = %d, want 2", len(f.decisions.decisions))
	}
}

func TestApplyBasicModeRetainsCCT(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	if _, err := f.svc.Apply(ctx, SetpointRequest{Intensity: 40, ColorTempK: 4000, Source: SourceAI}); err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}

	f.advance(10 * time.Second)
	d, err := f.svc.Apply(ctx, SetpointRequest{Intensity: 60, ColorTempK: 6500, Source: SourceAI})
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if d.Intensity != 60 {
		t.Errorf("intensity = %d, want 60", d.Intensity)
	}
	if d.CCTKelvin != 4000 {
		t.Errorf("cct = %d, want previous 4000 in basic mode", d.CCTKelvin)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Overrides
// ─────────────────────────────────────────────────────────────────────────────

func TestApplyOverrideTakesEffectSameCycle(t *testing.T) {
	f := newFixture(t, true)

	d, err := f.svc.Apply(context.Background(), SetpointRequest{
		Intensity: 25, ColorTempK: 3000, Reason: "movie night",
		Source: SourceManual, OverrideMinutes: 60,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !d.OverrideApplied {
		t.Error("OverrideApplied = false, want true on the pin cycle itself")
	}
	if d.Intensity != 25 || d.CCTKelvin != 3000 {
		t.Errorf("decision = %d/%d, want 25/3000", d.Intensity, d.CCTKelvin)
	}
	if len(f.overrides.overrides) != 1 {
		t.Fatalf("stored overrides = %d, want 1", len(f.overrides.overrides))
	}
	want := f.clock.Add(60 * time.Minute)
	if !f.overrides.overrides[0].ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", f.overrides.overrides[0].ExpiresAt, want)
	}
}

func TestApplyActiveOverrideBeatsAIRequest(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	if _, err := f.svc.Apply(ctx, SetpointRequest{
		Intensity: 25, ColorTempK: 3000, Reason: "movie night",
		Source: SourceManual, OverrideMinutes: 60,
	}); err != nil {
		t.Fatalf("pin Apply() error = %v", err)
	}

	f.advance(10 * time.Second)
	d, err := f.svc.Apply(ctx, SetpointRequest{
		Intensity: 90, ColorTempK: 6000, Reason: "high ambient", Source: SourceAI,
	})
	if err != nil {
		t.Fatalf("ai Apply() error = %v", err)
	}
	if !d.OverrideApplied {
		t.Error("OverrideApplied = false, want true while pin is active")
	}
	if d.Intensity != 25 || d.CCTKelvin != 3000 {
		t.Errorf("decision = %d/%d, want pinned 25/3000", d.Intensity, d.CCTKelvin)
	}
	if d.Reason != "movie night" {
		t.Errorf("reason = %q, want override reason", d.Reason)
	}
}

func TestApplyExpiredOverrideIgnored(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	if _, err := f.svc.Apply(ctx, SetpointRequest{
		Intensity: 25, ColorTempK: 3000, Source: SourceManual, OverrideMinutes: 5,
	}); err != nil {
		t.Fatalf("pin Apply() error = %v", err)
	}

	f.advance(6 * time.Minute)
	d, err := f.svc.Apply(ctx, SetpointRequest{
		Intensity: 30, ColorTempK: 3200, Source: SourceAI,
	})
	if err != nil {
		t.Fatalf("ai Apply() error = %v", err)
	}
	if d.OverrideApplied {
		t.Error("OverrideApplied = true after expiry, want false")
	}
	if d.Intensity != 30 {
		t.Errorf("intensity = %d, want 30", d.Intensity)
	}
}

func TestApplyLatestExpiryWins(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	if _, err := f.svc.Apply(ctx, SetpointRequest{
		Intensity: 25, ColorTempK: 3000, Reason: "short pin",
		Source: SourceManual, OverrideMinutes: 30,
	}); err != nil {
		t.Fatalf("first pin error = %v", err)
	}

	f.advance(10 * time.Second)
	if _, err := f.svc.Apply(ctx, SetpointRequest{
		Intensity: 70, ColorTempK: 5000, Reason: "long pin",
		Source: SourceManual, OverrideMinutes: 120,
	}); err != nil {
		t.Fatalf("second pin error = %v", err)
	}

	f.advance(10 * time.Second)
	d, err := f.svc.Apply(ctx, SetpointRequest{Intensity: 0, ColorTempK: 4000, Source: SourceAI})
	if err != nil {
		t.Fatalf("ai Apply() error = %v", err)
	}
	if d.Reason != "long pin" {
		t.Errorf("reason = %q, want the later-expiring override to win", d.Reason)
	}
}

func TestApplyRejectsOutOfRangeDuration(t *testing.T) {
	f := newFixture(t, true)

	for _, minutes := range []int{1, 4, 181, 600, -5} {
		_, err := f.svc.Apply(context.Background(), SetpointRequest{
			Intensity: 50, ColorTempK: 4000, Source: SourceManual, OverrideMinutes: minutes,
		})
		if !errors.Is(err, ErrInvalidOverrideDuration) {
			t.Errorf("Apply(minutes=%d) error = %v, want ErrInvalidOverrideDuration", minutes, err)
		}
	}
	if len(f.overrides.overrides) != 0 {
		t.Errorf("stored overrides = %d, want 0 after rejected requests", len(f.overrides.overrides))
	}
	if len(f.act.sent) != 0 {
		t.Errorf("sends = %d, want 0 after rejected requests", len(f.act.sent))
	}
}

func TestClearOverrideReleasesPin(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	if _, err := f.svc.Apply(ctx, SetpointRequest{
		Intensity: 25, ColorTempK: 3000, Source: SourceManual, OverrideMinutes: 60,
	}); err != nil {
		t.Fatalf("pin Apply() error = %v", err)
	}

	count, err := f.svc.ClearOverride(ctx)
	if err != nil {
		t.Fatalf("ClearOverride() error = %v", err)
	}
	if count != 1 {
		t.Errorf("cleared = %d, want 1", count)
	}

	f.advance(10 * time.Second)
	d, err := f.svc.Apply(ctx, SetpointRequest{Intensity: 40, ColorTempK: 4000, Source: SourceAI})
	if err != nil {
		t.Fatalf("ai Apply() error = %v", err)
	}
	if d.OverrideApplied {
		t.Error("OverrideApplied = true after clear, want false")
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Failure handling
// ─────────────────────────────────────────────────────────────────────────────

func TestApplyTransmissionFailureRecordsNothing(t *testing.T) {
	f := newFixture(t, true)
	f.act.sendErr = actuator.ErrTransmission

	_, err := f.svc.Apply(context.Background(), SetpointRequest{
		Intensity: 50, ColorTempK: 4000, Source: SourceAI,
	})
	if !errors.Is(err, ErrActuation) {
		t.Fatalf("Apply() error = %v, want ErrActuation", err)
	}
	if len(f.decisions.decisions) != 0 {
		t.Errorf("decisions = %d, want 0 after failed transmission", len(f.decisions.decisions))
	}
}
