package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlogic/lumen-core/internal/actuator"
	"github.com/lumenlogic/lumen-core/internal/dali"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/config"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/logging"
)

// OverrideStore persists manual overrides.
type OverrideStore interface {
	// Create stores a new override.
	Create(ctx context.Context, override ManualOverride) error

	// FindCurrent returns the active, unexpired override with the latest
	// expiry, or ErrOverrideNotFound when none exists.
	FindCurrent(ctx context.Context, now time.Time) (*ManualOverride, error)

	// Deactivate marks all active overrides inactive and returns how many
	// were affected.
	Deactivate(ctx context.Context) (int, error)
}

// DecisionStore persists the append-only decision log.
type DecisionStore interface {
	// Append records a decision.
	Append(ctx context.Context, decision Decision) error

	// Latest returns the most recent decision, or ErrNoDecisions when the
	// log is empty.
	Latest(ctx context.Context) (*Decision, error)
}

// TelemetryWriter receives applied decisions for metrics export. Writes
// must not block the control cycle.
type TelemetryWriter interface {
	WriteDecision(decision Decision)
}

// Service orchestrates one control cycle: arbitrate, slew, actuate, record.
//
// Apply is serialised with an internal mutex so concurrent callers (the
// autopilot loop and MQTT command handler) cannot interleave between the
// state read and the decision write.
type Service struct {
	actuator  actuator.Actuator
	overrides OverrideStore
	decisions DecisionStore
	telemetry TelemetryWriter
	slew      SlewLimiter
	log       *logging.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewService creates a control service.
//
// telemetry may be nil; decisions are then recorded without metrics export.
func NewService(
	act actuator.Actuator,
	overrides OverrideStore,
	decisions DecisionStore,
	telemetry TelemetryWriter,
	cfg config.ControlConfig,
	log *logging.Logger,
) *Service {
	return &Service{
		actuator:  act,
		overrides: overrides,
		decisions: decisions,
		telemetry: telemetry,
		slew: SlewLimiter{
			RatePerSecond:     float64(cfg.RatePerSecond),
			MinUpdateInterval: cfg.GetMinUpdateInterval(),
		},
		log: log,
		now: time.Now,
	}
}

// Apply runs one control cycle for the given request.
//
// Pipeline order:
//
//  1. Validate the override duration (5-180 minutes when set).
//  2. Clamp intensity and CCT to their valid ranges.
//  3. Persist the request as a manual override when asked to.
//  4. Arbitrate: an active override replaces the requested values.
//  5. Slew-limit against the last applied decision.
//  6. Transmit to the gear. A transmission failure aborts the cycle with
//     ErrActuation and records nothing.
//  7. Append the decision and export telemetry.
//
// The freshly stored override participates in arbitration on the same
// cycle, so a pin request takes effect immediately.
func (s *Service) Apply(ctx context.Context, req SetpointRequest) (Decision, error) {
	if req.OverrideMinutes != 0 &&
		(req.OverrideMinutes < config.MinOverrideMinutes || req.OverrideMinutes > config.MaxOverrideMinutes) {
		return Decision{}, fmt.Errorf("%w: %d minutes (allowed %d-%d)",
			ErrInvalidOverrideDuration, req.OverrideMinutes,
			config.MinOverrideMinutes, config.MaxOverrideMinutes)
	}

	intensity := dali.ClampIntensity(req.Intensity)
	cct := dali.ClampCCT(req.ColorTempK)
	reason := req.Reason

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if req.OverrideMinutes > 0 {
		override := ManualOverride{
			ID:        newID("ovr"),
			Intensity: intensity,
			CCTKelvin: cct,
			Reason:    reason,
			CreatedAt: now,
			ExpiresAt: now.Add(time.Duration(req.OverrideMinutes) * time.Minute),
			Active:    true,
		}
		if err := s.overrides.Create(ctx, override); err != nil {
			return Decision{}, fmt.Errorf("storing override: %w", err)
		}
		s.log.Info("manual override stored",
			"override_id", override.ID,
			"expires_at", override.ExpiresAt.Format(time.RFC3339))
	}

	overrideApplied := false
	active, err := s.overrides.FindCurrent(ctx, now)
	switch {
	case err == nil:
		intensity = dali.ClampIntensity(active.Intensity)
		cct = dali.ClampCCT(active.CCTKelvin)
		if active.Reason != "" {
			reason = active.Reason
		}
		overrideApplied = true
	case errors.Is(err, ErrOverrideNotFound):
		// No pin; the request stands.
	default:
		return Decision{}, fmt.Errorf("finding active override: %w", err)
	}

	prev, err := s.lastApplied(ctx)
	if err != nil {
		return Decision{}, err
	}

	supportsCCT := s.actuator.SupportsCCT()
	if !supportsCCT && prev != nil {
		s.log.Info("basic mode active, retaining previous colour temperature",
			"requested_cct", cct)
	}
	intensity, cct = s.slew.Limit(intensity, cct, prev, now, supportsCCT)

	if err := s.actuator.SendSetpoint(ctx, intensity, cct); err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrActuation, err)
	}

	energy := float64(100-intensity) / 100.0
	if energy < 0 {
		energy = 0
	}
	decision := Decision{
		ID:              newID("dec"),
		DecidedAt:       now,
		Intensity:       intensity,
		CCTKelvin:       cct,
		Reason:          reason,
		Source:          req.Source,
		PayloadBytes:    req.PayloadBytes,
		OverrideApplied: overrideApplied,
		EnergySaving:    energy,
	}
	if err := s.decisions.Append(ctx, decision); err != nil {
		return Decision{}, fmt.Errorf("recording decision: %w", err)
	}
	if s.telemetry != nil {
		s.telemetry.WriteDecision(decision)
	}

	s.log.Info("control cycle applied",
		"decision_id", decision.ID,
		"intensity", decision.Intensity,
		"cct", decision.CCTKelvin,
		"source", decision.Source,
		"override_applied", decision.OverrideApplied)
	return decision, nil
}

// lastApplied loads the most recent decision as an applied state.
// Returns nil when the decision log is empty.
func (s *Service) lastApplied(ctx context.Context) (*AppliedState, error) {
	latest, err := s.decisions.Latest(ctx)
	if err != nil {
		if errors.Is(err, ErrNoDecisions) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading latest decision: %w", err)
	}
	return &AppliedState{
		Intensity: latest.Intensity,
		CCT:       latest.CCTKelvin,
		Timestamp: latest.DecidedAt,
	}, nil
}

// Latest returns the most recent decision.
func (s *Service) Latest(ctx context.Context) (*Decision, error) {
	return s.decisions.Latest(ctx)
}

// ActiveOverride returns the currently active override, if any.
func (s *Service) ActiveOverride(ctx context.Context) (*ManualOverride, error) {
	return s.overrides.FindCurrent(ctx, s.now())
}

// ClearOverride deactivates all active overrides, releasing the luminaire
// back to automatic control. Returns how many overrides were cleared.
func (s *Service) ClearOverride(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.overrides.Deactivate(ctx)
	if err != nil {
		return 0, fmt.Errorf("deactivating overrides: %w", err)
	}
	if count > 0 {
		s.log.Info("manual overrides cleared", "count", count)
	}
	return count, nil
}

// Diagnostics returns the actuator's diagnostics map.
func (s *Service) Diagnostics() map[string]string {
	return s.actuator.Diagnostics()
}

// newID builds a short prefixed identifier, e.g. "dec-3f2a91bc".
func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
