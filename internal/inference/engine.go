package inference

import (
	"context"
	"time"

	"github.com/lumenlogic/lumen-core/internal/dali"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/config"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/logging"
)

// Retry policy for the external provider.
const (
	maxAttempts = 3
	backoffStep = 500 * time.Millisecond

	// maxReasonLength bounds the reason string stored on a decision.
	maxReasonLength = 256
)

// Provider calls the external decision source. Implementations may fail
// arbitrarily; the engine owns retry and fallback.
type Provider interface {
	Infer(ctx context.Context, payload []byte) (Setpoint, error)
}

// Engine turns feature windows into a validated setpoint.
//
// The provider is tried up to three times with linear backoff between
// attempts. A success is clamped and bounded before it enters the control
// pipeline; exhausting all attempts switches to the deterministic fallback
// rules, never to a hard failure. Only payload validation errors are
// surfaced to the caller.
type Engine struct {
	provider       Provider
	capBytes       int
	batchLimit     int
	attemptTimeout time.Duration
	log            *logging.Logger

	// sleep is swappable in tests.
	sleep func(time.Duration)
}

// NewEngine creates a decision engine.
func NewEngine(provider Provider, cfg config.AIConfig, log *logging.Logger) *Engine {
	return &Engine{
		provider:       provider,
		capBytes:       cfg.PayloadCapBytes,
		batchLimit:     cfg.PayloadBatchLimit,
		attemptTimeout: cfg.GetAttemptTimeout(),
		log:            log,
		sleep:          time.Sleep,
	}
}

// ComputeSetpoint builds the provider payload and resolves a setpoint.
//
// Validation errors (empty input, payload over cap, too many windows) are
// returned immediately without touching the provider. Everything else
// resolves to a setpoint: the provider's on success, the fallback rules'
// after three failed attempts.
func (e *Engine) ComputeSetpoint(ctx context.Context, windows []FeatureWindow) (Result, error) {
	payload, err := BuildPayload(windows, e.capBytes, e.batchLimit)
	if err != nil {
		return Result{}, err
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		setpoint, err := e.attempt(ctx, payload)
		if err == nil {
			return Result{
				Setpoint:     validate(setpoint),
				PayloadBytes: len(payload),
				Attempts:     attempt,
			}, nil
		}

		e.log.Warn("decision provider attempt failed",
			"attempt", attempt,
			"error", err)
		if attempt < maxAttempts {
			e.sleep(backoffStep * time.Duration(attempt))
		}
	}

	e.log.Error("decision provider exhausted, applying fallback rules")
	return Result{
		Setpoint:     Fallback(windows),
		PayloadBytes: len(payload),
		Fallback:     true,
		Attempts:     maxAttempts,
	}, nil
}

// attempt runs one bounded provider call. A missing provider counts as a
// failed attempt so an unconfigured deployment still resolves via fallback.
func (e *Engine) attempt(ctx context.Context, payload []byte) (Setpoint, error) {
	if e.provider == nil {
		return Setpoint{}, ErrProviderNotConfigured
	}
	attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()
	return e.provider.Infer(attemptCtx, payload)
}

// validate clamps provider output before it enters the control pipeline.
// This is the only place untrusted numbers cross the boundary, so the
// clamp is unconditional.
func validate(s Setpoint) Setpoint {
	s.Intensity = dali.ClampIntensity(s.Intensity)
	s.ColorTempK = dali.ClampCCT(s.ColorTempK)
	if runes := []rune(s.Reason); len(runes) > maxReasonLength {
		s.Reason = string(runes[:maxReasonLength])
	}
	return s
}
