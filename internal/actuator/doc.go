// Package actuator abstracts the DALI gear behind a single interface.
//
// Three implementations are provided:
//
//   - TunableWhite: DT8 gear with intensity and colour temperature channels
//   - Basic: broadcast-only gear driven by level commands, no CCT channel
//   - Simulated: an in-memory luminaire with a deterministic internal clock,
//     its own anti-flicker contract, and a seeded sensor model
//
// The control service holds exactly one Actuator and never needs to know
// which mode is configured; gear without a CCT channel simply ignores the
// colour temperature it is handed.
//
// # Usage
//
//	act, err := actuator.New(cfg.DALI, log)
//	if err != nil {
//		return err
//	}
//	if err := act.SendSetpoint(ctx, 80, 4000); err != nil {
//		return fmt.Errorf("applying setpoint: %w", err)
//	}
package actuator
