// Package control implements the setpoint control engine.
//
// Every change to the luminaire, whether requested by the inference
// engine, an operator, or the simulation loop, flows through a single
// pipeline in Service.Apply:
//
//	validate -> clamp -> store override -> arbitrate -> slew -> actuate -> record
//
// Manual overrides pin a setpoint for 5-180 minutes and win arbitration
// against any automatic request while active. The slew limiter bounds how
// fast the applied state may move between cycles so the gear never
// flickers, and every applied cycle is recorded in an append-only
// decision log that doubles as the limiter's memory of the previous
// state.
//
// A failed bus transmission aborts the cycle without recording anything:
// the decision log only ever contains states the gear actually received.
package control
