// Package inference resolves feature windows into lighting setpoints.
//
// The engine serializes a bounded batch of feature windows, calls an
// external decision provider with up to three attempts and linear backoff,
// and clamps whatever comes back before it can reach the control pipeline.
// When every attempt fails it computes a setpoint from deterministic
// rules instead, so a dead provider degrades the system to rule-based
// control rather than darkness.
//
// Payload bounds (byte cap and window batch limit) are caller
// configuration errors: they surface immediately and are never retried.
package inference
