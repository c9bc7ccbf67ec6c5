// Package autopilot drives the luminaire without operator input.
//
// The Loop ticks at a configured interval: sample the sensor, store a
// feature window, ask the decision engine for a setpoint, apply it
// through the control service, publish the result. It also carries the
// MQTT command handlers so manual setpoints and override clears flow
// through the same publishing path as automatic cycles.
//
// The loop is deliberately forgiving: a failed cycle is logged and the
// next tick tries again. Only context cancellation stops it.
package autopilot
