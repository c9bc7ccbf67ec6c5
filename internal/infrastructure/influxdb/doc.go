// Package influxdb exports Lumen telemetry to InfluxDB v2.
//
// Three measurements are written:
//
//	decision   applied control cycles (intensity, CCT, energy saving)
//	inference  decision engine resolutions (attempts, payload size, fallback)
//	sensor     ambient observations from the luminaire's sensor head
//
// Writes go through the non-blocking batched write API, so the control
// loop never waits on the metrics backend; async write errors surface
// through SetOnError. Telemetry is optional: when disabled in
// configuration, Connect returns ErrDisabled and callers run without it.
package influxdb
