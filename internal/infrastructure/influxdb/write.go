package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDecisionMetric records one applied control cycle.
//
// Tags keep cardinality low: only the source and override flag are
// indexed. The write is non-blocking; data is batched and sent
// asynchronously.
func (c *Client) WriteDecisionMetric(source string, intensity, cctKelvin int, energySaving float64, overrideApplied bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"decision",
		map[string]string{
			"source":           source,
			"override_applied": boolTag(overrideApplied),
		},
		map[string]interface{}{
			"intensity":     intensity,
			"cct_kelvin":    cctKelvin,
			"energy_saving": energySaving,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteInferenceMetric records one decision engine resolution: how many
// provider attempts it took, the payload size, and whether the fallback
// rules produced the result.
func (c *Client) WriteInferenceMetric(attempts, payloadBytes int, fallback bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"inference",
		map[string]string{
			"fallback": boolTag(fallback),
		},
		map[string]interface{}{
			"attempts":      attempts,
			"payload_bytes": payloadBytes,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSensorMetric records an ambient sensor observation.
func (c *Client) WriteSensorMetric(lux int, presence bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sensor",
		map[string]string{},
		map[string]interface{}{
			"lux":      lux,
			"presence": presence,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point for measurements the helpers do not
// cover. Tags should stay low-cardinality.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
