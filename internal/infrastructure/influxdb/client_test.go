package influxdb

import (
	"errors"
	"testing"

	"github.com/lumenlogic/lumen-core/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestWritesAreNoOpsWhenDisconnected(t *testing.T) {
	// A zero client is never connected; writes must be silent no-ops
	// rather than panics so telemetry stays optional.
	c := &Client{}

	c.WriteDecisionMetric("ai", 80, 4000, 0.2, false)
	c.WriteInferenceMetric(3, 512, true)
	c.WriteSensorMetric(420, true)
	c.WritePoint("custom", nil, map[string]interface{}{"v": 1})
	c.Flush()

	if c.IsConnected() {
		t.Error("IsConnected() = true for zero client")
	}
}

func TestBoolTag(t *testing.T) {
	if boolTag(true) != "true" || boolTag(false) != "false" {
		t.Error("boolTag() mapping incorrect")
	}
}
