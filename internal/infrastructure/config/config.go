package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Lumen Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	DALI     DALIConfig     `yaml:"dali"`
	Control  ControlConfig  `yaml:"control"`
	AI       AIConfig       `yaml:"ai"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DALI actuator modes.
const (
	// DALIModeTunableWhite drives a DT8 tunable-white luminaire (intensity + CCT).
	DALIModeTunableWhite = "tunable_white"

	// DALIModeBasic drives broadcast-only gear with no colour temperature channel.
	DALIModeBasic = "basic"

	// DALIModeSimulated uses the in-memory simulated actuator (no bus hardware).
	DALIModeSimulated = "simulated"
)

// DALIConfig contains DALI actuator settings.
type DALIConfig struct {
	// Mode selects the actuator variant: tunable_white, basic, or simulated.
	Mode string `yaml:"mode"`

	// SimulationSeed seeds the simulated actuator's pseudo-random source.
	// Only used when Mode is "simulated". 0 is a valid seed.
	SimulationSeed int64 `yaml:"simulation_seed"`
}

// ControlConfig contains setpoint control loop settings.
type ControlConfig struct {
	// RatePerSecond bounds the intensity slew rate (intensity units per second).
	RatePerSecond int `yaml:"rate_per_second"`

	// MinUpdateIntervalSeconds is the hard debounce window between applied updates.
	MinUpdateIntervalSeconds int `yaml:"min_update_interval_seconds"`

	// Loop configures the periodic AI-driven control cycle.
	Loop ControlLoopConfig `yaml:"loop"`
}

// ControlLoopConfig contains the periodic autopilot cycle settings.
type ControlLoopConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
}

// AIConfig contains decision provider settings.
type AIConfig struct {
	// Endpoint is the HTTP URL of the external decision provider.
	// Empty disables remote inference; the rule-based fallback is used instead.
	Endpoint string `yaml:"endpoint"`

	// APIKey is the bearer token for the decision provider.
	APIKey string `yaml:"api_key"`

	// Model is the provider-side model identifier.
	Model string `yaml:"model"`

	// PayloadCapBytes caps the serialized feature payload size. Minimum 512.
	PayloadCapBytes int `yaml:"payload_cap_bytes"`

	// PayloadBatchLimit caps the number of feature windows per request (1-10).
	PayloadBatchLimit int `yaml:"payload_batch_limit"`

	// AttemptTimeoutSeconds bounds each individual provider call.
	AttemptTimeoutSeconds int `yaml:"attempt_timeout_seconds"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: LUMEN_SECTION_KEY
// For example: LUMEN_DATABASE_PATH, LUMEN_AI_API_KEY
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "site-001",
			Name:     "Lumen Core",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/lumen.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "lumen-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		DALI: DALIConfig{
			Mode: DALIModeSimulated,
		},
		Control: ControlConfig{
			RatePerSecond:            20,
			MinUpdateIntervalSeconds: 5,
			Loop: ControlLoopConfig{
				Enabled:         true,
				IntervalSeconds: 60,
			},
		},
		AI: AIConfig{
			Model:                 "lighting-setpoint-v1",
			PayloadCapBytes:       2048,
			PayloadBatchLimit:     3,
			AttemptTimeoutSeconds: 3,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LUMEN_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("LUMEN_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("LUMEN_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LUMEN_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LUMEN_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("LUMEN_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// AI provider - credentials always come from the environment in production
	if v := os.Getenv("LUMEN_AI_ENDPOINT"); v != "" {
		cfg.AI.Endpoint = v
	}
	if v := os.Getenv("LUMEN_AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
}

// Manual override duration bounds, in minutes.
// Requests outside this range are rejected as validation errors.
const (
	MinOverrideMinutes = 5
	MaxOverrideMinutes = 180
)

// Payload constraints for the decision provider request.
const (
	minPayloadCapBytes   = 512
	maxPayloadBatchLimit = 10
)

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Site validation
	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// DALI validation
	switch c.DALI.Mode {
	case DALIModeTunableWhite, DALIModeBasic, DALIModeSimulated:
	default:
		errs = append(errs, fmt.Sprintf("dali.mode must be %s, %s, or %s",
			DALIModeTunableWhite, DALIModeBasic, DALIModeSimulated))
	}

	// Control validation
	if c.Control.RatePerSecond <= 0 {
		errs = append(errs, "control.rate_per_second must be positive")
	}
	if c.Control.MinUpdateIntervalSeconds < 0 {
		errs = append(errs, "control.min_update_interval_seconds must not be negative")
	}
	if c.Control.Loop.Enabled && c.Control.Loop.IntervalSeconds <= 0 {
		errs = append(errs, "control.loop.interval_seconds must be positive when the loop is enabled")
	}

	// AI validation - the payload cap protects the provider from oversized
	// requests, and the batch limit bounds feature-window fan-in.
	if c.AI.PayloadCapBytes < minPayloadCapBytes {
		errs = append(errs, fmt.Sprintf("ai.payload_cap_bytes must be >= %d", minPayloadCapBytes))
	}
	if c.AI.PayloadBatchLimit < 1 || c.AI.PayloadBatchLimit > maxPayloadBatchLimit {
		errs = append(errs, fmt.Sprintf("ai.payload_batch_limit must be between 1 and %d", maxPayloadBatchLimit))
	}
	if c.AI.AttemptTimeoutSeconds <= 0 {
		errs = append(errs, "ai.attempt_timeout_seconds must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetMinUpdateInterval returns the control debounce window as a Duration.
func (c ControlConfig) GetMinUpdateInterval() time.Duration {
	return time.Duration(c.MinUpdateIntervalSeconds) * time.Second
}

// GetLoopInterval returns the autopilot cycle interval as a Duration.
func (c ControlConfig) GetLoopInterval() time.Duration {
	return time.Duration(c.Loop.IntervalSeconds) * time.Second
}

// GetAttemptTimeout returns the per-attempt provider deadline as a Duration.
func (c AIConfig) GetAttemptTimeout() time.Duration {
	return time.Duration(c.AttemptTimeoutSeconds) * time.Second
}
