// Package config loads and validates Lumen Core configuration.
//
// Configuration is layered: hardcoded defaults, then the YAML file, then
// LUMEN_* environment variable overrides. Validation happens once at load
// time; the resulting *Config is constructed at startup and passed by
// reference into each component. There is no ambient global configuration.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	limiter := control.SlewLimiter{
//	    RatePerSecond:     float64(cfg.Control.RatePerSecond),
//	    MinUpdateInterval: cfg.Control.GetMinUpdateInterval(),
//	}
//
// Secrets (AI API key, MQTT password, InfluxDB token) should come from the
// environment rather than the YAML file in production deployments.
package config
