// Package logging provides structured logging for Lumen Core.
//
// It wraps the standard library's log/slog with configuration-driven
// level filtering, JSON or text output, and default service/version
// attributes on every record.
//
// # Usage
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("actuator ready", "mode", cfg.DALI.Mode)
//
//	controlLog := log.With("component", "control")
//	controlLog.Debug("slew limited", "intensity", 42)
//
// Use logging.Default() only during early startup before configuration
// is available.
package logging
