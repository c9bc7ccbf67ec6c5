// Lumen Core - Setpoint Control & Actuation Engine
//
// This is the main entry point for the Lumen daemon. Lumen drives a
// DALI tunable-white luminaire from an AI decision source with a
// deterministic rule fallback, designed for:
//   - Offline-first operation (control keeps running without broker or cloud)
//   - Flicker-free output (debounce and slew limiting on every update)
//   - Open standards (DALI DT8 and basic arc power control)
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lumenlogic/lumen-core/migrations"

	"github.com/lumenlogic/lumen-core/internal/actuator"
	"github.com/lumenlogic/lumen-core/internal/autopilot"
	"github.com/lumenlogic/lumen-core/internal/control"
	"github.com/lumenlogic/lumen-core/internal/inference"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/config"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/database"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/influxdb"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/logging"
	"github.com/lumenlogic/lumen-core/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Lumen Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Build the actuator for the configured gear
	act, err := actuator.New(cfg.DALI, log)
	if err != nil {
		return fmt.Errorf("creating actuator: %w", err)
	}
	log.Info("actuator initialised",
		"mode", cfg.DALI.Mode,
		"supports_cct", act.SupportsCCT(),
	)

	// Connect to InfluxDB (optional)
	influxClient := connectInfluxDB(cfg, log)
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
	}

	// Connect to MQTT broker (optional; control keeps running without it)
	mqttClient := connectMQTT(cfg, log)
	if mqttClient != nil {
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
	}

	// Wire the control service over the SQLite stores
	overrides := control.NewSQLiteOverrideStore(db.DB)
	decisions := control.NewSQLiteDecisionStore(db.DB)
	windows := inference.NewSQLiteFeatureWindowStore(db.DB)

	var telemetry control.TelemetryWriter
	if influxClient != nil {
		telemetry = &decisionTelemetry{influx: influxClient}
	}
	svc := control.NewService(act, overrides, decisions, telemetry, cfg.Control, log)

	// Build the decision engine. A missing provider is not fatal; the
	// engine resolves every cycle through the fallback rules instead.
	var provider inference.Provider
	httpProvider, err := inference.NewHTTPProvider(cfg.AI)
	switch {
	case err == nil:
		provider = httpProvider
		log.Info("decision provider configured",
			"endpoint", cfg.AI.Endpoint,
			"model", cfg.AI.Model,
		)
	case errors.Is(err, inference.ErrProviderNotConfigured):
		log.Warn("decision provider not configured, fallback rules only")
	default:
		return fmt.Errorf("creating decision provider: %w", err)
	}
	engine := inference.NewEngine(provider, cfg.AI, log)

	// Autopilot loop and MQTT command surface
	var publisher autopilot.Publisher
	if mqttClient != nil {
		publisher = mqttClient
	}
	var loopTelemetry autopilot.Telemetry
	if influxClient != nil {
		loopTelemetry = influxClient
	}
	loop := autopilot.NewLoop(svc, engine, act, windows, publisher, loopTelemetry, *cfg, log)

	if mqttClient != nil {
		if subErr := loop.SubscribeCommands(mqttClient, byte(cfg.MQTT.QoS)); subErr != nil {
			return fmt.Errorf("subscribing to command topics: %w", subErr)
		}
		log.Info("command topics subscribed")
	}

	if cfg.Control.Loop.Enabled {
		go loop.Run(ctx)
	} else {
		log.Info("autopilot loop disabled, command-driven only")
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. MQTT
	// 2. InfluxDB (if enabled)
	// 3. Database

	log.Info("Lumen Core stopped")
	return nil
}

// connectInfluxDB connects to InfluxDB when enabled. Telemetry is optional
// so failures degrade to a nil client rather than aborting startup.
func connectInfluxDB(cfg *config.Config, log *logging.Logger) *influxdb.Client {
	client, err := influxdb.Connect(cfg.InfluxDB)
	if err != nil {
		if errors.Is(err, influxdb.ErrDisabled) {
			log.Info("InfluxDB disabled")
		} else {
			log.Warn("InfluxDB unavailable, continuing without telemetry", "error", err)
		}
		return nil
	}
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	return client
}

// connectMQTT connects to the broker. The daemon stays useful without one,
// the autopilot loop keeps controlling the luminaire, so a failed connect
// is logged and tolerated.
func connectMQTT(cfg *config.Config, log *logging.Logger) *mqtt.Client {
	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		log.Warn("MQTT unavailable, continuing without command surface", "error", err)
		return nil
	}
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)
	client.SetLogger(log)
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	return client
}

// getConfigPath returns the configuration file path.
// Uses LUMEN_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LUMEN_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the infrastructure connections that made it up.
// mqttClient and influxClient may be nil when their backends are optional
// or unreachable.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}

// decisionTelemetry adapts the InfluxDB client to the control service's
// TelemetryWriter interface so the control package stays free of
// infrastructure imports.
type decisionTelemetry struct {
	influx *influxdb.Client
}

// WriteDecision implements control.TelemetryWriter.
func (t *decisionTelemetry) WriteDecision(d control.Decision) {
	t.influx.WriteDecisionMetric(string(d.Source), d.Intensity, d.CCTKelvin, d.EnergySaving, d.OverrideApplied)
}
