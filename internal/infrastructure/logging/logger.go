package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lumenlogic/lumen-core/internal/infrastructure/config"
)

// Logger wraps slog.Logger so every line carries the service and version
// attributes and the level/format come from config.yaml. Safe for
// concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a logger from the logging config section. Format defaults to
// JSON, output to stdout, level to info.
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	if strings.EqualFold(cfg.Output, "stderr") {
		output = os.Stderr
	} else {
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "lumend"),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a child logger carrying additional default attributes.
//
//	controlLog := log.With("component", "control")
//	controlLog.Info("cycle applied") // includes component=control
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default is the bootstrap logger used before configuration is loaded:
// JSON to stdout at info level.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
