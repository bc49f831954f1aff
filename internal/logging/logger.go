// Package logging provides structured logging configuration using log/slog.
//
// Every import run gets an ID; WithRun returns a logger that carries it so
// all entries for one run can be correlated.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" format in production for machine parsing (ELK, CloudWatch, etc.)
// Use "text" format in development for human readability.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
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

// WithRun returns a logger that tags every entry with the import run ID.
//
// Usage:
//
//	logger := logging.WithRun(runID)
//	logger.Info("import started", "bytes", len(data))
//	// ... later ...
//	logger.Info("import completed", "rows", imported)
func WithRun(runID string) *slog.Logger {
	if runID == "" {
		return slog.Default()
	}
	return slog.Default().With("run_id", runID)
}
