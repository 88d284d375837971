// Package logging builds the process-wide structured logger. All binaries
// log JSON lines to stdout with a constant "service" attribute, so pipeline
// events (ingests, exports, retries, breaker trips) can be filtered per
// service in log aggregation.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger returns a JSON slog.Logger tagged with the service name.
// The level string is forgiving: unknown values fall back to info rather
// than failing startup.
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With(slog.String("service", service))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
