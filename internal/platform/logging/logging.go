// Package logging installs the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON slog handler tagged with the service name as the
// process default.
func Setup(service, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)
	return logger
}
