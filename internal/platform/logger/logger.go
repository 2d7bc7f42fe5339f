// Package logger builds the shared structured logger.
package logger

import (
	"log/slog"
	"os"
)

// New returns a text slog logger writing to stdout. Level defaults to info;
// set LOG_LEVEL=debug to see per-stage pipeline detail.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
