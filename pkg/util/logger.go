package util

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide slog.Logger. Development gets a
// human-readable text handler at debug level; everything else logs
// JSON at info so log shippers can parse it.
func NewLogger(env string) *slog.Logger {
	if env == "development" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
