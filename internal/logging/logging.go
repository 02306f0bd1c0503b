// Package logging builds the process-wide slog logger from environment
// variables, the same convention the rest of this codebase's tools use.
package logging

import (
	"log/slog"
	"os"
)

// Init reads LEGITFS_LOG_LEVEL and LEGITFS_LOG_FORMAT from the environment,
// builds the corresponding slog.Handler, and installs it via
// slog.SetDefault. Unrecognized values fall back to info/text.
func Init() {
	level := slog.LevelInfo
	switch getEnv("LEGITFS_LOG_LEVEL", "info") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if getEnv("LEGITFS_LOG_FORMAT", "text") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
