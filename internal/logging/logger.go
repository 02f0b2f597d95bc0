// Package logging configures the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

func init() {
	defaultLogger = NewLogger(slog.LevelInfo)
	slog.SetDefault(defaultLogger)
}

// NewLogger returns a JSON logger writing to stdout at the given level.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

// Default returns the process-wide logger.
func Default() *slog.Logger {
	return defaultLogger
}

// WithPage returns a logger scoped to one page's processing, so every record
// produced while extracting that page carries its path and URL.
func WithPage(logger *slog.Logger, path, url string) *slog.Logger {
	return logger.With("page", path, "url", url)
}
