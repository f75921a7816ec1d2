package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New builds the process logger from a textual level. Unknown levels fall
// back to info rather than failing startup.
func New(output io.Writer, level string) *slog.Logger {
	var parsed slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		parsed = slog.LevelDebug
	case "", "info":
		parsed = slog.LevelInfo
	case "warn", "warning":
		parsed = slog.LevelWarn
	case "error":
		parsed = slog.LevelError
	default:
		parsed = slog.LevelInfo
	}

	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: parsed})
	return slog.New(handler)
}
