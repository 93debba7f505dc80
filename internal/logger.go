package internal

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns the structured JSON logger used by every command.
func NewLogger(level slog.Level) *slog.Logger {
	return newLogger(os.Stdout, level)
}

// NewStderrLogger is NewLogger writing to stderr, for commands whose stdout
// carries a protocol.
func NewStderrLogger(level slog.Level) *slog.Logger {
	return newLogger(os.Stderr, level)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
