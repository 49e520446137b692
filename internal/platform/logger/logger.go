package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a structured JSON logger on stdout. Local environments log at
// debug level.
func New(environment string) *slog.Logger {
	return NewWithWriter(os.Stdout, environment)
}

func NewWithWriter(w io.Writer, environment string) *slog.Logger {
	level := slog.LevelInfo
	if strings.EqualFold(environment, "local") {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", "votegate")
}
