package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns the JSON logger every component logs through. Records
// made with a span in the context carry its trace and span ids.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler)).With("service", "todohub", "env", env)
}
