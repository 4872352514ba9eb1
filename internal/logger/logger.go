package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// New builds the process logger. Console output is meant for local runs; JSON lines otherwise.
func New(level string, console bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if console {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	return NewWithWriter(out).Level(parseLevel(level))
}

// NewWithWriter creates a logger writing JSON lines to w.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// WithContext stores the logger in ctx.
func WithContext(ctx context.Context, log zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext returns the logger stored in ctx, or fallback when none is set.
func FromContext(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return log
	}

	return fallback
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}

	return lvl
}
