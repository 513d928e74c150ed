// Package log wraps log/slog with small conveniences for the interpreter
// and orchestrator, matching the teacher's pkg/log.Logger shape.
package log

import (
	"log/slog"
	"os"
)

// Logger is a named child of the process-wide default logger.
type Logger struct {
	inner *slog.Logger
}

var defaultHandler slog.Handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})

// SetDefault replaces the handler used by every Logger created afterward.
func SetDefault(h slog.Handler) {
	defaultHandler = h
}

// New returns a Logger tagged with component, e.g. log.New("vm").
func New(component string) *Logger {
	return &Logger{inner: slog.New(defaultHandler).With("component", component)}
}

func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
