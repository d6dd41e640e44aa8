package rocketsim

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger with rocketsim-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithRun adds a run_id field to the logger.
func (l *Logger) WithRun(id uuid.UUID) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id.String()),
	}
}

// WithSubsystem adds a subsystem field to the logger.
func (l *Logger) WithSubsystem(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("subsystem", name),
	}
}

// LogStart logs the beginning of a run.
func (l *Logger) LogStart(ctx context.Context, scenario string, resources, subsystems int) {
	l.InfoContext(ctx, "simulation started",
		"scenario", scenario,
		"resources", resources,
		"subsystems", subsystems,
	)
}

// LogOutcome logs the end of a run.
func (l *Logger) LogOutcome(ctx context.Context, r *Result, err error) {
	if err != nil {
		l.ErrorContext(ctx, "simulation failed",
			"outcome", r.Outcome.String(),
			"duration", r.Duration,
			"events", r.Events,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "simulation finished",
		"outcome", r.Outcome.String(),
		"duration", r.Duration,
		"events", r.Events,
	)
}

// LogJournal logs a journal flush.
func (l *Logger) LogJournal(ctx context.Context, name string, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "journal flush failed",
			"name", name,
			"records", records,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "journal written",
			"name", name,
			"records", records,
		)
	}
}

// LogPanic logs a recovered panic with its stack.
func (l *Logger) LogPanic(task string, value any, stack []byte) {
	l.Error("panic recovered",
		"task", task,
		"panic", value,
		"stack", string(stack),
	)
}
