package querymon

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with monitor-specific helpers.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogRegister logs a register operation.
func (l *Logger) LogRegister(ctx context.Context, queries, batches int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "register failed",
			"queries", queries,
			"batches", batches,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "register completed",
			"queries", queries,
			"batches", batches,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, ids int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"ids", ids,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"ids", ids,
		)
	}
}

// LogSearch logs a search operation over one document batch.
func (l *Logger) LogSearch(ctx context.Context, docs, candidates int, dur time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"docs", docs,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"docs", docs,
			"candidates", candidates,
			"duration", dur,
		)
	}
}

// LogPurge logs a purge cycle.
func (l *Logger) LogPurge(ctx context.Context, evicted int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "purge failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "purge completed",
			"evicted", evicted,
		)
	}
}

// LogExport logs a corpus export.
func (l *Logger) LogExport(ctx context.Context, name string, queries, parts int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "export completed",
			"name", name,
			"queries", queries,
			"parts", parts,
		)
	}
}
