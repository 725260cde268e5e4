package annie

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with index-specific helpers.
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
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithKind adds the index kind to every record.
func (l *Logger) WithKind(kind Kind) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", kind.String()),
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(ctx context.Context, count, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"count", count,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "add completed",
			"count", count,
			"dimension", dimension,
		)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(ctx context.Context, requested, removed int) {
	l.DebugContext(ctx, "remove completed",
		"requested", requested,
		"removed", removed,
	)
}

// LogSearch logs a search operation. A degraded filtered search is a warning.
func (l *Logger) LogSearch(ctx context.Context, k, resultsFound int, report SearchReport, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"error", err,
		)
	case report.Degraded:
		l.WarnContext(ctx, "filtered search hit expansion bound",
			"k", k,
			"results", resultsFound,
			"ef", report.EF,
			"expansions", report.Expansions,
		)
	default:
		l.DebugContext(ctx, "search completed",
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogBatchSearch logs a batch search operation.
func (l *Logger) LogBatchSearch(ctx context.Context, count, failed int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "batch search failed",
			"count", count,
			"error", err,
		)
	case failed > 0:
		l.WarnContext(ctx, "batch search completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	default:
		l.DebugContext(ctx, "batch search completed",
			"count", count,
		)
	}
}

// LogPersist logs a save or load.
func (l *Logger) LogPersist(ctx context.Context, op PersistOp, target string, err error) {
	if err != nil {
		l.ErrorContext(ctx, op.String()+" failed",
			"target", target,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, op.String()+" completed",
			"target", target,
		)
	}
}
