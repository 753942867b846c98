package pcsrgo

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with pcsrgo-specific context.
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

// WithVertex adds a vertex field to the logger.
func (l *Logger) WithVertex(v uint32) *Logger {
	return &Logger{
		Logger: l.Logger.With("vertex", v),
	}
}

// WithEdge adds src and dst fields to the logger.
func (l *Logger) WithEdge(src, dst uint32) *Logger {
	return &Logger{
		Logger: l.Logger.With("src", src, "dst", dst),
	}
}

// LogInsert logs an edge insert operation.
func (l *Logger) LogInsert(ctx context.Context, src, dst uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"src", src,
			"dst", dst,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"src", src,
			"dst", dst,
		)
	}
}

// LogRemove logs an edge remove operation.
func (l *Logger) LogRemove(ctx context.Context, src, dst uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"src", src,
			"dst", dst,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"src", src,
			"dst", dst,
		)
	}
}

// LogBulkLoad logs the completion of a bulk load phase.
func (l *Logger) LogBulkLoad(ctx context.Context, count int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "bulk load failed",
			"count", count,
			"elapsed", elapsed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "bulk load completed",
			"count", count,
			"elapsed", elapsed,
		)
	}
}

// LogResize logs a doubling or halving of the packed array.
func (l *Logger) LogResize(ctx context.Context, capacity int) {
	l.InfoContext(ctx, "edge list resized",
		"capacity", capacity,
	)
}
