package shadercache

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with shadercache-specific context.
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
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithStage adds a stage field to the logger.
func (l *Logger) WithStage(stage Stage) *Logger {
	return &Logger{
		Logger: l.Logger.With("stage", stage.String()),
	}
}

// LogAdd logs a bundle insertion.
func (l *Logger) LogAdd(key Key, bundles int, err error) {
	if err != nil {
		l.Error("bundle add failed",
			"error", err,
		)
		return
	}
	l.Debug("bundle added",
		"ids", key[:],
		"bundles", bundles,
	)
}

// LogDuplicate logs a bundle that replaced an existing bundle with the same key.
func (l *Logger) LogDuplicate(key Key) {
	l.Warn("bundle key already present, replacing",
		"ids", key[:],
	)
}

// LogCompile logs a compile triggered by a cache miss.
func (l *Logger) LogCompile(ctx context.Context, addrs Addresses, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compile failed",
			"addresses", addrs[:],
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "compile completed",
			"addresses", addrs[:],
			"duration", duration,
		)
	}
}

// LogFetch logs a stage whose bytecode could not be read.
func (l *Logger) LogFetch(ctx context.Context, stage Stage, addr uint64, err error) {
	l.WithStage(stage).WarnContext(ctx, "stage fetch failed",
		"address", addr,
		"error", err,
	)
}
