// Package logger provides a leveled, structured logger built on log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoggerInterface is the contract every component in this codebase logs
// through, so call sites never depend on the concrete slog handler in use.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, kv ...any)
	Info(ctx context.Context, msg string, kv ...any)
	Warn(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, msg string, kv ...any)
	With(kv ...any) LoggerInterface
}

// Logger is the concrete LoggerInterface implementation.
type Logger struct {
	sl *slog.Logger
}

// New builds a Logger writing JSON lines to w at the given level, tagged
// with name and any always-present fields.
func New(w io.Writer, level Level, name string, fields map[string]any) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level.slogLevel()})
	sl := slog.New(h).With("service", name)
	for k, v := range fields {
		sl = sl.With(k, v)
	}
	return &Logger{sl: sl}
}

func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.sl.DebugContext(ctx, msg, kv...)
}

func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.sl.InfoContext(ctx, msg, kv...)
}

func (l *Logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.sl.WarnContext(ctx, msg, kv...)
}

func (l *Logger) Error(ctx context.Context, msg string, kv ...any) {
	l.sl.ErrorContext(ctx, msg, kv...)
}

// With returns a logger that always includes the given key/value pairs,
// used to scope a logger to one venue or one subscriber.
func (l *Logger) With(kv ...any) LoggerInterface {
	return &Logger{sl: l.sl.With(kv...)}
}
