// Package observability provides structured logging context helpers shared
// by the managers and the CLI.
package observability

import (
	"context"
	"log/slog"
)

// LogContext holds structured logging context information.
type LogContext struct {
	WorkdayID string
	ShiftID   string
	WeekID    string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithWorkdayID adds a workday id to the context.
func WithWorkdayID(ctx context.Context, workdayID string) context.Context {
	lc := extractLogContext(ctx)
	lc.WorkdayID = workdayID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithShiftID adds a shift id to the context.
func WithShiftID(ctx context.Context, shiftID string) context.Context {
	lc := extractLogContext(ctx)
	lc.ShiftID = shiftID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithWeekID adds a week id to the context.
func WithWeekID(ctx context.Context, weekID string) context.Context {
	lc := extractLogContext(ctx)
	lc.WeekID = weekID
	return context.WithValue(ctx, logContextKey, lc)
}

// GetContext returns the structured log context from the provided context.
func GetContext(ctx context.Context) LogContext {
	return extractLogContext(ctx)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}

	if lc.WorkdayID != "" {
		attrs = append(attrs, slog.String("workday.id", lc.WorkdayID))
	}
	if lc.ShiftID != "" {
		attrs = append(attrs, slog.String("shift.id", lc.ShiftID))
	}
	if lc.WeekID != "" {
		attrs = append(attrs, slog.String("week.id", lc.WeekID))
	}

	return attrs
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	allAttrs := append(getLogAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, slog.LevelInfo, msg, allAttrs...)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	allAttrs := append(getLogAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, slog.LevelWarn, msg, allAttrs...)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	allAttrs := append(getLogAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, slog.LevelError, msg, allAttrs...)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	allAttrs := append(getLogAttrs(ctx), attrs...)
	slog.LogAttrs(ctx, slog.LevelDebug, msg, allAttrs...)
}
