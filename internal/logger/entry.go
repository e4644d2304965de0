package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry carries per-event fields such as duration and status. Tracing fields
// come from the context passed at log time.
type Entry struct {
	fields Fields
}

// With creates a new Entry with the given fields.
// Example: logger.With(logger.Fields{logger.FieldURL: u}).Since(start).Info(ctx, "Fetched")
func With(fields Fields) *Entry {
	e := &Entry{fields: make(Fields, len(fields))}
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// With returns a copy of e with fields added.
func (e *Entry) With(fields Fields) *Entry {
	merged := With(e.fields)
	for k, v := range fields {
		merged.fields[k] = v
	}
	return merged
}

// Since adds the milliseconds elapsed since start as duration_ms.
func (e *Entry) Since(start time.Time) *Entry {
	return e.With(Fields{FieldDurationMs: time.Since(start).Milliseconds()})
}

// WithStatus adds a status field.
func (e *Entry) WithStatus(status string) *Entry {
	return e.With(Fields{FieldStatus: status})
}

// Debug logs at Debug level.
func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.DebugLevel, format, args...)
}

// Info logs at Info level.
func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.InfoLevel, format, args...)
}

// Warn logs at Warn level.
func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.WarnLevel, format, args...)
}

// Error logs at Error level.
func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.log(ctx, logrus.ErrorLevel, format, args...)
}

func (e *Entry) log(ctx context.Context, level logrus.Level, format string, args ...interface{}) {
	FromContext(ctx).WithFields(e.fields).Logf(level, format, args...)
}
