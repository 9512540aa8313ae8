// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"sync"

	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
)

// Entry is one captured log call.  Fields include those bound with With.
type Entry struct {
	Level   logging.Level
	Name    string
	Message string
	Fields  []logging.Field
}

// Field returns the value logged under key, if any.
func (e Entry) Field(key string) (interface{}, bool) {
	for i := len(e.Fields) - 1; i >= 0; i-- {
		if e.Fields[i].Key == key {
			return e.Fields[i].Value, true
		}
	}
	return nil, false
}

type sink struct {
	mu      sync.Mutex
	entries []Entry
}

// RecordingLogger is a logging.Logger that keeps every entry in memory.
// Child loggers from With and Named write to the same sink.
type RecordingLogger struct {
	sink   *sink
	name   string
	fields []logging.Field
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{sink: &sink{}}
}

func (l *RecordingLogger) record(level logging.Level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = append(l.sink.entries, Entry{Level: level, Name: l.name, Message: msg, Fields: all})
}

func (l *RecordingLogger) Debug(msg string, fields ...logging.Field) {
	l.record(logging.LevelDebug, msg, fields)
}

func (l *RecordingLogger) Info(msg string, fields ...logging.Field) {
	l.record(logging.LevelInfo, msg, fields)
}

func (l *RecordingLogger) Warn(msg string, fields ...logging.Field) {
	l.record(logging.LevelWarn, msg, fields)
}

func (l *RecordingLogger) Error(msg string, fields ...logging.Field) {
	l.record(logging.LevelError, msg, fields)
}

// Fatal is recorded at error level and does not exit.
func (l *RecordingLogger) Fatal(msg string, fields ...logging.Field) {
	l.record(logging.LevelError, msg, fields)
}

func (l *RecordingLogger) With(fields ...logging.Field) logging.Logger {
	child := *l
	child.fields = append(append([]logging.Field{}, l.fields...), fields...)
	return &child
}

func (l *RecordingLogger) WithContext(ctx context.Context) logging.Logger {
	if id := logging.RequestIDFromContext(ctx); id != "" {
		return l.With(logging.String("request_id", id))
	}
	return l
}

func (l *RecordingLogger) Named(name string) logging.Logger {
	child := *l
	if l.name != "" {
		child.name = l.name + "." + name
	} else {
		child.name = name
	}
	return &child
}

func (l *RecordingLogger) Sync() error { return nil }

// Entries returns a copy of everything logged so far.
func (l *RecordingLogger) Entries() []Entry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	out := make([]Entry, len(l.sink.entries))
	copy(out, l.sink.entries)
	return out
}

// FilterLevel returns the entries logged at level.
func (l *RecordingLogger) FilterLevel(level logging.Level) []Entry {
	var out []Entry
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the first entry with the given message.
func (l *RecordingLogger) Find(msg string) (Entry, bool) {
	for _, e := range l.Entries() {
		if e.Message == msg {
			return e, true
		}
	}
	return Entry{}, false
}

// Reset drops all recorded entries.
func (l *RecordingLogger) Reset() {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = nil
}
