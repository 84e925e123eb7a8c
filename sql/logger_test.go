package sql

import (
	"sync"

	"github.com/kroma-labs/sqllog-go/sqllog"
)

type logEntry struct {
	level    sqllog.Level
	template string
	args     []any
	fields   map[string]any
}

// recordingLogger keeps every line written through it or its children.
type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
	fields  map[string]any
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{
		mu:      &sync.Mutex{},
		entries: &[]logEntry{},
		fields:  map[string]any{},
	}
}

func (l *recordingLogger) Log(level sqllog.Level, template string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, logEntry{level: level, template: template, args: args, fields: l.fields})
}

func (l *recordingLogger) Error(_ error, template string, args ...any) {
	l.Log(sqllog.ErrorLevel, template, args...)
}

func (l *recordingLogger) Enabled(sqllog.Level) bool {
	return true
}

func (l *recordingLogger) ForContext(name string) sqllog.Logger {
	return l.With(sqllog.SourceContextKey, name)
}

func (l *recordingLogger) With(key string, value any) sqllog.Logger {
	fields := make(map[string]any, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value
	return &recordingLogger{mu: l.mu, entries: l.entries, fields: fields}
}

func (l *recordingLogger) all() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry(nil), *l.entries...)
}
