package logger

import (
	"sync"

	"go.uber.org/zap/zapcore"
)

// Entry is a captured log entry.
type Entry struct {
	Level   zapcore.Level
	Message string
	Fields  []Field
}

type testSink struct {
	mu      sync.Mutex
	entries []Entry
}

// TestLogger captures log entries for assertions in tests. Child loggers
// created via With and Named share the parent's entry sink.
type TestLogger struct {
	sink *testSink
	name string
	with []Field
}

// NewTestLogger creates a capturing logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{sink: &testSink{}}
}

// Entries returns a copy of everything logged so far.
func (l *TestLogger) Entries() []Entry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	out := make([]Entry, len(l.sink.entries))
	copy(out, l.sink.entries)
	return out
}

// Messages returns the messages logged at the given level.
func (l *TestLogger) Messages(level zapcore.Level) []string {
	var msgs []string
	for _, e := range l.Entries() {
		if e.Level == level {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

func (l *TestLogger) log(level zapcore.Level, msg string, fields []Field) {
	all := make([]Field, 0, len(l.with)+len(fields))
	all = append(all, l.with...)
	all = append(all, fields...)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = append(l.sink.entries, Entry{Level: level, Message: msg, Fields: all})
}

func (l *TestLogger) Debug(msg string, fields ...Field) { l.log(zapcore.DebugLevel, msg, fields) }
func (l *TestLogger) Info(msg string, fields ...Field)  { l.log(zapcore.InfoLevel, msg, fields) }
func (l *TestLogger) Warn(msg string, fields ...Field)  { l.log(zapcore.WarnLevel, msg, fields) }
func (l *TestLogger) Error(msg string, fields ...Field) { l.log(zapcore.ErrorLevel, msg, fields) }

func (l *TestLogger) With(fields ...Field) Logger {
	return &TestLogger{
		sink: l.sink,
		name: l.name,
		with: append(append([]Field{}, l.with...), fields...),
	}
}

func (l *TestLogger) Named(name string) Logger {
	child := &TestLogger{sink: l.sink, with: append([]Field{}, l.with...)}
	if l.name == "" {
		child.name = name
	} else {
		child.name = l.name + "." + name
	}
	return child
}
