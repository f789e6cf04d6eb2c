package mocklogger

import (
	"sync"

	"github.com/hugolhafner/kreader/logger"
)

var _ logger.Logger = (*MockLogger)(nil)

type LogEntry struct {
	Level   logger.LogLevel
	Message string
	KV      []any
}

type sink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// MockLogger records every entry. Loggers derived with With share the same
// entries, so assertions on the root see everything.
type MockLogger struct {
	sink   *sink
	fields []any
	level  logger.LogLevel
}

// New records entries at every level and reports DebugLevel.
func New() *MockLogger {
	return NewWithLevel(logger.DebugLevel)
}

// NewWithLevel reports level from Level. Entries below it are still recorded.
func NewWithLevel(level logger.LogLevel) *MockLogger {
	return &MockLogger{sink: &sink{}, level: level}
}

func (m *MockLogger) Log(level logger.LogLevel, msg string, kv ...any) {
	all := make([]any, 0, len(m.fields)+len(kv))
	all = append(all, m.fields...)
	all = append(all, kv...)

	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.entries = append(
		m.sink.entries, LogEntry{
			Level:   level,
			Message: msg,
			KV:      all,
		},
	)
}

// Entries returns a copy of the recorded entries.
func (m *MockLogger) Entries() []LogEntry {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()

	out := make([]LogEntry, len(m.sink.entries))
	copy(out, m.sink.entries)
	return out
}

func (m *MockLogger) Level() logger.LogLevel {
	return m.level
}

func (m *MockLogger) With(kv ...any) logger.Logger {
	fields := make([]any, 0, len(m.fields)+len(kv))
	fields = append(fields, m.fields...)
	fields = append(fields, kv...)
	return &MockLogger{sink: m.sink, fields: fields, level: m.level}
}

func (m *MockLogger) Debug(msg string, kv ...any) {
	m.Log(logger.DebugLevel, msg, kv...)
}

func (m *MockLogger) Info(msg string, kv ...any) {
	m.Log(logger.InfoLevel, msg, kv...)
}

func (m *MockLogger) Warn(msg string, kv ...any) {
	m.Log(logger.WarnLevel, msg, kv...)
}

func (m *MockLogger) Error(msg string, kv ...any) {
	m.Log(logger.ErrorLevel, msg, kv...)
}
