package mocklogger

import (
	"reflect"
	"testing"

	"github.com/hugolhafner/kreader/logger"
)

// Field returns the value logged under key, the last one when the key repeats.
func (e LogEntry) Field(key string) (any, bool) {
	var (
		value any
		found bool
	)
	for i := 0; i+1 < len(e.KV); i += 2 {
		if k, ok := e.KV[i].(string); ok && k == key {
			value, found = e.KV[i+1], true
		}
	}
	return value, found
}

func (m *MockLogger) count(match func(LogEntry) bool) int {
	n := 0
	for _, entry := range m.Entries() {
		if match(entry) {
			n++
		}
	}
	return n
}

func hasMessage(message string) func(LogEntry) bool {
	return func(e LogEntry) bool { return e.Message == message }
}

func (m *MockLogger) AssertCalledWithMessage(tb testing.TB, message string) {
	tb.Helper()

	if m.count(hasMessage(message)) == 0 {
		tb.Errorf("expected log message '%s' to be called", message)
	}
}

func (m *MockLogger) AssertNotCalledWithMessage(tb testing.TB, message string) {
	tb.Helper()

	if n := m.count(hasMessage(message)); n > 0 {
		tb.Errorf("expected log message '%s' to NOT be called, got it %d times", message, n)
	}
}

func (m *MockLogger) AssertCalledWithLevelAndMessage(tb testing.TB, level logger.LogLevel, message string) {
	tb.Helper()

	n := m.count(func(e LogEntry) bool { return e.Level == level && e.Message == message })
	if n == 0 {
		tb.Errorf("expected log with level '%s' and message '%s' to be called", level.String(), message)
	}
}

// AssertCalled expects an entry with exactly these fields, derived fields included.
func (m *MockLogger) AssertCalled(tb testing.TB, level logger.LogLevel, message string, kv ...any) {
	tb.Helper()

	n := m.count(
		func(e LogEntry) bool {
			return e.Level == level && e.Message == message && reflect.DeepEqual(e.KV, kv)
		},
	)
	if n == 0 {
		tb.Errorf("expected log with level '%s', message '%s' and fields %v to be called", level.String(), message, kv)
	}
}

// AssertField expects at least one entry with message to carry key=value.
func (m *MockLogger) AssertField(tb testing.TB, message, key string, value any) {
	tb.Helper()

	n := m.count(
		func(e LogEntry) bool {
			v, ok := e.Field(key)
			return e.Message == message && ok && reflect.DeepEqual(v, value)
		},
	)
	if n == 0 {
		tb.Errorf("expected log message '%s' with %s=%v", message, key, value)
	}
}

// AssertCount verifies how many entries were logged with message.
func (m *MockLogger) AssertCount(tb testing.TB, message string, expected int) {
	tb.Helper()

	if n := m.count(hasMessage(message)); n != expected {
		tb.Errorf("expected log message '%s' %d times, got %d", message, expected, n)
	}
}
