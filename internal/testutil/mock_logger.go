// Package testutil holds test helpers shared across packages.
package testutil

import (
	"strings"
	"sync"

	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
)

// LogMessage is one entry captured by MockLogger. Fields include those bound
// with With.
type LogMessage struct {
	Level   string
	Name    string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the named field.
func (m LogMessage) Field(key string) (interface{}, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

type logStore struct {
	mu       sync.Mutex
	messages []LogMessage
}

// MockLogger records every entry. Children created with With and Named write
// to the same store, so a test can hand a MockLogger to code that derives
// its own loggers and still see everything.
type MockLogger struct {
	store  *logStore
	name   string
	fields []logging.Field
}

// NewMockLogger creates a new MockLogger instance.
func NewMockLogger() *MockLogger {
	return &MockLogger{store: &logStore{}}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)

	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.messages = append(m.store.messages, LogMessage{Level: level, Name: m.name, Message: msg, Fields: all})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) {
	m.log(logging.LevelDebug, msg, fields)
}

func (m *MockLogger) Info(msg string, fields ...logging.Field) {
	m.log(logging.LevelInfo, msg, fields)
}

func (m *MockLogger) Warn(msg string, fields ...logging.Field) {
	m.log(logging.LevelWarn, msg, fields)
}

func (m *MockLogger) Error(msg string, fields ...logging.Field) {
	m.log(logging.LevelError, msg, fields)
}

// Fatal records the entry without exiting.
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) {
	m.log("fatal", msg, fields)
}

func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	child := &MockLogger{store: m.store, name: m.name}
	child.fields = append(append(child.fields, m.fields...), fields...)
	return child
}

func (m *MockLogger) Named(name string) logging.Logger {
	child := &MockLogger{store: m.store, fields: m.fields, name: name}
	if m.name != "" {
		child.name = m.name + "." + name
	}
	return child
}

// GetMessages returns a copy of all logged messages.
func (m *MockLogger) GetMessages() []LogMessage {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	result := make([]LogMessage, len(m.store.messages))
	copy(result, m.store.messages)
	return result
}

// Clear removes all logged messages.
func (m *MockLogger) Clear() {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.messages = nil
}

// HasMessage checks if a message with the given level and content was logged.
func (m *MockLogger) HasMessage(level, msg string) bool {
	return m.Count(level, msg) > 0
}

// Count returns how many entries match level and msg.
func (m *MockLogger) Count(level, msg string) int {
	n := 0
	for _, logged := range m.GetMessages() {
		if logged.Level == level && logged.Message == msg {
			n++
		}
	}
	return n
}

// Find returns the first entry whose message contains substr.
func (m *MockLogger) Find(substr string) (LogMessage, bool) {
	for _, logged := range m.GetMessages() {
		if strings.Contains(logged.Message, substr) {
			return logged, true
		}
	}
	return LogMessage{}, false
}
