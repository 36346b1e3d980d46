// Package testutil provides shared fixtures and a recording logger for the
// billing packages' tests.
package testutil

import (
	"sync"

	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger and records every message.
type MockLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
	fields   []logging.Field
	shared   *MockLogger
}

// LogMessage is a single captured log line.
type LogMessage struct {
	Level   string
	Message string
	Fields  []logging.Field
}

func NewMockLogger() *MockLogger {
	return &MockLogger{Messages: make([]LogMessage, 0)}
}

func (m *MockLogger) root() *MockLogger {
	if m.shared != nil {
		return m.shared
	}
	return m
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	all := append(append([]logging.Field(nil), m.fields...), fields...)
	r.Messages = append(r.Messages, LogMessage{Level: level, Message: msg, Fields: all})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

// With returns a child that writes into the same message list.
func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	return &MockLogger{
		fields: append(append([]logging.Field(nil), m.fields...), fields...),
		shared: m.root(),
	}
}

func (m *MockLogger) Named(name string) logging.Logger {
	return m.With(logging.String("logger", name))
}

func (m *MockLogger) Sync() error {
	return nil
}

// GetMessages returns a copy of all logged messages.
func (m *MockLogger) GetMessages() []LogMessage {
	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]LogMessage, len(r.Messages))
	copy(result, r.Messages)
	return result
}

// Clear removes all logged messages.
func (m *MockLogger) Clear() {
	r := m.root()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = r.Messages[:0]
}

// HasMessage checks if a message with the given level and content was logged.
func (m *MockLogger) HasMessage(level, msg string) bool {
	for _, logged := range m.GetMessages() {
		if logged.Level == level && logged.Message == msg {
			return true
		}
	}
	return false
}

// Field returns the value of key on the first message matching msg.
func (m *MockLogger) Field(msg, key string) (interface{}, bool) {
	for _, logged := range m.GetMessages() {
		if logged.Message != msg {
			continue
		}
		for _, f := range logged.Fields {
			if f.Key == key {
				return f.Value, true
			}
		}
	}
	return nil, false
}

var _ logging.Logger = (*MockLogger)(nil)

//Personal.AI order the ending
