package logger

import "fmt"

// MockLogger records every formatted message. Used by tests.
type MockLogger struct {
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		InfoCalls:    make([]string, 0),
		WarningCalls: make([]string, 0),
		ErrorCalls:   make([]string, 0),
	}
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Close() error {
	m.CloseCalled = true
	return nil
}

// All returns every recorded message regardless of level.
func (m *MockLogger) All() []string {
	all := make([]string, 0, len(m.InfoCalls)+len(m.WarningCalls)+len(m.ErrorCalls))
	all = append(all, m.InfoCalls...)
	all = append(all, m.WarningCalls...)
	return append(all, m.ErrorCalls...)
}

var _ Logger = (*MockLogger)(nil)
