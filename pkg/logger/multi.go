package logger

// MultiLogger sends every message to several backends in order. hmectl
// uses it to log to the console and a log file at the same time.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines loggers. Nil entries are dropped, so optional
// backends can be passed without checks.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{loggers: make([]Logger, 0, len(loggers))}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

// Info logs to every backend.
func (m *MultiLogger) Info(format string, args ...interface{}) {
	m.each(func(l Logger) { l.Info(format, args...) })
}

// Warning logs to every backend.
func (m *MultiLogger) Warning(format string, args ...interface{}) {
	m.each(func(l Logger) { l.Warning(format, args...) })
}

// Error logs to every backend.
func (m *MultiLogger) Error(format string, args ...interface{}) {
	m.each(func(l Logger) { l.Error(format, args...) })
}

func (m *MultiLogger) each(fn func(Logger)) {
	for _, l := range m.loggers {
		fn(l)
	}
}

// Close closes every backend, even after a failure, and returns the
// first error.
func (m *MultiLogger) Close() error {
	var firstErr error
	m.each(func(l Logger) {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	return firstErr
}

var _ Logger = (*MultiLogger)(nil)
