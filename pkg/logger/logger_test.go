package logger

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStandardLogger_Levels(t *testing.T) {
	tests := []struct {
		name   string
		log    func(l *StandardLogger)
		prefix string
		msg    string
	}{
		{"info", func(l *StandardLogger) { l.Info("validated %d services", 3) }, "[INFO]", "validated 3 services"},
		{"warning", func(l *StandardLogger) { l.Warning("service %s", "inactive") }, "[WARNING]", "service inactive"},
		{"error", func(l *StandardLogger) { l.Error("claim: %v", "mismatch") }, "[ERROR]", "claim: mismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			l := NewStandardLogger(log.New(buf, "", 0))
			tt.log(l)
			out := buf.String()
			if !strings.Contains(out, tt.prefix) {
				t.Errorf("expected %s prefix, got: %s", tt.prefix, out)
			}
			if !strings.Contains(out, tt.msg) {
				t.Errorf("expected %q, got: %s", tt.msg, out)
			}
		})
	}
}

func TestStandardLogger_CloseWithoutFile(t *testing.T) {
	l := NewStandardLogger(log.New(&bytes.Buffer{}, "", 0))
	if err := l.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hmectl.log")
	l, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	l.Info("hello %s", "file")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "[INFO] hello file") {
		t.Errorf("unexpected log file content: %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("expected log file private to owner, got %o", perm)
	}
}

func TestFileLogger_BadPath(t *testing.T) {
	_, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("test")
	l.Warning("test")
	l.Error("test")
	if err := l.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestConsoleLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewConsoleLogger(buf, "hmectl")
	l.Info("info %d", 1)
	l.Warning("warn %d", 2)
	l.Error("error %d", 3)
	out := buf.String()
	for _, want := range []string{"info 1", "warn 2", "error 3", "hmectl"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
	if err := l.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestMockLogger_RecordsCalls(t *testing.T) {
	l := NewMockLogger()
	l.Info("info %d", 1)
	l.Warning("warn %s", "test")
	l.Error("err %v", "fail")

	if len(l.InfoCalls) != 1 || l.InfoCalls[0] != "info 1" {
		t.Errorf("unexpected info calls: %v", l.InfoCalls)
	}
	if len(l.WarningCalls) != 1 || l.WarningCalls[0] != "warn test" {
		t.Errorf("unexpected warning calls: %v", l.WarningCalls)
	}
	if len(l.ErrorCalls) != 1 || l.ErrorCalls[0] != "err fail" {
		t.Errorf("unexpected error calls: %v", l.ErrorCalls)
	}
	if got := l.All(); len(got) != 3 {
		t.Errorf("expected 3 messages, got %v", got)
	}
}

func TestMultiLogger_BroadcastsToAll(t *testing.T) {
	mock1 := NewMockLogger()
	mock2 := NewMockLogger()
	multi := NewMultiLogger(mock1, mock2)

	multi.Info("info msg")
	multi.Warning("warn msg")
	multi.Error("error msg")

	for i, m := range []*MockLogger{mock1, mock2} {
		if len(m.InfoCalls) != 1 || len(m.WarningCalls) != 1 || len(m.ErrorCalls) != 1 {
			t.Errorf("logger %d did not receive every message: %+v", i, m)
		}
	}
}

type failingCloseLogger struct {
	NopLogger
	closeErr error
}

func (f *failingCloseLogger) Close() error {
	return f.closeErr
}

func TestMultiLogger_Close_ReturnsFirstError(t *testing.T) {
	err1 := errors.New("logger1 failed to close")
	err2 := errors.New("logger2 failed to close")
	mock := NewMockLogger()

	multi := NewMultiLogger(&failingCloseLogger{closeErr: err1}, mock, &failingCloseLogger{closeErr: err2})
	err := multi.Close()
	if !errors.Is(err, err1) {
		t.Errorf("expected first error %v, got %v", err1, err)
	}
	if !mock.CloseCalled {
		t.Error("expected mock logger to be closed even after first error")
	}
}

func TestMultiLogger_Empty(t *testing.T) {
	multi := NewMultiLogger()
	multi.Info("test")
	if err := multi.Close(); err != nil {
		t.Errorf("expected nil error, got: %v", err)
	}
}

func TestMultiLogger_SkipsNil(t *testing.T) {
	mock := NewMockLogger()
	multi := NewMultiLogger(nil, mock, nil)
	multi.Warning("cookies %s", "X-APPLE-WEBAUTH-TOKEN")
	if err := multi.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(mock.WarningCalls) != 1 || !mock.CloseCalled {
		t.Errorf("nil backends must be skipped, got %+v", mock)
	}
}
