package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger adapts a zerolog.Logger to Logger.
type ZeroLogger struct {
	zl zerolog.Logger
}

// NewZeroLogger wraps an existing zerolog logger.
func NewZeroLogger(zl zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{zl: zl}
}

// NewConsoleLogger writes human readable, timestamped lines to w.
func NewConsoleLogger(w io.Writer, app string) *ZeroLogger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return &ZeroLogger{
		zl: zerolog.New(output).With().Timestamp().Str("app", app).Logger(),
	}
}

func (z *ZeroLogger) Info(format string, args ...interface{}) {
	z.zl.Info().Msg(fmt.Sprintf(format, args...))
}

func (z *ZeroLogger) Warning(format string, args ...interface{}) {
	z.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

func (z *ZeroLogger) Error(format string, args ...interface{}) {
	z.zl.Error().Msg(fmt.Sprintf(format, args...))
}

func (z *ZeroLogger) Close() error { return nil }

var _ Logger = (*ZeroLogger)(nil)
