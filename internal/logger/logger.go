// Package logger is the leveled logging interface rpio components write to.
// The runtime implementation is a zerolog console writer on stderr; tests
// pass a BufferLogger and inspect what was recorded.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DebugEnv enables debug output when set to any non-empty value.
const DebugEnv = "RPIO_DEBUG"

// Logger takes printf-style messages at four levels.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// NewEnvLogger logs to stderr, tagging every line with component when it is
// not empty. Debug lines are dropped unless RPIO_DEBUG is set.
func NewEnvLogger(component string) Logger {
	return newZeroLogger(component, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

type zeroLogger struct {
	zl zerolog.Logger
}

func newZeroLogger(component string, w io.Writer) *zeroLogger {
	ctx := zerolog.New(w).With().Timestamp()
	if component != "" {
		ctx = ctx.Str("component", component)
	}
	return &zeroLogger{zl: ctx.Logger()}
}

func (l *zeroLogger) Debug(format string, args ...interface{}) {
	if os.Getenv(DebugEnv) == "" {
		return
	}
	l.zl.Debug().Msgf(format, args...)
}

func (l *zeroLogger) Info(format string, args ...interface{})  { l.zl.Info().Msgf(format, args...) }
func (l *zeroLogger) Warn(format string, args ...interface{})  { l.zl.Warn().Msgf(format, args...) }
func (l *zeroLogger) Error(format string, args ...interface{}) { l.zl.Error().Msgf(format, args...) }

// Noop returns a logger that discards everything.
func Noop() Logger { return noop{} }

type noop struct{}

func (noop) Debug(string, ...interface{}) {}
func (noop) Info(string, ...interface{})  {}
func (noop) Warn(string, ...interface{})  {}
func (noop) Error(string, ...interface{}) {}

// Entry is one message recorded by a BufferLogger.
type Entry struct {
	Level   zerolog.Level
	Message string
}

// BufferLogger records every message, debug included, regardless of
// RPIO_DEBUG.
type BufferLogger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewBufferLogger returns an empty BufferLogger.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{}
}

func (l *BufferLogger) record(level zerolog.Level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) {
	l.record(zerolog.DebugLevel, format, args)
}

func (l *BufferLogger) Info(format string, args ...interface{}) {
	l.record(zerolog.InfoLevel, format, args)
}

func (l *BufferLogger) Warn(format string, args ...interface{}) {
	l.record(zerolog.WarnLevel, format, args)
}

func (l *BufferLogger) Error(format string, args ...interface{}) {
	l.record(zerolog.ErrorLevel, format, args)
}

// Entries returns a copy of what has been recorded so far.
func (l *BufferLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Messages returns the recorded messages at level, in order.
func (l *BufferLogger) Messages(level zerolog.Level) []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
