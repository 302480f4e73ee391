// Package logging defines the logger port used by the availability packages
// and its zerolog adapter.
package logging

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging port consumed by the core packages.
// Fields are alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	// Time starts a timer identified by label.
	Time(label string)
	// TimeEnd stops the timer and logs its duration at debug level.
	TimeEnd(label string)
}

// ZerologLogger adapts a zerolog.Logger to Logger.
type ZerologLogger struct {
	logger *zerolog.Logger
	timers sync.Map
}

// NewZerolog wraps logger. A nil logger yields a disabled one.
func NewZerolog(logger *zerolog.Logger) *ZerologLogger {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ZerologLogger{logger: logger}
}

// Debug logs at debug level.
func (l *ZerologLogger) Debug(msg string, fields ...interface{}) {
	withFields(l.logger.Debug(), fields).Msg(msg)
}

// Info logs at info level.
func (l *ZerologLogger) Info(msg string, fields ...interface{}) {
	withFields(l.logger.Info(), fields).Msg(msg)
}

// Warn logs at warn level.
func (l *ZerologLogger) Warn(msg string, fields ...interface{}) {
	withFields(l.logger.Warn(), fields).Msg(msg)
}

// Error logs at error level.
func (l *ZerologLogger) Error(msg string, fields ...interface{}) {
	withFields(l.logger.Error(), fields).Msg(msg)
}

// Time starts the timer for label, replacing a running one.
func (l *ZerologLogger) Time(label string) {
	l.timers.Store(label, time.Now())
}

// TimeEnd logs the elapsed time for label. Unknown labels are ignored.
func (l *ZerologLogger) TimeEnd(label string) {
	v, ok := l.timers.LoadAndDelete(label)
	if !ok {
		return
	}
	l.logger.Debug().Str("timer", label).Dur("elapsed", time.Since(v.(time.Time))).Msg("timer finished")
}

func withFields(ev *zerolog.Event, fields []interface{}) *zerolog.Event {
	if ev == nil || len(fields) == 0 {
		return ev
	}
	if len(fields)%2 != 0 {
		fields = append(fields, "(missing)")
	}
	return ev.Fields(fields)
}

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Time(string)                  {}
func (nopLogger) TimeEnd(string)               {}

// OrNop returns l, or a discarding logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
