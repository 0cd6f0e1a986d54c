// Package logging provides the leveled logger injected into the engine, the
// rule loader and the viewers.
package logging

import (
	"io"
	"log"
	"strings"
)

// Logger is the logging surface the rest of the module depends on.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel maps a case-insensitive name to a Level, defaulting to info.
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// StdLogger writes leveled lines through a stdlib *log.Logger.
type StdLogger struct {
	level Level
	out   *log.Logger
}

// New returns a StdLogger writing to the standard logger's output.
func New(level string) *StdLogger {
	return &StdLogger{level: ParseLevel(level), out: log.Default()}
}

// NewWriter returns a StdLogger writing to w, mainly for tests and for the
// terminal viewer which cannot share stderr with the screen.
func NewWriter(w io.Writer, level string) *StdLogger {
	return &StdLogger{level: ParseLevel(level), out: log.New(w, "", log.LstdFlags)}
}

// Level reports the minimum level that is written.
func (l *StdLogger) Level() Level { return l.level }

func (l *StdLogger) logf(level Level, tag, format string, v ...any) {
	if level < l.level {
		return
	}
	l.out.Printf(tag+format, v...)
}

// Debugf logs a debug message.
func (l *StdLogger) Debugf(format string, v ...any) { l.logf(LevelDebug, "[DEBUG] ", format, v...) }

// Infof logs an info message.
func (l *StdLogger) Infof(format string, v ...any) { l.logf(LevelInfo, "[INFO] ", format, v...) }

// Warnf logs a warning message.
func (l *StdLogger) Warnf(format string, v ...any) { l.logf(LevelWarn, "[WARN] ", format, v...) }

// Errorf logs an error message.
func (l *StdLogger) Errorf(format string, v ...any) { l.logf(LevelError, "[ERROR] ", format, v...) }

type nop struct{}

func (nop) Debugf(string, ...any) {}
func (nop) Infof(string, ...any)  {}
func (nop) Warnf(string, ...any)  {}
func (nop) Errorf(string, ...any) {}

// Nop returns a logger that discards everything.
func Nop() Logger { return nop{} }
