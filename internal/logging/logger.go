// Package logging is a small leveled logger on top of the standard log
// package. The TUI and GUI viewers own the terminal or window, so the
// logger can be pointed at any writer, a file or io.Discard included.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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

// ParseLevel is case-insensitive and falls back to info.
func ParseLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type Logger struct {
	level Level
	out   *log.Logger
}

// New logs to stderr.
func New(level string) *Logger {
	return NewWithWriter(level, os.Stderr)
}

func NewWithWriter(level string, w io.Writer) *Logger {
	return &Logger{
		level: ParseLevel(level),
		out:   log.New(w, "", log.LstdFlags),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{level: LevelError + 1, out: log.New(io.Discard, "", 0)}
}

func (l *Logger) Level() Level { return l.level }

func (l *Logger) SetLevel(level Level) { l.level = level }

// SetOutput redirects the logger, e.g. away from the terminal while a
// full screen viewer is running.
func (l *Logger) SetOutput(w io.Writer) { l.out.SetOutput(w) }

func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) Debugf(format string, v ...any) { l.logf(LevelDebug, "[DEBUG] ", format, v...) }
func (l *Logger) Infof(format string, v ...any)  { l.logf(LevelInfo, "[INFO] ", format, v...) }
func (l *Logger) Warnf(format string, v ...any)  { l.logf(LevelWarn, "[WARN] ", format, v...) }
func (l *Logger) Errorf(format string, v ...any) { l.logf(LevelError, "[ERROR] ", format, v...) }

func (l *Logger) Debug(v ...any) { l.logf(LevelDebug, "[DEBUG] ", "%s", fmt.Sprint(v...)) }
func (l *Logger) Info(v ...any)  { l.logf(LevelInfo, "[INFO] ", "%s", fmt.Sprint(v...)) }
func (l *Logger) Warn(v ...any)  { l.logf(LevelWarn, "[WARN] ", "%s", fmt.Sprint(v...)) }
func (l *Logger) Error(v ...any) { l.logf(LevelError, "[ERROR] ", "%s", fmt.Sprint(v...)) }

// Fatalf logs regardless of level and exits.
func (l *Logger) Fatalf(format string, v ...any) {
	l.out.Fatalf("[FATAL] "+format, v...)
}

func (l *Logger) logf(level Level, prefix, format string, v ...any) {
	if !l.Enabled(level) {
		return
	}
	l.out.Printf(prefix+format, v...)
}
