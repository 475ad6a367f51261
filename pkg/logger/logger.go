package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with the progress helpers used by the CLI.
// Everything goes to stderr; stdout carries OCR results only.
type Logger struct {
	entry   *logrus.Entry
	verbose bool
}

// NewLogger creates a stderr logger with the given level and verbose mode
func NewLogger(level string, verbose bool) *Logger {
	return NewLoggerWithOutput(os.Stderr, level, verbose)
}

// NewLoggerWithOutput creates a logger writing to w
func NewLoggerWithOutput(w io.Writer, level string, verbose bool) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(parseLogLevel(level))
	base.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})

	return &Logger{
		entry:   logrus.NewEntry(base),
		verbose: verbose,
	}
}

// WithField returns a logger that attaches key=value to every line
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value), verbose: l.verbose}
}

// Debug logs debug information
func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// Info logs informational messages (only in verbose mode)
func (l *Logger) Info(format string, args ...interface{}) {
	if l.verbose {
		l.entry.Infof(format, args...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// ProgressAlways prints a milestone regardless of verbose mode
func (l *Logger) ProgressAlways(emoji, format string, args ...interface{}) {
	l.progress(emoji, format, args...)
}

// Progress prints step-by-step details in verbose mode
func (l *Logger) Progress(emoji, format string, args ...interface{}) {
	if l.verbose {
		l.progress(emoji, format, args...)
	}
}

// Verbose reports whether progress output is enabled
func (l *Logger) Verbose() bool {
	return l.verbose
}

func (l *Logger) progress(emoji, format string, args ...interface{}) {
	fmt.Fprintf(l.entry.Logger.Out, "%s %s\n", emoji, fmt.Sprintf(format, args...))
}

// parseLogLevel converts a config string to a logrus level, defaulting to info
func parseLogLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "warning":
		return logrus.WarnLevel
	case "debug", "info", "warn", "error":
		lvl, _ := logrus.ParseLevel(level)
		return lvl
	default:
		return logrus.InfoLevel
	}
}

// IsValidLevel reports whether level is accepted by the logger
func IsValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// DefaultLogger returns a default logger instance
func DefaultLogger() *Logger {
	return NewLogger("info", false)
}

// Discard returns a logger that drops everything, handy in tests
func Discard() *Logger {
	return NewLoggerWithOutput(io.Discard, "error", false)
}
