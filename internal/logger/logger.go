// Package logger provides leveled, printf-style logging backed by logrus.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var std = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Init configures the default logger. Unknown levels fall back to info;
// format is "text" or "json".
func Init(level string, format string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	std.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		std.SetFormatter(&logrus.JSONFormatter{})
	} else {
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// SetOutput redirects the default logger, mainly for tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// Logrus exposes the underlying logger; serve routes the echo access log
// through its Writer.
func Logrus() *logrus.Logger {
	return std
}

// WithFields returns an entry carrying structured fields.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return std.WithFields(logrus.Fields(fields))
}

// Debug logs a message at DebugLevel
func Debug(format string, args ...interface{}) {
	std.Debugf(format, args...)
}

// Info logs a message at InfoLevel
func Info(format string, args ...interface{}) {
	std.Infof(format, args...)
}

// Warn logs a message at WarnLevel
func Warn(format string, args ...interface{}) {
	std.Warnf(format, args...)
}

// Error logs a message at ErrorLevel
func Error(format string, args ...interface{}) {
	std.Errorf(format, args...)
}

// Fatal logs a message and exits
func Fatal(format string, args ...interface{}) {
	std.Fatalf(format, args...)
}
