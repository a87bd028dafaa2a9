package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

var (
	// root is the process-wide logger instance
	root *Logger
	once sync.Once
)

// Logger wraps logrus with printf-style helpers and an optional component field
type Logger struct {
	*logrus.Logger
	fields logrus.Fields
	green  *color.Color
	red    *color.Color
	yellow *color.Color
}

// New returns the shared root logger, creating it on first use
func New() *Logger {
	once.Do(func() {
		root = &Logger{
			Logger: logrus.New(),
			fields: logrus.Fields{},
			green:  color.New(color.FgGreen),
			red:    color.New(color.FgRed),
			yellow: color.New(color.FgYellow),
		}

		root.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006/01/02 15:04:05",
			FullTimestamp:   true,
			ForceColors:     true,
			DisableSorting:  true,
		})

		if os.Getenv("DEBUG") == "true" {
			root.Logger.SetLevel(logrus.DebugLevel)
			root.Info("Debug logging enabled")
		} else {
			root.Logger.SetLevel(logrus.InfoLevel)
		}
	})
	return root
}

// Named returns a child logger whose entries carry the given component name.
// Children share the parent's output and level.
func (l *Logger) Named(component string) *Logger {
	fields := make(logrus.Fields, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields["component"] = component
	return &Logger{
		Logger: l.Logger,
		fields: fields,
		green:  l.green,
		red:    l.red,
		yellow: l.yellow,
	}
}

// SetLevelName sets the level from a name such as "debug" or "warn".
// Unknown names leave the level unchanged.
func (l *Logger) SetLevelName(name string) {
	if name == "" {
		return
	}
	level, err := logrus.ParseLevel(strings.ToLower(name))
	if err != nil {
		l.Warn("Ignoring unknown log level %q", name)
		return
	}
	l.Logger.SetLevel(level)
}

// Silence routes output to io.Discard, used by tests.
func (l *Logger) Silence() {
	l.Logger.SetOutput(io.Discard)
}

func (l *Logger) entry() *logrus.Entry {
	return l.Logger.WithFields(l.fields)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry().Debug(fmt.Sprintf(format, args...))
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.entry().Info(fmt.Sprintf(format, args...))
}

// Success logs an info message rendered in green
func (l *Logger) Success(format string, args ...interface{}) {
	l.entry().Info(l.green.Sprintf(format, args...))
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry().Warn(l.yellow.Sprintf(format, args...))
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.entry().Error(l.red.Sprintf(format, args...))
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.entry().Fatal(fmt.Sprintf(format, args...))
}

// IsDebugEnabled returns whether debug logging is enabled
func (l *Logger) IsDebugEnabled() bool {
	return l.GetLevel() == logrus.DebugLevel
}
