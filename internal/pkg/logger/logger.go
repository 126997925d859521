package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger defines the interface for logging messages.
type Logger interface {
	Error(msg string, err error)
	Warn(msg string)
	Info(msg string)
	Debug(msg string)
}

type logrusLogger struct {
	entry *logrus.Entry
}

// New creates a logger writing to stdout. level is one of debug, info, warn, error
// (default info); format is "json" or "text" (default text).
func New(level, format string) Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter is like New but writes to w.
func NewWithWriter(w io.Writer, level, format string) Logger {
	log := logrus.New()
	log.SetOutput(w)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return &logrusLogger{entry: log.WithField("service", "medreminder")}
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() Logger {
	return NewWithWriter(io.Discard, "error", "text")
}

// Error logs an error message with the 🔴 emoji.
func (l *logrusLogger) Error(msg string, err error) {
	if err != nil {
		l.entry.WithError(err).Error("🔴 " + msg)
		return
	}
	l.entry.Error("🔴 " + msg)
}

// Warn logs a warning message with the ⚠️ emoji.
func (l *logrusLogger) Warn(msg string) {
	l.entry.Warn("⚠️ " + msg)
}

// Info logs an informational message.
func (l *logrusLogger) Info(msg string) {
	l.entry.Info(msg)
}

// Debug logs a debug message.
func (l *logrusLogger) Debug(msg string) {
	l.entry.Debug(msg)
}
