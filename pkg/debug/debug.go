// Package debug provides leveled logging for laneboard.
//
// Debug output is enabled by setting the LANEBOARD_DEBUG environment variable
// or passing --debug:
//
//	LANEBOARD_DEBUG=1 laneboard --replay script.jsonl
//
// Messages go through a logrus logger. The TUI redirects it to a log file
// because the terminal belongs to the board; headless runs log to stderr.
//
// Usage:
//
//	debug.Log("applied %d actions", n)
//	debug.Event("dispatch", debug.Fields{"kind": kind})
//	defer debug.LogEnterExit("export")()
package debug

import (
	"io"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Fields is re-exported so callers don't import logrus directly.
type Fields = log.Fields

var logger = newLogger(os.Stderr)

func newLogger(w io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000000"})
	l.SetLevel(log.InfoLevel)
	if os.Getenv("LANEBOARD_DEBUG") != "" {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// Configure points the logger at w and sets its level by name
// ("debug", "info", "warn", "error"). Unknown names keep the current level.
func Configure(w io.Writer, level string) {
	if w != nil {
		logger.SetOutput(w)
	}
	if level == "" {
		return
	}
	if lvl, err := log.ParseLevel(strings.ToLower(level)); err == nil {
		logger.SetLevel(lvl)
	}
}

// Logger exposes the underlying logger for tests and advanced callers.
func Logger() *log.Logger {
	return logger
}

// Enabled returns whether debug-level logging is on.
func Enabled() bool {
	return logger.IsLevelEnabled(log.DebugLevel)
}

// SetEnabled toggles debug-level logging.
func SetEnabled(e bool) {
	if e {
		logger.SetLevel(log.DebugLevel)
	} else if Enabled() {
		logger.SetLevel(log.InfoLevel)
	}
}

// Log writes a debug message. Uses printf-style formatting.
func Log(format string, args ...any) {
	logger.Debugf(format, args...)
}

// Info writes an informational message.
func Info(format string, args ...any) {
	logger.Infof(format, args...)
}

// Warn writes a warning.
func Warn(format string, args ...any) {
	logger.Warnf(format, args...)
}

// Error logs err with a short message.
func Error(err error, msg string) {
	logger.WithError(err).Error(msg)
}

// Event writes a structured debug entry.
func Event(msg string, fields Fields) {
	if !Enabled() {
		return
	}
	logger.WithFields(fields).Debug(msg)
}

// LogTiming writes a timing message.
func LogTiming(name string, d time.Duration) {
	if !Enabled() {
		return
	}
	logger.WithField("took", d).Debug(name)
}

// LogEnterExit logs function entry and exit with timing.
//
//	defer debug.LogEnterExit("myFunc")()
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	logger.Debugf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Debugf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if !Enabled() {
		return
	}
	logger.Debugf("%s: %T = %+v", name, v, v)
}
