package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields is an alias so callers don't need to import logrus directly.
type Fields = logrus.Fields

var std = newLogger(os.Stdout)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel parses a level name (debug, info, warn, error). Unknown names keep
// the current level.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		std.Warnf("unknown log level %q, keeping %s", level, std.GetLevel())
		return
	}
	std.SetLevel(lvl)
}

// SetOutput redirects all log output, mostly for tests and the TUI which owns
// the terminal.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetJSON switches to the JSON formatter for log shipping.
func SetJSON() {
	std.SetFormatter(&logrus.JSONFormatter{})
}

func WithFields(fields Fields) *logrus.Entry {
	return std.WithFields(fields)
}

func Info(format string, v ...interface{}) {
	std.Infof(format, v...)
}

func Warn(format string, v ...interface{}) {
	std.Warnf(format, v...)
}

func Error(format string, v ...interface{}) {
	std.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	std.Debugf(format, v...)
}

func Fatal(format string, v ...interface{}) {
	std.Fatalf(format, v...)
}
