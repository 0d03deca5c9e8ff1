// Package logger builds the logrus logger shared by the CLI and the Lambda handler.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options controls how New configures the logger.
type Options struct {
	// Level is one of debug, info, warn or error. Unknown values mean info.
	Level string
	// Debug forces the debug level regardless of Level.
	Debug bool
	// JSON selects the JSON formatter, used under Lambda where CloudWatch indexes fields.
	JSON bool
	// Output defaults to stderr so stdout stays clean for command output.
	Output io.Writer
}

// New returns a configured logger.
func New(opts Options) *logrus.Logger {
	log := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)
	log.SetLevel(ParseLevel(opts.Level))
	if opts.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	if opts.JSON {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	}
	return log
}

// ParseLevel maps a LOG_LEVEL value to a logrus level.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
