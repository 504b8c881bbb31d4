// Package logging builds the logrus loggers used across driverman.
//
// Library packages accept a logrus.FieldLogger and fall back to Discard when
// none is provided, so callers only get output they asked for.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Format selects the log output encoding.
type Format string

const (
	// FormatText is human readable key=value output.
	FormatText Format = "text"
	// FormatJSON emits one JSON object per line.
	FormatJSON Format = "json"
)

// Options configures New.
type Options struct {
	Out     io.Writer
	Verbose bool
	Format  Format
}

// New creates a logger writing to opts.Out at info level, or debug level when
// Verbose is set.
func New(opts Options) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(opts.Out)
	logger.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	switch Format(strings.ToLower(string(opts.Format))) {
	case FormatText, "":
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: !opts.Verbose,
		})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q (expected text or json)", opts.Format)
	}

	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// OrDiscard returns logger, or a discarding logger when logger is nil.
func OrDiscard(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger == nil {
		return Discard()
	}
	return logger
}
