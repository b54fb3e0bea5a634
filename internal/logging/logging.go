// Package logging builds the diagnostics logger shared by the scanner and
// the front-ends.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to out at the given level name
// ("debug", "info", "warn", ...).
//
// An empty level means info. Unknown names are an error.
func New(out io.Writer, level string) (*logrus.Entry, error) {
	lvl := logrus.InfoLevel
	if level != "" {
		var err error
		lvl, err = logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadLevel, err)
		}
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	entry := logrus.NewEntry(logger)
	entry.WithField("log level", lvl).Debug("Set log level")

	return entry, nil
}

// Discard returns a logger that drops everything. Used when no logger is
// supplied and by tests.
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)

	return logrus.NewEntry(logger)
}
