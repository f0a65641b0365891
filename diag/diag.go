// Package diag is the structured logger shared by the compiler and VM. A
// single logrus.Logger is created once and injected, rather than calling
// the global logrus functions ad hoc from every package.
package diag

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   false,
		FullTimestamp:   false,
		DisableTimestamp: true,
	})
	return l
}

// Logger returns the shared logger instance.
func Logger() *logrus.Logger {
	return logger
}

// SetLevel adjusts the shared logger's verbosity (Warn by default).
func SetLevel(level logrus.Level) {
	logger.SetLevel(level)
}
