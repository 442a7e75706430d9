// Package logging builds the process logger. The terminal belongs to the
// UI, so log lines go to a file in the workspace state directory.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pfassina/quire/internal/config"
)

// EnvLevel overrides the configured log level when set.
const EnvLevel = "QUIRE_LOG_LEVEL"

// Option configures a logger.
type Option func(*logrus.Logger)

// WithOutput sets the logger output.
func WithOutput(w io.Writer) Option {
	return func(l *logrus.Logger) {
		l.SetOutput(w)
	}
}

// Path returns the log file location for cfg.
func Path(cfg config.Config) string {
	return filepath.Join(cfg.StateDir(), "quire.log")
}

// Level resolves the effective level: the environment wins over the
// configured value, and anything unparseable means info.
func Level(configured string) logrus.Level {
	s := configured
	if env := os.Getenv(EnvLevel); env != "" {
		s = env
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// New returns a logger writing to the workspace log file and a function
// that closes it. If the file cannot be opened, output is discarded.
func New(cfg config.Config, opts ...Option) (*logrus.Logger, func()) {
	l := logrus.New()
	l.SetLevel(Level(cfg.LogLevel))
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	l.SetOutput(io.Discard)

	closeFn := func() {}
	path := Path(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			l.SetOutput(f)
			closeFn = func() { _ = f.Close() }
		}
	}

	for _, opt := range opts {
		opt(l)
	}
	return l, closeFn
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
