// Package vlog is a minimal wrapper around a structured logger, the same
// shape as golang-dep's own log.Logger (an embedded writer with Logf/Logln
// helpers) but backed by logrus so plan-engine phases can attach fields
// instead of formatting them into the message by hand.
package vlog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps a *logrus.Logger the way golang-dep's Logger wraps an
// io.Writer -- a thin struct callers pass down the pipeline.
type Logger struct {
	*logrus.Logger
}

// New returns a Logger writing to w at the given level.
func New(w io.Writer, level logrus.Level) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{Logger: l}
}

// Default returns a Logger writing to stderr at info level, the level the
// CLI uses unless -v raises it.
func Default() *Logger {
	return New(os.Stderr, logrus.InfoLevel)
}

// Phase returns an entry prefixed with the current plan-engine phase, the
// structured equivalent of golang-dep's "dep: "-prefixed LogDepfln.
func (l *Logger) Phase(name string) *logrus.Entry {
	return l.WithField("phase", name)
}

// Project returns an entry scoped to one project id.
func (l *Logger) Project(id uint) *logrus.Entry {
	return l.WithField("project_id", id)
}
