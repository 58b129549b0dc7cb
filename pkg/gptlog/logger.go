package gptlog

/**
 * SPDX-License-Identifier: Apache-2.0
 * Copyright 2020 vorteil.io Pty Ltd
 */

import (
	"github.com/sirupsen/logrus"
)

// Logger is the narrow logging surface gpt operations report through,
// trimmed to the levels a disk-image codec actually emits -- no
// progress-bar reporting, since nothing gpt does is long-running enough
// to warrant one.
type Logger interface {
	Debugf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	IsDebugEnabled() bool
}

// Standard wraps the package-level logrus logger. A Config without a
// Logger does not use it; it falls back to Nop.
type Standard struct {
	IsVerbose bool
}

// Debugf logs at trace level.
func (l *Standard) Debugf(format string, args ...interface{}) {
	logrus.Tracef(format, args...)
}

// Errorf logs at error level.
func (l *Standard) Errorf(format string, args ...interface{}) {
	logrus.Errorf(format, args...)
}

// Infof logs at debug level, and only when IsVerbose; otherwise the message
// is dropped. This gates routine operational messages behind a verbosity
// flag rather than logging them at info level unconditionally.
func (l *Standard) Infof(format string, args ...interface{}) {
	if l.IsVerbose {
		logrus.Debugf(format, args...)
	}
}

// Warnf logs at warn level.
func (l *Standard) Warnf(format string, args ...interface{}) {
	logrus.Warnf(format, args...)
}

// IsDebugEnabled reports whether the process-wide logrus level would emit a
// Debugf call.
func (l *Standard) IsDebugEnabled() bool {
	return logrus.IsLevelEnabled(logrus.DebugLevel)
}

// nopLogger discards everything. Used as the zero-value fallback so a
// Config constructed without a Logger never nil-derefs.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) IsDebugEnabled() bool          { return false }

// Nop returns a Logger that discards all output.
func Nop() Logger { return nopLogger{} }
