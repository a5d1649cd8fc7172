// ============================================================================
// TheCalcularoty - LC Calculator
// ============================================================================
//
// Package:     logging
// Description: Key-value logging on top of the foundation logger
// Author:      Nicolas5241
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	mdwlog "github.com/Nicolas5241/TheCalcularoty/foundation/core/log"
)

// Level is the foundation level; services only use these four
type Level = mdwlog.Level

const (
	LevelDebug = mdwlog.LevelDebug
	LevelInfo  = mdwlog.LevelInfo
	LevelWarn  = mdwlog.LevelWarn
	LevelError = mdwlog.LevelError
)

// Logger adds key-value methods to a named foundation logger:
//
//	logger.Info("Calculated", "mode", "series", "frequency_hz", f)
//
// A trailing key without value, or a key that is not a string, is dropped.
type Logger struct {
	*mdwlog.Logger
	name string
}

// New creates a logger with the process-wide settings
func New(name string) *Logger {
	return &Logger{Logger: NewSimpleLogger(name), name: name}
}

// Wrap names an existing foundation logger
func Wrap(logger *mdwlog.Logger, name string) *Logger {
	return &Logger{Logger: logger.WithName(name), name: name}
}

func (l *Logger) derive(inner *mdwlog.Logger) *Logger {
	return &Logger{Logger: inner, name: l.name}
}

func (l *Logger) Name() string { return l.name }

// WithLevel returns a copy logging at level and above
func (l *Logger) WithLevel(level Level) *Logger {
	return l.derive(l.Logger.WithLevel(level))
}

// With returns a copy adding the key-value pairs to every entry
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return l.derive(l.Logger.WithFields(toFields(keysAndValues...)))
}

// WithRequestID returns a copy tagging every entry with requestID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.derive(l.Logger.WithRequestID(requestID))
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

func toFields(keysAndValues ...interface{}) mdwlog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(mdwlog.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
