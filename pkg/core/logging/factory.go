// ============================================================================
// TheCalcularoty - LC Calculator
// ============================================================================
//
// Package:     logging
// Description: Process-wide logger settings from the [general] config section
// Author:      Nicolas5241
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"
	"sync"

	mdwlog "github.com/Nicolas5241/TheCalcularoty/foundation/core/log"
)

// LoggerConfig selects level, format and outputs by name, as they appear
// in config files and flags. Unknown names fall back to info and text.
type LoggerConfig struct {
	ServiceName       string
	Level             string
	Format            string
	Output            io.Writer // stderr when nil
	AdditionalOutputs []io.Writer
}

var settings = struct {
	sync.RWMutex
	cfg LoggerConfig
}{cfg: LoggerConfig{Level: "info", Format: "text"}}

// DefaultLoggerConfig returns the process-wide settings for serviceName
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	settings.RLock()
	cfg := settings.cfg
	settings.RUnlock()

	cfg.ServiceName = serviceName
	return cfg
}

// Configure replaces the process-wide settings. Loggers created before the
// call keep theirs; the foundation default logger is replaced.
func Configure(cfg LoggerConfig) {
	settings.Lock()
	settings.cfg = cfg
	settings.cfg.ServiceName = ""
	settings.Unlock()

	mdwlog.SetDefault(NewLogger(cfg))
}

// NewLogger builds a foundation logger from cfg
func NewLogger(cfg LoggerConfig) *mdwlog.Logger {
	level, _ := mdwlog.ParseLevel(cfg.Level)
	format, _ := mdwlog.ParseFormat(cfg.Format)

	return mdwlog.NewWithConfig(mdwlog.Config{
		Level:  level,
		Format: format,
		Output: cfg.writer(),
		Name:   cfg.ServiceName,
	})
}

func (cfg LoggerConfig) writer() io.Writer {
	var out io.Writer = os.Stderr
	if cfg.Output != nil {
		out = cfg.Output
	}
	if len(cfg.AdditionalOutputs) == 0 {
		return out
	}
	return io.MultiWriter(append([]io.Writer{out}, cfg.AdditionalOutputs...)...)
}

// NewSimpleLogger builds a foundation logger with the process-wide settings
func NewSimpleLogger(serviceName string) *mdwlog.Logger {
	return NewLogger(DefaultLoggerConfig(serviceName))
}
