// File: level.go
// Title: Log Level Definitions
// Description: Log levels with their names, short tags and console colors.
// Author: Nicolas5241
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2025-12-06
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with standard log levels
// - 2025-10-02 v0.2.0: Dropped the audit level
// - 2025-12-06 v0.3.0: Level table; parse failures are INVALID_CONFIG errors

// Package log is the structured logger used by every calculator surface.
package log

import (
	"strings"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
)

// Level orders log messages by importance
type Level int

const (
	// LevelTrace logs every intermediate value of a calculation.
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	// LevelFatal logs and exits the process.
	LevelFatal
)

type levelInfo struct {
	name    string
	short   string
	color   string
	aliases []string
}

var levels = [...]levelInfo{
	LevelTrace: {"trace", "TRC", "\033[37m", []string{"trc"}},
	LevelDebug: {"debug", "DBG", "\033[36m", []string{"dbg"}},
	LevelInfo:  {"info", "INF", "\033[32m", []string{"inf", ""}},
	LevelWarn:  {"warn", "WRN", "\033[33m", []string{"wrn", "warning"}},
	LevelError: {"error", "ERR", "\033[31m", []string{"err"}},
	LevelFatal: {"fatal", "FTL", "\033[35m", []string{"ftl"}},
}

const colorReset = "\033[0m"

func (l Level) info() (levelInfo, bool) {
	if l < LevelTrace || int(l) >= len(levels) {
		return levelInfo{}, false
	}
	return levels[l], true
}

// String returns the lower-case level name
func (l Level) String() string {
	if info, ok := l.info(); ok {
		return info.name
	}
	return "unknown"
}

// ShortString returns the three-letter tag used by the text formats
func (l Level) ShortString() string {
	if info, ok := l.info(); ok {
		return info.short
	}
	return "???"
}

// Color returns the ANSI escape that starts a console line at this level
func (l Level) Color() string {
	if info, ok := l.info(); ok {
		return info.color
	}
	return colorReset
}

// ShouldLog reports whether l passes a logger set to minLevel
func (l Level) ShouldLog(minLevel Level) bool {
	return l >= minLevel
}

// ParseLevel accepts a level name, its short tag or an alias, in any case.
// An empty string is info.
func ParseLevel(level string) (Level, error) {
	s := strings.ToLower(strings.TrimSpace(level))
	for l, info := range levels {
		if s == info.name || s == strings.ToLower(info.short) {
			return Level(l), nil
		}
		for _, alias := range info.aliases {
			if s == alias {
				return Level(l), nil
			}
		}
	}
	return LevelInfo, invalidSetting("level", level)
}

func invalidSetting(kind, input string) error {
	return mdwerror.Newf("invalid log %s %q", kind, input).
		WithCode(mdwerror.CodeInvalidConfig).
		WithDetail("input", input)
}
