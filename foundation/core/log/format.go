// File: format.go
// Title: Log Format Definitions
// Description: JSON, text and console formatters.
// Author: Nicolas5241
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2025-12-06
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with multiple output formats
// - 2025-10-02 v0.2.0: Deterministic field order; logfmt removed
// - 2025-12-06 v0.3.0: Console wraps the text line; formatters are plain funcs

package log

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format selects how entries are rendered
type Format int

const (
	// FormatJSON writes one JSON object per line
	FormatJSON Format = iota
	FormatText
	// FormatConsole is FormatText colored by level
	FormatConsole
)

var formatNames = [...]string{
	FormatJSON:    "json",
	FormatText:    "text",
	FormatConsole: "console",
}

func (f Format) String() string {
	if f < FormatJSON || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// ParseFormat accepts json, text or console in any case. An empty string
// is text.
func ParseFormat(format string) (Format, error) {
	s := strings.ToLower(strings.TrimSpace(format))
	if s == "" {
		return FormatText, nil
	}
	for f, name := range formatNames {
		if s == name {
			return Format(f), nil
		}
	}
	return FormatText, invalidSetting("format", format)
}

// Formatter renders one entry, newline included
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// FormatterFunc adapts a function to Formatter
type FormatterFunc func(entry *Entry) ([]byte, error)

// Format calls f
func (f FormatterFunc) Format(entry *Entry) ([]byte, error) { return f(entry) }

const textTimestamp = "15:04:05.000"

func formatJSON(entry *Entry) ([]byte, error) {
	data := make(map[string]interface{}, len(entry.Fields)+7)
	for k, v := range entry.Fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}

	data["timestamp"] = entry.Timestamp.Format(time.RFC3339Nano)
	data["level"] = entry.Level.String()
	data["message"] = entry.Message
	setIf(data, "logger", entry.Logger)
	setIf(data, "request_id", entry.RequestID)
	if entry.Error != nil {
		data["error"] = entry.Error.Error()
		if m, ok := entry.Error.(json.Marshaler); ok {
			if raw, err := m.MarshalJSON(); err == nil {
				data["error_details"] = json.RawMessage(raw)
			}
		}
	}
	if entry.Duration > 0 {
		data["duration_ms"] = float64(entry.Duration.Nanoseconds()) / 1e6
	}

	line, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}

func setIf(data map[string]interface{}, key, value string) {
	if value != "" {
		data[key] = value
	}
}

// textLine renders "15:04:05.000 [INF] {logger} (req=id) message [k=v ...]"
// without the trailing newline.
func textLine(entry *Entry) string {
	var b strings.Builder
	b.WriteString(entry.Timestamp.Format(textTimestamp))
	b.WriteString(" [")
	b.WriteString(entry.Level.ShortString())
	b.WriteByte(']')
	if entry.Logger != "" {
		fmt.Fprintf(&b, " {%s}", entry.Logger)
	}
	if entry.RequestID != "" {
		fmt.Fprintf(&b, " (req=%s)", entry.RequestID)
	}
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	if keys := entry.Fields.Keys(); len(keys) > 0 {
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=%v", k, entry.Fields[k])
		}
		b.WriteByte(']')
	}
	if entry.Error != nil {
		fmt.Fprintf(&b, " error=%q", entry.Error.Error())
	}
	if entry.Duration > 0 {
		fmt.Fprintf(&b, " duration=%s", entry.Duration)
	}
	return b.String()
}

func formatText(entry *Entry) ([]byte, error) {
	return []byte(textLine(entry) + "\n"), nil
}

func formatConsole(entry *Entry) ([]byte, error) {
	return []byte(entry.Level.Color() + textLine(entry) + colorReset + "\n"), nil
}

// GetFormatter returns the formatter for format; unknown formats get JSON
func GetFormatter(format Format) Formatter {
	switch format {
	case FormatText:
		return FormatterFunc(formatText)
	case FormatConsole:
		return FormatterFunc(formatConsole)
	default:
		return FormatterFunc(formatJSON)
	}
}
