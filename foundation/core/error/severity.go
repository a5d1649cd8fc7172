// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels used to pick the log level of an error.
// Author: Nicolas5241
// Version: v0.1.0
// Created: 2025-01-24
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with severity levels

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow is a rejected request: bad input, unknown unit.
	SeverityLow Severity = iota

	// SeverityMedium affects one operation but the process keeps serving.
	SeverityMedium

	// SeverityHigh is a failure of a whole surface, e.g. a server that cannot bind.
	SeverityHigh

	// SeverityCritical makes the process unusable.
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeInvalidInput, CodeInvalidFormat, CodeUnknownUnit, CodeInvalidQuantity,
		CodeUnderdetermined, CodeNotFound:
		return SeverityLow
	case CodeServiceUnavailable, CodeInvalidConfig, CodeMissingConfig:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}
