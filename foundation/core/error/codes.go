// File: codes.go
// Title: Error Code Definitions
// Description: Standardized error codes shared by the calculator core and its
//              CLI, HTTP and gRPC surfaces.
// Author: Nicolas5241
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2025-10-02 v0.2.0: Replaced service codes with calculator codes

package error

import "net/http"

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// Numeric input and units
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeUnknownUnit     Code = "UNKNOWN_UNIT"
	CodeInvalidQuantity Code = "INVALID_QUANTITY"
	CodeUnderdetermined Code = "UNDERDETERMINED"

	// Output
	CodeExportFailed Code = "EXPORT_FAILED"

	// Service
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeMissingConfig Code = "MISSING_CONFIG"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout,
		CodeInvalidFormat, CodeUnknownUnit, CodeInvalidQuantity, CodeUnderdetermined,
		CodeExportFailed, CodeServiceUnavailable,
		CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeInvalidInput, CodeInvalidFormat, CodeUnknownUnit, CodeInvalidQuantity, CodeUnderdetermined:
		return "input"
	case CodeExportFailed:
		return "output"
	case CodeServiceUnavailable, CodeTimeout:
		return "service"
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return "configuration"
	default:
		return "generic"
	}
}

// HTTPStatus returns the appropriate HTTP status code for this error code
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeInvalidFormat, CodeUnknownUnit, CodeInvalidQuantity:
		return http.StatusBadRequest
	case CodeUnderdetermined:
		return http.StatusUnprocessableEntity
	case CodeTimeout:
		return http.StatusRequestTimeout
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
