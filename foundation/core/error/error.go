// File: error.go
// Title: Core Error Implementation
// Description: The Error type with code, severity, the offending input field,
//              details and cause chain. Compatible with errors.Is/errors.As
//              through Unwrap.
// Author: Nicolas5241
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2025-12-06
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors
// - 2025-10-02 v0.2.0: Lookups walk the chain with errors.As; dropped localization fields
// - 2025-12-06 v0.3.0: Field as first-class metadata; dropped stack capture and chain truncation

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// detailField is the details key Field is stored under, so JSON and gRPC
// error bodies expose it without special casing.
const detailField = "field"

// Error is a calculator failure. Builders mutate and return the receiver
// and are meant to be chained right after New or Wrap.
type Error struct {
	message   string
	cause     error
	code      Code
	severity  Severity
	explicit  bool
	timestamp time.Time
	operation string
	requestID string
	details   map[string]interface{}
}

// New creates an Error with CodeUnknown
func New(message string) *Error {
	return &Error{
		message:   message,
		code:      CodeUnknown,
		severity:  SeverityMedium,
		timestamp: time.Now(),
		details:   map[string]interface{}{},
	}
}

// Newf creates an Error with a formatted message
func Newf(format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap puts message in front of err. The nearest *Error in err's chain
// passes on its code, severity, request id and details. Wrap(nil) is nil.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	e := New(message)
	e.cause = err

	var inner *Error
	if errors.As(err, &inner) {
		e.code = inner.code
		e.severity = inner.severity
		e.explicit = inner.explicit
		e.requestID = inner.requestID
		for k, v := range inner.details {
			e.details[k] = v
		}
	}
	return e
}

// Error renders the message followed by the cause chain
func (e *Error) Error() string {
	if e.cause == nil {
		return e.message
	}
	return e.message + ": " + e.cause.Error()
}

// Unwrap returns the cause
func (e *Error) Unwrap() error { return e.cause }

// WithCode sets the code. The severity follows the code unless
// WithSeverity was called.
func (e *Error) WithCode(code Code) *Error {
	e.code = code
	if !e.explicit {
		e.severity = GetSeverityFromCode(code)
	}
	return e
}

// WithSeverity pins the severity
func (e *Error) WithSeverity(severity Severity) *Error {
	e.severity = severity
	e.explicit = true
	return e
}

// WithField names the input field (inductance, capacitance, frequency, a
// target or a config key) the error is about.
func (e *Error) WithField(name string) *Error {
	e.details[detailField] = name
	return e
}

// WithDetail adds one detail
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.details[key] = value
	return e
}

// WithDetails adds several details
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	for k, v := range details {
		e.details[k] = v
	}
	return e
}

// WithOperation records the function that failed, e.g. "calc.Calculate"
func (e *Error) WithOperation(operation string) *Error {
	e.operation = operation
	return e
}

// WithRequestID ties the error to a calculation request
func (e *Error) WithRequestID(requestID string) *Error {
	e.requestID = requestID
	return e
}

func (e *Error) Message() string      { return e.message }
func (e *Error) Code() Code           { return e.code }
func (e *Error) Severity() Severity   { return e.severity }
func (e *Error) Timestamp() time.Time { return e.timestamp }
func (e *Error) Operation() string    { return e.operation }
func (e *Error) RequestID() string    { return e.requestID }

// Field returns the input field the error is about, or ""
func (e *Error) Field() string {
	name, _ := e.details[detailField].(string)
	return name
}

// Details returns a copy of the details, the field included
func (e *Error) Details() map[string]interface{} {
	out := make(map[string]interface{}, len(e.details))
	for k, v := range e.details {
		out[k] = v
	}
	return out
}

// RootCause returns the innermost error of the chain, or e itself
func (e *Error) RootCause() error {
	var last error = e
	for current := e.cause; current != nil; current = errors.Unwrap(current) {
		last = current
	}
	return last
}

// String renders a one-line diagnostic such as
// "[UNKNOWN_UNIT] unknown unit (field=inductance, label=mV) op=calc.Calculate: ..."
func (e *Error) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.code, e.message)
	if len(e.details) > 0 {
		keys := make([]string, 0, len(e.details))
		for k := range e.details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s=%v", k, e.details[k])
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(pairs, ", "))
	}
	if e.operation != "" {
		fmt.Fprintf(&b, " op=%s", e.operation)
	}
	if e.requestID != "" {
		fmt.Fprintf(&b, " request=%s", e.requestID)
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %s", e.cause)
	}
	return b.String()
}

type jsonError struct {
	Message   string                 `json:"message"`
	Code      Code                   `json:"code"`
	Severity  string                 `json:"severity"`
	Timestamp string                 `json:"timestamp"`
	Field     string                 `json:"field,omitempty"`
	Operation string                 `json:"operation,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     string                 `json:"cause,omitempty"`
}

// MarshalJSON renders the error for structured logs
func (e *Error) MarshalJSON() ([]byte, error) {
	out := jsonError{
		Message:   e.message,
		Code:      e.code,
		Severity:  e.severity.String(),
		Timestamp: e.timestamp.Format(time.RFC3339),
		Field:     e.Field(),
		Operation: e.operation,
		RequestID: e.requestID,
		Details:   e.details,
	}
	if e.cause != nil {
		out.Cause = e.cause.Error()
	}
	return json.Marshal(out)
}

// HasCode reports whether any *Error in err's chain carries code
func HasCode(err error, code Code) bool {
	for current := err; current != nil; current = errors.Unwrap(current) {
		if e, ok := current.(*Error); ok && e.code == code {
			return true
		}
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or
// CodeUnknown
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeUnknown
}

// GetSeverity returns the severity of the outermost *Error in err's chain,
// or SeverityMedium
func GetSeverity(err error) Severity {
	var e *Error
	if errors.As(err, &e) {
		return e.severity
	}
	return SeverityMedium
}

// FieldOf returns the field of the outermost *Error in err's chain that
// names one
func FieldOf(err error) string {
	for current := err; current != nil; current = errors.Unwrap(current) {
		if e, ok := current.(*Error); ok {
			if name := e.Field(); name != "" {
				return name
			}
		}
	}
	return ""
}
