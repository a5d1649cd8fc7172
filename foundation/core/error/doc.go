// Package error provides structured errors for the LC calculator.
//
// Package: error
// Title: Calculator Error Handling
// Description: Errors carry a code, a severity, free-form details and the
//              operation that produced them. Codes map onto HTTP and gRPC
//              status values so the CLI, the HTTP API and the gRPC service
//              report the same failure the same way.
// Author: Nicolas5241
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2025-10-02 v0.2.0: Calculator codes (unit lookup, format, quantity), errors.As support
//
// Usage:
//
//	import mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
//
//	err := mdwerror.New("unknown unit label").
//		WithCode(mdwerror.CodeUnknownUnit).
//		WithDetail("label", "kF").
//		WithOperation("units.Convert")
//
//	if mdwerror.HasCode(err, mdwerror.CodeUnknownUnit) {
//		// reject the request
//	}
package error
