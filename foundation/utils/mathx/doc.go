// File: doc.go
// Title: Package Documentation for mathx
// Description: Arbitrary-precision decimal values and the constants the
//              electrical formulas need.
// Author: Nicolas5241
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with decimal arithmetic and business functions
// - 2025-01-26 v0.2.0: Enhanced documentation with comprehensive structure and examples
// - 2025-10-02 v0.3.0: Decimal rebuilt on github.com/db47h/decimal; constant cache

// Package mathx provides the arbitrary-precision Decimal used by every
// calculation.
//
// Precision model:
//
//   - Every value targets WorkingPrecision significant decimal digits and
//     rounds with RoundingMode (round half to even).
//   - Add, Subtract and Multiply are computed in full precision: the result
//     keeps every significant digit of the exact result, up to
//     MaxFullPrecision digits.
//   - Divide, Pow and Sqrt round to WorkingPrecision.
//
// Special values NaN, +Inf, -Inf and signed zero survive parsing,
// arithmetic and formatting. Operations never panic on degenerate input:
// 0/0, Inf-Inf and sqrt of a negative number yield NaN, x/0 yields a
// signed infinity.
//
// Decimal has two renderings. ExactString is lossless plain decimal text,
// DisplayString is an approximate "~" form rounded to DisplayDigits
// fractional mantissa digits.
//
// Usage:
//
//	consts := mathx.NewConstCache()
//	l := mathx.MustParse("0.01")
//	c := mathx.MustParse("2.533e-6")
//	root := l.Multiply(c).Sqrt()
//	f0 := mathx.One().Divide(consts.TwoPi().Multiply(root))
//	fmt.Println(f0.DisplayString())
package mathx
