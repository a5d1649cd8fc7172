// File: format.go
// Title: Decimal Rendering
// Description: Exact plain-decimal text and the approximate display form.
// Author: Nicolas5241
// Version: v0.1.0
// Created: 2025-10-02
// Modified: 2025-10-02
//
// Change History:
// - 2025-10-02 v0.1.0: Initial implementation

package mathx

import (
	"strconv"
	"strings"

	"github.com/db47h/decimal"
)

const (
	// DisplayDigits is the number of fractional mantissa digits kept by DisplayString.
	DisplayDigits = 14

	// displayExpLimit bounds the exponents rendered without an exponent suffix.
	displayExpLimit = 14
)

// ExactString renders d as plain decimal text without loss: no exponent,
// no trailing fractional zeros, "0" for both zeros, and "NaN", "Inf" or
// "-Inf" for special values.
func (d Decimal) ExactString() string {
	if special, ok := d.specialString(); ok {
		return special
	}
	return plainDigits(d.val())
}

// DisplayString renders an approximate value rounded to DisplayDigits
// fractional mantissa digits. Exponents in [-14, 14] render as "~0.0012",
// others as "~1.5e-20".
func (d Decimal) DisplayString() string {
	if special, ok := d.specialString(); ok {
		return special
	}

	rounded := new(decimal.Decimal).
		SetMode(decimal.ToNearestAway).
		SetPrec(DisplayDigits + 1).
		Set(d.val())
	// rounded = m·10^e with 0.1 <= |m| < 1, so the scientific exponent is e-1
	exp := rounded.MantExp(nil) - 1

	if exp >= -displayExpLimit && exp <= displayExpLimit {
		return "~" + plainDigits(rounded)
	}

	mantissa := new(decimal.Decimal).SetPrec(DisplayDigits+1).SetMantExp(rounded, -exp)
	return "~" + plainDigits(mantissa) + "e" + strconv.Itoa(exp)
}

func (d Decimal) specialString() (string, bool) {
	switch {
	case d.nan:
		return "NaN", true
	case d.val().IsInf():
		if d.val().Signbit() {
			return "-Inf", true
		}
		return "Inf", true
	case d.val().Sign() == 0:
		return "0", true
	}
	return "", false
}

// plainDigits formats a finite non-zero x with exactly the fractional
// digits it carries, then trims trailing zeros and a bare point.
func plainDigits(x *decimal.Decimal) string {
	frac := int(x.MinPrec()) - x.MantExp(nil)
	if frac < 0 {
		frac = 0
	}
	s := x.Text('f', frac)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
