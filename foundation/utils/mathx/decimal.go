// File: decimal.go
// Title: Arbitrary-Precision Decimal
// Description: Immutable decimal value over github.com/db47h/decimal with a
//              fixed working precision, full-precision add/sub/mul and
//              explicit NaN handling.
// Author: Nicolas5241
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core decimal operations
// - 2025-07-26 v0.1.1: Enhanced String() method with auto-rounding for display
// - 2025-10-02 v0.3.0: Backed by decimal floating point instead of big.Rat

package mathx

import (
	"math"
	"regexp"
	"strings"

	"github.com/db47h/decimal"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
)

const (
	// WorkingPrecision is the number of significant decimal digits every
	// rounded operation targets (about 1024 bits).
	WorkingPrecision uint = 308

	// MaxFullPrecision caps the digits kept by full-precision operations.
	MaxFullPrecision = 4 * WorkingPrecision

	// RoundingMode is applied by every rounded operation.
	RoundingMode = decimal.ToNearestEven

	// powGuardDigits are extra digits carried through Pow before the final rounding.
	powGuardDigits uint = 20

	// MaxInputExponent bounds the decimal exponent Parse accepts, so the
	// exact rendering of any input or result stays a few thousand digits.
	MaxInputExponent = 4096
)

var numberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Decimal is an immutable arbitrary-precision decimal number.
// The zero value is 0.
type Decimal struct {
	v   *decimal.Decimal
	nan bool
}

func newValue(prec uint) *decimal.Decimal {
	return new(decimal.Decimal).SetMode(RoundingMode).SetPrec(prec)
}

// val returns the backing value; never mutate the result.
func (d Decimal) val() *decimal.Decimal {
	if d.v == nil {
		return newValue(WorkingPrecision)
	}
	return d.v
}

// compute runs op and maps a library NaN panic to NaN.
func compute(op func() *decimal.Decimal) (result Decimal) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(decimal.ErrNaN); ok {
				result = NaN()
				return
			}
			panic(r)
		}
	}()
	return Decimal{v: op()}
}

// Parse parses a decimal string such as "-12.5e-3". The words NaN, Inf,
// +Inf, -Inf and Infinity are accepted in any case. Finite values whose
// magnitude lies outside 1e±MaxInputExponent are rejected as INVALID_FORMAT.
func Parse(s string) (Decimal, error) {
	text := strings.TrimSpace(s)
	switch strings.ToLower(text) {
	case "nan":
		return NaN(), nil
	case "inf", "+inf", "infinity", "+infinity":
		return Inf(1), nil
	case "-inf", "-infinity":
		return Inf(-1), nil
	}

	if !numberPattern.MatchString(text) {
		return Decimal{}, invalidFormat(s)
	}
	z, ok := newValue(WorkingPrecision).SetString(text)
	if !ok {
		return Decimal{}, invalidFormat(s)
	}
	if exp := z.MantExp(nil); exp > MaxInputExponent || exp < -MaxInputExponent {
		return Decimal{}, invalidFormat(s).
			WithDetail("exponent", exp).
			WithDetail("max_exponent", MaxInputExponent)
	}
	return Decimal{v: z}, nil
}

func invalidFormat(s string) *mdwerror.Error {
	return mdwerror.New("invalid decimal number").
		WithCode(mdwerror.CodeInvalidFormat).
		WithDetail("input", s).
		WithOperation("mathx.Parse")
}

// ParseOrNaN parses s and returns NaN for malformed input.
func ParseOrNaN(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		return NaN()
	}
	return d
}

// MustParse parses s and panics on malformed input. Use for constants.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewFromInt creates a Decimal from an integer
func NewFromInt(i int64) Decimal {
	return Decimal{v: newValue(WorkingPrecision).SetInt64(i)}
}

// NewFromFloat creates a Decimal from a float64. The binary value is
// rounded to WorkingPrecision, so prefer Parse for decimal literals.
func NewFromFloat(f float64) Decimal {
	if math.IsNaN(f) {
		return NaN()
	}
	return Decimal{v: newValue(WorkingPrecision).SetFloat64(f)}
}

// Pow10 returns 10^n exactly.
func Pow10(n int) Decimal {
	one := newValue(WorkingPrecision).SetInt64(1)
	return Decimal{v: newValue(WorkingPrecision).SetMantExp(one, n)}
}

// Zero returns 0
func Zero() Decimal { return NewFromInt(0) }

// One returns 1
func One() Decimal { return NewFromInt(1) }

// NaN returns the not-a-number value
func NaN() Decimal { return Decimal{nan: true} }

// Inf returns +Inf for sign >= 0 and -Inf otherwise
func Inf(sign int) Decimal {
	return Decimal{v: newValue(WorkingPrecision).SetInf(sign < 0)}
}

// fullAddPrec returns the digits needed to hold x+y exactly.
func fullAddPrec(x, y *decimal.Decimal) uint {
	if x.IsInf() || y.IsInf() {
		return WorkingPrecision
	}
	if x.Sign() == 0 {
		return clampFull(y.MinPrec())
	}
	if y.Sign() == 0 {
		return clampFull(x.MinPrec())
	}
	// x = m·10^e with 0.1 <= |m| < 1: digits span [e-MinPrec, e-1].
	ex, ey := x.MantExp(nil), y.MantExp(nil)
	high := ex
	if ey > high {
		high = ey
	}
	low := ex - int(x.MinPrec())
	if l := ey - int(y.MinPrec()); l < low {
		low = l
	}
	return clampFull(uint(high-low) + 1)
}

func clampFull(p uint) uint {
	if p < WorkingPrecision {
		return WorkingPrecision
	}
	if p > MaxFullPrecision {
		return MaxFullPrecision
	}
	return p
}

// Add returns d + other in full precision
func (d Decimal) Add(other Decimal) Decimal {
	if d.nan || other.nan {
		return NaN()
	}
	x, y := d.val(), other.val()
	return compute(func() *decimal.Decimal {
		return newValue(fullAddPrec(x, y)).Add(x, y)
	})
}

// Subtract returns d - other in full precision
func (d Decimal) Subtract(other Decimal) Decimal {
	if d.nan || other.nan {
		return NaN()
	}
	x, y := d.val(), other.val()
	return compute(func() *decimal.Decimal {
		return newValue(fullAddPrec(x, y)).Sub(x, y)
	})
}

// Multiply returns d * other in full precision
func (d Decimal) Multiply(other Decimal) Decimal {
	if d.nan || other.nan {
		return NaN()
	}
	x, y := d.val(), other.val()
	return compute(func() *decimal.Decimal {
		return newValue(clampFull(x.MinPrec() + y.MinPrec())).Mul(x, y)
	})
}

// Divide returns d / other rounded to WorkingPrecision. Division of a
// non-zero value by zero yields a signed infinity, 0/0 yields NaN.
func (d Decimal) Divide(other Decimal) Decimal {
	if d.nan || other.nan {
		return NaN()
	}
	x, y := d.val(), other.val()
	return compute(func() *decimal.Decimal {
		return newValue(WorkingPrecision).Quo(x, y)
	})
}

// Sqrt returns the square root rounded to WorkingPrecision. The square
// root of a negative number is NaN.
func (d Decimal) Sqrt() Decimal {
	if d.nan {
		return NaN()
	}
	x := d.val()
	if x.Sign() < 0 {
		return NaN()
	}
	return compute(func() *decimal.Decimal {
		return newValue(WorkingPrecision).Sqrt(x)
	})
}

// Pow returns d^n for a non-negative integer exponent, rounded to
// WorkingPrecision. d^0 is 1 for every non-NaN d.
func (d Decimal) Pow(n uint) Decimal {
	if d.nan {
		return NaN()
	}
	prec := WorkingPrecision + powGuardDigits
	return compute(func() *decimal.Decimal {
		result := newValue(prec).SetInt64(1)
		base := newValue(prec).Set(d.val())
		for e := n; e > 0; e >>= 1 {
			if e&1 == 1 {
				result.Mul(result, base)
			}
			if e > 1 {
				base.Mul(base, base)
			}
		}
		return newValue(WorkingPrecision).Set(result)
	})
}

// Neg returns -d
func (d Decimal) Neg() Decimal {
	if d.nan {
		return NaN()
	}
	x := d.val()
	return Decimal{v: newValue(x.Prec()).Neg(x)}
}

// Abs returns |d|
func (d Decimal) Abs() Decimal {
	if d.nan {
		return NaN()
	}
	x := d.val()
	return Decimal{v: newValue(x.Prec()).Abs(x)}
}

// IsNaN reports whether d is NaN
func (d Decimal) IsNaN() bool { return d.nan }

// IsInf reports whether d is +Inf or -Inf
func (d Decimal) IsInf() bool { return !d.nan && d.val().IsInf() }

// IsZero reports whether d is +0 or -0
func (d Decimal) IsZero() bool { return !d.nan && d.val().Sign() == 0 }

// IsOne reports whether d is exactly 1
func (d Decimal) IsOne() bool {
	return !d.nan && d.val().Cmp(newValue(WorkingPrecision).SetInt64(1)) == 0
}

// IsNegative reports whether the sign bit is set, including -0 and -Inf.
func (d Decimal) IsNegative() bool { return !d.nan && d.val().Signbit() }

// Sign returns -1, 0 or +1. NaN has sign 0.
func (d Decimal) Sign() int {
	if d.nan {
		return 0
	}
	return d.val().Sign()
}

// CompareOK compares d and other. ok is false when either is NaN.
func (d Decimal) CompareOK(other Decimal) (cmp int, ok bool) {
	if d.nan || other.nan {
		return 0, false
	}
	return d.val().Cmp(other.val()), true
}

// Compare returns -1, 0 or +1. NaN compares equal to everything; use
// CompareOK when NaN may occur.
func (d Decimal) Compare(other Decimal) int {
	cmp, _ := d.CompareOK(other)
	return cmp
}

// Equal reports numeric equality. NaN is never equal, +0 equals -0.
func (d Decimal) Equal(other Decimal) bool {
	cmp, ok := d.CompareOK(other)
	return ok && cmp == 0
}

// Prec returns the number of significant digits d is stored with.
func (d Decimal) Prec() uint {
	if d.nan {
		return 0
	}
	return d.val().Prec()
}

// Float64 returns the nearest float64
func (d Decimal) Float64() float64 {
	if d.nan {
		return math.NaN()
	}
	f, _ := d.val().Float64()
	return f
}

// RoundSignificant rounds d to digits significant digits, ties away from zero.
func (d Decimal) RoundSignificant(digits uint) Decimal {
	if d.nan || digits == 0 {
		return d
	}
	return Decimal{v: new(decimal.Decimal).SetMode(decimal.ToNearestAway).SetPrec(digits).Set(d.val())}
}

// String returns the exact decimal representation
func (d Decimal) String() string {
	return d.ExactString()
}

// MarshalText implements encoding.TextMarshaler with the exact representation.
func (d Decimal) MarshalText() ([]byte, error) {
	return []byte(d.ExactString()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Decimal) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
