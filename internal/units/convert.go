package units

import (
	"github.com/Nicolas5241/TheCalcularoty/foundation/utils/mathx"
)

// Convert rescales value from one label of kind to another using the
// signed exponent difference delta = exp(from) - exp(to): a negative delta
// divides by 10^-delta, otherwise the value is multiplied by 10^delta, so
// 10 mH becomes 0.01 H. Converting a label to itself returns value
// unchanged.
func Convert(value mathx.Decimal, kind Kind, from, to string) (mathx.Decimal, error) {
	r, err := Lookup(kind)
	if err != nil {
		return mathx.Decimal{}, err
	}
	fromExp, err := r.Exponent(from)
	if err != nil {
		return mathx.Decimal{}, err
	}
	toExp, err := r.Exponent(to)
	if err != nil {
		return mathx.Decimal{}, err
	}
	if from == to {
		return value, nil
	}

	delta := fromExp - toExp
	if delta < 0 {
		return value.Divide(mathx.Pow10(-delta)), nil
	}
	return value.Multiply(mathx.Pow10(delta)), nil
}

// ConvertToBase converts value from label into kind's base unit.
func ConvertToBase(value mathx.Decimal, kind Kind, from string) (mathx.Decimal, error) {
	base, err := BaseLabel(kind)
	if err != nil {
		return mathx.Decimal{}, err
	}
	return Convert(value, kind, from, base)
}

// ConvertFromBase converts a base-unit value of kind into label.
func ConvertFromBase(value mathx.Decimal, kind Kind, to string) (mathx.Decimal, error) {
	base, err := BaseLabel(kind)
	if err != nil {
		return mathx.Decimal{}, err
	}
	return Convert(value, kind, base, to)
}
