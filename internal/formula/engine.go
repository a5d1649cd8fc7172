// Package formula evaluates the closed-form LC relations over mathx.Decimal.
// Every function is pure; 2π comes from the injected constant cache.
package formula

import (
	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/foundation/utils/mathx"
	"github.com/Nicolas5241/TheCalcularoty/internal/units"
)

// Impedance is the result of combining L and C at one angular frequency.
// Xl is the signed inductive reactance, Xc the magnitude of the
// capacitive reactance.
type Impedance struct {
	Magnitude mathx.Decimal
	Xl        mathx.Decimal
	Xc        mathx.Decimal
}

// Engine evaluates LC formulas. All values are in base units (H, F, Hz,
// rad/s, Ω).
type Engine struct {
	consts *mathx.ConstCache
}

// New returns an engine drawing 2π from consts. A nil cache gets a private one.
func New(consts *mathx.ConstCache) *Engine {
	if consts == nil {
		consts = mathx.NewConstCache()
	}
	return &Engine{consts: consts}
}

// Consts returns the constant cache the engine draws 2π from
func (e *Engine) Consts() *mathx.ConstCache { return e.consts }

// ResonantFrequency returns 1 / (2π·sqrt(L·C)).
func (e *Engine) ResonantFrequency(l, c mathx.Decimal) mathx.Decimal {
	return mathx.One().Divide(e.consts.TwoPi().Multiply(l.Multiply(c).Sqrt()))
}

// InductanceFrom returns 1 / (C·(2π·f0)²).
func (e *Engine) InductanceFrom(c, f0 mathx.Decimal) mathx.Decimal {
	return mathx.One().Divide(c.Multiply(e.AngularFrequency(f0).Pow(2)))
}

// CapacitanceFrom returns 1 / (L·(2π·f0)²).
func (e *Engine) CapacitanceFrom(l, f0 mathx.Decimal) mathx.Decimal {
	return mathx.One().Divide(l.Multiply(e.AngularFrequency(f0).Pow(2)))
}

// AngularFrequency returns f·2π.
func (e *Engine) AngularFrequency(f mathx.Decimal) mathx.Decimal {
	return f.Multiply(e.consts.TwoPi())
}

// InductiveReactance returns the imaginary part ω·L (positive).
func (e *Engine) InductiveReactance(l, omega mathx.Decimal) mathx.Decimal {
	return omega.Multiply(l)
}

// CapacitiveReactance returns the imaginary part -1/(ω·C) (negative).
func (e *Engine) CapacitiveReactance(c, omega mathx.Decimal) mathx.Decimal {
	return mathx.One().Divide(omega.Multiply(c)).Neg()
}

// SeriesImpedance returns |Xl+Xc| together with Xl and |Xc|.
func (e *Engine) SeriesImpedance(l, c, omega mathx.Decimal) Impedance {
	xl := e.InductiveReactance(l, omega)
	xc := e.CapacitiveReactance(c, omega)
	return Impedance{
		Magnitude: xl.Add(xc).Abs(),
		Xl:        xl,
		Xc:        xc.Abs(),
	}
}

// ParallelImpedance returns |Xl·Xc / (Xl+Xc)| together with Xl and |Xc|.
// At resonance Xl+Xc is zero and the magnitude is +Inf.
func (e *Engine) ParallelImpedance(l, c, omega mathx.Decimal) Impedance {
	xl := e.InductiveReactance(l, omega)
	xc := e.CapacitiveReactance(c, omega)
	return Impedance{
		Magnitude: xl.Multiply(xc).Divide(xl.Add(xc)).Abs(),
		Xl:        xl,
		Xc:        xc.Abs(),
	}
}

// Impedance dispatches on mode.
func (e *Engine) Impedance(mode Mode, l, c, omega mathx.Decimal) (Impedance, error) {
	switch mode {
	case Series:
		return e.SeriesImpedance(l, c, omega), nil
	case Parallel:
		return e.ParallelImpedance(l, c, omega), nil
	default:
		return Impedance{}, mdwerror.New("unknown impedance mode").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("mode", int(mode)).
			WithOperation("formula.Impedance")
	}
}

// CalculateMissing derives the quantity of kind output from two known
// base values. kind1 is the kind of base1; base2 is the remaining one of
// {Inductance, Capacitance, Frequency}.
//
//	known L, C -> Frequency
//	known L, f -> Capacitance
//	known C, f -> Inductance
func (e *Engine) CalculateMissing(base1, base2 mathx.Decimal, kind1, output units.Kind) (mathx.Decimal, error) {
	if !isLC(kind1) || !isLC(output) || kind1 == output {
		return mathx.Decimal{}, mdwerror.New("cannot derive quantity from the given kinds").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("known", kind1.String()).
			WithDetail("requested", output.String()).
			WithOperation("formula.CalculateMissing")
	}

	switch output {
	case units.Frequency:
		if kind1 == units.Inductance {
			return e.ResonantFrequency(base1, base2), nil
		}
		return e.ResonantFrequency(base2, base1), nil
	case units.Capacitance:
		if kind1 == units.Inductance {
			return e.CapacitanceFrom(base1, base2), nil
		}
		return e.CapacitanceFrom(base2, base1), nil
	case units.Inductance:
		if kind1 == units.Capacitance {
			return e.InductanceFrom(base1, base2), nil
		}
		return e.InductanceFrom(base2, base1), nil
	default:
		return mathx.Decimal{}, mdwerror.New("unhandled quantity kind").
			WithCode(mdwerror.CodeInternal).
			WithDetail("requested", output.String())
	}
}

func isLC(kind units.Kind) bool {
	switch kind {
	case units.Inductance, units.Capacitance, units.Frequency:
		return true
	case units.Unknown, units.Resistance:
		return false
	default:
		return false
	}
}
