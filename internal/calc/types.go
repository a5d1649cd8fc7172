package calc

import (
	"github.com/Nicolas5241/TheCalcularoty/foundation/utils/mathx"
	"github.com/Nicolas5241/TheCalcularoty/internal/formula"
	"github.com/Nicolas5241/TheCalcularoty/internal/units"
)

// Quantity is a user-entered number and the unit label it is given in.
// An empty Unit means the base unit of the field's kind.
type Quantity struct {
	Text string `json:"value" yaml:"value" toml:"value"`
	Unit string `json:"unit" yaml:"unit" toml:"unit"`
}

// Targets names the unit each output is reported in. Empty labels fall
// back to the base unit (Ω or Hz).
type Targets struct {
	Impedance           string `json:"impedance,omitempty" yaml:"impedance" toml:"impedance"`
	InductiveReactance  string `json:"inductive_reactance,omitempty" yaml:"inductive_reactance" toml:"inductive_reactance"`
	CapacitiveReactance string `json:"capacitive_reactance,omitempty" yaml:"capacitive_reactance" toml:"capacitive_reactance"`
	ResonantFrequency   string `json:"resonant_frequency,omitempty" yaml:"resonant_frequency" toml:"resonant_frequency"`
}

// Request is one calculation: up to three quantities, of which at least
// two must be present.
type Request struct {
	Inductance  Quantity     `json:"inductance"`
	Capacitance Quantity     `json:"capacitance"`
	Frequency   Quantity     `json:"frequency"`
	Mode        formula.Mode `json:"mode"`
	Targets     Targets      `json:"targets"`
}

// Value is a number rendered in a unit. Exact is the full-precision
// decimal, Display the rounded form shown to users.
type Value struct {
	Unit    string        `json:"unit"`
	Exact   string        `json:"exact"`
	Display string        `json:"display"`
	Number  mathx.Decimal `json:"-"`
}

// NewValue renders d in unit.
func NewValue(d mathx.Decimal, unit string) Value {
	return Value{
		Unit:    unit,
		Exact:   d.ExactString(),
		Display: d.DisplayString(),
		Number:  d,
	}
}

// Inference reports a quantity the orchestrator derived because its
// field was absent.
type Inference struct {
	Kind  units.Kind `json:"kind"`
	Value Value      `json:"value"`
}

// InferenceSink receives derived quantities while a calculation runs so
// a caller can fill the empty field.
type InferenceSink interface {
	Inferred(kind units.Kind, value Value)
}

// SinkFunc adapts a function to InferenceSink.
type SinkFunc func(kind units.Kind, value Value)

// Inferred calls f
func (f SinkFunc) Inferred(kind units.Kind, value Value) { f(kind, value) }

// BaseValues are the resolved inputs in H, F, Hz and rad/s.
type BaseValues struct {
	Inductance  mathx.Decimal `json:"inductance"`
	Capacitance mathx.Decimal `json:"capacitance"`
	Frequency   mathx.Decimal `json:"frequency"`
	Omega       mathx.Decimal `json:"omega"`
}

// Result is the outcome of Calculate. Computed is false when fewer than
// two quantities were given; every other field is then empty.
type Result struct {
	Computed            bool         `json:"computed"`
	RequestID           string       `json:"request_id"`
	Mode                formula.Mode `json:"mode"`
	Impedance           Value        `json:"impedance"`
	InductiveReactance  Value        `json:"inductive_reactance"`
	CapacitiveReactance Value        `json:"capacitive_reactance"`
	ResonantFrequency   Value        `json:"resonant_frequency"`
	Inferred            []Inference  `json:"inferred,omitempty"`
	Base                BaseValues   `json:"base"`
}
