// Package units holds the unit registries of the calculator and converts
// values between unit labels of the same quantity kind.
package units

import (
	"fmt"
	"strings"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
)

// Kind is the physical quantity a unit label measures.
type Kind int

const (
	// Unknown marks a quantity whose kind is not known yet.
	Unknown Kind = iota
	Frequency
	Capacitance
	Inductance
	Resistance
)

// AllKinds returns every concrete kind in classification priority order.
func AllKinds() []Kind {
	return []Kind{Frequency, Capacitance, Inductance, Resistance}
}

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case Frequency:
		return "Frequency"
	case Capacitance:
		return "Capacitance"
	case Inductance:
		return "Inductance"
	case Resistance:
		return "Resistance"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Symbol returns the conventional circuit symbol.
func (k Kind) Symbol() string {
	switch k {
	case Frequency:
		return "f"
	case Capacitance:
		return "C"
	case Inductance:
		return "L"
	case Resistance:
		return "R"
	default:
		return "?"
	}
}

// ParseKind accepts a kind name or its symbol, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "frequency", "f", "hz":
		return Frequency, nil
	case "capacitance", "c":
		return Capacitance, nil
	case "inductance", "l":
		return Inductance, nil
	case "resistance", "impedance", "reactance", "r", "z":
		return Resistance, nil
	default:
		return Unknown, mdwerror.Newf("unknown quantity kind %q", s).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("units.ParseKind")
	}
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
