package calc

import (
	"strings"

	"github.com/Nicolas5241/TheCalcularoty/foundation/utils/mathx"
)

// InputState tells whether a user-entered quantity can take part in a
// calculation.
type InputState int

const (
	// Absent means the field was left empty.
	Absent InputState = iota
	// Invalid means the field holds text that is not a usable number.
	Invalid
	// Present means the field holds a number.
	Present
)

// String returns the state name
func (s InputState) String() string {
	switch s {
	case Absent:
		return "absent"
	case Invalid:
		return "invalid"
	case Present:
		return "present"
	default:
		return "unknown"
	}
}

// Input is one parsed quantity field. Raw and Err are set for Invalid
// inputs, Value for Present ones.
type Input struct {
	State InputState
	Raw   string
	Value mathx.Decimal
	Err   error
}

// ParseInput classifies text. Empty and whitespace-only text is Absent.
// Malformed numbers and the literal NaN are Invalid; infinities are
// accepted as Present.
func ParseInput(text string) Input {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Input{State: Absent}
	}
	value, err := mathx.Parse(trimmed)
	if err != nil {
		return Input{State: Invalid, Raw: text, Err: err}
	}
	if value.IsNaN() {
		return Input{State: Invalid, Raw: text}
	}
	return Input{State: Present, Value: value}
}

// Lenient returns the input with Invalid collapsed into Absent.
func (in Input) Lenient() Input {
	if in.State == Invalid {
		return Input{State: Absent}
	}
	return in
}
