package formula

import (
	"fmt"
	"strings"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
)

// Mode selects how L and C are combined.
type Mode int

const (
	// Series connects L and C in series.
	Series Mode = 0
	// Parallel connects L and C in parallel.
	Parallel Mode = 1
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case Series:
		return "series"
	case Parallel:
		return "parallel"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is Series or Parallel
func (m Mode) Valid() bool {
	return m == Series || m == Parallel
}

// ParseMode accepts "series"/"s"/"0" and "parallel"/"p"/"1".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "series", "s", "0":
		return Series, nil
	case "parallel", "p", "1":
		return Parallel, nil
	default:
		return Series, mdwerror.New("unknown impedance mode").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("mode", s).
			WithOperation("formula.ParseMode")
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
