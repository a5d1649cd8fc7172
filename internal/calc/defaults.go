package calc

import (
	"bytes"
	"encoding/json"
	"strings"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/internal/formula"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/config"
)

// Defaults fill in what a caller leaves unset: the impedance mode and the
// unit of each output.
type Defaults struct {
	Mode          formula.Mode
	ImpedanceUnit string
	ReactanceUnit string
	FrequencyUnit string
}

// DefaultsFrom builds Defaults from the [defaults] config section.
func DefaultsFrom(cfg config.DefaultsConfig) (Defaults, error) {
	d := Defaults{
		ImpedanceUnit: cfg.ImpedanceUnit,
		ReactanceUnit: cfg.ReactanceUnit,
		FrequencyUnit: cfg.FrequencyUnit,
	}
	if cfg.Mode != "" {
		mode, err := formula.ParseMode(cfg.Mode)
		if err != nil {
			return Defaults{}, err
		}
		d.Mode = mode
	}
	return d, nil
}

// Resolve parses mode, falling back to d.Mode when it is blank, and fills
// empty target labels from d.
func (d Defaults) Resolve(mode string, targets Targets) (formula.Mode, Targets, error) {
	m := d.Mode
	if strings.TrimSpace(mode) != "" {
		parsed, err := formula.ParseMode(mode)
		if err != nil {
			return m, targets, err
		}
		m = parsed
	}

	if targets.Impedance == "" {
		targets.Impedance = d.ImpedanceUnit
	}
	if targets.InductiveReactance == "" {
		targets.InductiveReactance = d.ReactanceUnit
	}
	if targets.CapacitiveReactance == "" {
		targets.CapacitiveReactance = d.ReactanceUnit
	}
	if targets.ResonantFrequency == "" {
		targets.ResonantFrequency = d.FrequencyUnit
	}
	return m, targets, nil
}

// UnmarshalJSON accepts the value as a JSON string or a bare JSON number.
// Numbers keep their source text so no digits are lost to float64.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value json.RawMessage `json:"value"`
		Unit  string          `json:"unit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Unit = raw.Unit
	q.Text = ""

	value := bytes.TrimSpace(raw.Value)
	switch {
	case len(value) == 0 || bytes.Equal(value, []byte("null")):
	case value[0] == '"':
		if err := json.Unmarshal(value, &q.Text); err != nil {
			return err
		}
	case value[0] == '-' || (value[0] >= '0' && value[0] <= '9'):
		q.Text = string(value)
	default:
		return mdwerror.New("quantity value must be a string or a number").
			WithCode(mdwerror.CodeInvalidFormat).
			WithDetail("value", string(value))
	}
	return nil
}
