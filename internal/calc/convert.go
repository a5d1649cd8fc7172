package calc

import (
	"strings"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/foundation/utils/mathx"
	"github.com/Nicolas5241/TheCalcularoty/internal/units"
)

// ConvertRequest converts Value from one unit label to another. Kind may
// be left empty when From identifies it; an empty To means the base unit.
type ConvertRequest struct {
	Value string `json:"value"`
	Kind  string `json:"kind,omitempty"`
	From  string `json:"from"`
	To    string `json:"to,omitempty"`
}

// Conversion is the outcome of Convert
type Conversion struct {
	Kind  units.Kind `json:"kind"`
	From  string     `json:"from"`
	Value Value      `json:"value"`
}

// Convert runs a single unit conversion with the same label handling as
// Calculate.
func Convert(req ConvertRequest) (*Conversion, error) {
	from := units.Normalize(req.From)
	kind := units.Classify(from)
	if strings.TrimSpace(req.Kind) != "" {
		k, err := units.ParseKind(req.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	if kind == units.Unknown {
		return nil, mdwerror.Newf("cannot tell the quantity kind of unit %q", req.From).
			WithCode(mdwerror.CodeUnknownUnit).
			WithDetail("unit", req.From).
			WithOperation("calc.Convert")
	}

	to, err := resolveUnit(kind, strings.TrimSpace(req.To), "to")
	if err != nil {
		return nil, err
	}

	value, err := mathx.Parse(strings.TrimSpace(req.Value))
	if err != nil {
		return nil, mdwerror.Wrap(err, "invalid value").
			WithCode(mdwerror.CodeInvalidInput).
			WithField("value").
			WithOperation("calc.Convert")
	}
	converted, err := units.Convert(value, kind, from, to)
	if err != nil {
		return nil, fieldError(err, "from")
	}
	return &Conversion{Kind: kind, From: from, Value: NewValue(converted, to)}, nil
}
