package units

import (
	"strings"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
)

// Unit is a label and its power-of-ten exponent relative to the base unit.
type Unit struct {
	Label    string `json:"label"`
	Exponent int    `json:"exponent"`
}

// Registry is the ordered unit table of one kind. Order is insertion
// order and is what users see in lists.
type Registry struct {
	kind    Kind
	units   []Unit
	byLabel map[string]int
}

func newRegistry(kind Kind, units ...Unit) *Registry {
	r := &Registry{kind: kind, units: units, byLabel: make(map[string]int, len(units))}
	for _, u := range units {
		r.byLabel[u.Label] = u.Exponent
	}
	return r
}

var registries = map[Kind]*Registry{
	Frequency: newRegistry(Frequency,
		Unit{"Hz", 0}, Unit{"kHz", 3}, Unit{"MHz", 6}, Unit{"GHz", 9}),
	Capacitance: newRegistry(Capacitance,
		Unit{"F", 0}, Unit{"mF", -3}, Unit{"μF", -6}, Unit{"nF", -9}, Unit{"pF", -12}),
	Inductance: newRegistry(Inductance,
		Unit{"H", 0}, Unit{"mH", -3}, Unit{"μH", -6}, Unit{"nH", -9}, Unit{"pH", -12}),
	Resistance: newRegistry(Resistance,
		Unit{"Ω", 0}, Unit{"kΩ", 3}, Unit{"MΩ", 6}),
}

// Lookup returns the registry of kind.
func Lookup(kind Kind) (*Registry, error) {
	switch kind {
	case Frequency, Capacitance, Inductance, Resistance:
		return registries[kind], nil
	default:
		return nil, mdwerror.New("no unit registry for kind").
			WithCode(mdwerror.CodeInvalidQuantity).
			WithDetail("kind", kind.String()).
			WithOperation("units.Lookup")
	}
}

// Kind returns the kind the registry belongs to
func (r *Registry) Kind() Kind { return r.kind }

// Units returns a copy of the ordered table
func (r *Registry) Units() []Unit {
	out := make([]Unit, len(r.units))
	copy(out, r.units)
	return out
}

// Labels returns the labels in order
func (r *Registry) Labels() []string {
	out := make([]string, len(r.units))
	for i, u := range r.units {
		out[i] = u.Label
	}
	return out
}

// Base returns the label with exponent 0.
func (r *Registry) Base() string {
	return r.units[0].Label
}

// Contains reports whether label belongs to the registry
func (r *Registry) Contains(label string) bool {
	_, ok := r.byLabel[label]
	return ok
}

// Exponent returns the power of ten of label relative to the base unit.
func (r *Registry) Exponent(label string) (int, error) {
	exp, ok := r.byLabel[label]
	if !ok {
		return 0, unknownLabel(r.kind, label)
	}
	return exp, nil
}

func unknownLabel(kind Kind, label string) error {
	return mdwerror.New("unknown unit label").
		WithCode(mdwerror.CodeUnknownUnit).
		WithDetail("kind", kind.String()).
		WithDetail("label", label).
		WithOperation("units.Exponent")
}

// Labels returns the labels of kind in order, or nil for Unknown.
func Labels(kind Kind) []string {
	r, err := Lookup(kind)
	if err != nil {
		return nil
	}
	return r.Labels()
}

// BaseLabel returns the SI base unit label of kind.
func BaseLabel(kind Kind) (string, error) {
	r, err := Lookup(kind)
	if err != nil {
		return "", err
	}
	return r.Base(), nil
}

// Exponent returns the exponent of label within kind.
func Exponent(kind Kind, label string) (int, error) {
	r, err := Lookup(kind)
	if err != nil {
		return 0, err
	}
	return r.Exponent(label)
}

// Classify returns the kind whose registry holds label. Registries are
// scanned in the order Frequency, Capacitance, Inductance, Resistance and
// the first match wins; Unknown is returned when nothing matches.
func Classify(label string) Kind {
	for _, kind := range AllKinds() {
		if registries[kind].Contains(label) {
			return kind
		}
	}
	return Unknown
}

var aliases = strings.NewReplacer(
	"\u00b5", "μ", // micro sign
	"\u2126", "Ω", // ohm sign
	"Ohm", "Ω",
	"ohm", "Ω",
)

// Normalize maps common ASCII spellings onto registry labels: a leading
// "u" for micro, "ohm" for Ω and the micro/ohm compatibility code points.
func Normalize(label string) string {
	label = aliases.Replace(strings.TrimSpace(label))
	if strings.HasPrefix(label, "u") && len(label) > 1 {
		if candidate := "μ" + label[1:]; Classify(candidate) != Unknown {
			return candidate
		}
	}
	return label
}

// KindInfo summarizes the registry of one kind for listings.
type KindInfo struct {
	Kind   Kind   `json:"kind"`
	Symbol string `json:"symbol"`
	Base   string `json:"base"`
	Units  []Unit `json:"units"`
}

// Describe summarizes the registries of kinds, or of every kind when none
// are given.
func Describe(kinds ...Kind) ([]KindInfo, error) {
	if len(kinds) == 0 {
		kinds = AllKinds()
	}
	out := make([]KindInfo, 0, len(kinds))
	for _, kind := range kinds {
		r, err := Lookup(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, KindInfo{Kind: kind, Symbol: kind.Symbol(), Base: r.Base(), Units: r.Units()})
	}
	return out, nil
}
