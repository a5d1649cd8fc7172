// Package calc runs one LC calculation end to end: it parses the
// user-entered quantities, derives the missing one, computes impedance,
// reactances and resonant frequency and renders every output in the
// requested unit.
package calc

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	mdwlog "github.com/Nicolas5241/TheCalcularoty/foundation/core/log"
	"github.com/Nicolas5241/TheCalcularoty/foundation/utils/mathx"
	"github.com/Nicolas5241/TheCalcularoty/internal/formula"
	"github.com/Nicolas5241/TheCalcularoty/internal/units"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/cache"
)

// Config configures an Orchestrator.
type Config struct {
	// Lenient treats malformed input like an empty field instead of
	// rejecting the request.
	Lenient bool
	Logger  *mdwlog.Logger
	// Cache, when set, memoizes computed results by request. The owner
	// closes it.
	Cache *cache.Cache[*Result]
}

// Orchestrator is safe for concurrent use; it holds no per-request state.
type Orchestrator struct {
	engine  *formula.Engine
	lenient bool
	logger  *mdwlog.Logger
	cache   *cache.Cache[*Result]
}

// New creates an orchestrator over engine. A nil engine gets one backed by
// the process-wide constant cache.
func New(engine *formula.Engine, cfg Config) *Orchestrator {
	if engine == nil {
		engine = formula.New(mathx.DefaultConsts())
	}
	logger := cfg.Logger
	if logger == nil {
		logger = mdwlog.Discard()
	}
	return &Orchestrator{
		engine:  engine,
		lenient: cfg.Lenient,
		logger:  logger.WithName("calc"),
		cache:   cfg.Cache,
	}
}

// Engine returns the formula engine the orchestrator evaluates with
func (o *Orchestrator) Engine() *formula.Engine { return o.engine }

// Lenient reports whether malformed input is treated as absent
func (o *Orchestrator) Lenient() bool { return o.lenient }

// CacheStats returns the result cache counters; ok is false without a cache
func (o *Orchestrator) CacheStats() (stats cache.Stats, ok bool) {
	if o.cache == nil {
		return cache.Stats{}, false
	}
	return o.cache.Stats(), true
}

type field struct {
	name  string
	kind  units.Kind
	input Input
	unit  string
	base  mathx.Decimal
}

// Calculate runs req. With fewer than two usable quantities it returns a
// Result with Computed false and a nil error, and sink is never called.
// Otherwise the absent quantity, if any, is derived and reported through
// sink (which may be nil) in its field's unit before the outputs are
// computed.
func (o *Orchestrator) Calculate(ctx context.Context, req Request, sink InferenceSink) (*Result, error) {
	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	logger := o.logger.WithRequestID(requestID)
	timer := logger.StartTimer("calculate")

	key := requestKey(req)
	if o.cache != nil {
		if cached, ok := o.cache.Get(key); ok {
			result := cached.replay(requestID, sink)
			timer.WithField("computed", true).WithField("cached", true).Stop()
			return result, nil
		}
	}

	result, err := o.calculate(req, sink, requestID)
	if err != nil {
		var e *mdwerror.Error
		if errors.As(err, &e) {
			e.WithRequestID(requestID)
		}
		timer.StopWithError(err)
		return nil, err
	}
	if o.cache != nil && result.Computed {
		o.cache.Set(key, result)
	}
	timer.WithField("computed", result.Computed).Stop()
	return result, nil
}

// requestKey identifies req for the result cache
func requestKey(req Request) string {
	return fmt.Sprintf("%q|%q|%q|%q|%q|%q|%d|%q|%q|%q|%q",
		req.Inductance.Text, req.Inductance.Unit,
		req.Capacitance.Text, req.Capacitance.Unit,
		req.Frequency.Text, req.Frequency.Unit,
		int(req.Mode),
		req.Targets.Impedance, req.Targets.InductiveReactance,
		req.Targets.CapacitiveReactance, req.Targets.ResonantFrequency)
}

// replay copies a cached result for a new request and feeds its
// inferences to sink.
func (r *Result) replay(requestID string, sink InferenceSink) *Result {
	out := *r
	out.RequestID = requestID
	out.Inferred = append([]Inference(nil), r.Inferred...)
	if sink != nil {
		for _, inf := range out.Inferred {
			sink.Inferred(inf.Kind, inf.Value)
		}
	}
	return &out
}

func (o *Orchestrator) calculate(req Request, sink InferenceSink, requestID string) (*Result, error) {
	if !req.Mode.Valid() {
		return nil, mdwerror.New("unknown impedance mode").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("mode", int(req.Mode)).
			WithOperation("calc.Calculate")
	}

	fields := []*field{
		{name: "inductance", kind: units.Inductance, input: ParseInput(req.Inductance.Text), unit: req.Inductance.Unit},
		{name: "capacitance", kind: units.Capacitance, input: ParseInput(req.Capacitance.Text), unit: req.Capacitance.Unit},
		{name: "frequency", kind: units.Frequency, input: ParseInput(req.Frequency.Text), unit: req.Frequency.Unit},
	}

	absent := 0
	for _, f := range fields {
		if f.input.State == Invalid {
			if !o.lenient {
				return nil, malformed(f)
			}
			f.input = f.input.Lenient()
		}
		if f.input.State == Absent {
			absent++
		}
	}
	if absent > 1 {
		return &Result{Computed: false, RequestID: requestID, Mode: req.Mode}, nil
	}

	for _, f := range fields {
		unit, err := resolveUnit(f.kind, f.unit, f.name)
		if err != nil {
			return nil, err
		}
		f.unit = unit
		if f.input.State != Present {
			continue
		}
		if f.base, err = units.ConvertToBase(f.input.Value, f.kind, f.unit); err != nil {
			return nil, fieldError(err, f.name)
		}
	}

	result := &Result{Computed: true, RequestID: requestID, Mode: req.Mode}
	l, c, freq := fields[0], fields[1], fields[2]

	// Resolve in field order; at most one of the three is missing.
	for _, f := range fields {
		if f.input.State == Present {
			continue
		}
		var derived mathx.Decimal
		var err error
		switch f.kind {
		case units.Inductance:
			derived, err = o.engine.CalculateMissing(c.base, freq.base, units.Capacitance, units.Inductance)
		case units.Capacitance:
			derived, err = o.engine.CalculateMissing(l.base, freq.base, units.Inductance, units.Capacitance)
		case units.Frequency:
			derived, err = o.engine.CalculateMissing(l.base, c.base, units.Inductance, units.Frequency)
		default:
			err = mdwerror.New("unexpected quantity kind").
				WithCode(mdwerror.CodeInternal).
				WithDetail("kind", f.kind.String())
		}
		if err != nil {
			return nil, err
		}
		f.base = derived

		shown, err := units.ConvertFromBase(derived, f.kind, f.unit)
		if err != nil {
			return nil, fieldError(err, f.name)
		}
		inference := Inference{Kind: f.kind, Value: NewValue(shown, f.unit)}
		result.Inferred = append(result.Inferred, inference)
		if sink != nil {
			sink.Inferred(inference.Kind, inference.Value)
		}
	}

	omega := o.engine.AngularFrequency(freq.base)
	imp, err := o.engine.Impedance(req.Mode, l.base, c.base, omega)
	if err != nil {
		return nil, err
	}
	f0 := o.engine.ResonantFrequency(l.base, c.base)

	result.Base = BaseValues{Inductance: l.base, Capacitance: c.base, Frequency: freq.base, Omega: omega}

	outputs := []struct {
		dst   *Value
		value mathx.Decimal
		kind  units.Kind
		label string
		name  string
	}{
		{&result.Impedance, imp.Magnitude, units.Resistance, req.Targets.Impedance, "impedance"},
		{&result.InductiveReactance, imp.Xl, units.Resistance, req.Targets.InductiveReactance, "inductive_reactance"},
		{&result.CapacitiveReactance, imp.Xc, units.Resistance, req.Targets.CapacitiveReactance, "capacitive_reactance"},
		{&result.ResonantFrequency, f0, units.Frequency, req.Targets.ResonantFrequency, "resonant_frequency"},
	}
	for _, out := range outputs {
		label, err := resolveUnit(out.kind, out.label, out.name)
		if err != nil {
			return nil, err
		}
		converted, err := units.ConvertFromBase(out.value, out.kind, label)
		if err != nil {
			return nil, fieldError(err, out.name)
		}
		*out.dst = NewValue(converted, label)
	}
	return result, nil
}

// Resonance returns the resonant frequency of l and c in target. Both
// quantities are required.
func (o *Orchestrator) Resonance(ctx context.Context, l, c Quantity, target string) (Value, error) {
	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	timer := o.logger.WithRequestID(requestID).StartTimer("resonance")

	value, err := o.resonance(l, c, target)
	if err != nil {
		timer.StopWithError(err)
		return Value{}, err
	}
	timer.Stop()
	return value, nil
}

func (o *Orchestrator) resonance(l, c Quantity, target string) (Value, error) {
	fields := []*field{
		{name: "inductance", kind: units.Inductance, input: ParseInput(l.Text), unit: l.Unit},
		{name: "capacitance", kind: units.Capacitance, input: ParseInput(c.Text), unit: c.Unit},
	}
	for _, f := range fields {
		if f.input.State == Invalid && o.lenient {
			f.input = f.input.Lenient()
		}
		switch f.input.State {
		case Invalid:
			return Value{}, malformed(f)
		case Absent:
			return Value{}, mdwerror.Newf("%s is required", f.name).
				WithCode(mdwerror.CodeUnderdetermined).
				WithField(f.name).
				WithOperation("calc.Resonance")
		case Present:
		default:
			return Value{}, mdwerror.New("unexpected input state").WithCode(mdwerror.CodeInternal)
		}
		unit, err := resolveUnit(f.kind, f.unit, f.name)
		if err != nil {
			return Value{}, err
		}
		if f.base, err = units.ConvertToBase(f.input.Value, f.kind, unit); err != nil {
			return Value{}, fieldError(err, f.name)
		}
	}

	label, err := resolveUnit(units.Frequency, target, "resonant_frequency")
	if err != nil {
		return Value{}, err
	}
	f0 := o.engine.ResonantFrequency(fields[0].base, fields[1].base)
	converted, err := units.ConvertFromBase(f0, units.Frequency, label)
	if err != nil {
		return Value{}, fieldError(err, "resonant_frequency")
	}
	return NewValue(converted, label), nil
}

// resolveUnit normalizes label and checks it against kind's registry. An
// empty label resolves to the base unit.
func resolveUnit(kind units.Kind, label, name string) (string, error) {
	if label == "" {
		base, err := units.BaseLabel(kind)
		return base, fieldError(err, name)
	}
	normalized := units.Normalize(label)
	if _, err := units.Exponent(kind, normalized); err != nil {
		return "", fieldError(err, name)
	}
	return normalized, nil
}

func malformed(f *field) error {
	var err *mdwerror.Error
	if f.input.Err != nil {
		err = mdwerror.Wrap(f.input.Err, "malformed "+f.name)
	} else {
		err = mdwerror.New("malformed " + f.name)
	}
	return err.
		WithCode(mdwerror.CodeInvalidInput).
		WithField(f.name).
		WithDetail("input", f.input.Raw).
		WithOperation("calc.Calculate")
}

func fieldError(err error, name string) error {
	if err == nil {
		return nil
	}
	return mdwerror.Wrap(err, "invalid "+name).
		WithField(name).
		WithOperation("calc.Calculate")
}

// SelfTest checks that the unit LC pair resonates at 1/(2π) Hz. Health
// checks use it to probe the engine and its constant cache.
func (o *Orchestrator) SelfTest(ctx context.Context) error {
	value, err := o.Resonance(ctx, Quantity{Text: "1", Unit: "H"}, Quantity{Text: "1", Unit: "F"}, "Hz")
	if err != nil {
		return err
	}
	if value.Display != selfTestDisplay {
		return mdwerror.Newf("self test returned %s Hz, want %s", value.Display, selfTestDisplay).
			WithCode(mdwerror.CodeInternal).
			WithOperation("calc.SelfTest")
	}
	return nil
}

const selfTestDisplay = "~0.159154943091895"
