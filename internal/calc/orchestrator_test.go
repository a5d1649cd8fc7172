package calc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	mdwlog "github.com/Nicolas5241/TheCalcularoty/foundation/core/log"
	"github.com/Nicolas5241/TheCalcularoty/foundation/utils/mathx"
	"github.com/Nicolas5241/TheCalcularoty/internal/formula"
	"github.com/Nicolas5241/TheCalcularoty/internal/units"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/cache"
)

var testEngine = formula.New(mathx.NewConstCache())

type recordingSink struct {
	kinds  []units.Kind
	values []Value
}

func (s *recordingSink) Inferred(kind units.Kind, value Value) {
	s.kinds = append(s.kinds, kind)
	s.values = append(s.values, value)
}

func newOrchestrator(lenient bool) *Orchestrator {
	return New(testEngine, Config{Lenient: lenient})
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		text string
		want InputState
	}{
		{"", Absent},
		{"   \t", Absent},
		{"10", Present},
		{" -1.5e-3 ", Present},
		{"Inf", Present},
		{"abc", Invalid},
		{"1.2.3", Invalid},
		{"NaN", Invalid},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseInput(tt.text)
			if got.State != tt.want {
				t.Errorf("ParseInput(%q).State = %v, want %v", tt.text, got.State, tt.want)
			}
			if got.State == Invalid && got.Raw != tt.text {
				t.Errorf("Raw = %q, want %q", got.Raw, tt.text)
			}
			if got.Lenient().State == Invalid {
				t.Error("Lenient() kept Invalid state")
			}
		})
	}
}

func TestCalculateInfersCapacitance(t *testing.T) {
	o := newOrchestrator(false)
	sink := &recordingSink{}
	req := Request{
		Inductance:  Quantity{Text: "10", Unit: "mH"},
		Capacitance: Quantity{Text: "", Unit: "μF"},
		Frequency:   Quantity{Text: "1000", Unit: "Hz"},
		Mode:        formula.Series,
	}

	result, err := o.Calculate(context.Background(), req, sink)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if !result.Computed {
		t.Fatal("Calculate() did not compute")
	}

	direct := testEngine.CapacitanceFrom(mathx.MustParse("0.01"), mathx.NewFromInt(1000))
	wantMicro, err := units.ConvertFromBase(direct, units.Capacitance, "μF")
	if err != nil {
		t.Fatal(err)
	}

	if len(sink.kinds) != 1 || sink.kinds[0] != units.Capacitance {
		t.Fatalf("sink received %v, want one capacitance", sink.kinds)
	}
	got := sink.values[0]
	if got.Unit != "μF" || !got.Number.Equal(wantMicro) {
		t.Errorf("inferred = %s %s, want %s μF", got.Exact, got.Unit, wantMicro)
	}
	if got.Display != "~2.53302959105844" {
		t.Errorf("inferred display = %q", got.Display)
	}
	if got.Exact != wantMicro.ExactString() {
		t.Errorf("inferred exact = %q", got.Exact)
	}
	if len(result.Inferred) != 1 || result.Inferred[0].Value.Exact != got.Exact {
		t.Errorf("Result.Inferred = %+v", result.Inferred)
	}
	if !result.Base.Capacitance.Equal(direct) {
		t.Errorf("base capacitance = %s", result.Base.Capacitance.DisplayString())
	}

	// Resonance of the inferred pair is the given frequency.
	if result.ResonantFrequency.Unit != "Hz" {
		t.Errorf("f0 unit = %q", result.ResonantFrequency.Unit)
	}
	if result.ResonantFrequency.Display != "~1000" {
		t.Errorf("f0 = %s", result.ResonantFrequency.Display)
	}
	if cmp, _ := result.Impedance.Number.CompareOK(mathx.Pow10(-290)); cmp > 0 {
		t.Errorf("series impedance at resonance = %s", result.Impedance.Display)
	}
	if result.InductiveReactance.Unit != "Ω" || result.InductiveReactance.Display != "~62.8318530717959" {
		t.Errorf("Xl = %s %s", result.InductiveReactance.Display, result.InductiveReactance.Unit)
	}
}

func TestCalculateAllPresent(t *testing.T) {
	o := newOrchestrator(false)
	sink := &recordingSink{}
	req := Request{
		Inductance:  Quantity{Text: "1", Unit: "H"},
		Capacitance: Quantity{Text: "1", Unit: "F"},
		Frequency:   Quantity{Text: "1", Unit: "kHz"},
		Mode:        formula.Parallel,
		Targets: Targets{
			Impedance:           "kΩ",
			InductiveReactance:  "kΩ",
			CapacitiveReactance: "Ω",
			ResonantFrequency:   "Hz",
		},
	}
	result, err := o.Calculate(context.Background(), req, sink)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if len(sink.kinds) != 0 || len(result.Inferred) != 0 {
		t.Error("nothing should be inferred when every quantity is given")
	}
	if result.Mode != formula.Parallel {
		t.Errorf("Mode = %v", result.Mode)
	}
	// ω = 2000π, Xl = 2000π Ω = 2π kΩ
	if result.InductiveReactance.Display != "~6.28318530717959" || result.InductiveReactance.Unit != "kΩ" {
		t.Errorf("Xl = %s %s", result.InductiveReactance.Display, result.InductiveReactance.Unit)
	}
	if result.ResonantFrequency.Display != "~0.159154943091895" {
		t.Errorf("f0 = %s", result.ResonantFrequency.Display)
	}
	if !result.Base.Frequency.Equal(mathx.NewFromInt(1000)) {
		t.Errorf("base frequency = %s", result.Base.Frequency)
	}
}

func TestCalculateUnderdeterminedIsNoop(t *testing.T) {
	o := newOrchestrator(false)
	sink := &recordingSink{}
	req := Request{Frequency: Quantity{Text: "1000", Unit: "Hz"}}

	result, err := o.Calculate(context.Background(), req, sink)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if result.Computed {
		t.Error("Computed = true with two absent quantities")
	}
	if len(sink.kinds) != 0 {
		t.Errorf("sink was called %d times", len(sink.kinds))
	}
	if result.Impedance.Exact != "" {
		t.Errorf("Impedance = %+v, want empty", result.Impedance)
	}
}

func TestCalculateStrictRejectsMalformed(t *testing.T) {
	o := newOrchestrator(false)
	req := Request{
		Inductance:  Quantity{Text: "10x", Unit: "mH"},
		Capacitance: Quantity{Text: "1", Unit: "μF"},
		Frequency:   Quantity{Text: "1000", Unit: "Hz"},
	}
	_, err := o.Calculate(context.Background(), req, nil)
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Fatalf("error = %v, want INVALID_INPUT", err)
	}
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidFormat) {
		t.Error("cause should carry INVALID_FORMAT")
	}
	var typed *mdwerror.Error
	if !errors.As(err, &typed) {
		t.Fatalf("error type = %T", err)
	}
	if typed.Details()["field"] != "inductance" {
		t.Errorf("details = %v", typed.Details())
	}
	if typed.RequestID() == "" {
		t.Error("error should carry the request id")
	}
}

func TestCalculateLenientTreatsMalformedAsAbsent(t *testing.T) {
	o := newOrchestrator(true)
	sink := &recordingSink{}
	req := Request{
		Inductance:  Quantity{Text: "10", Unit: "mH"},
		Capacitance: Quantity{Text: "oops", Unit: "μF"},
		Frequency:   Quantity{Text: "1000", Unit: "Hz"},
	}
	result, err := o.Calculate(context.Background(), req, sink)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if !result.Computed || len(sink.kinds) != 1 || sink.kinds[0] != units.Capacitance {
		t.Errorf("lenient calculation = %+v, sink %v", result, sink.kinds)
	}

	// Two malformed fields leave too little to work with.
	req.Inductance.Text = "?"
	result, err = o.Calculate(context.Background(), req, nil)
	if err != nil || result.Computed {
		t.Errorf("Calculate() = %+v, %v, want no-op", result, err)
	}
}

func TestCalculateUnknownUnits(t *testing.T) {
	o := newOrchestrator(false)
	base := Request{
		Inductance:  Quantity{Text: "1", Unit: "H"},
		Capacitance: Quantity{Text: "1", Unit: "F"},
		Frequency:   Quantity{Text: "1", Unit: "Hz"},
	}

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"input unit", func(r *Request) { r.Inductance.Unit = "Hz" }},
		{"absent field unit", func(r *Request) { r.Capacitance = Quantity{Unit: "mH"} }},
		{"impedance target", func(r *Request) { r.Targets.Impedance = "GΩ" }},
		{"frequency target", func(r *Request) { r.Targets.ResonantFrequency = "Ω" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := o.Calculate(context.Background(), req, nil)
			if !mdwerror.HasCode(err, mdwerror.CodeUnknownUnit) {
				t.Errorf("error = %v, want UNKNOWN_UNIT", err)
			}
		})
	}
}

func TestCalculateNormalizesUnitAliases(t *testing.T) {
	o := newOrchestrator(false)
	req := Request{
		Inductance:  Quantity{Text: "10", Unit: "mH"},
		Capacitance: Quantity{Unit: "uF"},
		Frequency:   Quantity{Text: "1", Unit: "kHz"},
		Targets:     Targets{Impedance: "kohm"},
	}
	result, err := o.Calculate(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if result.Inferred[0].Value.Unit != "μF" || result.Impedance.Unit != "kΩ" {
		t.Errorf("units = %q, %q", result.Inferred[0].Value.Unit, result.Impedance.Unit)
	}
}

func TestCalculateInvalidMode(t *testing.T) {
	o := newOrchestrator(false)
	req := Request{
		Inductance:  Quantity{Text: "1"},
		Capacitance: Quantity{Text: "1"},
		Mode:        formula.Mode(7),
	}
	if _, err := o.Calculate(context.Background(), req, nil); !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestCalculateInvalidModeBeforeNoop(t *testing.T) {
	o := newOrchestrator(false)
	req := Request{Frequency: Quantity{Text: "1000"}, Mode: formula.Mode(7)}

	result, err := o.Calculate(context.Background(), req, nil)
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Fatalf("Calculate() = %+v, %v, want INVALID_INPUT", result, err)
	}

	noop, err := o.Calculate(context.Background(), Request{Frequency: Quantity{Text: "1000"}, Mode: formula.Parallel}, nil)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if _, err := json.Marshal(noop); err != nil {
		t.Errorf("no-op result does not encode: %v", err)
	}
}

func TestCalculateRejectsHugeExponent(t *testing.T) {
	inputs := []string{"1e2000000000", "1e20000000", "1e-20000000"}
	for _, text := range inputs {
		t.Run(text, func(t *testing.T) {
			req := Request{
				Inductance:  Quantity{Text: text, Unit: "H"},
				Capacitance: Quantity{Text: "1", Unit: "F"},
			}

			_, err := newOrchestrator(false).Calculate(context.Background(), req, nil)
			if !mdwerror.HasCode(err, mdwerror.CodeInvalidFormat) {
				t.Fatalf("error = %v, want INVALID_FORMAT cause", err)
			}
			if mdwerror.FieldOf(err) != "inductance" {
				t.Errorf("field = %q, want inductance", mdwerror.FieldOf(err))
			}

			// Lenient mode drops the field, leaving too little to compute.
			result, err := newOrchestrator(true).Calculate(context.Background(), req, nil)
			if err != nil || result.Computed {
				t.Errorf("lenient Calculate() = %+v, %v, want no-op", result, err)
			}
		})
	}
}

func TestCalculateOutputStaysBounded(t *testing.T) {
	edge := "1e" + strconv.Itoa(mathx.MaxInputExponent-1)
	req := Request{
		Inductance:  Quantity{Text: edge, Unit: "H"},
		Capacitance: Quantity{Text: edge, Unit: "F"},
	}
	result, err := newOrchestrator(false).Calculate(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if len(data) > 64*mathx.MaxInputExponent {
		t.Errorf("result encodes to %d bytes", len(data))
	}
}

func TestCalculateAtExactParallelResonance(t *testing.T) {
	o := newOrchestrator(false)
	req := Request{
		Inductance:  Quantity{Text: "1"},
		Capacitance: Quantity{Text: "1"},
		Frequency:   Quantity{Text: "0.159154943091895"},
		Mode:        formula.Parallel,
	}
	result, err := o.Calculate(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if cmp, _ := result.Impedance.Number.CompareOK(mathx.NewFromInt(1000)); cmp < 0 {
		t.Errorf("parallel impedance near resonance = %s", result.Impedance.Display)
	}
}

func TestCalculateInfersInductanceAndFrequency(t *testing.T) {
	o := newOrchestrator(false)

	l, c := mathx.MustParse("0.01"), mathx.MustParse("0.000001")
	f0 := testEngine.ResonantFrequency(l, c)

	sink := &recordingSink{}
	_, err := o.Calculate(context.Background(), Request{
		Capacitance: Quantity{Text: "1", Unit: "μF"},
		Frequency:   Quantity{Text: f0.ExactString(), Unit: "Hz"},
		Inductance:  Quantity{Unit: "mH"},
	}, sink)
	if err != nil {
		t.Fatal(err)
	}
	if len(sink.values) != 1 || sink.kinds[0] != units.Inductance || sink.values[0].Display != "~10" {
		t.Errorf("inferred inductance = %+v", sink.values)
	}

	sink = &recordingSink{}
	_, err = o.Calculate(context.Background(), Request{
		Inductance:  Quantity{Text: "10", Unit: "mH"},
		Capacitance: Quantity{Text: "1", Unit: "μF"},
		Frequency:   Quantity{Unit: "kHz"},
	}, sink)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := units.ConvertFromBase(f0, units.Frequency, "kHz")
	if len(sink.values) != 1 || sink.kinds[0] != units.Frequency || !sink.values[0].Number.Equal(want) {
		t.Errorf("inferred frequency = %+v", sink.values)
	}
}

func TestCalculateUsesContextRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := mdwlog.NewWithConfig(mdwlog.Config{Level: mdwlog.LevelDebug, Format: mdwlog.FormatJSON, Output: &buf})
	o := New(testEngine, Config{Logger: logger})

	ctx := WithRequestID(context.Background(), "req-42")
	result, err := o.Calculate(ctx, Request{
		Inductance:  Quantity{Text: "1"},
		Capacitance: Quantity{Text: "1"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.RequestID != "req-42" {
		t.Errorf("RequestID = %q", result.RequestID)
	}
	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) || !strings.Contains(out, "calculate completed") {
		t.Errorf("log output = %s", out)
	}

	result, err = o.Calculate(context.Background(), Request{}, nil)
	if err != nil || result.RequestID == "" || result.RequestID == "req-42" {
		t.Errorf("generated RequestID = %q, %v", result.RequestID, err)
	}
}

func TestResonance(t *testing.T) {
	o := newOrchestrator(false)
	got, err := o.Resonance(context.Background(), Quantity{Text: "1", Unit: "H"}, Quantity{Text: "1", Unit: "F"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Unit != "Hz" || got.Display != "~0.159154943091895" {
		t.Errorf("Resonance() = %+v", got)
	}

	got, err = o.Resonance(context.Background(), Quantity{Text: "10", Unit: "mH"}, Quantity{Text: "1", Unit: "μF"}, "kHz")
	if err != nil || got.Display != "~1.59154943091895" {
		t.Errorf("Resonance(10 mH, 1 μF) = %+v, %v", got, err)
	}

	_, err = o.Resonance(context.Background(), Quantity{Text: "1"}, Quantity{}, "Hz")
	if !mdwerror.HasCode(err, mdwerror.CodeUnderdetermined) {
		t.Errorf("missing capacitance error = %v", err)
	}
	_, err = o.Resonance(context.Background(), Quantity{Text: "x"}, Quantity{Text: "1"}, "Hz")
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("malformed inductance error = %v", err)
	}
}

func TestSelfTest(t *testing.T) {
	if err := New(nil, Config{}).SelfTest(context.Background()); err != nil {
		t.Errorf("SelfTest() error = %v", err)
	}
}

func TestCalculateCachedReplaysInference(t *testing.T) {
	results := cache.New[*Result](cache.Config{MaxItems: 8})
	defer results.Close()
	o := New(testEngine, Config{Cache: results})

	req := Request{
		Inductance: Quantity{Text: "10", Unit: "mH"},
		Frequency:  Quantity{Text: "1", Unit: "kHz"},
	}
	first, err := o.Calculate(WithRequestID(context.Background(), "first"), req, nil)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	sink := &recordingSink{}
	second, err := o.Calculate(WithRequestID(context.Background(), "second"), req, sink)
	if err != nil {
		t.Fatalf("cached Calculate() error = %v", err)
	}
	if stats := results.Stats(); stats.Hits != 1 || stats.Size != 1 {
		t.Errorf("cache stats = %+v", stats)
	}
	if second.RequestID != "second" || first.RequestID != "first" {
		t.Errorf("request ids = %q, %q", first.RequestID, second.RequestID)
	}
	if len(sink.kinds) != 1 || sink.kinds[0] != units.Capacitance {
		t.Errorf("replayed inferences = %v", sink.kinds)
	}
	if second.ResonantFrequency.Exact != first.ResonantFrequency.Exact {
		t.Errorf("f0 = %s, want %s", second.ResonantFrequency.Exact, first.ResonantFrequency.Exact)
	}

	// Underdetermined requests are not cached.
	if _, err := o.Calculate(context.Background(), Request{}, nil); err != nil {
		t.Fatal(err)
	}
	if results.Size() != 1 {
		t.Errorf("cache size = %d, want 1", results.Size())
	}
}
