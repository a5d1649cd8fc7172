package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/foundation/utils/mathx"
	"github.com/Nicolas5241/TheCalcularoty/internal/calc"
	"github.com/Nicolas5241/TheCalcularoty/internal/formula"
)

const yamlJobs = `
jobs:
  - name: tank
    inductance: {value: 10, unit: mH}
    frequency: {value: "1000", unit: Hz}
    targets:
      resonant_frequency: kHz
  - inductance: {value: 1, unit: H}
    capacitance: {value: 1, unit: F}
    mode: parallel
  - name: broken
    inductance: {value: "ten", unit: mH}
    capacitance: {value: 1, unit: uF}
`

const tomlJobs = `
[[jobs]]
name = "tank"
mode = "series"
inductance = { value = 10, unit = "mH" }
frequency = { value = 1000.5, unit = "Hz" }
capacitance = { value = "0.000000000000000000012345678901234567890", unit = "F" }

[jobs.targets]
impedance = "kΩ"
`

func newRunner(workers int) *Runner {
	orchestrator := calc.New(formula.New(mathx.NewConstCache()), calc.Config{})
	return NewRunner(orchestrator, RunnerConfig{
		Defaults: calc.Defaults{Mode: formula.Series, ImpedanceUnit: "Ω", ReactanceUnit: "Ω", FrequencyUnit: "Hz"},
		Workers:  workers,
	})
}

func TestParseYAML(t *testing.T) {
	f, err := Parse([]byte(yamlJobs), ".yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Jobs) != 3 {
		t.Fatalf("len(Jobs) = %d, want 3", len(f.Jobs))
	}
	first := f.Jobs[0]
	if first.Name != "tank" || first.Inductance.Value != "10" || first.Frequency.Value != "1000" {
		t.Errorf("first job = %+v", first)
	}
	if first.Capacitance.Value != "" {
		t.Errorf("absent capacitance = %q, want empty", first.Capacitance.Value)
	}
	if first.Targets.ResonantFrequency != "kHz" {
		t.Errorf("targets = %+v", first.Targets)
	}
	if f.Jobs[1].Name != "job-2" {
		t.Errorf("unnamed job got name %q, want job-2", f.Jobs[1].Name)
	}
}

func TestParseTOML(t *testing.T) {
	f, err := Parse([]byte(tomlJobs), ".toml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Jobs) != 1 {
		t.Fatalf("len(Jobs) = %d, want 1", len(f.Jobs))
	}
	job := f.Jobs[0]
	if job.Inductance.Value != "10" {
		t.Errorf("integer value = %q, want 10", job.Inductance.Value)
	}
	if job.Frequency.Value != "1000.5" {
		t.Errorf("float value = %q, want 1000.5", job.Frequency.Value)
	}
	if job.Capacitance.Value != "0.000000000000000000012345678901234567890" {
		t.Errorf("quoted value = %q, want source text", job.Capacitance.Value)
	}
	if job.Targets.Impedance != "kΩ" {
		t.Errorf("targets = %+v", job.Targets)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte("jobs: []"), ".json"); !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("unsupported extension error = %v", err)
	}
	if _, err := Parse([]byte("jobs: [ {"), ".yaml"); !mdwerror.HasCode(err, mdwerror.CodeInvalidFormat) {
		t.Errorf("broken yaml error = %v", err)
	}
	if _, err := Parse([]byte("jobs:\n  - inductance: {value: [1, 2]}\n"), ".yml"); err == nil {
		t.Error("sequence as number: expected error")
	}
	if _, err := Parse([]byte("[[jobs]]\ninductance = { value = true }\n"), ".toml"); err == nil {
		t.Error("bool as number: expected error")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.yaml")
	if err := os.WriteFile(path, []byte(yamlJobs), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(f.Jobs) != 3 {
		t.Errorf("len(Jobs) = %d, want 3", len(f.Jobs))
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestJobRequestDefaults(t *testing.T) {
	d := calc.Defaults{Mode: formula.Parallel, ImpedanceUnit: "kΩ", ReactanceUnit: "Ω", FrequencyUnit: "MHz"}

	req, err := Job{Name: "a", Targets: calc.Targets{Impedance: "MΩ"}}.Request(d)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if req.Mode != formula.Parallel {
		t.Errorf("mode = %v, want parallel", req.Mode)
	}
	want := calc.Targets{Impedance: "MΩ", InductiveReactance: "Ω", CapacitiveReactance: "Ω", ResonantFrequency: "MHz"}
	if req.Targets != want {
		t.Errorf("targets = %+v, want %+v", req.Targets, want)
	}

	req, err = Job{Name: "b", Mode: "series"}.Request(d)
	if err != nil || req.Mode != formula.Series {
		t.Errorf("explicit mode = %v, %v", req.Mode, err)
	}

	_, err = Job{Name: "c", Mode: "diagonal"}.Request(d)
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("bad mode error = %v", err)
	}
}

func TestRunnerPreservesOrder(t *testing.T) {
	f, err := Parse([]byte(yamlJobs), ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	outcomes, err := newRunner(2).Run(context.Background(), f.Jobs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("len(outcomes) = %d, want 3", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Index != i || o.Name != f.Jobs[i].Name {
			t.Errorf("outcome %d = (%d, %q)", i, o.Index, o.Name)
		}
	}

	tank := outcomes[0]
	if !tank.OK() || !tank.Result.Computed {
		t.Fatalf("tank outcome = %+v", tank)
	}
	if got := tank.Result.ResonantFrequency; got.Unit != "kHz" || got.Display != "~1" {
		t.Errorf("tank f0 = %s %s, want ~1 kHz", got.Display, got.Unit)
	}
	if len(tank.Result.Inferred) != 1 {
		t.Errorf("tank inferred = %+v", tank.Result.Inferred)
	}

	unit := outcomes[1]
	if !unit.OK() || unit.Result.Mode != formula.Parallel {
		t.Fatalf("unit outcome = %+v", unit)
	}
	if got := unit.Result.ResonantFrequency.Display; got != "~0.159154943091895" {
		t.Errorf("unit f0 = %s", got)
	}

	broken := outcomes[2]
	if broken.OK() || broken.Code != string(mdwerror.CodeInvalidInput) {
		t.Errorf("broken outcome = %+v", broken)
	}
	if broken.Result != nil {
		t.Errorf("broken result = %+v, want nil", broken.Result)
	}
}

func TestRunnerRejectsHugeExponent(t *testing.T) {
	f, err := Parse([]byte(`
jobs:
  - name: runaway
    inductance: {value: "1e2000000000", unit: H}
    capacitance: {value: 1, unit: F}
`), ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	outcomes, err := newRunner(1).Run(context.Background(), f.Jobs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	runaway := outcomes[0]
	if runaway.OK() || runaway.Code != string(mdwerror.CodeInvalidInput) {
		t.Fatalf("outcome = %+v", runaway)
	}
	if mdwerror.FieldOf(runaway.Err) != "inductance" {
		t.Errorf("field = %q", mdwerror.FieldOf(runaway.Err))
	}
	var e *mdwerror.Error
	if !errors.As(runaway.Err, &e) || e.Details()["job"] != "runaway" {
		t.Errorf("error details = %v", e)
	}
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{{Name: "a"}, {Name: "b"}}
	outcomes, err := newRunner(1).Run(ctx, jobs)
	if !mdwerror.HasCode(err, mdwerror.CodeTimeout) {
		t.Fatalf("Run() error = %v, want TIMEOUT", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("len(outcomes) = %d, want 2", len(outcomes))
	}
}

func TestWriteJSONLines(t *testing.T) {
	f, err := Parse([]byte(yamlJobs), ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	outcomes, err := newRunner(0).Run(context.Background(), f.Jobs)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteJSONLines(&buf, outcomes); err != nil {
		t.Fatalf("WriteJSONLines() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	var first struct {
		Name   string `json:"name"`
		Result struct {
			Computed          bool   `json:"computed"`
			RequestID         string `json:"request_id"`
			ResonantFrequency struct {
				Display string `json:"display"`
				Unit    string `json:"unit"`
			} `json:"resonant_frequency"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0: %v", err)
	}
	if first.Name != "tank" || !first.Result.Computed || first.Result.ResonantFrequency.Unit != "kHz" {
		t.Errorf("line 0 = %+v", first)
	}
	if !strings.HasSuffix(first.Result.RequestID, "/1") {
		t.Errorf("request id = %q, want batch id with /1 suffix", first.Result.RequestID)
	}

	var last map[string]interface{}
	if err := json.Unmarshal([]byte(lines[2]), &last); err != nil {
		t.Fatalf("line 2: %v", err)
	}
	if last["code"] != string(mdwerror.CodeInvalidInput) || last["result"] != nil {
		t.Errorf("line 2 = %v", last)
	}
}
