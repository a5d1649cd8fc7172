// Package batch runs many LC calculations described in a YAML or TOML jobs
// file and reports one outcome per job.
package batch

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/internal/calc"
)

// Number is a quantity as written in a jobs file. YAML scalars keep their
// source text; TOML floats pass through float64, so values that need more
// than 17 significant digits should be quoted.
type Number string

// UnmarshalTOML implements toml.Unmarshaler
func (n *Number) UnmarshalTOML(v interface{}) error {
	switch x := v.(type) {
	case string:
		*n = Number(x)
	case int64:
		*n = Number(strconv.FormatInt(x, 10))
	case float64:
		*n = Number(strconv.FormatFloat(x, 'g', -1, 64))
	default:
		return mdwerror.Newf("unsupported number type %T", v).
			WithCode(mdwerror.CodeInvalidFormat)
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (n *Number) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return mdwerror.New("number must be a scalar").
			WithCode(mdwerror.CodeInvalidFormat).
			WithDetail("line", value.Line)
	}
	if value.Tag == "!!null" {
		*n = ""
		return nil
	}
	*n = Number(value.Value)
	return nil
}

// Quantity is a value and its unit label.
type Quantity struct {
	Value Number `toml:"value" yaml:"value"`
	Unit  string `toml:"unit" yaml:"unit"`
}

// Job is one calculation in a jobs file. Mode and empty target labels
// fall back to the runner's defaults.
type Job struct {
	Name        string       `toml:"name" yaml:"name"`
	Inductance  Quantity     `toml:"inductance" yaml:"inductance"`
	Capacitance Quantity     `toml:"capacitance" yaml:"capacitance"`
	Frequency   Quantity     `toml:"frequency" yaml:"frequency"`
	Mode        string       `toml:"mode" yaml:"mode"`
	Targets     calc.Targets `toml:"targets" yaml:"targets"`
}

// File is the top-level document of a jobs file.
type File struct {
	Jobs []Job `toml:"jobs" yaml:"jobs"`
}

// Load reads a jobs file, choosing the decoder by extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mdwerror.Wrap(err, "jobs file not found").
				WithCode(mdwerror.CodeNotFound).
				WithDetail("path", path)
		}
		return nil, mdwerror.Wrap(err, "failed to read jobs file").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("path", path)
	}
	f, err := Parse(data, filepath.Ext(path))
	if err != nil {
		var e *mdwerror.Error
		if errors.As(err, &e) {
			e.WithDetail("path", path)
		}
		return nil, err
	}
	return f, nil
}

// Parse decodes a jobs document. ext is ".toml", ".yaml" or ".yml".
func Parse(data []byte, ext string) (*File, error) {
	var f File
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
			return nil, decodeError(err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, decodeError(err)
		}
	default:
		return nil, mdwerror.Newf("unsupported jobs file format: %s", ext).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("batch.Parse")
	}
	for i := range f.Jobs {
		if f.Jobs[i].Name == "" {
			f.Jobs[i].Name = "job-" + strconv.Itoa(i+1)
		}
	}
	return &f, nil
}

func decodeError(err error) error {
	return mdwerror.Wrap(err, "failed to decode jobs file").
		WithCode(mdwerror.CodeInvalidFormat).
		WithOperation("batch.Parse")
}

// Request converts j into an orchestrator request, filling the mode and
// target units from d where j leaves them empty.
func (j Job) Request(d calc.Defaults) (calc.Request, error) {
	mode, targets, err := d.Resolve(j.Mode, j.Targets)
	if err != nil {
		return calc.Request{}, mdwerror.Wrap(err, "invalid job mode").
			WithDetail("job", j.Name)
	}
	return calc.Request{
		Inductance:  calc.Quantity{Text: string(j.Inductance.Value), Unit: j.Inductance.Unit},
		Capacitance: calc.Quantity{Text: string(j.Capacitance.Value), Unit: j.Capacitance.Unit},
		Frequency:   calc.Quantity{Text: string(j.Frequency.Value), Unit: j.Frequency.Unit},
		Mode:        mode,
		Targets:     targets,
	}, nil
}
