// Package sweep evaluates an LC pair over a range of frequencies and
// exports the resulting table as XLSX or TSV.
package sweep

import (
	"context"
	"strings"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	mdwlog "github.com/Nicolas5241/TheCalcularoty/foundation/core/log"
	"github.com/Nicolas5241/TheCalcularoty/foundation/utils/mathx"
	"github.com/Nicolas5241/TheCalcularoty/internal/formula"
)

// MaxPoints bounds the number of rows one sweep may produce
const MaxPoints = 10000

// Scale spaces sweep frequencies.
type Scale int

const (
	// Linear spaces frequencies evenly.
	Linear Scale = iota
	// Log spaces frequencies evenly on a logarithmic axis.
	Log
)

// String returns the scale name
func (s Scale) String() string {
	switch s {
	case Linear:
		return "linear"
	case Log:
		return "log"
	default:
		return "unknown"
	}
}

// ParseScale accepts "linear"/"lin" and "log"/"logarithmic".
func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "lin":
		return Linear, nil
	case "log", "logarithmic":
		return Log, nil
	default:
		return Linear, mdwerror.New("unknown sweep scale").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("scale", s).
			WithOperation("sweep.ParseScale")
	}
}

// Params describes one sweep. All values are in base units.
type Params struct {
	Inductance  mathx.Decimal
	Capacitance mathx.Decimal
	Start       mathx.Decimal
	Stop        mathx.Decimal
	Points      int
	Scale       Scale
}

// Point is one row of a sweep.
type Point struct {
	Index               int
	Frequency           mathx.Decimal
	Omega               mathx.Decimal
	InductiveReactance  mathx.Decimal
	CapacitiveReactance mathx.Decimal
	Series              mathx.Decimal
	Parallel            mathx.Decimal
}

// Table is a finished sweep.
type Table struct {
	Params    Params
	Resonance mathx.Decimal
	Points    []Point
}

// Generator runs sweeps on a formula engine.
type Generator struct {
	engine *formula.Engine
	logger *mdwlog.Logger
}

// NewGenerator creates a generator. A nil logger discards output.
func NewGenerator(engine *formula.Engine, logger *mdwlog.Logger) *Generator {
	if logger == nil {
		logger = mdwlog.Discard()
	}
	return &Generator{engine: engine, logger: logger.WithName("sweep")}
}

// Run evaluates p. It checks ctx between points.
func (g *Generator) Run(ctx context.Context, p Params) (*Table, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	timer := g.logger.StartTimer("sweep").
		WithField("points", p.Points).
		WithField("scale", p.Scale.String())

	freqs := g.frequencies(p)
	table := &Table{
		Params:    p,
		Resonance: g.engine.ResonantFrequency(p.Inductance, p.Capacitance),
		Points:    make([]Point, 0, len(freqs)),
	}
	for i, f := range freqs {
		if err := ctx.Err(); err != nil {
			wrapped := mdwerror.Wrap(err, "sweep cancelled").
				WithCode(mdwerror.CodeTimeout).
				WithDetail("completed", i)
			timer.StopWithError(wrapped)
			return nil, wrapped
		}
		omega := g.engine.AngularFrequency(f)
		series := g.engine.SeriesImpedance(p.Inductance, p.Capacitance, omega)
		parallel := g.engine.ParallelImpedance(p.Inductance, p.Capacitance, omega)
		table.Points = append(table.Points, Point{
			Index:               i,
			Frequency:           f,
			Omega:               omega,
			InductiveReactance:  series.Xl,
			CapacitiveReactance: series.Xc,
			Series:              series.Magnitude,
			Parallel:            parallel.Magnitude,
		})
	}
	timer.Stop()
	return table, nil
}

// frequencies returns Points values from Start to Stop inclusive. Both
// endpoints are exact.
func (g *Generator) frequencies(p Params) []mathx.Decimal {
	n := p.Points
	steps := mathx.NewFromInt(int64(n - 1))
	out := make([]mathx.Decimal, n)
	out[0], out[n-1] = p.Start, p.Stop

	switch p.Scale {
	case Log:
		consts := g.engine.Consts()
		lo := consts.Log(p.Start)
		step := consts.Log(p.Stop).Subtract(lo).Divide(steps)
		for i := 1; i < n-1; i++ {
			out[i] = consts.Exp(lo.Add(step.Multiply(mathx.NewFromInt(int64(i)))))
		}
	default:
		step := p.Stop.Subtract(p.Start).Divide(steps)
		for i := 1; i < n-1; i++ {
			out[i] = p.Start.Add(step.Multiply(mathx.NewFromInt(int64(i))))
		}
	}
	return out
}

func (p Params) validate() error {
	invalid := func(msg string) error {
		return mdwerror.New(msg).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("sweep.Run")
	}

	if p.Points < 2 || p.Points > MaxPoints {
		return mdwerror.New("point count out of range").
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("points", p.Points).
			WithDetail("max", MaxPoints).
			WithOperation("sweep.Run")
	}
	for _, v := range []mathx.Decimal{p.Inductance, p.Capacitance, p.Start, p.Stop} {
		if v.IsNaN() || v.IsInf() {
			return invalid("sweep values must be finite numbers")
		}
	}
	if p.Inductance.Sign() <= 0 || p.Capacitance.Sign() <= 0 {
		return invalid("inductance and capacitance must be positive")
	}
	if p.Start.Sign() < 0 || p.Start.Compare(p.Stop) >= 0 {
		return invalid("start frequency must be non-negative and below stop")
	}
	if p.Scale == Log && p.Start.Sign() == 0 {
		return invalid("a logarithmic sweep cannot start at 0 Hz")
	}
	if p.Scale != Linear && p.Scale != Log {
		return invalid("unknown sweep scale")
	}
	return nil
}
