package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/foundation/utils/mathx"
	"github.com/Nicolas5241/TheCalcularoty/internal/sweep"
	"github.com/Nicolas5241/TheCalcularoty/internal/units"
)

type sweepOptions struct {
	quantities quantityFlags
	start      string
	stop       string
	points     int
	scale      string
	out        string
}

func newSweepCmd(a *app) *cobra.Command {
	opts := &sweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Tabulate reactances and impedances over a frequency range",
		Long: `Evaluate an LC pair at --points frequencies from --start to --stop.

Without --out the table is written to stdout as tab-separated text. With
--out the extension selects the format: .xlsx or .tsv.

Example:
  lcc sweep --L 10 --L-unit mH --C 2.533 --C-unit uF --start 100 --stop 10 --f-unit kHz --out sweep.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, a, opts)
		},
	}

	opts.quantities.register(cmd, false)
	cmd.Flags().StringVar(&opts.start, "start", "", "first frequency")
	cmd.Flags().StringVar(&opts.stop, "stop", "", "last frequency")
	cmd.Flags().StringVar(&opts.quantities.frequencyUnit, "f-unit", "Hz", "unit of --start and --stop")
	cmd.Flags().IntVar(&opts.points, "points", 0, "number of frequencies (default from config)")
	cmd.Flags().StringVar(&opts.scale, "scale", "", "spacing: linear or log (default from config)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (.xlsx or .tsv)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("stop")
	return cmd
}

func runSweep(cmd *cobra.Command, a *app, opts *sweepOptions) error {
	if opts.points == 0 {
		opts.points = a.config.Sweep.Points
	}
	if opts.scale == "" {
		opts.scale = a.config.Sweep.Scale
	}
	scale, err := sweep.ParseScale(opts.scale)
	if err != nil {
		return err
	}

	q := opts.quantities
	params := sweep.Params{Points: opts.points, Scale: scale}
	inputs := []struct {
		dst   *mathx.Decimal
		field string
		text  string
		kind  units.Kind
		unit  string
	}{
		{&params.Inductance, "inductance", q.inductance, units.Inductance, q.inductanceUnit},
		{&params.Capacitance, "capacitance", q.capacitance, units.Capacitance, q.capacitanceUnit},
		{&params.Start, "start", opts.start, units.Frequency, q.frequencyUnit},
		{&params.Stop, "stop", opts.stop, units.Frequency, q.frequencyUnit},
	}
	for _, in := range inputs {
		if *in.dst, err = baseValue(in.text, in.kind, in.unit, in.field); err != nil {
			return err
		}
	}

	generator := sweep.NewGenerator(a.calc.Engine(), a.logger)
	table, err := generator.Run(cmd.Context(), params)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.out == "" {
		return sweep.WriteTSV(out, table)
	}
	if err := sweep.Save(opts.out, table); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d points to %s (f0 = %s Hz)\n",
		len(table.Points), opts.out, table.Resonance.DisplayString())
	return nil
}

// baseValue parses text and converts it from unit to kind's base unit
func baseValue(text string, kind units.Kind, unit, field string) (mathx.Decimal, error) {
	if text == "" {
		return mathx.Decimal{}, mdwerror.Newf("%s is required", field).
			WithCode(mdwerror.CodeInvalidInput).
			WithField(field)
	}
	value, err := mathx.Parse(text)
	if err != nil {
		return mathx.Decimal{}, mdwerror.Wrap(err, "malformed "+field).
			WithCode(mdwerror.CodeInvalidInput).
			WithField(field).
			WithDetail("input", text)
	}
	base, err := units.ConvertToBase(value, kind, units.Normalize(unit))
	if err != nil {
		return mathx.Decimal{}, mdwerror.Wrap(err, "invalid "+field).WithField(field)
	}
	return base, nil
}
