package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	"github.com/Nicolas5241/TheCalcularoty/internal/batch"
)

type batchOptions struct {
	workers int
	format  string
	timeout time.Duration
}

func newBatchCmd(a *app) *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch <jobs.yaml|jobs.toml>",
		Short: "Run the calculations listed in a jobs file",
		Long: `Run every job of a YAML or TOML jobs file. Jobs run concurrently but
are reported in file order. A failing job does not stop the others; the
command exits non-zero when any job failed.

A job has the keys name, inductance, capacitance and frequency (each
{value, unit}), mode and targets.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, a, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "jobs evaluated at once (default GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table or json")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "abort jobs not started within this time")
	return cmd
}

func runBatch(cmd *cobra.Command, a *app, opts *batchOptions, path string) error {
	if opts.format != "table" && opts.format != "json" {
		return mdwerror.Newf("unknown output format %q", opts.format).
			WithCode(mdwerror.CodeInvalidInput)
	}

	file, err := batch.Load(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	runner := batch.NewRunner(a.calc, batch.RunnerConfig{
		Defaults: a.defaults,
		Workers:  opts.workers,
		Logger:   a.logger,
	})
	outcomes, runErr := runner.Run(ctx, file.Jobs)

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		err = batch.WriteJSONLines(out, outcomes)
	} else {
		err = printOutcomes(out, outcomes)
	}
	if err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	failures := 0
	for _, o := range outcomes {
		if !o.OK() {
			failures++
		}
	}
	if failures > 0 {
		return mdwerror.Newf("%d of %d jobs failed", failures, len(outcomes)).
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("path", path)
	}
	return nil
}

func printOutcomes(w io.Writer, outcomes []batch.Outcome) error {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		row := []string{strconv.Itoa(o.Index + 1), o.Name}
		switch {
		case !o.OK():
			row = append(row, "", "", "", "", ErrorStyle.Render(fmt.Sprintf("%s: %s", o.Code, o.Error)))
		case !o.Result.Computed:
			row = append(row, "", "", "", "", MutedStyle.Render("not enough inputs"))
		default:
			r := o.Result
			row = append(row,
				withUnit(r.Impedance.Display, r.Impedance.Unit),
				withUnit(r.InductiveReactance.Display, r.InductiveReactance.Unit),
				withUnit(r.CapacitiveReactance.Display, r.CapacitiveReactance.Unit),
				withUnit(r.ResonantFrequency.Display, r.ResonantFrequency.Unit),
				"",
			)
		}
		rows = append(rows, row)
	}
	return renderTable(w, []string{"#", "Job", "|Z|", "Xl", "Xc", "f0", "Error"}, rows)
}

func withUnit(value, unit string) string {
	return value + " " + unit
}
