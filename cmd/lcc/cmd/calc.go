package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nicolas5241/TheCalcularoty/internal/calc"
	"github.com/Nicolas5241/TheCalcularoty/internal/rpc"
)

// quantityFlags binds --L/--C/--f and their unit flags
type quantityFlags struct {
	inductance, inductanceUnit   string
	capacitance, capacitanceUnit string
	frequency, frequencyUnit     string
}

func (q *quantityFlags) register(cmd *cobra.Command, withFrequency bool) {
	cmd.Flags().StringVar(&q.inductance, "L", "", "inductance")
	cmd.Flags().StringVar(&q.inductanceUnit, "L-unit", "H", "inductance unit (H, mH, μH, nH, pH)")
	cmd.Flags().StringVar(&q.capacitance, "C", "", "capacitance")
	cmd.Flags().StringVar(&q.capacitanceUnit, "C-unit", "F", "capacitance unit (F, mF, μF, nF, pF)")
	if withFrequency {
		cmd.Flags().StringVar(&q.frequency, "f", "", "frequency")
		cmd.Flags().StringVar(&q.frequencyUnit, "f-unit", "Hz", "frequency unit (Hz, kHz, MHz, GHz)")
	}
}

func (q *quantityFlags) inductanceQuantity() calc.Quantity {
	return calc.Quantity{Text: q.inductance, Unit: q.inductanceUnit}
}

func (q *quantityFlags) capacitanceQuantity() calc.Quantity {
	return calc.Quantity{Text: q.capacitance, Unit: q.capacitanceUnit}
}

func (q *quantityFlags) frequencyQuantity() calc.Quantity {
	return calc.Quantity{Text: q.frequency, Unit: q.frequencyUnit}
}

type calcOptions struct {
	quantities quantityFlags
	mode       string
	targets    calc.Targets
	exact      bool
	asJSON     bool
	remote     string
	timeout    time.Duration
}

func newCalcCmd(a *app) *cobra.Command {
	opts := &calcOptions{}

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute impedance, reactances and resonant frequency",
		Long: `Compute impedance, reactances and resonant frequency of an LC pair.

Any two of --L, --C and --f are enough; the missing one is derived and
reported. With fewer than two nothing is computed.

Examples:
  lcc calc --L 10 --L-unit mH --f 1000 --f-unit Hz
  lcc calc --L 47 --L-unit uH --C 100 --C-unit nF --mode parallel --f0-unit kHz
  lcc calc --L 1 --C 1 --exact --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, a, opts)
		},
	}

	opts.quantities.register(cmd, true)
	cmd.Flags().StringVar(&opts.mode, "mode", "", "circuit mode: series or parallel (default from config)")
	cmd.Flags().StringVar(&opts.targets.Impedance, "z-unit", "", "impedance unit (Ω, kΩ, MΩ)")
	cmd.Flags().StringVar(&opts.targets.InductiveReactance, "xl-unit", "", "inductive reactance unit")
	cmd.Flags().StringVar(&opts.targets.CapacitiveReactance, "xc-unit", "", "capacitive reactance unit")
	cmd.Flags().StringVar(&opts.targets.ResonantFrequency, "f0-unit", "", "resonant frequency unit")
	cmd.Flags().BoolVar(&opts.exact, "exact", false, "print full-precision values")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "calculate on a gRPC server (host:port)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "remote call timeout")
	return cmd
}

func runCalc(cmd *cobra.Command, a *app, opts *calcOptions) error {
	mode, targets, err := a.defaults.Resolve(opts.mode, opts.targets)
	if err != nil {
		return err
	}
	req := calc.Request{
		Inductance:  opts.quantities.inductanceQuantity(),
		Capacitance: opts.quantities.capacitanceQuantity(),
		Frequency:   opts.quantities.frequencyQuantity(),
		Mode:        mode,
		Targets:     targets,
	}

	var result *calc.Result
	if opts.remote != "" {
		result, err = calculateRemote(cmd.Context(), opts, req)
	} else {
		result, err = a.calc.Calculate(cmd.Context(), req, nil)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	}
	return printResult(out, result, opts.exact)
}

func calculateRemote(ctx context.Context, opts *calcOptions, req calc.Request) (*calc.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	client, err := rpc.DialClient(opts.remote)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return client.Calculate(ctx, req)
}

func printResult(w io.Writer, result *calc.Result, exact bool) error {
	if !result.Computed {
		fmt.Fprintln(w, MutedStyle.Render("Nothing to compute: give at least two of inductance, capacitance and frequency."))
		return nil
	}

	render := func(v calc.Value) string {
		if exact {
			return v.Exact
		}
		return v.Display
	}

	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("LC %s circuit", result.Mode)))
	rows := make([][]string, 0, 4+len(result.Inferred))
	for _, inf := range result.Inferred {
		rows = append(rows, []string{inf.Kind.String() + " (derived)", render(inf.Value), inf.Value.Unit})
	}
	rows = append(rows,
		[]string{"Impedance |Z|", render(result.Impedance), result.Impedance.Unit},
		[]string{"Inductive reactance Xl", render(result.InductiveReactance), result.InductiveReactance.Unit},
		[]string{"Capacitive reactance Xc", render(result.CapacitiveReactance), result.CapacitiveReactance.Unit},
		[]string{"Resonant frequency f0", render(result.ResonantFrequency), result.ResonantFrequency.Unit},
	)
	return renderTable(w, []string{"Quantity", "Value", "Unit"}, rows)
}
