package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResonanceCmd(a *app) *cobra.Command {
	var (
		quantities quantityFlags
		target     string
		exact      bool
	)

	cmd := &cobra.Command{
		Use:   "resonance",
		Short: "Compute the resonant frequency of an LC pair",
		Long: `Compute f0 = 1/(2π√(LC)). Both --L and --C are required.

Example:
  lcc resonance --L 10 --L-unit mH --C 2.533 --C-unit uF --f0-unit kHz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if target == "" {
				target = a.defaults.FrequencyUnit
			}
			value, err := a.calc.Resonance(cmd.Context(),
				quantities.inductanceQuantity(), quantities.capacitanceQuantity(), target)
			if err != nil {
				return err
			}
			text := value.Display
			if exact {
				text = value.Exact
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", text, value.Unit)
			return nil
		},
	}

	quantities.register(cmd, false)
	cmd.Flags().StringVar(&target, "f0-unit", "", "resonant frequency unit (default from config)")
	cmd.Flags().BoolVar(&exact, "exact", false, "print the full-precision value")
	return cmd
}
