package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nicolas5241/TheCalcularoty/internal/calc"
)

func newConvertCmd() *cobra.Command {
	var (
		kind    string
		display bool
	)

	cmd := &cobra.Command{
		Use:   "convert <value> <from> [to]",
		Short: "Convert a value between units of one quantity",
		Long: `Convert a value between two units of the same quantity. Without a
target unit the value is converted to the base unit (Hz, F, H or Ω).

Examples:
  lcc convert 10 mH H
  lcc convert 4.7 kohm
  lcc convert 2200 pF nF`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := calc.ConvertRequest{Value: args[0], Kind: kind, From: args[1]}
			if len(args) == 3 {
				req.To = args[2]
			}
			conversion, err := calc.Convert(req)
			if err != nil {
				return err
			}
			text := conversion.Value.Exact
			if display {
				text = conversion.Value.Display
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", text, conversion.Value.Unit)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "quantity kind when the unit label is ambiguous")
	cmd.Flags().BoolVar(&display, "display", false, "print the rounded display form")
	return cmd
}
