package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Nicolas5241/TheCalcularoty/internal/units"
)

func newUnitsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "units [kind]",
		Short: "List the supported units",
		Long: `List the unit labels of every quantity kind, or of one kind
(frequency, capacitance, inductance, resistance), in selection order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kinds []units.Kind
			if len(args) == 1 {
				kind, err := units.ParseKind(args[0])
				if err != nil {
					return err
				}
				kinds = append(kinds, kind)
			}
			infos, err := units.Describe(kinds...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(infos)
			}

			var rows [][]string
			for _, info := range infos {
				for _, u := range info.Units {
					factor := "1"
					if u.Exponent != 0 {
						factor = "1e" + strconv.Itoa(u.Exponent)
					}
					base := ""
					if u.Label == info.Base {
						base = "base"
					}
					rows = append(rows, []string{info.Kind.String(), info.Symbol, u.Label, factor, base})
				}
			}
			if err := renderTable(out, []string{"Kind", "Symbol", "Unit", "Factor", ""}, rows); err != nil {
				return err
			}
			fmt.Fprintln(out, MutedStyle.Render(`ASCII spellings: "u" for μ, "ohm" for Ω`))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
