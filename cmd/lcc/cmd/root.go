// Package cmd implements the lcc command line.
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	mdwerror "github.com/Nicolas5241/TheCalcularoty/foundation/core/error"
	mdwlog "github.com/Nicolas5241/TheCalcularoty/foundation/core/log"
	"github.com/Nicolas5241/TheCalcularoty/foundation/utils/mathx"
	"github.com/Nicolas5241/TheCalcularoty/internal/calc"
	"github.com/Nicolas5241/TheCalcularoty/internal/formula"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/config"
	"github.com/Nicolas5241/TheCalcularoty/pkg/core/logging"
)

// app is the state shared by all subcommands. It is filled by the root
// command's PersistentPreRunE.
type app struct {
	cfgFile   string
	verbose   bool
	logFormat string

	config   *config.Config
	defaults calc.Defaults
	calc     *calc.Orchestrator
	logger   *mdwlog.Logger
}

// NewRootCommand builds the lcc command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "lcc",
		Short: "LC circuit calculator",
		Long: `lcc computes impedance, reactances and resonant frequency of an
inductor-capacitor pair with arbitrary-precision decimals.

Give any two of inductance, capacitance and frequency; the third is
derived. Units are selected per field (H, mH, μH, ..., F, μF, ..., Hz,
kHz, ..., Ω, kΩ, MΩ); "u" and "ohm" are accepted as ASCII spellings.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $LCC_CONFIG, ./configs/config.toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text, json or console")

	root.AddCommand(
		newVersionCmd(),
		newCalcCmd(a),
		newResonanceCmd(a),
		newConvertCmd(),
		newUnitsCmd(),
		newSweepCmd(a),
		newBatchCmd(a),
		newServeCmd(a),
	)
	return root
}

// Execute runs the command line and prints a failing command's error
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	if err != nil {
		printError(root.ErrOrStderr(), err)
	}
	return err
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var err error
	if a.cfgFile != "" {
		a.config, err = config.Load(a.cfgFile)
	} else {
		a.config, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	if a.logFormat != "" {
		a.config.General.LogFormat = a.logFormat
	}
	if a.verbose {
		a.config.General.LogLevel = "debug"
	}
	if err := a.config.Validate(); err != nil {
		return err
	}

	logging.Configure(logging.LoggerConfig{
		Level:  a.config.General.LogLevel,
		Format: a.config.General.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	a.logger = logging.NewSimpleLogger(a.config.General.Name)

	if a.defaults, err = calc.DefaultsFrom(a.config.Defaults); err != nil {
		return err
	}
	a.calc = calc.New(formula.New(mathx.DefaultConsts()), calc.Config{
		Lenient: !a.config.Input.Strict,
		Logger:  a.logger,
	})
	return nil
}

func printError(w io.Writer, err error) {
	code := mdwerror.GetCode(err)
	if code == mdwerror.CodeUnknown {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error [%s]: %v\n", code, err)
	if field := mdwerror.FieldOf(err); field != "" {
		fmt.Fprintf(w, "  field: %s\n", field)
	}
}
