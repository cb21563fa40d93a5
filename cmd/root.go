// Package cmd provides the tremor command-line interface.
package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// Global flags
var (
	configFile string
	noColor    bool
	quiet      bool
)

// NewRootCmd builds the tremor root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tremor",
		Short: "Probabilistic seismic hazard curve engine",
		Long: `tremor computes probabilistic seismic hazard curves: for a set of
sites, seismic sources grouped by tectonic region and a ground-motion model
per region, it derives per-site probabilities that ground motion exceeds
each configured intensity level within the investigation time.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")

	root.AddCommand(NewCalcCmd())
	root.AddCommand(NewGSIMsCmd())
	return root
}
