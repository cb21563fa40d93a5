package cmd

import (
	"github.com/spf13/cobra"

	"tremor/gsim"
)

// NewGSIMsCmd builds the `tremor gsims` command listing the registered
// ground-shaking models.
func NewGSIMsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gsims",
		Short: "List registered ground-motion models",
		Run: func(cmd *cobra.Command, args []string) {
			headerColor.Println("registered GSIMs:")
			for _, name := range gsim.Registered() {
				infoColor.Printf("  %s\n", name)
			}
		},
	}
}
