package cli

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		banner := figure.NewFigure("ringcheck", "cybermedium", true)
		fmt.Fprintln(cmd.OutOrStdout(), banner.String())
		fmt.Fprintf(cmd.OutOrStdout(), "version %s\n", version)
	},
}
