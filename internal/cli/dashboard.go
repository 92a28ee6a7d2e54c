// dashboard.go implements the read-only "dashboard" and "search" commands.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ringcheck/ringcheck/internal/controller"
	"github.com/ringcheck/ringcheck/internal/tui/views"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show your interaction statistics",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

var searchCmd = &cobra.Command{
	Use:   "search <name or number>",
	Short: "Look up a name or phone number",
	Long: `Search registered users and saved contacts by name or phone number.
Results are ranked by match quality; use --page to see further pages.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var pageFlag int

func init() {
	searchCmd.Flags().IntVar(&pageFlag, "page", 1, "Result page")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ticket, err := e.open(controller.ViewDashboard)
	if err != nil {
		return err
	}
	data, err := e.ctrl.Load(cmd.Context(), ticket)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), views.RenderDashboard(data.Dashboard))
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ticket, err := e.open(controller.ViewSearch)
	if err != nil {
		return err
	}
	query := strings.Join(args, " ")
	res, err := e.ctrl.Search(cmd.Context(), ticket, query, pageFlag)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), views.RenderSearchResults(query, pageFlag, res))
	return nil
}
