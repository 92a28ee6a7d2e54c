// interactions.go implements "interactions recent" and "interactions log".
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ringcheck/ringcheck/internal/api"
	"github.com/ringcheck/ringcheck/internal/controller"
	"github.com/ringcheck/ringcheck/internal/tui/views"
)

var interactionsCmd = &cobra.Command{
	Use:   "interactions",
	Short: "List or record calls and messages",
	Args:  cobra.NoArgs,
	RunE:  runInteractionsRecent,
}

var interactionsRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List your recent interactions",
	Args:  cobra.NoArgs,
	RunE:  runInteractionsRecent,
}

var interactionsLogCmd = &cobra.Command{
	Use:   "log <phone>",
	Short: "Record a call or message to a number",
	Args:  cobra.ExactArgs(1),
	RunE:  runInteractionsLog,
}

var (
	interactionTypeFlag string
	interactionPageFlag int
	logTypeFlag         string
)

func init() {
	for _, c := range []*cobra.Command{interactionsCmd, interactionsRecentCmd} {
		c.Flags().StringVar(&interactionTypeFlag, "type", "", "Only this type: call, message or spam_report")
		c.Flags().IntVar(&interactionPageFlag, "page", 1, "Result page")
	}
	interactionsLogCmd.Flags().StringVar(&logTypeFlag, "type", api.InteractionCall, "Interaction type: call or message")

	interactionsCmd.AddCommand(interactionsRecentCmd)
	interactionsCmd.AddCommand(interactionsLogCmd)
}

func runInteractionsRecent(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.open(controller.ViewSearch); err != nil {
		return err
	}
	page, err := e.ctrl.API().RecentInteractions(cmd.Context(), interactionTypeFlag, interactionPageFlag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, views.RenderInteractions(page.Results))
	if page.Next != nil {
		fmt.Fprintf(out, "%d interaction(s) in total; see more with --page %d\n", page.Count, interactionPageFlag+1)
	}
	return nil
}

func runInteractionsLog(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.open(controller.ViewSearch); err != nil {
		return err
	}
	it, err := e.ctrl.API().LogInteraction(cmd.Context(), api.NewInteraction{
		ReceiverPhone:   args[0],
		InteractionType: logTypeFlag,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s to %s\n", views.InteractionLabel(it.InteractionType), it.ReceiverPhone)
	return nil
}
