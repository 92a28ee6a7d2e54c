// history.go implements the "history" command that prints the event log.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ringcheck/ringcheck/internal/log"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent session events",
	Long: `Print the local event log: logins, logouts, expired sessions and
failed requests. Nothing is sent to the server.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyLimitFlag int

func init() {
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 20, "Number of events to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if e.logger == nil {
		return fmt.Errorf("event log is disabled; set log.enabled in %s", e.dir)
	}
	events, err := e.logger.ReadAll()
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No events recorded yet.")
		return nil
	}
	if historyLimitFlag > 0 && len(events) > historyLimitFlag {
		events = events[len(events)-historyLimitFlag:]
	}

	for _, ev := range events {
		fmt.Fprintln(cmd.OutOrStdout(), formatEvent(ev))
	}
	return nil
}

// formatEvent renders one log line: time, event name, then whatever details are set.
func formatEvent(ev log.LogEvent) string {
	parts := []string{ev.Time.Local().Format("2006-01-02 15:04:05"), fmt.Sprintf("%-22s", ev.Event)}
	if ev.View != "" {
		parts = append(parts, "view="+ev.View)
	}
	if ev.Phone != "" {
		parts = append(parts, "phone="+ev.Phone)
	}
	if ev.Method != "" {
		parts = append(parts, ev.Method+" "+ev.Path)
	}
	if ev.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", ev.Status))
	}
	if ev.Error != "" {
		parts = append(parts, "error="+ev.Error)
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
