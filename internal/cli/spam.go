// spam.go implements "spam stats" and "spam report".
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ringcheck/ringcheck/internal/api"
	"github.com/ringcheck/ringcheck/internal/controller"
	"github.com/ringcheck/ringcheck/internal/tui/views"
)

var spamCmd = &cobra.Command{
	Use:   "spam",
	Short: "View or report spam numbers",
	Args:  cobra.NoArgs,
	RunE:  runSpamStats,
}

var spamStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "List the most reported numbers",
	Long: `List numbers ordered by how often they were reported. --days counts
back from today and is ignored when --start is given.`,
	Args: cobra.NoArgs,
	RunE: runSpamStats,
}

var spamReportCmd = &cobra.Command{
	Use:   "report <phone>",
	Short: "Report a number as spam",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpamReport,
}

var (
	minReportsFlag  int
	daysFlag        int
	startDateFlag   string
	endDateFlag     string
	spamPhoneFlag   string
	descriptionFlag string
)

func init() {
	for _, c := range []*cobra.Command{spamCmd, spamStatsCmd} {
		c.Flags().IntVar(&minReportsFlag, "min-reports", 0, "Only numbers with at least this many reports")
		c.Flags().IntVar(&daysFlag, "days", 0, "Only reports from the last N days")
		c.Flags().StringVar(&startDateFlag, "start", "", "Only reports on or after this date (YYYY-MM-DD)")
		c.Flags().StringVar(&endDateFlag, "end", "", "Only reports on or before this date (YYYY-MM-DD)")
		c.Flags().StringVar(&spamPhoneFlag, "phone", "", "Only this number")
	}
	spamReportCmd.Flags().StringVarP(&descriptionFlag, "description", "d", "", "What the caller did")

	spamCmd.AddCommand(spamStatsCmd)
	spamCmd.AddCommand(spamReportCmd)
}

func runSpamStats(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	e.ctrl.SetSpamFilter(api.SpamFilter{
		MinReports:  minReportsFlag,
		Days:        daysFlag,
		StartDate:   startDateFlag,
		EndDate:     endDateFlag,
		PhoneNumber: spamPhoneFlag,
	})
	ticket, err := e.open(controller.ViewSpam)
	if err != nil {
		return err
	}
	data, err := e.ctrl.Load(cmd.Context(), ticket)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Filter: %s\n", views.RenderSpamFilter(e.ctrl.SpamFilter()))
	fmt.Fprint(out, views.RenderSpamList(data.Spam, data.SpamTotal))
	return nil
}

func runSpamReport(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.open(controller.ViewSpam); err != nil {
		return err
	}
	rec, err := e.ctrl.API().ReportSpam(cmd.Context(), api.SpamReport{PhoneNumber: args[0], Description: descriptionFlag})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reported %s as spam (%d report(s) on record)\n", rec.PhoneNumber, rec.SpamLikelihood)
	return nil
}
