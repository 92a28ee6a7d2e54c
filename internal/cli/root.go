// Package cli defines Cobra command definitions for the ringcheck CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ringcheck/ringcheck/internal/tui"
	"github.com/ringcheck/ringcheck/internal/tui/app"
)

var (
	viewFlag string
	version  = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "ringcheck",
	Short: "Identify callers and report spam numbers",
	Long: `ringcheck is a terminal client for a caller identification and spam
reporting service. Without a subcommand it opens the interactive
interface; every view is also available as a subcommand.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch TUI if TTY, show help otherwise
		if !tui.IsTTY() {
			return cmd.Help()
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		return tui.Run(app.New(e.cfg, e.ctrl))
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&viewFlag, "view", "", "Initial view for the interactive interface (dashboard, search, contacts, spam)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(spamCmd)
	rootCmd.AddCommand(interactionsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
