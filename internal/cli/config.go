// config.go implements "config init" and "config show".
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ringcheck/ringcheck/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or show the configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.yaml",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var (
	forceFlag   bool
	baseURLFlag string
)

func init() {
	configInitCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing config.yaml")
	configInitCmd.Flags().StringVar(&baseURLFlag, "api-url", "", "API base URL to store")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, "config.yaml")
	if _, statErr := os.Stat(path); statErr == nil && !forceFlag {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	} else if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, statErr)
	}

	cfg := config.DefaultConfig()
	if baseURLFlag != "" {
		cfg.API.BaseURL = baseURLFlag
	}
	if err := config.WriteConfig(dir, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", dir, data)
	return nil
}
