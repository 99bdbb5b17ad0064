package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/runbooktools/runbook/cli"
	"github.com/runbooktools/runbook/config"
)

// NewConfigCmd returns the config inspection command.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate the runbook configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigValidateCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Resolves the configuration the same way the daemon does (RUNBOOK_CONFIG,
then the working directory, then the XDG config dir), applies defaults, and
prints the result as YAML.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cli.InitConfig(cli.GetOptions(cmd).ConfigFile)
			if err != nil {
				return err
			}

			var cfg *config.Config
			if path != "" {
				cfg, err = config.Load(path)
			} else {
				cfg, err = config.LoadDefault()
			}
			if err != nil {
				return err
			}

			if path != "" {
				fmt.Printf("# Source: %s\n", path)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long: `Runs the same checks the daemon runs at startup: schema validation of the
document shape, then the structural rules (page sizes, prompt and gate
references, listen address).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cli.InitConfig(cli.GetOptions(cmd).ConfigFile)
			if err != nil {
				return err
			}

			if _, err := loadValidatedConfig(path); err != nil {
				fmt.Fprintf(os.Stderr, "Invalid: %v\n", err)
				os.Exit(1)
			}

			if path == "" {
				path = "configuration"
			}
			fmt.Printf("%s is valid\n", path)
			return nil
		},
	}
}
