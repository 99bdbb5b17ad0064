package main

import (
	"os"

	"github.com/runbooktools/runbook/cli"
	"github.com/runbooktools/runbook/cmd"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"runbook",
		"Coordination daemon for the macro keypad, assistant hooks, and editor terminals",
	)

	rootCmd.AddCommand(cmd.NewDaemonCmd())
	rootCmd.AddCommand(cmd.NewHookCmd())
	rootCmd.AddCommand(cmd.NewMonitorCmd())
	rootCmd.AddCommand(cmd.NewNvimCmd())
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cmd.NewLogsCmd())
	rootCmd.AddCommand(cmd.NewPathsCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	cli.SetVersionTemplate(rootCmd)
	cli.ApplyStyledHelpRecursive(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		cli.PrintError(rootCmd, err)
		os.Exit(1)
	}
}
