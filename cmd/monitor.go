package cmd

import (
	"github.com/spf13/cobra"

	"github.com/runbooktools/runbook/tui/monitor"
)

// NewMonitorCmd creates the monitor command.
func NewMonitorCmd() *cobra.Command {
	var daemonURL string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Interactive virtual keypad",
		Long: `Connects to the daemon as a keypad client and renders a virtual 3x3
keypad in the terminal. Useful for developing without the hardware.

Keys 1-9 press slots, arrows change pages, enter dispatches the armed
prompt, esc cancels, e sends /export, c sends Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return monitor.Run(daemonURL)
		},
	}

	cmd.Flags().StringVar(&daemonURL, "daemon", DefaultDaemonURL, "Daemon base URL")

	return cmd
}
