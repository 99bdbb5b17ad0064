package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	nvimbridge "github.com/runbooktools/runbook/internal/bridge/nvim"
)

// NewNvimCmd creates the nvim bridge command.
func NewNvimCmd() *cobra.Command {
	var (
		daemonURL string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "nvim",
		Short: "Bridge a running Neovim instance to the daemon",
		Long: `Attaches to a running Neovim over msgpack-rpc and services editor
commands from the daemon: sending text to terminal jobs, cycling and
scrolling terminal buffers, and opening URIs. Terminal buffers tagged with
b:runbook_tag are reported to the daemon for session correlation.

Run it from inside a :terminal (where $NVIM is set) or pass --addr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return nvimbridge.Run(ctx, daemonURL, addr)
		},
	}

	cmd.Flags().StringVar(&daemonURL, "daemon", DefaultDaemonURL, "Daemon base URL")
	cmd.Flags().StringVar(&addr, "addr", "", "Neovim RPC address (defaults to $NVIM)")

	return cmd
}
