package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/runbooktools/runbook/cli"
	"github.com/runbooktools/runbook/config"
	"github.com/runbooktools/runbook/internal/daemon/hub"
	"github.com/runbooktools/runbook/internal/daemon/pidfile"
	"github.com/runbooktools/runbook/logging"
	"github.com/runbooktools/runbook/pkg/daemon"
	"github.com/runbooktools/runbook/pkg/paths"
	"github.com/runbooktools/runbook/pkg/process"
	"github.com/runbooktools/runbook/schema"
)

// NewDaemonCmd returns the daemon command with lifecycle subcommands.
func NewDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Runbook coordination daemon",
		Long:  "Runs the daemon that coordinates the keypad, assistant hooks, and editor terminals.",
	}

	cmd.AddCommand(newDaemonStartCmd())
	cmd.AddCommand(newDaemonStopCmd())
	cmd.AddCommand(newDaemonStatusCmd())

	return cmd
}

func newDaemonStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon",
		Long:  "Start the runbook daemon in foreground mode.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger("runbookd")

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("failed to create runbook directories: %w", err)
			}

			// 1. Load and validate configuration. Invalid config is fatal at
			// startup; runtime edits only produce a notice.
			cfgPath, err := cli.InitConfig(cli.GetOptions(cmd).ConfigFile)
			if err != nil {
				return err
			}
			cfg, err := loadValidatedConfig(cfgPath)
			if err != nil {
				return err
			}

			// 2. Acquire lock
			pidPath := paths.PidFilePath()
			if err := pidfile.Acquire(pidPath); err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer func() {
				if err := pidfile.Release(pidPath); err != nil {
					logger.Errorf("Failed to release pidfile: %v", err)
				}
			}()

			// 3. Setup hub and server
			h := hub.New(cfg, logger)
			srv := hub.NewServer(h, logger)

			// 4. Watch the config file. Edits are announced, never hot-applied.
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if cfgPath != "" {
				watcher, werr := daemon.NewConfigWatcher(cfgPath, 0, func(file string) {
					h.PublishNotice(fmt.Sprintf("%s changed; restart the daemon to apply", file))
				})
				if werr != nil {
					logger.Warnf("Config watcher disabled: %v", werr)
				} else {
					go watcher.Start(ctx)
				}
			}

			// 5. Handle signals
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			go func() {
				<-stop
				logger.Info("Received stop signal")
				cancel()

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Errorf("Server shutdown error: %v", err)
				}

				// Explicitly release pidfile before exit in signal handler
				_ = pidfile.Release(pidPath)
				os.Exit(0)
			}()

			// 6. Start server (blocking)
			addr := cfg.ListenAddr()
			logger.WithField("pid", os.Getpid()).WithField("addr", addr).Info("Starting daemon")
			if err := srv.ListenAndServe(addr); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}

func newDaemonStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath := paths.PidFilePath()

			running, pid, err := pidfile.IsRunning(pidPath)
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}

			if !running {
				fmt.Println("Daemon is not running")
				return nil
			}

			if err := process.Terminate(pid); err != nil {
				return fmt.Errorf("failed to send stop signal: %w", err)
			}

			fmt.Printf("Sent SIGTERM to process %d\n", pid)
			return nil
		},
	}
}

func newDaemonStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath := paths.PidFilePath()
			running, pid, err := pidfile.IsRunning(pidPath)

			if err != nil {
				return fmt.Errorf("error: %w", err)
			}

			if running {
				fmt.Printf("Running (PID: %d)\n", pid)
			} else {
				fmt.Println("Stopped")
				os.Exit(1) // Return non-zero for stopped state (useful for scripts)
			}
			return nil
		},
	}
}

// loadValidatedConfig loads the config file, checks it against the embedded
// JSON schema, and then runs the structural validation rules.
func loadValidatedConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to compile config schema: %w", err)
	}
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
