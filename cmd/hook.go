package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runbooktools/runbook/cli"
	"github.com/runbooktools/runbook/internal/hookguard"
	"github.com/runbooktools/runbook/pkg/daemon"
	"github.com/runbooktools/runbook/pkg/protocol"
	"github.com/runbooktools/runbook/tui/theme"
)

// DefaultDaemonURL is where the hook forwarder looks for a local daemon.
const DefaultDaemonURL = "http://127.0.0.1:29381"

// NewHookCmd returns the hook forwarder. The assistant invokes it once per
// lifecycle event with the payload on stdin; it must exit fast and never
// fail the hook, whatever the daemon is doing.
func NewHookCmd() *cobra.Command {
	var (
		daemonURL       string
		denyDestructive bool
		denySubstrings  []string
		denyPatterns    []string
	)

	cmd := &cobra.Command{
		Use:   "hook <hook-name> [matcher]",
		Short: "Forward an assistant lifecycle event to the daemon",
		Long: `Reads one hook payload from stdin, normalizes it, and posts it to the
daemon's one-shot ingress. With --deny-destructive-bash, PreToolUse events
for Bash commands are first checked against a deny list; a match prints a
block decision on stdout and reports a policy_block notification instead.

Examples:
  # Forward a prompt submission
  echo '{"session_id":"s1"}' | runbook hook UserPromptSubmit

  # Guarded tool use with extra deny rules
  runbook hook PreToolUse --deny-destructive-bash --deny "drop table"
`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cli.GetLogger(cmd)

			payload, err := io.ReadAll(os.Stdin)
			if err != nil {
				logger.Warnf("Failed to read hook payload: %v", err)
				payload = nil
			}
			if len(payload) > 0 && !json.Valid(payload) {
				logger.Warnf("Ignoring malformed hook payload (%d bytes)", len(payload))
				payload = nil
			}

			hookName := args[0]
			matcher := ""
			if len(args) > 1 {
				matcher = args[1]
			}

			ev := protocol.HookEvent{
				Hook:       hookName,
				Matcher:    matcher,
				SessionID:  hookguard.ExtractSessionID(payload),
				SessionTag: os.Getenv("RUNBOOK_SESSION_TAG"),
				Payload:    payload,
			}

			switch hookName {
			case protocol.HookPreToolUse, protocol.HookPostToolUse, protocol.HookPostToolUseFailure:
				// Tool hooks carry the tool name as their matcher.
				if ev.Matcher == "" {
					ev.Matcher = hookguard.ExtractToolName(payload)
				}
			case protocol.HookUserPromptSubmit:
				os.Stdout.Write(hookguard.PromptContext(hookguard.GitBranch()))
			}

			if hookName == protocol.HookPreToolUse && denyDestructive {
				if command, ok := hookguard.ExtractBashCommand(payload); ok {
					guard, gerr := hookguard.New(denySubstrings, denyPatterns)
					if gerr != nil {
						return gerr
					}
					if rule, blocked := guard.Check(command); blocked {
						logger.WithField("rule", rule).Warnf("Denied command: %s", command)
						os.Stdout.Write(hookguard.BlockDecision(command))

						// Tell the daemon the session is blocked. Best-effort,
						// like every other daemon notification from this path.
						_ = daemon.PostHook(daemonURL, protocol.HookEvent{
							Hook:       protocol.HookNotification,
							Matcher:    protocol.MatcherPolicyBlock,
							SessionID:  ev.SessionID,
							SessionTag: ev.SessionTag,
						})
						return nil
					}
				}
			}

			if err := daemon.PostHook(daemonURL, ev); err != nil {
				logger.Debugf("Hook notification not delivered: %v", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&daemonURL, "daemon", DefaultDaemonURL, "Daemon base URL for the one-shot hook ingress")
	cmd.Flags().BoolVar(&denyDestructive, "deny-destructive-bash", false, "Block destructive Bash commands on PreToolUse")
	cmd.Flags().StringSliceVar(&denySubstrings, "deny", nil, "Extra deny-list substrings (prefix with ^ to anchor)")
	cmd.Flags().StringSliceVar(&denyPatterns, "deny-pattern", nil, "Extra deny-list glob patterns")

	cli.SetStyledHelpWithExtras(cmd, printHookNames)

	return cmd
}

// printHookNames lists the recognized hook names in a custom help section.
func printHookNames(t *theme.Theme) {
	names := []string{
		protocol.HookSessionStart, protocol.HookNotification,
		protocol.HookUserPromptSubmit, protocol.HookPreToolUse,
		protocol.HookPermissionRequest, protocol.HookPostToolUse,
		protocol.HookPostToolUseFailure, protocol.HookTaskCompleted,
		protocol.HookStop, protocol.HookSessionEnd,
	}
	fmt.Println("\n " + t.Warning.Render("HOOK NAMES"))
	fmt.Println(" " + t.Muted.Render(strings.Join(names, ", ")))
}
