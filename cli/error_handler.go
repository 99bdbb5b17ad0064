package cli

import (
	"fmt"
	"os"

	"github.com/runbooktools/runbook/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ Configuration not found. Create a runbook.yml or set RUNBOOK_CONFIG.\n")
		return err

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'runbook config validate' for details.\n")
		return err

	case errors.ErrCodeDaemonRunning:
		if rbErr, ok := err.(*errors.RunbookError); ok {
			fmt.Fprintf(os.Stderr, "❌ Daemon is already running (PID %v)\n", rbErr.Details["pid"])
			fmt.Fprintf(os.Stderr, "Stop it first with 'runbook daemon stop'.\n")
		}
		return err

	case errors.ErrCodeDaemonNotRunning:
		fmt.Fprintf(os.Stderr, "❌ Daemon is not running. Start it with 'runbook daemon start'.\n")
		return err

	case errors.ErrCodeTransportDial:
		if rbErr, ok := err.(*errors.RunbookError); ok {
			fmt.Fprintf(os.Stderr, "❌ Could not reach the daemon at %v\n", rbErr.Details["url"])
			fmt.Fprintf(os.Stderr, "Check that it is running with 'runbook daemon status'.\n")
		}
		return err

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		// If verbose mode, show full error details
		if h.Verbose {
			if rbErr, ok := err.(*errors.RunbookError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", rbErr.ToJSON())
			}
		}
		return err
	}
}
