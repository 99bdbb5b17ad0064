package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *RunbookError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *RunbookError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// DaemonAlreadyRunning creates an error for a second daemon instance.
func DaemonAlreadyRunning(pid int) *RunbookError {
	return New(ErrCodeDaemonRunning, fmt.Sprintf("daemon already running with PID %d", pid)).
		WithDetail("pid", pid)
}

// DaemonNotRunning creates an error for commands that need a live daemon.
func DaemonNotRunning() *RunbookError {
	return New(ErrCodeDaemonNotRunning, "daemon is not running; start it with 'runbook daemon start'")
}

// TransportDial creates a connection failure error.
func TransportDial(url string, err error) *RunbookError {
	return Wrap(err, ErrCodeTransportDial, fmt.Sprintf("failed to connect to daemon at %s", url)).
		WithDetail("url", url)
}

// ProtocolError creates an error for malformed or unexpected wire messages.
func ProtocolError(reason string, err error) *RunbookError {
	return Wrap(err, ErrCodeProtocol, reason)
}

// HookPayloadInvalid creates an error for undecodable hook input.
func HookPayloadInvalid(err error) *RunbookError {
	return Wrap(err, ErrCodeHookPayload, "failed to parse hook payload from stdin")
}

// BridgeAttach creates an error for a failed editor attachment.
func BridgeAttach(addr string, err error) *RunbookError {
	return Wrap(err, ErrCodeBridgeAttach, fmt.Sprintf("failed to attach to editor at %s", addr)).
		WithDetail("addr", addr)
}
