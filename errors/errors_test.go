package errors

import (
	"fmt"
	"testing"
)

func TestRunbookError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeConfigNotFound, "config not found")
	if err.Code != ErrCodeConfigNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeConfigNotFound, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeTransportDial, "dial failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeTransportDial) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeConfigNotFound) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("path", "runbook.yml").WithDetail("attempts", 2)
	if detailed.Details["path"] != "runbook.yml" {
		t.Error("WithDetail should add details")
	}
}

func TestErrorConstructors(t *testing.T) {
	// Test ConfigNotFound
	err := ConfigNotFound("/etc/runbook.yml")
	if err.Code != ErrCodeConfigNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeConfigNotFound, err.Code)
	}
	if err.Details["path"] != "/etc/runbook.yml" {
		t.Error("ConfigNotFound should include path detail")
	}

	// Test DaemonAlreadyRunning
	err = DaemonAlreadyRunning(4242)
	if err.Code != ErrCodeDaemonRunning {
		t.Errorf("expected code %s, got %s", ErrCodeDaemonRunning, err.Code)
	}
	if err.Details["pid"] != 4242 {
		t.Error("DaemonAlreadyRunning should include pid detail")
	}

	// Test GetCode through wrapping
	wrapped := fmt.Errorf("outer: %w", DaemonNotRunning())
	if GetCode(wrapped) != ErrCodeDaemonNotRunning {
		t.Error("GetCode should unwrap to the inner code")
	}
}
