package main

import (
	"fmt"
	"os/exec"
)

// findRunbookBinary finds the runbook binary under test.
// It relies on the Makefile setting the PATH to include the local ./bin directory.
func findRunbookBinary() (string, error) {
	path, err := exec.LookPath("runbook")
	if err != nil {
		return "", fmt.Errorf("could not find 'runbook' binary in PATH. Ensure 'make test-e2e' is used")
	}
	return path, nil
}

// sampleConfigYAML is a minimal valid configuration used by scenarios.
const sampleConfigYAML = `keypad:
  initial_page: 0
  pages:
    - name: main
      slots:
        - prompt_id: prep_pr
        - {}
        - {}
        - {}
        - {}
        - {}
        - {}
        - {}
        - gate: pr
prompts:
  prep_pr:
    label: "Prep PR"
    claude_command: "/runbook:prep-pr"
    fallback_text: "Prepare a pull request for the current branch."
gates:
  pr:
    label: "Open PRs"
    action: "https://example.com/pulls"
`
