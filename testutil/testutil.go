// Package testutil provides shared helpers for runbook tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runbooktools/runbook/config"
)

// SampleConfigYAML is a minimal valid configuration: one page, one prompt,
// one gate, seven empty slots.
const SampleConfigYAML = `keypad:
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

// WriteConfig writes content as a runbook.yml in a temp dir and returns
// the file path.
func WriteConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "runbook.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// LoadSampleConfig writes and loads SampleConfigYAML.
func LoadSampleConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.Load(WriteConfig(t, SampleConfigYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

// IsolateHome points RUNBOOK_HOME at a temp dir for the test's duration so
// config discovery and log sinks never touch the real home.
func IsolateHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("RUNBOOK_HOME", home)
	return home
}
