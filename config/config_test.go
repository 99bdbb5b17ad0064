package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
daemon:
  listen: "127.0.0.1:29381"
keypad:
  initial_page: 0
  pages:
    - name: core
      slots:
        - prompt_id: prep_pr
        - prompt_id: break_task
        - {}
        - {}
        - {}
        - {}
        - {}
        - {}
        - gate: pr
prompts:
  prep_pr:
    label: "PREP PR"
    sublabel: "receipts"
    claude_command: "/runbook:prep-pr"
    fallback_text: "Prep a PR. Include summary, risks, test plan."
  break_task:
    label: "BREAK TASK"
    claude_command: "/runbook:break-task"
    arm_style: prefill
gates:
  pr:
    label: "PR"
    sublabel: "jump"
    action: "https://example.com/pr"
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "runbook.yml", sampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:29381", cfg.ListenAddr())
	assert.Len(t, cfg.Keypad.Pages, 1)
	assert.Len(t, cfg.Keypad.Pages[0].Slots, 9)
	assert.Equal(t, "PREP PR", cfg.Prompts["prep_pr"].Label)
	assert.Equal(t, "https://example.com/pr", cfg.Gates["pr"].Action)
	assert.True(t, cfg.IsClaudePrimary())
}

func TestLoadTOML(t *testing.T) {
	tomlDoc := `
[keypad]
initial_page = 0

[[keypad.pages]]
name = "core"
slots = [
  { prompt_id = "ship" },
  {}, {}, {}, {}, {}, {}, {}, {},
]

[prompts.ship]
label = "SHIP"
claude_command = "/runbook:ship"
`
	path := writeConfig(t, "runbook.toml", tomlDoc)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "SHIP", cfg.Prompts["ship"].Label)
	assert.Equal(t, DefaultListen, cfg.ListenAddr())
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("RUNBOOK_TEST_PORT", "19999")
	doc := `
daemon:
  listen: "127.0.0.1:${RUNBOOK_TEST_PORT}"
keypad:
  pages:
    - name: core
      slots: [{}, {}, {}, {}, {}, {}, {}, {}, {}]
`
	path := writeConfig(t, "runbook.yml", doc)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:19999", cfg.Daemon.Listen)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestEffectiveCommand(t *testing.T) {
	p := PromptConfig{ClaudeCommand: "/runbook:prep-pr", FallbackText: "Prep a PR."}
	assert.Equal(t, "/runbook:prep-pr", p.EffectiveCommand(true))
	assert.Equal(t, "Prep a PR.", p.EffectiveCommand(false))

	// Fallback is the last resort when no native command exists.
	noNative := PromptConfig{FallbackText: "Draft a note"}
	assert.Equal(t, "Draft a note", noNative.EffectiveCommand(true))

	empty := PromptConfig{}
	assert.Empty(t, empty.EffectiveCommand(true))
}

func TestArmStyleFor(t *testing.T) {
	cfg := &Config{Prompts: map[string]PromptConfig{
		"a": {Label: "A"},
		"b": {Label: "B", ArmStyle: "prefill"},
	}}
	assert.Equal(t, "queue", cfg.ArmStyleFor("a"))
	assert.Equal(t, "prefill", cfg.ArmStyleFor("b"))
	assert.Equal(t, "queue", cfg.ArmStyleFor("missing"))
}

func TestUnmarshalExtension(t *testing.T) {
	doc := sampleYAML + `
extensions:
  logging:
    level: debug
    report_caller: true
`
	path := writeConfig(t, "runbook.yml", doc)
	cfg, err := Load(path)
	require.NoError(t, err)

	var logCfg struct {
		Level        string `yaml:"level"`
		ReportCaller bool   `yaml:"report_caller"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "debug", logCfg.Level)
	assert.True(t, logCfg.ReportCaller)

	// Missing key is not an error.
	var other struct{ X string }
	assert.NoError(t, cfg.UnmarshalExtension("missing", &other))
}
