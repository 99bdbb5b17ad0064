package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	slots := make([]KeypadSlot, SlotsPerPage)
	slots[0] = KeypadSlot{PromptID: "ship"}
	slots[8] = KeypadSlot{Gate: "pr"}
	cfg := &Config{
		Keypad: KeypadConfig{
			Pages: []KeypadPage{{Name: "core", Slots: slots}},
		},
		Prompts: map[string]PromptConfig{
			"ship": {Label: "SHIP", ClaudeCommand: "/runbook:ship"},
		},
		Gates: map[string]GateConfig{
			"pr": {Label: "PR", Action: "https://example.com/pr"},
		},
	}
	cfg.SetDefaults()
	return cfg
}

func TestValidateOK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateNoPages(t *testing.T) {
	cfg := validConfig()
	cfg.Keypad.Pages = nil
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 1 page")
}

func TestValidateInitialPageOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Keypad.InitialPage = 3
	assert.Error(t, cfg.Validate())

	cfg.Keypad.InitialPage = -1
	assert.Error(t, cfg.Validate())
}

func TestValidatePageNames(t *testing.T) {
	cfg := validConfig()
	cfg.Keypad.Pages[0].Name = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	dup := cfg.Keypad.Pages[0]
	cfg.Keypad.Pages = append(cfg.Keypad.Pages, dup)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate page name")
}

func TestValidateSlotCount(t *testing.T) {
	cfg := validConfig()
	cfg.Keypad.Pages[0].Slots = cfg.Keypad.Pages[0].Slots[:8]
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly 9 slots")
}

func TestValidateSlotReferences(t *testing.T) {
	cfg := validConfig()
	cfg.Keypad.Pages[0].Slots[1] = KeypadSlot{PromptID: "missing"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown prompt")

	cfg = validConfig()
	cfg.Keypad.Pages[0].Slots[1] = KeypadSlot{Gate: "missing"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown gate")

	cfg = validConfig()
	cfg.Keypad.Pages[0].Slots[1] = KeypadSlot{PromptID: "ship", Gate: "pr"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both a prompt and a gate")
}

func TestValidatePromptFields(t *testing.T) {
	cfg := validConfig()
	cfg.Prompts["ship"] = PromptConfig{ClaudeCommand: "/x"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must have a label")

	cfg = validConfig()
	cfg.Prompts["ship"] = PromptConfig{Label: "SHIP", ArmStyle: "hover"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arm_style")
}

func TestValidateGateFields(t *testing.T) {
	cfg := validConfig()
	cfg.Gates["pr"] = GateConfig{Action: "https://x"}
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Gates["pr"] = GateConfig{Label: "PR"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must have an action")
}

func TestValidateListenAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Daemon.Listen = "not-an-addr"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid daemon.listen")
}
