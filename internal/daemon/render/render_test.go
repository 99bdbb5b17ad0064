package render

import (
	"testing"

	"github.com/runbooktools/runbook/config"
	"github.com/runbooktools/runbook/internal/daemon/state"
	"github.com/runbooktools/runbook/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	slots := make([]config.KeypadSlot, config.SlotsPerPage)
	slots[0] = config.KeypadSlot{PromptID: "prep_pr"}
	slots[1] = config.KeypadSlot{PromptID: "dangling"}
	slots[2] = config.KeypadSlot{Gate: "pr"}
	slots[3] = config.KeypadSlot{Gate: "ghost"}
	cfg := &config.Config{
		Keypad: config.KeypadConfig{Pages: []config.KeypadPage{
			{Name: "core", Slots: slots},
			{Name: "extra", Slots: make([]config.KeypadSlot, config.SlotsPerPage)},
		}},
		Prompts: map[string]config.PromptConfig{
			"prep_pr": {Label: "PREP PR", Sublabel: "receipts", ClaudeCommand: "/runbook:prep-pr", ArmStyle: "prefill"},
		},
		Gates: map[string]config.GateConfig{
			"pr": {Label: "PR", Sublabel: "jump", Action: "https://example.com/pr"},
		},
	}
	cfg.SetDefaults()
	return cfg
}

func TestBuildRenderModelSlots(t *testing.T) {
	s := state.New(0)
	m := BuildRenderModel(s, testConfig())

	require.Len(t, m.Keypad.Slots, 9)
	assert.Equal(t, 2, m.PageCount)
	assert.Equal(t, 0, m.PageIndex)
	assert.Equal(t, protocol.HooksAbsent, m.HooksMode)
	assert.Equal(t, protocol.AgentUnknown, m.AgentState)

	prompt := m.Keypad.Slots[0]
	assert.Equal(t, "prep_pr", prompt.PromptID)
	assert.Equal(t, "PREP PR", prompt.Label)
	assert.Equal(t, "receipts", prompt.Sublabel)
	assert.False(t, prompt.Armed)

	// Dangling references keep their id but render a placeholder label.
	assert.Equal(t, protocol.UnresolvedLabel, m.Keypad.Slots[1].Label)
	assert.Equal(t, "dangling", m.Keypad.Slots[1].PromptID)
	assert.Equal(t, protocol.UnresolvedLabel, m.Keypad.Slots[3].Label)

	gate := m.Keypad.Slots[2]
	assert.Equal(t, "pr", gate.PromptID)
	assert.Equal(t, "PR", gate.Label)

	empty := m.Keypad.Slots[4]
	assert.Equal(t, protocol.EmptySlotID, empty.PromptID)
	assert.Equal(t, protocol.EmptySlotLabel, empty.Label)
}

func TestBuildRenderModelArmedProjection(t *testing.T) {
	s := state.New(0)
	s.ArmedPromptID = "prep_pr"
	m := BuildRenderModel(s, testConfig())

	require.NotNil(t, m.Armed)
	assert.Equal(t, "prep_pr", m.Armed.PromptID)
	assert.Equal(t, "PREP PR", m.Armed.Label)
	assert.Equal(t, protocol.ArmPrefill, m.Armed.Style)
	assert.Equal(t, "/runbook:prep-pr", m.Armed.Command)
	assert.True(t, m.Keypad.Slots[0].Armed)
}

func TestBuildRenderModelArmedDanglingOmitted(t *testing.T) {
	s := state.New(0)
	s.ArmedPromptID = "vanished"
	m := BuildRenderModel(s, testConfig())
	assert.Nil(t, m.Armed)
}

func TestBuildRenderModelClampsPage(t *testing.T) {
	s := state.New(0)
	s.CurrentPage = 99
	m := BuildRenderModel(s, testConfig())
	assert.Equal(t, 1, m.PageIndex)

	s.CurrentPage = -4
	m = BuildRenderModel(s, testConfig())
	assert.Equal(t, 0, m.PageIndex)
}

func TestBuildRenderModelAgentStatePassthrough(t *testing.T) {
	s := state.New(0)
	s.HooksMode = protocol.HooksActive
	_, sess := s.EnsureSession("s1")
	sess.AgentState = protocol.AgentRunning

	m := BuildRenderModel(s, testConfig())
	assert.Equal(t, protocol.AgentRunning, m.AgentState)
	assert.Equal(t, protocol.HooksActive, m.HooksMode)
}
