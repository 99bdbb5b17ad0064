package reducer

import (
	"testing"

	"github.com/runbooktools/runbook/config"
	"github.com/runbooktools/runbook/internal/daemon/state"
	"github.com/runbooktools/runbook/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	page := func(name string) config.KeypadPage {
		slots := make([]config.KeypadSlot, config.SlotsPerPage)
		return config.KeypadPage{Name: name, Slots: slots}
	}
	p0 := page("core")
	p0.Slots[0] = config.KeypadSlot{PromptID: "prep_pr"}
	p0.Slots[1] = config.KeypadSlot{PromptID: "notes"}
	cfg := &config.Config{
		Keypad: config.KeypadConfig{Pages: []config.KeypadPage{p0, page("two"), page("three")}},
		Prompts: map[string]config.PromptConfig{
			"prep_pr": {Label: "PREP PR", ClaudeCommand: "/runbook:prep-pr", FallbackText: "Prep a PR."},
			"notes":   {Label: "NOTES", FallbackText: "Summarize today's notes."},
		},
		Gates: map[string]config.GateConfig{
			"pr": {Label: "PR", Action: "https://example.com/pr"},
		},
	}
	cfg.SetDefaults()
	return cfg
}

func sendTextEffects(t *testing.T, effects []SideEffect) []protocol.SendTextPayload {
	t.Helper()
	var out []protocol.SendTextPayload
	for _, eff := range effects {
		if cmd, ok := eff.(SendVscodeCommand); ok && cmd.Command.Kind == protocol.CmdSendText {
			p, err := cmd.Command.DecodeSendText()
			require.NoError(t, err)
			out = append(out, p)
		}
	}
	return out
}

func TestKeypadPressArms(t *testing.T) {
	s := state.New(0)
	effects := Reduce(s, testConfig(), KeypadPress{PromptID: "prep_pr"})

	assert.Equal(t, "prep_pr", s.ArmedPromptID)
	require.Len(t, effects, 1)
	assert.IsType(t, BroadcastRender{}, effects[0])
}

func TestKeypadPressUnknownPromptIsNoop(t *testing.T) {
	s := state.New(0)
	effects := Reduce(s, testConfig(), KeypadPress{PromptID: "missing"})
	assert.Empty(t, s.ArmedPromptID)
	assert.Empty(t, effects)
}

func TestArmThenCancel(t *testing.T) {
	s := state.New(0)
	cfg := testConfig()
	Reduce(s, cfg, KeypadPress{PromptID: "prep_pr"})
	effects := Reduce(s, cfg, DialpadButton{Button: protocol.ButtonEsc})

	assert.Empty(t, s.ArmedPromptID)
	// Cancel is local: no command leaves the daemon.
	assert.Empty(t, sendTextEffects(t, effects))
}

func TestArmThenDispatch(t *testing.T) {
	s := state.New(0)
	cfg := testConfig()
	Reduce(s, cfg, KeypadPress{PromptID: "prep_pr"})
	effects := Reduce(s, cfg, DialpadButton{Button: protocol.ButtonEnter})

	assert.Empty(t, s.ArmedPromptID)
	assert.Equal(t, "prep_pr", s.LastDispatchedID)

	sends := sendTextEffects(t, effects)
	require.Len(t, sends, 1)
	assert.Equal(t, "/runbook:prep-pr", sends[0].Text)
	assert.True(t, sends[0].AddNewline)
}

func TestDispatchUsesFallbackWhenGenericTooling(t *testing.T) {
	s := state.New(0)
	cfg := testConfig()
	cfg.PrimaryTooling = "generic"
	Reduce(s, cfg, KeypadPress{PromptID: "prep_pr"})
	effects := Reduce(s, cfg, DialpadButton{Button: protocol.ButtonEnter})

	sends := sendTextEffects(t, effects)
	require.Len(t, sends, 1)
	assert.Equal(t, "Prep a PR.", sends[0].Text)
}

func TestUnarmedEnterSendsBareNewline(t *testing.T) {
	s := state.New(0)
	effects := Reduce(s, testConfig(), DialpadButton{Button: protocol.ButtonEnter})

	sends := sendTextEffects(t, effects)
	require.Len(t, sends, 1)
	assert.Equal(t, "", sends[0].Text)
	assert.True(t, sends[0].AddNewline)
}

func TestUnarmedEscForwardsEscape(t *testing.T) {
	s := state.New(0)
	effects := Reduce(s, testConfig(), DialpadButton{Button: protocol.ButtonEsc})

	sends := sendTextEffects(t, effects)
	require.Len(t, sends, 1)
	assert.Equal(t, "\x1b", sends[0].Text)
	assert.False(t, sends[0].AddNewline)
}

func TestCtrlCAlwaysForwarded(t *testing.T) {
	s := state.New(0)
	cfg := testConfig()
	Reduce(s, cfg, KeypadPress{PromptID: "prep_pr"})
	effects := Reduce(s, cfg, DialpadButton{Button: protocol.ButtonCtrlC})

	// Arm state untouched.
	assert.Equal(t, "prep_pr", s.ArmedPromptID)
	sends := sendTextEffects(t, effects)
	require.Len(t, sends, 1)
	assert.Equal(t, "\x03", sends[0].Text)
	assert.False(t, sends[0].AddNewline)
}

func TestExportTypedWithoutNewline(t *testing.T) {
	s := state.New(0)
	effects := Reduce(s, testConfig(), DialpadButton{Button: protocol.ButtonExport})

	sends := sendTextEffects(t, effects)
	require.Len(t, sends, 1)
	assert.Equal(t, "/export", sends[0].Text)
	assert.False(t, sends[0].AddNewline)
}

func TestDialScrolls(t *testing.T) {
	s := state.New(0)
	effects := Reduce(s, testConfig(), Adjustment{Kind: protocol.AdjustDial, Delta: -3})

	require.Len(t, effects, 1)
	cmd := effects[0].(SendVscodeCommand).Command
	p, err := cmd.DecodeScrollTerminal()
	require.NoError(t, err)
	assert.Equal(t, -3, p.Delta)
	assert.Equal(t, protocol.ScrollLines, p.Unit)
}

func TestRollerFocusesBySign(t *testing.T) {
	s := state.New(0)
	effects := Reduce(s, testConfig(), Adjustment{Kind: protocol.AdjustRoller, Delta: 5})

	require.Len(t, effects, 1)
	cmd := effects[0].(SendVscodeCommand).Command
	p, err := cmd.DecodeFocusTerminal()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Direction)
}

func TestPageCyclingWrapsAndClearsArm(t *testing.T) {
	s := state.New(0)
	cfg := testConfig()
	require.Len(t, cfg.Keypad.Pages, 3)

	Reduce(s, cfg, KeypadPress{PromptID: "prep_pr"})
	Reduce(s, cfg, PageNav{Direction: protocol.PagePrev})
	assert.Equal(t, 2, s.CurrentPage)
	assert.Empty(t, s.ArmedPromptID)

	Reduce(s, cfg, PageNav{Direction: protocol.PageNext})
	assert.Equal(t, 0, s.CurrentPage)
}

func TestHookEventTable(t *testing.T) {
	cases := []struct {
		hook    string
		matcher string
		want    protocol.AgentState
	}{
		{protocol.HookSessionStart, "", protocol.AgentIdle},
		{protocol.HookNotification, protocol.MatcherIdlePrompt, protocol.AgentIdle},
		{protocol.HookNotification, protocol.MatcherPermissionPrompt, protocol.AgentWaitingPermission},
		{protocol.HookNotification, protocol.MatcherElicitationDialog, protocol.AgentWaitingInput},
		{protocol.HookNotification, protocol.MatcherPolicyBlock, protocol.AgentBlocked},
		{protocol.HookUserPromptSubmit, "", protocol.AgentRunning},
		{protocol.HookPreToolUse, "Bash", protocol.AgentRunning},
		{protocol.HookPermissionRequest, "", protocol.AgentWaitingPermission},
		{protocol.HookPostToolUse, "Edit", protocol.AgentRunning},
		{protocol.HookPostToolUseFailure, "Bash", protocol.AgentRunning},
		{protocol.HookTaskCompleted, "", protocol.AgentComplete},
		{protocol.HookStop, "", protocol.AgentSettled},
	}
	for _, tc := range cases {
		t.Run(tc.hook+"/"+tc.matcher, func(t *testing.T) {
			s := state.New(0)
			Reduce(s, testConfig(), HookEvent{Hook: tc.hook, Matcher: tc.matcher, SessionID: "s1"})
			require.Contains(t, s.Sessions, "s1")
			assert.Equal(t, tc.want, s.Sessions["s1"].AgentState)
			assert.Equal(t, protocol.HooksActive, s.HooksMode)
		})
	}
}

func TestHookEventIdempotent(t *testing.T) {
	s := state.New(0)
	cfg := testConfig()
	ev := HookEvent{Hook: protocol.HookUserPromptSubmit, SessionID: "s1"}

	Reduce(s, cfg, ev)
	first := s.Sessions["s1"].AgentState
	Reduce(s, cfg, ev)
	assert.Equal(t, first, s.Sessions["s1"].AgentState)
	assert.Len(t, s.Sessions, 1)
}

func TestHookEventDefaultsSessionID(t *testing.T) {
	s := state.New(0)
	Reduce(s, testConfig(), HookEvent{Hook: protocol.HookSessionStart})
	assert.Contains(t, s.Sessions, state.DefaultSessionID)
	assert.Equal(t, state.DefaultSessionID, s.ActiveSession)
}

func TestHookEventLearnsTag(t *testing.T) {
	s := state.New(0)
	Reduce(s, testConfig(), HookEvent{Hook: protocol.HookSessionStart, SessionID: "s1", SessionTag: "left"})
	assert.Equal(t, "s1", s.SessionTagMap["left"])
}

func TestHookEventRecordsLastTool(t *testing.T) {
	s := state.New(0)
	Reduce(s, testConfig(), HookEvent{Hook: protocol.HookPreToolUse, Matcher: "Bash", SessionID: "s1"})
	assert.Equal(t, "Bash", s.Sessions["s1"].LastTool)
}

func TestUnknownHookLatchesButLeavesStateAlone(t *testing.T) {
	s := state.New(0)
	Reduce(s, testConfig(), HookEvent{Hook: "SomethingNew", SessionID: "s1"})

	assert.Equal(t, protocol.HooksActive, s.HooksMode)
	require.Contains(t, s.Sessions, "s1")
	assert.Equal(t, protocol.AgentUnknown, s.Sessions["s1"].AgentState)
}

func TestSessionEndRemovesAndLatches(t *testing.T) {
	s := state.New(0)
	cfg := testConfig()
	Reduce(s, cfg, HookEvent{Hook: protocol.HookTaskCompleted, SessionID: "s1"})
	require.Equal(t, protocol.AgentComplete, s.Sessions["s1"].AgentState)

	Reduce(s, cfg, HookEvent{Hook: protocol.HookSessionEnd, SessionID: "s1"})
	assert.Empty(t, s.Sessions)
	assert.Equal(t, protocol.AgentComplete, s.LastEndedState)
	assert.Equal(t, protocol.AgentComplete, s.CurrentAgentState())

	// A new session supersedes the latch.
	Reduce(s, cfg, HookEvent{Hook: protocol.HookSessionStart, SessionID: "s2"})
	assert.Equal(t, protocol.AgentIdle, s.CurrentAgentState())
}

func TestTerminalsSnapshotIngested(t *testing.T) {
	s := state.New(0)
	effects := Reduce(s, testConfig(), TerminalsSnapshot{
		Terminals: []protocol.TerminalInfo{
			{Index: 0, Name: "claude", SessionTag: "left"},
			{Index: 1, Name: "zsh"},
		},
		ActiveIndex: 0,
	})

	assert.Equal(t, 0, s.SelectedTerminalIndex)
	assert.Equal(t, "left", s.TerminalTagMap[0])
	require.Len(t, effects, 1)
	assert.IsType(t, BroadcastRender{}, effects[0])
}

func TestClientFlags(t *testing.T) {
	s := state.New(0)
	cfg := testConfig()
	Reduce(s, cfg, ClientConnected{Kind: protocol.ClientLogi})
	assert.True(t, s.LogiConnected)

	Reduce(s, cfg, ClientConnected{Kind: protocol.ClientVscode})
	assert.True(t, s.VscodeConnected)

	Reduce(s, cfg, ClientDisconnected{Kind: protocol.ClientLogi})
	assert.False(t, s.LogiConnected)
	assert.True(t, s.VscodeConnected)
}
