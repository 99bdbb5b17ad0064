package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClientMessage_KeypadPress(t *testing.T) {
	data := []byte(`{"type":"keypad_press","prompt_id":"prep_pr"}`)

	msg, err := DecodeClientMessage(data)
	require.NoError(t, err)
	assert.Equal(t, TypeKeypadPress, msg.Type)
	require.NotNil(t, msg.KeypadPress)
	assert.Equal(t, "prep_pr", msg.KeypadPress.PromptID)
}

func TestDecodeClientMessage_HookEventOptionalFields(t *testing.T) {
	data := []byte(`{"type":"hook_event","hook":"Notification","matcher":"permission_prompt","payload":{"tool":"Bash"}}`)

	msg, err := DecodeClientMessage(data)
	require.NoError(t, err)
	require.NotNil(t, msg.HookEvent)
	assert.Equal(t, "Notification", msg.HookEvent.Hook)
	assert.Equal(t, "permission_prompt", msg.HookEvent.Matcher)
	assert.Empty(t, msg.HookEvent.SessionID)
	assert.Empty(t, msg.HookEvent.SessionTag)
	assert.JSONEq(t, `{"tool":"Bash"}`, string(msg.HookEvent.Payload))
}

func TestDecodeClientMessage_UnknownType(t *testing.T) {
	_, err := DecodeClientMessage([]byte(`{"type":"warp_drive"}`))
	assert.Error(t, err)
}

func TestDecodeClientMessage_MalformedJSON(t *testing.T) {
	_, err := DecodeClientMessage([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestEncodeInlinesTypeTag(t *testing.T) {
	data, err := EncodeKeypadPress(KeypadPress{PromptID: "break_task"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"keypad_press","prompt_id":"break_task"}`, string(data))
}

func TestHelloAckRoundTrip(t *testing.T) {
	data, err := EncodeHelloAck(HelloAck{Protocol: ProtocolVersion, DaemonVersion: "1.2.3"})
	require.NoError(t, err)

	msg, err := DecodeDaemonMessage(data)
	require.NoError(t, err)
	assert.Equal(t, TypeHello, msg.Type)
	require.NotNil(t, msg.HelloAck)
	assert.Equal(t, ProtocolVersion, msg.HelloAck.Protocol)
	assert.Equal(t, "1.2.3", msg.HelloAck.DaemonVersion)
}

func TestVscodeCommandConstructors(t *testing.T) {
	cmd := SendText(TargetActiveClaude, "/runbook:prep-pr", true)
	assert.Equal(t, CmdSendText, cmd.Kind)
	assert.Equal(t, TargetActiveClaude, cmd.Target)

	p, err := cmd.DecodeSendText()
	require.NoError(t, err)
	assert.Equal(t, "/runbook:prep-pr", p.Text)
	assert.True(t, p.AddNewline)

	scroll := ScrollTerminal(TargetActiveClaude, -3, ScrollLines)
	sp, err := scroll.DecodeScrollTerminal()
	require.NoError(t, err)
	assert.Equal(t, -3, sp.Delta)
	assert.Equal(t, ScrollLines, sp.Unit)

	open := OpenURI("https://example.com/pr/42")
	op, err := open.DecodeOpenURI()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/pr/42", op.URI)

	_, err = open.DecodeSendText()
	assert.Error(t, err)
}

func TestRenderModelOmitsEmptyArm(t *testing.T) {
	model := &RenderModel{
		AgentState: AgentUnknown,
		Keypad:     KeypadRender{Slots: []KeypadSlotRender{}},
		PageCount:  1,
		HooksMode:  HooksAbsent,
	}
	data, err := EncodeRender(model)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "armed")
	assert.Contains(t, raw, "hooks_mode")
	assert.Contains(t, raw, "page_count")
}
