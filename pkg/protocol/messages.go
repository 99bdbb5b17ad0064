package protocol

import (
	"encoding/json"
	"fmt"
)

// Hook names normalized from the assistant's lifecycle events.
const (
	HookSessionStart       = "SessionStart"
	HookNotification       = "Notification"
	HookUserPromptSubmit   = "UserPromptSubmit"
	HookPreToolUse         = "PreToolUse"
	HookPermissionRequest  = "PermissionRequest"
	HookPostToolUse        = "PostToolUse"
	HookPostToolUseFailure = "PostToolUseFailure"
	HookTaskCompleted      = "TaskCompleted"
	HookStop               = "Stop"
	HookSessionEnd         = "SessionEnd"
)

// Notification matchers the daemon understands.
const (
	MatcherIdlePrompt        = "idle_prompt"
	MatcherPermissionPrompt  = "permission_prompt"
	MatcherElicitationDialog = "elicitation_dialog"
	MatcherPolicyBlock       = "policy_block"
)

// Hello is the first message a client sends on a new connection.
type Hello struct {
	Client       ClientKind `json:"client"`
	Protocol     int        `json:"protocol"`
	Version      string     `json:"version"`
	Capabilities []string   `json:"capabilities,omitempty"`
}

// HelloAck is the daemon's handshake acknowledgment, sent unprompted as
// soon as a connection is accepted.
type HelloAck struct {
	Protocol      int    `json:"protocol"`
	DaemonVersion string `json:"daemon_version"`
}

// KeypadPress carries the prompt (or gate) id bound to the pressed slot.
type KeypadPress struct {
	PromptID string `json:"prompt_id"`
}

// DialpadButtonPress reports one of the four dialpad buttons.
type DialpadButtonPress struct {
	Button DialpadButton `json:"button"`
}

// Adjustment reports a signed number of detents on the dial or roller.
type Adjustment struct {
	Kind  AdjustmentKind `json:"kind"`
	Delta int            `json:"delta"`
}

// PageNav requests cycling the keypad page.
type PageNav struct {
	Direction PageDirection `json:"direction"`
}

// HookEvent is a normalized assistant lifecycle notification. The payload
// is carried opaquely; the daemon only reads the envelope fields.
type HookEvent struct {
	Hook       string          `json:"hook"`
	Matcher    string          `json:"matcher,omitempty"`
	SessionID  string          `json:"session_id,omitempty"`
	SessionTag string          `json:"session_tag,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// TerminalsSnapshot is the editor's report of its terminal inventory and
// which terminal currently has focus.
type TerminalsSnapshot struct {
	Terminals   []TerminalInfo `json:"terminals"`
	ActiveIndex int            `json:"active_index"`
}

// Notice is a human-readable notification (debug / toast).
type Notice struct {
	Message string `json:"message"`
}

// VscodeCommand asks the editor bridge to perform an operation.
type VscodeCommand struct {
	Kind    VscodeCommandKind `json:"kind"`
	Target  TerminalTarget    `json:"target"`
	Payload json.RawMessage   `json:"payload"`
}

// SendTextPayload is the payload of a send_text command.
type SendTextPayload struct {
	Text       string `json:"text"`
	AddNewline bool   `json:"add_newline"`
}

// FocusTerminalPayload is the payload of a focus_terminal command.
type FocusTerminalPayload struct {
	Direction int `json:"direction"`
}

// ScrollTerminalPayload is the payload of a scroll_terminal command.
type ScrollTerminalPayload struct {
	Delta int                `json:"delta"`
	Unit  TerminalScrollUnit `json:"unit"`
}

// OpenURIPayload is the payload of an open_uri command.
type OpenURIPayload struct {
	URI string `json:"uri"`
}

// SendText builds a send_text command.
func SendText(target TerminalTarget, text string, addNewline bool) VscodeCommand {
	payload, _ := json.Marshal(SendTextPayload{Text: text, AddNewline: addNewline})
	return VscodeCommand{Kind: CmdSendText, Target: target, Payload: payload}
}

// FocusTerminal builds a focus_terminal command. Direction is the sign of
// the roller delta.
func FocusTerminal(target TerminalTarget, direction int) VscodeCommand {
	payload, _ := json.Marshal(FocusTerminalPayload{Direction: direction})
	return VscodeCommand{Kind: CmdFocusTerminal, Target: target, Payload: payload}
}

// ScrollTerminal builds a scroll_terminal command.
func ScrollTerminal(target TerminalTarget, delta int, unit TerminalScrollUnit) VscodeCommand {
	payload, _ := json.Marshal(ScrollTerminalPayload{Delta: delta, Unit: unit})
	return VscodeCommand{Kind: CmdScrollTerminal, Target: target, Payload: payload}
}

// OpenURI builds an open_uri command. Gates resolve to these.
func OpenURI(uri string) VscodeCommand {
	payload, _ := json.Marshal(OpenURIPayload{URI: uri})
	return VscodeCommand{Kind: CmdOpenURI, Target: TargetActive, Payload: payload}
}

// DecodeSendText decodes the payload of a send_text command.
func (c *VscodeCommand) DecodeSendText() (SendTextPayload, error) {
	var p SendTextPayload
	if c.Kind != CmdSendText {
		return p, fmt.Errorf("not a send_text command: %s", c.Kind)
	}
	err := json.Unmarshal(c.Payload, &p)
	return p, err
}

// DecodeFocusTerminal decodes the payload of a focus_terminal command.
func (c *VscodeCommand) DecodeFocusTerminal() (FocusTerminalPayload, error) {
	var p FocusTerminalPayload
	if c.Kind != CmdFocusTerminal {
		return p, fmt.Errorf("not a focus_terminal command: %s", c.Kind)
	}
	err := json.Unmarshal(c.Payload, &p)
	return p, err
}

// DecodeScrollTerminal decodes the payload of a scroll_terminal command.
func (c *VscodeCommand) DecodeScrollTerminal() (ScrollTerminalPayload, error) {
	var p ScrollTerminalPayload
	if c.Kind != CmdScrollTerminal {
		return p, fmt.Errorf("not a scroll_terminal command: %s", c.Kind)
	}
	err := json.Unmarshal(c.Payload, &p)
	return p, err
}

// DecodeOpenURI decodes the payload of an open_uri command.
func (c *VscodeCommand) DecodeOpenURI() (OpenURIPayload, error) {
	var p OpenURIPayload
	if c.Kind != CmdOpenURI {
		return p, fmt.Errorf("not an open_uri command: %s", c.Kind)
	}
	err := json.Unmarshal(c.Payload, &p)
	return p, err
}
