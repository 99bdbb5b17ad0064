package protocol

import (
	"encoding/json"
	"fmt"
)

// Message type tags, client → daemon.
const (
	TypeHello             = "hello"
	TypeKeypadPress       = "keypad_press"
	TypeDialpadButton     = "dialpad_button_press"
	TypeAdjustment        = "adjustment"
	TypePageNav           = "page_nav"
	TypeHookEvent         = "hook_event"
	TypeTerminalsSnapshot = "terminals_snapshot"
)

// Message type tags, daemon → client. The hello tag is reused for the ack.
const (
	TypeRender        = "render"
	TypeVscodeCommand = "vscode_command"
	TypeNotice        = "notice"
)

// ClientMessage is the decoded form of a client → daemon message. Exactly
// one body field, matching Type, is non-nil.
type ClientMessage struct {
	Type               string
	Hello              *Hello
	KeypadPress        *KeypadPress
	DialpadButtonPress *DialpadButtonPress
	Adjustment         *Adjustment
	PageNav            *PageNav
	HookEvent          *HookEvent
	TerminalsSnapshot  *TerminalsSnapshot
}

// DaemonMessage is the decoded form of a daemon → client message. Exactly
// one body field, matching Type, is non-nil.
type DaemonMessage struct {
	Type          string
	HelloAck      *HelloAck
	Render        *RenderModel
	VscodeCommand *VscodeCommand
	Notice        *Notice
}

type typeTag struct {
	Type string `json:"type"`
}

// DecodeClientMessage parses one tagged client → daemon message: one decode
// hop for the tag, one for the body.
func DecodeClientMessage(data []byte) (*ClientMessage, error) {
	var tag typeTag
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("invalid message envelope: %w", err)
	}

	msg := &ClientMessage{Type: tag.Type}
	var body interface{}
	switch tag.Type {
	case TypeHello:
		msg.Hello = &Hello{}
		body = msg.Hello
	case TypeKeypadPress:
		msg.KeypadPress = &KeypadPress{}
		body = msg.KeypadPress
	case TypeDialpadButton:
		msg.DialpadButtonPress = &DialpadButtonPress{}
		body = msg.DialpadButtonPress
	case TypeAdjustment:
		msg.Adjustment = &Adjustment{}
		body = msg.Adjustment
	case TypePageNav:
		msg.PageNav = &PageNav{}
		body = msg.PageNav
	case TypeHookEvent:
		msg.HookEvent = &HookEvent{}
		body = msg.HookEvent
	case TypeTerminalsSnapshot:
		msg.TerminalsSnapshot = &TerminalsSnapshot{}
		body = msg.TerminalsSnapshot
	default:
		return nil, fmt.Errorf("unknown client message type %q", tag.Type)
	}

	if err := json.Unmarshal(data, body); err != nil {
		return nil, fmt.Errorf("invalid %s message: %w", tag.Type, err)
	}
	return msg, nil
}

// DecodeDaemonMessage parses one tagged daemon → client message.
func DecodeDaemonMessage(data []byte) (*DaemonMessage, error) {
	var tag typeTag
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("invalid message envelope: %w", err)
	}

	msg := &DaemonMessage{Type: tag.Type}
	var body interface{}
	switch tag.Type {
	case TypeHello:
		msg.HelloAck = &HelloAck{}
		body = msg.HelloAck
	case TypeRender:
		msg.Render = &RenderModel{}
		body = msg.Render
	case TypeVscodeCommand:
		msg.VscodeCommand = &VscodeCommand{}
		body = msg.VscodeCommand
	case TypeNotice:
		msg.Notice = &Notice{}
		body = msg.Notice
	default:
		return nil, fmt.Errorf("unknown daemon message type %q", tag.Type)
	}

	if err := json.Unmarshal(data, body); err != nil {
		return nil, fmt.Errorf("invalid %s message: %w", tag.Type, err)
	}
	return msg, nil
}

// Encode helpers inline the type tag into the message object so the wire
// layout stays flat: {"type":"keypad_press","prompt_id":"prep_pr"}.

// EncodeHello encodes a client handshake.
func EncodeHello(h Hello) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Hello
	}{TypeHello, h})
}

// EncodeKeypadPress encodes a keypad press.
func EncodeKeypadPress(p KeypadPress) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		KeypadPress
	}{TypeKeypadPress, p})
}

// EncodeDialpadButtonPress encodes a dialpad button press.
func EncodeDialpadButtonPress(p DialpadButtonPress) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		DialpadButtonPress
	}{TypeDialpadButton, p})
}

// EncodeAdjustment encodes a dial or roller adjustment.
func EncodeAdjustment(a Adjustment) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Adjustment
	}{TypeAdjustment, a})
}

// EncodePageNav encodes a page navigation request.
func EncodePageNav(p PageNav) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		PageNav
	}{TypePageNav, p})
}

// EncodeHookEvent encodes a normalized hook event.
func EncodeHookEvent(e HookEvent) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		HookEvent
	}{TypeHookEvent, e})
}

// EncodeTerminalsSnapshot encodes a terminal inventory report.
func EncodeTerminalsSnapshot(s TerminalsSnapshot) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		TerminalsSnapshot
	}{TypeTerminalsSnapshot, s})
}

// EncodeHelloAck encodes the daemon handshake acknowledgment.
func EncodeHelloAck(a HelloAck) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		HelloAck
	}{TypeHello, a})
}

// EncodeRender encodes a render snapshot.
func EncodeRender(m *RenderModel) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		*RenderModel
	}{TypeRender, m})
}

// EncodeVscodeCommand encodes an editor command.
func EncodeVscodeCommand(c VscodeCommand) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		VscodeCommand
	}{TypeVscodeCommand, c})
}

// EncodeNotice encodes a notice.
func EncodeNotice(n Notice) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Notice
	}{TypeNotice, n})
}
