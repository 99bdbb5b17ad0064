// Package protocol defines the runbook wire protocol: the tagged JSON
// messages exchanged between the daemon and its clients (keypad plugin,
// editor extension, hook forwarder), plus the render model broadcast to
// every connected device.
//
// The on-the-wire schema is versioned and evolves additively; the `type`
// tag selects the message shape and unknown fields are ignored on decode.
package protocol

// ProtocolVersion is bumped only on breaking wire changes.
const ProtocolVersion = 1

// ClientKind identifies which device class a connection speaks for.
type ClientKind string

const (
	ClientLogi   ClientKind = "logi"
	ClientVscode ClientKind = "vscode"
	ClientHooks  ClientKind = "hooks"
)

// AgentState is the daemon's best truthful answer to "what is the
// assistant doing right now". Unknown is a first-class value: the daemon
// reports it whenever telemetry is missing or ambiguous rather than guess.
type AgentState string

const (
	// AgentUnknown means no telemetry, or unresolvable multi-session ambiguity.
	AgentUnknown AgentState = "unknown"
	// AgentIdle means the assistant is ready for the next prompt.
	AgentIdle AgentState = "idle"
	// AgentRunning means a prompt was submitted and the assistant is working.
	AgentRunning AgentState = "running"
	// AgentWaitingPermission means the assistant is blocked on a permission prompt.
	AgentWaitingPermission AgentState = "waiting_permission"
	// AgentWaitingInput means the assistant is blocked on an elicitation dialog.
	AgentWaitingInput AgentState = "waiting_input"
	// AgentComplete means the assistant finished a bounded task.
	AgentComplete AgentState = "complete"
	// AgentSettled means the assistant stopped responding but the session lives on.
	AgentSettled AgentState = "settled"
	// AgentEnded means the session ended.
	AgentEnded AgentState = "ended"
	// AgentBlocked means the hook guard denied a destructive action on the
	// session's behalf (reported via a policy_block notification).
	AgentBlocked AgentState = "blocked"
)

// HooksMode reports whether any assistant lifecycle hook has ever reached
// the daemon during this process lifetime. It latches one way: absent
// until the first HookEvent, active forever after.
type HooksMode string

const (
	HooksAbsent HooksMode = "absent"
	HooksActive HooksMode = "active"
)

// DialpadButton is one of the four fixed control keys next to the keypad.
type DialpadButton string

const (
	ButtonCtrlC  DialpadButton = "ctrl_c"
	ButtonExport DialpadButton = "export"
	ButtonEsc    DialpadButton = "esc"
	ButtonEnter  DialpadButton = "enter"
)

// AdjustmentKind distinguishes the two analog inputs.
type AdjustmentKind string

const (
	AdjustDial   AdjustmentKind = "dial"
	AdjustRoller AdjustmentKind = "roller"
)

// PageDirection is the keypad page-cycling direction.
type PageDirection string

const (
	PagePrev PageDirection = "prev"
	PageNext PageDirection = "next"
)

// VscodeCommandKind enumerates the editor-side operations the daemon can request.
type VscodeCommandKind string

const (
	CmdSendText       VscodeCommandKind = "send_text"
	CmdFocusTerminal  VscodeCommandKind = "focus_terminal"
	CmdScrollTerminal VscodeCommandKind = "scroll_terminal"
	CmdOpenURI        VscodeCommandKind = "open_uri"
)

// TerminalTarget selects which terminal an editor command applies to.
type TerminalTarget string

const (
	// TargetActiveClaude is the extension's notion of the current assistant terminal.
	TargetActiveClaude TerminalTarget = "active_claude"
	// TargetActive is whatever the editor reports as the active terminal.
	TargetActive TerminalTarget = "active"
)

// TerminalScrollUnit is the unit for scroll_terminal deltas.
type TerminalScrollUnit string

const ScrollLines TerminalScrollUnit = "lines"

// ArmStyle tags how a client should present an armed prompt.
type ArmStyle string

const (
	// ArmQueue presents the prompt as queued for dispatch on confirm.
	ArmQueue ArmStyle = "queue"
	// ArmPrefill presents the prompt as editable text prefilled in the input.
	ArmPrefill ArmStyle = "prefill"
)

// TerminalInfo describes one editor terminal as reported by the extension.
type TerminalInfo struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	SessionTag string `json:"session_tag,omitempty"`
}

// RenderModel is the derived, display-ready snapshot of daemon state. It is
// recomputed on every observable change and broadcast identically to all
// devices; clients replace their previous copy wholesale.
type RenderModel struct {
	AgentState AgentState       `json:"agent_state"`
	Armed      *ArmedPrompt     `json:"armed,omitempty"`
	Keypad     KeypadRender     `json:"keypad"`
	PageIndex  int              `json:"page_index"`
	PageCount  int              `json:"page_count"`
	HooksMode  HooksMode        `json:"hooks_mode"`
}

// ArmedPrompt projects the currently armed prompt for display, including
// the command text that Enter would dispatch.
type ArmedPrompt struct {
	PromptID string   `json:"prompt_id"`
	Label    string   `json:"label"`
	Style    ArmStyle `json:"style"`
	Command  string   `json:"command"`
}

// KeypadRender carries what to show on each of the nine LCD keys.
type KeypadRender struct {
	Slots []KeypadSlotRender `json:"slots"`
}

// KeypadSlotRender is one key's projection. An unresolved reference keeps
// its id but renders a placeholder label; empty slots use EmptySlotID.
type KeypadSlotRender struct {
	Slot     int    `json:"slot"`
	PromptID string `json:"prompt_id"`
	Label    string `json:"label"`
	Sublabel string `json:"sublabel,omitempty"`
	Armed    bool   `json:"armed"`
}

// Placeholders used by the render projector for empty and dangling slots.
const (
	EmptySlotID      = "_empty"
	EmptySlotLabel   = "—"
	UnresolvedLabel  = "???"
)
