// Package reducer is the pure state-transition core of the daemon. It
// consumes one typed event plus the immutable config and the current state,
// mutates the state, and returns an ordered list of side effects as data.
// No I/O happens here; the hub executes effects after releasing the state
// lock.
package reducer

import (
	"github.com/runbooktools/runbook/config"
	"github.com/runbooktools/runbook/internal/daemon/state"
	"github.com/runbooktools/runbook/pkg/protocol"
)

// Event is one external stimulus. The variants mirror the inbound wire
// messages, minus Hello (handled by the connection handshake) and gate
// presses (intercepted upstream and dispatched immediately).
type Event interface{ isEvent() }

// KeypadPress arms the referenced prompt.
type KeypadPress struct {
	PromptID string
}

// DialpadButton is one of the four fixed control keys.
type DialpadButton struct {
	Button protocol.DialpadButton
}

// Adjustment is a dial or roller movement.
type Adjustment struct {
	Kind  protocol.AdjustmentKind
	Delta int
}

// PageNav cycles the keypad page.
type PageNav struct {
	Direction protocol.PageDirection
}

// HookEvent is a normalized assistant lifecycle notification.
type HookEvent struct {
	Hook       string
	Matcher    string
	SessionID  string
	SessionTag string
}

// TerminalsSnapshot replaces the learned editor-terminal inventory.
type TerminalsSnapshot struct {
	Terminals   []protocol.TerminalInfo
	ActiveIndex int
}

// ClientConnected marks a transport kind as live.
type ClientConnected struct {
	Kind protocol.ClientKind
}

// ClientDisconnected marks a transport kind as gone.
type ClientDisconnected struct {
	Kind protocol.ClientKind
}

func (KeypadPress) isEvent()        {}
func (DialpadButton) isEvent()      {}
func (Adjustment) isEvent()         {}
func (PageNav) isEvent()            {}
func (HookEvent) isEvent()          {}
func (TerminalsSnapshot) isEvent()  {}
func (ClientConnected) isEvent()    {}
func (ClientDisconnected) isEvent() {}

// SideEffect is an outbound action the hub executes after the state lock
// is released.
type SideEffect interface{ isSideEffect() }

// BroadcastRender asks the hub to recompute the render model and publish
// it to every subscriber.
type BroadcastRender struct{}

// SendVscodeCommand publishes one editor command.
type SendVscodeCommand struct {
	Command protocol.VscodeCommand
}

func (BroadcastRender) isSideEffect()   {}
func (SendVscodeCommand) isSideEffect() {}

// Reduce applies one event. Given identical (state, config, event) it
// always mutates state identically and returns an identical effect list.
func Reduce(s *state.DaemonState, cfg *config.Config, ev Event) []SideEffect {
	switch e := ev.(type) {
	case KeypadPress:
		return reduceKeypadPress(s, cfg, e)
	case DialpadButton:
		return reduceDialpadButton(s, cfg, e)
	case Adjustment:
		return reduceAdjustment(e)
	case PageNav:
		return reducePageNav(s, cfg, e)
	case HookEvent:
		return reduceHookEvent(s, e)
	case TerminalsSnapshot:
		s.ApplyTerminalsSnapshot(e.Terminals, e.ActiveIndex)
		return []SideEffect{BroadcastRender{}}
	case ClientConnected:
		setClientFlag(s, e.Kind, true)
		return []SideEffect{BroadcastRender{}}
	case ClientDisconnected:
		setClientFlag(s, e.Kind, false)
		return []SideEffect{BroadcastRender{}}
	}
	return nil
}

func reduceKeypadPress(s *state.DaemonState, cfg *config.Config, e KeypadPress) []SideEffect {
	// Only known prompts arm. Gates never reach this path, and an unknown
	// id is a stale or misconfigured key face.
	if _, ok := cfg.Prompts[e.PromptID]; !ok {
		return nil
	}
	s.ArmedPromptID = e.PromptID
	return []SideEffect{BroadcastRender{}}
}

func reduceDialpadButton(s *state.DaemonState, cfg *config.Config, e DialpadButton) []SideEffect {
	switch e.Button {
	case protocol.ButtonEnter:
		if s.ArmedPromptID != "" {
			id := s.ArmedPromptID
			text := cfg.Prompts[id].EffectiveCommand(cfg.IsClaudePrimary())
			s.LastDispatchedID = id
			s.ArmedPromptID = ""
			return []SideEffect{
				SendVscodeCommand{protocol.SendText(protocol.TargetActiveClaude, text, true)},
				BroadcastRender{},
			}
		}
		// Bare confirmation keystroke.
		return []SideEffect{
			SendVscodeCommand{protocol.SendText(protocol.TargetActiveClaude, "", true)},
		}

	case protocol.ButtonEsc:
		if s.ArmedPromptID != "" {
			// Cancel locally; the terminal never sees the escape.
			s.ArmedPromptID = ""
			return []SideEffect{BroadcastRender{}}
		}
		return []SideEffect{
			SendVscodeCommand{protocol.SendText(protocol.TargetActiveClaude, "\x1b", false)},
		}

	case protocol.ButtonCtrlC:
		// Forwarded regardless of arm state.
		return []SideEffect{
			SendVscodeCommand{protocol.SendText(protocol.TargetActiveClaude, "\x03", false)},
		}

	case protocol.ButtonExport:
		// Typed but not confirmed; Enter follows separately.
		return []SideEffect{
			SendVscodeCommand{protocol.SendText(protocol.TargetActiveClaude, "/export", false)},
		}
	}
	return nil
}

func reduceAdjustment(e Adjustment) []SideEffect {
	switch e.Kind {
	case protocol.AdjustDial:
		return []SideEffect{
			SendVscodeCommand{protocol.ScrollTerminal(protocol.TargetActive, e.Delta, protocol.ScrollLines)},
		}
	case protocol.AdjustRoller:
		return []SideEffect{
			SendVscodeCommand{protocol.FocusTerminal(protocol.TargetActive, sign(e.Delta))},
		}
	}
	return nil
}

func reducePageNav(s *state.DaemonState, cfg *config.Config, e PageNav) []SideEffect {
	count := len(cfg.Keypad.Pages)
	if count == 0 {
		return nil
	}
	switch e.Direction {
	case protocol.PageNext:
		s.CurrentPage = (s.CurrentPage + 1) % count
	case protocol.PagePrev:
		s.CurrentPage = (s.CurrentPage - 1 + count) % count
	default:
		return nil
	}
	// Arm bindings are page-local from the operator's point of view.
	s.ArmedPromptID = ""
	return []SideEffect{BroadcastRender{}}
}

func reduceHookEvent(s *state.DaemonState, e HookEvent) []SideEffect {
	s.HooksMode = protocol.HooksActive

	id, sess := s.EnsureSession(e.SessionID)
	if s.ActiveSession == "" {
		s.ActiveSession = id
	}
	s.LearnSessionTag(e.SessionTag, id)

	switch e.Hook {
	case protocol.HookSessionStart:
		sess.AgentState = protocol.AgentIdle
	case protocol.HookNotification:
		switch e.Matcher {
		case protocol.MatcherIdlePrompt:
			sess.AgentState = protocol.AgentIdle
		case protocol.MatcherPermissionPrompt:
			sess.AgentState = protocol.AgentWaitingPermission
		case protocol.MatcherElicitationDialog:
			sess.AgentState = protocol.AgentWaitingInput
		case protocol.MatcherPolicyBlock:
			sess.AgentState = protocol.AgentBlocked
		}
	case protocol.HookUserPromptSubmit:
		sess.AgentState = protocol.AgentRunning
	case protocol.HookPreToolUse:
		sess.AgentState = protocol.AgentRunning
		if e.Matcher != "" {
			sess.LastTool = e.Matcher
		}
	case protocol.HookPermissionRequest:
		sess.AgentState = protocol.AgentWaitingPermission
	case protocol.HookPostToolUse, protocol.HookPostToolUseFailure:
		sess.AgentState = protocol.AgentRunning
		if e.Matcher != "" {
			sess.LastTool = e.Matcher
		}
	case protocol.HookTaskCompleted:
		sess.AgentState = protocol.AgentComplete
	case protocol.HookStop:
		sess.AgentState = protocol.AgentSettled
	case protocol.HookSessionEnd:
		// Removal latches the session's pre-removal state, so a session
		// that finished a task keeps reporting Complete after it ends.
		s.RemoveSession(id)
	}
	// Unrecognized hooks and matchers fall through: the session exists and
	// the latch is set, but the state is left alone.

	return []SideEffect{BroadcastRender{}}
}

func setClientFlag(s *state.DaemonState, kind protocol.ClientKind, connected bool) {
	switch kind {
	case protocol.ClientLogi:
		s.LogiConnected = connected
	case protocol.ClientVscode:
		s.VscodeConnected = connected
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
