// Package state holds the daemon's authoritative in-memory state: the
// keypad page stack, the armed prompt, and the per-session agent telemetry
// learned from lifecycle hooks.
//
// The state is owned by the hub and mutated only by the reducer while the
// hub's lock is held. Everything here is plain data; no I/O.
package state

import (
	"time"

	"github.com/runbooktools/runbook/pkg/protocol"
)

// DefaultSessionID is assigned when a hook event arrives without a session
// id. Real assistant hooks always carry one; this keeps hand-fired events
// from being dropped.
const DefaultSessionID = "_default"

// SessionState is what the daemon knows about one assistant session.
type SessionState struct {
	AgentState protocol.AgentState `json:"agent_state"`
	LastTool   string              `json:"last_tool,omitempty"`
	StartedAt  time.Time           `json:"started_at"`
}

// DaemonState is the full mutable state of a running daemon.
type DaemonState struct {
	// CurrentPage indexes into the configured keypad pages.
	CurrentPage int `json:"current_page"`

	// ArmedPromptID is the prompt currently staged for dispatch, or empty.
	ArmedPromptID string `json:"armed_prompt_id,omitempty"`

	// LastDispatchedID is the most recently dispatched prompt, or empty.
	LastDispatchedID string `json:"last_dispatched_id,omitempty"`

	// HooksMode latches from absent to active on the first hook event.
	HooksMode protocol.HooksMode `json:"hooks_mode"`

	// Sessions maps session id to its telemetry.
	Sessions map[string]*SessionState `json:"sessions"`

	// SessionTagMap maps a session tag to a session id. Tags are learned
	// from hook events that carry both.
	SessionTagMap map[string]string `json:"session_tag_map"`

	// TerminalTagMap maps an editor terminal index to a session tag, as
	// reported by the editor extension.
	TerminalTagMap map[int]string `json:"terminal_tag_map"`

	// Terminals is the latest editor terminal snapshot.
	Terminals []protocol.TerminalInfo `json:"terminals"`

	// SelectedTerminalIndex is the editor's active terminal, -1 when none.
	SelectedTerminalIndex int `json:"selected_terminal_index"`

	// LastEndedState remembers the final state of the last session that was
	// removed, so a just-ended session keeps reporting truthfully until new
	// telemetry arrives. Empty means no session has ended yet.
	LastEndedState protocol.AgentState `json:"last_ended_state,omitempty"`

	// ActiveSession echoes the legacy auto-select rule (first session seen
	// wins until it ends). CurrentAgentState never consults it; it exists
	// only for the debug state endpoint.
	ActiveSession string `json:"active_session,omitempty"`

	// Per-transport liveness flags.
	LogiConnected   bool `json:"logi_connected"`
	VscodeConnected bool `json:"vscode_connected"`
}

// New returns a fresh state starting on the given page.
func New(initialPage int) *DaemonState {
	return &DaemonState{
		CurrentPage:           initialPage,
		HooksMode:             protocol.HooksAbsent,
		Sessions:              make(map[string]*SessionState),
		SessionTagMap:         make(map[string]string),
		TerminalTagMap:        make(map[int]string),
		SelectedTerminalIndex: -1,
	}
}

// EnsureSession returns the session for id, creating it in the unknown
// state if it is new. An empty id maps to DefaultSessionID.
func (s *DaemonState) EnsureSession(id string) (string, *SessionState) {
	if id == "" {
		id = DefaultSessionID
	}
	sess, ok := s.Sessions[id]
	if !ok {
		sess = &SessionState{AgentState: protocol.AgentUnknown, StartedAt: time.Now()}
		s.Sessions[id] = sess
	}
	return id, sess
}

// RemoveSession drops a session and latches its final state into
// LastEndedState. Tag mappings pointing at the session are removed. The
// armed prompt and dispatch memory are cleared as well: the operator's
// staged intent almost always concerned the session that just went away.
func (s *DaemonState) RemoveSession(id string) {
	sess, ok := s.Sessions[id]
	if !ok {
		return
	}
	s.LastEndedState = sess.AgentState
	delete(s.Sessions, id)

	for tag, sid := range s.SessionTagMap {
		if sid == id {
			delete(s.SessionTagMap, tag)
		}
	}

	s.ArmedPromptID = ""
	s.LastDispatchedID = ""

	if s.ActiveSession == id {
		s.ActiveSession = ""
		if len(s.Sessions) == 1 {
			for sid := range s.Sessions {
				s.ActiveSession = sid
			}
		}
	}
}

// LearnSessionTag records that a tag identifies a session. Later learnings
// overwrite earlier ones; tags follow whatever the hooks last reported.
func (s *DaemonState) LearnSessionTag(tag, sessionID string) {
	if tag == "" || sessionID == "" {
		return
	}
	s.SessionTagMap[tag] = sessionID
}

// ApplyTerminalsSnapshot replaces the terminal view with the editor's
// latest report and rebuilds the terminal-to-tag mapping from it.
func (s *DaemonState) ApplyTerminalsSnapshot(terminals []protocol.TerminalInfo, activeIndex int) {
	s.Terminals = terminals
	s.SelectedTerminalIndex = activeIndex
	s.TerminalTagMap = make(map[int]string)
	for _, t := range terminals {
		if t.SessionTag != "" {
			s.TerminalTagMap[t.Index] = t.SessionTag
		}
	}
}

// SelectedSessionID resolves the editor's active terminal to a session id
// through the terminal tag and session tag maps. Any missing hop returns
// false: a broken chain means the daemon does not know, and must say so.
func (s *DaemonState) SelectedSessionID() (string, bool) {
	if s.SelectedTerminalIndex < 0 {
		return "", false
	}
	tag, ok := s.TerminalTagMap[s.SelectedTerminalIndex]
	if !ok {
		return "", false
	}
	id, ok := s.SessionTagMap[tag]
	if !ok {
		return "", false
	}
	if _, ok := s.Sessions[id]; !ok {
		return "", false
	}
	return id, true
}

// CurrentAgentState computes the single agent state the daemon reports.
//
// With hooks absent there is no telemetry at all. With no live sessions the
// last ended state stands in, if one exists. With exactly one session its
// state is the answer. With several, the selected terminal disambiguates;
// when it cannot, the honest answer is unknown.
func (s *DaemonState) CurrentAgentState() protocol.AgentState {
	if s.HooksMode != protocol.HooksActive {
		return protocol.AgentUnknown
	}
	switch len(s.Sessions) {
	case 0:
		if s.LastEndedState != "" {
			return s.LastEndedState
		}
		return protocol.AgentUnknown
	case 1:
		for _, sess := range s.Sessions {
			return sess.AgentState
		}
	}
	if id, ok := s.SelectedSessionID(); ok {
		return s.Sessions[id].AgentState
	}
	return protocol.AgentUnknown
}
