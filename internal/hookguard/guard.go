// Package hookguard makes the allow/deny decision for assistant tool
// calls. The matching is deliberately dumb text matching: lowercase
// substrings plus optional glob patterns, no shell parsing. The decision is
// made entirely locally; the daemon only hears about it afterwards.
package hookguard

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/moby/patternmatcher"
)

// BuiltinDenySubstrings is the conservative default deny list. Entries
// starting with "^" anchor to the start of the command; everything else is
// a plain substring test.
var BuiltinDenySubstrings = []string{
	"rm -rf",
	" rm -r ",
	"^rm ",
	"mkfs",
	"dd if=",
	"shutdown",
	"reboot",
	"sudo ",
	"git push",
	"git reset --hard",
}

// Guard tests commands against the built-in deny list unioned with
// caller-supplied substrings and glob patterns.
type Guard struct {
	substrings []string
	patterns   *patternmatcher.PatternMatcher
}

// New builds a guard. Extra substrings are unioned with the builtins;
// globPatterns use the patternmatcher syntax and match the whole command.
func New(extraSubstrings, globPatterns []string) (*Guard, error) {
	subs := make([]string, 0, len(BuiltinDenySubstrings)+len(extraSubstrings))
	for _, s := range append(append([]string{}, BuiltinDenySubstrings...), extraSubstrings...) {
		if s != "" {
			subs = append(subs, strings.ToLower(s))
		}
	}

	g := &Guard{substrings: subs}
	if len(globPatterns) > 0 {
		lowered := make([]string, 0, len(globPatterns))
		for _, p := range globPatterns {
			lowered = append(lowered, strings.ToLower(p))
		}
		pm, err := patternmatcher.New(lowered)
		if err != nil {
			return nil, fmt.Errorf("invalid deny pattern: %w", err)
		}
		g.patterns = pm
	}
	return g, nil
}

// Check reports whether the command matches the deny list, returning the
// rule that matched. The test is case-insensitive.
func (g *Guard) Check(command string) (string, bool) {
	c := strings.ToLower(command)
	for _, sub := range g.substrings {
		if anchored, ok := strings.CutPrefix(sub, "^"); ok {
			if strings.HasPrefix(c, anchored) {
				return sub, true
			}
			continue
		}
		if strings.Contains(c, sub) {
			return sub, true
		}
	}
	if g.patterns != nil {
		if matched, err := g.patterns.MatchesOrParentMatches(c); err == nil && matched {
			return "pattern", true
		}
	}
	return "", false
}

// ExtractBashCommand pulls tool_input.command out of a PreToolUse payload.
// The payload is otherwise treated as opaque; extraction is best-effort.
func ExtractBashCommand(payload json.RawMessage) (string, bool) {
	if len(payload) == 0 {
		return "", false
	}
	var doc struct {
		ToolInput struct {
			Command string `json:"command"`
		} `json:"tool_input"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return "", false
	}
	if doc.ToolInput.Command == "" {
		return "", false
	}
	return doc.ToolInput.Command, true
}

// ExtractToolName pulls tool_name out of a tool hook payload, best-effort.
func ExtractToolName(payload json.RawMessage) string {
	if len(payload) == 0 {
		return ""
	}
	var doc struct {
		ToolName string `json:"tool_name"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return ""
	}
	return doc.ToolName
}

// ExtractSessionID pulls session_id out of a hook payload, best-effort.
func ExtractSessionID(payload json.RawMessage) string {
	if len(payload) == 0 {
		return ""
	}
	var doc struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return ""
	}
	return doc.SessionID
}

type permissionOutput struct {
	PermissionDecision string `json:"permissionDecision,omitempty"`
	DenyReason         string `json:"denyReason,omitempty"`
	AdditionalContext  string `json:"additionalContext,omitempty"`
}

type hookOutput struct {
	Decision           string           `json:"decision,omitempty"`
	Reason             string           `json:"reason,omitempty"`
	HookSpecificOutput permissionOutput `json:"hookSpecificOutput"`
}

// BlockDecision renders the stdout JSON that denies a tool call. The
// assistant honors {"decision":"block"}; permissionDecision is included
// for forward compatibility.
func BlockDecision(command string) []byte {
	reason := fmt.Sprintf("Blocked destructive Bash command: %s", command)
	out, _ := json.Marshal(hookOutput{
		Decision: "block",
		Reason:   reason,
		HookSpecificOutput: permissionOutput{
			PermissionDecision: "deny",
			DenyReason:         reason,
		},
	})
	return out
}

// PromptContext renders the UserPromptSubmit stdout JSON that injects the
// current git branch as additional context.
func PromptContext(branch string) []byte {
	out, _ := json.Marshal(hookOutput{
		HookSpecificOutput: permissionOutput{
			AdditionalContext: fmt.Sprintf("Runbook context: git_branch=%s", branch),
		},
	})
	return out
}

// GitBranch returns the current branch name, or "(unknown)" when the
// working directory is not a repository.
func GitBranch() string {
	out, err := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD").Output()
	if err != nil {
		return "(unknown)"
	}
	branch := strings.TrimSpace(string(out))
	if branch == "" {
		return "(unknown)"
	}
	return branch
}
