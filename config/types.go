// Package config loads and validates the runbook configuration: the keypad
// page/slot layout, the named prompts and gates, and daemon settings.
//
// The daemon treats the loaded Config as immutable for the process
// lifetime; editing the file on disk only produces a restart-to-apply
// notice.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

//go:generate sh -c "cd .. && go run ./tools/schema-generator/"

// DefaultListen is the loopback address the daemon binds when the config
// omits daemon.listen.
const DefaultListen = "127.0.0.1:29381"

// SlotsPerPage is fixed by the 3x3 keypad hardware.
const SlotsPerPage = 9

// Config is the root of runbook.yml.
type Config struct {
	// Daemon holds transport settings for runbookd.
	Daemon DaemonConfig `yaml:"daemon,omitempty" toml:"daemon,omitempty" json:"daemon,omitempty"`

	// Keypad defines the pages shown on the device, each with exactly 9 slots.
	Keypad KeypadConfig `yaml:"keypad" toml:"keypad" json:"keypad"`

	// Prompts maps prompt id to its label and dispatch text.
	Prompts map[string]PromptConfig `yaml:"prompts,omitempty" toml:"prompts,omitempty" json:"prompts,omitempty"`

	// Gates maps gate id to an immediate navigation action. Gates bypass the
	// arm/dispatch cycle entirely.
	Gates map[string]GateConfig `yaml:"gates,omitempty" toml:"gates,omitempty" json:"gates,omitempty"`

	// PrimaryTooling selects which command text a prompt dispatches:
	// "claude" (default) prefers the assistant-native command, "generic"
	// uses the fallback text.
	PrimaryTooling string `yaml:"primary_tooling,omitempty" toml:"primary_tooling,omitempty" json:"primary_tooling,omitempty"`

	// Extensions carries tool-specific sections (e.g. "logging") that the
	// core does not interpret. Decode with UnmarshalExtension.
	Extensions map[string]interface{} `yaml:"extensions,omitempty" toml:"extensions,omitempty" json:"extensions,omitempty"`
}

// DaemonConfig holds transport settings.
type DaemonConfig struct {
	// Listen is the host:port the daemon binds. Loopback by default; the
	// daemon assumes a single trusted local operator.
	Listen string `yaml:"listen,omitempty" toml:"listen,omitempty" json:"listen,omitempty"`
}

// KeypadConfig defines the page stack.
type KeypadConfig struct {
	// InitialPage is the page index shown at startup.
	InitialPage int `yaml:"initial_page,omitempty" toml:"initial_page,omitempty" json:"initial_page,omitempty"`

	// Pages are user-defined. Each page has exactly 9 slots.
	Pages []KeypadPage `yaml:"pages" toml:"pages" json:"pages"`
}

// KeypadPage is one 3x3 layout.
type KeypadPage struct {
	Name  string       `yaml:"name" toml:"name" json:"name"`
	Slots []KeypadSlot `yaml:"slots" toml:"slots" json:"slots"`
}

// KeypadSlot binds a key to a prompt or a gate. An empty slot renders a
// placeholder. A slot must not reference both.
type KeypadSlot struct {
	PromptID string `yaml:"prompt_id,omitempty" toml:"prompt_id,omitempty" json:"prompt_id,omitempty"`
	Gate     string `yaml:"gate,omitempty" toml:"gate,omitempty" json:"gate,omitempty"`
}

// PromptConfig describes one armable prompt.
type PromptConfig struct {
	// Label is the key face text.
	Label string `yaml:"label" toml:"label" json:"label"`

	// Sublabel is an optional second line.
	Sublabel string `yaml:"sublabel,omitempty" toml:"sublabel,omitempty" json:"sublabel,omitempty"`

	// ClaudeCommand is the assistant-native command (e.g. "/runbook:prep-pr").
	ClaudeCommand string `yaml:"claude_command,omitempty" toml:"claude_command,omitempty" json:"claude_command,omitempty"`

	// FallbackText is plain prompt text for non-assistant tooling, and the
	// last resort when no native command exists.
	FallbackText string `yaml:"fallback_text,omitempty" toml:"fallback_text,omitempty" json:"fallback_text,omitempty"`

	// ArmStyle is "queue" (default) or "prefill"; presentation only.
	ArmStyle string `yaml:"arm_style,omitempty" toml:"arm_style,omitempty" json:"arm_style,omitempty"`
}

// GateConfig describes one navigation gate.
type GateConfig struct {
	Label    string `yaml:"label" toml:"label" json:"label"`
	Sublabel string `yaml:"sublabel,omitempty" toml:"sublabel,omitempty" json:"sublabel,omitempty"`

	// Action is the URI the editor opens when the gate fires.
	Action string `yaml:"action" toml:"action" json:"action"`
}

// IsClaudePrimary reports whether the assistant-native command path is
// primary. Unset defaults to claude.
func (c *Config) IsClaudePrimary() bool {
	return c.PrimaryTooling == "" || c.PrimaryTooling == "claude"
}

// ListenAddr returns daemon.listen with the default applied.
func (c *Config) ListenAddr() string {
	if c.Daemon.Listen != "" {
		return c.Daemon.Listen
	}
	return DefaultListen
}

// ArmStyleFor returns the arm style for a prompt id, defaulting to queue.
func (c *Config) ArmStyleFor(id string) string {
	if p, ok := c.Prompts[id]; ok && p.ArmStyle != "" {
		return p.ArmStyle
	}
	return "queue"
}

// EffectiveCommand resolves the text Enter would dispatch: the native
// command when the assistant is the primary tooling, the fallback text
// otherwise. Fallback is the last resort in both cases. Empty means the
// prompt has nothing to dispatch.
func (p PromptConfig) EffectiveCommand(claudePrimary bool) string {
	if claudePrimary && p.ClaudeCommand != "" {
		return p.ClaudeCommand
	}
	return p.FallbackText
}

// SetDefaults fills defaulted fields after loading.
func (c *Config) SetDefaults() {
	if c.Daemon.Listen == "" {
		c.Daemon.Listen = DefaultListen
	}
	if c.PrimaryTooling == "" {
		c.PrimaryTooling = "claude"
	}
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded runbook.yml into the provided target struct. The target must be a
// pointer. A missing key is not an error; the target stays zero-valued.
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
