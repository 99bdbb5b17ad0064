package config

import (
	"fmt"
	"net"

	"github.com/runbooktools/runbook/errors"
)

// Validate checks the structural invariants the daemon depends on. A
// failure here is fatal at startup; the daemon must not begin serving
// with dangling references or a malformed page stack.
func (c *Config) Validate() error {
	if len(c.Keypad.Pages) == 0 {
		return errors.New(errors.ErrCodeConfigValidation, "keypad.pages must have at least 1 page")
	}

	if c.Keypad.InitialPage < 0 || c.Keypad.InitialPage >= len(c.Keypad.Pages) {
		return errors.New(errors.ErrCodeConfigValidation,
			fmt.Sprintf("keypad.initial_page %d out of range (have %d pages)", c.Keypad.InitialPage, len(c.Keypad.Pages)))
	}

	seenNames := make(map[string]bool)
	for pi, page := range c.Keypad.Pages {
		if page.Name == "" {
			return errors.New(errors.ErrCodeConfigValidation,
				fmt.Sprintf("keypad.pages[%d] must have a name", pi))
		}
		if seenNames[page.Name] {
			return errors.New(errors.ErrCodeConfigValidation,
				fmt.Sprintf("duplicate page name '%s'", page.Name)).
				WithDetail("page", page.Name)
		}
		seenNames[page.Name] = true

		if len(page.Slots) != SlotsPerPage {
			return errors.New(errors.ErrCodeConfigValidation,
				fmt.Sprintf("keypad.pages[%d] '%s' must have exactly %d slots (3x3 keypad), got %d",
					pi, page.Name, SlotsPerPage, len(page.Slots))).
				WithDetail("page", page.Name).
				WithDetail("slots", len(page.Slots))
		}

		for si, slot := range page.Slots {
			if err := c.validateSlot(pi, si, slot); err != nil {
				return err
			}
		}
	}

	for id, prompt := range c.Prompts {
		if prompt.Label == "" {
			return errors.New(errors.ErrCodeConfigValidation,
				fmt.Sprintf("prompt '%s' must have a label", id)).
				WithDetail("prompt", id)
		}
		switch prompt.ArmStyle {
		case "", "queue", "prefill":
		default:
			return errors.New(errors.ErrCodeConfigValidation,
				fmt.Sprintf("prompt '%s' has invalid arm_style '%s' (expected queue or prefill)", id, prompt.ArmStyle)).
				WithDetail("prompt", id)
		}
	}

	for id, gate := range c.Gates {
		if gate.Label == "" {
			return errors.New(errors.ErrCodeConfigValidation,
				fmt.Sprintf("gate '%s' must have a label", id)).
				WithDetail("gate", id)
		}
		if gate.Action == "" {
			return errors.New(errors.ErrCodeConfigValidation,
				fmt.Sprintf("gate '%s' must have an action", id)).
				WithDetail("gate", id)
		}
	}

	if _, _, err := net.SplitHostPort(c.ListenAddr()); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation,
			fmt.Sprintf("invalid daemon.listen address '%s'", c.ListenAddr()))
	}

	return nil
}

func (c *Config) validateSlot(pi, si int, slot KeypadSlot) error {
	if slot.PromptID != "" && slot.Gate != "" {
		return errors.New(errors.ErrCodeConfigValidation,
			fmt.Sprintf("keypad.pages[%d].slots[%d] references both a prompt and a gate", pi, si))
	}
	if slot.PromptID != "" {
		if _, ok := c.Prompts[slot.PromptID]; !ok {
			return errors.New(errors.ErrCodeConfigValidation,
				fmt.Sprintf("keypad.pages[%d].slots[%d] references unknown prompt '%s'", pi, si, slot.PromptID)).
				WithDetail("prompt", slot.PromptID)
		}
	}
	if slot.Gate != "" {
		if _, ok := c.Gates[slot.Gate]; !ok {
			return errors.New(errors.ErrCodeConfigValidation,
				fmt.Sprintf("keypad.pages[%d].slots[%d] references unknown gate '%s'", pi, si, slot.Gate)).
				WithDetail("gate", slot.Gate)
		}
	}
	return nil
}
