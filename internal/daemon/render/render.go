// Package render derives the client-facing snapshot from daemon state and
// config. The projection is pure and total: dangling references and drifted
// indices degrade to placeholders instead of failing, because a keypad with
// a "???" key is more useful than a daemon that stopped broadcasting.
package render

import (
	"github.com/runbooktools/runbook/config"
	"github.com/runbooktools/runbook/internal/daemon/state"
	"github.com/runbooktools/runbook/pkg/protocol"
)

// BuildRenderModel computes the RenderModel for the current state.
func BuildRenderModel(s *state.DaemonState, cfg *config.Config) protocol.RenderModel {
	pageCount := len(cfg.Keypad.Pages)
	pageIndex := clamp(s.CurrentPage, 0, pageCount-1)

	model := protocol.RenderModel{
		AgentState: s.CurrentAgentState(),
		PageIndex:  pageIndex,
		PageCount:  pageCount,
		HooksMode:  s.HooksMode,
		Keypad:     protocol.KeypadRender{Slots: make([]protocol.KeypadSlotRender, 0, config.SlotsPerPage)},
	}

	if pageCount > 0 {
		page := cfg.Keypad.Pages[pageIndex]
		for i, slot := range page.Slots {
			model.Keypad.Slots = append(model.Keypad.Slots, renderSlot(s, cfg, i, slot))
		}
	}

	if s.ArmedPromptID != "" {
		if prompt, ok := cfg.Prompts[s.ArmedPromptID]; ok {
			model.Armed = &protocol.ArmedPrompt{
				PromptID: s.ArmedPromptID,
				Label:    prompt.Label,
				Style:    protocol.ArmStyle(cfg.ArmStyleFor(s.ArmedPromptID)),
				Command:  prompt.EffectiveCommand(cfg.IsClaudePrimary()),
			}
		}
	}

	return model
}

func renderSlot(s *state.DaemonState, cfg *config.Config, index int, slot config.KeypadSlot) protocol.KeypadSlotRender {
	out := protocol.KeypadSlotRender{Slot: index}

	switch {
	case slot.PromptID != "":
		out.PromptID = slot.PromptID
		out.Armed = slot.PromptID == s.ArmedPromptID
		if prompt, ok := cfg.Prompts[slot.PromptID]; ok {
			out.Label = prompt.Label
			out.Sublabel = prompt.Sublabel
		} else {
			out.Label = protocol.UnresolvedLabel
		}

	case slot.Gate != "":
		out.PromptID = slot.Gate
		if gate, ok := cfg.Gates[slot.Gate]; ok {
			out.Label = gate.Label
			out.Sublabel = gate.Sublabel
		} else {
			out.Label = protocol.UnresolvedLabel
		}

	default:
		out.PromptID = protocol.EmptySlotID
		out.Label = protocol.EmptySlotLabel
	}

	return out
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
