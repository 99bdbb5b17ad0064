// Package monitor is a virtual keypad for developing against the daemon
// without hardware. It connects as a logi client, mirrors the broadcast
// render model, and maps keyboard input to keypad events.
package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runbooktools/runbook/pkg/daemon"
	"github.com/runbooktools/runbook/pkg/protocol"
	"github.com/runbooktools/runbook/tui"
	"github.com/runbooktools/runbook/tui/theme"
)

const maxNotices = 5

type keyMap struct {
	Slots    key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Enter    key.Binding
	Esc      key.Binding
	Export   key.Binding
	CtrlC    key.Binding
	DialUp   key.Binding
	DialDown key.Binding
	Roller   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Slots:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "press slot")),
	PrevPage: key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev page")),
	NextPage: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next page")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "dispatch")),
	Esc:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
	CtrlC:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "ctrl-c")),
	DialUp:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "scroll")),
	DialDown: key.NewBinding(key.WithKeys("down")),
	Roller:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "focus terminal")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type renderMsg protocol.RenderModel

type noticeMsg string

type disconnectMsg struct{ err error }

type model struct {
	client  *daemon.Client
	render  *protocol.RenderModel
	notices []string
	err     error
	width   int
}

// Run connects to the daemon at base and runs the monitor until quit.
func Run(base string) error {
	tui.InitializeTUI()

	client, ack, err := daemon.Dial(base, protocol.ClientLogi, []string{"render", "notices"})
	if err != nil {
		return err
	}
	defer client.Close()

	m := model{
		client:  client,
		notices: []string{fmt.Sprintf("connected (daemon %s)", ack.DaemonVersion)},
	}
	p := tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		for {
			msg, err := client.Receive()
			if err != nil {
				p.Send(disconnectMsg{err: err})
				return
			}
			switch msg.Type {
			case protocol.TypeRender:
				p.Send(renderMsg(*msg.Render))
			case protocol.TypeNotice:
				p.Send(noticeMsg(msg.Notice.Message))
			}
		}
	}()

	_, err = p.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case renderMsg:
		r := protocol.RenderModel(msg)
		m.render = &r
		return m, nil

	case noticeMsg:
		m.notices = append(m.notices, string(msg))
		if len(m.notices) > maxNotices {
			m.notices = m.notices[len(m.notices)-maxNotices:]
		}
		return m, nil

	case disconnectMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Slots):
			m.pressSlot(int(msg.String()[0] - '1'))
		case key.Matches(msg, keys.PrevPage):
			_ = m.client.SendPageNav(protocol.PagePrev)
		case key.Matches(msg, keys.NextPage):
			_ = m.client.SendPageNav(protocol.PageNext)
		case key.Matches(msg, keys.Enter):
			_ = m.client.SendDialpadButton(protocol.ButtonEnter)
		case key.Matches(msg, keys.Esc):
			_ = m.client.SendDialpadButton(protocol.ButtonEsc)
		case key.Matches(msg, keys.Export):
			_ = m.client.SendDialpadButton(protocol.ButtonExport)
		case key.Matches(msg, keys.CtrlC):
			_ = m.client.SendDialpadButton(protocol.ButtonCtrlC)
		case key.Matches(msg, keys.DialUp):
			_ = m.client.SendAdjustment(protocol.AdjustDial, 1)
		case key.Matches(msg, keys.DialDown):
			_ = m.client.SendAdjustment(protocol.AdjustDial, -1)
		case key.Matches(msg, keys.Roller):
			delta := 1
			if msg.String() == "shift+tab" {
				delta = -1
			}
			_ = m.client.SendAdjustment(protocol.AdjustRoller, delta)
		}
	}
	return m, nil
}

// pressSlot sends the prompt id bound to a 0-based slot index on the
// current render. Empty slots are not sent; the hardware can't press them
// either.
func (m model) pressSlot(idx int) {
	if m.render == nil || idx < 0 || idx >= len(m.render.Keypad.Slots) {
		return
	}
	slot := m.render.Keypad.Slots[idx]
	if slot.PromptID == protocol.EmptySlotID {
		return
	}
	_ = m.client.SendKeypadPress(slot.PromptID)
}

func (m model) View() string {
	t := theme.DefaultTheme

	if m.render == nil {
		return "\n " + t.Muted.Render("Waiting for the daemon's first render...") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n " + t.Title.Render("RUNBOOK MONITOR") + "\n\n")

	b.WriteString(fmt.Sprintf(" Agent: %s   Page: %d/%d   Hooks: %s\n\n",
		agentStateStyle(t, m.render.AgentState).Render(string(m.render.AgentState)),
		m.render.PageIndex+1, m.render.PageCount,
		t.Muted.Render(string(m.render.HooksMode)),
	))

	b.WriteString(m.viewKeypad(t))

	if m.render.Armed != nil {
		armed := fmt.Sprintf("Armed: %s (%s) → %s",
			m.render.Armed.Label, m.render.Armed.Style, m.render.Armed.Command)
		b.WriteString("\n " + t.Warning.Render(armed) + "\n")
	}

	if len(m.notices) > 0 {
		b.WriteString("\n")
		for _, n := range m.notices {
			b.WriteString(" " + t.Muted.Render("• "+n) + "\n")
		}
	}

	b.WriteString("\n " + t.Muted.Render("1-9 press · ←/→ page · enter/esc dispatch/cancel · e export · c ctrl-c · ↑/↓ scroll · tab focus · q quit") + "\n")
	return b.String()
}

// viewKeypad renders the 3x3 grid of LCD keys.
func (m model) viewKeypad(t *theme.Theme) string {
	if len(m.render.Keypad.Slots) < 9 {
		return ""
	}
	cell := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(14).
		Height(2).
		Align(lipgloss.Center)
	armedCell := cell.Copy().BorderForeground(t.Colors.Orange)

	var rows []string
	for r := 0; r < 3; r++ {
		var cells []string
		for c := 0; c < 3; c++ {
			slot := m.render.Keypad.Slots[r*3+c]
			label := slot.Label
			if slot.Sublabel != "" {
				label += "\n" + slot.Sublabel
			}
			style := cell
			if slot.Armed {
				style = armedCell
			}
			if slot.PromptID == protocol.EmptySlotID {
				label = t.Muted.Render(slot.Label)
			}
			cells = append(cells, style.Render(label))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func agentStateStyle(t *theme.Theme, state protocol.AgentState) lipgloss.Style {
	switch state {
	case protocol.AgentRunning:
		return t.Info
	case protocol.AgentIdle, protocol.AgentComplete:
		return t.Success
	case protocol.AgentWaitingPermission, protocol.AgentWaitingInput:
		return t.Warning
	case protocol.AgentBlocked:
		return t.Error
	default:
		return t.Muted
	}
}
