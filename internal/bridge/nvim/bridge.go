// Package nvim is the editor-side executor for Neovim. It connects to the
// daemon as a vscode-class client, applies editor commands to a running
// nvim instance over msgpack-rpc, and reports the terminal inventory so
// the daemon can correlate terminals with assistant sessions.
package nvim

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/neovim/go-client/nvim"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/runbooktools/runbook/errors"
	"github.com/runbooktools/runbook/logging"
	"github.com/runbooktools/runbook/pkg/daemon"
	"github.com/runbooktools/runbook/pkg/protocol"
)

// snapshotInterval is how often the terminal inventory is re-reported.
const snapshotInterval = 2 * time.Second

// tagVariable is the buffer variable operators set to tag a terminal with
// an assistant session tag (:let b:runbook_tag = "...").
const tagVariable = "runbook_tag"

// Bridge connects one running nvim instance to the daemon.
type Bridge struct {
	v      *nvim.Nvim
	client *daemon.Client
	logger *logrus.Entry
}

// terminal describes one nvim terminal buffer.
type terminal struct {
	buffer nvim.Buffer
	name   string
	tag    string
	jobID  int
}

// Run attaches to nvim at addr (or $NVIM when empty), connects to the
// daemon at base, and services commands until the context is cancelled or
// either connection drops.
func Run(ctx context.Context, base, addr string) error {
	logger := logging.NewLogger("nvim-bridge")

	if addr == "" {
		addr = os.Getenv("NVIM")
	}
	if addr == "" {
		return errors.New(errors.ErrCodeBridgeAttach, "no nvim address: set --addr or run inside :terminal ($NVIM)")
	}

	v, err := nvim.Dial(addr)
	if err != nil {
		return errors.BridgeAttach(addr, err)
	}
	defer v.Close()

	client, ack, err := daemon.Dial(base, protocol.ClientVscode, []string{
		"send_text", "focus_terminal", "scroll_terminal", "open_uri", "terminals",
	})
	if err != nil {
		return err
	}
	defer client.Close()

	logger.WithField("nvim", addr).WithField("daemon", ack.DaemonVersion).Info("Bridge attached")

	b := &Bridge{v: v, client: client, logger: logger}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return b.commandLoop(ctx)
	})
	g.Go(func() error {
		return b.snapshotLoop(ctx)
	})

	return g.Wait()
}

// commandLoop receives daemon messages and executes editor commands.
func (b *Bridge) commandLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg, err := b.client.Receive()
		if err != nil {
			return err
		}
		if msg.Type != protocol.TypeVscodeCommand {
			continue
		}
		if err := b.execute(msg.VscodeCommand); err != nil {
			// Command failures are logged, never fatal; the daemon treats
			// delivery as best-effort.
			b.logger.WithError(err).Warnf("Failed to execute %s", msg.VscodeCommand.Kind)
		}
	}
}

// snapshotLoop reports the terminal inventory immediately and on a timer.
func (b *Bridge) snapshotLoop(ctx context.Context) error {
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		if err := b.reportSnapshot(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (b *Bridge) execute(cmd *protocol.VscodeCommand) error {
	switch cmd.Kind {
	case protocol.CmdSendText:
		p, err := cmd.DecodeSendText()
		if err != nil {
			return err
		}
		return b.sendText(p)
	case protocol.CmdFocusTerminal:
		p, err := cmd.DecodeFocusTerminal()
		if err != nil {
			return err
		}
		return b.focusTerminal(p.Direction)
	case protocol.CmdScrollTerminal:
		p, err := cmd.DecodeScrollTerminal()
		if err != nil {
			return err
		}
		return b.scrollTerminal(p.Delta)
	case protocol.CmdOpenURI:
		p, err := cmd.DecodeOpenURI()
		if err != nil {
			return err
		}
		return b.openURI(p.URI)
	default:
		b.logger.Debugf("Ignoring unknown command kind %q", cmd.Kind)
		return nil
	}
}

// sendText writes into the target terminal's job channel.
func (b *Bridge) sendText(p protocol.SendTextPayload) error {
	term, err := b.targetTerminal()
	if err != nil {
		return err
	}
	text := p.Text
	if p.AddNewline {
		text += "\n"
	}
	return b.v.Call("chansend", nil, term.jobID, text)
}

// focusTerminal cycles focus through the terminal buffers.
func (b *Bridge) focusTerminal(direction int) error {
	terms, err := b.terminals()
	if err != nil {
		return err
	}
	if len(terms) == 0 {
		return fmt.Errorf("no terminal buffers")
	}

	current, err := b.v.CurrentBuffer()
	if err != nil {
		return err
	}

	idx := 0
	for i, t := range terms {
		if t.buffer == current {
			idx = i
			break
		}
	}

	next := ((idx+direction)%len(terms) + len(terms)) % len(terms)
	return b.v.SetCurrentBuffer(terms[next].buffer)
}

// scrollTerminal scrolls the target terminal's window by delta lines.
// Positive deltas scroll down.
func (b *Bridge) scrollTerminal(delta int) error {
	if delta == 0 {
		return nil
	}
	keys := `\<C-e>`
	if delta < 0 {
		keys = `\<C-y>`
		delta = -delta
	}
	return b.v.Command(fmt.Sprintf(`execute "normal! %d%s"`, delta, keys))
}

// openURI hands the URI to nvim's opener (browser, xdg-open, etc).
func (b *Bridge) openURI(uri string) error {
	return b.v.ExecLua("vim.ui.open(...)", nil, uri)
}

// targetTerminal picks the terminal a text command applies to: the current
// buffer when it is a terminal, otherwise the first terminal buffer.
func (b *Bridge) targetTerminal() (terminal, error) {
	terms, err := b.terminals()
	if err != nil {
		return terminal{}, err
	}
	if len(terms) == 0 {
		return terminal{}, fmt.Errorf("no terminal buffers")
	}

	if current, err := b.v.CurrentBuffer(); err == nil {
		for _, t := range terms {
			if t.buffer == current {
				return t, nil
			}
		}
	}
	return terms[0], nil
}

// terminals lists the terminal buffers in buffer order.
func (b *Bridge) terminals() ([]terminal, error) {
	buffers, err := b.v.Buffers()
	if err != nil {
		return nil, err
	}

	var terms []terminal
	for _, buf := range buffers {
		var buftype string
		if err := b.v.BufferOption(buf, "buftype", &buftype); err != nil || buftype != "terminal" {
			continue
		}

		t := terminal{buffer: buf}
		if name, err := b.v.BufferName(buf); err == nil {
			t.name = name
		}
		// Both variables are optional; a terminal without a job id can't
		// receive text but still appears in the snapshot.
		_ = b.v.BufferVar(buf, "terminal_job_id", &t.jobID)
		_ = b.v.BufferVar(buf, tagVariable, &t.tag)
		terms = append(terms, t)
	}
	return terms, nil
}

// reportSnapshot sends the current terminal inventory to the daemon.
func (b *Bridge) reportSnapshot() error {
	terms, err := b.terminals()
	if err != nil {
		return err
	}

	snap := protocol.TerminalsSnapshot{ActiveIndex: -1}
	current, _ := b.v.CurrentBuffer()
	for i, t := range terms {
		snap.Terminals = append(snap.Terminals, protocol.TerminalInfo{
			Index:      i,
			Name:       t.name,
			SessionTag: t.tag,
		})
		if t.buffer == current {
			snap.ActiveIndex = i
		}
	}
	return b.client.SendTerminalsSnapshot(snap)
}
