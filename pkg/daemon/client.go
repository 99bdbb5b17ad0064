// Package daemon is the device-side client library: the websocket
// connection the monitor TUI and editor bridge use, the one-shot hook
// poster, and the config-file watcher the daemon runs.
package daemon

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/runbooktools/runbook/errors"
	"github.com/runbooktools/runbook/pkg/protocol"
	"github.com/runbooktools/runbook/version"
)

// HookPostTimeout bounds the one-shot hook notification. The poster's
// safety decision is already made; a slow daemon must not stall the hook.
const HookPostTimeout = 250 * time.Millisecond

// Client is one persistent device connection to the daemon.
type Client struct {
	conn *websocket.Conn
}

// WebsocketURL converts a daemon base URL or host:port into the /ws
// endpoint URL.
func WebsocketURL(base string) string {
	base = strings.TrimSuffix(base, "/")
	switch {
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://") + "/ws"
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://") + "/ws"
	case strings.HasPrefix(base, "ws://"), strings.HasPrefix(base, "wss://"):
		return base + "/ws"
	default:
		return "ws://" + base + "/ws"
	}
}

// Dial connects to the daemon, waits for its HelloAck, and introduces the
// client. The returned ack carries the daemon's protocol version.
func Dial(base string, kind protocol.ClientKind, capabilities []string) (*Client, *protocol.HelloAck, error) {
	url := WebsocketURL(base)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, nil, errors.TransportDial(url, err)
	}

	c := &Client{conn: conn}

	// The ack arrives unprompted before anything else.
	msg, err := c.Receive()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	if msg.Type != protocol.TypeHello || msg.HelloAck == nil {
		conn.Close()
		return nil, nil, errors.ProtocolError(fmt.Sprintf("expected hello ack, got %q", msg.Type), nil)
	}

	hello := protocol.Hello{
		Client:       kind,
		Protocol:     protocol.ProtocolVersion,
		Version:      version.Version,
		Capabilities: capabilities,
	}
	data, err := protocol.EncodeHello(hello)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := c.send(data); err != nil {
		conn.Close()
		return nil, nil, err
	}

	return c, msg.HelloAck, nil
}

func (c *Client) send(data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.Wrap(err, errors.ErrCodeTransportClosed, "failed to send message")
	}
	return nil
}

// Receive blocks for the next daemon message.
func (c *Client) Receive() (*protocol.DaemonMessage, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTransportClosed, "connection read failed")
	}
	return protocol.DecodeDaemonMessage(data)
}

// SendKeypadPress reports a slot press.
func (c *Client) SendKeypadPress(promptID string) error {
	data, err := protocol.EncodeKeypadPress(protocol.KeypadPress{PromptID: promptID})
	if err != nil {
		return err
	}
	return c.send(data)
}

// SendDialpadButton reports a dialpad button press.
func (c *Client) SendDialpadButton(button protocol.DialpadButton) error {
	data, err := protocol.EncodeDialpadButtonPress(protocol.DialpadButtonPress{Button: button})
	if err != nil {
		return err
	}
	return c.send(data)
}

// SendAdjustment reports a dial or roller movement.
func (c *Client) SendAdjustment(kind protocol.AdjustmentKind, delta int) error {
	data, err := protocol.EncodeAdjustment(protocol.Adjustment{Kind: kind, Delta: delta})
	if err != nil {
		return err
	}
	return c.send(data)
}

// SendPageNav requests a page change.
func (c *Client) SendPageNav(direction protocol.PageDirection) error {
	data, err := protocol.EncodePageNav(protocol.PageNav{Direction: direction})
	if err != nil {
		return err
	}
	return c.send(data)
}

// SendTerminalsSnapshot reports the editor's terminal inventory.
func (c *Client) SendTerminalsSnapshot(snap protocol.TerminalsSnapshot) error {
	data, err := protocol.EncodeTerminalsSnapshot(snap)
	if err != nil {
		return err
	}
	return c.send(data)
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// PostHook delivers one HookEvent to the daemon's one-shot ingress. The
// call is best-effort: the caller usually ignores the returned error.
func PostHook(base string, ev protocol.HookEvent) error {
	body, err := protocol.EncodeHookEvent(ev)
	if err != nil {
		return err
	}

	url := strings.TrimSuffix(base, "/") + "/hook"
	client := &http.Client{Timeout: HookPostTimeout}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
