package hub

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/runbooktools/runbook/config"
	"github.com/runbooktools/runbook/internal/daemon/reducer"
	"github.com/runbooktools/runbook/pkg/protocol"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func testConfig() *config.Config {
	slots := make([]config.KeypadSlot, config.SlotsPerPage)
	slots[0] = config.KeypadSlot{PromptID: "prep_pr"}
	slots[1] = config.KeypadSlot{Gate: "pr"}
	cfg := &config.Config{
		Keypad: config.KeypadConfig{Pages: []config.KeypadPage{{Name: "core", Slots: slots}}},
		Prompts: map[string]config.PromptConfig{
			"prep_pr": {Label: "PREP PR", ClaudeCommand: "/runbook:prep-pr"},
		},
		Gates: map[string]config.GateConfig{
			"pr": {Label: "PR", Action: "https://example.com/pr"},
		},
	}
	cfg.SetDefaults()
	return cfg
}

func recvDaemonMessage(t *testing.T, ch chan []byte) *protocol.DaemonMessage {
	t.Helper()
	select {
	case data := <-ch:
		msg, err := protocol.DecodeDaemonMessage(data)
		require.NoError(t, err)
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
		return nil
	}
}

func TestApplyEventPublishesRender(t *testing.T) {
	h := New(testConfig(), testLogger())
	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	h.ApplyEvent(reducer.KeypadPress{PromptID: "prep_pr"})

	msg := recvDaemonMessage(t, sub)
	require.Equal(t, protocol.TypeRender, msg.Type)
	require.NotNil(t, msg.Render.Armed)
	assert.Equal(t, "prep_pr", msg.Render.Armed.PromptID)
}

func TestGatePressDispatchesImmediately(t *testing.T) {
	h := New(testConfig(), testLogger())
	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	h.HandleKeypadPress("pr")

	msg := recvDaemonMessage(t, sub)
	require.Equal(t, protocol.TypeVscodeCommand, msg.Type)
	p, err := msg.VscodeCommand.DecodeOpenURI()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/pr", p.URI)

	// A gate press never arms.
	assert.Nil(t, h.RenderModel().Armed)
}

func TestDispatchPublishesCommandThenRender(t *testing.T) {
	h := New(testConfig(), testLogger())
	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	h.ApplyEvent(reducer.KeypadPress{PromptID: "prep_pr"})
	recvDaemonMessage(t, sub) // arm render

	h.ApplyEvent(reducer.DialpadButton{Button: protocol.ButtonEnter})

	cmd := recvDaemonMessage(t, sub)
	require.Equal(t, protocol.TypeVscodeCommand, cmd.Type)
	p, err := cmd.VscodeCommand.DecodeSendText()
	require.NoError(t, err)
	assert.Equal(t, "/runbook:prep-pr", p.Text)
	assert.True(t, p.AddNewline)

	rendered := recvDaemonMessage(t, sub)
	require.Equal(t, protocol.TypeRender, rendered.Type)
	assert.Nil(t, rendered.Render.Armed)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := New(testConfig(), testLogger())
	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	for i := 0; i < subscriberBuffer+10; i++ {
		h.BroadcastRender()
	}

	assert.Greater(t, testutil.ToFloat64(h.Metrics().DroppedMessages), 0.0)
	assert.Len(t, sub, subscriberBuffer)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := New(testConfig(), testLogger())
	sub := h.Subscribe()
	h.Unsubscribe(sub)

	_, open := <-sub
	assert.False(t, open)

	// Double unsubscribe is harmless.
	h.Unsubscribe(sub)
}

func dialTestServer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn
}

func readWire(t *testing.T, conn *websocket.Conn) *protocol.DaemonMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	msg, err := protocol.DecodeDaemonMessage(data)
	require.NoError(t, err)
	return msg
}

func readUntil(t *testing.T, conn *websocket.Conn, msgType string) *protocol.DaemonMessage {
	t.Helper()
	for i := 0; i < 20; i++ {
		msg := readWire(t, conn)
		if msg.Type == msgType {
			return msg
		}
	}
	t.Fatalf("never received a %s message", msgType)
	return nil
}

func TestWebsocketHandshakeAndHello(t *testing.T) {
	h := New(testConfig(), testLogger())
	server := NewServer(h, testLogger())
	srv := httptest.NewServer(server.Routes())
	defer srv.Close()

	conn := dialTestServer(t, srv)
	defer conn.Close()

	// HelloAck arrives unprompted.
	ack := readWire(t, conn)
	require.Equal(t, protocol.TypeHello, ack.Type)
	assert.Equal(t, protocol.ProtocolVersion, ack.HelloAck.Protocol)

	hello, err := protocol.EncodeHello(protocol.Hello{
		Client: protocol.ClientLogi, Protocol: protocol.ProtocolVersion, Version: "test",
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, hello))

	// Hello produces a render (logi now connected) and a notice.
	readUntil(t, conn, protocol.TypeRender)
	notice := readUntil(t, conn, protocol.TypeNotice)
	assert.Contains(t, notice.Notice.Message, "logi")
}

func TestWebsocketKeypadPressRoundTrip(t *testing.T) {
	h := New(testConfig(), testLogger())
	server := NewServer(h, testLogger())
	srv := httptest.NewServer(server.Routes())
	defer srv.Close()

	conn := dialTestServer(t, srv)
	defer conn.Close()
	readWire(t, conn) // ack

	press, err := protocol.EncodeKeypadPress(protocol.KeypadPress{PromptID: "prep_pr"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, press))

	msg := readUntil(t, conn, protocol.TypeRender)
	require.NotNil(t, msg.Render.Armed)
	assert.Equal(t, "prep_pr", msg.Render.Armed.PromptID)
}

func TestWebsocketMalformedMessageKeepsConnection(t *testing.T) {
	h := New(testConfig(), testLogger())
	server := NewServer(h, testLogger())
	srv := httptest.NewServer(server.Routes())
	defer srv.Close()

	conn := dialTestServer(t, srv)
	defer conn.Close()
	readWire(t, conn) // ack

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"warp_drive"}`)))

	press, err := protocol.EncodeDialpadButtonPress(protocol.DialpadButtonPress{Button: protocol.ButtonCtrlC})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, press))

	msg := readUntil(t, conn, protocol.TypeVscodeCommand)
	p, err := msg.VscodeCommand.DecodeSendText()
	require.NoError(t, err)
	assert.Equal(t, "\x03", p.Text)
}

func TestHookIngressAcknowledgesUnconditionally(t *testing.T) {
	h := New(testConfig(), testLogger())
	server := NewServer(h, testLogger())
	srv := httptest.NewServer(server.Routes())
	defer srv.Close()

	post := func(body string) string {
		resp, err := http.Post(srv.URL+"/hook", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		return string(data)
	}

	// Garbage is still acknowledged; the hook path is never gated.
	assert.Equal(t, "ok", post("{broken"))
	assert.Equal(t, "ok", post(`{"hook":"SessionStart","session_id":"s1"}`))

	model := h.RenderModel()
	assert.Equal(t, protocol.HooksActive, model.HooksMode)
	assert.Equal(t, protocol.AgentIdle, model.AgentState)
}

func TestDebugEndpoints(t *testing.T) {
	h := New(testConfig(), testLogger())
	server := NewServer(h, testLogger())
	srv := httptest.NewServer(server.Routes())
	defer srv.Close()

	for _, path := range []string{"/health", "/api/state", "/api/render", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err, path)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
