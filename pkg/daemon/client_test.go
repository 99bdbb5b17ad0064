package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runbooktools/runbook/pkg/protocol"
)

func TestWebsocketURL(t *testing.T) {
	assert.Equal(t, "ws://127.0.0.1:29381/ws", WebsocketURL("http://127.0.0.1:29381"))
	assert.Equal(t, "wss://daemon.local/ws", WebsocketURL("https://daemon.local/"))
	assert.Equal(t, "ws://localhost:9999/ws", WebsocketURL("localhost:9999"))
	assert.Equal(t, "ws://localhost:9999/ws", WebsocketURL("ws://localhost:9999"))
}

func TestPostHookDeliversTaggedEvent(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/hook", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	err := PostHook(srv.URL, protocol.HookEvent{
		Hook:      protocol.HookUserPromptSubmit,
		SessionID: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "hook_event", received["type"])
	assert.Equal(t, protocol.HookUserPromptSubmit, received["hook"])
	assert.Equal(t, "s1", received["session_id"])
}

func TestPostHookFailsFastWhenDaemonIsDown(t *testing.T) {
	// Port 1 is never listening.
	err := PostHook("http://127.0.0.1:1", protocol.HookEvent{Hook: protocol.HookStop})
	assert.Error(t, err)
}
