// Package hub owns the daemon's single state instance and fans derived
// snapshots out to every connected device. Events from both ingress paths
// (the per-device websocket and the one-shot hook POST) funnel through
// ApplyEvent; the reducer runs under the state lock, side effects execute
// after it is released.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/runbooktools/runbook/config"
	"github.com/runbooktools/runbook/internal/daemon/reducer"
	"github.com/runbooktools/runbook/internal/daemon/render"
	"github.com/runbooktools/runbook/internal/daemon/state"
	"github.com/runbooktools/runbook/pkg/protocol"
)

// subscriberBuffer bounds each subscriber's backlog. A device that falls
// further behind misses intermediate snapshots; render messages supersede
// each other, so dropping is safe.
const subscriberBuffer = 256

// Hub coordinates state, reduction, and fan-out.
type Hub struct {
	cfg     *config.Config
	logger  *logrus.Entry
	metrics *Metrics

	mu    sync.Mutex
	state *state.DaemonState

	subMu       sync.Mutex
	subscribers map[chan []byte]struct{}
}

// New creates a hub starting on the configured initial page.
func New(cfg *config.Config, logger *logrus.Entry) *Hub {
	return &Hub{
		cfg:         cfg,
		logger:      logger,
		metrics:     NewMetrics(),
		state:       state.New(cfg.Keypad.InitialPage),
		subscribers: make(map[chan []byte]struct{}),
	}
}

// Metrics exposes the hub's prometheus collectors for the HTTP server.
func (h *Hub) Metrics() *Metrics {
	return h.metrics
}

// Subscribe registers a new fan-out channel. The caller must Unsubscribe
// when done; the channel is closed there.
func (h *Hub) Subscribe() chan []byte {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	ch := make(chan []byte, subscriberBuffer)
	h.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (h *Hub) Unsubscribe(ch chan []byte) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// publish delivers a pre-encoded message to every subscriber without
// blocking. A full buffer drops the message for that subscriber only.
func (h *Hub) publish(data []byte) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- data:
		default:
			h.metrics.DroppedMessages.Inc()
		}
	}
}

// ApplyEvent runs one event through the reducer and executes the returned
// side effects. The state lock covers only the reduction itself.
func (h *Hub) ApplyEvent(ev reducer.Event) {
	h.metrics.Events.WithLabelValues(eventName(ev)).Inc()
	if hook, ok := ev.(reducer.HookEvent); ok {
		h.metrics.HookEvents.WithLabelValues(hook.Hook).Inc()
	}

	h.mu.Lock()
	effects := reducer.Reduce(h.state, h.cfg, ev)
	h.mu.Unlock()

	for _, eff := range effects {
		switch e := eff.(type) {
		case reducer.BroadcastRender:
			h.BroadcastRender()
		case reducer.SendVscodeCommand:
			data, err := protocol.EncodeVscodeCommand(e.Command)
			if err != nil {
				h.logger.WithError(err).Error("Failed to encode editor command")
				continue
			}
			h.publish(data)
		}
	}
}

// HandleKeypadPress routes a slot press. Gate presses never enter the
// reducer: they resolve to an immediate open_uri dispatch. Everything else
// goes through the arm path.
func (h *Hub) HandleKeypadPress(promptID string) {
	if gate, ok := h.cfg.Gates[promptID]; ok {
		h.metrics.Events.WithLabelValues("gate_press").Inc()
		data, err := protocol.EncodeVscodeCommand(protocol.OpenURI(gate.Action))
		if err != nil {
			h.logger.WithError(err).Error("Failed to encode gate command")
			return
		}
		h.publish(data)
		return
	}
	h.ApplyEvent(reducer.KeypadPress{PromptID: promptID})
}

// BroadcastRender recomputes the projection and publishes it to every
// subscriber. All devices observe the identical encoded snapshot.
func (h *Hub) BroadcastRender() {
	model := h.RenderModel()
	data, err := protocol.EncodeRender(&model)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode render model")
		return
	}
	h.publish(data)
	h.metrics.RenderBroadcasts.Inc()
}

// PublishNotice broadcasts a human-readable notice to all devices.
func (h *Hub) PublishNotice(message string) {
	data, err := protocol.EncodeNotice(protocol.Notice{Message: message})
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode notice")
		return
	}
	h.publish(data)
}

// RenderModel computes the current render snapshot.
func (h *Hub) RenderModel() protocol.RenderModel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return render.BuildRenderModel(h.state, h.cfg)
}

// StateJSON marshals a snapshot of the raw daemon state for debugging.
func (h *Hub) StateJSON() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return json.Marshal(h.state)
}

func eventName(ev reducer.Event) string {
	switch ev.(type) {
	case reducer.KeypadPress:
		return protocol.TypeKeypadPress
	case reducer.DialpadButton:
		return protocol.TypeDialpadButton
	case reducer.Adjustment:
		return protocol.TypeAdjustment
	case reducer.PageNav:
		return protocol.TypePageNav
	case reducer.HookEvent:
		return protocol.TypeHookEvent
	case reducer.TerminalsSnapshot:
		return protocol.TypeTerminalsSnapshot
	case reducer.ClientConnected:
		return "client_connected"
	case reducer.ClientDisconnected:
		return "client_disconnected"
	}
	return "unknown"
}
