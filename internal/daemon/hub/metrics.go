package hub

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the daemon's prometheus collectors on a private registry,
// so tests can create hubs freely without duplicate registration panics.
type Metrics struct {
	registry *prometheus.Registry

	Events           *prometheus.CounterVec
	HookEvents       *prometheus.CounterVec
	ConnectedClients *prometheus.GaugeVec
	RenderBroadcasts prometheus.Counter
	DroppedMessages  prometheus.Counter
}

// NewMetrics creates and registers the hub's collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runbook_events_total",
			Help: "Events processed by the reducer, by type.",
		}, []string{"type"}),
		HookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runbook_hook_events_total",
			Help: "Assistant lifecycle hook events received, by hook name.",
		}, []string{"hook"}),
		ConnectedClients: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "runbook_connected_clients",
			Help: "Currently connected clients, by kind.",
		}, []string{"kind"}),
		RenderBroadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runbook_render_broadcasts_total",
			Help: "Render snapshots published to the fan-out channel.",
		}),
		DroppedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runbook_dropped_messages_total",
			Help: "Fan-out messages dropped because a subscriber backlog was full.",
		}),
	}

	registry.MustRegister(
		m.Events,
		m.HookEvents,
		m.ConnectedClients,
		m.RenderBroadcasts,
		m.DroppedMessages,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
