package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/runbooktools/runbook/internal/daemon/reducer"
	"github.com/runbooktools/runbook/pkg/protocol"
	"github.com/runbooktools/runbook/version"
)

const writeTimeout = 5 * time.Second

// Server is the daemon's HTTP front: the websocket device transport, the
// one-shot hook ingress, and the debug/metrics endpoints.
type Server struct {
	hub    *Hub
	logger *logrus.Entry

	httpServer *http.Server
	upgrader   websocket.Upgrader

	connMu sync.Mutex
	conns  map[*websocket.Conn]struct{}
}

// NewServer creates the HTTP server around a hub.
func NewServer(h *Hub, logger *logrus.Entry) *Server {
	return &Server{
		hub:    h,
		logger: logger,
		// Local trusted operator; the daemon binds loopback by default.
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// Routes returns the daemon's HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	mux.HandleFunc("/hook", s.handleHook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", s.hub.Metrics().Handler())
	mux.HandleFunc("/api/state", s.handleGetState)
	mux.HandleFunc("/api/render", s.handleGetRender)
	return mux
}

// ListenAndServe starts serving on addr and blocks until the server stops.
// The initial render snapshot is published before accepting traffic.
func (s *Server) ListenAndServe(addr string) error {
	s.hub.BroadcastRender()

	s.httpServer = &http.Server{Addr: addr, Handler: s.Routes()}
	s.logger.WithField("addr", addr).Info("Daemon listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server and closes every device connection, which
// unblocks their read loops.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	s.connMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connMu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) trackConn(conn *websocket.Conn) {
	s.connMu.Lock()
	s.conns[conn] = struct{}{}
	s.connMu.Unlock()
}

func (s *Server) untrackConn(conn *websocket.Conn) {
	s.connMu.Lock()
	delete(s.conns, conn)
	s.connMu.Unlock()
}

// handleWebsocket serves one device connection: HelloAck first, then the
// fan-out relay plus the inbound read loop until disconnect.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	s.trackConn(conn)

	connID := uuid.NewString()[:8]
	log := s.logger.WithField("conn", connID)
	log.Debug("Device connected")

	ack, err := protocol.EncodeHelloAck(protocol.HelloAck{
		Protocol:      protocol.ProtocolVersion,
		DaemonVersion: version.Version,
	})
	if err == nil {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err = conn.WriteMessage(websocket.TextMessage, ack)
	}
	if err != nil {
		log.WithError(err).Warn("Handshake write failed")
		s.untrackConn(conn)
		conn.Close()
		return
	}

	sub := s.hub.Subscribe()

	// Writer pump: the only writer after the handshake. Exits when
	// Unsubscribe closes the channel.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for data := range sub {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.WithError(err).Debug("Relay write failed")
				return
			}
		}
	}()

	clientKind := s.readLoop(conn, log)

	s.hub.Unsubscribe(sub)
	<-writerDone
	s.untrackConn(conn)
	conn.Close()

	if clientKind != "" {
		s.hub.Metrics().ConnectedClients.WithLabelValues(string(clientKind)).Dec()
		s.hub.ApplyEvent(reducer.ClientDisconnected{Kind: clientKind})
	}
	log.Debug("Device disconnected")
}

// readLoop consumes inbound messages until the stream terminates, and
// returns the client kind learned from the Hello, if any.
func (s *Server) readLoop(conn *websocket.Conn, log *logrus.Entry) protocol.ClientKind {
	var clientKind protocol.ClientKind
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return clientKind
		}

		msg, err := protocol.DecodeClientMessage(data)
		if err != nil {
			// One bad message never costs the connection.
			log.WithError(err).Warn("Discarding malformed message")
			continue
		}

		switch msg.Type {
		case protocol.TypeHello:
			clientKind = msg.Hello.Client
			log.WithFields(logrus.Fields{
				"client":  clientKind,
				"version": msg.Hello.Version,
			}).Info("Client identified")
			s.hub.Metrics().ConnectedClients.WithLabelValues(string(clientKind)).Inc()
			s.hub.ApplyEvent(reducer.ClientConnected{Kind: clientKind})
			s.hub.PublishNotice(string(clientKind) + " connected")

		case protocol.TypeKeypadPress:
			s.hub.HandleKeypadPress(msg.KeypadPress.PromptID)

		case protocol.TypeDialpadButton:
			s.hub.ApplyEvent(reducer.DialpadButton{Button: msg.DialpadButtonPress.Button})

		case protocol.TypeAdjustment:
			s.hub.ApplyEvent(reducer.Adjustment{Kind: msg.Adjustment.Kind, Delta: msg.Adjustment.Delta})

		case protocol.TypePageNav:
			s.hub.ApplyEvent(reducer.PageNav{Direction: msg.PageNav.Direction})

		case protocol.TypeHookEvent:
			s.hub.ApplyEvent(hookEventFromWire(msg.HookEvent))

		case protocol.TypeTerminalsSnapshot:
			s.hub.ApplyEvent(reducer.TerminalsSnapshot{
				Terminals:   msg.TerminalsSnapshot.Terminals,
				ActiveIndex: msg.TerminalsSnapshot.ActiveIndex,
			})
		}
	}
}

// handleHook is the one-shot ingress: POST a HookEvent body, get an
// unconditional acknowledgment. The sender made its safety decision before
// calling; nothing here may gate it.
func (s *Server) handleHook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var ev protocol.HookEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		s.logger.WithError(err).Warn("Discarding malformed hook payload")
	} else if ev.Hook != "" {
		s.hub.ApplyEvent(hookEventFromWire(&ev))
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	data, err := s.hub.StateJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleGetRender(w http.ResponseWriter, r *http.Request) {
	model := s.hub.RenderModel()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model)
}

func hookEventFromWire(ev *protocol.HookEvent) reducer.HookEvent {
	return reducer.HookEvent{
		Hook:       ev.Hook,
		Matcher:    ev.Matcher,
		SessionID:  ev.SessionID,
		SessionTag: ev.SessionTag,
	}
}
