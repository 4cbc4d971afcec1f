package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeusync/herd/internal/config"
	"github.com/zeusync/herd/internal/core/events/bus"
	"github.com/zeusync/herd/internal/core/observability/log"
	"github.com/zeusync/herd/internal/core/sim"
)

const shutdownTimeout = 5 * time.Second

// Controller is the part of the simulation the observer surface drives.
type Controller interface {
	Snapshot() sim.Snapshot
	ToggleWolf() bool
	TogglePause() bool
}

// Server exposes the simulation to observers: a websocket stream of snapshots and events,
// control endpoints and Prometheus metrics.
type Server struct {
	config   config.Server
	ctrl     Controller
	bus      bus.EventBus
	gatherer prometheus.Gatherer
	logger   log.Log

	upgrader   websocket.Upgrader
	httpServer *http.Server
	listener   net.Listener

	clients     sync.Map // map[string]*client
	clientCount atomic.Int64

	subs []bus.Subscription

	// lifecycle serializes Start and Stop.
	lifecycle sync.Mutex
	running   atomic.Bool
	closed    atomic.Bool

	workerGroup sync.WaitGroup
	stopChan    chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l log.Log) Option {
	return func(s *Server) { s.logger = l }
}

// WithBus forwards simulation events from b to every observer.
func WithBus(b bus.EventBus) Option {
	return func(s *Server) { s.bus = b }
}

// WithGatherer sets the registry served on /metrics. The default is the global registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewServer creates a stopped server for ctrl.
func NewServer(cfg config.Server, ctrl Controller, opts ...Option) *Server {
	s := &Server{
		config:   cfg,
		ctrl:     ctrl,
		gatherer: prometheus.DefaultGatherer,
		logger:   log.NewNop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(log.String("component", "server"))

	s.logger.Info("Server created",
		log.String("listen_addr", cfg.ListenAddr),
		log.Int("max_clients", cfg.MaxClients))

	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	mux.HandleFunc("POST /wolf", s.handleControl(ActionToggleWolf))
	mux.HandleFunc("POST /pause", s.handleControl(ActionTogglePause))
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start listens on the configured address and serves until Stop is called or ctx is done.
// A stopped server cannot be started again.
func (s *Server) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	s.logger.Info("Starting server")

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.ListenAddr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("listen %s: %w", s.config.ListenAddr, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err = s.subscribe(); err != nil {
		s.running.Store(false)
		_ = listener.Close()
		return err
	}

	s.workerGroup.Add(2)
	go func() {
		defer s.workerGroup.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		}
	}()
	go func() {
		defer s.workerGroup.Done()
		s.broadcastLoop()
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop()
		case <-s.stopChan:
		}
	}()

	s.logger.Info("Server listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop disconnects every observer and shuts the listener down.
func (s *Server) Stop() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	s.closed.Store(true)

	s.logger.Info("Stopping server")
	close(s.stopChan)

	for _, sub := range s.subs {
		_ = sub.Cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)

	s.clients.Range(func(_, value any) bool {
		value.(*client).close()
		return true
	})

	s.workerGroup.Wait()
	s.logger.Info("Server stopped")

	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ClientCount returns the number of connected observers.
func (s *Server) ClientCount() int64 { return s.clientCount.Load() }

func (s *Server) subscribe() error {
	if s.bus == nil {
		return nil
	}
	for _, typ := range []string{sim.EventActivityChanged, sim.EventWaypointReached, sim.EventAte} {
		sub, err := s.bus.Subscribe(typ, s.forwardEvent)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", typ, err)
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

func (s *Server) forwardEvent(ev bus.Event) error {
	b, err := encode(MessageEvent, ev.Type(), ev.Data())
	if err != nil {
		return err
	}
	s.broadcast(b)
	return nil
}

func (s *Server) broadcastLoop() {
	s.logger.Debug("Broadcast loop started")

	ticker := time.NewTicker(s.config.BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.clientCount.Load() == 0 {
				continue
			}
			b, err := encode(MessageSnapshot, "", s.ctrl.Snapshot())
			if err != nil {
				s.logger.Error("Snapshot encoding failed", log.Error(err))
				continue
			}
			s.broadcast(b)
		case <-s.stopChan:
			s.logger.Debug("Broadcast loop stopped")
			return
		}
	}
}

func (s *Server) broadcast(b []byte) {
	s.clients.Range(func(_, value any) bool {
		c := value.(*client)
		if !c.enqueue(b) {
			s.logger.Debug("Dropped message for slow client", log.String("client_id", c.id))
		}
		return true
	})
}

func (s *Server) control(msg ControlMessage) (ControlResult, error) {
	res := ControlResult{Action: msg.Action}
	switch msg.Action {
	case ActionToggleWolf:
		active := s.ctrl.ToggleWolf()
		res.WolfActive = &active
	case ActionTogglePause:
		paused := s.ctrl.TogglePause()
		res.Paused = &paused
	default:
		return res, fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}
	return res, nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.clientCount.Add(1) > int64(s.config.MaxClients) {
		s.clientCount.Add(-1)
		s.logger.Warn("Rejecting client", log.Error(ErrMaxClientsReached))
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.clientCount.Add(-1)
		s.logger.Debug("Upgrade failed", log.Error(err))
		return
	}

	c := newClient(uuid.NewString(), conn, s.logger)
	s.clients.Store(c.id, c)
	s.logger.Info("Client connected",
		log.String("client_id", c.id),
		log.String("remote_addr", conn.RemoteAddr().String()))

	if b, err := encode(MessageSnapshot, "", s.ctrl.Snapshot()); err == nil {
		c.enqueue(b)
	}

	go c.writePump()
	c.readPump(s.control)

	s.clients.Delete(c.id)
	s.clientCount.Add(-1)
	s.logger.Info("Client disconnected", log.String("client_id", c.id))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.ctrl.Snapshot())
}

func (s *Server) handleControl(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		res, err := s.control(ControlMessage{Action: action})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, res)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
