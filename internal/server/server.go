// Package server exposes a running generator over HTTP: a websocket spawn
// stream, JSON queries against the world, and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lawnchairsociety/hexcrawl/internal/config"
	"github.com/lawnchairsociety/hexcrawl/internal/dungeon"
	"github.com/lawnchairsociety/hexcrawl/internal/logger"
)

type Server struct {
	cfg          *config.ServerConfig
	gen          *dungeon.Generator
	hub          *hub
	connLimiter  *ConnLimiter
	registry     *prometheus.Registry
	upgrader     websocket.Upgrader
	unsubscribe  func()
	StartTime    time.Time
	mu           sync.Mutex
	httpServer   *http.Server
	shutdownOnce sync.Once
}

// NewServer subscribes to gen and replays whatever it has already built.
// A nil registry gets a fresh one; the server adds its own gauges to it.
func NewServer(cfg *config.ServerConfig, gen *dungeon.Generator, registry *prometheus.Registry) *Server {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	s := &Server{
		cfg:         cfg,
		gen:         gen,
		hub:         newHub(),
		connLimiter: NewConnLimiter(cfg.Connections),
		registry:    registry,
		StartTime:   time.Now(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	s.hub.seed(gen.World())
	s.unsubscribe = gen.Subscribe(s.hub.publish)

	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "hexcrawl",
		Name:      "stream_clients",
		Help:      "Connected spawn stream subscribers.",
	}, func() float64 { return float64(s.hub.count()) }))

	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocketUpgrade)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/cell", s.handleCell)
	mux.HandleFunc("GET /api/room", s.handleRoom)
	mux.HandleFunc("GET /api/nearest", s.handleNearest)
	mux.HandleFunc("GET /api/tiles", s.handleTiles)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	return mux
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.StdLogger(slog.LevelWarn),
	}

	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		listener.Close()
		return errors.New("server already started")
	}
	s.httpServer = srv
	s.mu.Unlock()

	logger.Info("Server listening", "address", listener.Addr().String())
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, disconnects stream clients and detaches
// from the generator. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.unsubscribe()
		s.hub.close()

		s.mu.Lock()
		srv := s.httpServer
		s.mu.Unlock()
		if srv != nil {
			err = srv.Shutdown(ctx)
		}
		logger.Info("Server shutdown complete", "uptime", time.Since(s.StartTime).Round(time.Second).String())
	})
	return err
}

// handleWebSocketUpgrade upgrades a request and attaches it to the stream.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	if s.hub.isClosed() {
		http.Error(w, "Server is shutting down.", http.StatusServiceUnavailable)
		return
	}

	// Get the real client IP (supports X-Forwarded-For from reverse proxies)
	clientIP := getRealIP(r)

	// Check connection limits before upgrading
	if !s.connLimiter.TryAcquire(clientIP) {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warning("WebSocket upgrade failed", "client_ip", clientIP, "error", err)
		s.connLimiter.Release(clientIP)
		return
	}

	client := NewWebSocketClient(wsConn, clientIP)
	if !s.hub.register(client) {
		s.connLimiter.Release(clientIP)
		wsConn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		wsConn.Close()
		return
	}
	logger.Info("Stream client connected", "session", client.ID(), "client_ip", clientIP)

	go client.writePump(client.send)
	go func() {
		defer func() {
			s.hub.unregister(client)
			s.connLimiter.Release(clientIP)
			logger.Info("Stream client disconnected", "session", client.ID(), "client_ip", clientIP)
		}()
		client.readPump(s.cfg.WebSocket.MaxMessageSize)
	}()
}
