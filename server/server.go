// Package server exposes the table over websocket plus a small HTTP API.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sanity-io/litter"
	"go.uber.org/zap"

	"holdemd/game"
	"holdemd/server/connection"
	srvevents "holdemd/server/events"
	"holdemd/server/handlers"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server ties the connection manager, command router and game loop to an
// HTTP listener.
type Server struct {
	loop      *game.Loop
	connMgr   *connection.Manager
	router    *handlers.CommandRouter
	hostToken string
	debug     bool
	logger    *zap.Logger
}

func New(loop *game.Loop, connMgr *connection.Manager, router *handlers.CommandRouter, hostToken string, debug bool, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		loop:      loop,
		connMgr:   connMgr,
		router:    router,
		hostToken: hostToken,
		debug:     debug,
		logger:    logger,
	}
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	go s.connMgr.Start()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/api/health", s.handleHealth)
	r.Get("/api/table", s.handleTable)
	r.Post("/api/table/start", s.handleStart)
	if s.debug {
		r.Get("/api/debug/state", s.handleDebugState)
	}

	s.logger.Info("server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, r)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &connection.Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 64),
	}
	s.connMgr.Register <- client

	go s.writePump(client)
	go s.readPump(client)
}

func (s *Server) readPump(client *connection.Client) {
	defer func() {
		s.router.Disconnected(client.ID)
		s.connMgr.Unregister <- client
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", zap.String("client", client.ID), zap.Error(err))
			}
			return
		}
		s.router.Route(client.ID, raw)
	}
}

func (s *Server) writePump(client *connection.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleTable serves the public projection, hole cards stripped.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	view := s.loop.View("", false)
	writeJSON(w, srvevents.Envelope{Name: "SNAPSHOT", Payload: view})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	s.loop.Submit(game.HostStart{})
	w.WriteHeader(http.StatusAccepted)
}

// handleDebugState dumps the full settled view, hole cards included.
func (s *Server) handleDebugState(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	view := s.loop.View("", true)
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(litter.Sdump(view)))
}

func (s *Server) authorized(r *http.Request) bool {
	return s.hostToken != "" && r.Header.Get("X-Host-Token") == s.hostToken
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}
