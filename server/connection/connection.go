// Package connection tracks websocket clients and their binding to table
// seats.
package connection

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client represents one connected websocket.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	seatID string
	host   bool
}

// Manager holds all client connections. Field mutation of clients goes
// through the manager so the dispatcher can iterate safely.
type Manager struct {
	clients    map[string]*Client
	seatMap    map[string]string // seat ID -> connection ID
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
	logger     *zap.Logger
}

// NewManager creates a new connection manager.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		clients:    make(map[string]*Client),
		seatMap:    make(map[string]string),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger,
	}
}

// Start processes register/unregister events until the channels close.
func (m *Manager) Start() {
	for {
		select {
		case client := <-m.Register:
			m.mutex.Lock()
			m.clients[client.ID] = client
			m.mutex.Unlock()
		case client := <-m.Unregister:
			m.mutex.Lock()
			if _, ok := m.clients[client.ID]; ok {
				if client.seatID != "" {
					delete(m.seatMap, client.seatID)
				}
				delete(m.clients, client.ID)
				close(client.Send)
			}
			m.mutex.Unlock()
		}
	}
}

// BindSeat associates a client with a seat. Returns false when the seat
// is already bound to another live connection.
func (m *Manager) BindSeat(clientID, seatID string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if other, taken := m.seatMap[seatID]; taken && other != clientID {
		return false
	}
	client, ok := m.clients[clientID]
	if !ok {
		return false
	}
	client.seatID = seatID
	m.seatMap[seatID] = clientID
	return true
}

// SeatOf returns the seat bound to a client, empty for spectators.
func (m *Manager) SeatOf(clientID string) string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if client, ok := m.clients[clientID]; ok {
		return client.seatID
	}
	return ""
}

// MarkHost flags a client as the table host.
func (m *Manager) MarkHost(clientID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if client, ok := m.clients[clientID]; ok {
		client.host = true
	}
}

// IsHost reports whether a client has claimed the host role.
func (m *Manager) IsHost(clientID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if client, ok := m.clients[clientID]; ok {
		return client.host
	}
	return false
}

// ForEach visits every connected client. fn must not block; payloads are
// sent with TrySend.
func (m *Manager) ForEach(fn func(clientID, seatID string, host bool)) {
	m.mutex.RLock()
	type entry struct {
		id     string
		seatID string
		host   bool
	}
	entries := make([]entry, 0, len(m.clients))
	for _, c := range m.clients {
		entries = append(entries, entry{id: c.ID, seatID: c.seatID, host: c.host})
	}
	m.mutex.RUnlock()

	for _, e := range entries {
		fn(e.id, e.seatID, e.host)
	}
}

// SendToClient queues a payload for one client, dropping it when the
// client's buffer is full rather than stalling the table.
func (m *Manager) SendToClient(clientID string, payload []byte) {
	m.mutex.RLock()
	client, ok := m.clients[clientID]
	m.mutex.RUnlock()
	if !ok {
		return
	}
	select {
	case client.Send <- payload:
	default:
		m.logger.Warn("dropping payload for slow client", zap.String("client", clientID))
	}
}

// SendToSeat queues a payload for whichever client holds the seat.
func (m *Manager) SendToSeat(seatID string, payload []byte) {
	m.mutex.RLock()
	clientID, ok := m.seatMap[seatID]
	m.mutex.RUnlock()
	if ok {
		m.SendToClient(clientID, payload)
	}
}

// Broadcast queues a payload for every connected client.
func (m *Manager) Broadcast(payload []byte) {
	m.ForEach(func(clientID, _ string, _ bool) {
		m.SendToClient(clientID, payload)
	})
}
