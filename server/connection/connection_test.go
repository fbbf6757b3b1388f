package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addClient(m *Manager, id string) *Client {
	client := &Client{ID: id, Send: make(chan []byte, 2)}
	m.clients[id] = client
	return client
}

func TestBindSeat(t *testing.T) {
	m := NewManager(nil)
	addClient(m, "c1")
	addClient(m, "c2")

	require.True(t, m.BindSeat("c1", "seat-a"))
	assert.Equal(t, "seat-a", m.SeatOf("c1"))

	// another connection cannot steal the seat
	assert.False(t, m.BindSeat("c2", "seat-a"))
	assert.Empty(t, m.SeatOf("c2"))

	// rebinding the same client is fine
	assert.True(t, m.BindSeat("c1", "seat-a"))

	// unknown client
	assert.False(t, m.BindSeat("ghost", "seat-b"))
}

func TestSendToSeatAndBroadcast(t *testing.T) {
	m := NewManager(nil)
	c1 := addClient(m, "c1")
	c2 := addClient(m, "c2")
	require.True(t, m.BindSeat("c1", "seat-a"))

	m.SendToSeat("seat-a", []byte("private"))
	assert.Len(t, c1.Send, 1)
	assert.Len(t, c2.Send, 0)

	m.SendToSeat("empty-seat", []byte("nobody"))

	m.Broadcast([]byte("public"))
	assert.Len(t, c1.Send, 2)
	assert.Len(t, c2.Send, 1)
}

func TestSlowClientPayloadsAreDropped(t *testing.T) {
	m := NewManager(nil)
	c := addClient(m, "c1")

	m.SendToClient("c1", []byte("1"))
	m.SendToClient("c1", []byte("2"))
	// buffer full: this one is dropped instead of blocking
	m.SendToClient("c1", []byte("3"))

	assert.Len(t, c.Send, 2)
	assert.Equal(t, []byte("1"), <-c.Send)
	assert.Equal(t, []byte("2"), <-c.Send)
}

func TestMarkHost(t *testing.T) {
	m := NewManager(nil)
	addClient(m, "c1")

	assert.False(t, m.IsHost("c1"))
	m.MarkHost("c1")
	assert.True(t, m.IsHost("c1"))
	assert.False(t, m.IsHost("ghost"))
}
