// Package events turns domain events and table snapshots into websocket
// payloads for connected clients.
package events

import (
	"encoding/json"

	"go.uber.org/zap"

	"holdemd/domain"
	"holdemd/domain/events"
	"holdemd/server/connection"
)

// Envelope is the wire frame for every outbound message.
type Envelope struct {
	Name    string      `json:"name"`
	Payload interface{} `json:"payload"`
}

// Dispatcher relays domain events and settled-state snapshots to clients.
// Both entry points run on the table goroutine, so reading the table here
// is safe; everything outbound goes through non-blocking sends.
type Dispatcher struct {
	table   *domain.Table
	connMgr *connection.Manager
	logger  *zap.Logger
}

func NewDispatcher(table *domain.Table, connMgr *connection.Manager, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{table: table, connMgr: connMgr, logger: logger}
}

// HandleEvent forwards one domain event. Hole cards only ever go to the
// seat that owns them; everything else is broadcast.
func (d *Dispatcher) HandleEvent(ev events.Event) {
	payload, err := d.envelope(ev.Name(), ev)
	if err != nil {
		d.logger.Error("marshaling event", zap.String("event", ev.Name()), zap.Error(err))
		return
	}

	switch e := ev.(type) {
	case events.HoleCardsDealt:
		d.connMgr.SendToSeat(e.SeatID, payload)
	default:
		d.connMgr.Broadcast(payload)
	}
}

// BroadcastSnapshots pushes the current table view to every client:
// seated players get their own projection, spectators and the host see
// the full state.
func (d *Dispatcher) BroadcastSnapshots() {
	var full []byte
	perSeat := make(map[string][]byte)

	d.connMgr.ForEach(func(clientID, seatID string, host bool) {
		var payload []byte
		var err error
		if seatID == "" || host {
			if full == nil {
				full, err = d.envelope("SNAPSHOT", d.table.BuildFullView())
			}
			payload = full
		} else {
			payload = perSeat[seatID]
			if payload == nil {
				payload, err = d.envelope("SNAPSHOT", d.table.BuildSeatView(seatID))
				perSeat[seatID] = payload
			}
		}
		if err != nil {
			d.logger.Error("marshaling snapshot", zap.Error(err))
			return
		}
		d.connMgr.SendToClient(clientID, payload)
	})
}

func (d *Dispatcher) envelope(name string, payload interface{}) ([]byte, error) {
	return json.Marshal(Envelope{Name: name, Payload: payload})
}
