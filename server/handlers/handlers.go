// Package handlers routes decoded client commands to the game loop.
package handlers

import (
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"holdemd/domain"
	"holdemd/game"
	"holdemd/server/connection"
	srvevents "holdemd/server/events"
)

// Command is the inbound wire frame.
type Command struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// CommandRouter decodes client commands and submits them to the loop.
type CommandRouter struct {
	loop          *game.Loop
	connMgr       *connection.Manager
	startingStack int
	hostToken     string
	logger        *zap.Logger
}

func NewCommandRouter(loop *game.Loop, connMgr *connection.Manager, startingStack int, hostToken string, logger *zap.Logger) *CommandRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandRouter{
		loop:          loop,
		connMgr:       connMgr,
		startingStack: startingStack,
		hostToken:     hostToken,
		logger:        logger,
	}
}

// Route handles one raw message from a client.
func (r *CommandRouter) Route(clientID string, raw []byte) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		r.sendError(clientID, "malformed command")
		return
	}

	switch cmd.Name {
	case "SIT_DOWN":
		r.handleSitDown(clientID, cmd.Payload)
	case "ACTION":
		r.handleAction(clientID, cmd.Payload)
	case "GET_STATE":
		r.handleGetState(clientID)
	case "CLAIM_HOST":
		r.handleClaimHost(clientID, cmd.Payload)
	case "HOST_START":
		r.hostOnly(clientID, func() { r.loop.Submit(game.HostStart{}) })
	case "HOST_FORCE_ADVANCE":
		r.handleForceAdvance(clientID, cmd.Payload)
	case "HOST_RESET":
		r.hostOnly(clientID, func() { r.loop.Submit(game.HostReset{}) })
	case "HOST_REMOVE_SEAT":
		r.handleRemoveSeat(clientID, cmd.Payload)
	default:
		r.sendError(clientID, "unknown command: "+cmd.Name)
	}
}

// Disconnected tells the loop a seated client dropped.
func (r *CommandRouter) Disconnected(clientID string) {
	if seatID := r.connMgr.SeatOf(clientID); seatID != "" {
		r.loop.Submit(game.SeatDisconnect{SeatID: seatID})
	}
}

func (r *CommandRouter) handleSitDown(clientID string, payload json.RawMessage) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(payload, &req); err != nil || req.Name == "" {
		r.sendError(clientID, "sit down requires a name")
		return
	}
	if r.connMgr.SeatOf(clientID) != "" {
		r.sendError(clientID, "already seated")
		return
	}

	seatID := uuid.New().String()
	reply := make(chan error, 1)
	r.loop.Submit(game.SeatJoin{SeatID: seatID, Name: req.Name, Stack: r.startingStack, Reply: reply})
	if err := <-reply; err != nil {
		r.sendError(clientID, err.Error())
		return
	}
	if !r.connMgr.BindSeat(clientID, seatID) {
		r.loop.Submit(game.HostRemoveSeat{SeatID: seatID})
		r.sendError(clientID, "connection gone")
		return
	}
	r.send(clientID, "SEATED", map[string]string{"seatId": seatID})
}

func (r *CommandRouter) handleAction(clientID string, payload json.RawMessage) {
	seatID := r.connMgr.SeatOf(clientID)
	if seatID == "" {
		r.sendError(clientID, "not seated")
		return
	}
	var action domain.Action
	if err := json.Unmarshal(payload, &action); err != nil {
		r.sendError(clientID, "malformed action")
		return
	}
	r.loop.Submit(game.SeatAction{SeatID: seatID, Action: action})
}

func (r *CommandRouter) handleGetState(clientID string) {
	seatID := r.connMgr.SeatOf(clientID)
	full := seatID == "" || r.connMgr.IsHost(clientID)
	view := r.loop.View(seatID, full)
	r.send(clientID, "SNAPSHOT", view)
}

func (r *CommandRouter) handleClaimHost(clientID string, payload json.RawMessage) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(payload, &req); err != nil || r.hostToken == "" || req.Token != r.hostToken {
		r.sendError(clientID, "host claim rejected")
		return
	}
	r.connMgr.MarkHost(clientID)
	r.send(clientID, "HOST_CLAIMED", nil)
}

func (r *CommandRouter) handleForceAdvance(clientID string, payload json.RawMessage) {
	var req struct {
		StartNext bool `json:"startNext"`
	}
	_ = json.Unmarshal(payload, &req)
	r.hostOnly(clientID, func() { r.loop.Submit(game.HostForceAdvance{StartNext: req.StartNext}) })
}

func (r *CommandRouter) handleRemoveSeat(clientID string, payload json.RawMessage) {
	var req struct {
		SeatID string `json:"seatId"`
	}
	if err := json.Unmarshal(payload, &req); err != nil || req.SeatID == "" {
		r.sendError(clientID, "remove seat requires a seat id")
		return
	}
	r.hostOnly(clientID, func() { r.loop.Submit(game.HostRemoveSeat{SeatID: req.SeatID}) })
}

func (r *CommandRouter) hostOnly(clientID string, fn func()) {
	if !r.connMgr.IsHost(clientID) {
		r.sendError(clientID, "host command requires host role")
		return
	}
	fn()
}

func (r *CommandRouter) send(clientID, name string, payload interface{}) {
	data, err := json.Marshal(srvevents.Envelope{Name: name, Payload: payload})
	if err != nil {
		r.logger.Error("marshaling reply", zap.Error(err))
		return
	}
	r.connMgr.SendToClient(clientID, data)
}

func (r *CommandRouter) sendError(clientID, message string) {
	r.send(clientID, "ERROR", map[string]string{"message": message})
}
