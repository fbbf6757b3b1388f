package game

import "holdemd/domain"

// Msg is a message delivered to the table loop's inbox. Every mutation of
// the table flows through exactly one of these, which is what makes the
// engine single-threaded cooperative: no two mutations ever interleave.
type Msg interface{ isMsg() }

// SeatJoin seats a player. Reply receives the seating error, nil on
// success.
type SeatJoin struct {
	SeatID string
	Name   string
	Stack  int
	Reply  chan error
}

// SeatAction is an inbound betting action from a seat. Illegal actions
// are dropped silently by the engine.
type SeatAction struct {
	SeatID string
	Action domain.Action
}

// SeatDisconnect marks a seat's transport as gone mid-hand.
type SeatDisconnect struct{ SeatID string }

// HostStart starts the table (deals the first or next hand immediately).
type HostStart struct{}

// HostForceAdvance ends the current hand now; with StartNext the next
// hand begins immediately instead of after the usual delay.
type HostForceAdvance struct{ StartNext bool }

// HostReset clears the table back to an empty lobby.
type HostReset struct{}

// HostRemoveSeat removes a participant.
type HostRemoveSeat struct{ SeatID string }

// GetView requests a snapshot. With Full set the spectator/host
// projection is returned; otherwise the per-seat projection for SeatID.
type GetView struct {
	SeatID string
	Full   bool
	Reply  chan domain.TableView
}

// Shutdown stops the loop.
type Shutdown struct{}

// timer messages carry the generation they were armed with; a fire whose
// generation no longer matches is stale and ignored.
type watchdogFired struct{ gen uint64 }
type nextHandFired struct{ gen uint64 }

func (SeatJoin) isMsg()         {}
func (SeatAction) isMsg()       {}
func (SeatDisconnect) isMsg()   {}
func (HostStart) isMsg()        {}
func (HostForceAdvance) isMsg() {}
func (HostReset) isMsg()        {}
func (HostRemoveSeat) isMsg()   {}
func (GetView) isMsg()          {}
func (Shutdown) isMsg()         {}
func (watchdogFired) isMsg()    {}
func (nextHandFired) isMsg()    {}
