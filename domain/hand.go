package domain

import "holdemd/cards"

// Stage is the lifecycle position of the table's current hand.
type Stage string

const (
	StageLobby    Stage = "lobby"
	StagePreflop  Stage = "preflop"
	StageFlop     Stage = "flop"
	StageTurn     Stage = "turn"
	StageRiver    Stage = "river"
	StageShowdown Stage = "showdown"
)

// Betting reports whether the stage is one of the four betting streets.
func (s Stage) Betting() bool {
	switch s {
	case StagePreflop, StageFlop, StageTurn, StageRiver:
		return true
	}
	return false
}

// Hand holds the ephemeral state of one played hand. It is created by
// Table.StartHand and survives, frozen at showdown, until the next hand
// starts or the table resets.
type Hand struct {
	ID        string
	No        uint64
	Stage     Stage
	Community cards.Stack
	Pot       int // chips already swept off the table from completed streets

	DealerIdx  int
	ActorIdx   int
	MinRaiseTo int // minimum raise increment for the current street

	// street bookkeeping, reset at each street transition
	RoundFirstIdx int  // seat that acted first this street
	HasBetOrRaise bool // whether any bet/raise occurred this street
	LastRaiserIdx int  // last aggressor, -1 when none

	deck *cards.Deck
}

// resetStreet clears the per-street bookkeeping. firstIdx is the seat that
// will act first on the new street.
func (h *Hand) resetStreet(firstIdx int) {
	h.ActorIdx = firstIdx
	h.RoundFirstIdx = firstIdx
	h.HasBetOrRaise = false
	h.LastRaiserIdx = -1
}
