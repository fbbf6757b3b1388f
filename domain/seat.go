package domain

import "holdemd/cards"

// Seat represents a participant while seated at the table. The per-hand
// fields (InHand through Committed) are reinitialized by the table at the
// start of every hand. Committed is never reset mid-hand: it is the seat's
// cumulative contribution and feeds the side-pot banding at settlement.
type Seat struct {
	ID    string
	Name  string
	Index int
	Stack int

	Hole cards.Stack

	InHand    bool
	Folded    bool
	AllIn     bool
	Bet       int // chips put in during the current street
	Committed int // chips put in during the current hand

	leaving bool // removal requested mid-hand; applied at settlement
}

// resetForHand clears all hand-scoped fields ahead of a new deal.
func (s *Seat) resetForHand() {
	s.Hole = s.Hole[:0]
	s.InHand = s.Stack > 0
	s.Folded = false
	s.AllIn = false
	s.Bet = 0
	s.Committed = 0
}

// live reports whether the seat is still contesting the current hand.
func (s *Seat) live() bool {
	return s.InHand && !s.Folded
}

// canAct reports whether the seat may still take a betting action.
func (s *Seat) canAct() bool {
	return s.live() && !s.AllIn
}

// pay moves chips from the seat's stack into its street bet, marking the
// seat all-in when the stack is exhausted. The amount must already be
// capped to the stack by the caller.
func (s *Seat) pay(amount int) {
	s.Stack -= amount
	s.Bet += amount
	s.Committed += amount
	if s.Stack == 0 {
		s.AllIn = true
	}
}
