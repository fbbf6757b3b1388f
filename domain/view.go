package domain

import "holdemd/cards"

// SeatView is the projection of one seat. HoleCards is only populated for
// the viewing seat itself, or everywhere in the full projection.
type SeatView struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Index     int         `json:"index"`
	Stack     int         `json:"stack"`
	Bet       int         `json:"bet"`
	InHand    bool        `json:"inHand"`
	Folded    bool        `json:"folded"`
	AllIn     bool        `json:"allIn"`
	HoleCards cards.Stack `json:"holeCards,omitempty"`
}

// TableView is a read-only snapshot of the table. It is only built from
// fully-settled state, never mid-transition, and contains nothing
// time-dependent: identical state yields byte-identical projections.
type TableView struct {
	TableID          string       `json:"tableId"`
	Name             string       `json:"name"`
	Stage            Stage        `json:"stage"`
	HandID           string       `json:"handId,omitempty"`
	HandNo           uint64       `json:"handNo,omitempty"`
	Community        cards.Stack  `json:"community"`
	Pot              int          `json:"pot"`
	DealerSeat       int          `json:"dealerSeat"`
	CurrentActorSeat int          `json:"currentActorSeat"`
	MinRaiseTo       int          `json:"minRaiseTo"`
	Seats            []SeatView   `json:"seats"`
	Pots             []PotPreview `json:"pots,omitempty"`
}

// BuildFullView builds the spectator/host projection: every hole card
// visible plus the live side-pot preview.
func (t *Table) BuildFullView() TableView {
	view := t.baseView()
	for i, s := range t.Seats {
		if len(s.Hole) > 0 {
			view.Seats[i].HoleCards = append(cards.Stack{}, s.Hole...)
		}
	}
	view.Pots = PreviewPots(t.Seats)
	return view
}

// BuildSeatView builds the projection for one seat: only its own hole
// cards are visible, other seats show public fields only.
func (t *Table) BuildSeatView(seatID string) TableView {
	view := t.baseView()
	for i, s := range t.Seats {
		if s.ID == seatID && len(s.Hole) > 0 {
			view.Seats[i].HoleCards = append(cards.Stack{}, s.Hole...)
		}
	}
	return view
}

func (t *Table) baseView() TableView {
	view := TableView{
		TableID:          t.ID,
		Name:             t.Name,
		Stage:            t.Stage(),
		Community:        cards.Stack{},
		DealerSeat:       -1,
		CurrentActorSeat: -1,
		Seats:            make([]SeatView, 0, len(t.Seats)),
	}
	if h := t.Hand; h != nil {
		view.HandID = h.ID
		view.HandNo = h.No
		view.Community = append(view.Community, h.Community...)
		view.Pot = h.Pot
		view.DealerSeat = h.DealerIdx
		view.MinRaiseTo = h.MinRaiseTo
		if h.Stage.Betting() {
			view.CurrentActorSeat = h.ActorIdx
		}
	}
	for _, s := range t.Seats {
		view.Seats = append(view.Seats, SeatView{
			ID:     s.ID,
			Name:   s.Name,
			Index:  s.Index,
			Stack:  s.Stack,
			Bet:    s.Bet,
			InHand: s.InHand,
			Folded: s.Folded,
			AllIn:  s.AllIn,
		})
	}
	return view
}
