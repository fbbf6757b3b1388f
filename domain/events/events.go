package events

import "holdemd/cards"

// EventHandler receives every event emitted by a table.
type EventHandler func(event Event)

// Event is implemented by every domain event.
type Event interface {
	Name() string
}

// Seat lifecycle

type PlayerSeated struct {
	TableID   string
	SeatID    string
	SeatIndex int
	Stack     int
}

func (e PlayerSeated) Name() string { return "PLAYER_SEATED" }

type PlayerLeft struct {
	TableID string
	SeatID  string
}

func (e PlayerLeft) Name() string { return "PLAYER_LEFT" }

type SeatBusted struct {
	TableID string
	HandID  string
	SeatID  string
}

func (e SeatBusted) Name() string { return "SEAT_BUSTED" }

// Hand lifecycle

type HandStarted struct {
	TableID    string
	HandID     string
	HandNo     uint64
	DealerSeat int
	SeatIDs    []string
}

func (e HandStarted) Name() string { return "HAND_STARTED" }

type BlindPosted struct {
	TableID string
	HandID  string
	SeatID  string
	Amount  int
	Small   bool
	AllIn   bool
}

func (e BlindPosted) Name() string { return "BLIND_POSTED" }

type HoleCardsDealt struct {
	TableID string
	HandID  string
	SeatID  string
	Cards   cards.Stack
}

func (e HoleCardsDealt) Name() string { return "HOLE_CARDS_DEALT" }

type StageAdvanced struct {
	TableID   string
	HandID    string
	Stage     string
	Community cards.Stack
	Pot       int
}

func (e StageAdvanced) Name() string { return "STAGE_ADVANCED" }

// Betting

type ActionApplied struct {
	TableID string
	HandID  string
	Stage   string
	SeatID  string
	Kind    string
	Amount  int
	AllIn   bool
	Pot     int
}

func (e ActionApplied) Name() string { return "ACTION_APPLIED" }

type PlayerTurnStarted struct {
	TableID string
	HandID  string
	Stage   string
	SeatID  string
}

func (e PlayerTurnStarted) Name() string { return "PLAYER_TURN_STARTED" }

type BettingRoundEnded struct {
	TableID string
	HandID  string
	Stage   string
	Pot     int
}

func (e BettingRoundEnded) Name() string { return "BETTING_ROUND_ENDED" }

// Interruptions

type PlayerTimedOut struct {
	TableID string
	HandID  string
	Stage   string
	SeatID  string
}

func (e PlayerTimedOut) Name() string { return "PLAYER_TIMED_OUT" }

type PlayerDisconnected struct {
	TableID string
	HandID  string
	SeatID  string
}

func (e PlayerDisconnected) Name() string { return "PLAYER_DISCONNECTED" }

type HandForced struct {
	TableID string
	HandID  string
	Stage   string
}

func (e HandForced) Name() string { return "HAND_FORCED" }

// Settlement

type PotRefunded struct {
	TableID string
	HandID  string
	SeatID  string
	Amount  int
}

func (e PotRefunded) Name() string { return "POT_REFUNDED" }

type PotAwarded struct {
	TableID  string
	HandID   string
	SeatID   string
	Amount   int
	PotIndex int
	Category string
}

func (e PotAwarded) Name() string { return "POT_AWARDED" }

type HandEnded struct {
	TableID  string
	HandID   string
	FinalPot int
	Winners  []string
	Stacks   map[string]int
}

func (e HandEnded) Name() string { return "HAND_ENDED" }

type TableReset struct {
	TableID string
}

func (e TableReset) Name() string { return "TABLE_RESET" }
