package domain

import (
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"holdemd/cards"
	"holdemd/domain/events"
)

// TableRules defines the fixed parameters of a table.
type TableRules struct {
	SmallBlind    int
	BigBlind      int
	MaxSeats      int
	TurnTimeout   time.Duration
	NextHandDelay time.Duration
}

var (
	ErrTableFull        = errors.New("table is full")
	ErrAlreadySeated    = errors.New("player already seated")
	ErrNoChips          = errors.New("cannot seat a player without chips")
	ErrNotEnoughPlayers = errors.New("need at least two funded seats to start")
	ErrHandInProgress   = errors.New("a hand is already in progress")
)

// Table is the single owned aggregate for one poker table. All mutations
// are plain synchronous method calls; the game loop serializes them, so
// the aggregate itself carries no locks.
type Table struct {
	ID    string
	Name  string
	Rules TableRules
	Seats []*Seat
	Hand  *Hand

	handSeq   uint64
	buttonIdx int

	evaluator Evaluator
	rng       *rand.Rand
	logger    *zap.Logger
	handlers  []events.EventHandler
}

// NewTable creates a table with the given rules and hand-ranking
// collaborator. rng may be nil, in which case a time-seeded source is used.
func NewTable(id, name string, rules TableRules, evaluator Evaluator, rng *rand.Rand, logger *zap.Logger) *Table {
	if rules.MaxSeats <= 0 {
		rules.MaxSeats = 6
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Table{
		ID:        id,
		Name:      name,
		Rules:     rules,
		evaluator: evaluator,
		rng:       rng,
		logger:    logger,
		buttonIdx: -1,
	}
}

// RegisterEventHandler registers a callback invoked for every emitted event.
func (t *Table) RegisterEventHandler(handler events.EventHandler) {
	t.handlers = append(t.handlers, handler)
}

func (t *Table) emit(event events.Event) {
	for _, handler := range t.handlers {
		handler(event)
	}
}

// Stage reports the table's current stage; lobby when no hand is live.
func (t *Table) Stage() Stage {
	if t.Hand == nil {
		return StageLobby
	}
	return t.Hand.Stage
}

// SeatPlayer adds a participant to the next free seat.
func (t *Table) SeatPlayer(id, name string, stack int) (*Seat, error) {
	if len(t.Seats) >= t.Rules.MaxSeats {
		return nil, ErrTableFull
	}
	if t.seatIndex(id) >= 0 {
		return nil, ErrAlreadySeated
	}
	if stack <= 0 {
		return nil, ErrNoChips
	}
	seat := &Seat{ID: id, Name: name, Index: len(t.Seats), Stack: stack}
	t.Seats = append(t.Seats, seat)
	t.emit(events.PlayerSeated{TableID: t.ID, SeatID: id, SeatIndex: seat.Index, Stack: stack})
	return seat, nil
}

// SeatByID returns the seat with the given ID, or nil.
func (t *Table) SeatByID(id string) *Seat {
	if i := t.seatIndex(id); i >= 0 {
		return t.Seats[i]
	}
	return nil
}

func (t *Table) seatIndex(id string) int {
	for i, s := range t.Seats {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// CanStartHand reports whether a new hand may begin.
func (t *Table) CanStartHand() bool {
	if t.Hand != nil && t.Hand.Stage.Betting() {
		return false
	}
	return t.fundedCount() >= 2
}

func (t *Table) fundedCount() int {
	n := 0
	for _, s := range t.Seats {
		if s.Stack > 0 {
			n++
		}
	}
	return n
}

// StartHand deals a fresh hand: per-hand seat fields reset, button
// advanced, deck shuffled, hole cards dealt, blinds posted.
func (t *Table) StartHand() error {
	if t.Hand != nil && t.Hand.Stage.Betting() {
		return ErrHandInProgress
	}
	if t.fundedCount() < 2 {
		return ErrNotEnoughPlayers
	}

	for _, s := range t.Seats {
		s.resetForHand()
	}

	t.buttonIdx = t.nextInHandIdx(t.buttonIdx)
	t.handSeq++

	deck := cards.NewDeck52()
	deck.Shuffle(t.rng)

	h := &Hand{
		ID:            uuid.NewString(),
		No:            t.handSeq,
		Stage:         StagePreflop,
		DealerIdx:     t.buttonIdx,
		MinRaiseTo:    t.Rules.BigBlind,
		LastRaiserIdx: -1,
		deck:          deck,
	}
	t.Hand = h

	seatIDs := make([]string, 0, len(t.Seats))
	for _, s := range t.Seats {
		if s.InHand {
			seatIDs = append(seatIDs, s.ID)
		}
	}
	t.emit(events.HandStarted{TableID: t.ID, HandID: h.ID, HandNo: h.No, DealerSeat: h.DealerIdx, SeatIDs: seatIDs})
	t.logger.Info("hand started",
		zap.String("table", t.ID),
		zap.String("hand", h.ID),
		zap.Uint64("no", h.No),
		zap.Int("dealer", h.DealerIdx),
		zap.Int("players", len(seatIDs)))

	// two cards each, one at a time, starting left of the button
	for round := 0; round < 2; round++ {
		for i := 1; i <= len(t.Seats); i++ {
			s := t.Seats[(h.DealerIdx+i)%len(t.Seats)]
			if !s.InHand {
				continue
			}
			s.Hole = append(s.Hole, t.draw())
		}
	}
	for _, s := range t.Seats {
		if s.InHand {
			t.emit(events.HoleCardsDealt{TableID: t.ID, HandID: h.ID, SeatID: s.ID, Cards: append(cards.Stack{}, s.Hole...)})
		}
	}

	// blinds: heads-up the dealer posts the small blind
	var sbIdx int
	if len(seatIDs) == 2 {
		sbIdx = h.DealerIdx
	} else {
		sbIdx = t.nextInHandIdx(h.DealerIdx)
	}
	bbIdx := t.nextInHandIdx(sbIdx)
	t.postBlind(t.Seats[sbIdx], t.Rules.SmallBlind, true)
	t.postBlind(t.Seats[bbIdx], t.Rules.BigBlind, false)

	first, _ := t.nextCanActIdx(bbIdx)
	h.resetStreet(first)

	if t.streetDone() {
		t.advanceStage()
		return nil
	}
	t.emit(events.PlayerTurnStarted{TableID: t.ID, HandID: h.ID, Stage: string(h.Stage), SeatID: t.Seats[h.ActorIdx].ID})
	return nil
}

// postBlind posts a blind capped at the seat's stack; a short post is an
// implicit all-in.
func (t *Table) postBlind(s *Seat, amount int, small bool) {
	if amount > s.Stack {
		amount = s.Stack
	}
	s.pay(amount)
	t.emit(events.BlindPosted{TableID: t.ID, HandID: t.Hand.ID, SeatID: s.ID, Amount: amount, Small: small, AllIn: s.AllIn})
}

// ApplyAction applies a betting action from the given seat. It returns
// false when the action is a no-op: wrong turn, wrong stage, folded or
// all-in seat, or an unknown kind. The boundary is expected to send only
// legal actions; this re-validation is a defensive backstop.
func (t *Table) ApplyAction(seatID string, action Action) bool {
	h := t.Hand
	if h == nil || !h.Stage.Betting() {
		return false
	}
	idx := t.seatIndex(seatID)
	if idx < 0 || idx != h.ActorIdx {
		t.logger.Debug("dropped action from non-actor", zap.String("seat", seatID))
		return false
	}
	s := t.Seats[idx]
	if !s.canAct() {
		return false
	}
	action, ok := action.normalized()
	if !ok {
		return false
	}

	mb := t.maxBet()
	toCall := mb - s.Bet

	switch action.Kind {
	case ActionFold:
		s.Folded = true

	case ActionCheck:
		if toCall != 0 {
			t.logger.Debug("dropped check facing a bet", zap.String("seat", seatID), zap.Int("toCall", toCall))
			return false
		}

	case ActionCall:
		pay := toCall
		if pay > s.Stack {
			pay = s.Stack
		}
		s.pay(pay)

	case ActionBet, ActionRaise:
		raiseBy := action.Amount
		minBy := h.MinRaiseTo
		if minBy < t.Rules.BigBlind {
			minBy = t.Rules.BigBlind
		}
		if raiseBy < minBy {
			raiseBy = minBy
		}
		pay := toCall + raiseBy
		if pay > s.Stack {
			pay = s.Stack
		}
		s.pay(pay)
		if s.Bet > mb {
			h.MinRaiseTo = s.Bet - mb
			h.HasBetOrRaise = true
			h.LastRaiserIdx = idx
		}
	}

	t.emit(events.ActionApplied{
		TableID: t.ID,
		HandID:  h.ID,
		Stage:   string(h.Stage),
		SeatID:  s.ID,
		Kind:    string(action.Kind),
		Amount:  s.Bet,
		AllIn:   s.AllIn,
		Pot:     t.PotTotal(),
	})

	t.afterAction(idx)
	return true
}

// afterAction re-evaluates round completion and either advances the stage
// or passes the turn. idx is the seat that just acted (or was folded out).
func (t *Table) afterAction(idx int) {
	h := t.Hand
	if t.streetDone() {
		t.advanceStage()
		return
	}

	next, wrapped := t.nextCanActIdx(idx)
	if h.HasBetOrRaise {
		if t.allCanActMatched() {
			t.advanceStage()
			return
		}
	} else if wrapped {
		// a full pass with no bet or raise closes the street
		t.advanceStage()
		return
	}

	h.ActorIdx = next
	t.emit(events.PlayerTurnStarted{TableID: t.ID, HandID: h.ID, Stage: string(h.Stage), SeatID: t.Seats[next].ID})
}

// streetDone covers the structural completion cases that need no turn
// bookkeeping: nobody left who can act, or a single possible actor whose
// bet already matches the table maximum.
func (t *Table) streetDone() bool {
	var lone *Seat
	n := 0
	for _, s := range t.Seats {
		if s.canAct() {
			lone = s
			n++
		}
	}
	if n == 0 {
		return true
	}
	if n == 1 {
		return lone.Bet == t.maxBet()
	}
	return false
}

func (t *Table) allCanActMatched() bool {
	mb := t.maxBet()
	for _, s := range t.Seats {
		if s.canAct() && s.Bet != mb {
			return false
		}
	}
	return true
}

// advanceStage sweeps the street's bets into the pot and deals the next
// street, or settles when the hand is decided or the river is complete.
// Streets where no further action is possible are skipped through.
func (t *Table) advanceStage() {
	h := t.Hand
	t.sweepBets()
	t.emit(events.BettingRoundEnded{TableID: t.ID, HandID: h.ID, Stage: string(h.Stage), Pot: h.Pot})

	if t.liveCount() <= 1 || h.Stage == StageRiver {
		t.settle()
		return
	}

	t.dealNextStreet()

	h.MinRaiseTo = t.Rules.BigBlind
	first, _ := t.nextCanActIdx(h.DealerIdx)
	h.resetStreet(first)

	t.emit(events.StageAdvanced{
		TableID:   t.ID,
		HandID:    h.ID,
		Stage:     string(h.Stage),
		Community: append(cards.Stack{}, h.Community...),
		Pot:       h.Pot,
	})

	if t.streetDone() {
		t.advanceStage()
		return
	}
	t.emit(events.PlayerTurnStarted{TableID: t.ID, HandID: h.ID, Stage: string(h.Stage), SeatID: t.Seats[h.ActorIdx].ID})
}

// dealNextStreet burns and deals the community cards for the street after
// the current one.
func (t *Table) dealNextStreet() {
	h := t.Hand
	t.burn()
	switch h.Stage {
	case StagePreflop:
		h.Community = append(h.Community, t.draw(), t.draw(), t.draw())
		h.Stage = StageFlop
	case StageFlop:
		h.Community = append(h.Community, t.draw())
		h.Stage = StageTurn
	case StageTurn:
		h.Community = append(h.Community, t.draw())
		h.Stage = StageRiver
	}
}

// ForceAdvance ends the current hand immediately: remaining community
// cards are dealt without further betting and the hand is settled. Used by
// the host override and the stall watchdog.
func (t *Table) ForceAdvance() bool {
	h := t.Hand
	if h == nil || !h.Stage.Betting() {
		return false
	}
	t.emit(events.HandForced{TableID: t.ID, HandID: h.ID, Stage: string(h.Stage)})
	t.sweepBets()
	for t.liveCount() > 1 && h.Stage != StageRiver {
		t.dealNextStreet()
	}
	t.settle()
	return true
}

// TimeoutCurrentActor records the stall against the silent seat and then
// force-advances the hand.
func (t *Table) TimeoutCurrentActor() bool {
	h := t.Hand
	if h == nil || !h.Stage.Betting() || h.ActorIdx < 0 {
		return false
	}
	t.emit(events.PlayerTimedOut{TableID: t.ID, HandID: h.ID, Stage: string(h.Stage), SeatID: t.Seats[h.ActorIdx].ID})
	return t.ForceAdvance()
}

// settle distributes the pot: refunds first, then each side pot to the
// best eligible hand(s). Busted seats are removed afterwards.
func (t *Table) settle() {
	h := t.Hand
	t.sweepBets()
	h.Stage = StageShowdown

	var winners []string
	live := t.liveSeats()

	if len(live) == 1 {
		// no contest, no evaluation needed
		s := live[0]
		s.Stack += h.Pot
		winners = append(winners, s.ID)
		t.emit(events.PotAwarded{TableID: t.ID, HandID: h.ID, SeatID: s.ID, Amount: h.Pot, PotIndex: 0, Category: "uncontested"})
		h.Pot = 0
	} else {
		st := SettlePots(t.Seats)

		for _, s := range t.Seats {
			if amount := st.Refunds[s.ID]; amount > 0 {
				s.Stack += amount
				h.Pot -= amount
				t.emit(events.PotRefunded{TableID: t.ID, HandID: h.ID, SeatID: s.ID, Amount: amount})
			}
		}

		for potIdx, pot := range st.Pots {
			winners = append(winners, t.awardPot(potIdx, pot)...)
		}
	}

	stacks := make(map[string]int, len(t.Seats))
	for _, s := range t.Seats {
		stacks[s.ID] = s.Stack
	}
	t.emit(events.HandEnded{TableID: t.ID, HandID: h.ID, FinalPot: h.Pot, Winners: winners, Stacks: stacks})
	t.logger.Info("hand settled",
		zap.String("table", t.ID),
		zap.String("hand", h.ID),
		zap.Strings("winners", winners))

	t.removeBustedSeats()

	// a table that cannot seat another hand goes back to the lobby
	if t.fundedCount() < 2 {
		t.Hand = nil
	}
}

// awardPot evaluates the eligible hands for one pot and splits it among
// the winners, flooring the share and handing odd chips to winners in
// ascending seat order. Returns the winning seat IDs.
func (t *Table) awardPot(potIdx int, pot Pot) []string {
	h := t.Hand

	var contenders []*Seat
	var strengths []Strength
	for _, id := range pot.EligibleIDs {
		s := t.SeatByID(id)
		if s == nil {
			continue
		}
		strength, err := t.evaluator.Evaluate(append(append(cards.Stack{}, s.Hole...), h.Community...))
		if err != nil {
			t.logger.DPanic("hand evaluation failed",
				zap.String("seat", s.ID),
				zap.Strings("hole", s.Hole.Strings()),
				zap.Strings("community", h.Community.Strings()),
				zap.Error(err))
			continue
		}
		contenders = append(contenders, s)
		strengths = append(strengths, strength)
	}
	if len(contenders) == 0 {
		return nil
	}

	winnerIdxs := t.evaluator.Winners(strengths)
	share := pot.Amount / len(winnerIdxs)
	remainder := pot.Amount % len(winnerIdxs)

	var ids []string
	for k, wi := range winnerIdxs {
		s := contenders[wi]
		amount := share
		if k < remainder {
			amount++
		}
		s.Stack += amount
		h.Pot -= amount
		ids = append(ids, s.ID)
		t.emit(events.PotAwarded{
			TableID:  t.ID,
			HandID:   h.ID,
			SeatID:   s.ID,
			Amount:   amount,
			PotIndex: potIdx,
			Category: strengths[wi].Category,
		})
	}
	return ids
}

// MarkDisconnected folds a seat whose transport link dropped mid-hand.
// Its chips and history remain until settlement. Distinct from a fold
// action in both event stream and audit trail.
func (t *Table) MarkDisconnected(seatID string) bool {
	idx := t.seatIndex(seatID)
	if idx < 0 {
		return false
	}
	s := t.Seats[idx]
	h := t.Hand
	if h == nil || !h.Stage.Betting() || !s.live() {
		return false
	}
	s.Folded = true
	t.emit(events.PlayerDisconnected{TableID: t.ID, HandID: h.ID, SeatID: s.ID})

	if idx == h.ActorIdx {
		t.afterAction(idx)
	} else if t.streetDone() || (h.HasBetOrRaise && t.allCanActMatched()) {
		t.advanceStage()
	}
	return true
}

// RemoveSeat removes a participant. Mid-hand the seat is folded and its
// chips stay in play until settlement; the physical removal happens when
// the hand ends.
func (t *Table) RemoveSeat(seatID string) bool {
	idx := t.seatIndex(seatID)
	if idx < 0 {
		return false
	}
	s := t.Seats[idx]
	if t.Hand != nil && t.Hand.Stage.Betting() && s.InHand {
		s.leaving = true
		if s.live() {
			return t.MarkDisconnected(seatID)
		}
		return true
	}
	t.removeAt(idx)
	t.emit(events.PlayerLeft{TableID: t.ID, SeatID: seatID})
	return true
}

// Reset clears the whole table back to an empty lobby.
func (t *Table) Reset() {
	t.Seats = nil
	t.Hand = nil
	t.buttonIdx = -1
	t.emit(events.TableReset{TableID: t.ID})
}

func (t *Table) removeBustedSeats() {
	for i := len(t.Seats) - 1; i >= 0; i-- {
		s := t.Seats[i]
		if s.Stack <= 0 {
			t.emit(events.SeatBusted{TableID: t.ID, HandID: t.Hand.ID, SeatID: s.ID})
			t.removeAt(i)
		} else if s.leaving {
			t.removeAt(i)
			t.emit(events.PlayerLeft{TableID: t.ID, SeatID: s.ID})
		}
	}
}

// removeAt drops the seat at index i and keeps seat indices and the
// button position consistent.
func (t *Table) removeAt(i int) {
	t.Seats = append(t.Seats[:i], t.Seats[i+1:]...)
	for j, s := range t.Seats {
		s.Index = j
	}
	if t.buttonIdx >= i {
		t.buttonIdx--
	}
	if t.Hand != nil && t.Hand.DealerIdx >= i && t.Hand.DealerIdx > 0 {
		t.Hand.DealerIdx--
	}
}

// --- rotation and chip helpers ---

// nextInHandIdx returns the next seat index after idx (wrapping) that is
// dealt into the hand. During StartHand, before the hand exists, InHand
// simply means funded.
func (t *Table) nextInHandIdx(idx int) int {
	n := len(t.Seats)
	for i := 1; i <= n; i++ {
		j := ((idx + i) % n + n) % n
		if t.Seats[j].InHand {
			return j
		}
	}
	return -1
}

// nextCanActIdx returns the next seat after idx that may act, and whether
// the rotation passed the street's first-actor position on the way. All-in
// seats are skipped for acting but still counted for the wraparound.
func (t *Table) nextCanActIdx(idx int) (int, bool) {
	h := t.Hand
	wrapped := false
	n := len(t.Seats)
	for i := 1; i <= n; i++ {
		j := (idx + i) % n
		if h != nil && j == h.RoundFirstIdx {
			wrapped = true
		}
		if t.Seats[j].canAct() {
			return j, wrapped
		}
	}
	return -1, wrapped
}

func (t *Table) maxBet() int {
	mb := 0
	for _, s := range t.Seats {
		if s.Bet > mb {
			mb = s.Bet
		}
	}
	return mb
}

func (t *Table) sweepBets() {
	for _, s := range t.Seats {
		t.Hand.Pot += s.Bet
		s.Bet = 0
	}
}

func (t *Table) liveSeats() []*Seat {
	var live []*Seat
	for _, s := range t.Seats {
		if s.live() {
			live = append(live, s)
		}
	}
	return live
}

func (t *Table) liveCount() int {
	return len(t.liveSeats())
}

// PotTotal is the swept pot plus all live street bets.
func (t *Table) PotTotal() int {
	total := 0
	if t.Hand != nil {
		total = t.Hand.Pot
	}
	for _, s := range t.Seats {
		total += s.Bet
	}
	return total
}

// ChipTotal sums every stack plus the pot; invariant across all actions
// within a hand.
func (t *Table) ChipTotal() int {
	total := t.PotTotal()
	for _, s := range t.Seats {
		total += s.Stack
	}
	return total
}

func (t *Table) draw() cards.Card {
	card, err := t.Hand.deck.Draw()
	if err != nil {
		// unreachable with the seat cap; indicates a programming defect
		t.logger.DPanic("deck underflow", zap.String("hand", t.Hand.ID), zap.Error(err))
	}
	return card
}

func (t *Table) burn() {
	if err := t.Hand.deck.Burn(); err != nil {
		t.logger.DPanic("deck underflow on burn", zap.String("hand", t.Hand.ID), zap.Error(err))
	}
}
