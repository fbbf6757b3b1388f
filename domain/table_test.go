package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdemd/cards"
	"holdemd/domain/events"
)

// scriptedEvaluator ranks hands by the seat's first hole card, letting
// tests decide showdowns without caring what the shuffled deck dealt.
type scriptedEvaluator struct {
	scores map[string]int16
}

func newScriptedEvaluator() *scriptedEvaluator {
	return &scriptedEvaluator{scores: map[string]int16{}}
}

func (e *scriptedEvaluator) favor(s *Seat, score int16) {
	e.scores[s.Hole[0].String()] = score
}

func (e *scriptedEvaluator) Evaluate(stack cards.Stack) (Strength, error) {
	return Strength{Score: e.scores[stack[0].String()], Category: "scripted"}, nil
}

func (e *scriptedEvaluator) Winners(strengths []Strength) []int {
	best := strengths[0].Score
	for _, s := range strengths[1:] {
		if s.Score > best {
			best = s.Score
		}
	}
	var winners []int
	for i, s := range strengths {
		if s.Score == best {
			winners = append(winners, i)
		}
	}
	return winners
}

func testRules() TableRules {
	return TableRules{SmallBlind: 10, BigBlind: 20, MaxSeats: 6}
}

func newTestTable(t *testing.T, eval Evaluator, stacks ...int) *Table {
	t.Helper()
	table := NewTable("t1", "test table", testRules(), eval, rand.New(rand.NewSource(42)), nil)
	names := []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	for i, stack := range stacks {
		_, err := table.SeatPlayer(names[i], names[i], stack)
		require.NoError(t, err)
	}
	return table
}

func act(t *testing.T, table *Table, seatID string, kind ActionKind, amount int) {
	t.Helper()
	require.True(t, table.ApplyAction(seatID, Action{Kind: kind, Amount: amount}),
		"action %s by %s was dropped", kind, seatID)
}

func TestSeatPlayerValidation(t *testing.T) {
	table := NewTable("t1", "test", TableRules{SmallBlind: 10, BigBlind: 20, MaxSeats: 2}, nil, nil, nil)

	_, err := table.SeatPlayer("a", "a", 100)
	require.NoError(t, err)

	_, err = table.SeatPlayer("a", "a again", 100)
	assert.ErrorIs(t, err, ErrAlreadySeated)

	_, err = table.SeatPlayer("broke", "broke", 0)
	assert.ErrorIs(t, err, ErrNoChips)

	_, err = table.SeatPlayer("b", "b", 100)
	require.NoError(t, err)

	_, err = table.SeatPlayer("c", "c", 100)
	assert.ErrorIs(t, err, ErrTableFull)
}

func TestStartHandNeedsTwoFundedSeats(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500)
	assert.False(t, table.CanStartHand())
	assert.ErrorIs(t, table.StartHand(), ErrNotEnoughPlayers)
}

func TestStartHandHeadsUpBlinds(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500)
	require.NoError(t, table.StartHand())

	h := table.Hand
	require.NotNil(t, h)
	assert.Equal(t, StagePreflop, h.Stage)
	assert.Equal(t, 0, h.DealerIdx)

	// heads-up the dealer posts the small blind and acts first preflop
	assert.Equal(t, 10, table.Seats[0].Bet)
	assert.Equal(t, 490, table.Seats[0].Stack)
	assert.Equal(t, 20, table.Seats[1].Bet)
	assert.Equal(t, 480, table.Seats[1].Stack)
	assert.Equal(t, 0, h.ActorIdx)

	for _, s := range table.Seats {
		assert.Len(t, s.Hole, 2)
	}
	assert.ErrorIs(t, table.StartHand(), ErrHandInProgress)
}

func TestStartHandRejectedDuringHand(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500)
	require.NoError(t, table.StartHand())
	assert.False(t, table.CanStartHand())
}

func TestCheckedDownHandSplitsOnTie(t *testing.T) {
	eval := newScriptedEvaluator()
	table := newTestTable(t, eval, 500, 500)
	require.NoError(t, table.StartHand())

	// identical script scores, so the pot splits
	act(t, table, "alice", ActionCall, 0)
	act(t, table, "bob", ActionCheck, 0)
	assert.Equal(t, StageFlop, table.Stage())
	assert.Equal(t, 40, table.Hand.Pot)

	for _, stage := range []Stage{StageTurn, StageRiver, StageShowdown} {
		act(t, table, "bob", ActionCheck, 0)
		act(t, table, "alice", ActionCheck, 0)
		assert.Equal(t, stage, table.Stage())
	}

	assert.Equal(t, 500, table.Seats[0].Stack)
	assert.Equal(t, 500, table.Seats[1].Stack)
	assert.Equal(t, 0, table.Hand.Pot)
}

func TestFoldEndsHandUncontested(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500)
	require.NoError(t, table.StartHand())

	act(t, table, "alice", ActionFold, 0)

	assert.Equal(t, StageShowdown, table.Stage())
	assert.Equal(t, 490, table.SeatByID("alice").Stack)
	assert.Equal(t, 510, table.SeatByID("bob").Stack)
}

func TestChipConservationThroughHand(t *testing.T) {
	eval := newScriptedEvaluator()
	table := newTestTable(t, eval, 500, 300, 800)
	require.NoError(t, table.StartHand())
	eval.favor(table.SeatByID("carol"), 50)

	total := table.ChipTotal()
	assert.Equal(t, 1600, total)

	steps := []struct {
		seat   string
		kind   ActionKind
		amount int
	}{
		{"alice", ActionRaise, 40}, // dealer raises to 60
		{"bob", ActionCall, 0},
		{"carol", ActionCall, 0},
		{"bob", ActionCheck, 0}, // flop
		{"carol", ActionBet, 30},
		{"alice", ActionFold, 0},
		{"bob", ActionCall, 0},
		{"bob", ActionCheck, 0}, // turn
		{"carol", ActionCheck, 0},
		{"bob", ActionCheck, 0}, // river
		{"carol", ActionCheck, 0},
	}
	for _, step := range steps {
		act(t, table, step.seat, step.kind, step.amount)
		assert.Equal(t, total, table.ChipTotal(), "chips leaked after %s by %s", step.kind, step.seat)
	}

	assert.Equal(t, StageShowdown, table.Stage())
	assert.Equal(t, 950, table.SeatByID("carol").Stack)
	assert.Equal(t, 440, table.SeatByID("alice").Stack)
	assert.Equal(t, 210, table.SeatByID("bob").Stack)
}

func TestIllegalActionsAreDropped(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500, 500)

	// no hand yet
	assert.False(t, table.ApplyAction("alice", Action{Kind: ActionCheck}))

	require.NoError(t, table.StartHand())
	before := table.BuildFullView()

	// wrong turn
	assert.False(t, table.ApplyAction("bob", Action{Kind: ActionCall}))
	// unknown seat
	assert.False(t, table.ApplyAction("nobody", Action{Kind: ActionFold}))
	// check facing the big blind
	assert.False(t, table.ApplyAction("alice", Action{Kind: ActionCheck}))
	// unknown kind
	assert.False(t, table.ApplyAction("alice", Action{Kind: ActionKind("splash")}))

	assert.Equal(t, before, table.BuildFullView())
}

func TestRaiseBelowMinimumIsLifted(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500, 500)
	require.NoError(t, table.StartHand())

	// raise-by 5 is below the big blind minimum and becomes raise-by 20
	act(t, table, "alice", ActionRaise, 5)
	assert.Equal(t, 40, table.SeatByID("alice").Bet)
	assert.Equal(t, 20, table.Hand.MinRaiseTo)
}

func TestReRaiseSetsMinimumIncrement(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500, 500)
	require.NoError(t, table.StartHand())

	act(t, table, "alice", ActionRaise, 60) // to 80
	assert.Equal(t, 60, table.Hand.MinRaiseTo)

	act(t, table, "bob", ActionRaise, 100) // to 180
	assert.Equal(t, 100, table.Hand.MinRaiseTo)
	assert.Equal(t, 180, table.SeatByID("bob").Bet)
}

func TestMinRaiseResetsEachStreet(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500)
	require.NoError(t, table.StartHand())

	act(t, table, "alice", ActionRaise, 80)
	act(t, table, "bob", ActionCall, 0)
	require.Equal(t, StageFlop, table.Stage())
	assert.Equal(t, 20, table.Hand.MinRaiseTo)
}

func TestShortStackCallIsAllIn(t *testing.T) {
	eval := newScriptedEvaluator()
	table := newTestTable(t, eval, 500, 50)
	require.NoError(t, table.StartHand())
	eval.favor(table.SeatByID("bob"), 10)

	act(t, table, "alice", ActionRaise, 80) // to 100, covering bob
	act(t, table, "bob", ActionCall, 0)

	bob := table.SeatByID("bob")
	assert.True(t, bob.AllIn)
	assert.Equal(t, 50, bob.Committed)

	// betting is over, board runs out and the hand settles
	assert.Equal(t, StageShowdown, table.Stage())
	assert.Len(t, table.Hand.Community, 5)

	// bob wins the main pot, alice's uncalled 50 comes back
	assert.Equal(t, 100, bob.Stack)
	assert.Equal(t, 450, table.SeatByID("alice").Stack)
}

func TestThreeWayAllInBuildsSidePot(t *testing.T) {
	eval := newScriptedEvaluator()
	table := newTestTable(t, eval, 100, 300, 300)
	require.NoError(t, table.StartHand())

	alice := table.SeatByID("alice")
	bob := table.SeatByID("bob")
	carol := table.SeatByID("carol")
	eval.favor(alice, 100)
	eval.favor(bob, 50)
	eval.favor(carol, 10)

	act(t, table, "alice", ActionRaise, 80) // all-in for 100
	act(t, table, "bob", ActionRaise, 200)  // all-in for 300
	act(t, table, "carol", ActionCall, 0)   // all-in for 300

	assert.Equal(t, StageShowdown, table.Stage())

	// alice wins the 300 main pot, bob the 400 side pot
	assert.Equal(t, 300, alice.Stack)
	assert.Equal(t, 400, bob.Stack)

	// carol busted and is gone
	assert.Nil(t, table.SeatByID("carol"))
	assert.Len(t, table.Seats, 2)
}

func TestOddChipGoesToLowestSeatIndex(t *testing.T) {
	eval := newScriptedEvaluator()
	rules := TableRules{SmallBlind: 5, BigBlind: 10, MaxSeats: 6}
	table := NewTable("t1", "test", rules, eval, rand.New(rand.NewSource(7)), nil)
	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := table.SeatPlayer(name, name, 500)
		require.NoError(t, err)
	}
	require.NoError(t, table.StartHand())

	// bob's folded small blind makes the pot 25, odd for two winners
	act(t, table, "alice", ActionCall, 0)
	act(t, table, "bob", ActionFold, 0)
	act(t, table, "carol", ActionCheck, 0)

	for table.Stage().Betting() {
		require.True(t, table.ApplyAction(table.Seats[table.Hand.ActorIdx].ID, Action{Kind: ActionCheck}))
	}

	assert.Equal(t, 503, table.SeatByID("alice").Stack)
	assert.Equal(t, 495, table.SeatByID("bob").Stack)
	assert.Equal(t, 502, table.SeatByID("carol").Stack)
}

func TestRoundCompletionBetVectors(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500, 500)
	table.Hand = &Hand{Stage: StageFlop, HasBetOrRaise: true}
	for _, s := range table.Seats {
		s.InHand = true
		s.Bet = 50
	}

	// three live seats at 50/50/50 after a bet: the street is complete
	assert.True(t, table.allCanActMatched())

	// 50/50/0 with one seat still to act: it is not
	table.Seats[2].Bet = 0
	assert.False(t, table.allCanActMatched())
	assert.False(t, table.streetDone())
}

func TestBigBlindGetsOption(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500, 500)
	require.NoError(t, table.StartHand())

	act(t, table, "alice", ActionCall, 0)
	act(t, table, "bob", ActionCall, 0)

	// still preflop: the big blind may check or raise
	require.Equal(t, StagePreflop, table.Stage())
	assert.Equal(t, "carol", table.Seats[table.Hand.ActorIdx].ID)

	act(t, table, "carol", ActionRaise, 40)
	require.Equal(t, StagePreflop, table.Stage())
	assert.Equal(t, "alice", table.Seats[table.Hand.ActorIdx].ID)
}

func TestRotationSkipsFoldedAndAllIn(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 40, 500, 500)
	require.NoError(t, table.StartHand())

	// seats: alice dealer, bob SB (short), carol BB, dave first to act
	act(t, table, "dave", ActionRaise, 40) // to 60
	act(t, table, "alice", ActionFold, 0)
	act(t, table, "bob", ActionCall, 0) // all-in for 40
	act(t, table, "carol", ActionCall, 0)

	require.Equal(t, StageFlop, table.Stage())
	// folded alice and all-in bob are skipped; carol acts first
	assert.Equal(t, "carol", table.Seats[table.Hand.ActorIdx].ID)

	act(t, table, "carol", ActionCheck, 0)
	assert.Equal(t, "dave", table.Seats[table.Hand.ActorIdx].ID)
}

func TestForceAdvanceRunsOutBoard(t *testing.T) {
	eval := newScriptedEvaluator()
	table := newTestTable(t, eval, 500, 500, 500)
	require.NoError(t, table.StartHand())
	eval.favor(table.SeatByID("bob"), 9)

	require.True(t, table.ForceAdvance())

	assert.Equal(t, StageShowdown, table.Stage())
	assert.Len(t, table.Hand.Community, 5)

	// only the blinds were in: bob's 10 contests carol's first 10, the
	// uncalled half of the big blind comes back
	assert.Equal(t, 510, table.SeatByID("bob").Stack)
	assert.Equal(t, 490, table.SeatByID("carol").Stack)
	assert.Equal(t, 500, table.SeatByID("alice").Stack)
	assert.False(t, table.ForceAdvance())
}

func TestTimeoutForcesHandEnd(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500)
	require.NoError(t, table.StartHand())

	var timedOut string
	table.RegisterEventHandler(func(ev events.Event) {
		if e, ok := ev.(events.PlayerTimedOut); ok {
			timedOut = e.SeatID
		}
	})

	require.True(t, table.TimeoutCurrentActor())
	assert.Equal(t, "alice", timedOut)
	assert.Equal(t, StageShowdown, table.Stage())
	assert.False(t, table.TimeoutCurrentActor())
}

func TestDisconnectFoldsSeat(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500, 500)
	require.NoError(t, table.StartHand())

	// not the actor: hand continues without bob
	require.True(t, table.MarkDisconnected("bob"))
	assert.True(t, table.SeatByID("bob").Folded)
	assert.Equal(t, StagePreflop, table.Stage())

	// the current actor disconnecting passes the turn
	require.True(t, table.MarkDisconnected("alice"))
	assert.Equal(t, StageShowdown, table.Stage())
	assert.Equal(t, 510, table.SeatByID("carol").Stack)
}

func TestRemoveSeatMidHandIsDeferred(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500, 500)
	require.NoError(t, table.StartHand())

	require.True(t, table.RemoveSeat("carol"))
	// carol is folded but still occupies the seat until settlement
	assert.Len(t, table.Seats, 3)
	assert.True(t, table.SeatByID("carol").Folded)

	table.ForceAdvance()
	assert.Nil(t, table.SeatByID("carol"))
	assert.Len(t, table.Seats, 2)
}

func TestRemoveSeatInLobbyIsImmediate(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500, 500)
	require.True(t, table.RemoveSeat("bob"))
	assert.Len(t, table.Seats, 2)
	// indices stay contiguous
	assert.Equal(t, 1, table.SeatByID("carol").Index)
	assert.False(t, table.RemoveSeat("bob"))
}

func TestButtonRotatesBetweenHands(t *testing.T) {
	eval := newScriptedEvaluator()
	table := newTestTable(t, eval, 500, 500, 500)

	require.NoError(t, table.StartHand())
	assert.Equal(t, 0, table.Hand.DealerIdx)
	table.ForceAdvance()

	require.NoError(t, table.StartHand())
	assert.Equal(t, 1, table.Hand.DealerIdx)
}

func TestHeadsUpBustReturnsToLobby(t *testing.T) {
	eval := newScriptedEvaluator()
	table := newTestTable(t, eval, 500, 100)
	require.NoError(t, table.StartHand())
	eval.favor(table.SeatByID("alice"), 99)

	act(t, table, "alice", ActionRaise, 200)
	act(t, table, "bob", ActionCall, 0)

	// bob busted: one seat cannot play on, so the table idles in the lobby
	assert.Equal(t, StageLobby, table.Stage())
	assert.Nil(t, table.Hand)
	assert.Len(t, table.Seats, 1)
	assert.Equal(t, 600, table.SeatByID("alice").Stack)
	assert.False(t, table.CanStartHand())
}

func TestResetClearsTable(t *testing.T) {
	table := newTestTable(t, newScriptedEvaluator(), 500, 500)
	require.NoError(t, table.StartHand())

	table.Reset()
	assert.Empty(t, table.Seats)
	assert.Nil(t, table.Hand)
	assert.Equal(t, StageLobby, table.Stage())
}
