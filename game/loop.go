// Package game runs one table as a single-goroutine actor. The loop owns
// the domain.Table outright: player actions, host commands and timer
// firings all arrive as messages on one inbox and are applied to
// completion, one at a time. Observers only ever see fully-settled state.
package game

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"holdemd/audit"
	"holdemd/domain"
	"holdemd/domain/events"
)

// Loop drives a table. It owns the stall watchdog and the inter-hand
// timer; both are cancellable tasks whose cancellation is idempotent and
// whose firings are discarded when stale.
type Loop struct {
	table *domain.Table
	inbox chan Msg

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger   *zap.Logger
	auditLog *audit.Log
	store    *audit.Store

	// broadcast is invoked after every settled mutation so the transport
	// can push fresh snapshots. Never called mid-transition.
	broadcast func()

	watchdogGen   uint64
	watchdogTimer *time.Timer
	nextHandGen   uint64
	nextHandTimer *time.Timer
	nextHandArmed bool

	pending []events.Event
}

// NewLoop wires a loop around the given table. auditLog, store and
// broadcast may be nil.
func NewLoop(parent context.Context, table *domain.Table, auditLog *audit.Log, store *audit.Store, logger *zap.Logger) *Loop {
	ctx, cancel := context.WithCancel(parent)
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loop{
		table:    table,
		inbox:    make(chan Msg, 64),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
		auditLog: auditLog,
		store:    store,
	}
	table.RegisterEventHandler(l.collectEvent)
	return l
}

// SetBroadcast registers the snapshot push callback. Must be called
// before Start.
func (l *Loop) SetBroadcast(fn func()) {
	l.broadcast = fn
}

// Start begins processing messages.
func (l *Loop) Start() {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.run()
	}()
}

// Stop shuts the loop down and waits for it to finish.
func (l *Loop) Stop() {
	l.cancel()
	l.wg.Wait()
}

// Submit delivers a message to the loop. It is safe from any goroutine.
func (l *Loop) Submit(msg Msg) {
	select {
	case l.inbox <- msg:
	case <-l.ctx.Done():
	}
}

// View fetches a snapshot synchronously.
func (l *Loop) View(seatID string, full bool) domain.TableView {
	reply := make(chan domain.TableView, 1)
	l.Submit(GetView{SeatID: seatID, Full: full, Reply: reply})
	select {
	case view := <-reply:
		return view
	case <-l.ctx.Done():
		return domain.TableView{}
	}
}

func (l *Loop) collectEvent(event events.Event) {
	l.pending = append(l.pending, event)
}

func (l *Loop) run() {
	defer l.disarmWatchdog()
	defer l.disarmNextHand()

	for {
		select {
		case <-l.ctx.Done():
			return
		case msg := <-l.inbox:
			l.handle(msg)
		}
	}
}

func (l *Loop) handle(msg Msg) {
	mutated := false

	switch m := msg.(type) {
	case SeatJoin:
		_, err := l.table.SeatPlayer(m.SeatID, m.Name, m.Stack)
		if m.Reply != nil {
			m.Reply <- err
		}
		mutated = err == nil

	case SeatAction:
		mutated = l.table.ApplyAction(m.SeatID, m.Action)

	case SeatDisconnect:
		mutated = l.table.MarkDisconnected(m.SeatID)

	case HostStart:
		l.disarmNextHand()
		if err := l.table.StartHand(); err != nil {
			l.logger.Warn("start hand refused", zap.String("table", l.table.ID), zap.Error(err))
		} else {
			mutated = true
		}

	case HostForceAdvance:
		l.disarmNextHand()
		mutated = l.table.ForceAdvance()
		if m.StartNext && l.table.CanStartHand() {
			if err := l.table.StartHand(); err == nil {
				mutated = true
			}
		}

	case HostReset:
		l.disarmWatchdog()
		l.disarmNextHand()
		l.table.Reset()
		mutated = true

	case HostRemoveSeat:
		mutated = l.table.RemoveSeat(m.SeatID)

	case GetView:
		if m.Full {
			m.Reply <- l.table.BuildFullView()
		} else {
			m.Reply <- l.table.BuildSeatView(m.SeatID)
		}

	case watchdogFired:
		if m.gen == l.watchdogGen {
			mutated = l.table.TimeoutCurrentActor()
		}

	case nextHandFired:
		l.nextHandArmed = false
		if m.gen == l.nextHandGen && l.table.CanStartHand() {
			if err := l.table.StartHand(); err == nil {
				mutated = true
			}
		}

	case Shutdown:
		l.cancel()
		return
	}

	if mutated {
		l.flushAudit()
		if l.broadcast != nil {
			l.broadcast()
		}
		l.syncTimers()
	}
}

// syncTimers brings both timers in line with the table's post-mutation
// stage: the watchdog is armed only during betting streets and re-armed
// by every applied mutation; the inter-hand timer is armed once a settled
// hand leaves enough funded seats for another.
func (l *Loop) syncTimers() {
	if l.table.Stage().Betting() {
		l.armWatchdog()
	} else {
		l.disarmWatchdog()
	}

	if !l.table.Stage().Betting() && l.table.CanStartHand() {
		l.armNextHand()
	} else {
		l.disarmNextHand()
	}
}

func (l *Loop) armWatchdog() {
	timeout := l.table.Rules.TurnTimeout
	if timeout <= 0 {
		return
	}
	l.watchdogGen++
	gen := l.watchdogGen
	if l.watchdogTimer != nil {
		l.watchdogTimer.Stop()
	}
	l.watchdogTimer = time.AfterFunc(timeout, func() {
		l.Submit(watchdogFired{gen: gen})
	})
}

func (l *Loop) disarmWatchdog() {
	l.watchdogGen++
	if l.watchdogTimer != nil {
		l.watchdogTimer.Stop()
	}
}

func (l *Loop) armNextHand() {
	if l.nextHandArmed {
		return
	}
	delay := l.table.Rules.NextHandDelay
	if delay <= 0 {
		return
	}
	l.nextHandGen++
	gen := l.nextHandGen
	if l.nextHandTimer != nil {
		l.nextHandTimer.Stop()
	}
	l.nextHandTimer = time.AfterFunc(delay, func() {
		l.Submit(nextHandFired{gen: gen})
	})
	l.nextHandArmed = true
}

func (l *Loop) disarmNextHand() {
	l.nextHandGen++
	l.nextHandArmed = false
	if l.nextHandTimer != nil {
		l.nextHandTimer.Stop()
	}
}

// flushAudit converts the events collected during the mutation into audit
// entries, stamped against the now-settled table state.
func (l *Loop) flushAudit() {
	pending := l.pending
	l.pending = nil
	if l.auditLog == nil && l.store == nil {
		return
	}
	for _, event := range pending {
		entry := l.entryFor(event)
		if l.auditLog != nil {
			l.auditLog.Append(entry)
		}
		if l.store != nil {
			if err := l.store.Insert(l.ctx, entry); err != nil {
				l.logger.Error("audit store insert failed", zap.Error(err))
			}
		}
	}
}

func (l *Loop) entryFor(event events.Event) audit.Entry {
	t := l.table
	entry := audit.Entry{
		At:      time.Now().UTC(),
		TableID: t.ID,
		Stage:   string(t.Stage()),
		Event:   event.Name(),
		Pot:     t.PotTotal(),
		Stacks:  make(map[string]int, len(t.Seats)),
	}
	for _, s := range t.Seats {
		entry.Stacks[s.ID] = s.Stack
	}
	if t.Hand != nil {
		entry.HandID = t.Hand.ID
	}

	fill := func(seatID string) {
		entry.SeatID = seatID
		if s := t.SeatByID(seatID); s != nil {
			entry.Stack = s.Stack
			entry.HoleCards = s.Hole.Strings()
		}
	}

	switch e := event.(type) {
	case events.ActionApplied:
		fill(e.SeatID)
		entry.HandID = e.HandID
		entry.Action = e.Kind
		entry.Amount = e.Amount
	case events.BlindPosted:
		fill(e.SeatID)
		entry.HandID = e.HandID
		entry.Action = "blind"
		entry.Amount = e.Amount
	case events.PotAwarded:
		fill(e.SeatID)
		entry.HandID = e.HandID
		entry.Amount = e.Amount
	case events.PotRefunded:
		fill(e.SeatID)
		entry.HandID = e.HandID
		entry.Amount = e.Amount
	case events.HandEnded:
		entry.HandID = e.HandID
	case events.PlayerTimedOut:
		fill(e.SeatID)
		entry.HandID = e.HandID
	case events.PlayerDisconnected:
		fill(e.SeatID)
		entry.HandID = e.HandID
	case events.SeatBusted:
		entry.SeatID = e.SeatID
		entry.HandID = e.HandID
	case events.HoleCardsDealt:
		fill(e.SeatID)
		entry.HandID = e.HandID
	case events.PlayerSeated:
		fill(e.SeatID)
		entry.Amount = e.Stack
	case events.PlayerLeft:
		entry.SeatID = e.SeatID
	case events.PlayerTurnStarted:
		entry.SeatID = e.SeatID
	}
	return entry
}
