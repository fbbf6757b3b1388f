package domain

// ActionKind enumerates the closed set of betting actions. Inbound payloads
// are decoded into this tagged type at the boundary so that malformed
// shapes are a validation-time concern, not a runtime one.
type ActionKind string

const (
	ActionFold  ActionKind = "fold"
	ActionCheck ActionKind = "check"
	ActionCall  ActionKind = "call"
	ActionBet   ActionKind = "bet"
	ActionRaise ActionKind = "raise"
)

// Action is a betting action as submitted by a seat. Amount is only
// meaningful for bet/raise, where it is the raise increment above the
// current table maximum bet.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Amount int        `json:"amount,omitempty"`
}

// normalized clamps monetary input into a non-negative integer before any
// arithmetic touches it, and reports whether the kind is known at all.
func (a Action) normalized() (Action, bool) {
	switch a.Kind {
	case ActionFold, ActionCheck, ActionCall, ActionBet, ActionRaise:
	default:
		return Action{}, false
	}
	if a.Amount < 0 {
		a.Amount = 0
	}
	return a, true
}
