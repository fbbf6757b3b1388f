package domain

import "sort"

// PotPreview is one contested band of the pot as shown to viewers before
// showdown. Eligible counts the non-folded seats whose committed total
// reaches the band's level.
type PotPreview struct {
	Amount   int `json:"amount"`
	Eligible int `json:"eligible"`
}

// Pot is one settled band awarded at showdown, restricted to the seats
// that may win it.
type Pot struct {
	Amount      int
	EligibleIDs []string
}

// Settlement is the full partition of a hand's committed chips: contested
// pots in ascending band order, plus unmatched money returned per seat.
type Settlement struct {
	Pots        []Pot
	Refunds     map[string]int
	TotalRefund int
}

// committedLevels returns the distinct positive committed amounts among
// the given seats, sorted ascending. Folded seats count: their chips are
// still in the pot.
func committedLevels(seats []*Seat) []int {
	distinct := map[int]bool{}
	for _, s := range seats {
		if s.Committed > 0 {
			distinct[s.Committed] = true
		}
	}
	levels := make([]int, 0, len(distinct))
	for l := range distinct {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	return levels
}

// PreviewPots computes the live side-pot view from the seats' committed
// contributions. Bands reachable by fewer than two non-folded seats are
// not reported: that money either comes back as a refund or goes to the
// sole remaining contender, which settlement handles.
func PreviewPots(seats []*Seat) []PotPreview {
	var pots []PotPreview
	prev := 0
	for _, level := range committedLevels(seats) {
		band := level - prev
		contributors := 0
		eligible := 0
		for _, s := range seats {
			if s.Committed < level {
				continue
			}
			contributors++
			if s.live() {
				eligible++
			}
		}
		if eligible >= 2 {
			pots = append(pots, PotPreview{Amount: band * contributors, Eligible: eligible})
		}
		prev = level
	}
	return pots
}

// SettlePots partitions the hand's committed chips into pots and refunds.
//
// Each band between consecutive committed levels is resolved on its own:
// a band only one seat reaches is unmatched money and is refunded in full;
// a band two or more seats reach becomes a pot sized by every contributor
// (folded chips do not vanish) but winnable only by the non-folded ones.
// The degenerate band with contributors but no live claimant is handed
// back one band-width per contributor.
//
// Invariant: sum of pot amounts plus TotalRefund equals the total
// committed this hand.
func SettlePots(seats []*Seat) Settlement {
	st := Settlement{Refunds: map[string]int{}}

	prev := 0
	for _, level := range committedLevels(seats) {
		band := level - prev
		var reachers []*Seat
		for _, s := range seats {
			if s.Committed >= level {
				reachers = append(reachers, s)
			}
		}

		if len(reachers) == 1 {
			// This seat bet more than anyone else could call.
			st.Refunds[reachers[0].ID] += band
			st.TotalRefund += band
			prev = level
			continue
		}

		var eligibleIDs []string
		for _, s := range reachers {
			if s.live() {
				eligibleIDs = append(eligibleIDs, s.ID)
			}
		}

		if len(eligibleIDs) == 0 {
			// All reachers folded after committing; there is no live
			// claimant, so the band is treated as never wagered.
			for _, s := range reachers {
				st.Refunds[s.ID] += band
				st.TotalRefund += band
			}
			prev = level
			continue
		}

		st.Pots = append(st.Pots, Pot{
			Amount:      band * len(reachers),
			EligibleIDs: eligibleIDs,
		})
		prev = level
	}

	return st
}
