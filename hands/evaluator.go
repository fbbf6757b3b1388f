// Package hands ranks poker hands for the table engine. It wraps
// github.com/paulhankin/poker, which scores hands as int16 values where a
// higher score beats a lower one.
package hands

import (
	"fmt"

	poker "github.com/paulhankin/poker"

	"holdemd/cards"
	"holdemd/domain"
)

// Evaluator implements domain.Evaluator on top of paulhankin/poker.
type Evaluator struct{}

func New() *Evaluator {
	return &Evaluator{}
}

// Evaluate returns the strength of the best five-card hand contained in
// the given cards. Five to seven cards are accepted; the engine's normal
// showdown path always supplies seven (two hole plus five community).
func (e *Evaluator) Evaluate(stack cards.Stack) (domain.Strength, error) {
	if len(stack) < 5 {
		return domain.Strength{}, fmt.Errorf("need at least 5 cards to evaluate, got %d", len(stack))
	}
	if len(stack) > 7 {
		return domain.Strength{}, fmt.Errorf("at most 7 cards can be evaluated, got %d", len(stack))
	}

	pcs := make([]poker.Card, len(stack))
	for i, c := range stack {
		pc, err := toLibraryCard(c)
		if err != nil {
			return domain.Strength{}, err
		}
		pcs[i] = pc
	}

	var score int16
	described := pcs
	switch len(pcs) {
	case 7:
		var a7 [7]poker.Card
		copy(a7[:], pcs)
		score = poker.Eval7(&a7)
	case 5:
		var a5 [5]poker.Card
		copy(a5[:], pcs)
		score = poker.Eval5(&a5)
	default:
		// Describe only handles 5 or 7 cards, so describe the subset
		var best5 [5]poker.Card
		score, best5 = bestFiveOfSix(pcs)
		described = best5[:]
	}

	category, err := poker.Describe(described)
	if err != nil {
		return domain.Strength{}, fmt.Errorf("describe hand: %w", err)
	}

	return domain.Strength{Score: score, Category: category}, nil
}

// Winners returns the indices of the maximal strengths, ties included.
func (e *Evaluator) Winners(strengths []domain.Strength) []int {
	if len(strengths) == 0 {
		return nil
	}
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

// bestFiveOfSix returns the score and cards of the best five-card subset
// of six cards.
func bestFiveOfSix(pcs []poker.Card) (int16, [5]poker.Card) {
	var best int16 = -1
	var bestFive [5]poker.Card
	var five [5]poker.Card
	for skip := 0; skip < len(pcs); skip++ {
		k := 0
		for i, c := range pcs {
			if i == skip {
				continue
			}
			five[k] = c
			k++
		}
		if score := poker.Eval5(&five); score > best {
			best = score
			bestFive = five
		}
	}
	return best, bestFive
}

// toLibraryCard converts an engine card to a library card. The library
// numbers ranks 1..13 with the ace low.
func toLibraryCard(c cards.Card) (poker.Card, error) {
	var zero poker.Card

	var suit poker.Suit
	switch c.Suit {
	case cards.Clubs:
		suit = poker.Club
	case cards.Diamonds:
		suit = poker.Diamond
	case cards.Hearts:
		suit = poker.Heart
	case cards.Spades:
		suit = poker.Spade
	default:
		return zero, fmt.Errorf("unknown suit %q", c.Suit)
	}

	var rank poker.Rank
	switch c.Value {
	case cards.Ace:
		rank = 1
	case cards.King:
		rank = 13
	case cards.Queen:
		rank = 12
	case cards.Jack:
		rank = 11
	case cards.Ten:
		rank = 10
	case cards.Nine:
		rank = 9
	case cards.Eight:
		rank = 8
	case cards.Seven:
		rank = 7
	case cards.Six:
		rank = 6
	case cards.Five:
		rank = 5
	case cards.Four:
		rank = 4
	case cards.Three:
		rank = 3
	case cards.Two:
		rank = 2
	default:
		return zero, fmt.Errorf("unknown value %q", c.Value)
	}

	return poker.MakeCard(suit, rank)
}
