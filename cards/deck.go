package cards

import (
	"errors"
	"math/rand"
)

// ErrEmptyDeck is returned when drawing or burning from an exhausted deck.
// With at most six seats a hand consumes 20 cards, so hitting this is a
// programming defect rather than a game situation.
var ErrEmptyDeck = errors.New("deck is empty")

// Deck holds the undealt remainder of a 52-card deck. Cards are consumed
// strictly from the top and never reused within a hand.
type Deck struct {
	cards Stack
}

// NewDeck52 creates a standard deck of 52 cards in canonical (suit, value) order.
func NewDeck52() *Deck {
	stack := make(Stack, 0, 52)
	for _, suit := range Suits {
		for _, value := range Values {
			stack = append(stack, Card{Suit: suit, Value: value})
		}
	}
	return &Deck{cards: stack}
}

// Shuffle permutes the deck in place using the provided source.
// Tests pass a seeded source; production uses a time-seeded one.
func (d *Deck) Shuffle(r *rand.Rand) {
	r.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Burn discards the top card without returning it.
func (d *Deck) Burn() error {
	_, err := d.Draw()
	return err
}

// Remaining reports how many cards are left.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
