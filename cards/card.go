package cards

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

// Suits lists the four suits in canonical deck order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Value represents a card value
type Value string

const (
	Ace   Value = "A"
	King  Value = "K"
	Queen Value = "Q"
	Jack  Value = "J"
	Ten   Value = "10"
	Nine  Value = "9"
	Eight Value = "8"
	Seven Value = "7"
	Six   Value = "6"
	Five  Value = "5"
	Four  Value = "4"
	Three Value = "3"
	Two   Value = "2"
)

// Values lists the thirteen values in canonical deck order.
var Values = []Value{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// Card represents a playing card
type Card struct {
	Suit  Suit  `json:"suit"`
	Value Value `json:"value"`
}

// String returns the string representation of a card
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Value, c.Suit)
}

// Equals checks if two cards are equal
func (c Card) Equals(other Card) bool {
	return c.Suit == other.Suit && c.Value == other.Value
}

// Stack represents multiple cards
type Stack []Card

// NewStack creates a new stack from the given cards
func NewStack(cards ...Card) Stack {
	return cards
}

// Strings renders each card in the stack as shorthand text.
func (s Stack) Strings() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.String()
	}
	return out
}

var suitSuffixes = []struct {
	suffix string
	suit   Suit
}{
	{"♠", Spades}, {"s", Spades}, {"S", Spades},
	{"♥", Hearts}, {"h", Hearts}, {"H", Hearts},
	{"♦", Diamonds}, {"d", Diamonds}, {"D", Diamonds},
	{"♣", Clubs}, {"c", Clubs}, {"C", Clubs},
}

// CardFromString creates a card from a string representation
// e.g., "10♠" or "10s" or "10S" -> Card{Suit: Spades, Value: Ten}
func CardFromString(s string) (Card, error) {
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card shorthand: %s", s)
	}

	var suit Suit
	rest := ""
	for _, cand := range suitSuffixes {
		if strings.HasSuffix(s, cand.suffix) {
			suit = cand.suit
			rest = strings.TrimSuffix(s, cand.suffix)
			break
		}
	}
	if suit == "" {
		return Card{}, fmt.Errorf("invalid card suit in: %s", s)
	}

	var value Value
	switch rest {
	case "A":
		value = Ace
	case "K":
		value = King
	case "Q":
		value = Queen
	case "J":
		value = Jack
	case "10", "T":
		value = Ten
	case "9":
		value = Nine
	case "8":
		value = Eight
	case "7":
		value = Seven
	case "6":
		value = Six
	case "5":
		value = Five
	case "4":
		value = Four
	case "3":
		value = Three
	case "2":
		value = Two
	default:
		return Card{}, fmt.Errorf("invalid card value: %s", rest)
	}

	return Card{Suit: suit, Value: value}, nil
}

// StackFromStrings builds a stack from shorthand notation, e.g. "As", "10h".
func StackFromStrings(shorthands ...string) (Stack, error) {
	stack := make(Stack, 0, len(shorthands))
	for _, sh := range shorthands {
		card, err := CardFromString(sh)
		if err != nil {
			return nil, err
		}
		stack = append(stack, card)
	}
	return stack, nil
}
