package cards

import (
	"math/rand"
	"testing"
)

func TestNewDeck52(t *testing.T) {
	deck := NewDeck52()

	if deck.Remaining() != 52 {
		t.Errorf("Expected deck to have 52 cards, got %d", deck.Remaining())
	}

	// All cards must be unique
	seen := map[Card]bool{}
	for {
		card, err := deck.Draw()
		if err != nil {
			break
		}
		if seen[card] {
			t.Errorf("Duplicate card in deck: %s", card)
		}
		seen[card] = true
	}
	if len(seen) != 52 {
		t.Errorf("Expected 52 unique cards, got %d", len(seen))
	}
}

func TestShuffleDeck(t *testing.T) {
	original := NewDeck52()
	shuffled := NewDeck52()
	shuffled.Shuffle(rand.New(rand.NewSource(42)))

	if shuffled.Remaining() != original.Remaining() {
		t.Errorf("Shuffled deck length %d does not match original deck length %d",
			shuffled.Remaining(), original.Remaining())
	}

	// Check that cards moved (this is probabilistic but certain for a fixed seed)
	differences := 0
	for original.Remaining() > 0 {
		a, _ := original.Draw()
		b, _ := shuffled.Draw()
		if !a.Equals(b) {
			differences++
		}
	}
	if differences == 0 {
		t.Error("Shuffled deck is identical to original deck")
	}
}

func TestShuffleDeterministicForSeed(t *testing.T) {
	a := NewDeck52()
	b := NewDeck52()
	a.Shuffle(rand.New(rand.NewSource(7)))
	b.Shuffle(rand.New(rand.NewSource(7)))

	for a.Remaining() > 0 {
		ca, _ := a.Draw()
		cb, _ := b.Draw()
		if !ca.Equals(cb) {
			t.Fatalf("Same seed produced different decks: %s vs %s", ca, cb)
		}
	}
}

func TestDrawAndBurn(t *testing.T) {
	deck := NewDeck52()

	card, err := deck.Draw()
	if err != nil {
		t.Fatalf("Unexpected draw error: %v", err)
	}
	if deck.Remaining() != 51 {
		t.Errorf("Expected 51 cards after draw, got %d", deck.Remaining())
	}

	next, _ := deck.Draw()
	if card.Equals(next) {
		t.Error("Dealt card should not be dealt again")
	}

	if err := deck.Burn(); err != nil {
		t.Fatalf("Unexpected burn error: %v", err)
	}
	if deck.Remaining() != 49 {
		t.Errorf("Expected 49 cards after burn, got %d", deck.Remaining())
	}
}

func TestEmptyDeck(t *testing.T) {
	deck := NewDeck52()
	for i := 0; i < 52; i++ {
		if _, err := deck.Draw(); err != nil {
			t.Fatalf("Unexpected error at card %d: %v", i, err)
		}
	}

	if _, err := deck.Draw(); err != ErrEmptyDeck {
		t.Errorf("Expected ErrEmptyDeck, got %v", err)
	}
	if err := deck.Burn(); err != ErrEmptyDeck {
		t.Errorf("Expected ErrEmptyDeck on burn, got %v", err)
	}
}
