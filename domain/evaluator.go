package domain

import "holdemd/cards"

// Strength is a comparable hand-strength value produced by the ranking
// collaborator. Higher scores beat lower ones; equal scores tie.
type Strength struct {
	Score    int16
	Category string
}

// Evaluator ranks hands. The engine never derives hand categories itself;
// it treats ranking as a capability supplied by this collaborator.
type Evaluator interface {
	// Evaluate returns the strength of the best five-card hand contained
	// in the given cards. At least five cards must be supplied.
	Evaluate(stack cards.Stack) (Strength, error)

	// Winners returns the indices of the maximal strengths, ties included.
	Winners(strengths []Strength) []int
}
