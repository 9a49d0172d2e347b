package generation

import (
	"context"

	"github.com/google/uuid"
	"github.com/studyowl/studyowl-api/internal/domain"
)

// Generator defines the interface for generating flashcards from source text.
//
// Implementations produce fully schedulable Cards: each generated card
// carries the initial scheduling fields (zero interval, zero repetitions,
// default ease factor, due immediately). Malformed front/back pairs are
// rejected here, at the generation boundary, never by the scheduler.
type Generator interface {
	// GenerateCards creates up to count flashcards for the given deck based
	// on the provided source text.
	//
	// Returns ErrEmptySourceText when sourceText is empty, ErrContentBlocked
	// when the language model refuses the content, and ErrInvalidResponse
	// when the model's output cannot be turned into valid cards.
	GenerateCards(
		ctx context.Context,
		sourceText string,
		deckID uuid.UUID,
		count int,
	) ([]*domain.Card, error)
}
