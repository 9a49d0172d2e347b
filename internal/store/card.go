package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/studyowl/studyowl-api/internal/domain"
)

// CardStore defines the interface for card data persistence.
//
// The scheduling core treats the card collection as borrowed-and-returned:
// LoadAll supplies an immutable snapshot, the scheduling engine computes new
// Card values, and Update writes them back. The store never participates in
// scheduling decisions.
type CardStore interface {
	// CreateMultiple saves multiple cards to the store.
	// When multiple cards must be created atomically, run this within a
	// transaction via WithTx and store.RunInTransaction.
	//
	// All cards must be valid according to domain validation rules.
	// Returns ErrInvalidEntity wrapping the validation error otherwise.
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// LoadAll retrieves every card belonging to the given deck.
	// A deck with no cards yields an empty slice, not an error.
	LoadAll(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error)

	// Update persists a card's current state, including all scheduling
	// fields. Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically through store.RunInTransaction.
	WithTx(tx *sql.Tx) CardStore
}
