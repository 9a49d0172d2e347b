// Package memory provides an in-memory implementation of the store
// interfaces. It backs tests and local development, and doubles as the
// reference implementation of the repository contract the scheduling core
// is written against.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/studyowl/studyowl-api/internal/domain"
	"github.com/studyowl/studyowl-api/internal/store"
)

// CardStore is a thread-safe, map-backed implementation of store.CardStore.
// Cards are stored and returned as deep copies so callers can never alias
// the store's internal state.
type CardStore struct {
	mu    sync.RWMutex
	cards map[uuid.UUID]*domain.Card
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

// NewCardStore creates an empty in-memory card store.
func NewCardStore() *CardStore {
	return &CardStore{
		cards: make(map[uuid.UUID]*domain.Card),
	}
}

// CreateMultiple implements store.CardStore.CreateMultiple.
func (s *CardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything first so a failure inserts nothing.
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		if _, exists := s.cards[card.ID]; exists {
			return store.ErrDuplicate
		}
	}

	for _, card := range cards {
		s.cards[card.ID] = card.Clone()
	}
	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card.Clone(), nil
}

// LoadAll implements store.CardStore.LoadAll. Cards are returned in creation
// order so repeated loads of an unchanged deck are identical.
func (s *CardStore) LoadAll(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cards := make([]*domain.Card, 0)
	for _, card := range s.cards {
		if card.DeckID == deckID {
			cards = append(cards, card.Clone())
		}
	}

	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CreatedAt.Before(cards[j].CreatedAt)
		}
		return cards[i].ID.String() < cards[j].ID.String()
	})

	return cards, nil
}

// Update implements store.CardStore.Update.
func (s *CardStore) Update(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	s.cards[card.ID] = card.Clone()
	return nil
}

// Delete implements store.CardStore.Delete.
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(s.cards, id)
	return nil
}

// WithTx implements store.CardStore.WithTx. The in-memory store has no
// transaction support; operations are individually atomic under the mutex.
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return s
}
