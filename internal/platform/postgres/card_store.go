// Package postgres provides PostgreSQL-backed implementations of the store
// interfaces, using database/sql with the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/studyowl/studyowl-api/internal/domain"
	"github.com/studyowl/studyowl-api/internal/platform/logger"
	"github.com/studyowl/studyowl-api/internal/store"
)

// CardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a new PostgreSQL implementation of the CardStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewCardStore(db store.DBTX, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

const cardColumns = `id, deck_id, front, back, interval_days, repetitions,
	ease_factor, next_review_at, last_reviewed_at, total_reviews,
	correct_reviews, created_at, updated_at`

// CreateMultiple implements store.CardStore.CreateMultiple.
// Run it within a transaction (WithTx + store.RunInTransaction) when the
// batch must be atomic.
func (s *CardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during create",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	for _, card := range cards {
		_, err := s.db.ExecContext(
			ctx,
			query,
			card.ID,
			card.DeckID,
			card.Front,
			card.Back,
			card.IntervalDays,
			card.Repetitions,
			card.EaseFactor,
			card.NextReviewAt,
			card.LastReviewedAt,
			card.TotalReviews,
			card.CorrectReviews,
			card.CreatedAt,
			card.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to create card",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()),
				slog.String("deck_id", card.DeckID.String()))
			return MapError(err)
		}
	}

	log.Debug("cards created successfully", slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.CardStore.GetByID.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCardNotFound
	}
	if err != nil {
		log.Error("failed to get card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, MapError(err)
	}

	return card, nil
}

// LoadAll implements store.CardStore.LoadAll. Cards come back in creation
// order so repeated loads of an unchanged deck are identical.
func (s *CardStore) LoadAll(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE deck_id = $1 ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, deckID)
	if err != nil {
		log.Error("failed to load cards",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return cards, nil
}

// Update implements store.CardStore.Update.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *CardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE cards
		SET front = $2, back = $3, interval_days = $4, repetitions = $5,
			ease_factor = $6, next_review_at = $7, last_reviewed_at = $8,
			total_reviews = $9, correct_reviews = $10, updated_at = $11
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.Front,
		card.Back,
		card.IntervalDays,
		card.Repetitions,
		card.EaseFactor,
		card.NextReviewAt,
		card.LastReviewedAt,
		card.TotalReviews,
		card.CorrectReviews,
		card.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		return store.ErrCardNotFound
	}

	log.Debug("card updated successfully",
		slog.String("card_id", card.ID.String()),
		slog.Int("interval_days", card.IntervalDays),
		slog.Time("next_review_at", card.NextReviewAt))
	return nil
}

// Delete implements store.CardStore.Delete.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		return store.ErrCardNotFound
	}

	log.Debug("card deleted successfully", slog.String("card_id", id.String()))
	return nil
}

// WithTx implements store.CardStore.WithTx.
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanCard.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var lastReviewedAt sql.NullTime

	err := row.Scan(
		&card.ID,
		&card.DeckID,
		&card.Front,
		&card.Back,
		&card.IntervalDays,
		&card.Repetitions,
		&card.EaseFactor,
		&card.NextReviewAt,
		&lastReviewedAt,
		&card.TotalReviews,
		&card.CorrectReviews,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastReviewedAt.Valid {
		at := lastReviewedAt.Time.UTC()
		card.LastReviewedAt = &at
	}
	card.NextReviewAt = card.NextReviewAt.UTC()
	card.CreatedAt = card.CreatedAt.UTC()
	card.UpdatedAt = card.UpdatedAt.UTC()

	return &card, nil
}
