package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front text is empty.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card's back text is empty.
	ErrCardBackEmpty = errors.New("card back cannot be empty")

	// ErrCardInvalidInterval is returned when the review interval is negative.
	ErrCardInvalidInterval = errors.New("interval must be greater than or equal to 0")

	// ErrCardInvalidEaseFactor is returned when the ease factor is below the
	// algorithm's hard floor.
	ErrCardInvalidEaseFactor = errors.New("ease factor must be at least 1.3")

	// ErrCardInvalidRepetitions is returned when the repetition streak is negative.
	ErrCardInvalidRepetitions = errors.New("repetitions must be greater than or equal to 0")
)

// Default scheduling values for freshly created cards.
const (
	// DefaultEaseFactor is the starting growth multiplier for new cards.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the hard floor the ease factor never drops below.
	MinEaseFactor = 1.3
)

// Card is the unit of learning content together with its spaced-repetition
// memory state. Content fields (Front, Back) are opaque to the scheduler.
//
// The memory state is mutated exclusively through the srs scheduling engine,
// which returns a new Card value rather than modifying in place.
type Card struct {
	ID             uuid.UUID  `json:"id"`
	DeckID         uuid.UUID  `json:"deck_id"`
	Front          string     `json:"front"`
	Back           string     `json:"back"`
	IntervalDays   int        `json:"interval_days"`    // Days until next review once scheduled
	Repetitions    int        `json:"repetitions"`      // Consecutive successful reviews since the last lapse
	EaseFactor     float64    `json:"ease_factor"`      // Growth multiplier, floored at 1.3
	NextReviewAt   time.Time  `json:"next_review_at"`   // When the card becomes due
	LastReviewedAt *time.Time `json:"last_reviewed_at"` // Nil until first graded
	TotalReviews   int        `json:"total_reviews"`
	CorrectReviews int        `json:"correct_reviews"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewCard creates a schedulable Card from a front/back content pair, stamping
// the initial scheduling fields: zero interval, zero repetitions, default ease
// factor, due immediately, never reviewed.
// Returns an error if validation fails.
func NewCard(deckID uuid.UUID, front, back string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:             uuid.New(),
		DeckID:         deckID,
		Front:          front,
		Back:           back,
		IntervalDays:   0,
		Repetitions:    0,
		EaseFactor:     DefaultEaseFactor,
		NextReviewAt:   now,
		LastReviewedAt: nil,
		TotalReviews:   0,
		CorrectReviews: 0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if strings.TrimSpace(c.Front) == "" {
		return ErrCardFrontEmpty
	}

	if strings.TrimSpace(c.Back) == "" {
		return ErrCardBackEmpty
	}

	if c.IntervalDays < 0 {
		return ErrCardInvalidInterval
	}

	if c.Repetitions < 0 {
		return ErrCardInvalidRepetitions
	}

	if c.EaseFactor < MinEaseFactor {
		return ErrCardInvalidEaseFactor
	}

	return nil
}

// Clone returns a deep copy of the card. The scheduling engine works on
// copies so that the same Card value can safely appear in multiple in-memory
// collections (e.g. the full deck and a due queue).
func (c *Card) Clone() *Card {
	clone := *c
	if c.LastReviewedAt != nil {
		at := *c.LastReviewedAt
		clone.LastReviewedAt = &at
	}
	return &clone
}

// IsDue reports whether the card is due for review as of the given time.
func (c *Card) IsDue(asOf time.Time) bool {
	return !c.NextReviewAt.After(asOf)
}
