// Package study implements the study-session workflow: selecting due cards,
// walking a learner through them in a stateful session, grading answers
// through the scheduling engine, and persisting the results.
package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/studyowl/studyowl-api/internal/domain"
)

// Session and service errors.
var (
	// ErrSessionActive indicates an attempt to start a session while one is
	// already in progress.
	ErrSessionActive = errors.New("a session is already active")

	// ErrNoActiveSession indicates a session action was attempted while no
	// session is active.
	ErrNoActiveSession = errors.New("no active session")

	// ErrAlreadyAnswered indicates the current queue position has already
	// been graded.
	ErrAlreadyAnswered = errors.New("current card already answered")

	// ErrIndexOutOfRange indicates a jump target outside the queue bounds.
	ErrIndexOutOfRange = errors.New("queue index out of range")

	// ErrEmptySubset indicates a retake filter matched no cards.
	ErrEmptySubset = errors.New("retake filter matched no cards")

	// ErrEmptyQueue indicates an attempt to start a session with no cards.
	ErrEmptyQueue = errors.New("cannot start session with empty queue")

	// ErrInvalidRetakeFilter indicates an unrecognized retake filter value.
	ErrInvalidRetakeFilter = errors.New("invalid retake filter")

	// ErrNoCardsDue indicates a deck has no cards due for review.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrSessionNotFound indicates no session exists for the given deck.
	ErrSessionNotFound = errors.New("session not found")
)

// ServiceError wraps study service errors with operation context.
type ServiceError struct {
	// Operation is the name of the operation that failed.
	Operation string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("study service %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError with the given operation and
// underlying error.
func NewServiceError(operation string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Err:       err,
	}
}

// Snapshot is a read-only view of a session's state, assembled for callers
// that render progress without touching the controller.
type Snapshot struct {
	DeckID          uuid.UUID      `json:"deck_id"`
	State           SessionState   `json:"state"`
	Queue           []*domain.Card `json:"queue"`
	Cursor          int            `json:"cursor"`
	Answers         []domain.Grade `json:"answers"`
	Flags           []bool         `json:"flags"`
	AnsweredCount   int            `json:"answered_count"`
	ProgressPercent float64        `json:"progress_percent"`
	Score           int            `json:"score"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      *time.Time     `json:"finished_at,omitempty"`
	ElapsedSeconds  float64        `json:"elapsed_seconds"`
}

// Service orchestrates card review: due-queue queries, per-deck study
// sessions, direct card grading, and card generation. Implementations are
// safe for concurrent use.
type Service interface {
	// DueCards returns the deck's cards due for review as of the given
	// time, in review order. The result is a snapshot; it does not mutate
	// any card.
	DueCards(ctx context.Context, deckID uuid.UUID, asOf time.Time) ([]*domain.Card, error)

	// StartSession starts a study session over the deck's due queue.
	// Returns ErrNoCardsDue when nothing is due and ErrSessionActive when a
	// session for the deck is already in progress.
	StartSession(ctx context.Context, deckID uuid.UUID) (*Snapshot, error)

	// Session returns the deck's session state, first reconciling the
	// session queue against the deck's current due set. A session whose
	// queue membership went stale is reset before the snapshot is taken.
	// Returns ErrSessionNotFound if no session exists for the deck.
	Session(ctx context.Context, deckID uuid.UUID) (*Snapshot, error)

	// SubmitAnswer grades the session's current card and persists the
	// updated scheduling state. The cursor stays put; call Advance to move
	// on. Returns ErrAlreadyAnswered if the position was already graded.
	SubmitAnswer(ctx context.Context, deckID uuid.UUID, grade domain.Grade) (*domain.Card, error)

	// Advance moves the session cursor forward, completing the session at
	// the last position.
	Advance(ctx context.Context, deckID uuid.UUID) (*Snapshot, error)

	// JumpTo moves the session cursor to the given queue position.
	JumpTo(ctx context.Context, deckID uuid.UUID, index int) (*Snapshot, error)

	// ToggleFlag flips the flag on the session's current position.
	ToggleFlag(ctx context.Context, deckID uuid.UUID) (*Snapshot, error)

	// EndSession completes the deck's session immediately.
	EndSession(ctx context.Context, deckID uuid.UUID) (*Snapshot, error)

	// Retake starts a fresh session over the subset of the finished queue
	// selected by the filter. Returns ErrEmptySubset when the filter
	// matches nothing.
	Retake(ctx context.Context, deckID uuid.UUID, filter RetakeFilter) (*Snapshot, error)

	// ReviewCard grades a single card outside any session and persists the
	// updated scheduling state.
	ReviewCard(ctx context.Context, cardID uuid.UUID, grade domain.Grade) (*domain.Card, error)

	// PostponeCard pushes a card's next review out by the given number of
	// days without touching its learning state.
	PostponeCard(ctx context.Context, cardID uuid.UUID, days int) (*domain.Card, error)

	// GenerateCards generates flashcards from source text and persists them
	// into the deck atomically.
	GenerateCards(ctx context.Context, deckID uuid.UUID, sourceText string, count int) ([]*domain.Card, error)
}
