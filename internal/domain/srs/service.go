package srs

import (
	"errors"
	"time"

	"github.com/studyowl/studyowl-api/internal/domain"
)

// Common errors
var (
	ErrNilCard      = errors.New("card cannot be nil")
	ErrInvalidGrade = domain.ErrInvalidGrade
	ErrInvalidDays  = errors.New("postpone days must be at least 1")
)

// Service defines the interface for scheduling engine operations.
// All operations are pure: they return new Card values and never modify
// their inputs, perform I/O, or keep hidden state. The caller is
// responsible for persisting the returned card.
type Service interface {
	// Grade computes the card's next memory state for a recall grade.
	// A grade outside [1,5] fails with ErrInvalidGrade and leaves the
	// card untouched.
	Grade(card *domain.Card, grade domain.Grade, now time.Time) (*domain.Card, error)

	// Postpone pushes the next review time forward by a number of days
	// without changing the card's memory state.
	Postpone(card *domain.Card, days int, now time.Time) (*domain.Card, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Grade implements the Service interface for calculating the next card state.
func (s *defaultService) Grade(
	card *domain.Card,
	grade domain.Grade,
	now time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if !grade.Valid() {
		return nil, ErrInvalidGrade
	}

	return calculateNextCard(card, grade, now, s.params), nil
}

// Postpone implements the Service interface for postponing reviews.
func (s *defaultService) Postpone(
	card *domain.Card,
	days int,
	now time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	next := card.Clone()
	next.NextReviewAt = card.NextReviewAt.AddDate(0, 0, days)
	next.UpdatedAt = now

	return next, nil
}
