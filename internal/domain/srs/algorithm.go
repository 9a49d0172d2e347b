package srs

import (
	"math"
	"time"

	"github.com/studyowl/studyowl-api/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor for a review grade.
//
// The ease factor controls how fast intervals grow for well-recalled cards.
// The adjustment is the classic SM-2 formula:
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// where q is the grade. At q=5 the delta is +0.1, at q=4 it is exactly 0,
// and lower grades pull the ease factor down. The result is clamped to
// params.MinEaseFactor so a card can never become impossibly hard.
func calculateNewEaseFactor(currentEF float64, grade domain.Grade, params *Params) float64 {
	q := float64(grade)
	newEF := currentEF + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the interval in days until the next review.
//
// A grade below the success threshold is a lapse: the streak restarts and the
// card comes back after params.LapseInterval days regardless of prior state.
// On success the interval follows the SM-2 ladder: the fixed first and second
// intervals, then multiplicative growth by the ease factor. The ease factor
// used here is the card's value before the ease update for this review.
func calculateNewInterval(
	currentInterval int,
	newRepetitions int,
	easeFactor float64,
	grade domain.Grade,
	params *Params,
) int {
	if !grade.IsSuccess() {
		return params.LapseInterval
	}

	switch newRepetitions {
	case 1:
		return params.FirstInterval
	case 2:
		return params.SecondInterval
	default:
		return int(math.Round(float64(currentInterval) * easeFactor))
	}
}

// calculateNextCard produces the card's next memory state for a review grade,
// following copy-on-write semantics: the input card is never modified.
//
// The returned card satisfies the scheduling invariants: the ease factor never
// drops below the configured floor, a lapse always resets repetitions to zero,
// the next review time is exactly now plus the new interval, and the review
// counters each grow by at most one.
func calculateNextCard(
	card *domain.Card,
	grade domain.Grade,
	now time.Time,
	params *Params,
) *domain.Card {
	next := card.Clone()

	if grade.IsSuccess() {
		next.Repetitions = card.Repetitions + 1
		next.CorrectReviews = card.CorrectReviews + 1
	} else {
		next.Repetitions = 0
	}

	next.IntervalDays = calculateNewInterval(
		card.IntervalDays,
		next.Repetitions,
		card.EaseFactor,
		grade,
		params,
	)

	next.EaseFactor = calculateNewEaseFactor(card.EaseFactor, grade, params)

	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	next.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)
	next.TotalReviews = card.TotalReviews + 1
	next.UpdatedAt = now

	return next
}
