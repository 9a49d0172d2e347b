package srs

import (
	"sort"
	"time"

	"github.com/studyowl/studyowl-api/internal/domain"
)

// SelectDue returns the cards due for review as of the given time, ordered by
// urgency: ascending next-review time, then ascending ease factor so harder
// cards surface first among equally-due cards, then ascending card ID so the
// ordering is deterministic for identical inputs.
//
// The input is treated as an immutable snapshot: SelectDue never mutates the
// cards or the slice, and returns a fresh slice holding the same pointers.
// Callers may invoke it repeatedly against a refreshed collection.
func SelectDue(cards []*domain.Card, asOf time.Time) []*domain.Card {
	due := make([]*domain.Card, 0, len(cards))
	for _, card := range cards {
		if card.IsDue(asOf) {
			due = append(due, card)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if !a.NextReviewAt.Equal(b.NextReviewAt) {
			return a.NextReviewAt.Before(b.NextReviewAt)
		}
		if a.EaseFactor != b.EaseFactor {
			return a.EaseFactor < b.EaseFactor
		}
		return a.ID.String() < b.ID.String()
	})

	return due
}
