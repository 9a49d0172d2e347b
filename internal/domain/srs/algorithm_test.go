package srs

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/studyowl/studyowl-api/internal/domain"
)

func testCard(repetitions, intervalDays int, easeFactor float64) *domain.Card {
	return &domain.Card{
		ID:           uuid.New(),
		DeckID:       uuid.New(),
		Front:        "front",
		Back:         "back",
		Repetitions:  repetitions,
		IntervalDays: intervalDays,
		EaseFactor:   easeFactor,
		NextReviewAt: time.Now().UTC(),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

func TestCalculateNewEaseFactor(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		current  float64
		grade    domain.Grade
		expected float64
	}{
		{
			name:     "Grade 5 increases ease factor by 0.1",
			current:  2.5,
			grade:    5,
			expected: 2.6,
		},
		{
			name:     "Grade 4 leaves ease factor unchanged",
			current:  2.7,
			grade:    4,
			expected: 2.7,
		},
		{
			name:     "Grade 3 decreases ease factor by 0.14",
			current:  2.5,
			grade:    3,
			expected: 2.36,
		},
		{
			name:     "Grade 2 decreases ease factor by 0.32",
			current:  2.5,
			grade:    2,
			expected: 2.18,
		},
		{
			name:     "Grade 1 decreases ease factor by 0.54",
			current:  2.5,
			grade:    1,
			expected: 1.96,
		},
		{
			name:     "Floor clamps ease factor at 1.3",
			current:  1.3,
			grade:    1,
			expected: 1.3, // formula would yield 0.76
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNewEaseFactor(tc.current, tc.grade, params)
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("Expected ease factor %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestCalculateNewInterval(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		current  int
		newReps  int
		ef       float64
		grade    domain.Grade
		expected int
	}{
		{
			name:     "Lapse resets interval to 1",
			current:  40,
			newReps:  0,
			ef:       2.5,
			grade:    1,
			expected: 1,
		},
		{
			name:     "First successful review",
			current:  0,
			newReps:  1,
			ef:       2.5,
			grade:    5,
			expected: 1,
		},
		{
			name:     "Second successful review",
			current:  1,
			newReps:  2,
			ef:       2.6,
			grade:    5,
			expected: 6,
		},
		{
			name:     "Third review grows by ease factor",
			current:  6,
			newReps:  3,
			ef:       2.7,
			grade:    4,
			expected: 16, // round(6 * 2.7) = round(16.2)
		},
		{
			name:     "Mature card grows by ease factor",
			current:  40,
			newReps:  6,
			ef:       1.3,
			grade:    3,
			expected: 52, // round(40 * 1.3)
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNewInterval(tc.current, tc.newReps, tc.ef, tc.grade, params)
			if got != tc.expected {
				t.Errorf("Expected interval %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestCalculateNextCardScenarios(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name             string
		card             *domain.Card
		grade            domain.Grade
		wantRepetitions  int
		wantIntervalDays int
		wantEaseFactor   float64
	}{
		{
			name:             "New card graded 5",
			card:             testCard(0, 0, 2.5),
			grade:            5,
			wantRepetitions:  1,
			wantIntervalDays: 1,
			wantEaseFactor:   2.6,
		},
		{
			name:             "Second review graded 5",
			card:             testCard(1, 1, 2.6),
			grade:            5,
			wantRepetitions:  2,
			wantIntervalDays: 6,
			wantEaseFactor:   2.7,
		},
		{
			name:             "Third review graded 4",
			card:             testCard(2, 6, 2.7),
			grade:            4,
			wantRepetitions:  3,
			wantIntervalDays: 16,
			wantEaseFactor:   2.7,
		},
		{
			name:             "Mature card lapses at the ease floor",
			card:             testCard(5, 40, 1.3),
			grade:            1,
			wantRepetitions:  0,
			wantIntervalDays: 1,
			wantEaseFactor:   1.3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next := calculateNextCard(tc.card, tc.grade, now, params)

			if next.Repetitions != tc.wantRepetitions {
				t.Errorf("Expected repetitions %d, got %d", tc.wantRepetitions, next.Repetitions)
			}
			if next.IntervalDays != tc.wantIntervalDays {
				t.Errorf("Expected interval %d, got %d", tc.wantIntervalDays, next.IntervalDays)
			}
			if math.Abs(next.EaseFactor-tc.wantEaseFactor) > 1e-9 {
				t.Errorf("Expected ease factor %v, got %v", tc.wantEaseFactor, next.EaseFactor)
			}

			if next.LastReviewedAt == nil || !next.LastReviewedAt.Equal(now) {
				t.Errorf("Expected last reviewed at %v, got %v", now, next.LastReviewedAt)
			}

			wantNext := now.AddDate(0, 0, next.IntervalDays)
			if !next.NextReviewAt.Equal(wantNext) {
				t.Errorf("Expected next review at %v, got %v", wantNext, next.NextReviewAt)
			}

			if next.TotalReviews != tc.card.TotalReviews+1 {
				t.Errorf("Expected total reviews to grow by 1, got %d", next.TotalReviews)
			}
			wantCorrect := tc.card.CorrectReviews
			if tc.grade.IsSuccess() {
				wantCorrect++
			}
			if next.CorrectReviews != wantCorrect {
				t.Errorf("Expected correct reviews %d, got %d", wantCorrect, next.CorrectReviews)
			}
		})
	}
}

func TestEaseFactorNeverDropsBelowFloor(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	card := testCard(0, 0, 2.5)
	for i := 0; i < 50; i++ {
		card = calculateNextCard(card, 1, now, params)
		if card.EaseFactor < params.MinEaseFactor {
			t.Fatalf("Ease factor %v dropped below floor %v after %d lapses",
				card.EaseFactor, params.MinEaseFactor, i+1)
		}
		now = now.AddDate(0, 0, 1)
	}
}

func TestLapseAlwaysResetsState(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	cards := []*domain.Card{
		testCard(0, 0, 2.5),
		testCard(3, 15, 2.2),
		testCard(10, 200, 1.3),
	}

	for _, grade := range []domain.Grade{1, 2} {
		for _, card := range cards {
			next := calculateNextCard(card, grade, now, params)
			if next.Repetitions != 0 {
				t.Errorf("Expected repetitions 0 after lapse, got %d", next.Repetitions)
			}
			if next.IntervalDays != 1 {
				t.Errorf("Expected interval 1 after lapse, got %d", next.IntervalDays)
			}
		}
	}
}

func TestIntervalGrowthIsMonotonic(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	// Monotonic in ease factor for a fixed prior interval.
	prev := 0
	for ef := 1.3; ef <= 2.5; ef += 0.1 {
		next := calculateNextCard(testCard(2, 10, ef), 4, now, params)
		if next.IntervalDays < prev {
			t.Fatalf("Interval decreased from %d to %d as ease factor grew to %v",
				prev, next.IntervalDays, ef)
		}
		prev = next.IntervalDays
	}

	// Monotonic in prior interval for a fixed ease factor.
	prev = 0
	for interval := 6; interval <= 120; interval += 6 {
		next := calculateNextCard(testCard(2, interval, 2.0), 4, now, params)
		if next.IntervalDays < prev {
			t.Fatalf("Interval decreased from %d to %d as prior interval grew to %d",
				prev, next.IntervalDays, interval)
		}
		prev = next.IntervalDays
	}
}

func TestCalculateNextCardIsPure(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	card := testCard(2, 6, 2.7)
	original := card.Clone()

	first := calculateNextCard(card, 4, now, params)
	second := calculateNextCard(card, 4, now, params)

	if first.Repetitions != second.Repetitions ||
		first.IntervalDays != second.IntervalDays ||
		first.EaseFactor != second.EaseFactor ||
		!first.NextReviewAt.Equal(second.NextReviewAt) ||
		first.TotalReviews != second.TotalReviews ||
		first.CorrectReviews != second.CorrectReviews {
		t.Errorf("Identical inputs produced different outputs: %+v vs %+v", first, second)
	}
	if first.LastReviewedAt == nil || second.LastReviewedAt == nil ||
		!first.LastReviewedAt.Equal(*second.LastReviewedAt) {
		t.Errorf("Identical inputs produced different review timestamps")
	}

	// The input card must be untouched.
	if card.Repetitions != original.Repetitions ||
		card.IntervalDays != original.IntervalDays ||
		card.EaseFactor != original.EaseFactor ||
		card.TotalReviews != original.TotalReviews {
		t.Errorf("Input card was mutated: %+v", card)
	}
}
