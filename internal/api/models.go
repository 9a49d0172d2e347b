package api

import (
	"time"

	"github.com/studyowl/studyowl-api/internal/domain"
	"github.com/studyowl/studyowl-api/internal/service/study"
)

// CardResponse represents the response data for a card
type CardResponse struct {
	ID             string     `json:"id"`
	DeckID         string     `json:"deck_id"`
	Front          string     `json:"front"`
	Back           string     `json:"back"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	EaseFactor     float64    `json:"ease_factor"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	TotalReviews   int        `json:"total_reviews"`
	CorrectReviews int        `json:"correct_reviews"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SessionResponse represents the response data for a study session
type SessionResponse struct {
	DeckID          string         `json:"deck_id"`
	State           string         `json:"state"`
	Queue           []CardResponse `json:"queue"`
	Cursor          int            `json:"cursor"`
	Answers         []int          `json:"answers"`
	Flags           []bool         `json:"flags"`
	AnsweredCount   int            `json:"answered_count"`
	ProgressPercent float64        `json:"progress_percent"`
	Score           int            `json:"score"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      *time.Time     `json:"finished_at,omitempty"`
	ElapsedSeconds  float64        `json:"elapsed_seconds"`
}

// cardToResponse converts a domain.Card to a CardResponse
func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:             card.ID.String(),
		DeckID:         card.DeckID.String(),
		Front:          card.Front,
		Back:           card.Back,
		IntervalDays:   card.IntervalDays,
		Repetitions:    card.Repetitions,
		EaseFactor:     card.EaseFactor,
		NextReviewAt:   card.NextReviewAt,
		LastReviewedAt: card.LastReviewedAt,
		TotalReviews:   card.TotalReviews,
		CorrectReviews: card.CorrectReviews,
		CreatedAt:      card.CreatedAt,
		UpdatedAt:      card.UpdatedAt,
	}
}

// cardsToResponse converts a slice of cards to response form.
// An empty queue serializes as [] rather than null.
func cardsToResponse(cards []*domain.Card) []CardResponse {
	responses := make([]CardResponse, 0, len(cards))
	for _, card := range cards {
		responses = append(responses, cardToResponse(card))
	}
	return responses
}

// snapshotToResponse converts a study.Snapshot to a SessionResponse
func snapshotToResponse(snap *study.Snapshot) SessionResponse {
	answers := make([]int, 0, len(snap.Answers))
	for _, grade := range snap.Answers {
		answers = append(answers, int(grade))
	}

	flags := snap.Flags
	if flags == nil {
		flags = []bool{}
	}

	return SessionResponse{
		DeckID:          snap.DeckID.String(),
		State:           string(snap.State),
		Queue:           cardsToResponse(snap.Queue),
		Cursor:          snap.Cursor,
		Answers:         answers,
		Flags:           flags,
		AnsweredCount:   snap.AnsweredCount,
		ProgressPercent: snap.ProgressPercent,
		Score:           snap.Score,
		StartedAt:       snap.StartedAt,
		FinishedAt:      snap.FinishedAt,
		ElapsedSeconds:  snap.ElapsedSeconds,
	}
}
