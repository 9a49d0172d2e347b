package study

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyowl/studyowl-api/internal/domain"
	"github.com/studyowl/studyowl-api/internal/domain/srs"
)

// sessionCard builds a due card for session tests.
func sessionCard(t *testing.T, deckID uuid.UUID, front string, due time.Time) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(deckID, front, front+" back")
	require.NoError(t, err)
	card.NextReviewAt = due
	return card
}

func newTestQueue(t *testing.T, n int, now time.Time) []*domain.Card {
	t.Helper()
	deckID := uuid.New()
	queue := make([]*domain.Card, 0, n)
	for i := 0; i < n; i++ {
		queue = append(queue, sessionCard(t, deckID, string(rune('a'+i)), now.Add(-time.Hour)))
	}
	return queue
}

func TestControllerLifecycle(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewController(srs.NewDefaultService())

	assert.Equal(t, StateIdle, c.State())

	_, err := c.Current()
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = c.AnswerCurrent(4, now)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.ErrorIs(t, c.Advance(now), ErrNoActiveSession)
	assert.ErrorIs(t, c.ToggleFlag(), ErrNoActiveSession)
	assert.ErrorIs(t, c.End(now), ErrNoActiveSession)

	queue := newTestQueue(t, 2, now)
	require.NoError(t, c.Start(queue, now))
	assert.Equal(t, StateActive, c.State())
	assert.Equal(t, 0, c.Cursor())
	assert.Equal(t, now, c.StartedAt())

	// A second start while active is rejected.
	assert.ErrorIs(t, c.Start(queue, now), ErrSessionActive)

	current, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, queue[0].ID, current.ID)

	// Advance through both positions; the second advance completes.
	require.NoError(t, c.Advance(now))
	assert.Equal(t, 1, c.Cursor())
	require.NoError(t, c.Advance(now.Add(time.Minute)))
	assert.Equal(t, StateComplete, c.State())
	assert.Equal(t, now.Add(time.Minute), c.FinishedAt())

	// Complete sessions accept no further actions.
	assert.ErrorIs(t, c.Advance(now), ErrNoActiveSession)
	_, err = c.AnswerCurrent(4, now)
	assert.ErrorIs(t, err, ErrNoActiveSession)

	// But a new session may be started.
	require.NoError(t, c.Start(queue, now.Add(time.Hour)))
	assert.Equal(t, StateActive, c.State())
}

func TestControllerStartEmptyQueue(t *testing.T) {
	t.Parallel()

	c := NewController(srs.NewDefaultService())
	err := c.Start(nil, time.Now())
	assert.ErrorIs(t, err, ErrEmptyQueue)
	assert.Equal(t, StateIdle, c.State())
}

func TestControllerAnswerCurrent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewController(srs.NewDefaultService())
	queue := newTestQueue(t, 2, now)
	require.NoError(t, c.Start(queue, now))

	graded, err := c.AnswerCurrent(5, now)
	require.NoError(t, err)
	assert.Equal(t, queue[0].ID, graded.ID)
	assert.Equal(t, 1, graded.Repetitions)
	assert.Equal(t, 1, graded.IntervalDays)

	// The session queue now holds the graded card.
	current, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, current.Repetitions)

	// The cursor did not move.
	assert.Equal(t, 0, c.Cursor())

	// Double answering is rejected and changes nothing.
	_, err = c.AnswerCurrent(3, now)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	current, err = c.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, current.TotalReviews)

	// An invalid grade does not consume the position.
	require.NoError(t, c.Advance(now))
	_, err = c.AnswerCurrent(0, now)
	assert.ErrorIs(t, err, domain.ErrInvalidGrade)
	_, err = c.AnswerCurrent(4, now)
	require.NoError(t, err)
}

func TestControllerJumpTo(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewController(srs.NewDefaultService())
	queue := newTestQueue(t, 3, now)
	require.NoError(t, c.Start(queue, now))

	_, err := c.AnswerCurrent(2, now)
	require.NoError(t, err)

	require.NoError(t, c.JumpTo(2))
	assert.Equal(t, 2, c.Cursor())

	// Jumping leaves answer state alone.
	answers := c.Answers()
	assert.Equal(t, domain.Grade(2), answers[0])
	assert.Equal(t, Unanswered, answers[2])

	assert.ErrorIs(t, c.JumpTo(-1), ErrIndexOutOfRange)
	assert.ErrorIs(t, c.JumpTo(3), ErrIndexOutOfRange)
	assert.Equal(t, 2, c.Cursor())
}

func TestControllerToggleFlag(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewController(srs.NewDefaultService())
	require.NoError(t, c.Start(newTestQueue(t, 2, now), now))

	require.NoError(t, c.ToggleFlag())
	assert.True(t, c.Flags()[0])

	require.NoError(t, c.ToggleFlag())
	assert.False(t, c.Flags()[0])

	// Flagging has no scheduling effect.
	current, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, current.TotalReviews)
}

func TestControllerRetakeWrong(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewController(srs.NewDefaultService())
	queue := newTestQueue(t, 3, now)
	require.NoError(t, c.Start(queue, now))

	// Answer position 0 with a failing grade, then skip the rest.
	_, err := c.AnswerCurrent(1, now)
	require.NoError(t, err)
	require.NoError(t, c.Advance(now))
	require.NoError(t, c.Advance(now))

	// Unanswered positions do not count as wrong.
	require.NoError(t, c.Retake(RetakeWrong, now.Add(time.Minute)))
	assert.Equal(t, StateActive, c.State())
	assert.Equal(t, 1, c.QueueLength())
	assert.Equal(t, 0, c.Cursor())

	retaken, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, queue[0].ID, retaken.ID)

	// Prior answers were discarded, so the card can be graded again.
	assert.Equal(t, Unanswered, c.Answers()[0])
	_, err = c.AnswerCurrent(4, now.Add(time.Minute))
	require.NoError(t, err)
}

func TestControllerRetakeFlagged(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewController(srs.NewDefaultService())
	queue := newTestQueue(t, 3, now)
	require.NoError(t, c.Start(queue, now))

	_, err := c.AnswerCurrent(5, now)
	require.NoError(t, err)
	require.NoError(t, c.Advance(now))
	require.NoError(t, c.ToggleFlag())
	require.NoError(t, c.Advance(now))
	require.NoError(t, c.ToggleFlag())
	require.NoError(t, c.End(now))

	require.NoError(t, c.Retake(RetakeFlagged, now))
	assert.Equal(t, 2, c.QueueLength())
	retakeQueue := c.Queue()
	assert.Equal(t, queue[1].ID, retakeQueue[0].ID)
	assert.Equal(t, queue[2].ID, retakeQueue[1].ID)
	assert.Equal(t, []bool{false, false}, c.Flags())
}

func TestControllerRetakeEmptySubset(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewController(srs.NewDefaultService())
	require.NoError(t, c.Start(newTestQueue(t, 2, now), now))

	// Everything answered correctly, nothing flagged.
	_, err := c.AnswerCurrent(5, now)
	require.NoError(t, err)
	require.NoError(t, c.Advance(now))
	_, err = c.AnswerCurrent(4, now)
	require.NoError(t, err)
	require.NoError(t, c.Advance(now))
	require.Equal(t, StateComplete, c.State())

	assert.ErrorIs(t, c.Retake(RetakeWrong, now), ErrEmptySubset)
	assert.ErrorIs(t, c.Retake(RetakeFlagged, now), ErrEmptySubset)
	assert.Equal(t, StateComplete, c.State())

	assert.ErrorIs(t, c.Retake(RetakeFilter("bogus"), now), ErrInvalidRetakeFilter)
}

func TestControllerReconcile(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	deckID := uuid.New()
	a := sessionCard(t, deckID, "a", now.Add(-2*time.Hour))
	b := sessionCard(t, deckID, "b", now.Add(-time.Hour))
	later := sessionCard(t, deckID, "c", now.Add(time.Hour))
	collection := []*domain.Card{a, b, later}

	c := NewController(srs.NewDefaultService())
	require.NoError(t, c.Start(srs.SelectDue(collection, now), now))
	require.NoError(t, c.Advance(now))
	require.Equal(t, 1, c.Cursor())

	// Same membership, possibly different order: no reset.
	reset, err := c.Reconcile([]*domain.Card{later, b, a}, now, now)
	require.NoError(t, err)
	assert.False(t, reset)
	assert.Equal(t, 1, c.Cursor())

	// A new due card resets the session to position zero.
	d := sessionCard(t, deckID, "d", now.Add(-time.Minute))
	reset, err = c.Reconcile([]*domain.Card{a, b, d, later}, now, now)
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, StateActive, c.State())
	assert.Equal(t, 0, c.Cursor())
	assert.Equal(t, 3, c.QueueLength())
	assert.Equal(t, []domain.Grade{Unanswered, Unanswered, Unanswered}, c.Answers())

	// The due set vanishing completes the session.
	reset, err = c.Reconcile([]*domain.Card{later}, now, now)
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, StateComplete, c.State())
}

func TestControllerReconcileIgnoresGradedCards(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	deckID := uuid.New()
	a := sessionCard(t, deckID, "a", now.Add(-2*time.Hour))
	b := sessionCard(t, deckID, "b", now.Add(-time.Hour))

	c := NewController(srs.NewDefaultService())
	require.NoError(t, c.Start([]*domain.Card{a, b}, now))

	graded, err := c.AnswerCurrent(5, now)
	require.NoError(t, err)
	require.True(t, graded.NextReviewAt.After(now))

	// The persisted collection now shows the graded card with a future
	// review date, dropping it from the due set. That is the session's own
	// grading, not a deck change, so the session must survive intact.
	reset, err := c.Reconcile([]*domain.Card{graded, b}, now, now)
	require.NoError(t, err)
	assert.False(t, reset)
	assert.Equal(t, StateActive, c.State())
	assert.Equal(t, 2, c.QueueLength())
	assert.Equal(t, 0, c.Cursor())
	assert.Equal(t, domain.Grade(5), c.Answers()[0])

	// A genuinely external change on top of the grading still resets.
	d := sessionCard(t, deckID, "d", now.Add(-time.Minute))
	reset, err = c.Reconcile([]*domain.Card{graded, b, d}, now, now)
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, 2, c.QueueLength())
}

func TestControllerProgressAndScore(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewController(srs.NewDefaultService())
	require.NoError(t, c.Start(newTestQueue(t, 4, now), now))

	assert.Equal(t, 0, c.AnsweredCount())
	assert.Equal(t, 0.0, c.ProgressPercent())
	assert.Equal(t, 0, c.Score())

	_, err := c.AnswerCurrent(5, now)
	require.NoError(t, err)
	require.NoError(t, c.Advance(now))
	_, err = c.AnswerCurrent(2, now)
	require.NoError(t, err)
	require.NoError(t, c.Advance(now))
	_, err = c.AnswerCurrent(3, now)
	require.NoError(t, err)

	assert.Equal(t, 3, c.AnsweredCount())
	assert.Equal(t, 75.0, c.ProgressPercent())
	assert.Equal(t, 2, c.Score())
}

func TestControllerElapsed(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewController(srs.NewDefaultService())

	assert.Equal(t, time.Duration(0), c.Elapsed(now))

	require.NoError(t, c.Start(newTestQueue(t, 1, now), now))
	assert.Equal(t, 5*time.Minute, c.Elapsed(now.Add(5*time.Minute)))

	require.NoError(t, c.End(now.Add(10*time.Minute)))
	// Once complete, elapsed time is fixed.
	assert.Equal(t, 10*time.Minute, c.Elapsed(now.Add(time.Hour)))
}
