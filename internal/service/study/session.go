package study

import (
	"time"

	"github.com/google/uuid"
	"github.com/studyowl/studyowl-api/internal/domain"
	"github.com/studyowl/studyowl-api/internal/domain/srs"
)

// SessionState identifies the controller's position in its lifecycle.
type SessionState string

// Session states. A session starts Idle, becomes Active when a queue is
// started, and ends Complete when the cursor advances past the last position
// or the caller ends it explicitly.
const (
	StateIdle     SessionState = "idle"
	StateActive   SessionState = "active"
	StateComplete SessionState = "complete"
)

// Unanswered is the zero answer value recorded for positions that have not
// been graded yet. It is outside the valid grade range by construction.
const Unanswered domain.Grade = 0

// RetakeFilter selects which subset of a finished queue to retake.
type RetakeFilter string

// Retake filters: cards answered below the success threshold, or cards the
// learner flagged during the session.
const (
	RetakeWrong   RetakeFilter = "wrong"
	RetakeFlagged RetakeFilter = "flagged"
)

// Controller is the study-session state machine. It walks a learner through
// an ordered queue of due cards, grading each position through the
// scheduling engine exactly once.
//
// The controller is a plain synchronous state machine: it performs no I/O
// and is not safe for concurrent use. Callers serialize access; the grading
// guarantee (at most one in-flight grading operation per card) follows from
// the answered-position check plus that serialization. Graded cards are
// returned to the caller for persistence.
type Controller struct {
	engine srs.Service

	state      SessionState
	queue      []*domain.Card
	cursor     int
	answers    []domain.Grade
	flags      []bool
	startedAt  time.Time
	finishedAt time.Time
}

// NewController creates an Idle session controller using the given
// scheduling engine for grading.
func NewController(engine srs.Service) *Controller {
	if engine == nil {
		panic("engine cannot be nil")
	}
	return &Controller{
		engine: engine,
		state:  StateIdle,
	}
}

// State returns the current session state.
func (c *Controller) State() SessionState {
	return c.state
}

// Start begins a session over the given queue: cursor at the first position,
// every position unanswered and unflagged.
// Returns ErrSessionActive if a session is already in progress; starting
// over from Idle or Complete is allowed.
// Returns ErrEmptyQueue if the queue has no cards.
func (c *Controller) Start(queue []*domain.Card, now time.Time) error {
	if c.state == StateActive {
		return ErrSessionActive
	}
	if len(queue) == 0 {
		return ErrEmptyQueue
	}

	c.queue = make([]*domain.Card, len(queue))
	copy(c.queue, queue)
	c.cursor = 0
	c.answers = make([]domain.Grade, len(queue))
	c.flags = make([]bool, len(queue))
	c.startedAt = now
	c.finishedAt = time.Time{}
	c.state = StateActive

	return nil
}

// Current returns the card at the cursor.
// Returns ErrNoActiveSession unless the session is Active.
func (c *Controller) Current() (*domain.Card, error) {
	if c.state != StateActive {
		return nil, ErrNoActiveSession
	}
	return c.queue[c.cursor], nil
}

// AnswerCurrent grades the card at the cursor through the scheduling engine
// and records the grade at the current position. The cursor does not move;
// advancing is a separate action so the caller can reveal feedback first.
//
// Answering an already-answered position fails with ErrAlreadyAnswered and
// changes nothing: the rejection is what prevents a card's review counters
// from being bumped twice for one position.
//
// The updated card is returned for the caller to persist; the session queue
// holds the updated value from here on.
func (c *Controller) AnswerCurrent(grade domain.Grade, now time.Time) (*domain.Card, error) {
	if c.state != StateActive {
		return nil, ErrNoActiveSession
	}
	if c.answers[c.cursor] != Unanswered {
		return nil, ErrAlreadyAnswered
	}

	graded, err := c.engine.Grade(c.queue[c.cursor], grade, now)
	if err != nil {
		return nil, err
	}

	c.queue[c.cursor] = graded
	c.answers[c.cursor] = grade

	return graded, nil
}

// undoAnswer reverts an answer whose graded state could not be persisted,
// restoring the original card and marking the position unanswered so it can
// be graded again.
func (c *Controller) undoAnswer(index int, original *domain.Card) {
	c.queue[index] = original
	c.answers[index] = Unanswered
}

// Advance moves the cursor one position forward. At the last position it
// completes the session instead and stamps the finish time.
// Returns ErrNoActiveSession unless the session is Active.
func (c *Controller) Advance(now time.Time) error {
	if c.state != StateActive {
		return ErrNoActiveSession
	}

	if c.cursor >= len(c.queue)-1 {
		c.state = StateComplete
		c.finishedAt = now
		return nil
	}

	c.cursor++
	return nil
}

// JumpTo moves the cursor to an arbitrary position without altering any
// answer or flag state.
// Returns ErrNoActiveSession unless Active, ErrIndexOutOfRange if the index
// is not a queue position.
func (c *Controller) JumpTo(index int) error {
	if c.state != StateActive {
		return ErrNoActiveSession
	}
	if index < 0 || index >= len(c.queue) {
		return ErrIndexOutOfRange
	}

	c.cursor = index
	return nil
}

// ToggleFlag flips the flag bit at the current position. Flags are session
// bookkeeping only and have no scheduling effect.
// Returns ErrNoActiveSession unless the session is Active.
func (c *Controller) ToggleFlag() error {
	if c.state != StateActive {
		return ErrNoActiveSession
	}

	c.flags[c.cursor] = !c.flags[c.cursor]
	return nil
}

// End completes the session immediately, regardless of cursor position.
// Returns ErrNoActiveSession unless the session is Active.
func (c *Controller) End(now time.Time) error {
	if c.state != StateActive {
		return ErrNoActiveSession
	}

	c.state = StateComplete
	c.finishedAt = now
	return nil
}

// Retake starts a fresh session over the subset of the current queue
// matching the filter: positions graded below the success threshold for
// RetakeWrong, flagged positions for RetakeFlagged. Prior answers and flags
// for the subset are discarded.
// Returns ErrEmptySubset when the filter matches nothing, so callers can
// disable the action instead of offering an empty retake.
func (c *Controller) Retake(filter RetakeFilter, now time.Time) error {
	if c.state == StateIdle {
		return ErrNoActiveSession
	}

	var subset []*domain.Card
	switch filter {
	case RetakeWrong:
		for i, grade := range c.answers {
			if grade != Unanswered && !grade.IsSuccess() {
				subset = append(subset, c.queue[i])
			}
		}
	case RetakeFlagged:
		for i, flagged := range c.flags {
			if flagged {
				subset = append(subset, c.queue[i])
			}
		}
	default:
		return ErrInvalidRetakeFilter
	}

	if len(subset) == 0 {
		return ErrEmptySubset
	}

	c.state = StateIdle
	return c.Start(subset, now)
}

// Reconcile compares the session queue against a freshly computed due queue
// over the given collection. If a card was added, removed, or had its due
// state changed independently of the session, the session resets to the
// fresh queue at position zero with all answers and flags cleared, and
// Reconcile reports true.
//
// Grading a card in this session moves its next review into the future and
// drops it from the due set. That is the session's own doing, not an
// external change, so answered positions are excluded from the comparison:
// the fresh due set is measured against the session's unanswered cards.
//
// Resetting discards in-progress position on purpose: it can never leave the
// cursor or answer records pointing into a queue whose membership they no
// longer describe.
func (c *Controller) Reconcile(cards []*domain.Card, asOf time.Time, now time.Time) (bool, error) {
	if c.state != StateActive {
		return false, ErrNoActiveSession
	}

	fresh := srs.SelectDue(cards, asOf)

	unanswered := make(map[uuid.UUID]struct{})
	for i, card := range c.queue {
		if c.answers[i] == Unanswered {
			unanswered[card.ID] = struct{}{}
		}
	}
	if freshMatches(fresh, unanswered) {
		return false, nil
	}

	c.state = StateIdle
	if len(fresh) == 0 {
		// The due set emptied out from under the session.
		c.queue = nil
		c.answers = nil
		c.flags = nil
		c.cursor = 0
		c.finishedAt = now
		c.state = StateComplete
		return true, nil
	}

	if err := c.Start(fresh, now); err != nil {
		return false, err
	}
	return true, nil
}

// freshMatches reports whether the fresh due queue contains exactly the
// given card IDs, ignoring order.
func freshMatches(fresh []*domain.Card, ids map[uuid.UUID]struct{}) bool {
	if len(fresh) != len(ids) {
		return false
	}
	for _, card := range fresh {
		if _, ok := ids[card.ID]; !ok {
			return false
		}
	}
	return true
}

// Cursor returns the current queue position.
func (c *Controller) Cursor() int {
	return c.cursor
}

// QueueLength returns the number of cards in the session queue.
func (c *Controller) QueueLength() int {
	return len(c.queue)
}

// Queue returns a copy of the session queue.
func (c *Controller) Queue() []*domain.Card {
	queue := make([]*domain.Card, len(c.queue))
	copy(queue, c.queue)
	return queue
}

// Answers returns a copy of the per-position answer record; Unanswered marks
// ungraded positions.
func (c *Controller) Answers() []domain.Grade {
	answers := make([]domain.Grade, len(c.answers))
	copy(answers, c.answers)
	return answers
}

// Flags returns a copy of the per-position flag bits.
func (c *Controller) Flags() []bool {
	flags := make([]bool, len(c.flags))
	copy(flags, c.flags)
	return flags
}

// AnsweredCount returns the number of graded positions.
func (c *Controller) AnsweredCount() int {
	count := 0
	for _, grade := range c.answers {
		if grade != Unanswered {
			count++
		}
	}
	return count
}

// ProgressPercent returns the share of graded positions, 0-100.
func (c *Controller) ProgressPercent() float64 {
	if len(c.answers) == 0 {
		return 0
	}
	return float64(c.AnsweredCount()) / float64(len(c.answers)) * 100
}

// Score returns the number of positions graded at or above the success
// threshold.
func (c *Controller) Score() int {
	score := 0
	for _, grade := range c.answers {
		if grade != Unanswered && grade.IsSuccess() {
			score++
		}
	}
	return score
}

// StartedAt returns when the session started; zero when Idle.
func (c *Controller) StartedAt() time.Time {
	return c.startedAt
}

// FinishedAt returns when the session completed; zero until then.
func (c *Controller) FinishedAt() time.Time {
	return c.finishedAt
}

// Elapsed returns the session duration: now minus the start while Active,
// fixed at finish time once Complete, zero while Idle.
func (c *Controller) Elapsed(now time.Time) time.Duration {
	switch c.state {
	case StateActive:
		return now.Sub(c.startedAt)
	case StateComplete:
		return c.finishedAt.Sub(c.startedAt)
	default:
		return 0
	}
}
