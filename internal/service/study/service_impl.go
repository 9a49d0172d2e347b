package study

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studyowl/studyowl-api/internal/domain"
	"github.com/studyowl/studyowl-api/internal/domain/srs"
	"github.com/studyowl/studyowl-api/internal/generation"
	"github.com/studyowl/studyowl-api/internal/store"
)

// defaultService is the standard implementation of the study Service.
// A mutex serializes all session access, which also upholds the controller's
// single-caller requirement.
type defaultService struct {
	logger    *slog.Logger
	cardStore store.CardStore
	db        *sql.DB
	engine    srs.Service
	generator generation.Generator

	mu       sync.Mutex
	sessions map[uuid.UUID]*Controller

	now func() time.Time
}

// NewService creates a study service.
//
// db may be nil when the card store is not SQL-backed; multi-card writes
// then skip transaction wrapping. generator may be nil when card generation
// is not configured, in which case GenerateCards fails with
// generation.ErrInvalidConfig. All other dependencies are required.
func NewService(
	logger *slog.Logger,
	cardStore store.CardStore,
	db *sql.DB,
	engine srs.Service,
	generator generation.Generator,
) Service {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}

	return &defaultService{
		logger:    logger.With(slog.String("component", "study_service")),
		cardStore: cardStore,
		db:        db,
		engine:    engine,
		generator: generator,
		sessions:  make(map[uuid.UUID]*Controller),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Ensure defaultService implements Service.
var _ Service = (*defaultService)(nil)

// DueCards implements Service.DueCards.
func (s *defaultService) DueCards(
	ctx context.Context,
	deckID uuid.UUID,
	asOf time.Time,
) ([]*domain.Card, error) {
	cards, err := s.cardStore.LoadAll(ctx, deckID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load deck cards",
			slog.String("deck_id", deckID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("due cards", err)
	}

	due := srs.SelectDue(cards, asOf)
	s.logger.DebugContext(ctx, "computed due queue",
		slog.String("deck_id", deckID.String()),
		slog.Int("total_cards", len(cards)),
		slog.Int("due_cards", len(due)))

	return due, nil
}

// StartSession implements Service.StartSession.
func (s *defaultService) StartSession(
	ctx context.Context,
	deckID uuid.UUID,
) (*Snapshot, error) {
	now := s.now()

	due, err := s.DueCards(ctx, deckID, now)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, ErrNoCardsDue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	controller, ok := s.sessions[deckID]
	if !ok {
		controller = NewController(s.engine)
		s.sessions[deckID] = controller
	}

	if err := controller.Start(due, now); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "study session started",
		slog.String("deck_id", deckID.String()),
		slog.Int("queue_length", len(due)))

	return s.snapshot(deckID, controller), nil
}

// Session implements Service.Session.
func (s *defaultService) Session(
	ctx context.Context,
	deckID uuid.UUID,
) (*Snapshot, error) {
	s.mu.Lock()
	controller, ok := s.sessions[deckID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	if controller.State() == StateActive {
		cards, err := s.cardStore.LoadAll(ctx, deckID)
		if err != nil {
			return nil, NewServiceError("session reconcile", err)
		}

		s.mu.Lock()
		if controller.State() == StateActive {
			now := s.now()
			reset, err := controller.Reconcile(cards, now, now)
			if err != nil {
				s.mu.Unlock()
				return nil, NewServiceError("session reconcile", err)
			}
			if reset {
				s.logger.InfoContext(ctx, "session reset after deck change",
					slog.String("deck_id", deckID.String()),
					slog.Int("queue_length", controller.QueueLength()))
			}
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(deckID, controller), nil
}

// SubmitAnswer implements Service.SubmitAnswer.
func (s *defaultService) SubmitAnswer(
	ctx context.Context,
	deckID uuid.UUID,
	grade domain.Grade,
) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	controller, ok := s.sessions[deckID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	original, err := controller.Current()
	if err != nil {
		return nil, err
	}
	index := controller.Cursor()

	graded, err := controller.AnswerCurrent(grade, s.now())
	if err != nil {
		return nil, err
	}

	// The answer only stands once the graded state is durable. On persist
	// failure the position reverts to unanswered so the caller can retry.
	if err := s.cardStore.Update(ctx, graded); err != nil {
		controller.undoAnswer(index, original)
		s.logger.ErrorContext(ctx, "failed to persist graded card",
			slog.String("card_id", graded.ID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("submit answer", err)
	}

	s.logger.DebugContext(ctx, "card graded",
		slog.String("card_id", graded.ID.String()),
		slog.Int("grade", int(grade)),
		slog.Int("interval_days", graded.IntervalDays),
		slog.Float64("ease_factor", graded.EaseFactor))

	return graded, nil
}

// Advance implements Service.Advance.
func (s *defaultService) Advance(
	ctx context.Context,
	deckID uuid.UUID,
) (*Snapshot, error) {
	return s.withSession(ctx, deckID, func(c *Controller) error {
		return c.Advance(s.now())
	})
}

// JumpTo implements Service.JumpTo.
func (s *defaultService) JumpTo(
	ctx context.Context,
	deckID uuid.UUID,
	index int,
) (*Snapshot, error) {
	return s.withSession(ctx, deckID, func(c *Controller) error {
		return c.JumpTo(index)
	})
}

// ToggleFlag implements Service.ToggleFlag.
func (s *defaultService) ToggleFlag(
	ctx context.Context,
	deckID uuid.UUID,
) (*Snapshot, error) {
	return s.withSession(ctx, deckID, func(c *Controller) error {
		return c.ToggleFlag()
	})
}

// EndSession implements Service.EndSession.
func (s *defaultService) EndSession(
	ctx context.Context,
	deckID uuid.UUID,
) (*Snapshot, error) {
	return s.withSession(ctx, deckID, func(c *Controller) error {
		return c.End(s.now())
	})
}

// Retake implements Service.Retake.
func (s *defaultService) Retake(
	ctx context.Context,
	deckID uuid.UUID,
	filter RetakeFilter,
) (*Snapshot, error) {
	snap, err := s.withSession(ctx, deckID, func(c *Controller) error {
		return c.Retake(filter, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "session retake started",
		slog.String("deck_id", deckID.String()),
		slog.String("filter", string(filter)),
		slog.Int("queue_length", len(snap.Queue)))

	return snap, nil
}

// withSession runs a controller action under the session lock and returns
// the resulting snapshot.
func (s *defaultService) withSession(
	_ context.Context,
	deckID uuid.UUID,
	fn func(*Controller) error,
) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	controller, ok := s.sessions[deckID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if err := fn(controller); err != nil {
		return nil, err
	}

	return s.snapshot(deckID, controller), nil
}

// snapshot assembles a Snapshot from the controller. Callers hold s.mu.
func (s *defaultService) snapshot(deckID uuid.UUID, c *Controller) *Snapshot {
	now := s.now()

	var finishedAt *time.Time
	if !c.FinishedAt().IsZero() {
		t := c.FinishedAt()
		finishedAt = &t
	}

	return &Snapshot{
		DeckID:          deckID,
		State:           c.State(),
		Queue:           c.Queue(),
		Cursor:          c.Cursor(),
		Answers:         c.Answers(),
		Flags:           c.Flags(),
		AnsweredCount:   c.AnsweredCount(),
		ProgressPercent: c.ProgressPercent(),
		Score:           c.Score(),
		StartedAt:       c.StartedAt(),
		FinishedAt:      finishedAt,
		ElapsedSeconds:  c.Elapsed(now).Seconds(),
	}
}

// ReviewCard implements Service.ReviewCard.
func (s *defaultService) ReviewCard(
	ctx context.Context,
	cardID uuid.UUID,
	grade domain.Grade,
) (*domain.Card, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return nil, NewServiceError("review card", err)
	}

	graded, err := s.engine.Grade(card, grade, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.cardStore.Update(ctx, graded); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist reviewed card",
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("review card", err)
	}

	return graded, nil
}

// PostponeCard implements Service.PostponeCard.
func (s *defaultService) PostponeCard(
	ctx context.Context,
	cardID uuid.UUID,
	days int,
) (*domain.Card, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return nil, NewServiceError("postpone card", err)
	}

	postponed, err := s.engine.Postpone(card, days, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.cardStore.Update(ctx, postponed); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist postponed card",
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, NewServiceError("postpone card", err)
	}

	return postponed, nil
}

// GenerateCards implements Service.GenerateCards.
func (s *defaultService) GenerateCards(
	ctx context.Context,
	deckID uuid.UUID,
	sourceText string,
	count int,
) ([]*domain.Card, error) {
	if s.generator == nil {
		return nil, generation.ErrInvalidConfig
	}

	cards, err := s.generator.GenerateCards(ctx, sourceText, deckID, count)
	if err != nil {
		return nil, err
	}

	if s.db != nil {
		err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			return s.cardStore.WithTx(tx).CreateMultiple(ctx, cards)
		})
	} else {
		err = s.cardStore.CreateMultiple(ctx, cards)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to persist generated cards",
			slog.String("deck_id", deckID.String()),
			slog.Int("card_count", len(cards)),
			slog.String("error", err.Error()))
		return nil, NewServiceError("generate cards", err)
	}

	s.logger.InfoContext(ctx, "cards generated",
		slog.String("deck_id", deckID.String()),
		slog.Int("card_count", len(cards)))

	return cards, nil
}
