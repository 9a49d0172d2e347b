package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/studyowl/studyowl-api/internal/domain"
	"github.com/studyowl/studyowl-api/internal/service/study"
)

// fakeStudyService is a function-field fake for the study.Service interface.
// Unset methods fail the test if called.
type fakeStudyService struct {
	t *testing.T

	dueCardsFn      func(ctx context.Context, deckID uuid.UUID, asOf time.Time) ([]*domain.Card, error)
	startSessionFn  func(ctx context.Context, deckID uuid.UUID) (*study.Snapshot, error)
	sessionFn       func(ctx context.Context, deckID uuid.UUID) (*study.Snapshot, error)
	submitAnswerFn  func(ctx context.Context, deckID uuid.UUID, grade domain.Grade) (*domain.Card, error)
	advanceFn       func(ctx context.Context, deckID uuid.UUID) (*study.Snapshot, error)
	jumpToFn        func(ctx context.Context, deckID uuid.UUID, index int) (*study.Snapshot, error)
	toggleFlagFn    func(ctx context.Context, deckID uuid.UUID) (*study.Snapshot, error)
	endSessionFn    func(ctx context.Context, deckID uuid.UUID) (*study.Snapshot, error)
	retakeFn        func(ctx context.Context, deckID uuid.UUID, filter study.RetakeFilter) (*study.Snapshot, error)
	reviewCardFn    func(ctx context.Context, cardID uuid.UUID, grade domain.Grade) (*domain.Card, error)
	postponeCardFn  func(ctx context.Context, cardID uuid.UUID, days int) (*domain.Card, error)
	generateCardsFn func(ctx context.Context, deckID uuid.UUID, sourceText string, count int) ([]*domain.Card, error)
}

func (f *fakeStudyService) DueCards(
	ctx context.Context,
	deckID uuid.UUID,
	asOf time.Time,
) ([]*domain.Card, error) {
	if f.dueCardsFn == nil {
		f.t.Fatal("unexpected call to DueCards")
	}
	return f.dueCardsFn(ctx, deckID, asOf)
}

func (f *fakeStudyService) StartSession(
	ctx context.Context,
	deckID uuid.UUID,
) (*study.Snapshot, error) {
	if f.startSessionFn == nil {
		f.t.Fatal("unexpected call to StartSession")
	}
	return f.startSessionFn(ctx, deckID)
}

func (f *fakeStudyService) Session(
	ctx context.Context,
	deckID uuid.UUID,
) (*study.Snapshot, error) {
	if f.sessionFn == nil {
		f.t.Fatal("unexpected call to Session")
	}
	return f.sessionFn(ctx, deckID)
}

func (f *fakeStudyService) SubmitAnswer(
	ctx context.Context,
	deckID uuid.UUID,
	grade domain.Grade,
) (*domain.Card, error) {
	if f.submitAnswerFn == nil {
		f.t.Fatal("unexpected call to SubmitAnswer")
	}
	return f.submitAnswerFn(ctx, deckID, grade)
}

func (f *fakeStudyService) Advance(
	ctx context.Context,
	deckID uuid.UUID,
) (*study.Snapshot, error) {
	if f.advanceFn == nil {
		f.t.Fatal("unexpected call to Advance")
	}
	return f.advanceFn(ctx, deckID)
}

func (f *fakeStudyService) JumpTo(
	ctx context.Context,
	deckID uuid.UUID,
	index int,
) (*study.Snapshot, error) {
	if f.jumpToFn == nil {
		f.t.Fatal("unexpected call to JumpTo")
	}
	return f.jumpToFn(ctx, deckID, index)
}

func (f *fakeStudyService) ToggleFlag(
	ctx context.Context,
	deckID uuid.UUID,
) (*study.Snapshot, error) {
	if f.toggleFlagFn == nil {
		f.t.Fatal("unexpected call to ToggleFlag")
	}
	return f.toggleFlagFn(ctx, deckID)
}

func (f *fakeStudyService) EndSession(
	ctx context.Context,
	deckID uuid.UUID,
) (*study.Snapshot, error) {
	if f.endSessionFn == nil {
		f.t.Fatal("unexpected call to EndSession")
	}
	return f.endSessionFn(ctx, deckID)
}

func (f *fakeStudyService) Retake(
	ctx context.Context,
	deckID uuid.UUID,
	filter study.RetakeFilter,
) (*study.Snapshot, error) {
	if f.retakeFn == nil {
		f.t.Fatal("unexpected call to Retake")
	}
	return f.retakeFn(ctx, deckID, filter)
}

func (f *fakeStudyService) ReviewCard(
	ctx context.Context,
	cardID uuid.UUID,
	grade domain.Grade,
) (*domain.Card, error) {
	if f.reviewCardFn == nil {
		f.t.Fatal("unexpected call to ReviewCard")
	}
	return f.reviewCardFn(ctx, cardID, grade)
}

func (f *fakeStudyService) PostponeCard(
	ctx context.Context,
	cardID uuid.UUID,
	days int,
) (*domain.Card, error) {
	if f.postponeCardFn == nil {
		f.t.Fatal("unexpected call to PostponeCard")
	}
	return f.postponeCardFn(ctx, cardID, days)
}

func (f *fakeStudyService) GenerateCards(
	ctx context.Context,
	deckID uuid.UUID,
	sourceText string,
	count int,
) ([]*domain.Card, error) {
	if f.generateCardsFn == nil {
		f.t.Fatal("unexpected call to GenerateCards")
	}
	return f.generateCardsFn(ctx, deckID, sourceText, count)
}

var _ study.Service = (*fakeStudyService)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter mounts the handlers on a chi router like the server does.
func newTestRouter(cardHandler *CardHandler, sessionHandler *SessionHandler) http.Handler {
	r := chi.NewRouter()
	if cardHandler != nil {
		r.Get("/decks/{deckID}/cards/due", cardHandler.GetDueCards)
		r.Post("/decks/{deckID}/cards/generate", cardHandler.GenerateCards)
		r.Post("/cards/{id}/review", cardHandler.ReviewCard)
		r.Post("/cards/{id}/postpone", cardHandler.PostponeCard)
	}
	if sessionHandler != nil {
		r.Post("/decks/{deckID}/session", sessionHandler.StartSession)
		r.Get("/decks/{deckID}/session", sessionHandler.GetSession)
		r.Delete("/decks/{deckID}/session", sessionHandler.EndSession)
		r.Post("/decks/{deckID}/session/answer", sessionHandler.SubmitAnswer)
		r.Post("/decks/{deckID}/session/advance", sessionHandler.Advance)
		r.Post("/decks/{deckID}/session/jump", sessionHandler.JumpTo)
		r.Post("/decks/{deckID}/session/flag", sessionHandler.ToggleFlag)
		r.Post("/decks/{deckID}/session/retake", sessionHandler.Retake)
	}
	return r
}

// doRequest executes an HTTP request against the router and returns the
// recorded response.
func doRequest(
	t *testing.T,
	router http.Handler,
	method, path, body string,
) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// testCard builds a card for handler tests.
func testCard(t *testing.T, deckID uuid.UUID) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(deckID, "front", "back")
	require.NoError(t, err)
	return card
}
