package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/studyowl/studyowl-api/internal/api/shared"
	"github.com/studyowl/studyowl-api/internal/domain"
	"github.com/studyowl/studyowl-api/internal/platform/logger"
	"github.com/studyowl/studyowl-api/internal/service/study"
)

// SessionHandler handles study-session HTTP requests
type SessionHandler struct {
	studyService study.Service
	logger       *slog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(studyService study.Service, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		studyService: studyService,
		logger:       logger.With(slog.String("component", "session_handler")),
	}
}

// respondWithSnapshot writes a session snapshot or maps the error.
func (h *SessionHandler) respondWithSnapshot(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	snap *study.Snapshot,
	err error,
	fallbackMessage string,
) {
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = fallbackMessage
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, status, snapshotToResponse(snap))
}

// StartSession handles POST /decks/{deckID}/session requests.
// It starts a study session over the deck's due queue.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		log.Warn("invalid deck ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	snap, err := h.studyService.StartSession(r.Context(), deckID)

	// Special case: nothing due means there is nothing to study.
	if errors.Is(err, study.ErrNoCardsDue) {
		log.Debug("no cards due for review", slog.String("deck_id", deckID.String()))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.respondWithSnapshot(w, r, http.StatusCreated, snap, err, "Failed to start session")
}

// GetSession handles GET /decks/{deckID}/session requests.
// It returns the deck's session state after reconciling the session queue
// against the deck's current due set.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		log.Warn("invalid deck ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	snap, err := h.studyService.Session(r.Context(), deckID)
	h.respondWithSnapshot(w, r, http.StatusOK, snap, err, "Failed to load session")
}

// AnswerRequest represents the request body for answering the current card.
type AnswerRequest struct {
	Grade int `json:"grade" validate:"required,min=1,max=5"`
}

// SubmitAnswer handles POST /decks/{deckID}/session/answer requests.
// It grades the session's current card; the cursor stays put so the client
// can show feedback before advancing.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		log.Warn("invalid deck ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	var req AnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	card, err := h.studyService.SubmitAnswer(r.Context(), deckID, domain.Grade(req.Grade))
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to submit answer"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("answer submitted",
		slog.String("deck_id", deckID.String()),
		slog.String("card_id", card.ID.String()),
		slog.Int("grade", req.Grade))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// Advance handles POST /decks/{deckID}/session/advance requests.
// It moves the session cursor forward, completing the session at the last
// position.
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		log.Warn("invalid deck ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	snap, err := h.studyService.Advance(r.Context(), deckID)
	h.respondWithSnapshot(w, r, http.StatusOK, snap, err, "Failed to advance session")
}

// JumpRequest represents the request body for moving to a queue position.
type JumpRequest struct {
	Index int `json:"index" validate:"gte=0"`
}

// JumpTo handles POST /decks/{deckID}/session/jump requests.
func (h *SessionHandler) JumpTo(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		log.Warn("invalid deck ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	var req JumpRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	snap, err := h.studyService.JumpTo(r.Context(), deckID, req.Index)
	h.respondWithSnapshot(w, r, http.StatusOK, snap, err, "Failed to move session cursor")
}

// ToggleFlag handles POST /decks/{deckID}/session/flag requests.
// It flips the flag on the session's current position.
func (h *SessionHandler) ToggleFlag(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		log.Warn("invalid deck ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	snap, err := h.studyService.ToggleFlag(r.Context(), deckID)
	h.respondWithSnapshot(w, r, http.StatusOK, snap, err, "Failed to toggle flag")
}

// EndSession handles DELETE /decks/{deckID}/session requests.
// It completes the session immediately.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		log.Warn("invalid deck ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	snap, err := h.studyService.EndSession(r.Context(), deckID)
	h.respondWithSnapshot(w, r, http.StatusOK, snap, err, "Failed to end session")
}

// RetakeRequest represents the request body for retaking a session subset.
type RetakeRequest struct {
	Filter string `json:"filter" validate:"required,oneof=wrong flagged"`
}

// Retake handles POST /decks/{deckID}/session/retake requests.
// It starts a fresh session over the subset of the finished queue selected
// by the filter.
func (h *SessionHandler) Retake(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		log.Warn("invalid deck ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	var req RetakeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	snap, err := h.studyService.Retake(r.Context(), deckID, study.RetakeFilter(req.Filter))
	h.respondWithSnapshot(w, r, http.StatusCreated, snap, err, "Failed to retake session")
}
