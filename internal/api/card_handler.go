// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/studyowl/studyowl-api/internal/api/shared"
	"github.com/studyowl/studyowl-api/internal/domain"
	"github.com/studyowl/studyowl-api/internal/platform/logger"
	"github.com/studyowl/studyowl-api/internal/service/study"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	studyService study.Service
	logger       *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(studyService study.Service, logger *slog.Logger) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		studyService: studyService,
		logger:       logger.With(slog.String("component", "card_handler")),
	}
}

// GetDueCards handles GET /decks/{deckID}/cards/due requests.
// It returns the deck's cards due for review in review order. The reference
// time defaults to now and may be overridden with an RFC 3339 `as_of` query
// parameter.
func (h *CardHandler) GetDueCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		log.Warn("invalid deck ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			log.Warn("invalid as_of query parameter", slog.String("as_of", raw))
			shared.RespondWithError(
				w, r, http.StatusBadRequest, "as_of must be an RFC 3339 timestamp")
			return
		}
		asOf = parsed
	}

	cards, err := h.studyService.DueCards(r.Context(), deckID, asOf)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to load due cards"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("retrieved due cards",
		slog.String("deck_id", deckID.String()),
		slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// ReviewRequest represents the request body for grading a card.
type ReviewRequest struct {
	Grade int `json:"grade" validate:"required,min=1,max=5"`
}

// ReviewCard handles POST /cards/{id}/review requests.
// It grades a single card outside any session and updates its schedule.
func (h *CardHandler) ReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, err := getPathUUID(r, "id")
	if err != nil {
		log.Warn("invalid card ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID format")
		return
	}

	var req ReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	card, err := h.studyService.ReviewCard(r.Context(), cardID, domain.Grade(req.Grade))
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to review card"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("card reviewed",
		slog.String("card_id", cardID.String()),
		slog.Int("grade", req.Grade),
		slog.Int("interval_days", card.IntervalDays))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// PostponeRequest represents the request body for postponing a card.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,min=1"`
}

// PostponeCard handles POST /cards/{id}/postpone requests.
// It pushes the card's next review out without touching its learning state.
func (h *CardHandler) PostponeCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, err := getPathUUID(r, "id")
	if err != nil {
		log.Warn("invalid card ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID format")
		return
	}

	var req PostponeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	card, err := h.studyService.PostponeCard(r.Context(), cardID, req.Days)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to postpone card"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("card postponed",
		slog.String("card_id", cardID.String()),
		slog.Int("days", req.Days))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// GenerateCardsRequest represents the request body for generating cards.
type GenerateCardsRequest struct {
	SourceText string `json:"source_text" validate:"required"`
	Count      int    `json:"count"      validate:"omitempty,min=1,max=50"`
}

// GenerateCards handles POST /decks/{deckID}/cards/generate requests.
// It generates flashcards from source text and saves them into the deck.
func (h *CardHandler) GenerateCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := getPathUUID(r, "deckID")
	if err != nil {
		log.Warn("invalid deck ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID format")
		return
	}

	var req GenerateCardsRequest
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

	cards, err := h.studyService.GenerateCards(r.Context(), deckID, req.SourceText, req.Count)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to generate cards"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Info("cards generated",
		slog.String("deck_id", deckID.String()),
		slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardsToResponse(cards))
}
