package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/studyowl/studyowl-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Due queue and single-card scheduling endpoints
		r.Get("/decks/{deckID}/cards/due", app.cardHandler.GetDueCards)
		r.Post("/decks/{deckID}/cards/generate", app.cardHandler.GenerateCards)
		r.Post("/cards/{id}/review", app.cardHandler.ReviewCard)
		r.Post("/cards/{id}/postpone", app.cardHandler.PostponeCard)

		// Study session endpoints
		r.Post("/decks/{deckID}/session", app.sessionHandler.StartSession)
		r.Get("/decks/{deckID}/session", app.sessionHandler.GetSession)
		r.Delete("/decks/{deckID}/session", app.sessionHandler.EndSession)
		r.Post("/decks/{deckID}/session/answer", app.sessionHandler.SubmitAnswer)
		r.Post("/decks/{deckID}/session/advance", app.sessionHandler.Advance)
		r.Post("/decks/{deckID}/session/jump", app.sessionHandler.JumpTo)
		r.Post("/decks/{deckID}/session/flag", app.sessionHandler.ToggleFlag)
		r.Post("/decks/{deckID}/session/retake", app.sessionHandler.Retake)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
