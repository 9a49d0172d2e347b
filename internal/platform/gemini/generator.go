// Package gemini implements the generation.Generator interface using
// Google's Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/studyowl/studyowl-api/internal/config"
	"github.com/studyowl/studyowl-api/internal/domain"
	"github.com/studyowl/studyowl-api/internal/generation"
	"google.golang.org/genai"
)

// cardPayload is the JSON shape the model is instructed to return for each card.
type cardPayload struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Generator implements the generation.Generator interface using the Gemini API.
type Generator struct {
	logger *slog.Logger
	client *genai.Client
	model  string
}

// Ensure Generator implements generation.Generator interface
var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a new Gemini-backed card generator.
//
// Returns generation.ErrInvalidConfig if the API key or model name is missing
// or the client cannot be constructed.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger.With(slog.String("component", "gemini_generator")),
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// GenerateCards implements generation.Generator.GenerateCards.
func (g *Generator) GenerateCards(
	ctx context.Context,
	sourceText string,
	deckID uuid.UUID,
	count int,
) ([]*domain.Card, error) {
	if strings.TrimSpace(sourceText) == "" {
		return nil, generation.ErrEmptySourceText
	}
	if count < 1 {
		count = defaultCardCount
	}

	g.logger.DebugContext(ctx, "generating cards from source text",
		slog.String("deck_id", deckID.String()),
		slog.Int("count", count),
		slog.Int("source_length", len(sourceText)))

	prompt := buildPrompt(sourceText, count)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini API call failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, generation.ErrContentBlocked
	}

	cards, err := parseCards(resp.Text(), deckID)
	if err != nil {
		g.logger.WarnContext(ctx, "failed to parse generated cards",
			slog.String("error", err.Error()))
		return nil, err
	}

	g.logger.DebugContext(ctx, "cards generated successfully",
		slog.String("deck_id", deckID.String()),
		slog.Int("generated", len(cards)))
	return cards, nil
}

const defaultCardCount = 10

// buildPrompt produces the generation prompt. The model is asked for a bare
// JSON array so parseCards can decode the response directly.
func buildPrompt(sourceText string, count int) string {
	return fmt.Sprintf(`You are a study assistant creating flashcards.
Generate at most %d flashcards from the source text below.
Respond with ONLY a JSON array, no markdown fences, where each element is
{"front": "...", "back": "..."}. Fronts are questions or terms; backs are
concise answers or definitions.

Source text:
%s`, count, sourceText)
}

// parseCards decodes the model response into schedulable cards. Pairs with a
// missing front or back are rejected here, at the generation boundary.
func parseCards(text string, deckID uuid.UUID) ([]*domain.Card, error) {
	trimmed := strings.TrimSpace(text)
	// Models sometimes wrap JSON in markdown fences despite instructions.
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var payloads []cardPayload
	if err := json.Unmarshal([]byte(trimmed), &payloads); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			generation.ErrInvalidResponse, err)
	}
	if len(payloads) == 0 {
		return nil, fmt.Errorf("%w: response contained no cards", generation.ErrInvalidResponse)
	}

	cards := make([]*domain.Card, 0, len(payloads))
	for _, p := range payloads {
		card, err := domain.NewCard(deckID, p.Front, p.Back)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed card pair: %v",
				generation.ErrInvalidResponse, err)
		}
		cards = append(cards, card)
	}

	return cards, nil
}
