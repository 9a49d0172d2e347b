package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/studyowl/studyowl-api/internal/api"
	"github.com/studyowl/studyowl-api/internal/config"
	"github.com/studyowl/studyowl-api/internal/domain/srs"
	"github.com/studyowl/studyowl-api/internal/generation"
	"github.com/studyowl/studyowl-api/internal/platform/gemini"
	"github.com/studyowl/studyowl-api/internal/platform/logger"
	"github.com/studyowl/studyowl-api/internal/platform/postgres"
	"github.com/studyowl/studyowl-api/internal/service/study"
)

// application holds the assembled dependency graph for the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cardHandler    *api.CardHandler
	sessionHandler *api.SessionHandler
}

// initializeApp loads configuration and wires up application components.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := postgres.RunMigrations(db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("failed to close database after migration failure",
				slog.String("error", closeErr.Error()))
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cardStore := postgres.NewCardStore(db, appLogger)
	engine := srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:  cfg.SRS.MinEaseFactor,
		FirstInterval:  cfg.SRS.FirstInterval,
		SecondInterval: cfg.SRS.SecondInterval,
		LapseInterval:  cfg.SRS.LapseInterval,
	}))

	// Card generation is optional; the endpoint reports unavailable when no
	// API key is configured.
	var generator generation.Generator
	if cfg.LLM.GeminiAPIKey != "" {
		geminiGenerator, err := gemini.NewGenerator(context.Background(), appLogger, cfg.LLM)
		if err != nil {
			if closeErr := db.Close(); closeErr != nil {
				appLogger.Error("failed to close database after generator failure",
					slog.String("error", closeErr.Error()))
			}
			return nil, fmt.Errorf("failed to create card generator: %w", err)
		}
		generator = geminiGenerator
	} else {
		appLogger.Warn("no Gemini API key configured, card generation disabled")
	}

	studyService := study.NewService(appLogger, cardStore, db, engine, generator)

	return &application{
		config:         cfg,
		logger:         appLogger,
		db:             db,
		cardHandler:    api.NewCardHandler(studyService, appLogger),
		sessionHandler: api.NewSessionHandler(studyService, appLogger),
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection",
				slog.String("error", err.Error()))
		}
	}
}

// run starts the HTTP server and blocks until shutdown.
func (app *application) run(ctx context.Context) error {
	router := app.setupRouter()
	return app.startHTTPServer(ctx, router)
}
