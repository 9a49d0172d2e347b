// Package main implements the entry point for the StudyOwl API server,
// which schedules spaced-repetition flashcard reviews and provides
// LLM integration for card generation.
package main

import (
	"context"
	"log"
)

// main is the entry point for the studyowl-api server.
// It initializes configuration, logging, the database connection, and the
// dependency graph, then runs the HTTP server until shutdown.
func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if err := app.run(context.Background()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
