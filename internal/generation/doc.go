// Package generation defines the interface for generating flashcards from
// source text. It serves as a boundary between the application core and
// external AI/LLM services.
package generation
