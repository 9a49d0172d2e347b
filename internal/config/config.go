// Package config loads and validates application configuration from
// environment variables and optional config files.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	SRS      SRSConfig      `mapstructure:"srs"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// LLMConfig contains the card-generation service settings. The API key is
// optional: without it the server runs with generation disabled.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"`
}

// SRSConfig exposes the tunable scheduling parameters. Zero values fall back
// to the algorithm defaults.
type SRSConfig struct {
	MinEaseFactor  float64 `mapstructure:"min_ease_factor"  validate:"omitempty,gte=1"`
	FirstInterval  int     `mapstructure:"first_interval"   validate:"omitempty,gte=1"`
	SecondInterval int     `mapstructure:"second_interval"  validate:"omitempty,gte=1"`
	LapseInterval  int     `mapstructure:"lapse_interval"   validate:"omitempty,gte=1"`
}
