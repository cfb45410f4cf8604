package config

import (
	"errors"
	"fmt"
)

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.LLM.Provider {
	case "", "gemini", "openai", "anthropic", "openrouter", "mock":
	default:
		return fmt.Errorf("llm.provider: unsupported value %q", c.LLM.Provider)
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must not be negative")
	}
	if c.Quiz.DefaultQuestions > c.Quiz.MaxQuestions {
		return fmt.Errorf("quiz.default_questions (%d) exceeds quiz.max_questions (%d)",
			c.Quiz.DefaultQuestions, c.Quiz.MaxQuestions)
	}
	return nil
}

// ErrMissingJWTSecret is returned by RequireServer when no signing secret
// is configured.
var ErrMissingJWTSecret = errors.New("server.jwt_secret (QUIZBOT_JWT_SECRET) is required to serve the API")

// RequireServer checks settings needed only by the HTTP API.
func (c *Config) RequireServer() error {
	if c.Server.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}
