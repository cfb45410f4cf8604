package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/quizbot/internal/llm"
	"github.com/abhisek/quizbot/internal/quiz"
	"github.com/abhisek/quizbot/internal/store"
)

// LLMConfig resolves the provider configuration. Provider-specific
// QUIZBOT_<PROVIDER>_* variables form the base, the [llm] section is layered
// on top, and when no provider is chosen anywhere the first standard API key
// found (GEMINI_API_KEY, OPENAI_API_KEY, ...) selects one.
func (c *Config) LLMConfig() (llm.Config, error) {
	base := llm.ConfigFromEnv()
	if c.LLM.Provider == "" && os.Getenv("QUIZBOT_LLM_PROVIDER") == "" {
		if discovered, ok := llm.DiscoverConfig(); ok {
			base = discovered
		}
	}
	out := base.Override(c.LLM.Provider, c.LLM.Model, c.LLM.APIKey, c.LLM.BaseURL)
	if c.LLM.TimeoutSeconds > 0 {
		out.Timeout = time.Duration(c.LLM.TimeoutSeconds) * time.Second
	}
	return out, out.Validate()
}

// QuizConfig returns generator and evaluator settings.
func (c *Config) QuizConfig() quiz.Config {
	qc := quiz.DefaultConfig()
	qc.DefaultQuestions = c.Quiz.DefaultQuestions
	qc.MaxQuestions = c.Quiz.MaxQuestions
	qc.Concurrency = c.Quiz.Concurrency
	return qc.WithRetryCeiling(time.Duration(c.Quiz.RetryCeilingSeconds) * time.Second)
}

// RequestTimeout returns the HTTP handler deadline.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

// DBPath returns the configured database path or the default location.
func (c *Config) DBPath() (string, error) {
	if c.Database.Path != "" {
		if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0o755); err != nil {
			return "", fmt.Errorf("create database directory: %w", err)
		}
		return c.Database.Path, nil
	}
	return store.DefaultDBPath()
}
