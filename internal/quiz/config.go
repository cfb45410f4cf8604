package quiz

import (
	"time"

	"github.com/abhisek/quizbot/internal/llm"
)

// CallConfig holds the sampling and retry settings for one kind of
// completion.
type CallConfig struct {
	MaxTokens   int
	Temperature float64
	Retry       llm.RetryPolicy
}

func (c CallConfig) completion(system, prompt string) llm.Completion {
	return llm.Completion{
		Prompt:      prompt,
		System:      system,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		Retry:       c.Retry,
	}
}

// Config controls quiz generation and evaluation.
type Config struct {
	// DefaultQuestions is used when a caller does not specify a count.
	DefaultQuestions int

	// MaxQuestions is the upper bound on requested questions.
	MaxQuestions int

	// EmailPromptLimit is the number of runes of the email placed in the
	// generation prompt.
	EmailPromptLimit int

	// SummaryContextLimit is the number of runes of the email placed in
	// the summary prompt.
	SummaryContextLimit int

	// Concurrency bounds parallel explanation requests per evaluation.
	Concurrency int

	Generation  CallConfig
	Explanation CallConfig
	Summary     CallConfig
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		DefaultQuestions:    5,
		MaxQuestions:        20,
		EmailPromptLimit:    3000,
		SummaryContextLimit: 500,
		Concurrency:         4,
		Generation: CallConfig{
			MaxTokens:   5000,
			Temperature: 0.7,
			Retry:       llm.RetryPolicy{MaxAttempts: 5, BackoffBase: 2.0},
		},
		Explanation: CallConfig{
			MaxTokens:   500,
			Temperature: 0.7,
			Retry:       llm.RetryPolicy{MaxAttempts: 3, BackoffBase: 2.0},
		},
		Summary: CallConfig{
			MaxTokens:   1200,
			Temperature: 0.7,
			Retry:       llm.RetryPolicy{MaxAttempts: 3, BackoffBase: 2.0},
		},
	}
}

// WithRetryCeiling sets MaxElapsed on every call kind.
func (c Config) WithRetryCeiling(d time.Duration) Config {
	c.Generation.Retry.MaxElapsed = d
	c.Explanation.Retry.MaxElapsed = d
	c.Summary.Retry.MaxElapsed = d
	return c
}
