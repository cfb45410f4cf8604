package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyCompletion indicates the provider answered successfully but
// produced no text. It is retried like any transient failure.
var ErrEmptyCompletion = errors.New("empty completion")

// ErrRateLimit indicates the provider returned a rate limit or quota error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the provider returned a response with no
// usable content (no choices, no text block).
type ErrInvalidResponse struct {
	Err error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the provider stopped at the token limit
// before producing any text. It is an empty completion and is retried
// like one.
type ErrMaxTokensExceeded struct {
	MaxTokens int
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("%v: stopped at max tokens (%d)", ErrEmptyCompletion, e.MaxTokens)
}

func (e *ErrMaxTokensExceeded) Unwrap() error { return ErrEmptyCompletion }

// ErrGenerationExhausted is returned by Client.Complete once every attempt
// allowed by the RetryPolicy has failed. Last is the final underlying failure.
type ErrGenerationExhausted struct {
	Attempts int
	Last     error
}

func (e *ErrGenerationExhausted) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ErrGenerationExhausted) Unwrap() error { return e.Last }

// IsRateLimit reports whether err is (or wraps) a rate limit error.
func IsRateLimit(err error) bool {
	var rl *ErrRateLimit
	return errors.As(err, &rl)
}

// isQuotaMessage matches vendor error text that signals quota exhaustion
// without a 429 status.
func isQuotaMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "quota") || strings.Contains(m, "resource_exhausted") || strings.Contains(m, "429")
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
