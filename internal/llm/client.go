package llm

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
)

// Completion is a single prompt-to-text request issued through a Client.
type Completion struct {
	Prompt      string
	System      string
	Temperature float64
	MaxTokens   int
	Retry       RetryPolicy
}

// Client issues completions against a Provider, retrying failed or empty
// attempts according to each completion's RetryPolicy.
type Client struct {
	provider Provider
	logger   *slog.Logger
	sleep    func(context.Context, time.Duration) error
	jitter   func() float64
	now      func() time.Time
	timeout  time.Duration
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithSleeper overrides the wait between attempts. Intended for tests.
func WithSleeper(fn func(context.Context, time.Duration) error) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithJitter overrides the jitter source. fn must return values in [0, 1).
func WithJitter(fn func() float64) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.jitter = fn
		}
	}
}

// WithClock overrides the clock used for the MaxElapsed ceiling.
func WithClock(fn func() time.Time) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.now = fn
		}
	}
}

// WithAttemptTimeout bounds each provider call. Zero means no bound.
func WithAttemptTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient wraps p.
func NewClient(p Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider: p,
		logger:   slog.New(slog.DiscardHandler),
		sleep:    sleepCtx,
		jitter:   rand.Float64,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModelID returns the underlying provider's model.
func (c *Client) ModelID() string {
	return c.provider.ModelID()
}

// Complete sends in to the provider as a single user message (System, a
// blank line, then Prompt) and returns the first non-empty text.
// Attempts are bounded by in.Retry; there is no wait after the final one.
// When every attempt fails the result is *ErrGenerationExhausted wrapping
// the last failure. Context cancellation is returned as-is.
func (c *Client) Complete(ctx context.Context, in Completion) (string, error) {
	policy := in.Retry.normalized()
	prompt := in.Prompt
	if in.System != "" {
		prompt = in.System + "\n\n" + in.Prompt
	}
	req := Request{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   in.MaxTokens,
		Temperature: in.Temperature,
	}

	start := c.now()
	attempts := 0
	var lastErr error

	for attempt := range policy.MaxAttempts {
		attempts++
		resp, err := c.generate(ctx, req)
		if err == nil {
			if strings.TrimSpace(resp.Text) != "" {
				return resp.Text, nil
			}
			switch resp.StopReason {
			case StopMaxTokens:
				err = &ErrMaxTokensExceeded{MaxTokens: in.MaxTokens}
			case StopFiltered:
				err = &ErrInvalidResponse{Err: errors.New("output withheld by provider filter")}
			default:
				err = ErrEmptyCompletion
			}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if !retryable(err) {
			return "", err
		}
		lastErr = err

		if attempt == policy.MaxAttempts-1 {
			break
		}

		wait := policy.Backoff(attempt, err, c.jitter())
		if policy.MaxElapsed > 0 && c.now().Sub(start)+wait > policy.MaxElapsed {
			c.logger.Warn("llm retry ceiling reached",
				"purpose", PurposeFrom(ctx),
				"attempts", attempts,
				"max_elapsed", policy.MaxElapsed)
			break
		}

		c.logger.Warn("llm attempt failed, retrying",
			"purpose", PurposeFrom(ctx),
			"attempt", attempts,
			"max_attempts", policy.MaxAttempts,
			"wait", wait,
			"rate_limited", IsRateLimit(err),
			"error", err)

		if err := c.sleep(ctx, wait); err != nil {
			return "", err
		}
	}

	return "", &ErrGenerationExhausted{Attempts: attempts, Last: lastErr}
}

func (c *Client) generate(ctx context.Context, req Request) (*Response, error) {
	if c.timeout <= 0 {
		return c.provider.Generate(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.provider.Generate(ctx, req)
}

// IsExhausted reports whether err came from a completion that used up its
// retry budget.
func IsExhausted(err error) bool {
	var ex *ErrGenerationExhausted
	return errors.As(err, &ex)
}
