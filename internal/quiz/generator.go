package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizbot/internal/llm"
)

// Completer produces text for a prompt. *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, c llm.Completion) (string, error)
}

// EmailIndexer stores a source email for later similarity search.
type EmailIndexer interface {
	Index(ctx context.Context, userID, content string) error
}

// Option customizes a Generator or Evaluator.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	indexer EmailIndexer
	now     func() time.Time
	newID   func() string
}

func buildOptions(opts []Option) options {
	o := options{
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIndexer sets the email index notified on every generation.
func WithIndexer(ix EmailIndexer) Option {
	return func(o *options) { o.indexer = ix }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator overrides UUID generation for quiz ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// Generator builds quizzes from donor emails.
type Generator struct {
	llm  Completer
	cfg  Config
	opts options

	indexing sync.WaitGroup
}

// NewGenerator creates a Generator.
func NewGenerator(c Completer, cfg Config, opts ...Option) *Generator {
	return &Generator{llm: c, cfg: cfg, opts: buildOptions(opts)}
}

// Generate builds a quiz of up to requested questions from emailText.
//
// Only precondition violations are returned as errors. Backend failures and
// unusable model output fall back to the static question bank, so a quiz
// is always produced for valid input.
func (g *Generator) Generate(ctx context.Context, userID, emailText string, requested int) (*Quiz, error) {
	if requested < 1 || (g.cfg.MaxQuestions > 0 && requested > g.cfg.MaxQuestions) {
		return nil, fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidQuestionCount, requested, g.cfg.MaxQuestions)
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(emailText) == "" {
		return nil, ErrMissingInput
	}

	log := g.opts.logger.With("user_id", userID)

	if g.opts.indexer != nil {
		g.indexing.Go(func() { g.index(context.WithoutCancel(ctx), log, userID, emailText) })
	}

	raw, err := g.complete(ctx, emailText, requested)
	if err != nil {
		log.Warn("quiz generation failed, using fallback questions", "error", err)
	}

	ex := Extract(raw, requested)
	for _, w := range ex.Warnings {
		log.Warn("question candidate repaired or skipped",
			"index", w.Index, "question_id", w.QuestionID, "reason", w.Message)
	}
	if ex.Fallback {
		log.Warn("using fallback question bank", "questions", len(ex.Questions))
	}

	q := &Quiz{
		QuizID:       g.opts.newID(),
		UserID:       userID,
		EmailContext: emailText,
		Questions:    ex.Questions,
		CreatedAt:    g.opts.now().UTC(),
	}
	log.Info("quiz generated",
		"quiz_id", q.QuizID,
		"requested", requested,
		"questions", len(q.Questions),
		"fallback", ex.Fallback)
	return q, nil
}

func (g *Generator) complete(ctx context.Context, emailText string, requested int) (string, error) {
	limited := truncateRunes(emailText, g.cfg.EmailPromptLimit)
	if limited != emailText {
		g.opts.logger.Debug("email truncated for prompt",
			"runes", len([]rune(emailText)), "limit", g.cfg.EmailPromptLimit)
	}

	prompt, err := render(generationTemplate, generationData{Count: requested, Email: limited})
	if err != nil {
		return "", fmt.Errorf("render generation prompt: %w", err)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeGenerate)
	return g.llm.Complete(ctx, g.cfg.Generation.completion(generationSystemPrompt, prompt))
}

// Wait blocks until background email indexing started by Generate has
// finished. Call it before closing the index's backing store.
func (g *Generator) Wait() {
	g.indexing.Wait()
}

func (g *Generator) index(ctx context.Context, log *slog.Logger, userID, emailText string) {
	if err := g.opts.indexer.Index(ctx, userID, emailText); err != nil {
		log.Warn("email indexing failed", "error", err)
	}
}
