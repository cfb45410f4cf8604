package quiz

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizbot/internal/llm"
)

// Evaluator grades submissions and asks the model for feedback.
type Evaluator struct {
	llm  Completer
	cfg  Config
	opts options
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(c Completer, cfg Config, opts ...Option) *Evaluator {
	return &Evaluator{llm: c, cfg: cfg, opts: buildOptions(opts)}
}

// Evaluate grades answers against q. Unanswered questions count as
// incorrect. Explanations and the summary come from the model when it
// responds and from static text otherwise, so the only error is
// ErrEmptyQuiz. q is not modified.
func (e *Evaluator) Evaluate(ctx context.Context, q *Quiz, answers []Answer) (*QuizResult, error) {
	if q == nil || len(q.Questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	log := e.opts.logger.With("quiz_id", q.QuizID, "user_id", q.UserID)

	selected := make(map[string]string, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.SelectedAnswer
	}
	if missing := Unanswered(q, answers); len(missing) > 0 {
		log.Info("submission has unanswered questions", "count", len(missing))
	}

	results := make([]QuestionResult, len(q.Questions))
	correct := 0
	for i, question := range q.Questions {
		answer := selected[question.ID]
		ok := IsCorrect(answer, question.CorrectAnswer)
		if ok {
			correct++
		}
		results[i] = QuestionResult{
			QuestionID:     question.ID,
			QuestionText:   question.QuestionText,
			SelectedAnswer: answer,
			CorrectAnswer:  question.CorrectAnswer,
			IsCorrect:      ok,
		}
	}

	// Each goroutine writes only its own slot.
	var g errgroup.Group
	if e.cfg.Concurrency > 0 {
		g.SetLimit(e.cfg.Concurrency)
	}
	for i := range results {
		g.Go(func() error {
			results[i].Explanation = e.explain(ctx, log, q.Questions[i], results[i])
			return nil
		})
	}
	_ = g.Wait()

	total := len(q.Questions)
	score := 100 * float64(correct) / float64(total)

	return &QuizResult{
		QuizID:         q.QuizID,
		UserID:         q.UserID,
		Score:          score,
		TotalQuestions: total,
		CorrectAnswers: correct,
		Results:        results,
		Summary:        e.summarize(ctx, log, q, score, correct, total),
		CompletedAt:    e.opts.now().UTC(),
	}, nil
}

func (e *Evaluator) explain(ctx context.Context, log *slog.Logger, question Question, r QuestionResult) string {
	fallback := question.Explanation
	if fallback == "" {
		fallback = fmt.Sprintf("The correct answer is %s.", question.CorrectAnswer)
	}

	prompt, err := render(explanationTemplate, explanationData{
		Question:  question.QuestionText,
		Correct:   question.CorrectAnswer,
		Selected:  r.SelectedAnswer,
		IsCorrect: r.IsCorrect,
		Base:      question.Explanation,
	})
	if err != nil {
		log.Warn("render explanation prompt", "question_id", question.ID, "error", err)
		return fallback
	}

	text, err := e.llm.Complete(llm.WithPurpose(ctx, llm.PurposeExplain), e.cfg.Explanation.completion("", prompt))
	if err != nil {
		log.Warn("explanation failed, using static text", "question_id", question.ID, "error", err)
		return fallback
	}
	return text
}

func (e *Evaluator) summarize(ctx context.Context, log *slog.Logger, q *Quiz, score float64, correct, total int) string {
	data := summaryData{
		Score:       formatScore(score),
		Raw:         score,
		Correct:     correct,
		Incorrect:   total - correct,
		Total:       total,
		Email:       truncateRunes(q.EmailContext, e.cfg.SummaryContextLimit),
		Performance: performanceLine(score),
	}

	prompt, err := render(summaryTemplate, data)
	if err == nil {
		var text string
		text, err = e.llm.Complete(llm.WithPurpose(ctx, llm.PurposeSummary), e.cfg.Summary.completion("", prompt))
		if err == nil {
			return text
		}
	}
	log.Warn("summary failed, using template", "error", err)
	return FallbackSummary(score, correct, total)
}

// FallbackSummary is the deterministic summary used when the model cannot
// produce one.
func FallbackSummary(score float64, correct, total int) string {
	out, err := render(fallbackSummaryTemplate, summaryData{
		Score:       formatScore(score),
		Raw:         score,
		Correct:     correct,
		Total:       total,
		Performance: performanceLine(score),
	})
	if err != nil {
		// The template is static; this only fires on a programming error.
		panic(err)
	}
	return out
}
