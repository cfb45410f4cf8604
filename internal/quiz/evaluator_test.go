package quiz

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abhisek/quizbot/internal/llm"
)

func twoQuestionQuiz() *Quiz {
	return &Quiz{
		QuizID:       "quiz-1",
		UserID:       "user-1",
		EmailContext: "Thank you for supporting our literacy program.",
		Questions: []Question{
			{ID: "q1", QuestionText: "First?", Options: []string{"A) a", "B) b", "C) c", "D) d"}, CorrectAnswer: "A", Explanation: "Static one.", Difficulty: DifficultyEasy},
			{ID: "q2", QuestionText: "Second?", Options: []string{"A) a", "B) b", "C) c", "D) d"}, CorrectAnswer: "B", Explanation: "Static two.", Difficulty: DifficultyHard},
		},
		CreatedAt: fixedNow,
	}
}

// echoProvider answers explanation prompts with the question text and
// summary prompts with a fixed string.
func echoProvider() *llm.MockProvider {
	return llm.NewMockProviderFunc(func(req llm.Request) llm.MockResponse {
		prompt := req.Messages[0].Content
		if strings.Contains(prompt, "QUIZ RESULTS") {
			return llm.MockResponse{Text: "model summary"}
		}
		for _, line := range strings.Split(prompt, "\n") {
			if q, ok := strings.CutPrefix(line, "Question: "); ok {
				return llm.MockResponse{Text: "explained " + q}
			}
		}
		return llm.MockResponse{Err: errors.New("unexpected prompt")}
	})
}

func TestEvaluator_ScoresCaseInsensitively(t *testing.T) {
	e := NewEvaluator(newTestClient(echoProvider()), DefaultConfig(), WithClock(func() time.Time { return fixedNow }))
	q := twoQuestionQuiz()

	res, err := e.Evaluate(context.Background(), q, []Answer{
		{QuestionID: "q1", SelectedAnswer: "a"},
		{QuestionID: "q2", SelectedAnswer: "C"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CorrectAnswers != 1 || res.TotalQuestions != 2 || res.Score != 50.0 {
		t.Fatalf("unexpected score %+v", res)
	}
	if !res.Results[0].IsCorrect || res.Results[1].IsCorrect {
		t.Fatalf("unexpected correctness %+v", res.Results)
	}
	if res.Results[0].Explanation != "explained First?" || res.Results[1].Explanation != "explained Second?" {
		t.Fatalf("explanations out of order: %+v", res.Results)
	}
	if res.Summary != "model summary" {
		t.Fatalf("unexpected summary %q", res.Summary)
	}
	if res.QuizID != "quiz-1" || res.UserID != "user-1" || !res.CompletedAt.Equal(fixedNow) {
		t.Fatalf("unexpected metadata %+v", res)
	}
}

func TestEvaluator_WhitespaceAndMissingAnswers(t *testing.T) {
	e := NewEvaluator(newTestClient(echoProvider()), DefaultConfig())
	q := twoQuestionQuiz()

	res, err := e.Evaluate(context.Background(), q, []Answer{{QuestionID: "q1", SelectedAnswer: " A "}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Results[0].IsCorrect {
		t.Fatal("expected padded answer to match")
	}
	if res.Results[1].IsCorrect || res.Results[1].SelectedAnswer != "" {
		t.Fatalf("expected unanswered question to be incorrect, got %+v", res.Results[1])
	}
}

func TestEvaluator_ExplanationFailureUsesStaticText(t *testing.T) {
	mock := llm.NewMockProviderFunc(func(req llm.Request) llm.MockResponse {
		return llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}}
	})
	e := NewEvaluator(newTestClient(mock), DefaultConfig())
	q := twoQuestionQuiz()
	q.Questions[1].Explanation = ""

	res, err := e.Evaluate(context.Background(), q, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Results[0].Explanation != "Static one." {
		t.Fatalf("expected static explanation, got %q", res.Results[0].Explanation)
	}
	if res.Results[1].Explanation != "The correct answer is B." {
		t.Fatalf("expected generated fallback, got %q", res.Results[1].Explanation)
	}
	if res.Summary != FallbackSummary(0, 0, 2) {
		t.Fatalf("expected fallback summary, got %q", res.Summary)
	}
	// 2 explanations and 1 summary, each with 3 attempts.
	if mock.CallCount() != 9 {
		t.Fatalf("expected 9 calls, got %d", mock.CallCount())
	}
}

func TestEvaluator_DoesNotMutateQuiz(t *testing.T) {
	e := NewEvaluator(newTestClient(echoProvider()), DefaultConfig())
	q := twoQuestionQuiz()
	before := *q
	before.Questions = append([]Question(nil), q.Questions...)

	if _, err := e.Evaluate(context.Background(), q, []Answer{{QuestionID: "q1", SelectedAnswer: "d"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range q.Questions {
		if q.Questions[i].Explanation != before.Questions[i].Explanation || q.Questions[i].CorrectAnswer != before.Questions[i].CorrectAnswer {
			t.Fatal("quiz was mutated")
		}
	}
}

func TestEvaluator_EmptyQuiz(t *testing.T) {
	e := NewEvaluator(newTestClient(echoProvider()), DefaultConfig())
	if _, err := e.Evaluate(context.Background(), &Quiz{QuizID: "x"}, nil); !errors.Is(err, ErrEmptyQuiz) {
		t.Fatalf("expected ErrEmptyQuiz, got %v", err)
	}
	if _, err := e.Evaluate(context.Background(), nil, nil); !errors.Is(err, ErrEmptyQuiz) {
		t.Fatalf("expected ErrEmptyQuiz for nil quiz, got %v", err)
	}
}

func TestEvaluator_ConcurrencyIsBounded(t *testing.T) {
	var inFlight, peak atomic.Int32
	mock := llm.NewMockProviderFunc(func(req llm.Request) llm.MockResponse {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return llm.MockResponse{Text: "ok"}
	})

	cfg := DefaultConfig()
	cfg.Concurrency = 2
	e := NewEvaluator(newTestClient(mock), cfg)

	q := &Quiz{QuizID: "big", UserID: "u"}
	for i := range 8 {
		q.Questions = append(q.Questions, Question{ID: string(rune('a' + i)), CorrectAnswer: "A", Explanation: "x"})
	}

	res, err := e.Evaluate(context.Background(), q, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Results) != 8 {
		t.Fatalf("expected 8 results, got %d", len(res.Results))
	}
	if peak.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent calls, saw %d", peak.Load())
	}
}

func TestEvaluator_ScoreMatchesCounts(t *testing.T) {
	e := NewEvaluator(newTestClient(echoProvider()), DefaultConfig())
	q := &Quiz{QuizID: "three", UserID: "u"}
	for _, id := range []string{"q1", "q2", "q3"} {
		q.Questions = append(q.Questions, Question{ID: id, QuestionText: id, CorrectAnswer: "A"})
	}

	res, err := e.Evaluate(context.Background(), q, []Answer{{QuestionID: "q2", SelectedAnswer: "a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 100 * float64(res.CorrectAnswers) / float64(res.TotalQuestions)
	if math.Abs(res.Score-want) > 1e-9 || len(res.Results) != res.TotalQuestions {
		t.Fatalf("score %v inconsistent with %d/%d", res.Score, res.CorrectAnswers, res.TotalQuestions)
	}
}

func TestFallbackSummary(t *testing.T) {
	tests := []struct {
		name        string
		score       float64
		correct     int
		total       int
		performance string
		strong      bool
	}{
		{"excellent", 80, 4, 5, "Excellent work!", true},
		{"good", 60, 3, 5, "Good effort!", false},
		{"keep practicing", 40, 2, 5, "Keep practicing!", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := FallbackSummary(tt.score, tt.correct, tt.total)
			if !strings.HasPrefix(s, "QUIZ SUMMARY\n\n") {
				t.Fatalf("missing heading: %q", s)
			}
			if !strings.Contains(s, tt.performance) {
				t.Fatalf("expected %q in %q", tt.performance, s)
			}
			if got := strings.Contains(s, "You demonstrated strong understanding"); got != tt.strong {
				t.Fatalf("strong-understanding sentence present = %v, want %v", got, tt.strong)
			}
		})
	}

	s := FallbackSummary(66.666666, 2, 3)
	if !strings.Contains(s, "You scored 66.67% on this non-profit management assessment (2 out of 3 questions correct).") {
		t.Fatalf("unexpected score line: %q", s)
	}
}

func TestGradeAndLabel(t *testing.T) {
	tests := []struct {
		score float64
		grade string
		label string
	}{
		{95, "A", "Excellent"},
		{80, "B", "Very Good"},
		{75, "C", "Good"},
		{60, "D", "Fair"},
		{59.9, "F", "Needs Improvement"},
	}
	for _, tt := range tests {
		if Grade(tt.score) != tt.grade || PerformanceLabel(tt.score) != tt.label {
			t.Errorf("score %v: got %s/%s, want %s/%s", tt.score, Grade(tt.score), PerformanceLabel(tt.score), tt.grade, tt.label)
		}
	}
}

func TestUnanswered(t *testing.T) {
	q := twoQuestionQuiz()
	missing := Unanswered(q, []Answer{{QuestionID: "q1", SelectedAnswer: "A"}, {QuestionID: "q2", SelectedAnswer: "  "}})
	if len(missing) != 1 || missing[0] != "q2" {
		t.Fatalf("unexpected unanswered %v", missing)
	}
}
