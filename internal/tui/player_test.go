package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizbot/internal/quiz"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testQuiz() *quiz.Quiz {
	return &quiz.Quiz{QuizID: "q", UserID: "u", Questions: quiz.FallbackQuestions(2)}
}

func newTestPlayer(gen GenerateFunc, eval EvaluateFunc) *Player {
	p := NewPlayer(context.Background(), gen, eval)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time {
		clock = clock.Add(10 * time.Second)
		return clock
	}
	return p
}

func TestPlayerFullRound(t *testing.T) {
	var gotAnswers []quiz.Answer
	p := newTestPlayer(
		func(context.Context) (*quiz.Quiz, error) { return testQuiz(), nil },
		func(_ context.Context, q *quiz.Quiz, answers []quiz.Answer) (*quiz.QuizResult, error) {
			gotAnswers = answers
			return &quiz.QuizResult{
				QuizID: q.QuizID, Score: 50, TotalQuestions: 2, CorrectAnswers: 1,
				Results: []quiz.QuestionResult{
					{QuestionID: "q1", QuestionText: "First?", SelectedAnswer: "A", CorrectAnswer: "A", IsCorrect: true, Explanation: "Right."},
					{QuestionID: "q2", QuestionText: "Second?", SelectedAnswer: "C", CorrectAnswer: "A", Explanation: "Tax status."},
				},
				Summary: "Keep practicing!",
			}, nil
		},
	)

	p.Update(p.generateCmd()())
	if p.phase != phaseAnswering {
		t.Fatalf("phase = %v, want answering", p.phase)
	}
	if !strings.Contains(p.render(), "Question 1 of 2") {
		t.Fatalf("unexpected view:\n%s", p.render())
	}

	// First question: accept the default (A).
	p.Update(specialKey(tea.KeyEnter))
	if p.current != 1 {
		t.Fatalf("current = %d, want 1", p.current)
	}

	// Second question: move down twice, then jump with a letter.
	p.Update(specialKey(tea.KeyDown))
	p.Update(specialKey(tea.KeyDown))
	p.Update(keyPress('c'))
	_, cmd := p.Update(specialKey(tea.KeyEnter))
	if p.phase != phaseEvaluating || cmd == nil {
		t.Fatalf("phase = %v, want evaluating", p.phase)
	}

	// cmd batches the spinner tick with the evaluation; run the
	// evaluation directly.
	p.Update(p.evaluateCmd()())
	if p.phase != phaseDone {
		t.Fatalf("phase = %v, want done", p.phase)
	}

	if len(gotAnswers) != 2 || gotAnswers[0].SelectedAnswer != "A" || gotAnswers[1].SelectedAnswer != "C" {
		t.Fatalf("answers = %+v", gotAnswers)
	}
	if gotAnswers[0].QuestionID != "q1" || gotAnswers[1].QuestionID != "q2" {
		t.Fatalf("question ids = %+v", gotAnswers)
	}
	if p.Elapsed() != 10*time.Second {
		t.Errorf("elapsed = %v, want 10s", p.Elapsed())
	}

	view := p.render()
	for _, want := range []string{"Score: 1/2", "Grade F", "First?", "Tax status.", "Keep practicing!"} {
		if !strings.Contains(view, want) {
			t.Errorf("result view missing %q:\n%s", want, view)
		}
	}

	_, cmd = p.Update(keyPress('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestPlayerGenerationFailure(t *testing.T) {
	p := newTestPlayer(
		func(context.Context) (*quiz.Quiz, error) { return nil, errors.New("no provider") },
		nil,
	)
	p.Update(p.generateCmd()())
	if p.phase != phaseFailed || p.Err() == nil {
		t.Fatalf("phase = %v err = %v", p.phase, p.Err())
	}
	if !strings.Contains(p.render(), "no provider") {
		t.Errorf("view should show the error:\n%s", p.render())
	}
	if p.Result() != nil {
		t.Error("no result expected")
	}
}

func TestPlayerEmptyQuiz(t *testing.T) {
	p := newTestPlayer(
		func(context.Context) (*quiz.Quiz, error) { return &quiz.Quiz{}, nil },
		nil,
	)
	p.Update(p.generateCmd()())
	if !errors.Is(p.Err(), quiz.ErrEmptyQuiz) {
		t.Fatalf("err = %v, want ErrEmptyQuiz", p.Err())
	}
}

func TestPlayerIgnoresKeysWhileGenerating(t *testing.T) {
	p := newTestPlayer(func(context.Context) (*quiz.Quiz, error) { return testQuiz(), nil }, nil)
	_, cmd := p.Update(specialKey(tea.KeyEnter))
	if cmd != nil || p.phase != phaseGenerating {
		t.Fatal("enter during generation should do nothing")
	}
	_, cmd = p.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
}

func TestChoiceNavigationBounds(t *testing.T) {
	c := newChoice("Q?", []string{"A) a", "B) b", "C) c", "D) d"})
	c = c.update(specialKey(tea.KeyUp))
	if c.selected != 0 {
		t.Fatalf("selected = %d, want 0", c.selected)
	}
	for range 10 {
		c = c.update(keyPress('j'))
	}
	if c.answer() != "D" {
		t.Fatalf("answer = %s, want D", c.answer())
	}
	c = c.update(keyPress('B'))
	if c.answer() != "B" {
		t.Fatalf("answer = %s, want B", c.answer())
	}
	c = c.update(specialKey(tea.KeyEnter))
	c = c.update(keyPress('a'))
	if !c.submitted || c.answer() != "B" {
		t.Fatal("submitted choice must not change")
	}
}

func TestProgressBarWidth(t *testing.T) {
	bar := progressBar(1, 4, 30)
	if !strings.Contains(bar, "1/4") {
		t.Errorf("bar missing label: %q", bar)
	}
}
