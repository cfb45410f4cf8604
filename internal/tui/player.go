// Package tui is the terminal quiz player.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizbot/internal/quiz"
)

// GenerateFunc produces the quiz to play.
type GenerateFunc func(ctx context.Context) (*quiz.Quiz, error)

// EvaluateFunc grades the collected answers.
type EvaluateFunc func(ctx context.Context, q *quiz.Quiz, answers []quiz.Answer) (*quiz.QuizResult, error)

type phase int

const (
	phaseGenerating phase = iota
	phaseAnswering
	phaseEvaluating
	phaseDone
	phaseFailed
)

type quizReadyMsg struct {
	quiz *quiz.Quiz
	err  error
}

type resultReadyMsg struct {
	result *quiz.QuizResult
	err    error
}

// Player walks a learner through one quiz: generation, one screen per
// question, evaluation, then the graded results.
type Player struct {
	ctx      context.Context
	generate GenerateFunc
	evaluate EvaluateFunc
	now      func() time.Time

	phase   phase
	spinner spinner.Model
	width   int

	quiz    *quiz.Quiz
	current int
	choice  choice
	answers []quiz.Answer
	started time.Time
	elapsed time.Duration

	result *quiz.QuizResult
	err    error
}

// NewPlayer returns a Player that calls generate on start and evaluate once
// every question is answered.
func NewPlayer(ctx context.Context, generate GenerateFunc, evaluate EvaluateFunc) *Player {
	return &Player{
		ctx:      ctx,
		generate: generate,
		evaluate: evaluate,
		now:      time.Now,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(selectedStyle)),
		width:    80,
	}
}

// Run plays the quiz in the terminal and returns the finished Player.
func Run(ctx context.Context, p *Player) (*Player, error) {
	final, err := tea.NewProgram(p, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}
	return final.(*Player), nil
}

// Quiz returns the generated quiz, or nil before generation finishes.
func (p *Player) Quiz() *quiz.Quiz { return p.quiz }

// Result returns the graded result, or nil if the quiz was not finished.
func (p *Player) Result() *quiz.QuizResult { return p.result }

// Err returns the generation or evaluation failure, if any.
func (p *Player) Err() error { return p.err }

// Elapsed is the time from the first question to the last answer.
func (p *Player) Elapsed() time.Duration { return p.elapsed }

func (p *Player) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.generateCmd())
}

func (p *Player) generateCmd() tea.Cmd {
	return func() tea.Msg {
		q, err := p.generate(p.ctx)
		return quizReadyMsg{quiz: q, err: err}
	}
}

func (p *Player) evaluateCmd() tea.Cmd {
	q, answers := p.quiz, p.answers
	return func() tea.Msg {
		r, err := p.evaluate(p.ctx, q, answers)
		return resultReadyMsg{result: r, err: err}
	}
}

func (p *Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		return p, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return p, tea.Quit
		}
		switch p.phase {
		case phaseAnswering:
			return p, p.answer(msg)
		case phaseDone, phaseFailed:
			if key == "q" || key == "enter" || key == "esc" {
				return p, tea.Quit
			}
		}
		return p, nil

	case quizReadyMsg:
		if msg.err != nil {
			p.phase, p.err = phaseFailed, msg.err
			return p, nil
		}
		if msg.quiz == nil || len(msg.quiz.Questions) == 0 {
			p.phase, p.err = phaseFailed, quiz.ErrEmptyQuiz
			return p, nil
		}
		p.quiz = msg.quiz
		p.phase = phaseAnswering
		p.started = p.now()
		p.showQuestion(0)
		return p, nil

	case resultReadyMsg:
		if msg.err != nil {
			p.phase, p.err = phaseFailed, msg.err
			return p, nil
		}
		p.result = msg.result
		p.phase = phaseDone
		return p, nil

	case spinner.TickMsg:
		if p.phase != phaseGenerating && p.phase != phaseEvaluating {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *Player) showQuestion(i int) {
	p.current = i
	q := p.quiz.Questions[i]
	p.choice = newChoice(q.QuestionText, q.Options)
}

func (p *Player) answer(msg tea.Msg) tea.Cmd {
	p.choice = p.choice.update(msg)
	if !p.choice.submitted {
		return nil
	}

	p.answers = append(p.answers, quiz.Answer{
		QuestionID:     p.quiz.Questions[p.current].ID,
		SelectedAnswer: p.choice.answer(),
	})
	if p.current+1 < len(p.quiz.Questions) {
		p.showQuestion(p.current + 1)
		return nil
	}

	p.elapsed = p.now().Sub(p.started)
	p.phase = phaseEvaluating
	return tea.Batch(p.spinner.Tick, p.evaluateCmd())
}

func (p *Player) View() tea.View {
	return tea.NewView(p.render())
}

func (p *Player) render() string {
	width := max(p.width-4, 40)
	switch p.phase {
	case phaseGenerating:
		return p.spinner.View() + " Generating quiz from your email...\n"
	case phaseEvaluating:
		return p.spinner.View() + " Grading your answers...\n"
	case phaseFailed:
		return incorrectStyle.Render("Error: "+p.err.Error()) + "\n" + hintStyle.Render("press q to exit") + "\n"
	case phaseAnswering:
		var b strings.Builder
		b.WriteString(titleStyle.Render(fmt.Sprintf("Question %d of %d", p.current+1, len(p.quiz.Questions))))
		b.WriteString("\n")
		b.WriteString(progressBar(p.current, len(p.quiz.Questions), min(width, 60)))
		b.WriteString("\n\n")
		b.WriteString(cardStyle.Width(width).Render(strings.TrimRight(p.choice.view(), "\n")))
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("up/down or a-d to choose, enter to answer, ctrl+c to quit"))
		b.WriteString("\n")
		return b.String()
	default:
		return p.renderResult(width)
	}
}

func (p *Player) renderResult(width int) string {
	r := p.result
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Score: %d/%d (%.0f%%)  Grade %s  %s",
		r.CorrectAnswers, r.TotalQuestions, r.Score, quiz.Grade(r.Score), quiz.PerformanceLabel(r.Score))))
	b.WriteString("\n\n")

	wrap := lipgloss.NewStyle().Width(width).PaddingLeft(4)
	for i, qr := range r.Results {
		mark, style := "✗", incorrectStyle
		if qr.IsCorrect {
			mark, style = "✓", correctStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s %d. %s", mark, i+1, qr.QuestionText)))
		b.WriteString("\n")
		b.WriteString(hintStyle.Render(fmt.Sprintf("    your answer: %s  correct: %s", orDash(qr.SelectedAnswer), qr.CorrectAnswer)))
		b.WriteString("\n")
		if qr.Explanation != "" {
			b.WriteString(wrap.Render(qr.Explanation))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(cardStyle.Width(width).Render(strings.TrimSpace(r.Summary)))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("press enter or q to exit"))
	b.WriteString("\n")
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
