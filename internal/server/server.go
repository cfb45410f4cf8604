// Package server exposes quiz generation, evaluation and analytics over
// HTTP.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/abhisek/quizbot/internal/index"
	"github.com/abhisek/quizbot/internal/quiz"
	"github.com/abhisek/quizbot/internal/store"
)

// Generator builds quizzes.
type Generator interface {
	Generate(ctx context.Context, userID, emailText string, requested int) (*quiz.Quiz, error)
}

// Evaluator grades submissions.
type Evaluator interface {
	Evaluate(ctx context.Context, q *quiz.Quiz, answers []quiz.Answer) (*quiz.QuizResult, error)
}

// Recorder persists graded results and their derived statistics.
type Recorder interface {
	Record(ctx context.Context, q *quiz.Quiz, result *quiz.QuizResult, timeTaken *int) (string, error)
}

// Store is the read side plus quiz persistence.
type Store interface {
	SaveQuiz(ctx context.Context, q *quiz.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (*store.QuizRecord, error)
	ListResults(ctx context.Context, userID string, limit int) ([]store.ResultRecord, error)
	GetUserStats(ctx context.Context, userID string) (*store.UserStats, error)
	UserAnalytics(ctx context.Context, userID string) (*store.Analytics, error)
}

// Searcher finds a user's stored emails similar to a query.
type Searcher interface {
	Search(ctx context.Context, userID, query string, k int) ([]index.Match, error)
}

// Deps are the collaborators a Server calls.
type Deps struct {
	Generator Generator
	Evaluator Evaluator
	Recorder  Recorder
	Store     Store
	Searcher  Searcher
	Logger    *slog.Logger
}

// Options configures transport concerns.
type Options struct {
	// JWTSecret verifies HS256 bearer tokens.
	JWTSecret string

	// FrontendURL is the allowed CORS origin. Empty allows any origin.
	FrontendURL string

	// RequestTimeout bounds each handler. Zero means no bound.
	RequestTimeout time.Duration

	// DefaultQuestions is used when a generate request omits num_questions.
	DefaultQuestions int

	// Model is reported by the health endpoint.
	Model string
}

// Server is the HTTP API.
type Server struct {
	app      *fiber.App
	deps     Deps
	opts     Options
	log      *slog.Logger
	validate *validator.Validate
}

// New wires routes and middleware.
func New(deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.DefaultQuestions <= 0 {
		opts.DefaultQuestions = 5
	}
	s := &Server{
		deps:     deps,
		opts:     opts,
		log:      deps.Logger.With("component", "server"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "quizbot",
		ErrorHandler:          s.handleError,
		DisableStartupMessage: true,
	})

	s.app.Use(recover.New())
	s.app.Use(s.corsMiddleware())
	s.app.Use(s.loggingMiddleware())

	api := s.app.Group("/api")
	api.Get("/health", s.health)

	authed := api.Group("", s.authMiddleware(), s.timeoutMiddleware())
	authed.Post("/quiz/generate", s.generateQuiz)
	authed.Post("/quiz/evaluate", s.evaluateQuiz)
	authed.Get("/quiz/:id", s.getQuiz)
	authed.Get("/analytics/history", s.history)
	authed.Get("/analytics/progress", s.progress)
	authed.Get("/analytics/stats", s.stats)
	authed.Get("/emails/similar", s.similarEmails)

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.app.Listen(addr) }()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		return s.app.ShutdownWithTimeout(10 * time.Second)
	}
}

func (s *Server) corsMiddleware() fiber.Handler {
	if s.opts.FrontendURL == "" {
		return cors.New(cors.Config{
			AllowOrigins: "*",
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		})
	}
	return cors.New(cors.Config{
		AllowOrigins:     s.opts.FrontendURL,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	})
}
