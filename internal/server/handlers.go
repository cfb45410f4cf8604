package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/abhisek/quizbot/internal/index"
	"github.com/abhisek/quizbot/internal/quiz"
	"github.com/abhisek/quizbot/internal/store"
)

type generateRequest struct {
	DonorEmail   string `json:"donor_email" validate:"required"`
	NumQuestions *int   `json:"num_questions" validate:"omitempty,min=1"`
}

type evaluateRequest struct {
	Quiz             *quiz.Quiz    `json:"quiz" validate:"required_without=QuizID"`
	QuizID           string        `json:"quiz_id" validate:"required_without=Quiz"`
	Answers          []quiz.Answer `json:"answers" validate:"dive"`
	TimeTakenSeconds *int          `json:"time_taken_seconds" validate:"omitempty,min=0"`
}

// evaluateResponse is the graded result plus presentation fields.
type evaluateResponse struct {
	*quiz.QuizResult
	ResultID    string `json:"result_id,omitempty"`
	Grade       string `json:"grade"`
	Performance string `json:"performance"`
}

func (s *Server) bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return s.validate.Struct(dst)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "model": s.opts.Model})
}

func (s *Server) generateQuiz(c *fiber.Ctx) error {
	var req generateRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	n := s.opts.DefaultQuestions
	if req.NumQuestions != nil {
		n = *req.NumQuestions
	}

	uid := userID(c)
	q, err := s.deps.Generator.Generate(c.UserContext(), uid, req.DonorEmail, n)
	if err != nil {
		return err
	}
	if err := s.deps.Store.SaveQuiz(c.UserContext(), q); err != nil {
		s.log.Warn("save quiz failed", "quiz_id", q.QuizID, "user_id", uid, "error", err)
	}
	return c.JSON(q)
}

func (s *Server) evaluateQuiz(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	uid := userID(c)
	ctx := c.UserContext()

	q := req.Quiz
	if q == nil {
		rec, err := s.deps.Store.GetQuiz(ctx, req.QuizID)
		if err != nil {
			return err
		}
		q = rec.Quiz
	}
	if q.UserID != uid {
		return fiber.NewError(fiber.StatusForbidden, "quiz belongs to another user")
	}
	if len(q.Questions) == 0 {
		return quiz.ErrEmptyQuiz
	}

	result, err := s.deps.Evaluator.Evaluate(ctx, q, req.Answers)
	if err != nil {
		return err
	}

	resp := evaluateResponse{
		QuizResult:  result,
		Grade:       quiz.Grade(result.Score),
		Performance: quiz.PerformanceLabel(result.Score),
	}
	id, err := s.deps.Recorder.Record(ctx, q, result, req.TimeTakenSeconds)
	if err != nil {
		s.log.Warn("record result failed", "quiz_id", q.QuizID, "user_id", uid, "error", err)
	}
	resp.ResultID = id
	return c.JSON(resp)
}

func (s *Server) getQuiz(c *fiber.Ctx) error {
	rec, err := s.deps.Store.GetQuiz(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if rec.Quiz.UserID != userID(c) {
		return fiber.NewError(fiber.StatusForbidden, "quiz belongs to another user")
	}
	return c.JSON(fiber.Map{"quiz": rec.Quiz, "is_completed": rec.Completed})
}

func (s *Server) history(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", store.DefaultHistoryLimit)
	if limit < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be positive")
	}
	results, err := s.deps.Store.ListResults(c.UserContext(), userID(c), limit)
	if err != nil {
		return err
	}
	if results == nil {
		results = []store.ResultRecord{}
	}
	return c.JSON(results)
}

func (s *Server) progress(c *fiber.Ctx) error {
	a, err := s.deps.Store.UserAnalytics(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(a)
}

func (s *Server) stats(c *fiber.Ctx) error {
	uid := userID(c)
	ctx := c.UserContext()

	st, err := s.deps.Store.GetUserStats(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		st = &store.UserStats{UserID: uid}
	} else if err != nil {
		return err
	}
	a, err := s.deps.Store.UserAnalytics(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": st, "analytics": a})
}

func (s *Server) similarEmails(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter q is required")
	}
	k := c.QueryInt("k", index.DefaultSearchLimit)
	matches, err := s.deps.Searcher.Search(c.UserContext(), userID(c), query, k)
	if err != nil {
		return err
	}
	return c.JSON(matches)
}
