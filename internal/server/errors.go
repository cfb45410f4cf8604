package server

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/abhisek/quizbot/internal/quiz"
	"github.com/abhisek/quizbot/internal/store"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorStatus maps a handler error to its HTTP status and client message.
// known is false for errors with no explicit mapping, which become 500.
func errorStatus(err error) (code int, message string, known bool) {
	var fe *fiber.Error
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message, true
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ve.Error(), true
	case errors.Is(err, quiz.ErrInvalidQuestionCount),
		errors.Is(err, quiz.ErrMissingInput),
		errors.Is(err, quiz.ErrEmptyQuiz):
		return fiber.StatusBadRequest, err.Error(), true
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound, err.Error(), true
	default:
		return fiber.StatusInternalServerError, "internal server error", false
	}
}

// handleError writes the JSON error body for err.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code, message, known := errorStatus(err)
	if !known {
		s.log.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(errorResponse{
		Success: false,
		Error:   utils.StatusMessage(code),
		Message: message,
	})
}
