package quiz

import "errors"

var (
	// ErrInvalidQuestionCount is returned when the requested number of
	// questions is outside 1..MaxQuestions.
	ErrInvalidQuestionCount = errors.New("invalid question count")

	// ErrMissingInput is returned when the user id or email text is blank.
	ErrMissingInput = errors.New("missing user id or email text")

	// ErrEmptyQuiz is returned when evaluating a quiz with no questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
)
