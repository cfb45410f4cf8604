package quiz

import (
	"strings"
	"time"
)

// Difficulty is the self-reported difficulty of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is one multiple-choice item.
type Question struct {
	ID           string `json:"id"`
	QuestionText string `json:"question_text"`

	// Options holds exactly four entries prefixed "A) " through "D) ".
	Options []string `json:"options"`

	// CorrectAnswer is a single letter, A through D.
	CorrectAnswer string `json:"correct_answer"`

	Explanation string     `json:"explanation"`
	Difficulty  Difficulty `json:"difficulty"`
}

// Quiz is a generated set of questions bound to a user and the email it was
// built from. A Quiz is not modified after creation.
type Quiz struct {
	QuizID string `json:"quiz_id"`
	UserID string `json:"user_id"`

	// EmailContext is the full, untruncated source email.
	EmailContext string     `json:"email_context"`
	Questions    []Question `json:"questions"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Answer is a learner's choice for one question.
type Answer struct {
	QuestionID     string `json:"question_id" validate:"required"`
	SelectedAnswer string `json:"selected_answer"`
}

// QuestionResult is the graded outcome of one question.
type QuestionResult struct {
	QuestionID     string `json:"question_id"`
	QuestionText   string `json:"question_text"`
	SelectedAnswer string `json:"selected_answer"`
	CorrectAnswer  string `json:"correct_answer"`
	IsCorrect      bool   `json:"is_correct"`
	Explanation    string `json:"explanation"`
}

// QuizResult is the graded outcome of a whole quiz.
type QuizResult struct {
	QuizID         string           `json:"quiz_id"`
	UserID         string           `json:"user_id"`
	Score          float64          `json:"score"`
	TotalQuestions int              `json:"total_questions"`
	CorrectAnswers int              `json:"correct_answers"`
	Results        []QuestionResult `json:"results"`
	Summary        string           `json:"summary"`
	CompletedAt    time.Time        `json:"completed_at"`
}

// ValidationWarning records a lossy repair or a skipped candidate during
// extraction. Index is the candidate's position in the model output.
type ValidationWarning struct {
	Index      int    `json:"index"`
	QuestionID string `json:"question_id,omitempty"`
	Message    string `json:"message"`
}

// Extraction is the outcome of turning raw model text into questions.
type Extraction struct {
	Questions []Question
	Warnings  []ValidationWarning

	// Fallback is true when the static question bank was used.
	Fallback bool
}

// IsCorrect compares answers ignoring case and surrounding whitespace.
func IsCorrect(selected, correct string) bool {
	return strings.EqualFold(strings.TrimSpace(selected), strings.TrimSpace(correct))
}

// Unanswered returns the IDs of questions with no non-blank answer, in quiz
// order.
func Unanswered(q *Quiz, answers []Answer) []string {
	given := make(map[string]bool, len(answers))
	for _, a := range answers {
		if strings.TrimSpace(a.SelectedAnswer) != "" {
			given[a.QuestionID] = true
		}
	}
	var missing []string
	for _, question := range q.Questions {
		if !given[question.ID] {
			missing = append(missing, question.ID)
		}
	}
	return missing
}
