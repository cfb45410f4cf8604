package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizbot/internal/quiz"
)

// QuizRecord is a stored quiz plus its completion flag.
type QuizRecord struct {
	Quiz      *quiz.Quiz
	Completed bool
}

// SaveQuiz inserts q. Saving the same quiz id twice is an error.
func (s *Store) SaveQuiz(ctx context.Context, q *quiz.Quiz) error {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}

	ins := builder.Insert("quizzes").
		Columns("quiz_id", "user_id", "email_context", "questions", "num_questions", "is_completed", "created_at").
		Values(q.QuizID, q.UserID, q.EmailContext, string(questions), len(q.Questions), false, formatTime(q.CreatedAt))
	if _, err := exec(ctx, s.db, ins); err != nil {
		return fmt.Errorf("save quiz %s: %w", q.QuizID, err)
	}
	return nil
}

// GetQuiz returns the quiz with the given id, or ErrNotFound.
func (s *Store) GetQuiz(ctx context.Context, quizID string) (*QuizRecord, error) {
	sel := builder.Select("quiz_id", "user_id", "email_context", "questions", "is_completed", "created_at").
		From(entsql.Table("quizzes")).
		Where(entsql.EQ("quiz_id", quizID))

	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query quiz %s: %w", quizID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query quiz %s: %w", quizID, err)
		}
		return nil, fmt.Errorf("quiz %s: %w", quizID, ErrNotFound)
	}

	var (
		rec       QuizRecord
		q         quiz.Quiz
		questions string
		createdAt string
	)
	if err := rows.Scan(&q.QuizID, &q.UserID, &q.EmailContext, &questions, &rec.Completed, &createdAt); err != nil {
		return nil, fmt.Errorf("scan quiz %s: %w", quizID, err)
	}
	if err := json.Unmarshal([]byte(questions), &q.Questions); err != nil {
		return nil, fmt.Errorf("decode questions of quiz %s: %w", quizID, err)
	}
	if q.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	rec.Quiz = &q
	return &rec, nil
}

// markCompleted flags a stored quiz as taken. A missing quiz is not an error.
func markCompleted(ctx context.Context, db execer, quizID string) error {
	upd := builder.Update("quizzes").
		Set("is_completed", true).
		Where(entsql.EQ("quiz_id", quizID))
	if _, err := exec(ctx, db, upd); err != nil {
		return fmt.Errorf("mark quiz %s completed: %w", quizID, err)
	}
	return nil
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
