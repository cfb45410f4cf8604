package store

import (
	"context"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/quizbot/internal/quiz"
)

// DefaultHistoryLimit bounds ListResults when no limit is given.
const DefaultHistoryLimit = 50

// ResultRecord is a stored quiz result.
type ResultRecord struct {
	ResultID string `json:"result_id"`
	quiz.QuizResult
	TimeTakenSeconds *int `json:"time_taken_seconds,omitempty"`
}

// SaveResult stores r, marks its quiz completed, and returns the new
// result id.
func (s *Store) SaveResult(ctx context.Context, r *quiz.QuizResult, timeTaken *int) (string, error) {
	results, err := json.Marshal(r.Results)
	if err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}

	id := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ins := builder.Insert("quiz_results").
		Columns("result_id", "quiz_id", "user_id", "score", "total_questions", "correct_answers",
			"results", "summary", "time_taken_seconds", "completed_at").
		Values(id, r.QuizID, r.UserID, r.Score, r.TotalQuestions, r.CorrectAnswers,
			string(results), r.Summary, nullableInt(timeTaken), formatTime(r.CompletedAt))
	if _, err := exec(ctx, tx, ins); err != nil {
		return "", fmt.Errorf("save result for quiz %s: %w", r.QuizID, err)
	}
	if err := markCompleted(ctx, tx, r.QuizID); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit result: %w", err)
	}
	return id, nil
}

// ListResults returns a user's results newest first. limit <= 0 means
// DefaultHistoryLimit.
func (s *Store) ListResults(ctx context.Context, userID string, limit int) ([]ResultRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.listResults(ctx, userID, limit)
}

// listResults with limit 0 returns every result.
func (s *Store) listResults(ctx context.Context, userID string, limit int) ([]ResultRecord, error) {
	sel := builder.Select("result_id", "quiz_id", "user_id", "score", "total_questions", "correct_answers",
		"results", "summary", "time_taken_seconds", "completed_at").
		From(entsql.Table("quiz_results")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("completed_at"), entsql.Desc("rowid"))
	if limit > 0 {
		sel.Limit(limit)
	}

	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []ResultRecord
	for rows.Next() {
		var (
			rec         ResultRecord
			results     string
			completedAt string
			taken       *int
		)
		if err := rows.Scan(&rec.ResultID, &rec.QuizID, &rec.UserID, &rec.Score, &rec.TotalQuestions,
			&rec.CorrectAnswers, &results, &rec.Summary, &taken, &completedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(results), &rec.Results); err != nil {
			return nil, fmt.Errorf("decode result %s: %w", rec.ResultID, err)
		}
		if rec.CompletedAt, err = parseTime(completedAt); err != nil {
			return nil, err
		}
		rec.TimeTakenSeconds = taken
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
