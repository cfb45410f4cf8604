package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// UserStats are running totals over a user's completed quizzes.
type UserStats struct {
	UserID       string    `json:"user_id"`
	TotalQuizzes int       `json:"total_quizzes"`
	TotalScore   float64   `json:"total_score"`
	AverageScore float64   `json:"average_score"`
	LastQuizDate time.Time `json:"last_quiz_date"`
}

// TopicProgress tracks answers per learning topic.
type TopicProgress struct {
	Topic          string    `json:"topic"`
	TotalAttempts  int       `json:"total_attempts"`
	CorrectAnswers int       `json:"correct_answers"`
	AccuracyRate   float64   `json:"accuracy_rate"`
	FirstAttempt   time.Time `json:"first_attempt"`
	LastAttempt    time.Time `json:"last_attempt"`
}

// RecordQuizCompletion adds one quiz with the given score to the user's
// running totals in a single upsert.
func (s *Store) RecordQuizCompletion(ctx context.Context, userID string, score float64, at time.Time) error {
	ins := builder.Insert("user_stats").
		Columns("user_id", "total_quizzes", "total_score", "average_score", "last_quiz_date").
		Values(userID, 1, score, score, formatTime(at)).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				// SET expressions see the row as it was before the update.
				u.Set("total_quizzes", entsql.Expr("total_quizzes + 1"))
				u.Set("total_score", entsql.ExprP("total_score + ?", score))
				u.Set("average_score", entsql.ExprP("(total_score + ?) / (total_quizzes + 1)", score))
				u.SetExcluded("last_quiz_date")
			}),
		)
	if _, err := exec(ctx, s.db, ins); err != nil {
		return fmt.Errorf("record stats for %s: %w", userID, err)
	}
	return nil
}

// GetUserStats returns a user's totals, or ErrNotFound before their first
// completed quiz.
func (s *Store) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	sel := builder.Select("user_id", "total_quizzes", "total_score", "average_score", "last_quiz_date").
		From(entsql.Table("user_stats")).
		Where(entsql.EQ("user_id", userID))
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query stats: %w", err)
		}
		return nil, fmt.Errorf("stats for %s: %w", userID, ErrNotFound)
	}
	var (
		st   UserStats
		last string
	)
	if err := rows.Scan(&st.UserID, &st.TotalQuizzes, &st.TotalScore, &st.AverageScore, &last); err != nil {
		return nil, fmt.Errorf("scan stats: %w", err)
	}
	if st.LastQuizDate, err = parseTime(last); err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateTopicProgress records one answer for a topic in a single upsert.
func (s *Store) UpdateTopicProgress(ctx context.Context, userID, topic string, correct bool, at time.Time) error {
	right := 0
	if correct {
		right = 1
	}
	ins := builder.Insert("topic_progress").
		Columns("user_id", "topic", "total_attempts", "correct_answers", "accuracy_rate", "first_attempt", "last_attempt").
		Values(userID, topic, 1, right, float64(right*100), formatTime(at), formatTime(at)).
		OnConflict(
			entsql.ConflictColumns("user_id", "topic"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Set("total_attempts", entsql.Expr("total_attempts + 1"))
				u.Set("correct_answers", entsql.ExprP("correct_answers + ?", right))
				u.Set("accuracy_rate", entsql.ExprP("CAST(correct_answers + ? AS REAL) * 100 / (total_attempts + 1)", right))
				u.SetExcluded("last_attempt")
			}),
		)
	if _, err := exec(ctx, s.db, ins); err != nil {
		return fmt.Errorf("save topic %s: %w", topic, err)
	}
	return nil
}

// ListTopicProgress returns a user's topics ordered by name.
func (s *Store) ListTopicProgress(ctx context.Context, userID string) ([]TopicProgress, error) {
	sel := builder.Select("topic", "total_attempts", "correct_answers", "accuracy_rate", "first_attempt", "last_attempt").
		From(entsql.Table("topic_progress")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("topic")
	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	var out []TopicProgress
	for rows.Next() {
		var (
			tp          TopicProgress
			first, last string
		)
		if err := rows.Scan(&tp.Topic, &tp.TotalAttempts, &tp.CorrectAnswers, &tp.AccuracyRate, &first, &last); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		if tp.FirstAttempt, err = parseTime(first); err != nil {
			return nil, err
		}
		if tp.LastAttempt, err = parseTime(last); err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}
