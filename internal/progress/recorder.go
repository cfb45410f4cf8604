// Package progress persists graded quizzes and keeps the per-user running
// statistics and per-topic accuracy up to date.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/quizbot/internal/email"
	"github.com/abhisek/quizbot/internal/quiz"
)

// Store is the persistence Recorder writes to.
type Store interface {
	SaveResult(ctx context.Context, r *quiz.QuizResult, timeTaken *int) (string, error)
	RecordQuizCompletion(ctx context.Context, userID string, score float64, at time.Time) error
	UpdateTopicProgress(ctx context.Context, userID, topic string, correct bool, at time.Time) error
}

// Recorder saves results and derived statistics.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

// NewRecorder returns a Recorder writing to s.
func NewRecorder(s Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{store: s, logger: logger}
}

// Record saves result and returns its id. Stats and topic progress are
// updated afterwards; their failures are logged and do not fail the call.
// Every answer counts once toward each topic found in the quiz's email.
func (r *Recorder) Record(ctx context.Context, q *quiz.Quiz, result *quiz.QuizResult, timeTaken *int) (string, error) {
	id, err := r.store.SaveResult(ctx, result, timeTaken)
	if err != nil {
		return "", fmt.Errorf("record result: %w", err)
	}
	log := r.logger.With("quiz_id", result.QuizID, "user_id", result.UserID, "result_id", id)

	if err := r.store.RecordQuizCompletion(ctx, result.UserID, result.Score, result.CompletedAt); err != nil {
		log.Warn("update user stats failed", "error", err)
	}

	topics := email.Topics(q.EmailContext)
	for _, qr := range result.Results {
		for _, topic := range topics {
			if err := r.store.UpdateTopicProgress(ctx, result.UserID, topic, qr.IsCorrect, result.CompletedAt); err != nil {
				log.Warn("update topic progress failed", "topic", topic, "error", err)
			}
		}
	}

	log.Info("quiz result recorded",
		"score", result.Score,
		"grade", quiz.Grade(result.Score),
		"topics", len(topics))
	return id, nil
}
