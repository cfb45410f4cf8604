package store

import (
	"context"
	"time"
)

const (
	trendWindow  = 10
	recentWindow = 5
)

// TrendPoint is one result in the improvement trend. QuizNumber counts the
// user's quizzes from 1, oldest first.
type TrendPoint struct {
	QuizNumber int       `json:"quiz_number"`
	Score      float64   `json:"score"`
	Date       time.Time `json:"date"`
}

// RecentQuiz summarises one of the most recent results.
type RecentQuiz struct {
	QuizID      string    `json:"quiz_id"`
	Score       float64   `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

// Analytics aggregates a user's results.
type Analytics struct {
	TotalQuizzes     int             `json:"total_quizzes"`
	AverageScore     float64         `json:"average_score"`
	TotalQuestions   int             `json:"total_questions"`
	CorrectAnswers   int             `json:"correct_answers"`
	AccuracyRate     float64         `json:"accuracy_rate"`
	ImprovementTrend []TrendPoint    `json:"improvement_trend"`
	RecentQuizzes    []RecentQuiz    `json:"recent_quizzes"`
	TopicPerformance []TopicProgress `json:"topic_performance"`
}

// UserAnalytics computes totals over every result of userID, the trend of
// the last ten results in chronological order, and the five most recent
// results.
func (s *Store) UserAnalytics(ctx context.Context, userID string) (*Analytics, error) {
	results, err := s.listResults(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	topics, err := s.ListTopicProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	a := &Analytics{
		TotalQuizzes:     len(results),
		ImprovementTrend: []TrendPoint{},
		RecentQuizzes:    []RecentQuiz{},
		TopicPerformance: topics,
	}
	if a.TopicPerformance == nil {
		a.TopicPerformance = []TopicProgress{}
	}
	if len(results) == 0 {
		return a, nil
	}

	var scoreSum float64
	for _, r := range results {
		scoreSum += r.Score
		a.TotalQuestions += r.TotalQuestions
		a.CorrectAnswers += r.CorrectAnswers
	}
	a.AverageScore = scoreSum / float64(len(results))
	if a.TotalQuestions > 0 {
		a.AccuracyRate = float64(a.CorrectAnswers) / float64(a.TotalQuestions) * 100
	}

	// results are newest first.
	window := min(trendWindow, len(results))
	for i := window - 1; i >= 0; i-- {
		a.ImprovementTrend = append(a.ImprovementTrend, TrendPoint{
			QuizNumber: len(results) - i,
			Score:      results[i].Score,
			Date:       results[i].CompletedAt,
		})
	}
	for _, r := range results[:min(recentWindow, len(results))] {
		a.RecentQuizzes = append(a.RecentQuizzes, RecentQuiz{
			QuizID:      r.QuizID,
			Score:       r.Score,
			CompletedAt: r.CompletedAt,
		})
	}
	return a, nil
}
