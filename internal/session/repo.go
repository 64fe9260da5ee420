package session

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// CompleteInput carries the aggregates written when a session ends.
type CompleteInput struct {
	TotalQuestions int `json:"total_questions"`
	CorrectAnswers int `json:"correct_answers"`
	TotalTime      int `json:"total_time"`
}

type Store interface {
	StartSession(ctx context.Context, s PracticeSession) (PracticeSession, error)
	CompleteSession(ctx context.Context, id string, in CompleteInput) (PracticeSession, error)
	GetSession(ctx context.Context, id string) (PracticeSession, error)
	ListSessions(ctx context.Context, userID string, limit int) ([]PracticeSession, error)

	UnlockAchievement(ctx context.Context, a Achievement) error
	ListAchievements(ctx context.Context, userID string) ([]Achievement, error)

	PutSchedule(ctx context.Context, s ExamSchedule) error
	GetSchedule(ctx context.Context, id string) (ExamSchedule, error)
	ListSchedules(ctx context.Context, status string) ([]ExamSchedule, error)
	DeleteSchedule(ctx context.Context, id string) error
}
