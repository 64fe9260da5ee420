package question

import (
	"context"
	"errors"
)

// ErrNotFound is returned for lookups of absent questions or attempts.
var ErrNotFound = errors.New("not found")

type ListOpts struct {
	Filters
	Search string // substring match on question text
	Limit  int
	Offset int
}

type AttemptListOpts struct {
	UserID     string
	QuestionID string
	SessionID  string
	Limit      int
	Offset     int
}

// Store is the persistence boundary for the question bank and attempt log.
// The selection engine depends only on the read methods; handlers use the
// rest for CRUD.
type Store interface {
	// Question bank CRUD. PutQuestion upserts the question together with
	// its options and solution.
	PutQuestion(ctx context.Context, q Question) error
	GetQuestion(ctx context.Context, id string) (Question, error)
	ListQuestions(ctx context.Context, opts ListOpts) ([]Question, error)
	DeleteQuestion(ctx context.Context, id string) error

	// Selection-engine reads.
	FindQuestionIDs(ctx context.Context, f Filters, exclude []string) ([]string, error)
	FindAttempts(ctx context.Context, userID string, questionIDs []string) ([]AttemptRecord, error)
	FindQuestionsByIDs(ctx context.Context, ids []string) ([]Question, error)

	// Progress-summary counts.
	CountQuestions(ctx context.Context, f Filters) (int, error)
	CountDistinctAttempted(ctx context.Context, userID string, f Filters) (int, error)

	// Attempt log.
	RecordAttempt(ctx context.Context, a Attempt) error
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)

	// Aggregates for pages.
	DistinctTopics(ctx context.Context) ([]string, error)
	UserStats(ctx context.Context, userID string) (ProgressStats, error)
}
