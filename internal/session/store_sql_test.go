package session_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathquest/practice/internal/db"
	"github.com/mathquest/practice/internal/session"
)

func newSQLStore(t *testing.T) *session.SQLStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	return session.NewSQLStore(dbh)
}

func TestSessionLifecycle(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	ps, err := store.StartSession(ctx, session.PracticeSession{ID: "s1", UserID: "u1", FocusTopics: "algebra"})
	require.NoError(t, err)
	assert.Equal(t, "practice", ps.SessionType)
	assert.False(t, ps.StartedAt.IsZero())

	done, err := store.CompleteSession(ctx, "s1", session.CompleteInput{
		TotalQuestions: 10, CorrectAnswers: 8, TotalTime: 540,
	})
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, 8, done.CorrectAnswers)

	// Completing twice is an error.
	_, err = store.CompleteSession(ctx, "s1", session.CompleteInput{})
	assert.Error(t, err)

	_, err = store.CompleteSession(ctx, "ghost", session.CompleteInput{})
	assert.ErrorIs(t, err, session.ErrNotFound)

	list, err := store.ListSessions(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAchievements(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	a := session.Achievement{ID: "ach1", UserID: "u1", Title: "First 100 Questions", Category: "volume"}
	require.NoError(t, store.UnlockAchievement(ctx, a))
	// Unlocking the same achievement again is a no-op.
	require.NoError(t, store.UnlockAchievement(ctx, a))

	list, err := store.ListAchievements(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "First 100 Questions", list[0].Title)
	assert.False(t, list[0].UnlockedAt.IsZero())
}

func TestScheduleCRUD(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()
	date := time.Date(2025, 11, 15, 9, 0, 0, 0, time.UTC)

	e := session.ExamSchedule{ID: "e1", ExamName: "AMC8", ExamDate: date, Location: "School"}
	require.NoError(t, store.PutSchedule(ctx, e))

	got, err := store.GetSchedule(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, session.ScheduleUpcoming, got.Status)
	assert.True(t, got.ExamDate.Equal(date))
	assert.Nil(t, got.Score)

	score := 21.0
	got.Status = session.ScheduleCompleted
	got.Score = &score
	require.NoError(t, store.PutSchedule(ctx, got))

	got, err = store.GetSchedule(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, session.ScheduleCompleted, got.Status)
	require.NotNil(t, got.Score)
	assert.Equal(t, 21.0, *got.Score)

	upcoming, err := store.ListSchedules(ctx, session.ScheduleUpcoming)
	require.NoError(t, err)
	assert.Empty(t, upcoming)

	all, err := store.ListSchedules(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store.DeleteSchedule(ctx, "e1"))
	assert.ErrorIs(t, store.DeleteSchedule(ctx, "e1"), session.ErrNotFound)
}
