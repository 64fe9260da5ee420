package question_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathquest/practice/internal/db"
	"github.com/mathquest/practice/internal/question"
)

func newSQLStore(t *testing.T) *question.SQLStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	return question.NewSQLStore(dbh)
}

func TestSQLStoreQuestionRoundTrip(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	q := question.Question{
		ID:           "q1",
		QuestionText: "What is 6*7?",
		ExamName:     "MOEMS",
		ExamYear:     2024,
		Topic:        "arithmetic",
		Difficulty:   question.DifficultyEasy,
		Options: []question.Option{
			{ID: "o1", OptionLetter: "A", OptionText: "42", IsCorrect: true},
			{ID: "o2", OptionLetter: "B", OptionText: "41"},
		},
		Solution: &question.Solution{ID: "s1", SolutionText: "Multiply.", Approach: "direct"},
	}
	require.NoError(t, store.PutQuestion(ctx, q))

	got, err := store.GetQuestion(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "What is 6*7?", got.QuestionText)
	require.Len(t, got.Options, 2)
	assert.Equal(t, "A", got.Options[0].OptionLetter)
	assert.True(t, got.Options[0].IsCorrect)
	require.NotNil(t, got.Solution)
	assert.Equal(t, "Multiply.", got.Solution.SolutionText)

	// Upsert replaces options and solution wholesale.
	q.QuestionText = "What is 6 times 7?"
	q.Options = q.Options[:1]
	q.Solution = nil
	require.NoError(t, store.PutQuestion(ctx, q))

	got, err = store.GetQuestion(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "What is 6 times 7?", got.QuestionText)
	assert.Len(t, got.Options, 1)
	assert.Nil(t, got.Solution)
}

func TestSQLStoreGetMissing(t *testing.T) {
	store := newSQLStore(t)
	_, err := store.GetQuestion(context.Background(), "nope")
	assert.ErrorIs(t, err, question.ErrNotFound)
	err = store.DeleteQuestion(context.Background(), "nope")
	assert.ErrorIs(t, err, question.ErrNotFound)
}

func TestSQLStorePoolAndAttempts(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"q1", "q2", "q3"} {
		require.NoError(t, store.PutQuestion(ctx, question.Question{
			ID:           id,
			QuestionText: "text " + id,
			ExamName:     "AMC8",
			Topic:        "algebra",
			Difficulty:   question.DifficultyMedium,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	ids, err := store.FindQuestionIDs(ctx, question.Filters{ExamType: "AMC8"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2", "q3"}, ids)

	ids, err = store.FindQuestionIDs(ctx, question.Filters{ExamType: "AMC8"}, []string{"q2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q3"}, ids)

	ids, err = store.FindQuestionIDs(ctx, question.Filters{Topic: "geometry"}, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.RecordAttempt(ctx, question.Attempt{
		ID: "a2", UserID: "u1", QuestionID: "q2", IsCorrect: false, AttemptedAt: base.Add(2 * time.Hour),
	}))
	require.NoError(t, store.RecordAttempt(ctx, question.Attempt{
		ID: "a1", UserID: "u1", QuestionID: "q1", IsCorrect: true, AttemptedAt: base.Add(time.Hour),
	}))
	require.NoError(t, store.RecordAttempt(ctx, question.Attempt{
		ID: "a3", UserID: "someone-else", QuestionID: "q1", IsCorrect: true, AttemptedAt: base,
	}))

	recs, err := store.FindAttempts(ctx, "u1", []string{"q1", "q2", "q3"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// Ascending by attempted_at.
	assert.Equal(t, "q1", recs[0].QuestionID)
	assert.Equal(t, "q2", recs[1].QuestionID)
	assert.False(t, recs[1].IsCorrect)

	n, err := store.CountQuestions(ctx, question.Filters{ExamType: "AMC8"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = store.CountDistinctAttempted(ctx, "u1", question.Filters{ExamType: "AMC8"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	topics, err := store.DistinctTopics(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"algebra"}, topics)
}

func TestSQLStoreUserStats(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.PutQuestion(ctx, question.Question{
		ID: "q1", QuestionText: "t", Topic: "algebra", Difficulty: question.DifficultyEasy,
	}))
	require.NoError(t, store.PutQuestion(ctx, question.Question{
		ID: "q2", QuestionText: "t", Topic: "geometry", Difficulty: question.DifficultyHard,
	}))

	for i, a := range []struct {
		qid     string
		correct bool
	}{
		{"q1", true}, {"q1", true}, {"q2", false}, {"q2", true},
	} {
		require.NoError(t, store.RecordAttempt(ctx, question.Attempt{
			ID: string(rune('a' + i)), UserID: "u1", QuestionID: a.qid,
			IsCorrect: a.correct, TimeSpent: 60, AttemptedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	st, err := store.UserStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalAttempts)
	assert.Equal(t, 3, st.CorrectAnswers)
	assert.InDelta(t, 75.0, st.Accuracy, 0.001)
	assert.Equal(t, 2, st.LongestStreak)
	assert.Equal(t, 1, st.CurrentStreak)
	assert.Equal(t, 2, st.TopicBreakdown["algebra"].Correct)
	assert.InDelta(t, 50.0, st.DifficultyBreakdown[question.DifficultyHard].Accuracy, 0.001)
}
