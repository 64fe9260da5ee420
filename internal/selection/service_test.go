package selection

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathquest/practice/internal/question"
)

const testUser = "ayansh"

func seedPool(t *testing.T, store question.Store, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("q%d", i+1)
		ids[i] = id
		err := store.PutQuestion(context.Background(), question.Question{
			ID:           id,
			QuestionText: "What is " + id + "?",
			ExamName:     "AMC8",
			Topic:        "algebra",
			Difficulty:   question.DifficultyMedium,
		})
		require.NoError(t, err)
	}
	return ids
}

func attempt(t *testing.T, store question.Store, qid string, correct bool, at time.Time) {
	t.Helper()
	err := store.RecordAttempt(context.Background(), question.Attempt{
		ID:          fmt.Sprintf("a-%s-%d", qid, at.UnixNano()),
		UserID:      testUser,
		QuestionID:  qid,
		IsCorrect:   correct,
		AttemptedAt: at,
	})
	require.NoError(t, err)
}

func newTestEngine(store question.Store, now time.Time) *Engine {
	e := NewEngine(store)
	e.now = func() time.Time { return now }
	return e
}

func TestCoverageBeforeRepeat(t *testing.T) {
	store := question.NewInMemoryStore()
	seedPool(t, store, 3)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	e := newTestEngine(store, now)

	seen := map[string]int{}
	for i := 0; i < 3; i++ {
		res, err := e.SelectQuestions(context.Background(), Options{UserID: testUser, Limit: 1})
		require.NoError(t, err)
		require.Len(t, res.Questions, 1)
		id := res.Questions[0].ID
		seen[id]++
		attempt(t, store, id, true, now.Add(time.Duration(i)*time.Minute))
	}
	// Three calls covered all three questions exactly once.
	require.Len(t, seen, 3)
	for id, n := range seen {
		assert.Equal(t, 1, n, "question %s repeated before full coverage", id)
	}

	// Fourth call begins repeating from the same pool.
	res, err := e.SelectQuestions(context.Background(), Options{UserID: testUser, Limit: 1})
	require.NoError(t, err)
	require.Len(t, res.Questions, 1)
	assert.Contains(t, seen, res.Questions[0].ID)
	assert.Equal(t, 2, res.RoundInfo.RoundNumber)
	assert.Equal(t, 1, res.RoundInfo.CompletedRounds)
}

func TestUnattemptedServedInCreationOrder(t *testing.T) {
	store := question.NewInMemoryStore()
	ids := seedPool(t, store, 5)
	e := newTestEngine(store, time.Now())

	res, err := e.SelectQuestions(context.Background(), Options{UserID: testUser, Limit: 3})
	require.NoError(t, err)
	got := make([]string, len(res.Questions))
	for i, q := range res.Questions {
		got[i] = q.ID
	}
	assert.Equal(t, ids[:3], got)
}

func TestRoundArithmetic(t *testing.T) {
	// 12 distinct attempts over a pool of 5: two completed rounds, two
	// into the third. Distinct ids beyond the pool size are impossible in
	// practice, so simulate with the raw helper.
	attempts := make([]question.AttemptRecord, 0, 12)
	for i := 0; i < 12; i++ {
		attempts = append(attempts, question.AttemptRecord{QuestionID: fmt.Sprintf("q%d", i)})
	}
	info := roundInfo(5, attempts)
	assert.Equal(t, 2, info.CompletedRounds)
	assert.Equal(t, 2, info.AttemptedInRound)
	assert.Equal(t, 3, info.RoundNumber)
	assert.Equal(t, 5, info.TotalQuestionsInRound)
}

func TestEmptyPool(t *testing.T) {
	store := question.NewInMemoryStore()
	seedPool(t, store, 2)
	e := newTestEngine(store, time.Now())

	res, err := e.SelectQuestions(context.Background(), Options{
		UserID: testUser,
		Topic:  "geometry", // nothing matches
	})
	require.NoError(t, err)
	assert.Empty(t, res.Questions)
	assert.Equal(t, RoundInfo{RoundNumber: 1}, res.RoundInfo)
	assert.Equal(t, "No questions available for the selected criteria", res.Message)
}

func TestIncorrectLastAttemptOutranksCorrect(t *testing.T) {
	store := question.NewInMemoryStore()
	seedPool(t, store, 2)
	now := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)

	attempt(t, store, "q1", false, yesterday)
	attempt(t, store, "q2", true, yesterday)

	e := newTestEngine(store, now)
	res, err := e.SelectQuestions(context.Background(), Options{UserID: testUser, Limit: 1})
	require.NoError(t, err)
	require.Len(t, res.Questions, 1)
	assert.Equal(t, "q1", res.Questions[0].ID)
}

func TestFewerAttemptsOutrankMany(t *testing.T) {
	store := question.NewInMemoryStore()
	seedPool(t, store, 2)
	now := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	// q1 answered correctly five times, q2 once; both equally recent.
	for i := 0; i < 5; i++ {
		attempt(t, store, "q1", true, now.Add(time.Duration(-5+i)*time.Hour))
	}
	attempt(t, store, "q2", true, now.Add(-time.Hour))

	e := newTestEngine(store, now)
	res, err := e.SelectQuestions(context.Background(), Options{UserID: testUser, Limit: 1})
	require.NoError(t, err)
	require.Len(t, res.Questions, 1)
	assert.Equal(t, "q2", res.Questions[0].ID)
}

func TestTimeTermDecaysWithAge(t *testing.T) {
	// The time term is max(0, 50 - daysSinceLastAttempt): it decays to
	// zero by day 50 and never goes negative.
	now := time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)
	rec := func(age time.Duration) []question.AttemptRecord {
		return []question.AttemptRecord{{QuestionID: "q", IsCorrect: true, AttemptedAt: now.Add(-age)}}
	}
	fresh := score(rec(time.Hour), now)
	tenDays := score(rec(10*24*time.Hour), now)
	sixtyDays := score(rec(60*24*time.Hour), now)

	assert.Greater(t, fresh, tenDays)
	assert.InDelta(t, 40.0, sixtyDays, 0.001) // fewAttemptsBonus only
	assert.InDelta(t, 40.0, score(rec(50*24*time.Hour), now), 0.001)
}

func TestScoreTiesBreakByID(t *testing.T) {
	now := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	rec := func(id string) []question.AttemptRecord {
		return []question.AttemptRecord{{QuestionID: id, IsCorrect: true, AttemptedAt: now.Add(-time.Hour)}}
	}
	e := &Engine{now: func() time.Time { return now }}
	var attempts []question.AttemptRecord
	attempts = append(attempts, rec("qb")...)
	attempts = append(attempts, rec("qa")...)
	got := e.pick([]string{"qb", "qa"}, attempts, 2)
	assert.Equal(t, []string{"qa", "qb"}, got)
}

func TestExcludedQuestionsLeaveThePool(t *testing.T) {
	store := question.NewInMemoryStore()
	seedPool(t, store, 3)
	e := newTestEngine(store, time.Now())

	res, err := e.SelectQuestions(context.Background(), Options{
		UserID:             testUser,
		ExcludeQuestionIDs: []string{"q1", "q3"},
	})
	require.NoError(t, err)
	require.Len(t, res.Questions, 1)
	assert.Equal(t, "q2", res.Questions[0].ID)
	assert.Equal(t, 1, res.RoundInfo.TotalQuestionsInRound)
}

func TestLimitClampedToDefault(t *testing.T) {
	store := question.NewInMemoryStore()
	seedPool(t, store, 15)
	e := newTestEngine(store, time.Now())

	res, err := e.SelectQuestions(context.Background(), Options{UserID: testUser, Limit: -3})
	require.NoError(t, err)
	assert.Len(t, res.Questions, DefaultLimit)
}

func TestUserIDRequired(t *testing.T) {
	e := newTestEngine(question.NewInMemoryStore(), time.Now())
	_, err := e.SelectQuestions(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrUserRequired)
	_, err = e.ProgressSummary(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrUserRequired)
}

func TestRoundMessages(t *testing.T) {
	assert.Equal(t,
		"Starting Round 1! You'll see 4 questions for the first time.",
		roundMessage(RoundInfo{RoundNumber: 1, TotalQuestionsInRound: 4}))

	assert.Equal(t,
		"Round 1: 2 new questions remaining before moving to Round 2.",
		roundMessage(RoundInfo{RoundNumber: 1, TotalQuestionsInRound: 4, AttemptedInRound: 2}))

	assert.Equal(t,
		"Starting Round 3! You've completed 2 full rounds. Now focusing on questions that need more practice.",
		roundMessage(RoundInfo{RoundNumber: 3, TotalQuestionsInRound: 4, CompletedRounds: 2}))
}

func TestProgressSummary(t *testing.T) {
	store := question.NewInMemoryStore()
	seedPool(t, store, 4)
	now := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	attempt(t, store, "q1", true, now.Add(-2*time.Hour))
	attempt(t, store, "q2", false, now.Add(-time.Hour))
	attempt(t, store, "q2", true, now) // same question, still one distinct

	e := newTestEngine(store, now)
	p, err := e.ProgressSummary(context.Background(), testUser, "AMC8")
	require.NoError(t, err)
	assert.Equal(t, 4, p.TotalQuestions)
	assert.Equal(t, 2, p.UniqueQuestionsAttempted)
	assert.Equal(t, 0, p.CompletedRounds)
	assert.Equal(t, 2, p.CurrentRoundProgress)
	assert.InDelta(t, 50.0, p.ProgressPercentage, 0.001)
}

func TestProgressSummaryEmptyBank(t *testing.T) {
	e := newTestEngine(question.NewInMemoryStore(), time.Now())
	p, err := e.ProgressSummary(context.Background(), testUser, "")
	require.NoError(t, err)
	assert.Equal(t, Progress{}, p)
}

// failStore propagates storage failures so the engine's no-masking
// behavior can be checked.
type failStore struct {
	question.Store
	err error
}

func (f failStore) FindQuestionIDs(context.Context, question.Filters, []string) ([]string, error) {
	return nil, f.err
}

func TestStoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	e := newTestEngine(failStore{err: boom}, time.Now())
	_, err := e.SelectQuestions(context.Background(), Options{UserID: testUser})
	assert.ErrorIs(t, err, boom)
}
