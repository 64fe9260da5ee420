// Package selection picks the next batch of practice questions for a user.
//
// Selection is round based: every question in the filtered pool is served
// once before any question repeats. Once a round completes, repeats are
// ranked by how much a question needs practice — a wrong last answer, few
// total attempts, and a long time since the last attempt all raise its
// priority.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mathquest/practice/internal/question"
)

// DefaultLimit is the batch size when the caller asks for none (or a
// non-positive value; inputs are clamped, never rejected).
const DefaultLimit = 10

// ErrUserRequired is returned when Options.UserID is empty. The user is a
// parameter everywhere in this service, never an ambient default.
var ErrUserRequired = errors.New("selection: user id required")

// Options is one selection request.
type Options struct {
	UserID             string
	ExamType           string // "", "all" and "mixed" mean unfiltered
	Topic              string // "" and "all" mean unfiltered
	Difficulty         string // "" and "all" mean unfiltered
	Limit              int
	ExcludeQuestionIDs []string
}

func (o Options) filters() question.Filters {
	return question.Filters{ExamType: o.ExamType, Topic: o.Topic, Difficulty: o.Difficulty}
}

// RoundInfo describes where the user stands in the current pass through
// the pool. It is derived from the attempt log on every call, never
// persisted, so it can not go stale.
type RoundInfo struct {
	RoundNumber           int `json:"round_number"`
	TotalQuestionsInRound int `json:"total_questions_in_round"`
	AttemptedInRound      int `json:"attempted_in_round"`
	CompletedRounds       int `json:"completed_rounds"`
}

// Result is a selected batch plus round metadata and a status line for the
// practice page.
type Result struct {
	Questions []question.Question `json:"questions"`
	RoundInfo RoundInfo           `json:"round_info"`
	Message   string              `json:"message"`
}

// Progress is the read-only summary for the progress page.
type Progress struct {
	TotalQuestions           int     `json:"total_questions"`
	UniqueQuestionsAttempted int     `json:"unique_questions_attempted"`
	CompletedRounds          int     `json:"completed_rounds"`
	CurrentRoundProgress     int     `json:"current_round_progress"`
	ProgressPercentage       float64 `json:"progress_percentage"`
}

// Engine selects questions against a Store. It holds no per-user state;
// every call recomputes round standing from persisted attempts.
type Engine struct {
	store question.Store
	now   func() time.Time
}

func NewEngine(store question.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// SelectQuestions returns up to opts.Limit hydrated questions for the
// user, unattempted ones first (in pool creation order), then repeats by
// descending need-for-practice score. Store errors propagate unchanged;
// an empty pool is a normal result, not an error.
func (e *Engine) SelectQuestions(ctx context.Context, opts Options) (Result, error) {
	if opts.UserID == "" {
		return Result{}, ErrUserRequired
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	pool, err := e.store.FindQuestionIDs(ctx, opts.filters(), opts.ExcludeQuestionIDs)
	if err != nil {
		return Result{}, err
	}
	if len(pool) == 0 {
		return Result{
			Questions: []question.Question{},
			RoundInfo: RoundInfo{RoundNumber: 1},
			Message:   "No questions available for the selected criteria",
		}, nil
	}

	attempts, err := e.store.FindAttempts(ctx, opts.UserID, pool)
	if err != nil {
		return Result{}, err
	}

	info := roundInfo(len(pool), attempts)
	selected := e.pick(pool, attempts, limit)

	qs, err := e.store.FindQuestionsByIDs(ctx, selected)
	if err != nil {
		return Result{}, err
	}
	slog.Debug("selected questions",
		"user", opts.UserID, "pool", len(pool), "returned", len(qs),
		"round", info.RoundNumber, "completed_rounds", info.CompletedRounds)
	return Result{Questions: qs, RoundInfo: info, Message: roundMessage(info)}, nil
}

// roundInfo derives the round standing from pool size and attempt log.
// attemptedInRound is always in [0, poolSize).
func roundInfo(poolSize int, attempts []question.AttemptRecord) RoundInfo {
	distinct := map[string]bool{}
	for _, a := range attempts {
		distinct[a.QuestionID] = true
	}
	completed := len(distinct) / poolSize
	return RoundInfo{
		RoundNumber:           completed + 1,
		TotalQuestionsInRound: poolSize,
		AttemptedInRound:      len(distinct) % poolSize,
		CompletedRounds:       completed,
	}
}

// pick applies the selection priority. pool is in creation order, which
// is the documented order for unattempted questions; scored repeats break
// ties by ascending question id so identical inputs always yield the same
// batch.
func (e *Engine) pick(pool []string, attempts []question.AttemptRecord, limit int) []string {
	byQuestion := map[string][]question.AttemptRecord{}
	for _, a := range attempts {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}

	var unattempted, attempted []string
	for _, id := range pool {
		if len(byQuestion[id]) == 0 {
			unattempted = append(unattempted, id)
		} else {
			attempted = append(attempted, id)
		}
	}
	if len(unattempted) > 0 {
		if len(unattempted) > limit {
			unattempted = unattempted[:limit]
		}
		return unattempted
	}

	type scored struct {
		id    string
		score float64
	}
	now := e.now()
	ranked := make([]scored, 0, len(attempted))
	for _, id := range attempted {
		ranked = append(ranked, scored{id: id, score: score(byQuestion[id], now)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.id
	}
	return out
}

// score ranks an already-attempted question for repetition. attempts are
// ordered oldest first.
//
//   - last attempt incorrect: +100
//   - few total attempts: +max(0, 50 - 10*attempts), zero from 5 attempts
//   - staleness: +max(0, 50 - daysSinceLastAttempt), capped at 50
func score(attempts []question.AttemptRecord, now time.Time) float64 {
	last := attempts[len(attempts)-1]
	s := 0.0
	if !last.IsCorrect {
		s += 100
	}
	if a := 50 - 10*float64(len(attempts)); a > 0 {
		s += a
	}
	days := now.Sub(last.AttemptedAt).Hours() / 24
	if t := 50 - days; t > 0 {
		s += t
	}
	return s
}

// roundMessage renders the status line shown above the practice session.
func roundMessage(info RoundInfo) string {
	switch {
	case info.AttemptedInRound == 0 && info.CompletedRounds == 0:
		return fmt.Sprintf("Starting Round %d! You'll see %d questions for the first time.",
			info.RoundNumber, info.TotalQuestionsInRound)
	case info.AttemptedInRound > 0:
		remaining := info.TotalQuestionsInRound - info.AttemptedInRound
		return fmt.Sprintf("Round %d: %d new questions remaining before moving to Round %d.",
			info.RoundNumber, remaining, info.RoundNumber+1)
	default:
		// Round boundary: every pool question seen, repeats begin.
		return fmt.Sprintf("Starting Round %d! You've completed %d full rounds. Now focusing on questions that need more practice.",
			info.RoundNumber, info.CompletedRounds)
	}
}

// ProgressSummary reports round progress for display. Same arithmetic as
// selection, no side effects.
func (e *Engine) ProgressSummary(ctx context.Context, userID, examType string) (Progress, error) {
	if userID == "" {
		return Progress{}, ErrUserRequired
	}
	f := question.Filters{ExamType: examType}
	total, err := e.store.CountQuestions(ctx, f)
	if err != nil {
		return Progress{}, err
	}
	unique, err := e.store.CountDistinctAttempted(ctx, userID, f)
	if err != nil {
		return Progress{}, err
	}
	p := Progress{TotalQuestions: total, UniqueQuestionsAttempted: unique}
	if total > 0 {
		p.CompletedRounds = unique / total
		p.CurrentRoundProgress = unique % total
		p.ProgressPercentage = float64(unique) / float64(total) * 100
	}
	return p, nil
}
