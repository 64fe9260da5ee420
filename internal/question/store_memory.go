package question

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryStore keeps everything in maps. Used by tests and by offline
// development when no database file is wanted.
type memoryStore struct {
	mu       sync.RWMutex
	seq      int
	question map[string]Question
	attempts []Attempt
}

func NewInMemoryStore() Store {
	return &memoryStore{question: map[string]Question{}}
}

func (m *memoryStore) PutQuestion(_ context.Context, q Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.question[q.ID]; ok {
		q.CreatedAt = old.CreatedAt
	} else if q.CreatedAt.IsZero() {
		// Preserve insertion order for pools even when callers do not
		// set timestamps.
		m.seq++
		q.CreatedAt = time.Unix(int64(m.seq), 0).UTC()
	}
	q.UpdatedAt = time.Now().UTC()
	m.question[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuestion(_ context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.question[id]
	if !ok {
		return Question{}, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return q, nil
}

// creationOrder returns all questions sorted by (created_at, id).
func (m *memoryStore) creationOrder() []Question {
	out := make([]Question, 0, len(m.question))
	for _, q := range m.question {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memoryStore) ListQuestions(_ context.Context, opts ListOpts) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Question
	for _, q := range m.creationOrder() {
		if !opts.Filters.Matches(q) {
			continue
		}
		if opts.Search != "" && !strings.Contains(q.QuestionText, opts.Search) {
			continue
		}
		out = append(out, q)
	}
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memoryStore) DeleteQuestion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.question[id]; !ok {
		return fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	delete(m.question, id)
	return nil
}

func (m *memoryStore) FindQuestionIDs(_ context.Context, f Filters, exclude []string) ([]string, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, q := range m.creationOrder() {
		if excluded[q.ID] || !f.Matches(q) {
			continue
		}
		ids = append(ids, q.ID)
	}
	return ids, nil
}

func (m *memoryStore) FindAttempts(_ context.Context, userID string, questionIDs []string) ([]AttemptRecord, error) {
	wanted := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []AttemptRecord
	for _, a := range m.attempts {
		if a.UserID != userID || !wanted[a.QuestionID] {
			continue
		}
		out = append(out, AttemptRecord{QuestionID: a.QuestionID, AttemptedAt: a.AttemptedAt, IsCorrect: a.IsCorrect})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AttemptedAt.Before(out[j].AttemptedAt) })
	return out, nil
}

func (m *memoryStore) FindQuestionsByIDs(_ context.Context, ids []string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Question
	for _, id := range ids {
		if q, ok := m.question[id]; ok {
			out = append(out, q)
		}
	}
	rank := map[string]int{DifficultyEasy: 0, DifficultyMedium: 1, DifficultyHard: 2}
	sort.SliceStable(out, func(i, j int) bool {
		if rank[out[i].Difficulty] != rank[out[j].Difficulty] {
			return rank[out[i].Difficulty] < rank[out[j].Difficulty]
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryStore) CountQuestions(_ context.Context, f Filters) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, q := range m.question {
		if f.Matches(q) {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) CountDistinctAttempted(_ context.Context, userID string, f Filters) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	for _, a := range m.attempts {
		if a.UserID != userID {
			continue
		}
		q, ok := m.question[a.QuestionID]
		if !ok || !f.Matches(q) {
			continue
		}
		seen[a.QuestionID] = true
	}
	return len(seen), nil
}

func (m *memoryStore) RecordAttempt(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.AttemptedAt.IsZero() {
		a.AttemptedAt = time.Now().UTC()
	}
	m.attempts = append(m.attempts, a)
	return nil
}

func (m *memoryStore) ListAttempts(_ context.Context, opts AttemptListOpts) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Attempt
	for i := len(m.attempts) - 1; i >= 0; i-- {
		a := m.attempts[i]
		if opts.UserID != "" && a.UserID != opts.UserID {
			continue
		}
		if opts.QuestionID != "" && a.QuestionID != opts.QuestionID {
			continue
		}
		if opts.SessionID != "" && a.SessionID != opts.SessionID {
			continue
		}
		out = append(out, a)
	}
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) DistinctTopics(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := map[string]bool{}
	for _, q := range m.question {
		if q.Topic != "" {
			set[q.Topic] = true
		}
	}
	topics := make([]string, 0, len(set))
	for t := range set {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics, nil
}

func (m *memoryStore) UserStats(_ context.Context, userID string) (ProgressStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var recs []statRecord
	for _, a := range m.attempts {
		if a.UserID != userID {
			continue
		}
		q := m.question[a.QuestionID]
		recs = append(recs, statRecord{correct: a.IsCorrect, timeSpent: a.TimeSpent, topic: q.Topic, difficulty: q.Difficulty})
	}
	return computeStats(recs), nil
}

var _ Store = (*memoryStore)(nil)
