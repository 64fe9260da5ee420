package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memoryStore struct {
	mu           sync.RWMutex
	sessions     map[string]PracticeSession
	achievements map[string]Achievement
	schedules    map[string]ExamSchedule
}

func NewInMemoryStore() Store {
	return &memoryStore{
		sessions:     map[string]PracticeSession{},
		achievements: map[string]Achievement{},
		schedules:    map[string]ExamSchedule{},
	}
}

func (m *memoryStore) StartSession(_ context.Context, ps PracticeSession) (PracticeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ps.StartedAt.IsZero() {
		ps.StartedAt = time.Now().UTC()
	}
	if ps.SessionType == "" {
		ps.SessionType = "practice"
	}
	m.sessions[ps.ID] = ps
	return ps, nil
}

func (m *memoryStore) CompleteSession(_ context.Context, id string, in CompleteInput) (PracticeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps, ok := m.sessions[id]
	if !ok {
		return PracticeSession{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if ps.CompletedAt != nil {
		return PracticeSession{}, fmt.Errorf("session %s already completed", id)
	}
	now := time.Now().UTC()
	ps.CompletedAt = &now
	ps.TotalQuestions = in.TotalQuestions
	ps.CorrectAnswers = in.CorrectAnswers
	ps.TotalTime = in.TotalTime
	m.sessions[id] = ps
	return ps, nil
}

func (m *memoryStore) GetSession(_ context.Context, id string) (PracticeSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ps, ok := m.sessions[id]
	if !ok {
		return PracticeSession{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return ps, nil
}

func (m *memoryStore) ListSessions(_ context.Context, userID string, limit int) ([]PracticeSession, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []PracticeSession
	for _, ps := range m.sessions {
		if ps.UserID == userID {
			out = append(out, ps)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) UnlockAchievement(_ context.Context, a Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.UnlockedAt.IsZero() {
		a.UnlockedAt = time.Now().UTC()
	}
	if _, ok := m.achievements[a.ID]; !ok {
		m.achievements[a.ID] = a
	}
	return nil
}

func (m *memoryStore) ListAchievements(_ context.Context, userID string) ([]Achievement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Achievement
	for _, a := range m.achievements {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UnlockedAt.Equal(out[j].UnlockedAt) {
			return out[i].UnlockedAt.After(out[j].UnlockedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryStore) PutSchedule(_ context.Context, e ExamSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Status == "" {
		e.Status = ScheduleUpcoming
	}
	m.schedules[e.ID] = e
	return nil
}

func (m *memoryStore) GetSchedule(_ context.Context, id string) (ExamSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.schedules[id]
	if !ok {
		return ExamSchedule{}, fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}
	return e, nil
}

func (m *memoryStore) ListSchedules(_ context.Context, status string) ([]ExamSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ExamSchedule
	for _, e := range m.schedules {
		if status != "" && status != "all" && e.Status != status {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExamDate.Equal(out[j].ExamDate) {
			return out[i].ExamDate.Before(out[j].ExamDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryStore) DeleteSchedule(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[id]; !ok {
		return fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}
	delete(m.schedules, id)
	return nil
}

var _ Store = (*memoryStore)(nil)
