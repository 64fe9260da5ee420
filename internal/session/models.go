// Package session tracks practice sessions, achievements and exam
// schedules for a user.
package session

import "time"

type PracticeSession struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	SessionType    string     `json:"session_type"` // practice|retry|weak-areas|exam-simulation
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	TotalQuestions int        `json:"total_questions"`
	CorrectAnswers int        `json:"correct_answers"`
	TotalTime      int        `json:"total_time"` // seconds
	FocusTopics    string     `json:"focus_topics,omitempty"`
}

type Achievement struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	BadgeIcon   string    `json:"badge_icon"`
	Category    string    `json:"category"` // streak|accuracy|volume|speed
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// Exam schedule status values.
const (
	ScheduleUpcoming  = "UPCOMING"
	ScheduleCompleted = "COMPLETED"
	ScheduleMissed    = "MISSED"
	ScheduleCancelled = "CANCELLED"
)

type ExamSchedule struct {
	ID       string    `json:"id"`
	ExamName string    `json:"exam_name"`
	ExamDate time.Time `json:"exam_date"`
	Location string    `json:"location,omitempty"`
	Duration int       `json:"duration,omitempty"` // minutes
	Status   string    `json:"status"`
	Notes    string    `json:"notes,omitempty"`
	Score    *float64  `json:"score,omitempty"`
	MaxScore *float64  `json:"max_score,omitempty"`
}
