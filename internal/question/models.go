package question

import "time"

// Difficulty levels match the values stored in the database.
const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

type Option struct {
	ID           string `json:"id"`
	QuestionID   string `json:"question_id"`
	OptionLetter string `json:"option_letter"`
	OptionText   string `json:"option_text"`
	IsCorrect    bool   `json:"is_correct"`
}

type Solution struct {
	ID             string `json:"id"`
	QuestionID     string `json:"question_id"`
	SolutionText   string `json:"solution_text"`
	Approach       string `json:"approach,omitempty"`
	KeyInsights    string `json:"key_insights,omitempty"`
	CommonMistakes string `json:"common_mistakes,omitempty"`
	TimeEstimate   int    `json:"time_estimate,omitempty"` // minutes
}

type Question struct {
	ID             string    `json:"id"`
	QuestionText   string    `json:"question_text"`
	ExamName       string    `json:"exam_name,omitempty"` // AMC8, MOEMS, Kangaroo, ...
	ExamYear       int       `json:"exam_year,omitempty"`
	QuestionNumber string    `json:"question_number,omitempty"`
	Topic          string    `json:"topic"`
	Subtopic       string    `json:"subtopic,omitempty"`
	Difficulty     string    `json:"difficulty"`
	HasImage       bool      `json:"has_image"`
	ImageURL       string    `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Options  []Option  `json:"options,omitempty"`
	Solution *Solution `json:"solution,omitempty"`
}

// Type derives the presentation type from the presence of options.
func (q Question) Type() string {
	if len(q.Options) > 0 {
		return "multiple-choice"
	}
	return "open-ended"
}

// Attempt is one user's interaction with one question. Attempts are
// append-only: nothing in this service ever mutates a recorded attempt.
type Attempt struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	QuestionID     string    `json:"question_id"`
	SelectedAnswer string    `json:"selected_answer,omitempty"`
	IsCorrect      bool      `json:"is_correct"`
	TimeSpent      int       `json:"time_spent"` // seconds
	HintsUsed      int       `json:"hints_used"`
	SessionID      string    `json:"session_id,omitempty"`
	AttemptedAt    time.Time `json:"attempted_at"`
}

// AttemptRecord is the projection the selection engine reads: it never
// needs the answer payload, only recency and correctness.
type AttemptRecord struct {
	QuestionID  string    `json:"question_id"`
	AttemptedAt time.Time `json:"attempted_at"`
	IsCorrect   bool      `json:"is_correct"`
}

// Filters narrows the question pool. An empty string, "all", or (for the
// exam filter) "mixed" means unfiltered on that axis.
type Filters struct {
	ExamType   string
	Topic      string
	Difficulty string
}

func filterActive(v string) bool {
	return v != "" && v != "all"
}

// ExamActive reports whether the exam filter constrains the pool.
func (f Filters) ExamActive() bool {
	return filterActive(f.ExamType) && f.ExamType != "mixed"
}

func (f Filters) TopicActive() bool { return filterActive(f.Topic) }

func (f Filters) DifficultyActive() bool { return filterActive(f.Difficulty) }

// Matches applies the filters to a single question.
func (f Filters) Matches(q Question) bool {
	if f.ExamActive() && q.ExamName != f.ExamType {
		return false
	}
	if f.TopicActive() && q.Topic != f.Topic {
		return false
	}
	if f.DifficultyActive() && q.Difficulty != f.Difficulty {
		return false
	}
	return true
}

// TopicStat aggregates a user's attempts on one topic.
type TopicStat struct {
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
}

// ProgressStats summarizes a user's whole attempt history for the stats
// endpoint.
type ProgressStats struct {
	TotalAttempts       int                  `json:"total_attempts"`
	CorrectAnswers      int                  `json:"correct_answers"`
	Accuracy            float64              `json:"accuracy"`
	AverageTime         float64              `json:"average_time"` // seconds
	CurrentStreak       int                  `json:"current_streak"`
	LongestStreak       int                  `json:"longest_streak"`
	TopicBreakdown      map[string]TopicStat `json:"topic_breakdown"`
	DifficultyBreakdown map[string]TopicStat `json:"difficulty_breakdown"`
}
