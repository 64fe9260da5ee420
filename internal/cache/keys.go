package cache

import "time"

// Key builders for the data classes the handlers memoize. Keeping them in
// one place makes InvalidatePattern prefixes greppable.
func QuestionsKey(filters string) string     { return "questions:" + filters }
func QuestionKey(id string) string           { return "question:" + id }
func QuestionCountKey(filters string) string { return "question_count:" + filters }
func ProgressKey(userID string) string       { return "progress:" + userID }

const (
	TopicsKey       = "topics:all"
	AchievementsKey = "achievements:all"
)

// TTLs by volatility: questions churn during imports, topics are fairly
// static, achievements rarely change.
const (
	QuestionsTTL    = 5 * time.Minute
	TopicsTTL       = 10 * time.Minute
	AchievementsTTL = time.Hour
	ExamsTTL        = 10 * time.Minute
	ProgressTTL     = 5 * time.Minute
)
