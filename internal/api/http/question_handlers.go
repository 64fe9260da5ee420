package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mathquest/practice/internal/cache"
	"github.com/mathquest/practice/internal/question"
)

type questionInput struct {
	ID             string `json:"id"`
	QuestionText   string `json:"question_text"`
	ExamName       string `json:"exam_name"`
	ExamYear       int    `json:"exam_year"`
	QuestionNumber string `json:"question_number"`
	Topic          string `json:"topic"`
	Subtopic       string `json:"subtopic"`
	Difficulty     string `json:"difficulty"`
	HasImage       bool   `json:"has_image"`
	ImageURL       string `json:"image_url"`
	Options        []struct {
		OptionLetter string `json:"option_letter"`
		OptionText   string `json:"option_text"`
		IsCorrect    bool   `json:"is_correct"`
	} `json:"options"`
	Solution *question.Solution `json:"solution"`
}

func (in questionInput) toModel() (question.Question, error) {
	if strings.TrimSpace(in.QuestionText) == "" {
		return question.Question{}, fmt.Errorf("question_text required")
	}
	q := question.Question{
		ID:             in.ID,
		QuestionText:   in.QuestionText,
		ExamName:       in.ExamName,
		ExamYear:       in.ExamYear,
		QuestionNumber: in.QuestionNumber,
		Topic:          in.Topic,
		Subtopic:       in.Subtopic,
		Difficulty:     in.Difficulty,
		HasImage:       in.HasImage,
		ImageURL:       in.ImageURL,
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Difficulty == "" {
		q.Difficulty = question.DifficultyMedium
	}
	for _, o := range in.Options {
		q.Options = append(q.Options, question.Option{
			ID:           uuid.NewString(),
			QuestionID:   q.ID,
			OptionLetter: o.OptionLetter,
			OptionText:   o.OptionText,
			IsCorrect:    o.IsCorrect,
		})
	}
	if in.Solution != nil {
		sol := *in.Solution
		if sol.ID == "" {
			sol.ID = uuid.NewString()
		}
		sol.QuestionID = q.ID
		q.Solution = &sol
	}
	return q, nil
}

// POST /api/questions and PUT /api/questions/{questionID}
func UpsertQuestionHandler(store question.Store, c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in questionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if id := chi.URLParam(r, "questionID"); id != "" {
			in.ID = id
		}
		q, err := in.toModel()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := store.PutQuestion(r.Context(), q); err != nil {
			writeError(w, err)
			return
		}
		// Question listings, counts and topic lists are all stale now.
		_ = c.InvalidatePattern("^(questions:|question_count:|question:|topics:)")
		writeJSON(w, http.StatusOK, q)
	}
}

// GET /api/questions/{questionID}
func GetQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuestion(r.Context(), chi.URLParam(r, "questionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// GET /api/questions?examType=&topic=&difficulty=&search=&limit=&offset=
func ListQuestionsHandler(store question.Store, c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qp := r.URL.Query()
		opts := question.ListOpts{
			Filters: question.Filters{
				ExamType:   qp.Get("examType"),
				Topic:      qp.Get("topic"),
				Difficulty: qp.Get("difficulty"),
			},
			Search: qp.Get("search"),
			Limit:  parseIntDefault(qp.Get("limit"), 50),
			Offset: parseIntDefault(qp.Get("offset"), 0),
		}
		key := cache.QuestionsKey(fmt.Sprintf("%s|%s|%s|%s|%d|%d",
			opts.ExamType, opts.Topic, opts.Difficulty, opts.Search, opts.Limit, opts.Offset))
		v, err := c.GetOrFetch(r.Context(), key, cache.QuestionsTTL, func(ctx context.Context) (any, error) {
			qs, err := store.ListQuestions(ctx, opts)
			if err != nil {
				return nil, err
			}
			if qs == nil {
				qs = []question.Question{}
			}
			return qs, nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// DELETE /api/questions/{questionID}
func DeleteQuestionHandler(store question.Store, c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "questionID")
		if err := store.DeleteQuestion(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		c.Invalidate(cache.QuestionKey(id))
		_ = c.InvalidatePattern("^(questions:|question_count:|topics:)")
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /api/question-counts?examType=&topic=&difficulty=
func QuestionCountHandler(store question.Store, c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qp := r.URL.Query()
		f := question.Filters{
			ExamType:   qp.Get("examType"),
			Topic:      qp.Get("topic"),
			Difficulty: qp.Get("difficulty"),
		}
		key := cache.QuestionCountKey(fmt.Sprintf("%s|%s|%s", f.ExamType, f.Topic, f.Difficulty))
		v, err := c.GetOrFetch(r.Context(), key, cache.QuestionsTTL, func(ctx context.Context) (any, error) {
			return store.CountQuestions(ctx, f)
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": v})
	}
}

// GET /api/topics
func TopicsHandler(store question.Store, c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := c.GetOrFetch(r.Context(), cache.TopicsKey, cache.TopicsTTL, func(ctx context.Context) (any, error) {
			topics, err := store.DistinctTopics(ctx)
			if err != nil {
				return nil, err
			}
			if topics == nil {
				topics = []string{}
			}
			return topics, nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"topics": v})
	}
}
