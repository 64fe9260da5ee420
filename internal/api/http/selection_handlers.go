package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mathquest/practice/internal/selection"
)

type selectionResponse struct {
	Success   bool                `json:"success"`
	Data      any                 `json:"data"`
	RoundInfo selection.RoundInfo `json:"round_info"`
	Message   string              `json:"message"`
	Meta      selectionMeta       `json:"meta"`
}

type selectionMeta struct {
	TotalReturned  int    `json:"total_returned"`
	RequestedLimit int    `json:"requested_limit"`
	ExamType       string `json:"exam_type,omitempty"`
	Topic          string `json:"topic,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`
}

// GET /api/questions/smart-selection?examType=&topic=&difficulty=&limit=&exclude=a,b&userId=
func SmartSelectionHandler(engine *selection.Engine, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qp := r.URL.Query()
		opts := selection.Options{
			UserID:     userOr(qp.Get("userId"), defaultUser),
			ExamType:   qp.Get("examType"),
			Topic:      qp.Get("topic"),
			Difficulty: qp.Get("difficulty"),
			Limit:      parseIntDefault(qp.Get("limit"), selection.DefaultLimit),
		}
		if ex := qp.Get("exclude"); ex != "" {
			for _, id := range strings.Split(ex, ",") {
				if id = strings.TrimSpace(id); id != "" {
					opts.ExcludeQuestionIDs = append(opts.ExcludeQuestionIDs, id)
				}
			}
		}
		serveSelection(w, r, engine, opts)
	}
}

// POST /api/questions/smart-selection — used by the practice page to pull
// more questions mid-session while excluding ones already on screen.
func MoreQuestionsHandler(engine *selection.Engine, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID             string   `json:"user_id"`
			ExamType           string   `json:"exam_type"`
			Topic              string   `json:"topic"`
			Difficulty         string   `json:"difficulty"`
			Limit              int      `json:"limit"`
			SessionQuestionIDs []string `json:"session_question_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		limit := req.Limit
		if limit <= 0 {
			limit = 5
		}
		serveSelection(w, r, engine, selection.Options{
			UserID:             userOr(req.UserID, defaultUser),
			ExamType:           req.ExamType,
			Topic:              req.Topic,
			Difficulty:         req.Difficulty,
			Limit:              limit,
			ExcludeQuestionIDs: req.SessionQuestionIDs,
		})
	}
}

func serveSelection(w http.ResponseWriter, r *http.Request, engine *selection.Engine, opts selection.Options) {
	res, err := engine.SelectQuestions(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{
		Success:   true,
		Data:      res.Questions,
		RoundInfo: res.RoundInfo,
		Message:   res.Message,
		Meta: selectionMeta{
			TotalReturned:  len(res.Questions),
			RequestedLimit: opts.Limit,
			ExamType:       opts.ExamType,
			Topic:          opts.Topic,
			Difficulty:     opts.Difficulty,
		},
	})
}

func userOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
