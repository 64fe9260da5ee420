package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/mathquest/practice/internal/cache"
	"github.com/mathquest/practice/internal/grading"
	"github.com/mathquest/practice/internal/question"
)

// POST /api/attempts
func RecordAttemptHandler(store question.Store, c *cache.Cache, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID         string `json:"user_id"`
			QuestionID     string `json:"question_id"`
			SelectedAnswer string `json:"selected_answer"`
			IsCorrect      bool   `json:"is_correct"`
			TimeSpent      int    `json:"time_spent"`
			HintsUsed      int    `json:"hints_used"`
			SessionID      string `json:"session_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.QuestionID == "" {
			http.Error(w, "question_id required", http.StatusBadRequest)
			return
		}
		userID := userOr(req.UserID, defaultUser)

		// Reject attempts against unknown questions up front so the
		// attempt log can not reference a phantom id.
		q, err := store.GetQuestion(r.Context(), req.QuestionID)
		if err != nil {
			writeError(w, err)
			return
		}

		// Multiple-choice answers are checked server-side; the client's
		// verdict only stands for open-ended questions.
		isCorrect := req.IsCorrect
		if correct, graded := grading.Check(q, req.SelectedAnswer); graded {
			isCorrect = correct
		}

		a := question.Attempt{
			ID:             uuid.NewString(),
			UserID:         userID,
			QuestionID:     req.QuestionID,
			SelectedAnswer: req.SelectedAnswer,
			IsCorrect:      isCorrect,
			TimeSpent:      req.TimeSpent,
			HintsUsed:      req.HintsUsed,
			SessionID:      req.SessionID,
		}
		if err := store.RecordAttempt(r.Context(), a); err != nil {
			writeError(w, err)
			return
		}
		c.Invalidate(cache.ProgressKey(userID))
		writeJSON(w, http.StatusCreated, a)
	}
}

// GET /api/attempts?userId=&questionId=&sessionId=&limit=&offset=
func ListAttemptsHandler(store question.Store, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qp := r.URL.Query()
		list, err := store.ListAttempts(r.Context(), question.AttemptListOpts{
			UserID:     userOr(qp.Get("userId"), defaultUser),
			QuestionID: qp.Get("questionId"),
			SessionID:  qp.Get("sessionId"),
			Limit:      parseIntDefault(qp.Get("limit"), 50),
			Offset:     parseIntDefault(qp.Get("offset"), 0),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []question.Attempt{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}
