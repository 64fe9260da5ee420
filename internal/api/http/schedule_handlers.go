package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mathquest/practice/internal/session"
)

type scheduleInput struct {
	ExamName string   `json:"exam_name"`
	ExamDate string   `json:"exam_date"` // RFC 3339
	Location string   `json:"location"`
	Duration int      `json:"duration"`
	Status   string   `json:"status"`
	Notes    string   `json:"notes"`
	Score    *float64 `json:"score"`
	MaxScore *float64 `json:"max_score"`
}

func (in scheduleInput) toModel(id string) (session.ExamSchedule, error) {
	date, err := time.Parse(time.RFC3339, in.ExamDate)
	if err != nil {
		return session.ExamSchedule{}, err
	}
	return session.ExamSchedule{
		ID:       id,
		ExamName: in.ExamName,
		ExamDate: date,
		Location: in.Location,
		Duration: in.Duration,
		Status:   in.Status,
		Notes:    in.Notes,
		Score:    in.Score,
		MaxScore: in.MaxScore,
	}, nil
}

// POST /api/exams and PUT /api/exams/{scheduleID}
func UpsertScheduleHandler(store session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in scheduleInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if in.ExamName == "" {
			http.Error(w, "exam_name required", http.StatusBadRequest)
			return
		}
		id := chi.URLParam(r, "scheduleID")
		if id == "" {
			id = uuid.NewString()
		}
		e, err := in.toModel(id)
		if err != nil {
			http.Error(w, "exam_date must be RFC 3339", http.StatusBadRequest)
			return
		}
		if err := store.PutSchedule(r.Context(), e); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// GET /api/exams/{scheduleID}
func GetScheduleHandler(store session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := store.GetSchedule(r.Context(), chi.URLParam(r, "scheduleID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// GET /api/exams?status=
func ListSchedulesHandler(store session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListSchedules(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []session.ExamSchedule{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// DELETE /api/exams/{scheduleID}
func DeleteScheduleHandler(store session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteSchedule(r.Context(), chi.URLParam(r, "scheduleID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
