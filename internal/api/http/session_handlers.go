package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mathquest/practice/internal/cache"
	"github.com/mathquest/practice/internal/session"
)

// POST /api/practice-sessions
func StartSessionHandler(store session.Store, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID      string `json:"user_id"`
			SessionType string `json:"session_type"`
			FocusTopics string `json:"focus_topics"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		ps, err := store.StartSession(r.Context(), session.PracticeSession{
			ID:          uuid.NewString(),
			UserID:      userOr(req.UserID, defaultUser),
			SessionType: req.SessionType,
			FocusTopics: req.FocusTopics,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, ps)
	}
}

// POST /api/practice-sessions/{sessionID}/complete
func CompleteSessionHandler(store session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in session.CompleteInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		ps, err := store.CompleteSession(r.Context(), chi.URLParam(r, "sessionID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ps)
	}
}

// GET /api/practice-sessions?userId=&limit=
func ListSessionsHandler(store session.Store, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qp := r.URL.Query()
		list, err := store.ListSessions(r.Context(), userOr(qp.Get("userId"), defaultUser), parseIntDefault(qp.Get("limit"), 20))
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []session.PracticeSession{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /api/achievements?userId=
func ListAchievementsHandler(store session.Store, c *cache.Cache, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userOr(r.URL.Query().Get("userId"), defaultUser)
		v, err := c.GetOrFetch(r.Context(), cache.AchievementsKey+":"+userID, cache.AchievementsTTL, func(ctx context.Context) (any, error) {
			list, err := store.ListAchievements(ctx, userID)
			if err != nil {
				return nil, err
			}
			if list == nil {
				list = []session.Achievement{}
			}
			return list, nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// POST /api/achievements
func UnlockAchievementHandler(store session.Store, c *cache.Cache, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID      string `json:"user_id"`
			Title       string `json:"title"`
			Description string `json:"description"`
			BadgeIcon   string `json:"badge_icon"`
			Category    string `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Title == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		a := session.Achievement{
			ID:          uuid.NewString(),
			UserID:      userOr(req.UserID, defaultUser),
			Title:       req.Title,
			Description: req.Description,
			BadgeIcon:   req.BadgeIcon,
			Category:    req.Category,
		}
		if err := store.UnlockAchievement(r.Context(), a); err != nil {
			writeError(w, err)
			return
		}
		c.Invalidate(cache.AchievementsKey + ":" + a.UserID)
		writeJSON(w, http.StatusCreated, a)
	}
}
