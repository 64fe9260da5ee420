package http

import (
	"context"
	"net/http"

	"github.com/mathquest/practice/internal/cache"
	"github.com/mathquest/practice/internal/question"
	"github.com/mathquest/practice/internal/selection"
)

// GET /api/progress?userId=&examType=
func ProgressSummaryHandler(engine *selection.Engine, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qp := r.URL.Query()
		p, err := engine.ProgressSummary(r.Context(), userOr(qp.Get("userId"), defaultUser), qp.Get("examType"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// GET /api/stats?userId=
func StatsHandler(store question.Store, c *cache.Cache, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userOr(r.URL.Query().Get("userId"), defaultUser)
		v, err := c.GetOrFetch(r.Context(), cache.ProgressKey(userID), cache.ProgressTTL, func(ctx context.Context) (any, error) {
			return store.UserStats(ctx, userID)
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// GET /api/cache/stats — debugging surface for the in-memory cache.
func CacheStatsHandler(c *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c.GetStats())
	}
}
