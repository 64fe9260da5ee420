package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mathquest/practice/internal/api/http"
	"github.com/mathquest/practice/internal/cache"
	"github.com/mathquest/practice/internal/config"
	"github.com/mathquest/practice/internal/db"
	"github.com/mathquest/practice/internal/question"
	"github.com/mathquest/practice/internal/selection"
	"github.com/mathquest/practice/internal/session"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	questions := question.NewSQLStore(dbh)
	sessions := session.NewSQLStore(dbh)

	// One shared cache for the whole process, passed by reference.
	memo := cache.New()
	engine := selection.NewEngine(questions)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Route("/api", func(ar chi.Router) {
		ar.Route("/questions", func(qr chi.Router) {
			qr.Get("/", api.ListQuestionsHandler(questions, memo))
			qr.Post("/", api.UpsertQuestionHandler(questions, memo))
			qr.Get("/smart-selection", api.SmartSelectionHandler(engine, cfg.DefaultUserID))
			qr.Post("/smart-selection", api.MoreQuestionsHandler(engine, cfg.DefaultUserID))
			qr.Get("/{questionID}", api.GetQuestionHandler(questions))
			qr.Put("/{questionID}", api.UpsertQuestionHandler(questions, memo))
			qr.Delete("/{questionID}", api.DeleteQuestionHandler(questions, memo))
		})

		ar.Get("/question-counts", api.QuestionCountHandler(questions, memo))
		ar.Get("/topics", api.TopicsHandler(questions, memo))

		ar.Post("/attempts", api.RecordAttemptHandler(questions, memo, cfg.DefaultUserID))
		ar.Get("/attempts", api.ListAttemptsHandler(questions, cfg.DefaultUserID))

		ar.Get("/progress", api.ProgressSummaryHandler(engine, cfg.DefaultUserID))
		ar.Get("/stats", api.StatsHandler(questions, memo, cfg.DefaultUserID))

		ar.Route("/practice-sessions", func(sr chi.Router) {
			sr.Post("/", api.StartSessionHandler(sessions, cfg.DefaultUserID))
			sr.Get("/", api.ListSessionsHandler(sessions, cfg.DefaultUserID))
			sr.Post("/{sessionID}/complete", api.CompleteSessionHandler(sessions))
		})

		ar.Get("/achievements", api.ListAchievementsHandler(sessions, memo, cfg.DefaultUserID))
		ar.Post("/achievements", api.UnlockAchievementHandler(sessions, memo, cfg.DefaultUserID))

		ar.Route("/exams", func(er chi.Router) {
			er.Post("/", api.UpsertScheduleHandler(sessions))
			er.Get("/", api.ListSchedulesHandler(sessions))
			er.Get("/{scheduleID}", api.GetScheduleHandler(sessions))
			er.Put("/{scheduleID}", api.UpsertScheduleHandler(sessions))
			er.Delete("/{scheduleID}", api.DeleteScheduleHandler(sessions))
		})

		ar.Get("/cache/stats", api.CacheStatsHandler(memo))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s, user=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.DefaultUserID)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
