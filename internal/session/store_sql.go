package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) StartSession(ctx context.Context, ps PracticeSession) (PracticeSession, error) {
	if ps.StartedAt.IsZero() {
		ps.StartedAt = time.Now().UTC()
	}
	if ps.SessionType == "" {
		ps.SessionType = "practice"
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO practice_sessions
		(id,user_id,session_type,started_at,total_questions,correct_answers,total_time,focus_topics)
		VALUES ($1,$2,$3,$4,0,0,0,$5)`,
		ps.ID, ps.UserID, ps.SessionType, ps.StartedAt.Unix(), ps.FocusTopics)
	if err != nil {
		return PracticeSession{}, err
	}
	return ps, nil
}

func (s *SQLStore) CompleteSession(ctx context.Context, id string, in CompleteInput) (PracticeSession, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE practice_sessions
		SET completed_at=$1, total_questions=$2, correct_answers=$3, total_time=$4
		WHERE id=$5 AND completed_at IS NULL`,
		time.Now().Unix(), in.TotalQuestions, in.CorrectAnswers, in.TotalTime, id)
	if err != nil {
		return PracticeSession{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the session does not exist or it was already completed.
		if _, getErr := s.GetSession(ctx, id); getErr != nil {
			return PracticeSession{}, getErr
		}
		return PracticeSession{}, fmt.Errorf("session %s already completed", id)
	}
	return s.GetSession(ctx, id)
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (PracticeSession, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,user_id,session_type,started_at,completed_at,total_questions,correct_answers,total_time,focus_topics
		FROM practice_sessions WHERE id=$1`, id)
	ps, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PracticeSession{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return ps, err
}

func (s *SQLStore) ListSessions(ctx context.Context, userID string, limit int) ([]PracticeSession, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,user_id,session_type,started_at,completed_at,total_questions,correct_answers,total_time,focus_topics
		FROM practice_sessions WHERE user_id=$1 ORDER BY started_at DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PracticeSession
	for rows.Next() {
		ps, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (PracticeSession, error) {
	var ps PracticeSession
	var started int64
	var completed sql.NullInt64
	if err := r.Scan(&ps.ID, &ps.UserID, &ps.SessionType, &started, &completed,
		&ps.TotalQuestions, &ps.CorrectAnswers, &ps.TotalTime, &ps.FocusTopics); err != nil {
		return PracticeSession{}, err
	}
	ps.StartedAt = time.Unix(started, 0).UTC()
	if completed.Valid {
		t := time.Unix(completed.Int64, 0).UTC()
		ps.CompletedAt = &t
	}
	return ps, nil
}

func (s *SQLStore) UnlockAchievement(ctx context.Context, a Achievement) error {
	if a.UnlockedAt.IsZero() {
		a.UnlockedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO achievements
		(id,user_id,title,description,badge_icon,category,unlocked_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING`,
		a.ID, a.UserID, a.Title, a.Description, a.BadgeIcon, a.Category, a.UnlockedAt.Unix())
	return err
}

func (s *SQLStore) ListAchievements(ctx context.Context, userID string) ([]Achievement, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,user_id,title,description,badge_icon,category,unlocked_at
		FROM achievements WHERE user_id=$1 ORDER BY unlocked_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Achievement
	for rows.Next() {
		var a Achievement
		var at int64
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Description, &a.BadgeIcon, &a.Category, &at); err != nil {
			return nil, err
		}
		a.UnlockedAt = time.Unix(at, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutSchedule(ctx context.Context, e ExamSchedule) error {
	if e.Status == "" {
		e.Status = ScheduleUpcoming
	}
	var score, maxScore sql.NullFloat64
	if e.Score != nil {
		score = sql.NullFloat64{Float64: *e.Score, Valid: true}
	}
	if e.MaxScore != nil {
		maxScore = sql.NullFloat64{Float64: *e.MaxScore, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO exam_schedules
		(id,exam_name,exam_date,location,duration,status,notes,score,max_score)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			exam_name=EXCLUDED.exam_name, exam_date=EXCLUDED.exam_date,
			location=EXCLUDED.location, duration=EXCLUDED.duration,
			status=EXCLUDED.status, notes=EXCLUDED.notes,
			score=EXCLUDED.score, max_score=EXCLUDED.max_score`,
		e.ID, e.ExamName, e.ExamDate.Unix(), e.Location, e.Duration, e.Status, e.Notes, score, maxScore)
	return err
}

func (s *SQLStore) GetSchedule(ctx context.Context, id string) (ExamSchedule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,exam_name,exam_date,location,duration,status,notes,score,max_score
		FROM exam_schedules WHERE id=$1`, id)
	e, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ExamSchedule{}, fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}
	return e, err
}

func (s *SQLStore) ListSchedules(ctx context.Context, status string) ([]ExamSchedule, error) {
	q := `SELECT id,exam_name,exam_date,location,duration,status,notes,score,max_score FROM exam_schedules`
	var args []any
	if status != "" && status != "all" {
		q += ` WHERE status=$1`
		args = append(args, status)
	}
	q += ` ORDER BY exam_date, id`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ExamSchedule
	for rows.Next() {
		e, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanSchedule(r rowScanner) (ExamSchedule, error) {
	var e ExamSchedule
	var date int64
	var score, maxScore sql.NullFloat64
	if err := r.Scan(&e.ID, &e.ExamName, &date, &e.Location, &e.Duration, &e.Status, &e.Notes, &score, &maxScore); err != nil {
		return ExamSchedule{}, err
	}
	e.ExamDate = time.Unix(date, 0).UTC()
	if score.Valid {
		v := score.Float64
		e.Score = &v
	}
	if maxScore.Valid {
		v := maxScore.Float64
		e.MaxScore = &v
	}
	return e, nil
}

func (s *SQLStore) DeleteSchedule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exam_schedules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}
	return nil
}

var _ Store = (*SQLStore)(nil)
