package question

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SQLStore implements Store over database/sql. Works against both the
// sqlite and pgx drivers; $N placeholders are understood by both.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutQuestion(ctx context.Context, q Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	created := q.CreatedAt.Unix()
	if q.CreatedAt.IsZero() {
		created = now
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO questions
		(id,question_text,exam_name,exam_year,question_number,topic,subtopic,difficulty,has_image,image_url,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			question_text=EXCLUDED.question_text, exam_name=EXCLUDED.exam_name,
			exam_year=EXCLUDED.exam_year, question_number=EXCLUDED.question_number,
			topic=EXCLUDED.topic, subtopic=EXCLUDED.subtopic,
			difficulty=EXCLUDED.difficulty, has_image=EXCLUDED.has_image,
			image_url=EXCLUDED.image_url, updated_at=EXCLUDED.updated_at`,
		q.ID, q.QuestionText, q.ExamName, q.ExamYear, q.QuestionNumber,
		q.Topic, q.Subtopic, q.Difficulty, q.HasImage, q.ImageURL, created, now)
	if err != nil {
		return err
	}

	// Options and solution are replaced wholesale on every write; the
	// upload pipeline always sends the full question.
	if _, err := tx.ExecContext(ctx, `DELETE FROM options WHERE question_id=$1`, q.ID); err != nil {
		return err
	}
	for _, o := range q.Options {
		_, err := tx.ExecContext(ctx, `INSERT INTO options (id,question_id,option_letter,option_text,is_correct)
			VALUES ($1,$2,$3,$4,$5)`,
			o.ID, q.ID, o.OptionLetter, o.OptionText, o.IsCorrect)
		if err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM solutions WHERE question_id=$1`, q.ID); err != nil {
		return err
	}
	if q.Solution != nil {
		sol := q.Solution
		_, err := tx.ExecContext(ctx, `INSERT INTO solutions
			(id,question_id,solution_text,approach,key_insights,common_mistakes,time_estimate)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			sol.ID, q.ID, sol.SolutionText, sol.Approach, sol.KeyInsights, sol.CommonMistakes, sol.TimeEstimate)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	qs, err := s.FindQuestionsByIDs(ctx, []string{id})
	if err != nil {
		return Question{}, err
	}
	if len(qs) == 0 {
		return Question{}, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return qs[0], nil
}

func (s *SQLStore) ListQuestions(ctx context.Context, opts ListOpts) ([]Question, error) {
	where, args := filterClauses(opts.Filters, "")
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		where = append(where, fmt.Sprintf("question_text LIKE $%d", len(args)))
	}
	q := `SELECT id FROM questions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, id"
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, opts.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	qs, err := s.FindQuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	// FindQuestionsByIDs orders for presentation; a listing keeps the
	// creation order resolved above.
	byID := make(map[string]Question, len(qs))
	for _, q := range qs {
		byID[q.ID] = q
	}
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) FindQuestionIDs(ctx context.Context, f Filters, exclude []string) ([]string, error) {
	where, args := filterClauses(f, "")
	if len(exclude) > 0 {
		ph := make([]string, len(exclude))
		for i, id := range exclude {
			args = append(args, id)
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		where = append(where, fmt.Sprintf("id NOT IN (%s)", strings.Join(ph, ",")))
	}
	q := `SELECT id FROM questions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, id"
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLStore) FindAttempts(ctx context.Context, userID string, questionIDs []string) ([]AttemptRecord, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	args := []any{userID}
	ph := make([]string, len(questionIDs))
	for i, id := range questionIDs {
		args = append(args, id)
		ph[i] = fmt.Sprintf("$%d", len(args))
	}
	q := fmt.Sprintf(`SELECT question_id, attempted_at, is_correct FROM user_attempts
		WHERE user_id=$1 AND question_id IN (%s)
		ORDER BY attempted_at, id`, strings.Join(ph, ","))
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AttemptRecord
	for rows.Next() {
		var r AttemptRecord
		var at int64
		if err := rows.Scan(&r.QuestionID, &at, &r.IsCorrect); err != nil {
			return nil, err
		}
		r.AttemptedAt = time.Unix(at, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) FindQuestionsByIDs(ctx context.Context, ids []string) ([]Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	ph := make([]string, len(ids))
	for i, id := range ids {
		args[i] = id
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	in := strings.Join(ph, ",")

	// Easier questions first, then creation order, matching the practice
	// page's presentation order.
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT
		id,question_text,exam_name,exam_year,question_number,topic,subtopic,difficulty,has_image,image_url,created_at,updated_at
		FROM questions WHERE id IN (%s)
		ORDER BY CASE difficulty WHEN 'EASY' THEN 0 WHEN 'MEDIUM' THEN 1 ELSE 2 END, created_at, id`, in), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var qs []Question
	idx := make(map[string]int)
	for rows.Next() {
		var q Question
		var created, updated int64
		if err := rows.Scan(&q.ID, &q.QuestionText, &q.ExamName, &q.ExamYear, &q.QuestionNumber,
			&q.Topic, &q.Subtopic, &q.Difficulty, &q.HasImage, &q.ImageURL, &created, &updated); err != nil {
			return nil, err
		}
		q.CreatedAt = time.Unix(created, 0).UTC()
		q.UpdatedAt = time.Unix(updated, 0).UTC()
		idx[q.ID] = len(qs)
		qs = append(qs, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, nil
	}

	orows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id,question_id,option_letter,option_text,is_correct
		FROM options WHERE question_id IN (%s) ORDER BY question_id, option_letter`, in), args...)
	if err != nil {
		return nil, err
	}
	defer orows.Close()
	for orows.Next() {
		var o Option
		if err := orows.Scan(&o.ID, &o.QuestionID, &o.OptionLetter, &o.OptionText, &o.IsCorrect); err != nil {
			return nil, err
		}
		if i, ok := idx[o.QuestionID]; ok {
			qs[i].Options = append(qs[i].Options, o)
		}
	}
	if err := orows.Err(); err != nil {
		return nil, err
	}

	srows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id,question_id,solution_text,approach,key_insights,common_mistakes,time_estimate
		FROM solutions WHERE question_id IN (%s)`, in), args...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var sol Solution
		if err := srows.Scan(&sol.ID, &sol.QuestionID, &sol.SolutionText, &sol.Approach,
			&sol.KeyInsights, &sol.CommonMistakes, &sol.TimeEstimate); err != nil {
			return nil, err
		}
		if i, ok := idx[sol.QuestionID]; ok {
			s := sol
			qs[i].Solution = &s
		}
	}
	return qs, srows.Err()
}

func (s *SQLStore) CountQuestions(ctx context.Context, f Filters) (int, error) {
	where, args := filterClauses(f, "")
	q := `SELECT COUNT(*) FROM questions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	var n int
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

func (s *SQLStore) CountDistinctAttempted(ctx context.Context, userID string, f Filters) (int, error) {
	args := []any{userID}
	where := []string{"a.user_id=$1"}
	fw, fargs := filterClauses(f, "q.")
	for i, clause := range fw {
		// renumber placeholders after the user_id arg
		where = append(where, strings.Replace(clause, fmt.Sprintf("$%d", i+1), fmt.Sprintf("$%d", len(args)+1), 1))
		args = append(args, fargs[i])
	}
	q := `SELECT COUNT(DISTINCT a.question_id) FROM user_attempts a
		JOIN questions q ON q.id = a.question_id
		WHERE ` + strings.Join(where, " AND ")
	var n int
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

func (s *SQLStore) RecordAttempt(ctx context.Context, a Attempt) error {
	at := a.AttemptedAt.Unix()
	if a.AttemptedAt.IsZero() {
		at = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_attempts
		(id,user_id,question_id,selected_answer,is_correct,time_spent,hints_used,session_id,attempted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.UserID, a.QuestionID, a.SelectedAnswer, a.IsCorrect, a.TimeSpent, a.HintsUsed, a.SessionID, at)
	return err
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	var where []string
	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if opts.UserID != "" {
		add("user_id=$%d", opts.UserID)
	}
	if opts.QuestionID != "" {
		add("question_id=$%d", opts.QuestionID)
	}
	if opts.SessionID != "" {
		add("session_id=$%d", opts.SessionID)
	}
	q := `SELECT id,user_id,question_id,selected_answer,is_correct,time_spent,hints_used,session_id,attempted_at
		FROM user_attempts`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY attempted_at DESC, id DESC"
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	q += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, opts.Offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		var a Attempt
		var at int64
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuestionID, &a.SelectedAnswer, &a.IsCorrect,
			&a.TimeSpent, &a.HintsUsed, &a.SessionID, &at); err != nil {
			return nil, err
		}
		a.AttemptedAt = time.Unix(at, 0).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) DistinctTopics(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT topic FROM questions ORDER BY topic`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var topics []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (s *SQLStore) UserStats(ctx context.Context, userID string) (ProgressStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT a.is_correct, a.time_spent, q.topic, q.difficulty
		FROM user_attempts a JOIN questions q ON q.id = a.question_id
		WHERE a.user_id=$1 ORDER BY a.attempted_at, a.id`, userID)
	if err != nil {
		return ProgressStats{}, err
	}
	defer rows.Close()

	var recs []statRecord
	for rows.Next() {
		var r statRecord
		if err := rows.Scan(&r.correct, &r.timeSpent, &r.topic, &r.difficulty); err != nil {
			return ProgressStats{}, err
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return ProgressStats{}, err
	}
	return computeStats(recs), nil
}

type statRecord struct {
	correct    bool
	timeSpent  int
	topic      string
	difficulty string
}

// computeStats folds an attempt history (oldest first) into display stats.
func computeStats(recs []statRecord) ProgressStats {
	st := ProgressStats{
		TopicBreakdown:      map[string]TopicStat{},
		DifficultyBreakdown: map[string]TopicStat{},
	}
	totalTime := 0
	streak := 0
	for _, r := range recs {
		st.TotalAttempts++
		totalTime += r.timeSpent
		if r.correct {
			st.CorrectAnswers++
			streak++
			if streak > st.LongestStreak {
				st.LongestStreak = streak
			}
		} else {
			streak = 0
		}
		bump(st.TopicBreakdown, r.topic, r.correct)
		bump(st.DifficultyBreakdown, r.difficulty, r.correct)
	}
	st.CurrentStreak = streak
	if st.TotalAttempts > 0 {
		st.Accuracy = float64(st.CorrectAnswers) / float64(st.TotalAttempts) * 100
		st.AverageTime = float64(totalTime) / float64(st.TotalAttempts)
	}
	return st
}

func bump(m map[string]TopicStat, key string, correct bool) {
	if key == "" {
		return
	}
	s := m[key]
	s.Attempted++
	if correct {
		s.Correct++
	}
	s.Accuracy = float64(s.Correct) / float64(s.Attempted) * 100
	m[key] = s
}

// filterClauses renders the active filters as WHERE clauses with $N
// placeholders starting at 1. prefix qualifies column names for joins.
func filterClauses(f Filters, prefix string) ([]string, []any) {
	var where []string
	var args []any
	if f.ExamActive() {
		args = append(args, f.ExamType)
		where = append(where, fmt.Sprintf("%sexam_name=$%d", prefix, len(args)))
	}
	if f.TopicActive() {
		args = append(args, f.Topic)
		where = append(where, fmt.Sprintf("%stopic=$%d", prefix, len(args)))
	}
	if f.DifficultyActive() {
		args = append(args, f.Difficulty)
		where = append(where, fmt.Sprintf("%sdifficulty=$%d", prefix, len(args)))
	}
	return where, args
}

var _ Store = (*SQLStore)(nil)
