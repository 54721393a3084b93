package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

const quizColumns = `id,course_id,module_id,session_id,group_id,title,description,
	passing_score,time_limit,max_attempts,shuffle_questions,shuffle_options,show_feedback,
	questions_json,created_by,created_at,updated_at`

func (s *SQLStore) Put(ctx context.Context, q Quiz) (Quiz, error) {
	if err := Validate(q); err != nil {
		return Quiz{}, err
	}
	q = prepare(q, time.Time{}, s.now().UTC())
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return Quiz{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (`+quizColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO UPDATE SET
		  course_id=EXCLUDED.course_id, module_id=EXCLUDED.module_id, session_id=EXCLUDED.session_id,
		  group_id=EXCLUDED.group_id, title=EXCLUDED.title, description=EXCLUDED.description,
		  passing_score=EXCLUDED.passing_score, time_limit=EXCLUDED.time_limit,
		  max_attempts=EXCLUDED.max_attempts, shuffle_questions=EXCLUDED.shuffle_questions,
		  shuffle_options=EXCLUDED.shuffle_options, show_feedback=EXCLUDED.show_feedback,
		  questions_json=EXCLUDED.questions_json, updated_at=EXCLUDED.updated_at`,
		q.ID, q.CourseID, q.ModuleID, q.SessionID, q.GroupID, q.Title, q.Description,
		q.PassingScore, q.TimeLimit, q.MaxAttempts,
		boolInt(q.ShuffleQuestions), boolInt(q.ShuffleOptions), boolInt(q.ShowFeedback),
		string(qj), q.CreatedBy, q.CreatedAt.Unix(), q.UpdatedAt.Unix())
	if err != nil {
		return Quiz{}, fmt.Errorf("put quiz: %w", err)
	}
	return s.Get(ctx, q.ID)
}

func (s *SQLStore) Get(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id=$1`, id)
	q, err := scanQuiz(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrNotFound
		}
		return Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return q, nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Summary, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE 1=1`
	var args []any
	if opts.CourseID != "" {
		args = append(args, opts.CourseID)
		query += ` AND course_id=$` + strconv.Itoa(len(args))
	}
	if opts.CreatedBy != "" {
		args = append(args, opts.CreatedBy)
		query += ` AND created_by=$` + strconv.Itoa(len(args))
	}
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, opts.Offset)
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()
	out := []Summary{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q.Summary())
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (Quiz, error) {
	var (
		q                      Quiz
		shuffleQ, shuffleO, fb int
		qjson                  string
		createdAt, updatedAt   int64
	)
	err := row.Scan(&q.ID, &q.CourseID, &q.ModuleID, &q.SessionID, &q.GroupID, &q.Title, &q.Description,
		&q.PassingScore, &q.TimeLimit, &q.MaxAttempts, &shuffleQ, &shuffleO, &fb,
		&qjson, &q.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, fmt.Errorf("decode questions of quiz %s: %w", q.ID, err)
	}
	q.ShuffleQuestions = shuffleQ != 0
	q.ShuffleOptions = shuffleO != 0
	q.ShowFeedback = fb != 0
	q.CreatedAt = time.Unix(createdAt, 0).UTC()
	q.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return q, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
