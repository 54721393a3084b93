package attempt

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/db"
)

type SQLLedger struct {
	db *sql.DB
}

func NewSQLLedger(db *sql.DB) *SQLLedger {
	return &SQLLedger{db: db}
}

const attemptColumns = `id,student_id,quiz_id,course_id,attempt_number,status,answers_json,
	total_points,earned_points,score,passed,started_at,submitted_at,time_spent`

func (s *SQLLedger) Count(ctx context.Context, studentID, quizID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE student_id=$1 AND quiz_id=$2`, studentID, quizID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

func (s *SQLLedger) CountByQuiz(ctx context.Context, quizID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attempts WHERE quiz_id=$1`, quizID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

func (s *SQLLedger) FindInProgress(ctx context.Context, studentID, quizID string) (Attempt, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM attempts
		WHERE student_id=$1 AND quiz_id=$2 AND status='in_progress'`, studentID, quizID)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, false, nil
	}
	if err != nil {
		return Attempt{}, false, fmt.Errorf("find in-progress attempt: %w", err)
	}
	return a, true, nil
}

func (s *SQLLedger) Create(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(nonNilAnswers(a.Answers))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO attempts (id,student_id,quiz_id,course_id,attempt_number,status,answers_json,started_at)
		VALUES ($1,$2,$3,$4,$5,'in_progress',$6,$7)`,
		a.ID, a.StudentID, a.QuizID, a.CourseID, a.AttemptNumber, string(aj), a.StartedAt.UnixMilli())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateInProgress
		}
		return fmt.Errorf("create attempt: %w", err)
	}
	return nil
}

func (s *SQLLedger) Finalize(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(nonNilAnswers(a.Answers))
	if err != nil {
		return err
	}
	var submitted int64
	if a.SubmittedAt != nil {
		submitted = a.SubmittedAt.UnixMilli()
	}
	passed := 0
	if a.Passed {
		passed = 1
	}
	// status is part of the predicate: of two concurrent submits only one matches
	res, err := s.db.ExecContext(ctx, `UPDATE attempts
		SET status='submitted', answers_json=$1, total_points=$2, earned_points=$3, score=$4,
		    passed=$5, submitted_at=$6, time_spent=$7
		WHERE id=$8 AND student_id=$9 AND quiz_id=$10 AND status='in_progress'`,
		string(aj), a.TotalPoints, a.EarnedPoints, a.Score, passed, submitted, a.TimeSpent,
		a.ID, a.StudentID, a.QuizID)
	if err != nil {
		return fmt.Errorf("finalize attempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize attempt: %w", err)
	}
	if n == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

func (s *SQLLedger) Get(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM attempts WHERE id=$1`, id)
	a, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, fmt.Errorf("get attempt: %w", err)
	}
	return a, nil
}

func (s *SQLLedger) ListSubmitted(ctx context.Context, studentID, quizID string) ([]Attempt, error) {
	return s.List(ctx, ListOpts{StudentID: studentID, QuizID: quizID, Status: StatusSubmitted})
}

func (s *SQLLedger) List(ctx context.Context, opts ListOpts) ([]Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE 1=1`
	var args []any
	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		query += ` AND ` + col + `=$` + strconv.Itoa(len(args))
	}
	add("quiz_id", opts.QuizID)
	add("student_id", opts.StudentID)
	add("status", opts.Status)
	query += ` ORDER BY student_id, attempt_number`
	if opts.Limit > 0 {
		args = append(args, opts.Limit, opts.Offset)
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var (
		a         Attempt
		ajson     string
		passed    int
		started   int64
		submitted sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.StudentID, &a.QuizID, &a.CourseID, &a.AttemptNumber, &a.Status, &ajson,
		&a.TotalPoints, &a.EarnedPoints, &a.Score, &passed, &started, &submitted, &a.TimeSpent)
	if err != nil {
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &a.Answers); err != nil {
		a.Answers = []Answer{}
	}
	a.Passed = passed != 0
	a.StartedAt = time.UnixMilli(started).UTC()
	if submitted.Valid {
		t := time.UnixMilli(submitted.Int64).UTC()
		a.SubmittedAt = &t
	}
	return a, nil
}

func nonNilAnswers(in []Answer) []Answer {
	if in == nil {
		return []Answer{}
	}
	return in
}
