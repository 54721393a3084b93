package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const TypeAttemptSubmitted = "AttemptSubmitted"

// AttemptSubmitted is the payload published after an attempt is scored.
type AttemptSubmitted struct {
	AttemptID     string  `json:"attemptId"`
	AttemptNumber int     `json:"attemptNumber"`
	QuizID        string  `json:"quizId"`
	CourseID      string  `json:"courseId"`
	StudentID     string  `json:"studentId"`
	Score         int     `json:"score"`
	EarnedPoints  float64 `json:"earnedPoints"`
	TotalPoints   float64 `json:"totalPoints"`
	Passed        bool    `json:"passed"`
	TimeSpent     int64   `json:"timeSpent"`
	SubmittedAt   int64   `json:"submittedAt"` // unix seconds
}

// Notifier receives submitted attempts. Implementations must not retain e.
type Notifier interface {
	AttemptSubmitted(ctx context.Context, e AttemptSubmitted) error
}

type Event struct {
	Seq       int64
	SiteID    string
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

// EventRepo is an append-only outbox over the event_log table.
type EventRepo struct {
	db     *sql.DB
	siteID string
	now    func() time.Time
}

func NewEventRepo(db *sql.DB, siteID string) *EventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &EventRepo{db: db, siteID: siteID, now: time.Now}
}

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if e.SiteID == "" {
		e.SiteID = r.siteID
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.SiteID, e.Type, e.Key, e.DataJSON, r.now().Unix())
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (r *EventRepo) AttemptSubmitted(ctx context.Context, e AttemptSubmitted) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.Append(ctx, Event{Type: TypeAttemptSubmitted, Key: e.AttemptID, DataJSON: string(b)})
}

// Since returns up to limit events with seq > after, oldest first.
func (r *EventRepo) Since(ctx context.Context, after int64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, site_id, typ, key, data, created_at FROM event_log
		 WHERE seq > $1 ORDER BY seq LIMIT $2`, after, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.SiteID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
