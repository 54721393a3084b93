package enrollment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	StatusActive  = "active"
	StatusInvited = "invited"
	StatusDropped = "dropped"
)

// Checker answers whether a student is an active member of a course.
type Checker interface {
	IsActive(ctx context.Context, studentID, courseID string) (bool, error)
}

// Roster manages course membership.
type Roster interface {
	Checker
	Enroll(ctx context.Context, courseID string, studentIDs []string, status string) error
}

// NormalizeStatus maps free-form input to a known status, defaulting to active.
func NormalizeStatus(s string) string {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case StatusInvited, StatusDropped:
		return s
	default:
		return StatusActive
	}
}

type SQLRoster struct {
	db *sql.DB
}

func NewSQLRoster(db *sql.DB) *SQLRoster { return &SQLRoster{db: db} }

func (r *SQLRoster) IsActive(ctx context.Context, studentID, courseID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM course_students WHERE course_id=$1 AND student_id=$2 AND status='active')`,
		courseID, studentID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return ok, nil
}

func (r *SQLRoster) Enroll(ctx context.Context, courseID string, studentIDs []string, status string) error {
	status = NormalizeStatus(status)
	now := time.Now().Unix()
	for _, uid := range studentIDs {
		uid = strings.TrimSpace(uid)
		if uid == "" {
			continue
		}
		if _, err := r.db.ExecContext(ctx, `INSERT INTO course_students (course_id, student_id, status, enrolled_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (course_id, student_id) DO UPDATE SET status=EXCLUDED.status`,
			courseID, uid, status, now); err != nil {
			return fmt.Errorf("enroll %s in %s: %w", uid, courseID, err)
		}
	}
	return nil
}

type memoryRoster struct {
	mu      sync.RWMutex
	members map[string]string // courseID|studentID -> status
}

func NewInMemoryRoster() Roster {
	return &memoryRoster{members: map[string]string{}}
}

func (m *memoryRoster) IsActive(_ context.Context, studentID, courseID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.members[courseID+"|"+studentID] == StatusActive, nil
}

func (m *memoryRoster) Enroll(_ context.Context, courseID string, studentIDs []string, status string) error {
	status = NormalizeStatus(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, uid := range studentIDs {
		if uid = strings.TrimSpace(uid); uid != "" {
			m.members[courseID+"|"+uid] = status
		}
	}
	return nil
}
