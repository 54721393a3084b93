package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-quiz/internal/db"
)

const (
	RoleStudent = "student"
	RoleTrainer = "trainer"
	RoleAdmin   = "admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
)

const bcryptCost = 12

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"createdAt"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTrainer, RoleAdmin:
		return true
	}
	return false
}

// UserStore keeps local accounts in the users table.
type UserStore struct {
	db   *sql.DB
	cost int
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db, cost: bcryptCost}
}

func (s *UserStore) Create(ctx context.Context, username, password, role string) (User, error) {
	username = strings.TrimSpace(username)
	if role == "" {
		role = RoleStudent
	}
	if !ValidRole(role) {
		return User{}, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}
	if username == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, err
	}
	u := User{ID: uuid.NewString(), Username: username, Role: role, CreatedAt: time.Now().Unix()}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Username, string(hash), u.Role, u.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (User, error) {
	var (
		u    User
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, role, created_at, password_hash FROM users WHERE username=$1`,
		strings.TrimSpace(username)).Scan(&u.ID, &u.Username, &u.Role, &u.CreatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserStore) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidCredentials
	}
	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id=$1`, userID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, string(hash), userID); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Role returns the stored role for a user id.
func (s *UserStore) Role(ctx context.Context, userID string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT role FROM users WHERE id=$1`, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load role: %w", err)
	}
	return role, nil
}

// EnsureAdmin creates the bootstrap admin unless a user with that name exists.
func (s *UserStore) EnsureAdmin(ctx context.Context, username, password string) (created bool, err error) {
	if username == "" || password == "" {
		return false, nil
	}
	_, err = s.Create(ctx, username, password, RoleAdmin)
	if errors.Is(err, ErrUserExists) {
		return false, nil
	}
	return err == nil, err
}

func (s *UserStore) List(ctx context.Context, role string) ([]User, error) {
	query := `SELECT id, username, role, created_at FROM users`
	var args []any
	if role != "" {
		query += ` WHERE role=$1`
		args = append(args, role)
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY username`, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// NewAccount is one row of a bulk import.
type NewAccount struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Import creates every account that does not exist yet. Existing usernames
// are skipped, any other failure stops the import.
func (s *UserStore) Import(ctx context.Context, rows []NewAccount) (created []User, skipped []string, err error) {
	created = []User{}
	skipped = []string{}
	for _, row := range rows {
		u, err := s.Create(ctx, row.Username, row.Password, strings.ToLower(strings.TrimSpace(row.Role)))
		if errors.Is(err, ErrUserExists) {
			skipped = append(skipped, row.Username)
			continue
		}
		if err != nil {
			return created, skipped, fmt.Errorf("import %q: %w", row.Username, err)
		}
		created = append(created, u)
	}
	return created, skipped, nil
}
