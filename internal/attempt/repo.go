package attempt

import "context"

type ListOpts struct {
	QuizID    string
	StudentID string
	Status    string // optional: in_progress|submitted
	Limit     int
	Offset    int
}

// Ledger persists attempts. Implementations must make Create and Finalize
// atomic with respect to their preconditions.
type Ledger interface {
	// Count returns the number of attempts of any status for the pair.
	Count(ctx context.Context, studentID, quizID string) (int, error)
	CountByQuiz(ctx context.Context, quizID string) (int, error)
	FindInProgress(ctx context.Context, studentID, quizID string) (Attempt, bool, error)

	// Create inserts a new in-progress attempt, failing with
	// ErrDuplicateInProgress if the pair already has one or the attempt
	// number is already used.
	Create(ctx context.Context, a Attempt) error

	// Finalize writes the scored attempt only if the stored row is still
	// in progress and owned by a.StudentID for a.QuizID; otherwise it
	// returns ErrAttemptNotFound and changes nothing.
	Finalize(ctx context.Context, a Attempt) error

	Get(ctx context.Context, id string) (Attempt, error)
	// ListSubmitted returns submitted attempts ordered by attempt number.
	ListSubmitted(ctx context.Context, studentID, quizID string) ([]Attempt, error)
	List(ctx context.Context, opts ListOpts) ([]Attempt, error)
}
