package quiz

import "context"

type ListOpts struct {
	CourseID  string
	CreatedBy string
	Limit     int
	Offset    int
}

// Store persists quizzes. Put validates before writing and rejects invalid
// quizzes with *ValidationError. Get returns the full answer key.
type Store interface {
	Put(ctx context.Context, q Quiz) (Quiz, error)
	Get(ctx context.Context, id string) (Quiz, error)
	List(ctx context.Context, opts ListOpts) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}
