package attempt

import "errors"

var (
	ErrMissingFields   = errors.New("attemptId and answers are required")
	ErrNotEnrolled     = errors.New("not enrolled in this course")
	ErrMaxAttempts     = errors.New("maximum attempts reached")
	ErrAttemptNotFound = errors.New("attempt not found or already submitted")

	// ErrDuplicateInProgress is returned by Ledger.Create when the pair already
	// has an in-progress attempt or the attempt number is taken.
	ErrDuplicateInProgress = errors.New("attempt already in progress")
)
