package attempt

import "time"

const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
)

// Answer is one recorded response. IsCorrect and PointsEarned are written
// once, when the attempt is submitted.
type Answer struct {
	QuestionID      string  `json:"questionId"`
	QuestionText    string  `json:"questionText"`
	SelectedOptions []int   `json:"selectedOptions"`
	IsCorrect       bool    `json:"isCorrect"`
	PointsEarned    float64 `json:"pointsEarned"`
}

type Attempt struct {
	ID            string     `json:"id"`
	StudentID     string     `json:"studentId"`
	QuizID        string     `json:"quizId"`
	CourseID      string     `json:"courseId"`
	AttemptNumber int        `json:"attemptNumber"`
	Status        string     `json:"status"` // in_progress|submitted
	Answers       []Answer   `json:"answers"`
	TotalPoints   float64    `json:"totalPoints"`
	EarnedPoints  float64    `json:"earnedPoints"`
	Score         int        `json:"score"` // percent
	Passed        bool       `json:"passed"`
	StartedAt     time.Time  `json:"startedAt"`
	SubmittedAt   *time.Time `json:"submittedAt,omitempty"`
	TimeSpent     int64      `json:"timeSpent"` // seconds
}

// Identity is the student on whose behalf an operation runs. Role checks
// happen before the service is reached.
type Identity struct {
	UserID string
}
