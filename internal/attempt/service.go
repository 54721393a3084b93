package attempt

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/enrollment"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

// Service runs the start → submit lifecycle of quiz attempts.
type Service struct {
	quizzes     quiz.Store
	ledger      Ledger
	enrollments enrollment.Checker
	grader      grading.Grader
	now         func() time.Time
	newID       func() string
	newRand     func() *rand.Rand
}

type Option func(*Service)

func WithClock(now func() time.Time) Option     { return func(s *Service) { s.now = now } }
func WithIDs(newID func() string) Option        { return func(s *Service) { s.newID = newID } }
func WithGrader(g grading.Grader) Option        { return func(s *Service) { s.grader = g } }
func WithRand(newRand func() *rand.Rand) Option { return func(s *Service) { s.newRand = newRand } }

func NewService(quizzes quiz.Store, ledger Ledger, enrollments enrollment.Checker, opts ...Option) *Service {
	s := &Service{
		quizzes:     quizzes,
		ledger:      ledger,
		enrollments: enrollments,
		grader:      grading.NewDefaultGrader(),
		now:         time.Now,
		newID:       uuid.NewString,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type StartResult struct {
	Attempt Attempt   `json:"attempt"`
	Quiz    quiz.View `json:"quiz"`
	Resumed bool      `json:"resumed"` // an in-progress attempt already existed
}

// Start opens an attempt for the caller. If the caller already has an
// in-progress attempt on this quiz it is returned instead of a new one.
func (s *Service) Start(ctx context.Context, who Identity, quizID string) (StartResult, error) {
	if quizID == "" {
		return StartResult{}, quiz.ErrNotFound
	}
	q, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return StartResult{}, err
	}
	if err := s.checkEnrolled(ctx, who, q); err != nil {
		return StartResult{}, err
	}

	// A lost race on Create means another start for the pair landed first.
	// That attempt is either still open (resume it) or already submitted, in
	// which case the count is re-read once.
	for try := 0; ; try++ {
		if existing, ok, err := s.ledger.FindInProgress(ctx, who.UserID, q.ID); err != nil {
			return StartResult{}, err
		} else if ok {
			return s.startResult(q, existing, true), nil
		}

		n, err := s.ledger.Count(ctx, who.UserID, q.ID)
		if err != nil {
			return StartResult{}, err
		}
		if n >= maxAttempts(q) {
			return StartResult{}, ErrMaxAttempts
		}

		a := Attempt{
			ID:            s.newID(),
			StudentID:     who.UserID,
			QuizID:        q.ID,
			CourseID:      q.CourseID,
			AttemptNumber: n + 1,
			Status:        StatusInProgress,
			Answers:       []Answer{},
			StartedAt:     s.now().UTC(),
		}
		err = s.ledger.Create(ctx, a)
		if err == nil {
			return s.startResult(q, a, false), nil
		}
		if !errors.Is(err, ErrDuplicateInProgress) || try > 0 {
			return StartResult{}, err
		}
	}
}

func (s *Service) startResult(q quiz.Quiz, a Attempt, resumed bool) StartResult {
	var rng *rand.Rand
	if q.ShuffleQuestions || q.ShuffleOptions {
		rng = s.newRand()
	}
	return StartResult{Attempt: a, Quiz: quiz.StudentView(q, rng), Resumed: resumed}
}

func (s *Service) checkEnrolled(ctx context.Context, who Identity, q quiz.Quiz) error {
	if who.UserID == "" {
		return ErrNotEnrolled
	}
	ok, err := s.enrollments.IsActive(ctx, who.UserID, q.CourseID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotEnrolled
	}
	return nil
}

func maxAttempts(q quiz.Quiz) int {
	if q.MaxAttempts < 1 {
		return 1
	}
	return q.MaxAttempts
}

// SubmitInput is a learner's submission. Answers must be non-nil; an empty
// slice is a valid, all-blank submission.
type SubmitInput struct {
	AttemptID string
	Answers   []grading.Response
}

type QuestionResult struct {
	QuestionID      string  `json:"questionId"`
	QuestionText    string  `json:"questionText"`
	SelectedOptions []int   `json:"selectedOptions"`
	CorrectOptions  []int   `json:"correctOptions"`
	IsCorrect       bool    `json:"isCorrect"`
	PointsEarned    float64 `json:"pointsEarned"`
	Points          float64 `json:"points"`
	Explanation     string  `json:"explanation,omitempty"`
}

type Result struct {
	AttemptID       string           `json:"attemptId"`
	AttemptNumber   int              `json:"attemptNumber"`
	QuizID          string           `json:"quizId"`
	CourseID        string           `json:"courseId"`
	Score           int              `json:"score"`
	EarnedPoints    float64          `json:"earnedPoints"`
	TotalPoints     float64          `json:"totalPoints"`
	Passed          bool             `json:"passed"`
	TimeSpent       int64            `json:"timeSpent"`
	SubmittedAt     time.Time        `json:"submittedAt"`
	DetailedResults []QuestionResult `json:"detailedResults,omitempty"`
}

// Submit scores and finalizes an in-progress attempt. It is terminal: a
// second submit of the same attempt fails with ErrAttemptNotFound and leaves
// the stored score untouched. The quiz time limit is not enforced here.
func (s *Service) Submit(ctx context.Context, who Identity, quizID string, in SubmitInput) (Result, error) {
	if in.AttemptID == "" || in.Answers == nil {
		return Result{}, ErrMissingFields
	}
	a, err := s.ledger.Get(ctx, in.AttemptID)
	if err != nil {
		return Result{}, err
	}
	if a.StudentID != who.UserID || a.QuizID != quizID || a.Status != StatusInProgress {
		return Result{}, ErrAttemptNotFound
	}
	q, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return Result{}, err
	}

	out := grading.ScoreResponses(s.grader, q, in.Answers)
	now := s.now().UTC()

	a.Answers = make([]Answer, 0, len(out.Items))
	for _, it := range out.Items {
		a.Answers = append(a.Answers, Answer{
			QuestionID:      it.QuestionID,
			QuestionText:    it.QuestionText,
			SelectedOptions: it.SelectedOptions,
			IsCorrect:       it.IsCorrect,
			PointsEarned:    it.PointsEarned,
		})
	}
	a.TotalPoints = out.TotalPoints
	a.EarnedPoints = out.EarnedPoints
	a.Score = out.Score
	a.Passed = out.Score >= q.PassingScore
	a.SubmittedAt = &now
	a.TimeSpent = int64(now.Sub(a.StartedAt) / time.Second)
	if a.TimeSpent < 0 {
		a.TimeSpent = 0
	}
	a.Status = StatusSubmitted

	if err := s.ledger.Finalize(ctx, a); err != nil {
		return Result{}, err
	}

	res := Result{
		AttemptID:     a.ID,
		AttemptNumber: a.AttemptNumber,
		QuizID:        a.QuizID,
		CourseID:      a.CourseID,
		Score:         a.Score,
		EarnedPoints:  a.EarnedPoints,
		TotalPoints:   a.TotalPoints,
		Passed:        a.Passed,
		TimeSpent:     a.TimeSpent,
		SubmittedAt:   now,
	}
	if q.ShowFeedback {
		res.DetailedResults = make([]QuestionResult, 0, len(out.Items))
		for _, it := range out.Items {
			res.DetailedResults = append(res.DetailedResults, QuestionResult{
				QuestionID:      it.QuestionID,
				QuestionText:    it.QuestionText,
				SelectedOptions: it.SelectedOptions,
				CorrectOptions:  it.CorrectOptions,
				IsCorrect:       it.IsCorrect,
				PointsEarned:    it.PointsEarned,
				Points:          it.Points,
				Explanation:     it.Explanation,
			})
		}
	}
	return res, nil
}

type History struct {
	QuizID       string    `json:"quizId"`
	Attempts     []Attempt `json:"attempts"`
	BestScore    int       `json:"bestScore"`
	Passed       bool      `json:"passed"`
	AttemptsUsed int       `json:"attemptsUsed"`
	MaxAttempts  int       `json:"maxAttempts"`
}

// History lists the caller's submitted attempts on a quiz. Per-question
// answers are included only when the quiz shows feedback.
func (s *Service) History(ctx context.Context, who Identity, quizID string) (History, error) {
	q, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return History{}, err
	}
	list, err := s.ledger.ListSubmitted(ctx, who.UserID, q.ID)
	if err != nil {
		return History{}, err
	}
	used, err := s.ledger.Count(ctx, who.UserID, q.ID)
	if err != nil {
		return History{}, err
	}
	h := History{QuizID: q.ID, Attempts: list, AttemptsUsed: used, MaxAttempts: maxAttempts(q)}
	for i := range h.Attempts {
		if h.Attempts[i].Score > h.BestScore {
			h.BestScore = h.Attempts[i].Score
		}
		if h.Attempts[i].Passed {
			h.Passed = true
		}
		if !q.ShowFeedback {
			h.Attempts[i].Answers = nil
		}
	}
	return h, nil
}

// ListAttempts is the trainer view over every attempt of a quiz.
func (s *Service) ListAttempts(ctx context.Context, quizID string, opts ListOpts) ([]Attempt, error) {
	if _, err := s.quizzes.Get(ctx, quizID); err != nil {
		return nil, err
	}
	opts.QuizID = quizID
	return s.ledger.List(ctx, opts)
}

// RemoveQuiz deletes a quiz that no attempt references.
func (s *Service) RemoveQuiz(ctx context.Context, quizID string) error {
	n, err := s.ledger.CountByQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d attempts", quiz.ErrInUse, n)
	}
	return s.quizzes.Delete(ctx, quizID)
}
