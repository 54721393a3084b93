package attempt_test

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/enrollment"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	svc     *attempt.Service
	ledger  attempt.Ledger
	quizzes quiz.Store
	roster  enrollment.Roster
	clock   *fakeClock
	quiz    quiz.Quiz
	student attempt.Identity
}

func twoQuestionQuiz() quiz.Quiz {
	return quiz.Quiz{
		CourseID:     "course-1",
		Title:        "Fundamentals",
		PassingScore: 70,
		MaxAttempts:  2,
		TimeLimit:    1,
		ShowFeedback: true,
		Questions: []quiz.Question{
			{
				ID: "q1", Text: "Pick A", Type: quiz.TypeSingle, Points: 10, Explanation: "A is right",
				Options: []quiz.Option{{Text: "A", IsCorrect: true}, {Text: "B"}, {Text: "C"}},
			},
			{
				ID: "q2", Text: "Pick A and B", Type: quiz.TypeMultiple, Points: 5,
				Options: []quiz.Option{{Text: "A", IsCorrect: true}, {Text: "B", IsCorrect: true}, {Text: "C"}},
			},
		},
	}
}

func newFixture(t *testing.T, ledger attempt.Ledger, mutate func(*quiz.Quiz)) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		ledger:  ledger,
		quizzes: quiz.NewInMemoryStore(),
		roster:  enrollment.NewInMemoryRoster(),
		clock:   &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		student: attempt.Identity{UserID: "stu-1"},
	}
	q := twoQuestionQuiz()
	if mutate != nil {
		mutate(&q)
	}
	saved, err := f.quizzes.Put(ctx, q)
	if err != nil {
		t.Fatalf("put quiz: %v", err)
	}
	f.quiz = saved
	if err := f.roster.Enroll(ctx, saved.CourseID, []string{f.student.UserID}, enrollment.StatusActive); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	var seq atomic.Int64
	f.svc = attempt.NewService(f.quizzes, f.ledger, f.roster,
		attempt.WithClock(f.clock.Now),
		attempt.WithIDs(func() string { return "att-" + strconv.FormatInt(seq.Add(1), 10) }),
	)
	return f
}

func oneRightOneWrong() []grading.Response {
	return []grading.Response{
		{QuestionID: "q1", SelectedOptions: []int{0}},
		{QuestionID: "q2", SelectedOptions: []int{0}},
	}
}

func TestStart_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, attempt.NewInMemoryLedger(), nil)

	first, err := f.svc.Start(ctx, f.student, f.quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if first.Resumed || first.Attempt.AttemptNumber != 1 || first.Attempt.Status != attempt.StatusInProgress {
		t.Fatalf("unexpected first attempt: %+v", first.Attempt)
	}
	second, err := f.svc.Start(ctx, f.student, f.quiz.ID)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if second.Attempt.ID != first.Attempt.ID || !second.Resumed {
		t.Fatalf("expected the same attempt back, got %s vs %s", second.Attempt.ID, first.Attempt.ID)
	}
	if n, _ := f.ledger.Count(ctx, f.student.UserID, f.quiz.ID); n != 1 {
		t.Fatalf("ledger holds %d attempts; want 1", n)
	}
}

func TestStart_RequiresActiveEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, attempt.NewInMemoryLedger(), nil)

	outsider := attempt.Identity{UserID: "stu-2"}
	if _, err := f.svc.Start(ctx, outsider, f.quiz.ID); !errors.Is(err, attempt.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
	_ = f.roster.Enroll(ctx, f.quiz.CourseID, []string{f.student.UserID}, enrollment.StatusDropped)
	if _, err := f.svc.Start(ctx, f.student, f.quiz.ID); !errors.Is(err, attempt.ErrNotEnrolled) {
		t.Fatalf("dropped student: expected ErrNotEnrolled, got %v", err)
	}
	if _, err := f.svc.Start(ctx, attempt.Identity{}, f.quiz.ID); !errors.Is(err, attempt.ErrNotEnrolled) {
		t.Fatalf("anonymous: expected ErrNotEnrolled, got %v", err)
	}
}

func TestStart_UnknownQuiz(t *testing.T) {
	f := newFixture(t, attempt.NewInMemoryLedger(), nil)
	if _, err := f.svc.Start(context.Background(), f.student, "nope"); !errors.Is(err, quiz.ErrNotFound) {
		t.Fatalf("expected quiz.ErrNotFound, got %v", err)
	}
}

func TestStart_AttemptCap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, attempt.NewInMemoryLedger(), nil)

	for i := 1; i <= f.quiz.MaxAttempts; i++ {
		st, err := f.svc.Start(ctx, f.student, f.quiz.ID)
		if err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
		if st.Attempt.AttemptNumber != i {
			t.Fatalf("attempt number = %d; want %d", st.Attempt.AttemptNumber, i)
		}
		if _, err := f.svc.Submit(ctx, f.student, f.quiz.ID, attempt.SubmitInput{
			AttemptID: st.Attempt.ID, Answers: oneRightOneWrong(),
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if _, err := f.svc.Start(ctx, f.student, f.quiz.ID); !errors.Is(err, attempt.ErrMaxAttempts) {
		t.Fatalf("expected ErrMaxAttempts, got %v", err)
	}
}

func TestSubmit_ScoresAndFinalizes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, attempt.NewInMemoryLedger(), nil)

	st, err := f.svc.Start(ctx, f.student, f.quiz.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// past the advisory one-minute limit: still scored
	f.clock.Advance(90 * time.Second)

	res, err := f.svc.Submit(ctx, f.student, f.quiz.ID, attempt.SubmitInput{
		AttemptID: st.Attempt.ID, Answers: oneRightOneWrong(),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.EarnedPoints != 10 || res.TotalPoints != 15 || res.Score != 67 {
		t.Fatalf("earned/total/score = %v/%v/%d; want 10/15/67", res.EarnedPoints, res.TotalPoints, res.Score)
	}
	if res.Passed {
		t.Fatalf("67 must not pass a 70 passing score")
	}
	if res.TimeSpent != 90 || res.AttemptNumber != 1 || res.AttemptID != st.Attempt.ID {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.DetailedResults) != 2 || res.DetailedResults[0].Explanation != "A is right" {
		t.Fatalf("expected detailed results with explanations: %+v", res.DetailedResults)
	}

	stored, err := f.ledger.Get(ctx, st.Attempt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != attempt.StatusSubmitted || stored.SubmittedAt == nil || stored.Score != 67 {
		t.Fatalf("stored attempt not finalized: %+v", stored)
	}
	if len(stored.Answers) != 2 || !stored.Answers[0].IsCorrect || stored.Answers[1].IsCorrect {
		t.Fatalf("stored answers wrong: %+v", stored.Answers)
	}
}

func TestSubmit_PassingScoreBoundary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, attempt.NewInMemoryLedger(), func(q *quiz.Quiz) { q.PassingScore = 67 })
	st, _ := f.svc.Start(ctx, f.student, f.quiz.ID)
	res, err := f.svc.Submit(ctx, f.student, f.quiz.ID, attempt.SubmitInput{AttemptID: st.Attempt.ID, Answers: oneRightOneWrong()})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Passed {
		t.Fatalf("score 67 should pass passing score 67")
	}
}

func TestSubmit_FeedbackHidden(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, attempt.NewInMemoryLedger(), func(q *quiz.Quiz) { q.ShowFeedback = false })
	st, _ := f.svc.Start(ctx, f.student, f.quiz.ID)
	res, err := f.svc.Submit(ctx, f.student, f.quiz.ID, attempt.SubmitInput{AttemptID: st.Attempt.ID, Answers: oneRightOneWrong()})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.DetailedResults != nil {
		t.Fatalf("detailed results must be omitted when feedback is off")
	}
	h, err := f.svc.History(ctx, f.student, f.quiz.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(h.Attempts) != 1 || h.Attempts[0].Answers != nil {
		t.Fatalf("history must not expose answers when feedback is off: %+v", h.Attempts)
	}
}

func TestSubmit_TerminalState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, attempt.NewInMemoryLedger(), nil)
	st, _ := f.svc.Start(ctx, f.student, f.quiz.ID)

	in := attempt.SubmitInput{AttemptID: st.Attempt.ID, Answers: oneRightOneWrong()}
	if _, err := f.svc.Submit(ctx, f.student, f.quiz.ID, in); err != nil {
		t.Fatalf("submit: %v", err)
	}
	perfect := attempt.SubmitInput{AttemptID: st.Attempt.ID, Answers: []grading.Response{
		{QuestionID: "q1", SelectedOptions: []int{0}},
		{QuestionID: "q2", SelectedOptions: []int{0, 1}},
	}}
	if _, err := f.svc.Submit(ctx, f.student, f.quiz.ID, perfect); !errors.Is(err, attempt.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound on resubmit, got %v", err)
	}
	stored, _ := f.ledger.Get(ctx, st.Attempt.ID)
	if stored.Score != 67 {
		t.Fatalf("stored score changed to %d", stored.Score)
	}
}

func TestSubmit_Preconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, attempt.NewInMemoryLedger(), nil)
	st, _ := f.svc.Start(ctx, f.student, f.quiz.ID)

	other := quiz.Quiz{
		CourseID: f.quiz.CourseID, Title: "Other", PassingScore: 50, MaxAttempts: 1,
	}
	otherSaved, _ := f.quizzes.Put(ctx, other)

	tests := []struct {
		name   string
		who    attempt.Identity
		quizID string
		in     attempt.SubmitInput
		want   error
	}{
		{"missing attempt id", f.student, f.quiz.ID, attempt.SubmitInput{Answers: oneRightOneWrong()}, attempt.ErrMissingFields},
		{"missing answers", f.student, f.quiz.ID, attempt.SubmitInput{AttemptID: st.Attempt.ID}, attempt.ErrMissingFields},
		{"unknown attempt", f.student, f.quiz.ID, attempt.SubmitInput{AttemptID: "nope", Answers: oneRightOneWrong()}, attempt.ErrAttemptNotFound},
		{"someone else's attempt", attempt.Identity{UserID: "stu-9"}, f.quiz.ID, attempt.SubmitInput{AttemptID: st.Attempt.ID, Answers: oneRightOneWrong()}, attempt.ErrAttemptNotFound},
		{"attempt of another quiz", f.student, otherSaved.ID, attempt.SubmitInput{AttemptID: st.Attempt.ID, Answers: oneRightOneWrong()}, attempt.ErrAttemptNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Submit(ctx, tc.who, tc.quizID, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("got %v; want %v", err, tc.want)
			}
		})
	}
	// none of the rejected calls touched the attempt
	stored, _ := f.ledger.Get(ctx, st.Attempt.ID)
	if stored.Status != attempt.StatusInProgress {
		t.Fatalf("attempt status changed to %s", stored.Status)
	}
}

func TestSubmit_EmptyAnswersAllowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, attempt.NewInMemoryLedger(), nil)
	st, _ := f.svc.Start(ctx, f.student, f.quiz.ID)
	res, err := f.svc.Submit(ctx, f.student, f.quiz.ID, attempt.SubmitInput{AttemptID: st.Attempt.ID, Answers: []grading.Response{}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.TotalPoints != 0 || res.Score != 0 || res.Passed {
		t.Fatalf("unexpected result for blank submission: %+v", res)
	}
}

func TestSubmit_UnknownQuestionDropped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, attempt.NewInMemoryLedger(), nil)
	st, _ := f.svc.Start(ctx, f.student, f.quiz.ID)
	res, err := f.svc.Submit(ctx, f.student, f.quiz.ID, attempt.SubmitInput{
		AttemptID: st.Attempt.ID,
		Answers: []grading.Response{
			{QuestionID: "q1", SelectedOptions: []int{0}},
			{QuestionID: "deleted-question", SelectedOptions: []int{1}},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.EarnedPoints != 10 || res.TotalPoints != 10 || res.Score != 100 {
		t.Fatalf("unknown question should not count: %+v", res)
	}
}

func TestHistory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, attempt.NewInMemoryLedger(), nil)
	st, _ := f.svc.Start(ctx, f.student, f.quiz.ID)
	res, err := f.svc.Submit(ctx, f.student, f.quiz.ID, attempt.SubmitInput{AttemptID: st.Attempt.ID, Answers: oneRightOneWrong()})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	h, err := f.svc.History(ctx, f.student, f.quiz.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(h.Attempts) != 1 {
		t.Fatalf("history has %d entries; want 1", len(h.Attempts))
	}
	got := h.Attempts[0]
	if got.Score != res.Score || got.Passed != res.Passed || got.AttemptNumber != res.AttemptNumber {
		t.Fatalf("history entry %+v does not match result %+v", got, res)
	}
	if h.BestScore != 67 || h.AttemptsUsed != 1 || h.MaxAttempts != 2 {
		t.Fatalf("unexpected history summary: %+v", h)
	}

	// an in-progress attempt is counted as used but not listed
	if _, err := f.svc.Start(ctx, f.student, f.quiz.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	h, _ = f.svc.History(ctx, f.student, f.quiz.ID)
	if len(h.Attempts) != 1 || h.AttemptsUsed != 2 {
		t.Fatalf("unexpected history after second start: %+v", h)
	}
}

func TestRemoveQuiz_RefusesWhileAttemptsExist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, attempt.NewInMemoryLedger(), nil)
	if _, err := f.svc.Start(ctx, f.student, f.quiz.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.svc.RemoveQuiz(ctx, f.quiz.ID); !errors.Is(err, quiz.ErrInUse) {
		t.Fatalf("expected quiz.ErrInUse, got %v", err)
	}

	unused, _ := f.quizzes.Put(ctx, quiz.Quiz{CourseID: "course-1", Title: "Empty", PassingScore: 0, MaxAttempts: 1})
	if err := f.svc.RemoveQuiz(ctx, unused.ID); err != nil {
		t.Fatalf("remove unused quiz: %v", err)
	}
}
