package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/events"
)

type fakePublisher struct {
	queue string
	body  []byte
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, queueName string, body []byte) error {
	f.queue, f.body = queueName, body
	return f.err
}

type recorder struct {
	got []events.AttemptSubmitted
	err error
}

func (r *recorder) AttemptSubmitted(_ context.Context, e events.AttemptSubmitted) error {
	r.got = append(r.got, e)
	return r.err
}

func sample() events.AttemptSubmitted {
	return events.AttemptSubmitted{
		AttemptID: "att-1", AttemptNumber: 1, QuizID: "q1", CourseID: "c1", StudentID: "s1",
		Score: 67, EarnedPoints: 10, TotalPoints: 15, TimeSpent: 42,
	}
}

func TestEventRepo_AppendsAttemptSubmitted(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:TestEventRepo_AppendsAttemptSubmitted?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer dbh.Close()

	repo := events.NewEventRepo(dbh, "site-a")
	if err := repo.AttemptSubmitted(ctx, sample()); err != nil {
		t.Fatalf("append: %v", err)
	}
	second := sample()
	second.AttemptID = "att-2"
	if err := repo.AttemptSubmitted(ctx, second); err != nil {
		t.Fatalf("append: %v", err)
	}

	evs, err := repo.Since(ctx, 0, 10)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("got %d events; want 2", len(evs))
	}
	e := evs[0]
	if e.Type != events.TypeAttemptSubmitted || e.Key != "att-1" || e.SiteID != "site-a" {
		t.Fatalf("unexpected event: %+v", e)
	}
	var payload events.AttemptSubmitted
	if err := json.Unmarshal([]byte(e.DataJSON), &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.Score != 67 || payload.StudentID != "s1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	rest, err := repo.Since(ctx, evs[0].Seq, 10)
	if err != nil || len(rest) != 1 || rest[0].Key != "att-2" {
		t.Fatalf("since first = %+v, %v", rest, err)
	}
}

func TestQueueNotifier_PublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	n := events.NewQueueNotifier(pub, "")
	if err := n.AttemptSubmitted(context.Background(), sample()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if pub.queue != events.DefaultQueue {
		t.Fatalf("queue = %q; want %q", pub.queue, events.DefaultQueue)
	}
	var got map[string]any
	if err := json.Unmarshal(pub.body, &got); err != nil {
		t.Fatalf("body: %v", err)
	}
	if got["attemptId"] != "att-1" || got["score"] != float64(67) {
		t.Fatalf("unexpected body: %s", pub.body)
	}
}

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a, b := &recorder{err: boom}, &recorder{}
	err := events.Multi{a, nil, b}.AttemptSubmitted(context.Background(), sample())
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to wrap boom, got %v", err)
	}
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Fatalf("every notifier must be called: %d, %d", len(a.got), len(b.got))
	}

	if err := events.Logging(a).AttemptSubmitted(context.Background(), sample()); err != nil {
		t.Fatalf("logging notifier must swallow errors, got %v", err)
	}
}
