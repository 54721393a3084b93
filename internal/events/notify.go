package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"
)

// Publisher is satisfied by *messaging.RabbitMQClient.
type Publisher interface {
	Publish(ctx context.Context, queueName string, body []byte) error
}

const DefaultQueue = "quiz.attempt.submitted"

type QueueNotifier struct {
	pub   Publisher
	queue string
}

func NewQueueNotifier(pub Publisher, queue string) *QueueNotifier {
	if queue == "" {
		queue = DefaultQueue
	}
	return &QueueNotifier{pub: pub, queue: queue}
}

func (n *QueueNotifier) AttemptSubmitted(ctx context.Context, e AttemptSubmitted) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return n.pub.Publish(ctx, n.queue, body)
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) AttemptSubmitted(ctx context.Context, e AttemptSubmitted) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.AttemptSubmitted(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Logging wraps a notifier so that failures are logged and swallowed.
func Logging(next Notifier) Notifier {
	return loggingNotifier{next: next}
}

type loggingNotifier struct{ next Notifier }

func (l loggingNotifier) AttemptSubmitted(ctx context.Context, e AttemptSubmitted) error {
	if err := l.next.AttemptSubmitted(ctx, e); err != nil {
		log.Printf("events: attempt %s not delivered: %v", e.AttemptID, err)
	}
	return nil
}
