package attempt

import (
	"context"
	"sort"
	"sync"
)

type memoryLedger struct {
	mu       sync.RWMutex
	attempts map[string]Attempt
}

func NewInMemoryLedger() Ledger {
	return &memoryLedger{attempts: map[string]Attempt{}}
}

func (m *memoryLedger) Count(_ context.Context, studentID, quizID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.attempts {
		if a.StudentID == studentID && a.QuizID == quizID {
			n++
		}
	}
	return n, nil
}

func (m *memoryLedger) CountByQuiz(_ context.Context, quizID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.attempts {
		if a.QuizID == quizID {
			n++
		}
	}
	return n, nil
}

func (m *memoryLedger) FindInProgress(_ context.Context, studentID, quizID string) (Attempt, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.attempts {
		if a.StudentID == studentID && a.QuizID == quizID && a.Status == StatusInProgress {
			return copyAttempt(a), true, nil
		}
	}
	return Attempt{}, false, nil
}

func (m *memoryLedger) Create(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.attempts {
		if x.StudentID != a.StudentID || x.QuizID != a.QuizID {
			continue
		}
		if x.Status == StatusInProgress || x.AttemptNumber == a.AttemptNumber {
			return ErrDuplicateInProgress
		}
	}
	if _, ok := m.attempts[a.ID]; ok {
		return ErrDuplicateInProgress
	}
	m.attempts[a.ID] = copyAttempt(a)
	return nil
}

func (m *memoryLedger) Finalize(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.attempts[a.ID]
	if !ok || cur.StudentID != a.StudentID || cur.QuizID != a.QuizID || cur.Status != StatusInProgress {
		return ErrAttemptNotFound
	}
	a.Status = StatusSubmitted
	m.attempts[a.ID] = copyAttempt(a)
	return nil
}

func (m *memoryLedger) Get(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return copyAttempt(a), nil
}

func (m *memoryLedger) ListSubmitted(ctx context.Context, studentID, quizID string) ([]Attempt, error) {
	return m.List(ctx, ListOpts{StudentID: studentID, QuizID: quizID, Status: StatusSubmitted})
}

func (m *memoryLedger) List(_ context.Context, opts ListOpts) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Attempt{}
	for _, a := range m.attempts {
		if opts.QuizID != "" && a.QuizID != opts.QuizID {
			continue
		}
		if opts.StudentID != "" && a.StudentID != opts.StudentID {
			continue
		}
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		out = append(out, copyAttempt(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StudentID != out[j].StudentID {
			return out[i].StudentID < out[j].StudentID
		}
		return out[i].AttemptNumber < out[j].AttemptNumber
	})
	if opts.Offset >= len(out) {
		return []Attempt{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func copyAttempt(a Attempt) Attempt {
	ans := make([]Answer, len(a.Answers))
	for i, x := range a.Answers {
		x.SelectedOptions = append([]int{}, x.SelectedOptions...)
		ans[i] = x
	}
	a.Answers = ans
	if a.SubmittedAt != nil {
		t := *a.SubmittedAt
		a.SubmittedAt = &t
	}
	return a
}
