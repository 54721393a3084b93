package quiz

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu      sync.RWMutex
	quizzes map[string]Quiz
	now     func() time.Time
}

func NewInMemoryStore() Store {
	return &memoryStore{
		quizzes: map[string]Quiz{},
		now:     time.Now,
	}
}

func (m *memoryStore) Put(_ context.Context, q Quiz) (Quiz, error) {
	if err := Validate(q); err != nil {
		return Quiz{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var created time.Time
	if prev, ok := m.quizzes[q.ID]; ok && q.ID != "" {
		created = prev.CreatedAt
	}
	q = prepare(q, created, m.now().UTC())
	m.quizzes[q.ID] = clone(q)
	return clone(q), nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	return clone(q), nil
}

func (m *memoryStore) List(_ context.Context, opts ListOpts) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.quizzes))
	for _, q := range m.quizzes {
		if opts.CourseID != "" && q.CourseID != opts.CourseID {
			continue
		}
		if opts.CreatedBy != "" && q.CreatedBy != opts.CreatedBy {
			continue
		}
		out = append(out, q.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return ErrNotFound
	}
	delete(m.quizzes, id)
	return nil
}

// prepare assigns missing identifiers and stamps the quiz. A zero created
// time means the quiz is new.
func prepare(q Quiz, created, now time.Time) Quiz {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if created.IsZero() {
		created = now
	}
	q.CreatedAt = created
	q.UpdatedAt = now
	for i := range q.Questions {
		if q.Questions[i].ID == "" {
			q.Questions[i].ID = uuid.NewString()
		}
	}
	return q
}

func clone(q Quiz) Quiz {
	qs := make([]Question, len(q.Questions))
	for i, qq := range q.Questions {
		qq.Options = append([]Option(nil), qq.Options...)
		qs[i] = qq
	}
	q.Questions = qs
	return q
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
