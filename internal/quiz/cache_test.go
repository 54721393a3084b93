package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/cache"
)

type fakeCache struct {
	items map[string][]byte
	gets  int
	hits  int
}

func newFakeCache() *fakeCache { return &fakeCache{items: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.gets++
	b, ok := c.items[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	c.hits++
	return b, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.items[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

type countingStore struct {
	Store
	gets int
}

func (s *countingStore) Get(ctx context.Context, id string) (Quiz, error) {
	s.gets++
	return s.Store.Get(ctx, id)
}

func TestCachedStore_ReadThroughAndEvict(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{Store: NewInMemoryStore()}
	fc := newFakeCache()
	st := NewCachedStore(backing, fc, time.Minute)

	saved, err := st.Put(ctx, validQuiz())
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	for i := 0; i < 3; i++ {
		got, err := st.Get(ctx, saved.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Title != saved.Title || !got.Questions[0].Options[0].IsCorrect {
			t.Fatalf("cached quiz differs: %+v", got)
		}
	}
	if backing.gets != 1 {
		t.Fatalf("backing store hit %d times; want 1", backing.gets)
	}
	if fc.hits != 2 {
		t.Fatalf("cache hits = %d; want 2", fc.hits)
	}

	saved.Title = "Renamed"
	if _, err := st.Put(ctx, saved); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := st.Get(ctx, saved.ID)
	if got.Title != "Renamed" {
		t.Fatalf("stale quiz served after update: %q", got.Title)
	}

	if err := st.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
