package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/cache"
)

// Cache is the subset of a key/value cache the quiz store needs.
// Get must return cache.ErrMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedStore is a read-through cache in front of another Store. Answer keys
// are read on every start and submit, and change only when a trainer edits the quiz.
type CachedStore struct {
	next  Store
	cache Cache
	ttl   time.Duration
}

func NewCachedStore(next Store, c Cache, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedStore{next: next, cache: c, ttl: ttl}
}

func cacheKey(id string) string { return "quiz:" + id }

func (s *CachedStore) Get(ctx context.Context, id string) (Quiz, error) {
	b, err := s.cache.Get(ctx, cacheKey(id))
	if err == nil {
		var q Quiz
		if err := json.Unmarshal(b, &q); err == nil {
			return q, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Printf("quiz cache get %s: %v", id, err)
	}

	q, err := s.next.Get(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	if b, err := json.Marshal(q); err == nil {
		if err := s.cache.Set(ctx, cacheKey(id), b, s.ttl); err != nil {
			log.Printf("quiz cache set %s: %v", id, err)
		}
	}
	return q, nil
}

func (s *CachedStore) Put(ctx context.Context, q Quiz) (Quiz, error) {
	saved, err := s.next.Put(ctx, q)
	if err != nil {
		return Quiz{}, err
	}
	s.evict(ctx, saved.ID)
	return saved, nil
}

func (s *CachedStore) List(ctx context.Context, opts ListOpts) ([]Summary, error) {
	return s.next.List(ctx, opts)
}

func (s *CachedStore) Delete(ctx context.Context, id string) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id)
	return nil
}

func (s *CachedStore) evict(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		log.Printf("quiz cache evict %s: %v", id, err)
	}
}
