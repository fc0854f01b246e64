// Package window stores fixed-window request counters.
package window

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	count   int64
	resetAt time.Time
}

// InMemoryStore keeps per-key fixed windows in process memory. It backs local
// development and stands in for Redis while the breaker is open.
type InMemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	now      func() time.Time
}

func New() *InMemoryStore {
	return &InMemoryStore{
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

// Increment counts one request in the key's current window and returns the
// count so far and when the window resets.
func (s *InMemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := s.counters[key]
	if c == nil || !now.Before(c.resetAt) {
		c = &counter{resetAt: now.Add(window)}
		s.counters[key] = c
	}
	c.count++
	return c.count, c.resetAt, nil
}

// Sweep drops expired windows.
func (s *InMemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, c := range s.counters {
		if !now.Before(c.resetAt) {
			delete(s.counters, key)
			removed++
		}
	}
	return removed
}
