// Package cache holds the TTL-gated snapshot caches that sit between the
// engine and its two data sources. Snapshots are replaced atomically and are
// treated as immutable once published, so any number of tasks can read the
// same snapshot concurrently.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/juju/clock"

	"github.com/launchtrack/missioncontrol/model"
)

// FetchFunc produces a fresh snapshot from the underlying source.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Source is a lazy TTL cache around a single fetch operation. Get refreshes
// the snapshot when it is older than the TTL; the refresh runs inside the
// cache mutex so concurrent callers wait for the in-flight fetch and reuse
// its result instead of issuing their own.
//
// A failed refresh keeps the previous snapshot and does not advance the
// fetch timestamp, so the next Get retries immediately rather than waiting
// out a full TTL.
type Source[T any] struct {
	name    string
	ttl     time.Duration
	fetch   FetchFunc[T]
	clock   clock.Clock
	onError func(error)

	mu        sync.Mutex
	snapshot  T
	populated bool
	lastFetch time.Time
}

// NewSource creates a cache named for logging and error reporting. onError
// is called with every refresh failure and may be nil.
func NewSource[T any](name string, ttl time.Duration, fetch FetchFunc[T], clk clock.Clock, onError func(error)) *Source[T] {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Source[T]{name: name, ttl: ttl, fetch: fetch, clock: clk, onError: onError}
}

// Get returns the current snapshot, refreshing it first if it is stale.
func (s *Source[T]) Get(ctx context.Context) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.populated && s.clock.Now().Sub(s.lastFetch) <= s.ttl {
		return s.snapshot, nil
	}

	fresh, err := s.fetch(ctx)
	if err != nil {
		if s.onError != nil {
			s.onError(err)
		}
		if s.populated {
			// degrade to the last good snapshot
			return s.snapshot, nil
		}
		var zero T
		return zero, &model.SnapshotUnavailableError{Source: s.name}
	}

	s.snapshot = fresh
	s.populated = true
	s.lastFetch = s.clock.Now()
	return s.snapshot, nil
}

// Peek returns the current snapshot without triggering a refresh. The second
// return value is false if no snapshot has ever been fetched.
func (s *Source[T]) Peek() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.populated
}

// LastFetch returns the time of the last successful refresh.
func (s *Source[T]) LastFetch() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFetch
}
