package cache

import (
	"context"
	"sync"
	"time"

	"github.com/juju/clock"

	"github.com/launchtrack/missioncontrol/model"
)

// Launches caches the external launch listing with two refresh tiers. The
// first page of the listing (soonest launches) is cheap and is polled on a
// short TTL; the full multi-page crawl is expensive and runs on a long TTL.
// The published snapshot is a map keyed by external id, rebuilt and swapped
// whole after either tier refreshes. On an id collision the first-page entry
// wins, because it is always at least as fresh as the crawl.
type Launches struct {
	fetchFirst FetchFunc[[]model.ExternalLaunch]
	fetchFull  FetchFunc[[]model.ExternalLaunch]
	firstTTL   time.Duration
	fullTTL    time.Duration
	clock      clock.Clock
	onError    func(error)

	mu       sync.Mutex
	first    []model.ExternalLaunch
	firstAt  time.Time
	hasFirst bool
	full     []model.ExternalLaunch
	fullAt   time.Time
	hasFull  bool
	merged   map[string]model.ExternalLaunch
}

func NewLaunches(fetchFirst, fetchFull FetchFunc[[]model.ExternalLaunch], firstTTL, fullTTL time.Duration, clk clock.Clock, onError func(error)) *Launches {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Launches{
		fetchFirst: fetchFirst,
		fetchFull:  fetchFull,
		firstTTL:   firstTTL,
		fullTTL:    fullTTL,
		clock:      clk,
		onError:    onError,
	}
}

// Get returns the merged launch snapshot keyed by external id, refreshing
// whichever tiers are stale first. A tier that fails to refresh keeps its
// previous records; the error is reported and the merge proceeds with what
// is available.
func (l *Launches) Get(ctx context.Context) (map[string]model.ExternalLaunch, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	changed := false

	if !l.hasFull || now.Sub(l.fullAt) > l.fullTTL {
		records, err := l.fetchFull(ctx)
		if err != nil {
			if l.onError != nil {
				l.onError(err)
			}
		} else {
			l.full = records
			l.fullAt = l.clock.Now()
			l.hasFull = true
			changed = true
		}
	}

	if !l.hasFirst || now.Sub(l.firstAt) > l.firstTTL {
		records, err := l.fetchFirst(ctx)
		if err != nil {
			if l.onError != nil {
				l.onError(err)
			}
		} else {
			l.first = records
			l.firstAt = l.clock.Now()
			l.hasFirst = true
			changed = true
		}
	}

	if !l.hasFirst && !l.hasFull {
		return nil, &model.SnapshotUnavailableError{Source: "launches"}
	}

	if changed || l.merged == nil {
		merged := make(map[string]model.ExternalLaunch, len(l.full)+len(l.first))
		for _, r := range l.full {
			merged[r.ID] = r
		}
		for _, r := range l.first {
			merged[r.ID] = r
		}
		l.merged = merged
	}

	return l.merged, nil
}

// Peek returns the current merged snapshot without refreshing either tier.
func (l *Launches) Peek() (map[string]model.ExternalLaunch, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.merged, l.merged != nil
}
