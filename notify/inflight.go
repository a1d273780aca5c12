package notify

import (
	"sync"

	"github.com/launchtrack/missioncontrol/registry"
)

// inFlight tracks which (mission, tag) dispatches are currently being sent.
// Contested acquisitions fail rather than block, so an overlapping tick
// simply skips the pair.
type inFlight struct {
	mu     sync.Mutex
	active map[registry.Key]bool
}

func newInFlight() *inFlight {
	return &inFlight{active: make(map[registry.Key]bool)}
}

func (f *inFlight) tryAcquire(key registry.Key) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active[key] {
		return false
	}
	f.active[key] = true
	return true
}

func (f *inFlight) release(key registry.Key) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.active, key)
}
