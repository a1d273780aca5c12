package registry

import "sync"

// MemoryRegistry is the in-memory registry used when no Redis instance is
// available. A single mutex guards all sets; membership checks and adds are
// cheap enough that finer locking isn't worth it.
type MemoryRegistry struct {
	mu   sync.Mutex
	sets map[string]map[string]bool
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sets: make(map[string]map[string]bool)}
}

func (r *MemoryRegistry) Has(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sets[key.Cache][key.Member]
}

func (r *MemoryRegistry) Add(key Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sets[key.Cache] == nil {
		r.sets[key.Cache] = make(map[string]bool)
	}
	r.sets[key.Cache][key.Member] = true
	return nil
}

func (r *MemoryRegistry) Clear(cache string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sets, cache)
	return nil
}

func (r *MemoryRegistry) ClearAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = make(map[string]map[string]bool)
	return nil
}

func (r *MemoryRegistry) Ping() error {
	return nil
}
