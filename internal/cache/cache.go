// Package cache implements the client-side query cache as an explicit,
// injectable keyed store. One Store exists per authenticated session; it is
// never a source of truth. Every write happens after the corresponding
// storage operation succeeded, and patches are last-writer-wins per entry.
package cache

import "sync"

// Store is a mutex-guarded keyed mapping of cache entries.
type Store struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewStore creates an empty cache store.
func NewStore() *Store {
	return &Store{entries: make(map[string]any)}
}

// Get returns the entry for key and whether it is present.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// Set stores an entry under key, replacing any previous value.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

// Delete removes the entry for key, if present.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]any)
}

// Registry hands out one Store per user session.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// ForUser returns the store for userID, creating it on first use.
func (r *Registry) ForUser(userID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[userID]
	if !ok {
		store = NewStore()
		r.stores[userID] = store
	}
	return store
}

// Drop removes a user's store, ending their cached session state.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, userID)
}
