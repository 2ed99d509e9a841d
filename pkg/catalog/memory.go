package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process catalog for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry // keyed by ServiceURL
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]Entry{}}
}

func (s *MemoryStore) Upsert(_ context.Context, e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[e.ServiceURL]; ok {
		e.ID = existing.ID
		e.FirstSeen = existing.FirstSeen
		if e.Name == "" {
			e.Name = existing.Name
		}
	}
	s.entries[e.ServiceURL] = e
	return e, nil
}

func (s *MemoryStore) Get(_ context.Context, serviceURL string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[serviceURL]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastSeen.After(out[j].LastSeen)
	})
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, serviceURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[serviceURL]; !ok {
		return ErrNotFound
	}
	delete(s.entries, serviceURL)
	return nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }
