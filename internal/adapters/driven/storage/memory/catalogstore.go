package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/custodia-labs/artid/internal/core/domain"
	"github.com/custodia-labs/artid/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore is an in-memory implementation of driven.CatalogStore.
// Entries are returned in insertion order.
type CatalogStore struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]domain.CatalogEntry
}

// NewCatalogStore creates a new in-memory catalog store.
func NewCatalogStore(entries ...domain.CatalogEntry) *CatalogStore {
	s := &CatalogStore{
		entries: make(map[string]domain.CatalogEntry),
	}
	for _, e := range entries {
		_ = s.Save(context.Background(), e)
	}
	return s
}

// FindAllCandidates returns every entry.
func (s *CatalogStore) FindAllCandidates(_ context.Context, _ string) ([]domain.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.CatalogEntry, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, cloneEntry(s.entries[id]))
	}
	return result, nil
}

// FindByID retrieves an entry by ID.
func (s *CatalogStore) FindByID(_ context.Context, id string) (*domain.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	entry = cloneEntry(entry)
	return &entry, nil
}

// Save stores or replaces an entry.
func (s *CatalogStore) Save(_ context.Context, entry domain.CatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.ID]; !exists {
		s.order = append(s.order, entry.ID)
	}
	s.entries[entry.ID] = cloneEntry(entry)
	return nil
}

// Count returns the number of entries.
func (s *CatalogStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func cloneEntry(e domain.CatalogEntry) domain.CatalogEntry {
	e.Translations = maps.Clone(e.Translations)
	return e
}
