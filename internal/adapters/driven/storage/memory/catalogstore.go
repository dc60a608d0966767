package memory

import (
	"context"
	"sync"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore is an in-memory implementation of driven.CatalogStore.
type CatalogStore struct {
	mu      sync.RWMutex
	entries []domain.CatalogEntry
}

// NewCatalogStore creates a new in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{}
}

// Load returns every catalog entry.
func (s *CatalogStore) Load(_ context.Context) ([]domain.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CatalogEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Save replaces the catalog.
func (s *CatalogStore) Save(_ context.Context, entries []domain.CatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]domain.CatalogEntry, len(entries))
	copy(s.entries, entries)
	return nil
}
