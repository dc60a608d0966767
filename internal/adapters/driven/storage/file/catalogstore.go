package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
)

var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore persists the canonical catalog as a single JSON array.
// The whole artifact is swapped atomically on save so readers never
// observe a partial catalog.
type CatalogStore struct {
	path string
	mu   sync.Mutex
}

// NewCatalogStore creates a catalog store writing to path.
func NewCatalogStore(path string) *CatalogStore {
	return &CatalogStore{path: path}
}

// Load returns every catalog entry sorted by release date then ID.
// A missing catalog file is an empty catalog, not an error.
func (s *CatalogStore) Load(_ context.Context) ([]domain.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []domain.CatalogEntry
	err := readJSON(s.path, &entries)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	sortEntries(entries)
	return entries, nil
}

// Save atomically replaces the catalog.
func (s *CatalogStore) Save(_ context.Context, entries []domain.CatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sortEntries(entries)
	if entries == nil {
		entries = []domain.CatalogEntry{}
	}
	return writeJSONAtomic(s.path, entries)
}

// sortEntries orders by release date descending, then ID, so catalog
// output is deterministic run to run.
func sortEntries(entries []domain.CatalogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ReleaseDate != entries[j].ReleaseDate {
			return entries[i].ReleaseDate > entries[j].ReleaseDate
		}
		return entries[i].ID < entries[j].ID
	})
}
