// Package file provides JSON-file persistence for ingestion state, the
// catalog and derived text. The files are the pipeline's durable
// artifacts and are shared with the front end, so their shape is a
// compatibility contract. All writes are atomic (temp file + rename).
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
)

var _ driven.StateStore = (*StateStore)(nil)

// StateStore persists per-source ingestion state as one JSON file per
// source under dir.
type StateStore struct {
	dir string
	mu  sync.Mutex
}

// NewStateStore creates a state store rooted at dir.
func NewStateStore(dir string) *StateStore {
	return &StateStore{dir: dir}
}

// Load returns the persisted state for sourceID, or fresh empty state
// when none exists yet.
func (s *StateStore) Load(_ context.Context, sourceID string) (*domain.IngestState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := domain.NewIngestState(sourceID)
	err := readJSON(s.path(sourceID), state)
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewIngestState(sourceID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading state for %s: %w", sourceID, err)
	}
	// maps may come back nil from an older state file
	if state.Seen == nil {
		state.Seen = make(map[string]bool)
	}
	if state.Failed == nil {
		state.Failed = make(map[string]*domain.FailedRef)
	}
	if state.Validators == nil {
		state.Validators = make(map[string]*domain.CachedValidator)
	}
	return state, nil
}

// Save durably persists state.
func (s *StateStore) Save(_ context.Context, state *domain.IngestState) error {
	if state == nil || state.SourceID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSONAtomic(s.path(state.SourceID), state)
}

func (s *StateStore) path(sourceID string) string {
	return filepath.Join(s.dir, domain.Slugify(sourceID)+".json")
}
