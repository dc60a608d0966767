// Package memory provides in-memory implementations of the driven
// store ports. Used in tests and anywhere persistence is not needed.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore is an in-memory implementation of driven.StateStore.
// States are deep-copied on load and save so callers never share maps
// with the store.
type StateStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

// NewStateStore creates a new in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{states: make(map[string][]byte)}
}

// Load returns the persisted state for a source, or fresh empty state.
func (s *StateStore) Load(_ context.Context, sourceID string) (*domain.IngestState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.states[sourceID]
	if !ok {
		return domain.NewIngestState(sourceID), nil
	}
	state := domain.NewIngestState(sourceID)
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Save persists state.
func (s *StateStore) Save(_ context.Context, state *domain.IngestState) error {
	if state == nil || state.SourceID == "" {
		return domain.ErrInvalidInput
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.SourceID] = data
	return nil
}
