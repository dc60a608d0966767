package memory

import (
	"context"
	"sync"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
)

// Ensure TextStore implements the interface.
var _ driven.TextStore = (*TextStore)(nil)

// TextStore is an in-memory implementation of driven.TextStore.
type TextStore struct {
	mu    sync.RWMutex
	texts map[string]string
}

// NewTextStore creates a new in-memory text store.
func NewTextStore() *TextStore {
	return &TextStore{texts: make(map[string]string)}
}

// Get returns the derived text for a document.
func (s *TextStore) Get(_ context.Context, docID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.texts[docID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

// Put stores the derived text.
func (s *TextStore) Put(_ context.Context, docID, text string) error {
	if docID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[docID] = text
	return nil
}
