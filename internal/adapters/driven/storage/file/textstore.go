package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
)

var _ driven.TextStore = (*TextStore)(nil)

// TextStore persists derived per-document text as one .txt file per
// document under dir. Extraction checks here before re-running OCR.
type TextStore struct {
	dir string
}

// NewTextStore creates a text store rooted at dir.
func NewTextStore(dir string) *TextStore {
	return &TextStore{dir: dir}
}

// Get returns the derived text for docID, domain.ErrNotFound when the
// document has no derived text yet.
func (s *TextStore) Get(_ context.Context, docID string) (string, error) {
	data, err := os.ReadFile(s.path(docID))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: no derived text for %s", domain.ErrNotFound, docID)
	}
	if err != nil {
		return "", fmt.Errorf("reading derived text: %w", err)
	}
	return string(data), nil
}

// Put atomically writes the derived text for docID.
func (s *TextStore) Put(_ context.Context, docID, text string) error {
	if docID == "" {
		return domain.ErrInvalidInput
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating text directory: %w", err)
	}

	path := s.path(docID)
	tmp, err := os.CreateTemp(s.dir, "."+docID+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing derived text: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing derived text: %w", err)
	}
	return nil
}

func (s *TextStore) path(docID string) string {
	return filepath.Join(s.dir, docID+".txt")
}
