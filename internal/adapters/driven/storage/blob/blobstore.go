// Package blob provides the write-once raw artifact store. Artifacts
// are deduplicated by content hash: the same bytes reachable through
// different links are stored exactly once, and the original bytes are
// never modified after being written.
package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
	"github.com/archivelab/papertrail/internal/logger"
)

var _ driven.BlobStore = (*Store)(nil)

// Store keeps raw artifacts under dir with a JSON ledger mapping
// content hashes to documents. Stored files are named by document ID
// and keep the original extension.
type Store struct {
	dir   string
	clock driven.Clock

	mu     sync.Mutex
	loaded bool
	// byHash is the dedup index, byID the lookup index. Both point at
	// the same RawDocument values.
	byHash map[string]*domain.RawDocument
	byID   map[string]*domain.RawDocument
}

// New creates a blob store rooted at dir.
func New(dir string, clock driven.Clock) *Store {
	if clock == nil {
		clock = driven.SystemClock{}
	}
	return &Store{dir: dir, clock: clock}
}

// Store hashes the file at tempPath and moves it into raw storage.
// When the hash is already known the temp file is discarded and the
// existing document is returned with created=false.
func (s *Store) Store(_ context.Context, tempPath, title, sourceID string) (*domain.RawDocument, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, false, err
	}

	hash, size, err := hashFile(tempPath)
	if err != nil {
		return nil, false, fmt.Errorf("hashing artifact: %w", err)
	}

	if existing, ok := s.byHash[hash]; ok {
		os.Remove(tempPath)
		logger.Debug("blob %s already stored as %s", hash[:12], existing.ID)
		return existing, false, nil
	}

	id := domain.DocumentID(hash, title)
	name := id + extension(tempPath, title)
	finalPath := filepath.Join(s.dir, "raw", name)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return nil, false, fmt.Errorf("creating raw directory: %w", err)
	}
	if err := moveFile(tempPath, finalPath); err != nil {
		return nil, false, fmt.Errorf("storing artifact: %w", err)
	}

	doc := &domain.RawDocument{
		ID:          id,
		SourceID:    sourceID,
		ContentHash: hash,
		ByteSize:    size,
		RetrievedAt: s.clock.Now().UTC(),
		RawPath:     finalPath,
	}
	s.byHash[hash] = doc
	s.byID[id] = doc

	if err := s.saveLedger(); err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Get returns the document for an ID.
func (s *Store) Get(_ context.Context, id string) (*domain.RawDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}
	doc, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

// List returns all stored raw documents, ordered by ID.
func (s *Store) List(_ context.Context) ([]domain.RawDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}
	docs := make([]domain.RawDocument, 0, len(s.byID))
	for _, doc := range s.byID {
		docs = append(docs, *doc)
	}
	sortDocs(docs)
	return docs, nil
}

// load reads the ledger on first use.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}
	s.byHash = make(map[string]*domain.RawDocument)
	s.byID = make(map[string]*domain.RawDocument)

	data, err := os.ReadFile(s.ledgerPath())
	if errors.Is(err, os.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading blob ledger: %w", err)
	}

	var docs []domain.RawDocument
	if err := unmarshalLedger(data, &docs); err != nil {
		return fmt.Errorf("%w: blob ledger: %v", domain.ErrCorruptArtifact, err)
	}
	for i := range docs {
		doc := &docs[i]
		s.byHash[doc.ContentHash] = doc
		s.byID[doc.ID] = doc
	}
	s.loaded = true
	return nil
}

func (s *Store) saveLedger() error {
	docs := make([]domain.RawDocument, 0, len(s.byID))
	for _, doc := range s.byID {
		docs = append(docs, *doc)
	}
	sortDocs(docs)
	return writeLedgerAtomic(s.ledgerPath(), docs)
}

func (s *Store) ledgerPath() string {
	return filepath.Join(s.dir, "blobs.json")
}

// hashFile returns the sha256 hex digest and size of the file at path.
func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

// moveFile renames src to dst, falling back to copy+remove when the
// temp directory lives on a different filesystem.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

// extension picks a file extension for the stored artifact: the temp
// file's if it has one, otherwise the title's, otherwise ".bin".
func extension(tempPath, title string) string {
	if ext := filepath.Ext(tempPath); ext != "" && ext != ".tmp" {
		return ext
	}
	if ext := filepath.Ext(title); len(ext) > 1 && len(ext) <= 5 {
		return ext
	}
	return ".bin"
}
