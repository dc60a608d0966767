package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore. The
// temp file is consumed and its bytes kept in memory; dedup semantics
// match the file-backed store.
type BlobStore struct {
	mu     sync.Mutex
	byHash map[string]*domain.RawDocument
	byID   map[string]*domain.RawDocument
	bytes  map[string][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		byHash: make(map[string]*domain.RawDocument),
		byID:   make(map[string]*domain.RawDocument),
		bytes:  make(map[string][]byte),
	}
}

// Store hashes the file at tempPath and records it, deduplicating by
// content hash.
func (s *BlobStore) Store(_ context.Context, tempPath, title, sourceID string) (*domain.RawDocument, bool, error) {
	data, err := os.ReadFile(tempPath)
	if err != nil {
		return nil, false, err
	}
	os.Remove(tempPath)

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byHash[hash]; ok {
		return existing, false, nil
	}

	doc := &domain.RawDocument{
		ID:          domain.DocumentID(hash, title),
		SourceID:    sourceID,
		ContentHash: hash,
		ByteSize:    int64(len(data)),
		RetrievedAt: time.Now().UTC(),
		RawPath:     "memory://" + hash,
	}
	s.byHash[hash] = doc
	s.byID[doc.ID] = doc
	s.bytes[hash] = data
	return doc, true, nil
}

// Get returns the document for an ID.
func (s *BlobStore) Get(_ context.Context, id string) (*domain.RawDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

// List returns all stored raw documents ordered by ID.
func (s *BlobStore) List(_ context.Context) ([]domain.RawDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make([]domain.RawDocument, 0, len(s.byID))
	for _, doc := range s.byID {
		docs = append(docs, *doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Bytes returns the stored content for a hash. Test helper.
func (s *BlobStore) Bytes(hash string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes[hash]
}
