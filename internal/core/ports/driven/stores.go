package driven

import (
	"context"

	"github.com/archivelab/papertrail/internal/core/domain"
)

// StateStore persists per-source ingestion state between runs. It is
// written only by the ingestion coordinator, which owns each source's
// state exclusively; writes are atomic (temp file + rename).
type StateStore interface {
	// Load returns the persisted state for a source, or a fresh empty
	// state when none exists.
	Load(ctx context.Context, sourceID string) (*domain.IngestState, error)

	// Save durably persists state.
	Save(ctx context.Context, state *domain.IngestState) error
}

// BlobStore is the write-once raw artifact store, deduplicated by
// content hash.
type BlobStore interface {
	// Store hashes the file at tempPath and moves it into raw storage.
	// When the hash is already known the temp file is discarded and the
	// existing RawDocument is returned with created=false.
	Store(ctx context.Context, tempPath, title, sourceID string) (doc *domain.RawDocument, created bool, err error)

	// Get returns the RawDocument for an ID.
	Get(ctx context.Context, id string) (*domain.RawDocument, error)

	// List returns all stored raw documents.
	List(ctx context.Context) ([]domain.RawDocument, error)
}

// CatalogStore persists the canonical catalog. It is single-writer (the
// catalog manager) and swaps the whole artifact atomically so readers
// never observe a partial write.
type CatalogStore interface {
	// Load returns every catalog entry, sorted by release date then ID.
	Load(ctx context.Context) ([]domain.CatalogEntry, error)

	// Save atomically replaces the catalog.
	Save(ctx context.Context, entries []domain.CatalogEntry) error
}

// TextStore persists derived per-document text, keyed by document ID.
// Extraction reads existing text to avoid re-OCR; metadata extractors
// re-run over it without touching raw bytes.
type TextStore interface {
	// Get returns the derived text for a document, ErrNotFound when the
	// document has no derived text yet.
	Get(ctx context.Context, docID string) (string, error)

	// Put atomically writes the derived text.
	Put(ctx context.Context, docID, text string) error
}

// ShardStore persists built shard files and the manifest. Shard files
// are written before the manifest; the manifest swap is the atomic
// publish point.
type ShardStore interface {
	// WriteShard atomically writes one shard's documents.
	WriteShard(ctx context.Context, shard domain.ShardInfo, docs []domain.IndexDocument) error

	// LoadShard reads one shard's documents back.
	LoadShard(ctx context.Context, shard domain.ShardInfo) ([]domain.IndexDocument, error)

	// WriteManifest atomically publishes the manifest.
	WriteManifest(ctx context.Context, manifest *domain.ShardManifest) error

	// LoadManifest returns the published manifest, ErrNotFound when no
	// build has completed yet.
	LoadManifest(ctx context.Context) (*domain.ShardManifest, error)
}

// SearchIndex is the local token index over built shards.
type SearchIndex interface {
	// Reset clears the index before a rebuild.
	Reset(ctx context.Context) error

	// IndexShard tokenises and indexes one shard's documents. Building
	// proceeds shard-at-a-time so large corpora never require the whole
	// index in memory.
	IndexShard(ctx context.Context, shard domain.ShardInfo, docs []domain.IndexDocument) error

	// Search runs a case-insensitive token query over the index.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Close releases the underlying database.
	Close() error
}
