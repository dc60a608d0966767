package driving

import (
	"context"
	"time"

	"github.com/archivelab/papertrail/internal/core/domain"
)

// IngestOptions bound one ingestion run.
type IngestOptions struct {
	// SourceIDs restricts the run to the given sources. Empty means all.
	SourceIDs []string

	// MaxDownloadsPerSource caps stored documents per source.
	// Zero means unlimited.
	MaxDownloadsPerSource int

	// MaxBytesPerRun caps total downloaded bytes across the run.
	// Zero means unlimited.
	MaxBytesPerRun int64

	// TimeBudget bounds the whole run. The coordinator checks it
	// between items, never mid-fetch. Zero means unlimited.
	TimeBudget time.Duration

	// Workers bounds concurrent per-source workers. Zero means one
	// worker per source up to a small default pool.
	Workers int
}

// Ingestor runs the ingestion coordinator.
type Ingestor interface {
	// Run ingests the configured sources and returns the run summary.
	// Per-item failures never abort the run; they are recorded in the
	// report and in per-source state.
	Run(ctx context.Context, opts IngestOptions) (*domain.RunReport, error)
}

// ExtractOptions control one extraction pass.
type ExtractOptions struct {
	// Force regenerates every ExtractionResult even when analysis
	// fields are already complete.
	Force bool

	// EnableOCR allows the OCR path for image-only documents.
	EnableOCR bool

	// MetadataOnly re-runs the pure metadata extractors over already
	// derived text without touching raw bytes or OCR.
	MetadataOnly bool
}

// ExtractReport summarises one extraction pass.
type ExtractReport struct {
	Processed  int
	OCRApplied int
	Degraded   int
	Failed     int
}

// Extractor runs the document analysis pipeline over the catalog.
type Extractor interface {
	Run(ctx context.Context, opts ExtractOptions) (*ExtractReport, error)
}

// IndexBuilder partitions the catalog into shards and builds the token
// index. The build is atomic: an inconsistent manifest is never
// published.
type IndexBuilder interface {
	Build(ctx context.Context) (*domain.ShardManifest, error)
}

// Validator checks catalog, raw files and index for integrity.
type Validator interface {
	Validate(ctx context.Context) error
}

// SearchService queries the local token index.
type SearchService interface {
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
