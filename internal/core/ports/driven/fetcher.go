package driven

import (
	"context"

	"github.com/archivelab/papertrail/internal/core/domain"
)

// FetchResult describes the outcome of one fetch attempt.
type FetchResult struct {
	// NotModified is set when a conditional request answered 304; no
	// bytes were transferred and Path is empty.
	NotModified bool

	// Path is the downloaded temp file. The caller owns it and must
	// move or remove it.
	Path string

	// Size is the downloaded byte count.
	Size int64

	// ETag and LastModified are validators from the response, cached
	// for the next run's conditional request.
	ETag         string
	LastModified string
}

// Fetcher downloads one candidate ref for a source. Implementations
// enforce per-source rate limits, retry transient failures with capped
// exponential backoff, honour Retry-After, attach cookie jars and
// referer headers, and verify Content-Length so a truncated download is
// reported as domain.ErrCorruptArtifact rather than stored.
type Fetcher interface {
	// Fetch downloads ref. When validator is non-nil a conditional
	// request is made and a 304-equivalent answer yields NotModified.
	// Errors are classified with the domain sentinels: ErrTransient,
	// ErrPermanentSource, ErrAuthRequired, ErrCorruptArtifact.
	Fetch(ctx context.Context, source *domain.Source, ref domain.CandidateRef, validator *domain.CachedValidator) (*FetchResult, error)

	// Probe performs a HEAD request and reports the content type.
	// Used to filter ambiguous links before committing to a download.
	Probe(ctx context.Context, source *domain.Source, url string) (contentType string, err error)
}
