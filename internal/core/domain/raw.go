package domain

import "time"

// CandidateRef is a document reference produced by a discovery adapter.
// Ref is the dedup key within a source (usually the URL); for enumerate
// sources it is the enumerable ID.
type CandidateRef struct {
	// Ref is the stable identifier used for seen/failed bookkeeping.
	Ref string

	// URL is the fetchable location. For dropfolder sources this is a
	// local path.
	URL string

	// Title is the human-readable title, when the listing provides one.
	Title string

	// ReleaseDate is the release date (YYYY-MM-DD) when known.
	ReleaseDate string

	// Tags are listing-derived tags merged into the catalog entry.
	Tags []string
}

// RawDocument describes one successfully stored artifact. Raw storage
// is write-once; a RawDocument is immutable after creation. The dedup
// key is ContentHash, not URL, so the same bytes reachable through
// different links are stored exactly once.
type RawDocument struct {
	// ID is the document identifier: first 12 hex chars of the content
	// hash joined with a slug of the title.
	ID string `json:"id"`

	// SourceID is the source that first produced the document.
	SourceID string `json:"source_id"`

	// ContentHash is the sha256 of the stored bytes.
	ContentHash string `json:"sha256"`

	// ByteSize is the stored size in bytes.
	ByteSize int64 `json:"byte_size"`

	// RetrievedAt is when the artifact was downloaded.
	RetrievedAt time.Time `json:"retrieved_at"`

	// RawPath is the location of the stored bytes.
	RawPath string `json:"raw_path"`
}

// RefStatus is the per-item fetch state machine. State is persisted only
// after a ref reaches a final status, so a crash mid-fetch never loses
// an already-stored item nor double-counts one.
type RefStatus int

const (
	// RefPending means the ref has not been attempted this run.
	RefPending RefStatus = iota

	// RefFetching means a fetch is in flight.
	RefFetching

	// RefStored means the bytes were stored (or deduplicated).
	RefStored

	// RefSkipped means a conditional request reported no change, or the
	// link was filtered out.
	RefSkipped

	// RefRetrying means a transient failure was recorded with a
	// next-retry time.
	RefRetrying

	// RefFailed means retries are exhausted or the failure is permanent.
	RefFailed
)

// String returns the status name for reports and logs.
func (s RefStatus) String() string {
	switch s {
	case RefPending:
		return "pending"
	case RefFetching:
		return "fetching"
	case RefStored:
		return "stored"
	case RefSkipped:
		return "skipped"
	case RefRetrying:
		return "retrying"
	case RefFailed:
		return "failed"
	default:
		return "unknown"
	}
}
