package domain

import "time"

// IngestState is the persisted per-source ingestion state. It is owned
// exclusively by the ingestion coordinator and survives between runs so
// interrupted runs resume without re-downloading completed items.
//
// Invariant: Seen only grows. A ref never transitions from seen back to
// pending.
type IngestState struct {
	// SourceID links the state to its source.
	SourceID string `json:"source_id"`

	// Cursor is an opaque resumption marker maintained by the adapter.
	Cursor string `json:"cursor"`

	// Seen holds every ref (URL or enumerable ID) that reached a final
	// outcome: stored, deduplicated or permanently failed.
	Seen map[string]bool `json:"seen"`

	// Failed records refs with recorded failures keyed by ref.
	Failed map[string]*FailedRef `json:"failed"`

	// Validators caches conditional-request validators keyed by URL.
	Validators map[string]*CachedValidator `json:"etag_cache"`
}

// FailedRef records the retry bookkeeping for one failing ref.
type FailedRef struct {
	// Attempts is the number of fetch attempts so far.
	Attempts int `json:"attempts"`

	// LastError is the most recent error string, for the run report.
	LastError string `json:"last_error"`

	// NextRetryAt is the earliest time another attempt may be made.
	NextRetryAt time.Time `json:"next_retry_at"`

	// Permanent marks refs that must not be retried (404, gone).
	Permanent bool `json:"permanent,omitempty"`
}

// CachedValidator holds conditional-request validators for one URL.
type CachedValidator struct {
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// NewIngestState returns empty state for a source.
func NewIngestState(sourceID string) *IngestState {
	return &IngestState{
		SourceID:   sourceID,
		Seen:       make(map[string]bool),
		Failed:     make(map[string]*FailedRef),
		Validators: make(map[string]*CachedValidator),
	}
}

// MarkSeen records a final outcome for ref. Seen is monotonic; marking
// an already-seen ref is a no-op.
func (s *IngestState) MarkSeen(ref string) {
	if s.Seen == nil {
		s.Seen = make(map[string]bool)
	}
	s.Seen[ref] = true
}

// IsSeen reports whether ref already reached a final outcome.
func (s *IngestState) IsSeen(ref string) bool {
	return s.Seen[ref]
}

// RecordFailure increments the attempt count for ref and schedules the
// next retry. Entries in Failed are never silently dropped; a ref whose
// retries are exhausted is marked permanent and added to Seen.
func (s *IngestState) RecordFailure(ref string, errMsg string, nextRetry time.Time) *FailedRef {
	if s.Failed == nil {
		s.Failed = make(map[string]*FailedRef)
	}
	f := s.Failed[ref]
	if f == nil {
		f = &FailedRef{}
		s.Failed[ref] = f
	}
	f.Attempts++
	f.LastError = errMsg
	f.NextRetryAt = nextRetry
	return f
}

// RecordPermanentFailure marks ref as permanently failed and seen.
func (s *IngestState) RecordPermanentFailure(ref string, errMsg string) {
	f := s.RecordFailure(ref, errMsg, time.Time{})
	f.Permanent = true
	s.MarkSeen(ref)
}

// ClearFailure removes the failure record after a successful fetch.
func (s *IngestState) ClearFailure(ref string) {
	delete(s.Failed, ref)
}

// Validator returns the cached conditional-request validator for url,
// or nil when none is cached.
func (s *IngestState) Validator(url string) *CachedValidator {
	return s.Validators[url]
}

// SetValidator caches validators returned by a successful response.
// Empty validators are not cached.
func (s *IngestState) SetValidator(url, etag, lastModified string) {
	if etag == "" && lastModified == "" {
		return
	}
	if s.Validators == nil {
		s.Validators = make(map[string]*CachedValidator)
	}
	s.Validators[url] = &CachedValidator{ETag: etag, LastModified: lastModified}
}
