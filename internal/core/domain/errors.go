package domain

import "errors"

// Domain errors represent pipeline failures. Per-item errors are caught
// and recorded at the item boundary; only integrity violations that
// would corrupt published artifacts are fatal to a run.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedKind indicates an unknown source kind.
	ErrUnsupportedKind = errors.New("unsupported source kind")

	// ErrTransient indicates a retryable network failure (timeout, 5xx,
	// rate-limit signal). Retried with backoff.
	ErrTransient = errors.New("transient network error")

	// ErrPermanentSource indicates the remote resource is permanently
	// gone (404/410). Recorded once, never retried.
	ErrPermanentSource = errors.New("permanent source error")

	// ErrAuthRequired indicates a source needs session cookies that are
	// missing or expired. The source is blocked for the run, surfaced
	// as a warning.
	ErrAuthRequired = errors.New("authentication required")

	// ErrCorruptArtifact indicates a download failed its size or digest
	// check. The bytes are discarded and the fetch retried; a corrupt
	// artifact is never admitted as a RawDocument.
	ErrCorruptArtifact = errors.New("corrupt artifact")

	// ErrExtractionFailed indicates the OCR engine crashed or timed
	// out. The document is still catalogued with whatever text was
	// available.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrManifestInconsistent indicates the built shards do not match
	// the catalog. Build-fatal; the manifest is not published.
	ErrManifestInconsistent = errors.New("manifest inconsistent with catalog")

	// ErrBudgetExhausted signals the cooperative time budget elapsed.
	// The run exits cleanly with state flushed.
	ErrBudgetExhausted = errors.New("time budget exhausted")

	// ErrAdapterClosed indicates the source adapter has been closed.
	ErrAdapterClosed = errors.New("adapter closed")
)
