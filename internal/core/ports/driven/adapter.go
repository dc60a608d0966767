package driven

import (
	"context"
	"errors"

	"github.com/archivelab/papertrail/internal/core/domain"
)

// SourceAdapter discovers candidate document refs for one source kind.
// The sequence is lazy and restartable: candidates are streamed on a
// channel and must not assume the full set fits in memory. Fetching is
// the coordinator's job, not the adapter's.
type SourceAdapter interface {
	// Kind returns the adapter kind identifier.
	Kind() domain.SourceKind

	// SourceID returns the configured source ID.
	SourceID() string

	// Capabilities returns what this adapter supports.
	Capabilities() AdapterCapabilities

	// Validate performs a lightweight readiness check: the listing page
	// is reachable, the drop folder exists, the pattern parses.
	Validate(ctx context.Context) error

	// Discover streams candidate refs starting from cursor. Adapters
	// that support cursor return send DiscoverComplete on the error
	// channel after the last candidate. Both channels are closed when
	// discovery ends.
	Discover(ctx context.Context, cursor string) (<-chan domain.CandidateRef, <-chan error)

	// Close releases resources.
	Close() error
}

// AdapterCapabilities describes what a source adapter supports.
type AdapterCapabilities struct {
	// SupportsCursor indicates Discover can resume from a cursor and
	// returns an updated one via DiscoverComplete.
	SupportsCursor bool

	// SupportsWatch indicates the adapter can push new candidates as
	// they appear (dropfolder only).
	SupportsWatch bool

	// RequiresNetwork indicates candidates are fetched over HTTP.
	RequiresNetwork bool
}

// DiscoverComplete is sent on the error channel when discovery finishes
// successfully. It carries the cursor to persist for the next run.
type DiscoverComplete struct {
	NewCursor string
}

// Error implements the error interface so DiscoverComplete can travel
// on the error channel.
func (DiscoverComplete) Error() string { return "discovery complete" }

// IsDiscoverComplete checks whether an error is a successful completion.
func IsDiscoverComplete(err error) (DiscoverComplete, bool) {
	var dc DiscoverComplete
	if errors.As(err, &dc) {
		return dc, true
	}
	return DiscoverComplete{}, false
}
