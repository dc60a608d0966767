package domain

import "time"

// SourceReport summarises one source's outcome within a run.
type SourceReport struct {
	SourceID string `json:"source_id"`

	// Blocked is set when the source was skipped for the whole run,
	// e.g. missing cookie jar. Reason explains why.
	Blocked bool   `json:"blocked,omitempty"`
	Reason  string `json:"reason,omitempty"`

	Discovered int `json:"discovered"`
	Stored     int `json:"stored"`
	Skipped    int `json:"skipped"`
	Retrying   int `json:"retrying"`
	Failed     int `json:"failed"`

	// BytesFetched counts bytes actually downloaded (not deduplicated).
	BytesFetched int64 `json:"bytes_fetched"`
}

// RunReport is the user-visible summary of one ingestion run.
type RunReport struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// BudgetExhausted is set when the run stopped on its time budget
	// rather than completing all sources.
	BudgetExhausted bool `json:"budget_exhausted,omitempty"`

	Sources []SourceReport `json:"sources"`
}

// Totals sums the per-source counters.
func (r *RunReport) Totals() (stored, skipped, failed int) {
	for _, s := range r.Sources {
		stored += s.Stored
		skipped += s.Skipped
		failed += s.Failed
	}
	return stored, skipped, failed
}
