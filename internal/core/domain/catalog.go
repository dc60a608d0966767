package domain

import "time"

// SourceRef records one link through which a document was reached.
// A deduplicated document accumulates one SourceRef per distinct URL.
type SourceRef struct {
	SourceName string `json:"source_name"`
	SourceURL  string `json:"source_url"`
}

// CatalogEntry is the canonical, deduplicated record for one document:
// the RawDocument merged with its latest ExtractionResult and derived
// tags. One entry exists per unique content hash. Field names are a
// compatibility contract with the front end.
type CatalogEntry struct {
	// ID is the document identifier (hash prefix + title slug).
	ID string `json:"id"`

	// Title is the human-readable title.
	Title string `json:"title"`

	// SourceID is the source that first produced the document.
	SourceID string `json:"source_id"`

	// SourceName is the display name of that source.
	SourceName string `json:"source_name"`

	// SourceURL is the first URL the document was fetched from.
	SourceURL string `json:"source_url"`

	// ReleaseDate is the release date (YYYY-MM-DD), may be empty.
	ReleaseDate string `json:"release_date"`

	// DownloadedAt is when the bytes were stored.
	DownloadedAt time.Time `json:"downloaded_at"`

	// SHA256 is the content hash, the dedup key.
	SHA256 string `json:"sha256"`

	// FilePath is the raw artifact location.
	FilePath string `json:"file_path"`

	// MIMEType is the detected content type.
	MIMEType string `json:"mime_type"`

	// Pages is the page count for PDFs, zero when unknown.
	Pages int `json:"pages,omitempty"`

	// FileSizeBytes is the raw artifact size.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// Tags are source- and listing-derived tags.
	Tags []string `json:"tags"`

	// Sources lists every link the document was reached through.
	Sources []SourceRef `json:"sources"`

	// Extraction is the latest analysis result, nil before extraction.
	Extraction *ExtractionResult `json:"extraction,omitempty"`
}

// EnsureSource appends a source reference unless the URL is already
// recorded.
func (e *CatalogEntry) EnsureSource(name, url string) {
	for _, ref := range e.Sources {
		if ref.SourceURL == url {
			return
		}
	}
	e.Sources = append(e.Sources, SourceRef{SourceName: name, SourceURL: url})
}

// Year returns the four-digit release year, or "unknown" when the
// release date is missing or unparseable. Shard assignment depends on
// this being a pure function of the entry.
func (e *CatalogEntry) Year() string {
	if len(e.ReleaseDate) >= 4 {
		year := e.ReleaseDate[:4]
		digits := true
		for _, r := range year {
			if r < '0' || r > '9' {
				digits = false
				break
			}
		}
		if digits {
			return year
		}
	}
	return "unknown"
}

// Category returns the extracted document category, empty when the
// entry has not been analysed or no category could be justified.
func (e *CatalogEntry) Category() string {
	if e.Extraction == nil {
		return ""
	}
	return e.Extraction.DocumentCategory
}
