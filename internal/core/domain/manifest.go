package domain

// ShardKey identifies one catalog partition. Assignment is a pure
// function of the entry: its source slug and release year.
type ShardKey struct {
	SourceSlug string
	Year       string
}

// ShardInfo describes one built shard in the manifest.
type ShardInfo struct {
	// Path is the shard file location relative to the index root.
	Path string `json:"path"`

	// SourceSlug and SourceName identify the shard's source.
	SourceSlug string `json:"source_slug"`
	SourceName string `json:"source_name"`

	// Year is the release year, or "unknown".
	Year string `json:"year"`

	// DocCount is the number of documents in the shard file.
	DocCount int `json:"doc_count"`
}

// ShardManifest is the index of built shards. It is rebuilt atomically
// on every index build and never published in an inconsistent state:
// every catalog entry appears in exactly one shard and every shard
// document exists in the catalog.
type ShardManifest struct {
	// GeneratedAt is the build timestamp (RFC 3339, UTC).
	GeneratedAt string `json:"generated_at"`

	// TotalDocs equals the sum of shard doc counts and the catalog size.
	TotalDocs int `json:"total_docs"`

	// Sources and Years list the distinct values across the catalog.
	Sources []string `json:"sources"`
	Years   []string `json:"years"`

	// Shards lists the built partitions in deterministic order.
	Shards []ShardInfo `json:"shards"`
}

// IndexDocument is the per-document shape written into shard files and
// tokenised for search. Stable field names are part of the front-end
// contract.
type IndexDocument struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	ReleaseDate      string   `json:"release_date"`
	SourceName       string   `json:"source_name"`
	FileName         string   `json:"file_name"`
	Content          string   `json:"content"`
	Tags             []string `json:"tags"`
	AutoTags         []string `json:"auto_tags"`
	PDFType          string   `json:"pdf_type,omitempty"`
	TextQualityScore float64  `json:"text_quality_score"`
	DocumentCategory string   `json:"document_category,omitempty"`
	FileNumbers      []string `json:"extracted_file_numbers"`
	PersonNames      []string `json:"person_names"`
	Locations        []string `json:"locations"`
	EmailFrom        string   `json:"email_from,omitempty"`
	EmailTo          string   `json:"email_to,omitempty"`
	EmailSubject     string   `json:"email_subject,omitempty"`
	EmailDate        string   `json:"email_date,omitempty"`
}
