package domain

// SearchOptions narrows a search over the built index.
type SearchOptions struct {
	// SourceSlugs restricts results to the given sources.
	SourceSlugs []string

	// Years restricts results to release years ("unknown" allowed).
	Years []string

	// Category restricts results to one document category.
	Category string

	// Fuzzy enables edit-distance-1 token matching in addition to
	// exact and substring matches.
	Fuzzy bool

	// Limit caps the number of results. Zero means the default.
	Limit int
}

// SearchResult is one hit against the token index.
type SearchResult struct {
	// DocumentID is the matched document.
	DocumentID string

	// Title and SourceName identify the document for display.
	Title      string
	SourceName string

	// ReleaseDate is the document's release date.
	ReleaseDate string

	// Score ranks the hit; higher is better.
	Score float64

	// MatchedField names the field the query matched (title, content,
	// tags, people, locations).
	MatchedField string

	// Snippet is a short content excerpt around the match.
	Snippet string
}
