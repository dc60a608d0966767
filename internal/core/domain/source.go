package domain

import (
	"strings"
	"time"
)

// SourceKind identifies the discovery strategy for a source.
// The set is closed; adapters are selected by kind at registration time.
type SourceKind string

const (
	// KindListing discovers documents from an HTML page of links.
	KindListing SourceKind = "listing"

	// KindPaginated discovers documents from a numbered sequence of list pages.
	KindPaginated SourceKind = "paginated"

	// KindEnumerate discovers documents by enumerating a printf-style ID scheme.
	KindEnumerate SourceKind = "enumerate"

	// KindDropFolder discovers documents from a local directory.
	KindDropFolder SourceKind = "dropfolder"
)

// AuthMode describes how a source is authenticated.
type AuthMode string

const (
	// AuthNone means the source is publicly reachable.
	AuthNone AuthMode = "none"

	// AuthCookie means the source requires session cookies from an
	// external cookie jar. If the jar is missing or expired the source
	// is blocked for the run, not fatal.
	AuthCookie AuthMode = "cookie"
)

// Source is the immutable configuration for one remote document source.
// Sources are loaded from the registry at startup and never mutated.
type Source struct {
	// ID is the unique identifier for the source.
	ID string `yaml:"id"`

	// Name is the human-readable name, used for shard grouping.
	Name string `yaml:"name"`

	// Kind selects the discovery adapter.
	Kind SourceKind `yaml:"kind"`

	// BaseURL is the root URL (or directory path for dropfolder sources).
	BaseURL string `yaml:"base_url"`

	// AuthMode describes authentication requirements.
	AuthMode AuthMode `yaml:"auth_mode"`

	// Referer, when set, is sent on every request to this source.
	Referer string `yaml:"referer"`

	// RequestsPerSecond caps the fetch rate. Zero means unlimited.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// TimeBudget bounds total work for this source in one run.
	// Zero means no per-source budget.
	TimeBudget time.Duration `yaml:"time_budget"`

	// ReleaseDate is the default release date (YYYY-MM-DD) applied to
	// discovered documents that carry none of their own.
	ReleaseDate string `yaml:"release_date"`

	// Tags are applied to every document from this source.
	Tags []string `yaml:"tags"`

	// AllowedExtensions filters discovered links. Empty means all.
	AllowedExtensions []string `yaml:"allowed_extensions"`

	// Pattern is the ID scheme for enumerate sources,
	// e.g. "files/DataSet%20{set}/EFTA{n:08}.pdf".
	Pattern string `yaml:"pattern"`

	// EnumerateFrom and EnumerateTo bound the enumerable ID range.
	EnumerateFrom int `yaml:"enumerate_from"`
	EnumerateTo   int `yaml:"enumerate_to"`
}

// Slug returns the source name reduced to a filesystem-safe slug.
func (s *Source) Slug() string {
	return Slugify(s.Name)
}

// AllowsExtension reports whether a URL path extension passes the
// source's extension filter. Both sides are compared case-insensitive
// with any leading dot stripped, so registry entries and adapters may
// use either "pdf" or ".pdf".
func (s *Source) AllowsExtension(ext string) bool {
	if len(s.AllowedExtensions) == 0 {
		return true
	}
	ext = normalizeExt(ext)
	for _, allowed := range s.AllowedExtensions {
		if normalizeExt(allowed) == ext {
			return true
		}
	}
	return false
}

func normalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(ext), ".")
}

// Slugify lowercases text and reduces it to alphanumerics and hyphens.
// Used for document IDs and shard paths, so it must be deterministic.
func Slugify(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "document"
	}
	return slug
}
