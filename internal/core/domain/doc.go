// Package domain contains the core types of the archive pipeline.
// Types here have no dependencies on adapters or services; they define
// the vocabulary shared by the ingestion coordinator, the analysis
// pipeline and the index builder.
package domain

// DocumentID derives the stable document identifier from a content hash
// and title: the first 12 hex characters of the hash joined with the
// title slug. Stable across runs for identical bytes and title.
func DocumentID(contentHash, title string) string {
	prefix := contentHash
	if len(prefix) > 12 {
		prefix = prefix[:12]
	}
	return prefix + "-" + Slugify(title)
}
