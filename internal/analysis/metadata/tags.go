package metadata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/archivelab/papertrail/internal/core/domain"
)

// keywordTags maps a tag slug to text markers that justify it. A tag
// is applied when any marker appears in the lowercased text.
var keywordTags = map[string][]string{
	"financial":     {"wire transfer", "bank account", "invoice", "payment", "ledger"},
	"travel":        {"flight", "passport", "itinerary", "manifest", "passenger"},
	"legal":         {"plaintiff", "defendant", "court", "subpoena", "deposition"},
	"investigation": {"investigation", "evidence", "witness", "interview", "agent"},
	"property":      {"deed", "lease", "real estate", "property", "mortgage"},
	"communication": {"email", "phone call", "text message", "voicemail", "correspondence"},
	"medical":       {"medical", "physician", "diagnosis", "prescription"},
	"employment":    {"employee", "employer", "salary", "payroll", "personnel"},
}

// AutoTags derives tags for a document from its category, extracted
// entities and dates. Person and location tags carry prefixes so
// downstream facets can group them. Sorted and deduplicated.
func AutoTags(result *domain.ExtractionResult, releaseDate string) []string {
	tags := make(map[string]bool)

	lower := strings.ToLower(result.Text)
	for tag, markers := range keywordTags {
		if containsAny(lower, markers...) {
			tags[tag] = true
		}
	}

	if result.DocumentCategory != "" {
		tags["category:"+result.DocumentCategory] = true
	}
	for _, name := range result.PersonNames {
		tags["person:"+normaliseTag(name)] = true
	}
	for _, loc := range result.Locations {
		tags["location:"+normaliseTag(loc)] = true
	}

	for _, date := range result.DatesISO8601 {
		if decade, ok := decadeOf(date); ok {
			tags[decade] = true
		}
	}
	if decade, ok := decadeOf(releaseDate); ok {
		tags[decade] = true
	}

	out := make([]string, 0, len(tags))
	for tag := range tags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// decadeOf turns an ISO date into a decade tag like "1990s".
func decadeOf(isoDate string) (string, bool) {
	if len(isoDate) < 4 {
		return "", false
	}
	year, err := strconv.Atoi(isoDate[:4])
	if err != nil || year < 1900 || year > 2100 {
		return "", false
	}
	return fmt.Sprintf("%ds", year/10*10), true
}

// normaliseTag lowercases and hyphenates an entity for use as a tag
// value.
func normaliseTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastHyphen := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
