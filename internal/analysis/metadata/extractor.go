package metadata

import (
	"strings"

	"github.com/archivelab/papertrail/internal/core/domain"
)

// categorySampleChars is how much text the category heuristics look at.
const categorySampleChars = 3000

// Extractor runs the full heuristic metadata pass over a document's
// text. Known entity lists are optional; without them only pattern
// based matches are reported.
type Extractor struct {
	// KnownNames are person names matched verbatim in addition to the
	// title/suffix patterns.
	KnownNames []string

	// KnownPlaces are location names matched verbatim in addition to
	// the city/state and address patterns.
	KnownPlaces []string
}

// Extract populates the metadata fields of result from result.Text and
// the document title. Never fails: empty or garbled text just yields
// sparse metadata.
func (x *Extractor) Extract(result *domain.ExtractionResult, title, releaseDate string) {
	sample := result.Text
	if len(sample) > categorySampleChars {
		sample = sample[:categorySampleChars]
	}

	result.DocumentCategory = Category(title, sample)
	result.PersonNames = PersonNames(result.Text, x.KnownNames)
	result.Locations = Locations(result.Text, x.KnownPlaces)
	result.DatesISO8601 = Dates(result.Text)
	result.FileNumbers = FileNumbers(result.Text)
	result.CaseNumbers = CaseNumbers(result.Text)
	result.ExhibitNumbers = ExhibitNumbers(result.Text)

	if result.DocumentCategory == "email" || looksLikeEmail(result.Text) {
		result.Email = ExtractEmail(result.Text)
	}

	result.AutoTags = AutoTags(result, releaseDate)
}

// looksLikeEmail is a looser check than the email category, which also
// requires an address match. A document can classify as something else
// and still carry From/Subject headers worth extracting.
func looksLikeEmail(text string) bool {
	window := text
	if len(window) > emailHeaderWindow {
		window = window[:emailHeaderWindow]
	}
	lower := strings.ToLower(window)
	return strings.Contains(lower, "from:") && strings.Contains(lower, "subject:")
}
