package metadata

import (
	"regexp"
	"sort"
	"strings"
)

// Identifier extraction limits, so one noisy OCR page cannot flood a
// catalog entry.
const (
	maxFileNumbers    = 10
	maxCaseNumbers    = 5
	maxExhibitNumbers = 10
)

var fileNumberPatterns = []*regexp.Regexp{
	// archive release identifiers, e.g. EFTA00000001
	regexp.MustCompile(`\bEFTA\d{8,}\b`),

	// agency file numbers, e.g. 91E-NYC-323571
	regexp.MustCompile(`(?i)\b\d{1,3}[A-Z]{1,3}-[A-Z]{2,5}-\d{5,7}\b`),
	regexp.MustCompile(`(?i)\bFBI\s*#?\s*\d{2,3}-\d{4,6}\b`),
	regexp.MustCompile(`(?i)\bFile\s*#?\s*\d{2,3}[A-Z]{1,2}-\d{4,7}\b`),

	// generic letter-prefixed numbers, e.g. ABC-12345
	regexp.MustCompile(`\b[A-Z]{2,4}[-_]?\d{5,}\b`),
}

var caseNumberPatterns = []*regexp.Regexp{
	// federal civil/criminal docket numbers, e.g. 1:15-cv-07433
	regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}-(?:cv|cr)-\d{4,5}\b`),

	// bare year-prefixed forms, e.g. 19-CV-1234
	regexp.MustCompile(`(?i)\b\d{2}-(?:cv|cr)-\d{3,6}\b`),
}

// casePrefixedPatterns capture the number after a "Case No." or
// "Docket No." label; only the captured identifier is reported.
var casePrefixedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bCase\s*No\.?\s*([A-Z0-9]{1,4}-[A-Z0-9]{2,6}(?:-\d{3,6})?|\d{2,4}-\d{3,6})`),
	regexp.MustCompile(`(?i)\bDocket\s*No\.?\s*(\d{2,4}-\d{3,6})`),
}

var exhibitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bExhibit\s*[A-Z]?-?\d{1,4}\b`),
	regexp.MustCompile(`(?i)\bEvidence\s*#?\s*\d{2,6}\b`),
	regexp.MustCompile(`(?i)\bBatch\s*#?\s*\d{2,6}\b`),
}

// FileNumbers extracts document/file identifiers. Strict patterns
// only; results are deduplicated, sorted and capped.
func FileNumbers(text string) []string {
	found := make(map[string]bool)
	for _, re := range fileNumberPatterns {
		for _, m := range re.FindAllString(text, -1) {
			found[m] = true
		}
	}
	// anything that matched a case or exhibit pattern belongs there
	for id := range found {
		if isCaseLike(id) || isExhibitLike(id) {
			delete(found, id)
		}
	}
	return capSorted(found, maxFileNumbers)
}

// CaseNumbers extracts court case identifiers, reporting the bare
// number without the "Case No." label.
func CaseNumbers(text string) []string {
	found := make(map[string]bool)
	for _, re := range caseNumberPatterns {
		for _, m := range re.FindAllString(text, -1) {
			found[m] = true
		}
	}
	for _, re := range casePrefixedPatterns {
		for _, groups := range re.FindAllStringSubmatch(text, -1) {
			found[groups[1]] = true
		}
	}
	return capSorted(found, maxCaseNumbers)
}

// ExhibitNumbers extracts evidence and exhibit identifiers.
func ExhibitNumbers(text string) []string {
	found := make(map[string]bool)
	for _, re := range exhibitPatterns {
		for _, m := range re.FindAllString(text, -1) {
			found[m] = true
		}
	}
	return capSorted(found, maxExhibitNumbers)
}

func isCaseLike(id string) bool {
	lower := strings.ToLower(id)
	return strings.Contains(lower, "-cv-") || strings.Contains(lower, "-cr-") ||
		strings.Contains(lower, "case") || strings.Contains(lower, "docket")
}

func isExhibitLike(id string) bool {
	lower := strings.ToLower(id)
	return strings.Contains(lower, "exhibit") || strings.Contains(lower, "evidence") ||
		strings.Contains(lower, "batch")
}

func capSorted(set map[string]bool, limit int) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
