// Package metadata derives structured metadata from extracted document
// text: category, people, locations, dates, identifiers and tags. All
// extractors are pure functions over normalised text, case-insensitive,
// and degrade to empty results on garbled input rather than erroring.
package metadata

import (
	"regexp"
	"strings"
)

// lowTextThreshold is the trimmed-text length below which an
// unclassified document is presumed to be a scan.
const lowTextThreshold = 200

var (
	emailAddrRe   = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)
	qaPatternRe   = regexp.MustCompile(`(?s)\bq:.*?\ba:`)
	agencyCaseRe  = regexp.MustCompile(`(?i)\b\d{1,3}[a-z]{1,3}-[a-z]{2,5}-\d{5,7}\b`)
	weekdayRe     = regexp.MustCompile(`\b(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	caseMarkerRes = []string{"case id", "case ip", "case 1d", "caseid"}
)

// markerRule classifies by counting marker phrases in the text.
type markerRule struct {
	category string
	markers  []string
	// minHits is how many distinct markers must appear. Categories with
	// distinctive single phrases use 1; noisier vocabularies need 2.
	minHits int
}

// markerRules are checked in order; the first match wins. Order
// matters: specific record types outrank the generic buckets below
// them.
var markerRules = []markerRule{
	{"booking-record", []string{"booking system", "date arrested", "fbi no:", "fbi name:", "charges:", "trans id:"}, 1},
	{"travel-record", []string{"customs and border protection", "tecs", "person encounter", "entry inspection", "automated passport control", "apis", "on board", "departure", "arrival"}, 2},
	{"government-form", []string{"passport renewal", "passport application", "form approved", "omb no.", "application for", "applicant information", "department of state"}, 2},
	{"financial-record", []string{"wire transfer", "bank statement", "account number", "account no.", "transaction", "balance", "deposit", "withdrawal", "swift", "iban"}, 2},
	{"court-order", []string{"it is ordered", "it is hereby ordered", "the court orders", "order of the court", "so ordered", "judgment is entered"}, 1},
	{"receipt", []string{"invoice", "receipt", "bill to", "ship to", "subtotal", "total amount", "payment received", "amount due", "purchase order"}, 2},
	{"transcript", []string{"transcript of", "interview of", "interviewed by", "recording of", "call transcript", "begins at", "ends at"}, 1},
	{"contract", []string{"agreement between", "contract between", "party of the first", "hereby agree", "in witness whereof", "executed this"}, 1},
	{"contact-list", []string{"contact list", "address book", "phone numbers", "directory", "rolodex"}, 1},
	{"phone-record", []string{"voice usage", "call record", "phone records", "wireline", "mobility voice", "originating number", "terminating number", "elapsed time", "queried for records"}, 2},
	{"internet-record", []string{"ip address", "subscriber information", "internet protocol", "browser history", "login history", "session log", "isp records"}, 2},
	{"search-warrant", []string{"search warrant", "affidavit", "probable cause", "magistrate judge", "authorize the search", "premises described"}, 1},
	{"indictment", []string{"indictment", "grand jury", "count one", "count two", "conspiracy to", "in violation of", "criminal complaint"}, 2},
	{"fbi-record", []string{"federal bureau of investigation", "fbi", "case id:", "case number:", "special agent", "date of report", "synopsis", "details:"}, 2},
}

// Category classifies a document from its title and a sample of its
// text. Returns the category slug, or "" when even the generic
// scanned-document fallback cannot be justified. Pure and
// deterministic.
func Category(title, textSample string) string {
	titleLower := strings.ToLower(title)
	textLower := strings.ToLower(textSample)
	textLen := len(strings.TrimSpace(textSample))

	// Email first: header lines plus a real address
	hasHeaders := containsAny(textLower, "from:", "to:", "subject:", "sent:", "date:")
	if hasHeaders && emailAddrRe.MatchString(textLower) {
		return "email"
	}

	for _, rule := range markerRules {
		if countHits(textLower, rule.markers) >= rule.minHits {
			return rule.category
		}
	}

	// Schedules need both a schedule word and a weekday mention
	if containsAny(textLower, "schedule", "calendar", "itinerary", "appointment", "agenda") &&
		weekdayRe.MatchString(textLower) {
		return "schedule"
	}

	// Depositions: Q/A structure or explicit markers
	if qaPatternRe.MatchString(textLower) ||
		containsAny(textLower, "deposition", "deposed", "sworn testimony", "court reporter") {
		return "deposition"
	}

	if containsAny(textLower, "subpoena", "compel", "appear and testify", "bring with you") ||
		containsAny(textLower, "you are commanded", "you are hereby ordered") {
		return "subpoena"
	}

	// Evidence photos: photographer + location + a case marker, robust
	// against OCR misreads of "case id"
	if strings.Contains(textLower, "photographer") && strings.Contains(textLower, "location") {
		if containsAny(textLower, caseMarkerRes...) || agencyCaseRe.MatchString(textLower) {
			return "evidence-photo"
		}
	}

	if textLen < 100 && containsAny(textLower, "photo", "image", "picture", "photograph") {
		return "case-photo"
	}

	if textLen < 150 && containsAny(textLower, "handwritten", "written by hand", "manuscript", "scrawl") {
		return "handwritten-note"
	}

	if strings.Contains(textLower, "flight") && containsAny(textLower, "log", "manifest") {
		return "flight-log"
	}
	if strings.Contains(textLower, "tail number") ||
		(strings.Contains(textLower, "aircraft") && strings.Contains(textLower, "date")) {
		return "flight-log"
	}

	if strings.Contains(textLower, "evidence") && containsAny(textLower, "list", "index") {
		return "evidence-list"
	}
	if containsAny(titleLower, "evidence", "exhibit") && strings.Contains(titleLower, "list") {
		return "evidence-list"
	}

	if containsAny(textLower, "plaintiff", "defendant", "united states district court", "docket") {
		return "legal-filing"
	}

	if containsAny(textLower, "dear ", "sincerely", "regards", "cc:") {
		return "correspondence"
	}

	if strings.Contains(textLower, "memorandum") || strings.Contains(titleLower, "memo") ||
		strings.HasPrefix(strings.TrimSpace(textLower), "to:") ||
		strings.HasPrefix(strings.TrimSpace(textLower), "from:") {
		return "memorandum"
	}

	if containsAny(titleLower, "report", "analysis", "summary") ||
		containsAny(textLower, "findings", "investigation") {
		return "report"
	}

	// Fallback: image PDFs with almost no text get the generic bucket
	// rather than staying uncategorised.
	if textLen < lowTextThreshold {
		return "scanned-document"
	}
	return ""
}

func containsAny(haystack string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func countHits(haystack string, needles []string) int {
	hits := 0
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			hits++
		}
	}
	return hits
}
