package metadata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// maxDates caps the reported dates per document.
const maxDates = 20

var (
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	wordDateRe  = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})\b`)
)

var monthNumbers = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

// Dates extracts calendar dates in MM/DD/YYYY, YYYY-MM-DD and
// "Month DD, YYYY" forms, normalised to ISO 8601. Implausible
// month/day values are skipped. Sorted ascending, capped.
func Dates(text string) []string {
	found := make(map[string]bool)

	for _, g := range slashDateRe.FindAllStringSubmatch(text, -1) {
		month, _ := strconv.Atoi(g[1])
		day, _ := strconv.Atoi(g[2])
		year, _ := strconv.Atoi(g[3])
		addDate(found, year, month, day)
	}
	for _, g := range isoDateRe.FindAllStringSubmatch(text, -1) {
		year, _ := strconv.Atoi(g[1])
		month, _ := strconv.Atoi(g[2])
		day, _ := strconv.Atoi(g[3])
		addDate(found, year, month, day)
	}
	for _, g := range wordDateRe.FindAllStringSubmatch(text, -1) {
		month := monthNumbers[strings.ToLower(g[1])]
		day, _ := strconv.Atoi(g[2])
		year, _ := strconv.Atoi(g[3])
		addDate(found, year, month, day)
	}

	return capSorted(found, maxDates)
}

func addDate(found map[string]bool, year, month, day int) {
	if year < 1900 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		return
	}
	found[fmt.Sprintf("%04d-%02d-%02d", year, month, day)] = true
}
