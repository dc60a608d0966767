package metadata

import (
	"regexp"
	"strings"
)

// maxPersonNames caps the reported names per document.
const maxPersonNames = 20

// namePattern matches two or three capitalised words.
const namePattern = `([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})`

// titledNameRes match a title or honorific followed by a name. Titles
// anchor the match so everyday capitalised phrases are not mistaken
// for people.
var titledNameRes = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:Mr|Ms|Mrs|Miss|Dr|Prof|President|Judge|Attorney|Agent|Detective|Officer)\.?\s+` + namePattern),
	regexp.MustCompile(`\b(?:Sir|Lord|Lady|Prince|Duke)\s+` + namePattern),
}

// suffixedNameRe matches a name followed by a generational or
// professional suffix.
var suffixedNameRe = regexp.MustCompile(namePattern + `\s+(?:Jr|Sr|III|IV|MD|PhD|Esq)\.?(?:\W|$)`)

// PersonNames extracts person names via title and suffix anchors, plus
// any names from knownNames found in the text. Results are
// deduplicated, sorted and capped. Pattern matching only; garbled text
// yields an empty list, never an error.
func PersonNames(text string, knownNames []string) []string {
	found := make(map[string]bool)

	for _, re := range titledNameRes {
		for _, groups := range re.FindAllStringSubmatch(text, -1) {
			found[groups[1]] = true
		}
	}
	for _, groups := range suffixedNameRe.FindAllStringSubmatch(text, -1) {
		found[groups[1]] = true
	}

	textLower := strings.ToLower(text)
	for _, name := range knownNames {
		if name != "" && strings.Contains(textLower, strings.ToLower(name)) {
			found[name] = true
		}
	}

	return capSorted(found, maxPersonNames)
}
