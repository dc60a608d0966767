package metadata

import (
	"regexp"
)

// maxLocations caps the reported locations per document.
const maxLocations = 10

// cityStateRe matches "City, ST" forms, e.g. "New York, NY".
var cityStateRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*),\s*([A-Z]{2})\b`)

// streetAddressRe matches street addresses with a number, optional
// compass direction and a street-type suffix.
var streetAddressRe = regexp.MustCompile(
	`\b\d{1,5}\s+(?:East|West|North|South|E\.?|W\.?|N\.?|S\.?)?\s*` +
		`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+` +
		`(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln)\b`)

// Locations extracts location mentions: city/state pairs, street
// addresses and any knownPlaces found verbatim. Deduplicated, sorted,
// capped.
func Locations(text string, knownPlaces []string) []string {
	found := make(map[string]bool)

	for _, groups := range cityStateRe.FindAllStringSubmatch(text, -1) {
		found[groups[1]+", "+groups[2]] = true
	}
	for _, m := range streetAddressRe.FindAllString(text, -1) {
		found[m] = true
	}
	for _, place := range knownPlaces {
		if place == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(place) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			found[place] = true
		}
	}

	return capSorted(found, maxLocations)
}
