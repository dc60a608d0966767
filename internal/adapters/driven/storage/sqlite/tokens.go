package sqlite

import (
	"strings"
	"unicode"
)

// tokenise lowercases text and counts alphanumeric tokens at least
// minTokenLength runes long.
func (idx *Index) tokenise(text string) map[string]int {
	counts := make(map[string]int)
	for _, token := range splitTokens(text) {
		if len(token) < idx.minTokenLength {
			continue
		}
		counts[token]++
	}
	return counts
}

// queryTokens returns the distinct tokens of a query, in order.
func (idx *Index) queryTokens(query string) []string {
	var tokens []string
	seen := make(map[string]bool)
	for _, token := range splitTokens(query) {
		if len(token) < idx.minTokenLength || seen[token] {
			continue
		}
		seen[token] = true
		tokens = append(tokens, token)
	}
	return tokens
}

func splitTokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// snippet extracts a short excerpt around the first query token found
// in content.
func snippet(content string, queryTokens []string) string {
	if content == "" {
		return ""
	}
	lower := strings.ToLower(content)
	pos := -1
	for _, token := range queryTokens {
		if i := strings.Index(lower, token); i >= 0 && (pos < 0 || i < pos) {
			pos = i
		}
	}
	if pos < 0 {
		pos = 0
	}

	start := pos - snippetRadius
	if start < 0 {
		start = 0
	}
	end := pos + snippetRadius
	if end > len(content) {
		end = len(content)
	}

	excerpt := strings.TrimSpace(strings.Join(strings.Fields(content[start:end]), " "))
	if start > 0 {
		excerpt = "…" + excerpt
	}
	if end < len(content) {
		excerpt += "…"
	}
	return excerpt
}

// withinEditDistanceOne reports whether a and b differ by at most one
// insertion, deletion or substitution.
func withinEditDistanceOne(a, b string) bool {
	if a == b {
		return true
	}
	la, lb := len(a), len(b)
	if la-lb > 1 || lb-la > 1 {
		return false
	}
	if la > lb {
		a, b = b, a
		la, lb = lb, la
	}

	// a is the shorter (or equal) string
	i, j := 0, 0
	edits := 0
	for i < la && j < lb {
		if a[i] == b[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if la == lb {
			i++
		}
		j++
	}
	if j < lb || i < la {
		edits++
	}
	return edits <= 1
}
