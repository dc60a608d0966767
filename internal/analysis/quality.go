package analysis

import (
	"math"
	"strings"
	"unicode"
)

// QualityScore rates extracted text in [0,100]. It is a pure function
// of the text: length bands set the base score, a high ratio of
// non-letter characters is penalised, and plausible sentence structure
// earns a small bonus. Downstream re-extraction decisions depend on the
// score being stable for identical input.
func QualityScore(text string) float64 {
	if text == "" {
		return 0
	}

	textLen := len(strings.TrimSpace(text))

	var base float64
	switch {
	case textLen < 50:
		base = float64(textLen) / 50 * 30
	case textLen < 500:
		base = 30 + (float64(textLen-50)/450)*40
	default:
		base = 70 + math.Min((float64(textLen-500)/5000)*30, 30)
	}

	alpha := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	specialRatio := 1 - float64(alpha)/math.Max(float64(textLen), 1)
	penalty := specialRatio * 30

	sentences := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
	if sentences > 0 {
		wordsPerSentence := float64(len(strings.Fields(text))) / float64(sentences)
		if wordsPerSentence > 5 && wordsPerSentence < 40 {
			base += 10
		}
	}

	score := base - penalty
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return math.Round(score*10) / 10
}

// AlnumYield counts the alphanumeric characters in text. Competing OCR
// passes are compared by yield, not raw length, so a pass full of
// punctuation noise never wins.
func AlnumYield(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
