package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityScoreEmpty(t *testing.T) {
	assert.Zero(t, QualityScore(""))
}

func TestQualityScoreShortText(t *testing.T) {
	// 25 chars of clean letters: base 15, minor penalty for spaces
	score := QualityScore("short but readable words!")
	assert.Greater(t, score, 5.0)
	assert.Less(t, score, 30.0)
}

func TestQualityScoreCleanProse(t *testing.T) {
	sentence := "The committee reviewed the submitted evidence in detail. "
	text := strings.Repeat(sentence, 20)

	score := QualityScore(text)
	assert.Greater(t, score, 70.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestQualityScoreGibberishPenalised(t *testing.T) {
	clean := strings.Repeat("Readable sentences with normal words flow here. ", 15)
	// mid-length band: the length base stays low enough for the
	// special-character penalty to pull the score under the bar
	garbled := strings.Repeat("@#$%^&*()_+ 123 |||~~~ ", 15)

	assert.Greater(t, QualityScore(clean), QualityScore(garbled))
	assert.Less(t, QualityScore(garbled), 40.0)
}

func TestQualityScoreStable(t *testing.T) {
	text := strings.Repeat("Deterministic scoring matters for re-extraction. ", 12)
	assert.Equal(t, QualityScore(text), QualityScore(text))
}

func TestQualityScoreBounds(t *testing.T) {
	texts := []string{
		"a",
		strings.Repeat("?", 600),
		strings.Repeat("All letters and proper sentences everywhere. ", 200),
	}
	for _, text := range texts {
		score := QualityScore(text)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestAlnumYield(t *testing.T) {
	assert.Equal(t, 0, AlnumYield("!@# $%^"))
	assert.Equal(t, 10, AlnumYield("abc123 DEF7"))
}
