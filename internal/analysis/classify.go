// Package analysis implements the document analysis pipeline: PDF
// extractability classification, embedded text extraction, text quality
// scoring and adaptive OCR orchestration. Classification and scoring
// are pure functions of their inputs so re-runs are deterministic.
package analysis

import (
	"strings"

	"github.com/archivelab/papertrail/internal/core/domain"
)

// Classification thresholds. Character counts refer to trimmed
// embedded text; density is characters per KB of file size.
const (
	// imageMaxChars: below this the document is image-only.
	imageMaxChars = 100

	// textMinChars: above this the document is text-based unless its
	// density says otherwise.
	textMinChars = 1000

	// densityHybridMax: a long-text document below this density still
	// carries substantial image content.
	densityHybridMax = 10.0

	// densityImageMax and densityTextMin bound the ambiguous band.
	densityImageMax = 5.0
	densityTextMin  = 15.0
)

// Thresholds carry the classification cutoffs. The zero value of any
// field falls back to the default for that field, so partially
// configured thresholds stay sane.
type Thresholds struct {
	ImageMaxChars    int
	TextMinChars     int
	DensityHybridMax float64
	DensityImageMax  float64
	DensityTextMin   float64
}

// DefaultThresholds returns the built-in cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ImageMaxChars:    imageMaxChars,
		TextMinChars:     textMinChars,
		DensityHybridMax: densityHybridMax,
		DensityImageMax:  densityImageMax,
		DensityTextMin:   densityTextMin,
	}
}

func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.ImageMaxChars <= 0 {
		t.ImageMaxChars = d.ImageMaxChars
	}
	if t.TextMinChars <= 0 {
		t.TextMinChars = d.TextMinChars
	}
	if t.DensityHybridMax <= 0 {
		t.DensityHybridMax = d.DensityHybridMax
	}
	if t.DensityImageMax <= 0 {
		t.DensityImageMax = d.DensityImageMax
	}
	if t.DensityTextMin <= 0 {
		t.DensityTextMin = d.DensityTextMin
	}
	return t
}

// Classify determines how text can be extracted from a document by
// sampling embedded-text length against file size.
func (t Thresholds) Classify(embeddedText string, fileSize int64) PDFTypeResult {
	t = t.withDefaults()
	textLen := len(strings.TrimSpace(embeddedText))
	density := charsPerKB(textLen, fileSize)

	var pt domain.PDFType
	switch {
	case textLen < t.ImageMaxChars:
		pt = domain.PDFImage
	case textLen > t.TextMinChars:
		if density < t.DensityHybridMax {
			pt = domain.PDFHybrid
		} else {
			pt = domain.PDFText
		}
	case density < t.DensityImageMax:
		pt = domain.PDFImage
	case density > t.DensityTextMin:
		pt = domain.PDFText
	default:
		pt = domain.PDFHybrid
	}

	return PDFTypeResult{
		Type:               pt,
		EmbeddedTextLength: textLen,
		CharsPerKB:         density,
	}
}

// ClassifyPDF classifies with the default thresholds.
func ClassifyPDF(embeddedText string, fileSize int64) PDFTypeResult {
	return DefaultThresholds().Classify(embeddedText, fileSize)
}

// PDFTypeResult is the classification outcome with its inputs, kept
// for run reports.
type PDFTypeResult struct {
	Type               domain.PDFType
	EmbeddedTextLength int
	CharsPerKB         float64
}

func charsPerKB(textLen int, fileSize int64) float64 {
	if fileSize <= 0 {
		return 0
	}
	return float64(textLen) / (float64(fileSize) / 1024.0)
}
