package analysis

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/logger"
)

// EmbeddedText holds the text layer sampled from a PDF.
type EmbeddedText struct {
	// Text is the concatenated embedded text, capped at maxChars.
	Text string

	// Pages is the page count.
	Pages int

	// Truncated reports whether the cap was hit.
	Truncated bool
}

// ExtractEmbeddedText reads the embedded text layer of a PDF without
// OCR. A PDF that cannot be parsed at all yields ErrCorruptArtifact; a
// parseable PDF with no text layer yields empty text and no error, so
// classification can route it to OCR.
func ExtractEmbeddedText(path string, maxChars int) (*EmbeddedText, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening pdf: %v", domain.ErrCorruptArtifact, err)
	}
	defer f.Close()

	result := &EmbeddedText{Pages: reader.NumPage()}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := pageText(page)
		if err != nil {
			// a single unreadable page never fails the document
			logger.Debug("page %d of %s unreadable: %v", pageNum, path, err)
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")

		if maxChars > 0 && b.Len() >= maxChars {
			result.Truncated = true
			break
		}
	}

	text := b.String()
	if maxChars > 0 && len(text) > maxChars {
		text = text[:maxChars]
	}
	result.Text = text
	return result, nil
}

// pageText extracts one page's text, recovering from parser panics the
// pdf library throws on malformed content streams.
func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	text, err = page.GetPlainText(nil)
	return text, err
}
