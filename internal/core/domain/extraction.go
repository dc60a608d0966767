package domain

// PDFType classifies how text can be extracted from a document.
type PDFType string

const (
	// PDFText means the document carries extractable embedded text.
	PDFText PDFType = "text"

	// PDFImage means the document is image-only and needs OCR.
	PDFImage PDFType = "image"

	// PDFHybrid means a mix of embedded text and image pages.
	PDFHybrid PDFType = "hybrid"
)

// ExtractionResult is the analysis pipeline's output for one raw
// document. It is re-derivable from the raw bytes and is not a source
// of truth; forced re-extraction regenerates it wholesale.
type ExtractionResult struct {
	// DocumentID links to the RawDocument.
	DocumentID string `json:"document_id"`

	// PDFType is the extractability classification.
	PDFType PDFType `json:"pdf_type"`

	// Text is the extracted text, after OCR when applied.
	Text string `json:"-"`

	// HasExtractableText reports whether embedded text was usable.
	HasExtractableText bool `json:"has_extractable_text"`

	// TextQualityScore rates the extracted text in [0,100]. The score
	// is a pure function of the text; downstream re-extraction
	// decisions depend on its stability.
	TextQualityScore float64 `json:"text_quality_score"`

	// OCRApplied reports whether OCR produced the final text.
	OCRApplied bool `json:"ocr_applied"`

	// OCRConfidence is the mean per-word OCR confidence in [0,100].
	// Zero with OCRApplied=false distinguishes an engine failure from
	// a processed-with-low-text document.
	OCRConfidence float64 `json:"ocr_confidence"`

	// OCRStrategy names the preprocessing strategy that won, when OCR
	// ran ("default", "high_contrast", "denoise").
	OCRStrategy string `json:"ocr_strategy,omitempty"`

	// DocumentCategory is the heuristic category slug, empty when even
	// the generic fallback cannot be justified.
	DocumentCategory string `json:"document_category,omitempty"`

	// PersonNames are confidently matched person names, sorted.
	PersonNames []string `json:"person_names"`

	// Locations are confidently matched location mentions, sorted.
	Locations []string `json:"locations"`

	// DatesISO8601 are extracted dates normalised to YYYY-MM-DD, sorted.
	DatesISO8601 []string `json:"extracted_dates"`

	// FileNumbers are strict-pattern file/document numbers, sorted.
	FileNumbers []string `json:"extracted_file_numbers"`

	// CaseNumbers are court case numbers, sorted.
	CaseNumbers []string `json:"case_numbers"`

	// ExhibitNumbers are evidence/exhibit identifiers, sorted.
	ExhibitNumbers []string `json:"exhibit_numbers,omitempty"`

	// Email carries header metadata for email and correspondence
	// documents, nil otherwise.
	Email *EmailMetadata `json:"email,omitempty"`

	// AutoTags are derived tags from category, entities and dates.
	AutoTags []string `json:"auto_tags,omitempty"`
}

// EmailMetadata is the header metadata lifted from email-like text.
// Absent headers stay empty; the extractor never guesses.
type EmailMetadata struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Subject string `json:"subject,omitempty"`
	Date    string `json:"date,omitempty"`
}
