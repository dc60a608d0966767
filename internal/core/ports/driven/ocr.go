package driven

import "context"

// PageRenderer rasterises PDF pages to images for OCR.
type PageRenderer interface {
	// PageSize returns the pixel dimensions of the first page rendered
	// at a reference DPI, used for adaptive DPI selection.
	PageSize(ctx context.Context, pdfPath string) (width, height int, err error)

	// Render rasterises up to maxPages pages at the given DPI and
	// returns the image file paths in page order. The caller removes
	// the files when done.
	Render(ctx context.Context, pdfPath string, dpi, maxPages int) ([]string, error)
}

// OCREngine recognises text in a rendered page image.
type OCREngine interface {
	// Available reports whether the engine can run on this host.
	Available() bool

	// Recognize returns the page text and the mean per-word confidence
	// in [0,100]. A crash or timeout is returned as an error and never
	// aborts the batch; the caller records it per-document.
	Recognize(ctx context.Context, imagePath string) (text string, confidence float64, err error)
}
