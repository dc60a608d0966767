// Package ocr orchestrates adaptive OCR: DPI selection from page
// geometry, image preprocessing strategies, multi-pass recognition with
// confidence scoring and early exit. Rendering and recognition go
// through the driven ports so the strategy logic is testable without
// external tools installed.
package ocr

// Page-area bands (pixels at the 72 DPI reference render) and the DPI
// chosen for each. Larger pages need more dots for legible characters.
const (
	smallPageArea  = 500_000
	mediumPageArea = 1_000_000

	dpiSmall  = 200
	dpiMedium = 250
	dpiLarge  = 300

	fallbackDPI = 200
)

// DPIBands hold the DPI chosen per page-area band. Zero-valued fields
// fall back to the defaults.
type DPIBands struct {
	Small  int
	Medium int
	Large  int

	// Max caps the selected DPI. Zero means no cap.
	Max int
}

func (b DPIBands) withDefaults() DPIBands {
	if b.Small <= 0 {
		b.Small = dpiSmall
	}
	if b.Medium <= 0 {
		b.Medium = dpiMedium
	}
	if b.Large <= 0 {
		b.Large = dpiLarge
	}
	return b
}

// Select picks the render DPI from the first page's pixel dimensions
// at the reference DPI. Zero or negative dimensions fall back to the
// conservative default.
func (b DPIBands) Select(width, height int) int {
	b = b.withDefaults()
	dpi := fallbackDPI
	if width > 0 && height > 0 {
		area := width * height
		switch {
		case area < smallPageArea:
			dpi = b.Small
		case area < mediumPageArea:
			dpi = b.Medium
		default:
			dpi = b.Large
		}
	}
	if b.Max > 0 && dpi > b.Max {
		dpi = b.Max
	}
	return dpi
}

// AdaptiveDPI selects the render DPI with the default bands.
func AdaptiveDPI(width, height int) int {
	return DPIBands{}.Select(width, height)
}
