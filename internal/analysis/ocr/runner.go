package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/archivelab/papertrail/internal/core/ports/driven"
	"github.com/archivelab/papertrail/internal/logger"
)

// Result is the outcome of adaptive OCR over one document.
type Result struct {
	// Text is the best pass's text, page-tagged and joined.
	Text string

	// Confidence is the best pass's mean per-word confidence.
	Confidence float64

	// Strategy names the winning preprocessing strategy.
	Strategy Strategy

	// DPI is the render DPI that was selected.
	DPI int

	// PagesProcessed counts pages that produced text.
	PagesProcessed int

	// TotalPages counts pages rendered.
	TotalPages int
}

// Options tune a Runner.
type Options struct {
	// MaxPages bounds rendering. Zero means all pages.
	MaxPages int

	// Multipass enables trying every preprocessing strategy.
	Multipass bool

	// EarlyExitConfidence stops the strategy loop once a pass beats it.
	EarlyExitConfidence float64

	// PageTimeout bounds one page recognition. Zero means no bound.
	PageTimeout time.Duration

	// DPI overrides the adaptive DPI bands.
	DPI DPIBands

	// MinAlnumYield is the alphanumeric character count a pass must
	// produce before the early exit applies. Zero disables the check.
	MinAlnumYield int
}

// Runner drives adaptive multi-pass OCR through the renderer and
// engine ports.
type Runner struct {
	renderer driven.PageRenderer
	engine   driven.OCREngine
	opts     Options
}

// NewRunner creates an OCR runner.
func NewRunner(renderer driven.PageRenderer, engine driven.OCREngine, opts Options) *Runner {
	if opts.EarlyExitConfidence <= 0 {
		opts.EarlyExitConfidence = 85
	}
	return &Runner{renderer: renderer, engine: engine, opts: opts}
}

// Available reports whether OCR can run on this host.
func (r *Runner) Available() bool {
	return r.engine.Available()
}

// Run performs adaptive OCR on one PDF. The DPI is selected from page
// geometry and the first pass uses the strategy the first page's
// grayscale statistics call for; when its confidence stays below the
// early-exit bar the remaining strategies are swept and the
// highest-confidence pass (ties broken by alphanumeric yield) wins.
func (r *Runner) Run(ctx context.Context, pdfPath string) (*Result, error) {
	width, height, err := r.renderer.PageSize(ctx, pdfPath)
	if err != nil {
		return nil, fmt.Errorf("measuring page: %w", err)
	}
	dpi := r.opts.DPI.Select(width, height)

	pages, err := r.renderer.Render(ctx, pdfPath, dpi, r.opts.MaxPages)
	if err != nil {
		return nil, fmt.Errorf("rendering pages: %w", err)
	}
	defer removeAll(pages)
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages rendered from %s", pdfPath)
	}

	preferred := preferredStrategy(pages[0])
	strategies := []Strategy{preferred}
	if r.opts.Multipass {
		for _, s := range Strategies {
			if s != preferred {
				strategies = append(strategies, s)
			}
		}
	}

	var best *Result
	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pass, err := r.runPass(ctx, pages, strategy)
		if err != nil {
			logger.Warn("ocr pass %s failed: %v", strategy, err)
			continue
		}
		pass.DPI = dpi
		logger.Debug("ocr pass %s: confidence %.1f over %d pages", strategy, pass.Confidence, pass.PagesProcessed)

		if best == nil || betterPass(pass, best) {
			best = pass
		}
		if best.Confidence > r.opts.EarlyExitConfidence && alnumYield(best.Text) >= r.opts.MinAlnumYield {
			break
		}
	}

	if best == nil {
		return nil, fmt.Errorf("all ocr passes failed for %s", pdfPath)
	}
	return best, nil
}

// betterPass prefers higher confidence, breaking ties by alphanumeric
// yield so a noisy pass never beats a clean one of equal confidence.
func betterPass(a, b *Result) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return alnumYield(a.Text) > alnumYield(b.Text)
}

// runPass OCRs every page with one strategy.
func (r *Runner) runPass(ctx context.Context, pages []string, strategy Strategy) (*Result, error) {
	var parts []string
	var confSum float64
	processed := 0

	for i, pagePath := range pages {
		processedPath, err := PreprocessFile(pagePath, strategy)
		if err != nil {
			logger.Debug("preprocess page %d (%s): %v", i+1, strategy, err)
			continue
		}

		text, confidence, err := r.recognize(ctx, processedPath)
		os.Remove(processedPath)
		if err != nil {
			// one bad page never aborts the pass
			logger.Debug("recognize page %d (%s): %v", i+1, strategy, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		parts = append(parts, fmt.Sprintf("[Page %d]\n%s", i+1, text))
		confSum += confidence
		processed++
	}

	result := &Result{
		Text:           strings.Join(parts, "\n\n"),
		Strategy:       strategy,
		PagesProcessed: processed,
		TotalPages:     len(pages),
	}
	if processed > 0 {
		result.Confidence = confSum / float64(processed)
	}
	return result, nil
}

func (r *Runner) recognize(ctx context.Context, imagePath string) (string, float64, error) {
	if r.opts.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.PageTimeout)
		defer cancel()
	}
	return r.engine.Recognize(ctx, imagePath)
}

func alnumYield(text string) int {
	n := 0
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			n++
		}
	}
	return n
}
