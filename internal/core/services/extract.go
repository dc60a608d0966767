package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/archivelab/papertrail/internal/analysis"
	"github.com/archivelab/papertrail/internal/analysis/metadata"
	"github.com/archivelab/papertrail/internal/analysis/ocr"
	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
	"github.com/archivelab/papertrail/internal/core/ports/driving"
	"github.com/archivelab/papertrail/internal/logger"
)

// Ensure ExtractPipeline implements the interface.
var _ driving.Extractor = (*ExtractPipeline)(nil)

// embeddedTextCap bounds how much embedded text is sampled per
// document before classification.
const embeddedTextCap = 2_000_000

// defaultOCRQualityThreshold is the embedded-text quality below which
// a hybrid document is routed to OCR.
const defaultOCRQualityThreshold = 30.0

// Tuning carries the configurable analysis cutoffs. Zero values keep
// the defaults.
type Tuning struct {
	Thresholds          analysis.Thresholds
	OCRQualityThreshold float64
}

// ExtractPipeline runs document analysis over every catalog entry:
// extractability classification, embedded text extraction, adaptive
// OCR when warranted, text quality scoring and heuristic metadata.
type ExtractPipeline struct {
	catalog   driven.CatalogStore
	textStore driven.TextStore
	runner    *ocr.Runner
	extractor *metadata.Extractor
	tuning    Tuning
}

// NewExtractPipeline creates the pipeline. runner may be nil when no
// OCR engine is installed; image documents then degrade to whatever
// embedded text they carry.
func NewExtractPipeline(
	catalog driven.CatalogStore,
	textStore driven.TextStore,
	runner *ocr.Runner,
	extractor *metadata.Extractor,
) *ExtractPipeline {
	if extractor == nil {
		extractor = &metadata.Extractor{}
	}
	return &ExtractPipeline{
		catalog:   catalog,
		textStore: textStore,
		runner:    runner,
		extractor: extractor,
		tuning:    Tuning{OCRQualityThreshold: defaultOCRQualityThreshold},
	}
}

// Tune overrides the analysis cutoffs. Zero-valued fields keep their
// defaults.
func (p *ExtractPipeline) Tune(t Tuning) {
	if t.OCRQualityThreshold <= 0 {
		t.OCRQualityThreshold = defaultOCRQualityThreshold
	}
	p.tuning = t
}

// Run analyses the catalog. Per-document failures are recorded and
// never abort the pass.
func (p *ExtractPipeline) Run(ctx context.Context, opts driving.ExtractOptions) (*driving.ExtractReport, error) {
	entries, err := p.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	logger.Section("Analysing %d catalog entries", len(entries))

	report := &driving.ExtractReport{}
	var pending []int
	for i := range entries {
		entry := &entries[i]

		if !isPDF(entry.FilePath) {
			continue
		}
		if entry.Extraction != nil && !opts.Force && !opts.MetadataOnly {
			continue
		}

		if opts.MetadataOnly {
			if entry.Extraction != nil {
				p.rerunMetadata(ctx, entry)
				report.Processed++
			}
			continue
		}
		pending = append(pending, i)
	}

	p.analyseAll(ctx, entries, pending, opts, report)

	if err := p.catalog.Save(ctx, entries); err != nil {
		return report, fmt.Errorf("save catalog: %w", err)
	}

	logger.Info("Analysis finished: %d processed, %d ocr, %d degraded, %d failed",
		report.Processed, report.OCRApplied, report.Degraded, report.Failed)
	return report, nil
}

// analyseAll fans the pending entries out over a CPU-sized worker
// pool. Workers own disjoint entries, so only the report is shared.
func (p *ExtractPipeline) analyseAll(
	ctx context.Context,
	entries []domain.CatalogEntry,
	pending []int,
	opts driving.ExtractOptions,
	report *driving.ExtractReport,
) {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(pending) {
		workers = len(pending)
	}
	if workers < 1 {
		return
	}

	jobs := make(chan int)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entry := &entries[i]
				outcome, err := p.analyseEntry(ctx, entry, opts)
				mu.Lock()
				switch {
				case err != nil:
					report.Failed++
					logger.Warn("Analysis of %s failed: %v", entry.ID, err)
				default:
					report.Processed++
					if outcome.ocrApplied {
						report.OCRApplied++
					}
					if outcome.degraded {
						report.Degraded++
					}
				}
				mu.Unlock()
			}
		}()
	}

	for _, i := range pending {
		if ctx.Err() != nil {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// analysisOutcome reports what a single document's analysis did.
type analysisOutcome struct {
	ocrApplied bool
	degraded   bool
}

// analyseEntry derives a fresh ExtractionResult for one document.
func (p *ExtractPipeline) analyseEntry(
	ctx context.Context,
	entry *domain.CatalogEntry,
	opts driving.ExtractOptions,
) (outcome analysisOutcome, err error) {
	embedded, err := analysis.ExtractEmbeddedText(entry.FilePath, embeddedTextCap)
	if err != nil {
		if errors.Is(err, domain.ErrCorruptArtifact) {
			// still catalogue it: unparseable PDFs get the image route
			embedded = &analysis.EmbeddedText{}
		} else {
			return outcome, err
		}
	}

	classified := p.tuning.Thresholds.Classify(embedded.Text, entry.FileSizeBytes)
	text := embedded.Text
	quality := analysis.QualityScore(text)

	result := &domain.ExtractionResult{
		DocumentID:         entry.ID,
		PDFType:            classified.Type,
		HasExtractableText: classified.Type == domain.PDFText,
	}

	if p.wantsOCR(classified.Type, quality) {
		if opts.EnableOCR && p.runner != nil && p.runner.Available() {
			ocrResult, ocrErr := p.runner.Run(ctx, entry.FilePath)
			switch {
			case ocrErr != nil:
				outcome.degraded = true
				logger.Warn("OCR of %s failed, keeping embedded text: %v", entry.ID, ocrErr)
			case analysis.QualityScore(ocrResult.Text) > quality || text == "":
				text = ocrResult.Text
				result.OCRApplied = true
				result.OCRConfidence = ocrResult.Confidence
				result.OCRStrategy = string(ocrResult.Strategy)
				if ocrResult.TotalPages > 0 {
					entry.Pages = ocrResult.TotalPages
				}
				outcome.ocrApplied = true
			default:
				// OCR ran but did not improve on the text layer
				result.OCRConfidence = ocrResult.Confidence
			}
		} else {
			outcome.degraded = true
			logger.Debug("OCR wanted for %s but unavailable", entry.ID)
		}
	}

	result.Text = text
	result.TextQualityScore = analysis.QualityScore(text)
	if embedded.Pages > 0 && entry.Pages == 0 {
		entry.Pages = embedded.Pages
	}

	p.extractor.Extract(result, entry.Title, entry.ReleaseDate)

	if err := p.textStore.Put(ctx, entry.ID, text); err != nil {
		return outcome, fmt.Errorf("store text: %w", err)
	}

	entry.Extraction = result
	entry.Tags = mergeTags(entry.Tags, result.AutoTags)
	return outcome, nil
}

// wantsOCR decides whether OCR should run: image documents always,
// hybrid ones only when the text layer scores poorly.
func (p *ExtractPipeline) wantsOCR(pdfType domain.PDFType, quality float64) bool {
	switch pdfType {
	case domain.PDFImage:
		return true
	case domain.PDFHybrid:
		return quality < p.tuning.OCRQualityThreshold
	default:
		return false
	}
}

// rerunMetadata re-derives the pure metadata fields from stored text
// without touching raw bytes or OCR.
func (p *ExtractPipeline) rerunMetadata(ctx context.Context, entry *domain.CatalogEntry) {
	text, err := p.textStore.Get(ctx, entry.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Reading derived text for %s failed: %v", entry.ID, err)
		}
		text = ""
	}
	entry.Extraction.Text = text
	p.extractor.Extract(entry.Extraction, entry.Title, entry.ReleaseDate)
	entry.Tags = mergeTags(entry.Tags, entry.Extraction.AutoTags)
}
