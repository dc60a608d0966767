package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
	"github.com/archivelab/papertrail/internal/core/ports/driving"
	"github.com/archivelab/papertrail/internal/logger"
)

// Ensure IngestCoordinator implements the interface.
var _ driving.Ingestor = (*IngestCoordinator)(nil)

// Retry policy for failing refs. A ref that exhausts maxFetchAttempts
// across runs is marked permanently failed.
const (
	maxFetchAttempts = 5
	retryBase        = 30 * time.Second
	retryCeiling     = 30 * time.Minute
)

// defaultWorkers bounds concurrent sources when the caller does not.
const defaultWorkers = 4

// AdapterFactory builds a discovery adapter for a source.
type AdapterFactory func(source domain.Source) (driven.SourceAdapter, error)

// IngestCoordinator runs ingestion across the configured sources. Each
// source is processed by one worker which owns that source's state
// exclusively; state is persisted after every final per-ref outcome so
// an interrupted run resumes without re-downloading.
type IngestCoordinator struct {
	sources    []domain.Source
	factory    AdapterFactory
	fetcher    driven.Fetcher
	stateStore driven.StateStore
	blobStore  driven.BlobStore
	catalog    driven.CatalogStore
	clock      driven.Clock

	// hasCookies reports whether a session cookie jar was loaded.
	// Cookie-auth sources are blocked for the run when it is false.
	hasCookies bool

	// retryCooldown caps the doubling cross-run retry schedule.
	retryCooldown time.Duration

	// catalogMu serialises catalog read-modify-write across workers.
	catalogMu sync.Mutex

	// inflight tracks URLs being fetched so the same document is never
	// processed by two source workers at once.
	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// NewIngestCoordinator creates the coordinator.
func NewIngestCoordinator(
	sources []domain.Source,
	factory AdapterFactory,
	fetcher driven.Fetcher,
	stateStore driven.StateStore,
	blobStore driven.BlobStore,
	catalog driven.CatalogStore,
	clock driven.Clock,
	hasCookies bool,
) *IngestCoordinator {
	if clock == nil {
		clock = driven.SystemClock{}
	}
	return &IngestCoordinator{
		sources:       sources,
		factory:       factory,
		fetcher:       fetcher,
		stateStore:    stateStore,
		blobStore:     blobStore,
		catalog:       catalog,
		clock:         clock,
		hasCookies:    hasCookies,
		retryCooldown: retryCeiling,
		inflight:      make(map[string]struct{}),
	}
}

// SetRetryCooldown caps the cross-run retry delay for failing refs.
func (c *IngestCoordinator) SetRetryCooldown(d time.Duration) {
	if d > 0 {
		c.retryCooldown = d
	}
}

// runBudget carries the run-wide limits shared by all workers.
type runBudget struct {
	deadline   time.Time
	maxBytes   int64
	bytesSoFar atomic.Int64
	exhausted  atomic.Bool
}

// expired reports whether the run should stop between items.
func (b *runBudget) expired(now time.Time) bool {
	if !b.deadline.IsZero() && now.After(b.deadline) {
		b.exhausted.Store(true)
		return true
	}
	if b.maxBytes > 0 && b.bytesSoFar.Load() >= b.maxBytes {
		b.exhausted.Store(true)
		return true
	}
	return false
}

// Run ingests the selected sources. Per-item failures never abort the
// run; they are recorded in per-source state and the report.
func (c *IngestCoordinator) Run(ctx context.Context, opts driving.IngestOptions) (*domain.RunReport, error) {
	selected, err := c.selectSources(opts.SourceIDs)
	if err != nil {
		return nil, err
	}

	report := &domain.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: c.clock.Now().UTC(),
		Sources:   make([]domain.SourceReport, len(selected)),
	}

	budget := &runBudget{maxBytes: opts.MaxBytesPerRun}
	if opts.TimeBudget > 0 {
		budget.deadline = report.StartedAt.Add(opts.TimeBudget)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(selected) {
		workers = len(selected)
	}

	logger.Section("Ingestion run %s: %d sources, %d workers", report.RunID, len(selected), workers)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report.Sources[i] = c.runSource(ctx, selected[i], opts, budget)
			}
		}()
	}
	for i := range selected {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	report.FinishedAt = c.clock.Now().UTC()
	report.BudgetExhausted = budget.exhausted.Load()

	stored, skipped, failed := report.Totals()
	logger.Info("Run %s finished: %d stored, %d skipped, %d failed", report.RunID, stored, skipped, failed)
	return report, nil
}

func (c *IngestCoordinator) selectSources(ids []string) ([]domain.Source, error) {
	if len(ids) == 0 {
		return c.sources, nil
	}
	byID := make(map[string]domain.Source, len(c.sources))
	for _, s := range c.sources {
		byID[s.ID] = s
	}
	out := make([]domain.Source, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown source %q", domain.ErrNotFound, id)
		}
		out = append(out, s)
	}
	return out, nil
}

// runSource ingests one source end to end.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (c *IngestCoordinator) runSource(
	ctx context.Context,
	source domain.Source,
	opts driving.IngestOptions,
	budget *runBudget,
) domain.SourceReport {
	report := domain.SourceReport{SourceID: source.ID}

	if source.AuthMode == domain.AuthCookie && !c.hasCookies {
		report.Blocked = true
		report.Reason = "cookie jar missing or expired"
		logger.Warn("Source %s blocked: %s", source.ID, report.Reason)
		return report
	}

	state, err := c.stateStore.Load(ctx, source.ID)
	if err != nil {
		report.Blocked = true
		report.Reason = fmt.Sprintf("load state: %v", err)
		return report
	}

	adapter, err := c.factory(source)
	if err != nil {
		report.Blocked = true
		report.Reason = fmt.Sprintf("create adapter: %v", err)
		return report
	}
	defer adapter.Close()

	if err := adapter.Validate(ctx); err != nil {
		report.Blocked = true
		report.Reason = fmt.Sprintf("validate: %v", err)
		logger.Warn("Source %s failed validation: %v", source.ID, err)
		return report
	}

	deadline := time.Time{}
	if source.TimeBudget > 0 {
		deadline = c.clock.Now().Add(source.TimeBudget)
	}

	logger.Info("Discovering %s from cursor %q", source.ID, state.Cursor)
	candidates, errs := adapter.Discover(ctx, state.Cursor)

	for candidates != nil || errs != nil {
		select {
		case <-ctx.Done():
			c.flushState(ctx, state)
			return report

		case ref, ok := <-candidates:
			if !ok {
				candidates = nil
				continue
			}
			now := c.clock.Now()
			if budget.expired(now) || (!deadline.IsZero() && now.After(deadline)) {
				budget.exhausted.Store(true)
				c.flushState(ctx, state)
				return report
			}
			if opts.MaxDownloadsPerSource > 0 && report.Stored >= opts.MaxDownloadsPerSource {
				c.flushState(ctx, state)
				return report
			}
			report.Discovered++
			blocked := c.processRef(ctx, &source, state, ref, &report, budget)
			if blocked {
				c.flushState(ctx, state)
				return report
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if done, isDone := driven.IsDiscoverComplete(err); isDone {
				state.Cursor = done.NewCursor
				continue
			}
			logger.Warn("Discovery error on %s: %v", source.ID, err)
		}
	}

	c.flushState(ctx, state)
	return report
}

// processRef drives one candidate to a final status. Returns true when
// the whole source must stop (authentication required).
func (c *IngestCoordinator) processRef(
	ctx context.Context,
	source *domain.Source,
	state *domain.IngestState,
	ref domain.CandidateRef,
	report *domain.SourceReport,
	budget *runBudget,
) (blocked bool) {
	if state.IsSeen(ref.Ref) {
		report.Skipped++
		return false
	}
	if failed := state.Failed[ref.Ref]; failed != nil {
		if failed.Permanent {
			report.Skipped++
			return false
		}
		if failed.NextRetryAt.After(c.clock.Now()) {
			report.Retrying++
			return false
		}
	}

	if !c.acquireRef(ref.URL) {
		// another source worker is fetching this document right now
		report.Skipped++
		logger.Debug("Ref %s already in flight, skipping", ref.Ref)
		return false
	}
	defer c.releaseRef(ref.URL)

	if c.probeRejects(ctx, source, ref) {
		state.MarkSeen(ref.Ref)
		report.Skipped++
		c.flushState(ctx, state)
		return false
	}

	result, err := c.fetcher.Fetch(ctx, source, ref, state.Validator(ref.URL))
	if err != nil {
		return c.recordFetchError(ctx, source, state, ref, report, err)
	}

	if result.NotModified {
		state.MarkSeen(ref.Ref)
		state.ClearFailure(ref.Ref)
		report.Skipped++
		c.flushState(ctx, state)
		return false
	}

	doc, created, err := c.blobStore.Store(ctx, result.Path, ref.Title, source.ID)
	if err != nil {
		return c.recordFetchError(ctx, source, state, ref, report, err)
	}

	state.MarkSeen(ref.Ref)
	state.ClearFailure(ref.Ref)
	state.SetValidator(ref.URL, result.ETag, result.LastModified)
	budget.bytesSoFar.Add(result.Size)
	report.BytesFetched += result.Size

	if err := c.upsertCatalogEntry(ctx, source, ref, doc); err != nil {
		logger.Warn("Catalog update for %s failed: %v", doc.ID, err)
	}

	if created {
		report.Stored++
		logger.Debug("Stored %s (%d bytes) from %s", doc.ID, doc.ByteSize, ref.Ref)
	} else {
		report.Skipped++
		logger.Debug("Deduplicated %s from %s", doc.ID, ref.Ref)
	}

	c.flushState(ctx, state)
	return false
}

// acquireRef claims a URL for fetching. Returns false when another
// worker already holds it.
func (c *IngestCoordinator) acquireRef(url string) bool {
	c.inflightMu.Lock()
	defer c.inflightMu.Unlock()
	if _, busy := c.inflight[url]; busy {
		return false
	}
	c.inflight[url] = struct{}{}
	return true
}

func (c *IngestCoordinator) releaseRef(url string) {
	c.inflightMu.Lock()
	delete(c.inflight, url)
	c.inflightMu.Unlock()
}

// probeRejects HEAD-probes extension-less links on sources with an
// extension filter. A probe failure never rejects; the GET decides.
func (c *IngestCoordinator) probeRejects(ctx context.Context, source *domain.Source, ref domain.CandidateRef) bool {
	if len(source.AllowedExtensions) == 0 {
		return false
	}
	u, err := url.Parse(ref.URL)
	if err != nil || path.Ext(u.Path) != "" {
		return false
	}
	contentType, err := c.fetcher.Probe(ctx, source, ref.URL)
	if err != nil {
		logger.Debug("HEAD probe of %s failed: %v", ref.URL, err)
		return false
	}
	ext := extensionForContentType(contentType)
	if ext == "" {
		return false
	}
	if !source.AllowsExtension(ext) {
		logger.Debug("Skipping %s: content type %s not in extension filter", ref.Ref, contentType)
		return true
	}
	return false
}

// recordFetchError classifies a failure, updates retry bookkeeping and
// reports whether the source must stop.
func (c *IngestCoordinator) recordFetchError(
	ctx context.Context,
	source *domain.Source,
	state *domain.IngestState,
	ref domain.CandidateRef,
	report *domain.SourceReport,
	err error,
) (blocked bool) {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		report.Blocked = true
		report.Reason = err.Error()
		logger.Warn("Source %s requires authentication, stopping: %v", source.ID, err)
		return true

	case errors.Is(err, domain.ErrPermanentSource):
		state.RecordPermanentFailure(ref.Ref, err.Error())
		report.Failed++

	default:
		attempts := 1
		if f := state.Failed[ref.Ref]; f != nil {
			attempts = f.Attempts + 1
		}
		if attempts >= maxFetchAttempts {
			state.RecordPermanentFailure(ref.Ref, err.Error())
			report.Failed++
			logger.Warn("Ref %s exhausted retries: %v", ref.Ref, err)
		} else {
			next := c.clock.Now().Add(c.retryDelay(attempts))
			state.RecordFailure(ref.Ref, err.Error(), next)
			report.Retrying++
			logger.Debug("Ref %s attempt %d failed, retry after %s: %v", ref.Ref, attempts, next.Format(time.RFC3339), err)
		}
	}

	c.flushState(ctx, state)
	return false
}

// retryDelay doubles per attempt up to the cooldown ceiling, without
// jitter so the persisted schedule stays explainable.
func (c *IngestCoordinator) retryDelay(attempt int) time.Duration {
	ceiling := c.retryCooldown
	if ceiling <= 0 {
		ceiling = retryCeiling
	}
	d := retryBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	return d
}

// upsertCatalogEntry merges a stored document into the catalog: a new
// entry for a new hash, an extra source ref and tags for a dedup hit.
func (c *IngestCoordinator) upsertCatalogEntry(
	ctx context.Context,
	source *domain.Source,
	ref domain.CandidateRef,
	doc *domain.RawDocument,
) error {
	c.catalogMu.Lock()
	defer c.catalogMu.Unlock()

	entries, err := c.catalog.Load(ctx)
	if err != nil {
		return err
	}

	releaseDate := ref.ReleaseDate
	if releaseDate == "" {
		releaseDate = source.ReleaseDate
	}
	title := ref.Title
	if title == "" {
		title = ref.Ref
	}

	for i := range entries {
		if entries[i].SHA256 != doc.ContentHash {
			continue
		}
		entries[i].EnsureSource(source.Name, ref.URL)
		entries[i].Tags = mergeTags(entries[i].Tags, source.Tags, ref.Tags)
		return c.catalog.Save(ctx, entries)
	}

	entry := domain.CatalogEntry{
		ID:            doc.ID,
		Title:         title,
		SourceID:      source.ID,
		SourceName:    source.Name,
		SourceURL:     ref.URL,
		ReleaseDate:   releaseDate,
		DownloadedAt:  doc.RetrievedAt,
		SHA256:        doc.ContentHash,
		FilePath:      doc.RawPath,
		MIMEType:      mimeFromPath(doc.RawPath),
		FileSizeBytes: doc.ByteSize,
		Tags:          mergeTags(nil, source.Tags, ref.Tags),
	}
	entry.EnsureSource(source.Name, ref.URL)
	return c.catalog.Save(ctx, append(entries, entry))
}

// flushState persists per-source state; failures are logged, never
// fatal, since the worst case is re-checking refs next run.
func (c *IngestCoordinator) flushState(ctx context.Context, state *domain.IngestState) {
	if err := c.stateStore.Save(ctx, state); err != nil {
		logger.Warn("Persisting state for %s failed: %v", state.SourceID, err)
	}
}
