// Package fetch implements the HTTP client used by the ingestion
// coordinator: conditional requests, capped exponential backoff with
// Retry-After support, per-source rate limiting and download integrity
// checks.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
	"github.com/archivelab/papertrail/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Fetcher = (*Client)(nil)

// Options configure a Client.
type Options struct {
	// UserAgent is sent on every request.
	UserAgent string

	// Timeout bounds a single request.
	Timeout time.Duration

	// RetryMax is the attempt ceiling per fetch.
	RetryMax int

	// BackoffBase and BackoffCap shape the retry schedule.
	BackoffBase time.Duration
	BackoffCap  time.Duration

	// Jar carries session cookies for cookie-auth sources. Optional.
	Jar http.CookieJar

	// TempDir receives in-flight downloads. Defaults to os.TempDir().
	TempDir string

	// Sleep waits between retries. Injectable for tests; defaults to a
	// context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Client fetches candidate refs. Safe for concurrent use; each source
// gets its own rate limiter.
type Client struct {
	opts Options
	http *http.Client

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient creates a fetch client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.RetryMax <= 0 {
		opts.RetryMax = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	if opts.BackoffCap <= 0 {
		opts.BackoffCap = time.Minute
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepCtx
	}
	return &Client{
		opts: opts,
		http: &http.Client{
			Timeout: opts.Timeout,
			Jar:     opts.Jar,
		},
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch downloads one candidate ref, classifying failures with the
// domain sentinels.
func (c *Client) Fetch(
	ctx context.Context,
	source *domain.Source,
	ref domain.CandidateRef,
	validator *domain.CachedValidator,
) (*driven.FetchResult, error) {
	if source.Kind == domain.KindDropFolder {
		return c.fetchLocal(ref)
	}

	var lastErr error
	for attempt := 1; attempt <= c.opts.RetryMax; attempt++ {
		if err := c.waitRate(ctx, source); err != nil {
			return nil, err
		}

		result, retry, err := c.fetchOnce(ctx, source, ref, validator)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retry || attempt == c.opts.RetryMax {
			break
		}

		delay := Delay(attempt, c.opts.BackoffBase, c.opts.BackoffCap)
		if ra, ok := retryAfterFromErr(err); ok && ra > delay {
			delay = ra
		}
		logger.Debug("retrying %s in %s (attempt %d): %v", ref.Ref, delay, attempt, err)
		if err := c.opts.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// Probe issues a HEAD request and returns the reported content type.
func (c *Client) Probe(ctx context.Context, source *domain.Source, url string) (string, error) {
	if err := c.waitRate(ctx, source); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	c.setHeaders(req, source)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return "", err
	}
	return resp.Header.Get("Content-Type"), nil
}

// fetchOnce performs a single attempt. retry reports whether the error
// is worth another attempt.
func (c *Client) fetchOnce(
	ctx context.Context,
	source *domain.Source,
	ref domain.CandidateRef,
	validator *domain.CachedValidator,
) (result *driven.FetchResult, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	c.setHeaders(req, source)
	if validator != nil {
		if validator.ETag != "" {
			req.Header.Set("If-None-Match", validator.ETag)
		}
		if validator.LastModified != "" {
			req.Header.Set("If-Modified-Since", validator.LastModified)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and connection resets are transient.
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, true, fmt.Errorf("%w: %v", domain.ErrTransient, err)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, false, err
		}
		return nil, true, fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &driven.FetchResult{NotModified: true}, false, nil
	}

	if Retryable(resp.StatusCode) {
		err := fmt.Errorf("%w: status %d", domain.ErrTransient, resp.StatusCode)
		if ra, ok := RetryAfter(resp); ok {
			err = &retryAfterError{err: err, after: ra}
		}
		return nil, true, err
	}
	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, false, err
	}

	tmp, err := os.CreateTemp(c.opts.TempDir, "papertrail-dl-*")
	if err != nil {
		return nil, false, fmt.Errorf("create temp file: %w", err)
	}
	written, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp.Name())
		return nil, true, fmt.Errorf("%w: %v", domain.ErrTransient, errors.Join(copyErr, closeErr))
	}

	// A truncated body is discarded, never admitted as a RawDocument.
	if resp.ContentLength > 0 && written != resp.ContentLength {
		os.Remove(tmp.Name())
		return nil, true, fmt.Errorf("%w: got %d bytes, want %d",
			domain.ErrCorruptArtifact, written, resp.ContentLength)
	}

	return &driven.FetchResult{
		Path:         tmp.Name(),
		Size:         written,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, false, nil
}

// fetchLocal copies a drop-folder file to the temp dir so the caller
// can move it into raw storage without disturbing the original.
func (c *Client) fetchLocal(ref domain.CandidateRef) (*driven.FetchResult, error) {
	src, err := os.Open(ref.URL)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrPermanentSource, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(c.opts.TempDir, "papertrail-dl-*"+filepath.Ext(ref.URL))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	written, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("copy local file: %w", err)
	}
	return &driven.FetchResult{Path: tmp.Name(), Size: written}, nil
}

// setHeaders applies the browser-like defaults plus the per-source
// referer.
func (c *Client) setHeaders(req *http.Request, source *domain.Source) {
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if source.Referer != "" {
		req.Header.Set("Referer", source.Referer)
	}
}

// waitRate blocks on the source's rate limiter.
func (c *Client) waitRate(ctx context.Context, source *domain.Source) error {
	if source.RequestsPerSecond <= 0 {
		return nil
	}
	c.mu.Lock()
	limiter, ok := c.limiters[source.ID]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(source.RequestsPerSecond), 1)
		c.limiters[source.ID] = limiter
	}
	c.mu.Unlock()
	return limiter.Wait(ctx)
}

// classifyStatus maps non-retryable statuses to domain sentinels.
func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", domain.ErrAuthRequired, status)
	case status == http.StatusNotFound || status == http.StatusGone:
		return fmt.Errorf("%w: status %d", domain.ErrPermanentSource, status)
	default:
		return fmt.Errorf("%w: unexpected status %d", domain.ErrTransient, status)
	}
}

// retryAfterError carries a server-requested delay through the retry
// loop.
type retryAfterError struct {
	err   error
	after time.Duration
}

func (e *retryAfterError) Error() string { return e.err.Error() }
func (e *retryAfterError) Unwrap() error { return e.err }

func retryAfterFromErr(err error) (time.Duration, bool) {
	var ra *retryAfterError
	if errors.As(err, &ra) {
		return ra.after, true
	}
	return 0, false
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
