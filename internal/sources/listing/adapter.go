// Package listing implements the source adapter for a single HTML page
// of document links.
package listing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
	"github.com/archivelab/papertrail/internal/sources/htmllink"
)

// Ensure Adapter implements the interface.
var _ driven.SourceAdapter = (*Adapter)(nil)

// Adapter discovers documents from one HTML listing page.
type Adapter struct {
	source domain.Source
	client *http.Client
	ua     string

	mu     sync.Mutex
	closed bool
}

// New creates a listing adapter.
func New(source domain.Source, client *http.Client, userAgent string) *Adapter {
	return &Adapter{source: source, client: client, ua: userAgent}
}

// Kind returns the adapter kind identifier.
func (a *Adapter) Kind() domain.SourceKind { return domain.KindListing }

// SourceID returns the source identifier.
func (a *Adapter) SourceID() string { return a.source.ID }

// Capabilities returns the adapter's capabilities.
func (a *Adapter) Capabilities() driven.AdapterCapabilities {
	return driven.AdapterCapabilities{
		SupportsCursor:  false, // the page is re-read every run; dedup is the seen set's job
		RequiresNetwork: true,
	}
}

// Validate checks the listing page is reachable.
func (a *Adapter) Validate(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return domain.ErrAdapterClosed
	}
	a.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, a.source.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", a.ua)
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: listing returned %d", domain.ErrTransient, resp.StatusCode)
	}
	return nil
}

// Discover streams the page's document links.
func (a *Adapter) Discover(ctx context.Context, _ string) (<-chan domain.CandidateRef, <-chan error) {
	refs := make(chan domain.CandidateRef)
	errs := make(chan error, 1)

	go func() {
		defer close(refs)
		defer close(errs)

		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			errs <- domain.ErrAdapterClosed
			return
		}
		a.mu.Unlock()

		links, err := a.fetchLinks(ctx, a.source.BaseURL)
		if err != nil {
			errs <- err
			return
		}

		for _, link := range links {
			ext := htmllink.Extension(link.URL)
			// Links with a disallowed extension are dropped here;
			// extensionless links pass through for the coordinator's
			// HEAD probe.
			if ext != "" && !a.source.AllowsExtension(ext) {
				continue
			}

			title := link.Text
			if title == "" {
				title = htmllink.FileName(link.URL)
			}

			select {
			case <-ctx.Done():
				return
			case refs <- domain.CandidateRef{
				Ref:         link.URL,
				URL:         link.URL,
				Title:       title,
				ReleaseDate: a.source.ReleaseDate,
				Tags:        a.source.Tags,
			}:
			}
		}
	}()

	return refs, errs
}

// Close releases resources.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

// fetchLinks downloads and parses one listing page.
func (a *Adapter) fetchLinks(ctx context.Context, pageURL string) ([]htmllink.Link, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", a.ua)
	if a.source.Referer != "" {
		req.Header.Set("Referer", a.source.Referer)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: listing returned %d", domain.ErrTransient, resp.StatusCode)
	}

	links, err := htmllink.Parse(base, resp.Body)
	if err != nil {
		// A page that does not parse is a non-fatal skip for the
		// source, with the reason preserved.
		return nil, fmt.Errorf("%w: malformed listing: %v", domain.ErrInvalidInput, err)
	}
	return links, nil
}
