// Package paginated implements the source adapter for numbered
// sequences of HTML list pages.
package paginated

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
	"github.com/archivelab/papertrail/internal/sources/htmllink"
)

var _ driven.SourceAdapter = (*Adapter)(nil)

// Adapter walks numbered list pages until one comes back empty or
// missing. The cursor is the last fully emitted page number, so an
// interrupted run resumes on the page after it.
type Adapter struct {
	source domain.Source
	client *http.Client
	ua     string

	mu     sync.Mutex
	closed bool
}

// New creates a paginated adapter.
func New(source domain.Source, client *http.Client, userAgent string) *Adapter {
	return &Adapter{source: source, client: client, ua: userAgent}
}

func (a *Adapter) Kind() domain.SourceKind { return domain.KindPaginated }

func (a *Adapter) SourceID() string { return a.source.ID }

func (a *Adapter) Capabilities() driven.AdapterCapabilities {
	return driven.AdapterCapabilities{
		SupportsCursor:  true,
		RequiresNetwork: true,
	}
}

// Validate checks the first list page is reachable.
func (a *Adapter) Validate(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, a.pageURL(1), nil)
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
		return fmt.Errorf("%w: list page returned %d", domain.ErrTransient, resp.StatusCode)
	}
	return nil
}

// Discover streams document links page by page, starting after the
// cursor page. Completion carries the last emitted page as the new
// cursor.
func (a *Adapter) Discover(ctx context.Context, cursor string) (<-chan domain.CandidateRef, <-chan error) {
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

		start := 1
		if cursor != "" {
			last, err := strconv.Atoi(cursor)
			if err != nil {
				errs <- fmt.Errorf("%w: bad page cursor %q", domain.ErrInvalidInput, cursor)
				return
			}
			start = last + 1
		}

		emitted := start - 1
		for page := start; ; page++ {
			links, ok, err := a.fetchPage(ctx, page)
			if err != nil {
				errs <- err
				return
			}
			if !ok || len(links) == 0 {
				break
			}

			for _, link := range links {
				ext := htmllink.Extension(link.URL)
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
			emitted = page
		}

		newCursor := ""
		if emitted > 0 {
			newCursor = strconv.Itoa(emitted)
		}
		errs <- driven.DiscoverComplete{NewCursor: newCursor}
	}()

	return refs, errs
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

// pageURL builds the URL for one list page. Sources may supply an
// explicit "{page}" pattern; otherwise the page number is appended as
// a query parameter.
func (a *Adapter) pageURL(page int) string {
	n := strconv.Itoa(page)
	if a.source.Pattern != "" {
		path := strings.ReplaceAll(a.source.Pattern, "{page}", n)
		if strings.Contains(path, "://") {
			return path
		}
		return strings.TrimRight(a.source.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	}
	sep := "?"
	if strings.Contains(a.source.BaseURL, "?") {
		sep = "&"
	}
	return a.source.BaseURL + sep + "page=" + n
}

// fetchPage downloads and parses one list page. A 404 reports the end
// of the sequence rather than an error.
func (a *Adapter) fetchPage(ctx context.Context, page int) ([]htmllink.Link, bool, error) {
	pageURL := a.pageURL(page)
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", a.ua)
	if a.source.Referer != "" {
		req.Header.Set("Referer", a.source.Referer)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, nil
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("%w: page %d returned %d", domain.ErrTransient, page, resp.StatusCode)
	}

	links, err := htmllink.Parse(base, resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: malformed page %d: %v", domain.ErrInvalidInput, page, err)
	}
	return links, true, nil
}
