// Package enumerate implements the source adapter for predictable ID
// schemes, where document URLs are generated from a numeric range
// rather than discovered from a page.
package enumerate

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
	"github.com/archivelab/papertrail/internal/sources/htmllink"
)

var _ driven.SourceAdapter = (*Adapter)(nil)

// placeholderRe matches the numeric placeholder in a pattern:
// "{n}" or "{n:08}" for zero-padded width. Patterns use placeholders
// rather than printf verbs because real document URLs carry literal
// percent escapes.
var placeholderRe = regexp.MustCompile(`\{n(?::0(\d+))?\}`)

// Adapter generates candidate URLs over a bounded numeric range. The
// cursor is the last emitted number, so an interrupted run resumes at
// the number after it.
type Adapter struct {
	source domain.Source

	mu     sync.Mutex
	closed bool
}

// New creates an enumerate adapter.
func New(source domain.Source) *Adapter {
	return &Adapter{source: source}
}

func (a *Adapter) Kind() domain.SourceKind { return domain.KindEnumerate }

func (a *Adapter) SourceID() string { return a.source.ID }

func (a *Adapter) Capabilities() driven.AdapterCapabilities {
	return driven.AdapterCapabilities{
		SupportsCursor:  true,
		RequiresNetwork: true,
	}
}

// Validate checks the pattern and range are usable.
func (a *Adapter) Validate(context.Context) error {
	if !placeholderRe.MatchString(a.source.Pattern) {
		return fmt.Errorf("%w: pattern %q has no {n} placeholder", domain.ErrInvalidInput, a.source.Pattern)
	}
	if a.source.EnumerateTo < a.source.EnumerateFrom {
		return fmt.Errorf("%w: enumerate range [%d, %d] is empty",
			domain.ErrInvalidInput, a.source.EnumerateFrom, a.source.EnumerateTo)
	}
	return nil
}

// Discover streams generated refs starting after the cursor. Every run
// that reaches the end of the range reports the range bound as the new
// cursor, making re-runs no-ops until the range is widened.
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

		if err := a.Validate(ctx); err != nil {
			errs <- err
			return
		}

		start := a.source.EnumerateFrom
		if cursor != "" {
			last, err := strconv.Atoi(cursor)
			if err != nil {
				errs <- fmt.Errorf("%w: bad enumerate cursor %q", domain.ErrInvalidInput, cursor)
				return
			}
			if last+1 > start {
				start = last + 1
			}
		}

		emitted := start - 1
		for n := start; n <= a.source.EnumerateTo; n++ {
			candidateURL := a.expand(n)
			select {
			case <-ctx.Done():
				return
			case refs <- domain.CandidateRef{
				Ref:         candidateURL,
				URL:         candidateURL,
				Title:       htmllink.FileName(candidateURL),
				ReleaseDate: a.source.ReleaseDate,
				Tags:        a.source.Tags,
			}:
				emitted = n
			}
		}

		newCursor := cursor
		if emitted >= start {
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

// expand substitutes n into the pattern and joins it with the base URL.
func (a *Adapter) expand(n int) string {
	path := placeholderRe.ReplaceAllStringFunc(a.source.Pattern, func(m string) string {
		groups := placeholderRe.FindStringSubmatch(m)
		if groups[1] == "" {
			return strconv.Itoa(n)
		}
		width, _ := strconv.Atoi(groups[1])
		s := strconv.Itoa(n)
		for len(s) < width {
			s = "0" + s
		}
		return s
	})
	if strings.Contains(path, "://") {
		return path
	}
	return strings.TrimRight(a.source.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
