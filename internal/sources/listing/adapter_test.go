package listing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
)

const listingPage = `<html><body>
<a href="/files/report-one.pdf">Report One</a>
<a href="/files/report-two.PDF">Report Two</a>
<a href="/about.html">About</a>
<a href="#top">Top</a>
<a href="mailto:press@example.org">Contact</a>
</body></html>`

func newTestSource(baseURL string) domain.Source {
	return domain.Source{
		ID:                "press-office",
		Name:              "Press Office",
		Kind:              domain.KindListing,
		BaseURL:           baseURL,
		AuthMode:          domain.AuthNone,
		AllowedExtensions: []string{"pdf"},
		ReleaseDate:       "2024-01-15",
		Tags:              []string{"press"},
	}
}

func drain(t *testing.T, refs <-chan domain.CandidateRef, errs <-chan error) ([]domain.CandidateRef, error) {
	t.Helper()
	var out []domain.CandidateRef
	timeout := time.After(5 * time.Second)
	for refs != nil || errs != nil {
		select {
		case ref, ok := <-refs:
			if !ok {
				refs = nil
				continue
			}
			out = append(out, ref)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			return out, err
		case <-timeout:
			t.Fatal("timed out draining adapter channels")
		}
	}
	return out, nil
}

func TestDiscoverFiltersExtensions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "papertrail-test", r.Header.Get("User-Agent"))
		w.Write([]byte(listingPage))
	}))
	defer server.Close()

	adapter := New(newTestSource(server.URL), server.Client(), "papertrail-test")
	defer adapter.Close()

	refs, errs := adapter.Discover(context.Background(), "")
	got, err := drain(t, refs, errs)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, server.URL+"/files/report-one.pdf", got[0].URL)
	assert.Equal(t, "Report One", got[0].Title)
	assert.Equal(t, "2024-01-15", got[0].ReleaseDate)
	assert.Equal(t, []string{"press"}, got[0].Tags)
	// extension match is case-insensitive
	assert.Equal(t, server.URL+"/files/report-two.PDF", got[1].URL)
}

func TestDiscoverExtensionlessLinksPassThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="/records/4411">Record 4411</a>`))
	}))
	defer server.Close()

	adapter := New(newTestSource(server.URL), server.Client(), "papertrail-test")
	defer adapter.Close()

	refs, errs := adapter.Discover(context.Background(), "")
	got, err := drain(t, refs, errs)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Record 4411", got[0].Title)
}

func TestDiscoverServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter := New(newTestSource(server.URL), server.Client(), "papertrail-test")
	defer adapter.Close()

	refs, errs := adapter.Discover(context.Background(), "")
	_, err := drain(t, refs, errs)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestDiscoverAfterClose(t *testing.T) {
	adapter := New(newTestSource("http://example.invalid"), http.DefaultClient, "papertrail-test")
	require.NoError(t, adapter.Close())

	refs, errs := adapter.Discover(context.Background(), "")
	_, err := drain(t, refs, errs)
	assert.ErrorIs(t, err, domain.ErrAdapterClosed)
}

func TestValidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer server.Close()

	adapter := New(newTestSource(server.URL), server.Client(), "papertrail-test")
	defer adapter.Close()

	assert.NoError(t, adapter.Validate(context.Background()))
}

func TestCapabilities(t *testing.T) {
	adapter := New(newTestSource("http://example.org"), http.DefaultClient, "papertrail-test")
	caps := adapter.Capabilities()
	assert.False(t, caps.SupportsCursor)
	assert.True(t, caps.RequiresNetwork)
	assert.Equal(t, domain.KindListing, adapter.Kind())
	assert.Equal(t, "press-office", adapter.SourceID())

	var _ driven.SourceAdapter = adapter
}
