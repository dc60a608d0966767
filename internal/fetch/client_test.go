package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivelab/papertrail/internal/core/domain"
)

func noSleep(sleeps *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
}

func testSource(baseURL string) *domain.Source {
	return &domain.Source{ID: "test", Name: "Test", Kind: domain.KindListing, BaseURL: baseURL}
}

func TestClient_FetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Last-Modified", "Wed, 01 Jan 2025 00:00:00 GMT")
		_, _ = w.Write([]byte("%PDF-1.4 content"))
	}))
	defer server.Close()

	client := NewClient(Options{UserAgent: "test/1.0", TempDir: t.TempDir()})
	result, err := client.Fetch(context.Background(), testSource(server.URL),
		domain.CandidateRef{Ref: server.URL, URL: server.URL}, nil)
	require.NoError(t, err)
	assert.False(t, result.NotModified)
	assert.Equal(t, `"v1"`, result.ETag)
	assert.Equal(t, int64(16), result.Size)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 content", string(data))
	os.Remove(result.Path)
}

func TestClient_ConditionalRequestNotModified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `"v1"`, r.Header.Get("If-None-Match"))
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	client := NewClient(Options{UserAgent: "test/1.0", TempDir: t.TempDir()})
	result, err := client.Fetch(context.Background(), testSource(server.URL),
		domain.CandidateRef{Ref: server.URL, URL: server.URL},
		&domain.CachedValidator{ETag: `"v1"`})
	require.NoError(t, err)
	assert.True(t, result.NotModified)
	assert.Empty(t, result.Path)
}

func TestClient_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	var sleeps []time.Duration
	client := NewClient(Options{
		UserAgent:   "test/1.0",
		TempDir:     t.TempDir(),
		RetryMax:    3,
		BackoffBase: time.Second,
		BackoffCap:  time.Minute,
		Sleep:       noSleep(&sleeps),
	})

	result, err := client.Fetch(context.Background(), testSource(server.URL),
		domain.CandidateRef{Ref: server.URL, URL: server.URL}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, sleeps, 2)
	// Exponential: 1s then 2s.
	assert.Equal(t, time.Second, sleeps[0])
	assert.Equal(t, 2*time.Second, sleeps[1])
	os.Remove(result.Path)
}

func TestClient_RespectsRetryAfter(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "5")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	var sleeps []time.Duration
	client := NewClient(Options{
		UserAgent:   "test/1.0",
		TempDir:     t.TempDir(),
		RetryMax:    2,
		BackoffBase: time.Second,
		Sleep:       noSleep(&sleeps),
	})

	result, err := client.Fetch(context.Background(), testSource(server.URL),
		domain.CandidateRef{Ref: server.URL, URL: server.URL}, nil)
	require.NoError(t, err)
	require.Len(t, sleeps, 1)
	assert.GreaterOrEqual(t, sleeps[0], 5*time.Second)
	os.Remove(result.Path)
}

func TestClient_ClassifiesPermanentAndAuthErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrPermanentSource},
		{http.StatusGone, domain.ErrPermanentSource},
		{http.StatusForbidden, domain.ErrAuthRequired},
		{http.StatusUnauthorized, domain.ErrAuthRequired},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		var sleeps []time.Duration
		client := NewClient(Options{TempDir: t.TempDir(), Sleep: noSleep(&sleeps)})
		_, err := client.Fetch(context.Background(), testSource(server.URL),
			domain.CandidateRef{Ref: server.URL, URL: server.URL}, nil)
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
		assert.Empty(t, sleeps, "no retries for status %d", tt.status)
		server.Close()
	}
}

func TestClient_TruncatedDownloadIsCorrupt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		// Write fewer bytes than promised, then hijack to cut the
		// connection without letting net/http fix up the response.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("short"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			conn.Close()
		}
	}))
	defer server.Close()

	var sleeps []time.Duration
	client := NewClient(Options{TempDir: t.TempDir(), RetryMax: 2, Sleep: noSleep(&sleeps)})
	_, err := client.Fetch(context.Background(), testSource(server.URL),
		domain.CandidateRef{Ref: server.URL, URL: server.URL}, nil)
	assert.Error(t, err)
}

func TestClient_FetchLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("local bytes"), 0600))

	client := NewClient(Options{TempDir: t.TempDir()})
	source := &domain.Source{ID: "drop", Name: "Drop", Kind: domain.KindDropFolder, BaseURL: dir}

	result, err := client.Fetch(context.Background(), source,
		domain.CandidateRef{Ref: path, URL: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(11), result.Size)

	// Original must be untouched.
	_, err = os.Stat(path)
	assert.NoError(t, err)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, "local bytes", string(data))
	os.Remove(result.Path)
}

func TestDelay(t *testing.T) {
	base := time.Second
	ceiling := 10 * time.Second

	assert.Equal(t, time.Second, Delay(1, base, ceiling))
	assert.Equal(t, 2*time.Second, Delay(2, base, ceiling))
	assert.Equal(t, 4*time.Second, Delay(3, base, ceiling))
	assert.Equal(t, 8*time.Second, Delay(4, base, ceiling))
	assert.Equal(t, ceiling, Delay(5, base, ceiling))
	assert.Equal(t, ceiling, Delay(50, base, ceiling))
}
