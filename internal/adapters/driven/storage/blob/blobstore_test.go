package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivelab/papertrail/internal/core/domain"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "download-*.pdf")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestStoreCreatesDocument(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	store := New(t.TempDir(), fixedClock{now})
	ctx := context.Background()

	doc, created, err := store.Store(ctx, writeTemp(t, "pdf bytes"), "Annual Report", "press-office")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, doc.ID, "-annual-report")
	assert.Len(t, doc.ContentHash, 64)
	assert.Equal(t, doc.ContentHash[:12]+"-annual-report", doc.ID)
	assert.Equal(t, int64(len("pdf bytes")), doc.ByteSize)
	assert.Equal(t, now, doc.RetrievedAt)
	assert.Equal(t, "press-office", doc.SourceID)

	// bytes landed where the document says
	data, err := os.ReadFile(doc.RawPath)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
	assert.Equal(t, ".pdf", filepath.Ext(doc.RawPath))
}

func TestStoreDeduplicatesByHash(t *testing.T) {
	store := New(t.TempDir(), nil)
	ctx := context.Background()

	first, created, err := store.Store(ctx, writeTemp(t, "same bytes"), "Report", "source-a")
	require.NoError(t, err)
	require.True(t, created)

	dupPath := writeTemp(t, "same bytes")
	second, created, err := store.Store(ctx, dupPath, "Different Title", "source-b")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "source-a", second.SourceID)

	// the duplicate temp file was cleaned up
	_, err = os.Stat(dupPath)
	assert.True(t, os.IsNotExist(err))

	docs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store := New(dir, nil)
	doc, _, err := store.Store(ctx, writeTemp(t, "persisted"), "Memo", "inbox")
	require.NoError(t, err)

	reopened := New(dir, nil)
	got, err := reopened.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ContentHash, got.ContentHash)
	assert.Equal(t, doc.RawPath, got.RawPath)

	// dedup index survives too
	_, created, err := reopened.Store(ctx, writeTemp(t, "persisted"), "Memo Again", "inbox")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestGetMissing(t *testing.T) {
	store := New(t.TempDir(), nil)
	_, err := store.Get(context.Background(), "no-such-doc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
