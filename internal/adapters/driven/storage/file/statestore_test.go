package file

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

func TestStateStoreRoundTrip(t *testing.T) {
	store := NewStateStore(t.TempDir())
	ctx := context.Background()

	state := domain.NewIngestState("press-office")
	state.Cursor = "42"
	state.MarkSeen("https://example.org/a.pdf")
	state.RecordFailure("https://example.org/b.pdf", "HTTP 500", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	state.SetValidator("https://example.org/a.pdf", `"etag-1"`, "Mon, 02 Jan 2006 15:04:05 GMT")

	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx, "press-office")
	require.NoError(t, err)
	assert.Equal(t, "42", loaded.Cursor)
	assert.True(t, loaded.IsSeen("https://example.org/a.pdf"))
	require.Contains(t, loaded.Failed, "https://example.org/b.pdf")
	assert.Equal(t, 1, loaded.Failed["https://example.org/b.pdf"].Attempts)
	assert.Equal(t, "HTTP 500", loaded.Failed["https://example.org/b.pdf"].LastError)
	validator := loaded.Validator("https://example.org/a.pdf")
	require.NotNil(t, validator)
	assert.Equal(t, `"etag-1"`, validator.ETag)
}

func TestStateStoreMissingIsFresh(t *testing.T) {
	store := NewStateStore(t.TempDir())

	state, err := store.Load(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, "never-seen", state.SourceID)
	assert.Empty(t, state.Seen)
	assert.NotNil(t, state.Seen)
	assert.NotNil(t, state.Failed)
	assert.NotNil(t, state.Validators)
}

func TestStateStoreRejectsEmptySourceID(t *testing.T) {
	store := NewStateStore(t.TempDir())
	err := store.Save(context.Background(), &domain.IngestState{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStateStoreAtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStateStore(dir)
	require.NoError(t, store.Save(context.Background(), domain.NewIngestState("s1")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s1.json", entries[0].Name())
	assert.Equal(t, filepath.Ext(entries[0].Name()), ".json")
}
