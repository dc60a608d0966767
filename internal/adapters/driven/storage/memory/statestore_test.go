package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivelab/papertrail/internal/core/domain"
)

func TestStateStoreIsolation(t *testing.T) {
	store := NewStateStore()
	ctx := context.Background()

	state := domain.NewIngestState("s1")
	state.MarkSeen("ref-1")
	require.NoError(t, store.Save(ctx, state))

	// mutating the saved state must not leak into the store
	state.MarkSeen("ref-2")

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, loaded.IsSeen("ref-1"))
	assert.False(t, loaded.IsSeen("ref-2"))
}

func TestStateStoreLoadMissing(t *testing.T) {
	store := NewStateStore()
	state, err := store.Load(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", state.SourceID)
	assert.NotNil(t, state.Seen)
}

func TestTextStoreRoundTrip(t *testing.T) {
	store := NewTextStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "doc")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Put(ctx, "doc", "body"))
	text, err := store.Get(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "body", text)
}

func TestCatalogStoreRoundTrip(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []domain.CatalogEntry{{ID: "a"}, {ID: "b"}}))
	entries, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// saved slice is copied
	entries[0].ID = "mutated"
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].ID)
}
