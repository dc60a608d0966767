package file

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivelab/papertrail/internal/core/domain"
)

func TestTextStoreRoundTrip(t *testing.T) {
	store := NewTextStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "abc123-report", "Extracted body text.\nSecond line."))

	text, err := store.Get(ctx, "abc123-report")
	require.NoError(t, err)
	assert.Equal(t, "Extracted body text.\nSecond line.", text)
}

func TestTextStoreMissing(t *testing.T) {
	store := NewTextStore(t.TempDir())
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTextStoreOverwrite(t *testing.T) {
	store := NewTextStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "doc", "first pass"))
	require.NoError(t, store.Put(ctx, "doc", "ocr pass with more text"))

	text, err := store.Get(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "ocr pass with more text", text)
}
