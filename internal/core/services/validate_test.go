package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivelab/papertrail/internal/adapters/driven/storage/blob"
	"github.com/archivelab/papertrail/internal/adapters/driven/storage/file"
	"github.com/archivelab/papertrail/internal/adapters/driven/storage/memory"
	"github.com/archivelab/papertrail/internal/core/domain"
)

// validateFixture stores two documents for real and catalogs them.
type validateFixture struct {
	catalog *memory.CatalogStore
	blobs   *blob.Store
	texts   *memory.TextStore
	shards  *file.ShardStore
	entries []domain.CatalogEntry
}

func newValidateFixture(t *testing.T) *validateFixture {
	t.Helper()
	ctx := context.Background()
	blobs := blob.New(t.TempDir(), newFakeClock())
	catalog := memory.NewCatalogStore()

	var entries []domain.CatalogEntry
	for _, name := range []string{"first", "second"} {
		tmp := filepath.Join(t.TempDir(), name+".pdf")
		require.NoError(t, os.WriteFile(tmp, []byte("bytes of "+name), 0o644))
		doc, created, err := blobs.Store(ctx, tmp, name, "court")
		require.NoError(t, err)
		require.True(t, created)
		entries = append(entries, domain.CatalogEntry{
			ID:            doc.ID,
			Title:         name,
			SourceName:    "Court Records",
			ReleaseDate:   "2019-07-08",
			SHA256:        doc.ContentHash,
			FilePath:      doc.RawPath,
			FileSizeBytes: doc.ByteSize,
		})
	}
	require.NoError(t, catalog.Save(ctx, entries))

	texts := memory.NewTextStore()
	shards := file.NewShardStore(t.TempDir())
	builder := NewIndexBuilder(catalog, texts, shards, newRecordingIndex(), newFakeClock())
	_, err := builder.Build(ctx)
	require.NoError(t, err)

	return &validateFixture{catalog: catalog, blobs: blobs, texts: texts, shards: shards, entries: entries}
}

func TestValidatePasses(t *testing.T) {
	f := newValidateFixture(t)
	checker := NewIntegrityChecker(f.catalog, f.blobs, f.texts, f.shards)
	assert.NoError(t, checker.Validate(context.Background()))
}

func TestValidateDetectsMissingRawFile(t *testing.T) {
	f := newValidateFixture(t)
	require.NoError(t, os.Remove(f.entries[0].FilePath))

	checker := NewIntegrityChecker(f.catalog, f.blobs, f.texts, f.shards)
	assert.ErrorIs(t, checker.Validate(context.Background()), domain.ErrInvalidInput)
}

func TestValidateDetectsUncataloguedEntry(t *testing.T) {
	f := newValidateFixture(t)
	// drop one entry from the catalog; the blob and shard remain
	require.NoError(t, f.catalog.Save(context.Background(), f.entries[:1]))

	checker := NewIntegrityChecker(f.catalog, f.blobs, f.texts, f.shards)
	assert.ErrorIs(t, checker.Validate(context.Background()), domain.ErrInvalidInput)
}

func TestValidateWithoutManifest(t *testing.T) {
	f := newValidateFixture(t)
	checker := NewIntegrityChecker(f.catalog, f.blobs, f.texts, file.NewShardStore(t.TempDir()))
	assert.NoError(t, checker.Validate(context.Background()))
}

func TestValidateDetectsTamperedRawFile(t *testing.T) {
	f := newValidateFixture(t)
	require.NoError(t, os.WriteFile(f.entries[0].FilePath, []byte("bytes of xxxxx"), 0o644))

	checker := NewIntegrityChecker(f.catalog, f.blobs, f.texts, f.shards)
	assert.ErrorIs(t, checker.Validate(context.Background()), domain.ErrInvalidInput)
}

func TestValidateDetectsMissingDerivedText(t *testing.T) {
	f := newValidateFixture(t)
	f.entries[0].Extraction = &domain.ExtractionResult{PDFType: domain.PDFText}
	require.NoError(t, f.catalog.Save(context.Background(), f.entries))

	checker := NewIntegrityChecker(f.catalog, f.blobs, f.texts, f.shards)
	assert.ErrorIs(t, checker.Validate(context.Background()), domain.ErrInvalidInput)

	require.NoError(t, f.texts.Put(context.Background(), f.entries[0].ID, "derived text"))
	assert.NoError(t, checker.Validate(context.Background()))
}
