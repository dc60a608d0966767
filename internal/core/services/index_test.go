package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivelab/papertrail/internal/adapters/driven/storage/file"
	"github.com/archivelab/papertrail/internal/adapters/driven/storage/memory"
	"github.com/archivelab/papertrail/internal/core/domain"
)

// recordingIndex captures what the builder feeds the token index.
type recordingIndex struct {
	resets int
	shards []domain.ShardInfo
	docs   map[string][]domain.IndexDocument
}

func newRecordingIndex() *recordingIndex {
	return &recordingIndex{docs: make(map[string][]domain.IndexDocument)}
}

func (r *recordingIndex) Reset(context.Context) error {
	r.resets++
	r.shards = nil
	r.docs = make(map[string][]domain.IndexDocument)
	return nil
}

func (r *recordingIndex) IndexShard(_ context.Context, shard domain.ShardInfo, docs []domain.IndexDocument) error {
	r.shards = append(r.shards, shard)
	r.docs[shard.Path] = docs
	return nil
}

func (r *recordingIndex) Search(context.Context, string, domain.SearchOptions) ([]domain.SearchResult, error) {
	return nil, nil
}

func (r *recordingIndex) Close() error { return nil }

func indexFixtures() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{ID: "a1-flight-log", Title: "Flight Log", SourceName: "Court Records", ReleaseDate: "2019-07-08", FilePath: "/raw/a1.pdf"},
		{ID: "b2-deposition", Title: "Deposition", SourceName: "Court Records", ReleaseDate: "2019-08-02", FilePath: "/raw/b2.pdf"},
		{ID: "c3-memo", Title: "Memo", SourceName: "Court Records", ReleaseDate: "2020-01-15", FilePath: "/raw/c3.pdf"},
		{ID: "d4-letter", Title: "Letter", SourceName: "Agency Files", ReleaseDate: "", FilePath: "/raw/d4.pdf"},
	}
}

func TestBuildPartitionsBySourceAndYear(t *testing.T) {
	catalog := memory.NewCatalogStore()
	require.NoError(t, catalog.Save(context.Background(), indexFixtures()))
	shardStore := file.NewShardStore(t.TempDir())
	index := newRecordingIndex()

	builder := NewIndexBuilder(catalog, memory.NewTextStore(), shardStore, index, newFakeClock())
	manifest, err := builder.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, manifest.TotalDocs)
	require.Len(t, manifest.Shards, 3)
	assert.Equal(t, []string{"agency-files", "court-records"}, manifest.Sources)
	assert.Equal(t, []string{"2019", "2020", "unknown"}, manifest.Years)

	// deterministic shard order: source slug, then year
	assert.Equal(t, "shards/agency-files/unknown.json", manifest.Shards[0].Path)
	assert.Equal(t, "shards/court-records/2019.json", manifest.Shards[1].Path)
	assert.Equal(t, "shards/court-records/2020.json", manifest.Shards[2].Path)
	assert.Equal(t, 2, manifest.Shards[1].DocCount)

	assert.Equal(t, 1, index.resets)
	assert.Len(t, index.docs["shards/court-records/2019.json"], 2)
}

func TestBuildWritesShardFilesAndManifest(t *testing.T) {
	catalog := memory.NewCatalogStore()
	require.NoError(t, catalog.Save(context.Background(), indexFixtures()))
	texts := memory.NewTextStore()
	require.NoError(t, texts.Put(context.Background(), "a1-flight-log", "tail number N123AB"))
	shardStore := file.NewShardStore(t.TempDir())

	builder := NewIndexBuilder(catalog, texts, shardStore, newRecordingIndex(), newFakeClock())
	manifest, err := builder.Build(context.Background())
	require.NoError(t, err)

	loaded, err := shardStore.LoadManifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, manifest.GeneratedAt, loaded.GeneratedAt)

	docs, err := shardStore.LoadShard(context.Background(), manifest.Shards[1])
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "tail number N123AB", docs[0].Content)
	assert.Equal(t, "a1.pdf", docs[0].FileName)
}

func TestBuildEmptyCatalog(t *testing.T) {
	builder := NewIndexBuilder(memory.NewCatalogStore(), memory.NewTextStore(),
		file.NewShardStore(t.TempDir()), newRecordingIndex(), newFakeClock())

	manifest, err := builder.Build(context.Background())
	require.NoError(t, err)
	assert.Zero(t, manifest.TotalDocs)
	assert.Empty(t, manifest.Shards)
}

func TestBuildRebuildReplacesManifest(t *testing.T) {
	catalog := memory.NewCatalogStore()
	require.NoError(t, catalog.Save(context.Background(), indexFixtures()))
	shardStore := file.NewShardStore(t.TempDir())
	index := newRecordingIndex()
	builder := NewIndexBuilder(catalog, memory.NewTextStore(), shardStore, index, newFakeClock())

	_, err := builder.Build(context.Background())
	require.NoError(t, err)

	require.NoError(t, catalog.Save(context.Background(), indexFixtures()[:2]))
	manifest, err := builder.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, manifest.TotalDocs)
	assert.Equal(t, 2, index.resets)

	loaded, err := shardStore.LoadManifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.TotalDocs)
}

func TestVerifyManifestDetectsDuplicateAndMissingIDs(t *testing.T) {
	entries := []domain.CatalogEntry{{ID: "doc-a"}, {ID: "doc-b"}}
	manifest := &domain.ShardManifest{
		TotalDocs: 2,
		Shards: []domain.ShardInfo{
			{SourceSlug: "court-records", Year: "2019", DocCount: 1},
			{SourceSlug: "court-records", Year: "2020", DocCount: 1},
		},
	}
	// doc-a sharded twice, doc-b nowhere; totals still balance
	grouped := map[domain.ShardKey][]domain.IndexDocument{
		{SourceSlug: "court-records", Year: "2019"}: {{ID: "doc-a"}},
		{SourceSlug: "court-records", Year: "2020"}: {{ID: "doc-a"}},
	}

	err := verifyManifest(manifest, entries, grouped)
	assert.ErrorIs(t, err, domain.ErrManifestInconsistent)
}

func TestVerifyManifestAcceptsExactPartition(t *testing.T) {
	entries := []domain.CatalogEntry{{ID: "doc-a"}, {ID: "doc-b"}}
	manifest := &domain.ShardManifest{
		TotalDocs: 2,
		Shards: []domain.ShardInfo{
			{SourceSlug: "court-records", Year: "2019", DocCount: 2},
		},
	}
	grouped := map[domain.ShardKey][]domain.IndexDocument{
		{SourceSlug: "court-records", Year: "2019"}: {{ID: "doc-a"}, {ID: "doc-b"}},
	}

	assert.NoError(t, verifyManifest(manifest, entries, grouped))
}
