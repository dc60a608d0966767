package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
	"github.com/archivelab/papertrail/internal/core/ports/driving"
	"github.com/archivelab/papertrail/internal/logger"
)

// Ensure IndexBuilder implements the interface.
var _ driving.IndexBuilder = (*IndexBuilder)(nil)

// IndexBuilder partitions the catalog into (source, year) shards,
// writes the shard files, feeds the token index and publishes the
// manifest last. A build that fails its completeness check publishes
// nothing.
type IndexBuilder struct {
	catalog   driven.CatalogStore
	textStore driven.TextStore
	shards    driven.ShardStore
	index     driven.SearchIndex
	clock     driven.Clock

	// contentCap bounds derived text per shard document. Zero means
	// unbounded.
	contentCap int
}

// NewIndexBuilder creates the builder.
func NewIndexBuilder(
	catalog driven.CatalogStore,
	textStore driven.TextStore,
	shards driven.ShardStore,
	index driven.SearchIndex,
	clock driven.Clock,
) *IndexBuilder {
	if clock == nil {
		clock = driven.SystemClock{}
	}
	return &IndexBuilder{
		catalog:   catalog,
		textStore: textStore,
		shards:    shards,
		index:     index,
		clock:     clock,
	}
}

// SetContentCap bounds the derived text carried per shard document.
// Zero means unbounded.
func (b *IndexBuilder) SetContentCap(chars int) {
	b.contentCap = chars
}

// Build rebuilds all shards and the token index from the catalog.
func (b *IndexBuilder) Build(ctx context.Context) (*domain.ShardManifest, error) {
	entries, err := b.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	logger.Section("Building index over %d catalog entries", len(entries))

	grouped := make(map[domain.ShardKey][]domain.IndexDocument)
	for i := range entries {
		entry := &entries[i]
		key := domain.ShardKey{SourceSlug: domain.Slugify(entry.SourceName), Year: entry.Year()}
		grouped[key] = append(grouped[key], b.indexDocument(ctx, entry))
	}

	keys := make([]domain.ShardKey, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].SourceSlug != keys[j].SourceSlug {
			return keys[i].SourceSlug < keys[j].SourceSlug
		}
		return keys[i].Year < keys[j].Year
	})

	manifest := &domain.ShardManifest{
		GeneratedAt: b.clock.Now().UTC().Format(time.RFC3339),
		TotalDocs:   len(entries),
	}

	sourceSet := make(map[string]bool)
	yearSet := make(map[string]bool)

	if err := b.index.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset search index: %w", err)
	}

	for _, key := range keys {
		docs := grouped[key]
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

		shard := domain.ShardInfo{
			Path:       filepath.Join("shards", key.SourceSlug, key.Year+".json"),
			SourceSlug: key.SourceSlug,
			SourceName: docs[0].SourceName,
			Year:       key.Year,
			DocCount:   len(docs),
		}
		if err := b.shards.WriteShard(ctx, shard, docs); err != nil {
			return nil, fmt.Errorf("write shard %s: %w", shard.Path, err)
		}
		if err := b.index.IndexShard(ctx, shard, docs); err != nil {
			return nil, fmt.Errorf("index shard %s: %w", shard.Path, err)
		}

		manifest.Shards = append(manifest.Shards, shard)
		sourceSet[key.SourceSlug] = true
		yearSet[key.Year] = true
		logger.Debug("Shard %s: %d documents", shard.Path, len(docs))
	}

	manifest.Sources = sortedKeys(sourceSet)
	manifest.Years = sortedKeys(yearSet)

	if err := verifyManifest(manifest, entries, grouped); err != nil {
		return nil, err
	}

	if err := b.shards.WriteManifest(ctx, manifest); err != nil {
		return nil, fmt.Errorf("publish manifest: %w", err)
	}

	logger.Info("Index built: %d documents in %d shards", manifest.TotalDocs, len(manifest.Shards))
	return manifest, nil
}

// indexDocument flattens a catalog entry plus its derived text into
// the shard document shape.
func (b *IndexBuilder) indexDocument(ctx context.Context, entry *domain.CatalogEntry) domain.IndexDocument {
	content, err := b.textStore.Get(ctx, entry.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Reading derived text for %s failed: %v", entry.ID, err)
	}
	if b.contentCap > 0 && len(content) > b.contentCap {
		content = content[:b.contentCap]
	}

	doc := domain.IndexDocument{
		ID:          entry.ID,
		Title:       entry.Title,
		ReleaseDate: entry.ReleaseDate,
		SourceName:  entry.SourceName,
		FileName:    filepath.Base(entry.FilePath),
		Content:     content,
		Tags:        entry.Tags,
	}
	if x := entry.Extraction; x != nil {
		doc.AutoTags = x.AutoTags
		doc.PDFType = string(x.PDFType)
		doc.TextQualityScore = x.TextQualityScore
		doc.DocumentCategory = x.DocumentCategory
		doc.FileNumbers = x.FileNumbers
		doc.PersonNames = x.PersonNames
		doc.Locations = x.Locations
		if x.Email != nil {
			doc.EmailFrom = x.Email.From
			doc.EmailTo = x.Email.To
			doc.EmailSubject = x.Email.Subject
			doc.EmailDate = x.Email.Date
		}
	}
	return doc
}

// verifyManifest enforces bidirectional completeness: every catalog
// entry in exactly one shard, no shard document outside the catalog.
func verifyManifest(
	manifest *domain.ShardManifest,
	entries []domain.CatalogEntry,
	grouped map[domain.ShardKey][]domain.IndexDocument,
) error {
	catalogIDs := make(map[string]bool, len(entries))
	for i := range entries {
		catalogIDs[entries[i].ID] = true
	}

	counted := 0
	for _, shard := range manifest.Shards {
		counted += shard.DocCount
	}
	if counted != len(entries) {
		return fmt.Errorf("%w: shards hold %d documents, catalog has %d",
			domain.ErrManifestInconsistent, counted, len(entries))
	}
	if manifest.TotalDocs != len(entries) {
		return fmt.Errorf("%w: manifest total %d, catalog has %d",
			domain.ErrManifestInconsistent, manifest.TotalDocs, len(entries))
	}

	sharded := make(map[string]bool, len(entries))
	for key, docs := range grouped {
		for _, doc := range docs {
			if sharded[doc.ID] {
				return fmt.Errorf("%w: document %s appears in more than one shard",
					domain.ErrManifestInconsistent, doc.ID)
			}
			sharded[doc.ID] = true
			if !catalogIDs[doc.ID] {
				return fmt.Errorf("%w: shard %s/%s holds document %s not in the catalog",
					domain.ErrManifestInconsistent, key.SourceSlug, key.Year, doc.ID)
			}
		}
	}
	for id := range catalogIDs {
		if !sharded[id] {
			return fmt.Errorf("%w: catalog entry %s is missing from the shards",
				domain.ErrManifestInconsistent, id)
		}
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
