package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
	"github.com/archivelab/papertrail/internal/core/ports/driving"
	"github.com/archivelab/papertrail/internal/logger"
)

// Ensure IntegrityChecker implements the interface.
var _ driving.Validator = (*IntegrityChecker)(nil)

// IntegrityChecker cross-checks catalog, raw storage and the published
// shard manifest. Problems are collected and reported together rather
// than failing on the first.
type IntegrityChecker struct {
	catalog driven.CatalogStore
	blobs   driven.BlobStore
	texts   driven.TextStore
	shards  driven.ShardStore
}

// NewIntegrityChecker creates the checker.
func NewIntegrityChecker(catalog driven.CatalogStore, blobs driven.BlobStore, texts driven.TextStore, shards driven.ShardStore) *IntegrityChecker {
	return &IntegrityChecker{catalog: catalog, blobs: blobs, texts: texts, shards: shards}
}

// Validate checks that every catalog entry has its raw bytes, that raw
// storage carries nothing the catalog does not know, and that the
// manifest partitions the catalog exactly.
func (v *IntegrityChecker) Validate(ctx context.Context) error {
	entries, err := v.catalog.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	raws, err := v.blobs.List(ctx)
	if err != nil {
		return fmt.Errorf("list raw storage: %w", err)
	}

	var problems []string

	byHash := make(map[string]*domain.RawDocument, len(raws))
	for i := range raws {
		byHash[raws[i].ContentHash] = &raws[i]
	}

	catalogHashes := make(map[string]bool, len(entries))
	for i := range entries {
		entry := &entries[i]
		catalogHashes[entry.SHA256] = true

		raw, ok := byHash[entry.SHA256]
		if !ok {
			problems = append(problems, fmt.Sprintf("catalog entry %s has no raw record", entry.ID))
			continue
		}
		info, statErr := os.Stat(entry.FilePath)
		switch {
		case statErr != nil:
			problems = append(problems, fmt.Sprintf("catalog entry %s: raw file missing: %v", entry.ID, statErr))
		case info.Size() != raw.ByteSize:
			problems = append(problems, fmt.Sprintf("catalog entry %s: raw file is %d bytes, expected %d",
				entry.ID, info.Size(), raw.ByteSize))
		default:
			if sum, hashErr := hashFile(entry.FilePath); hashErr != nil {
				problems = append(problems, fmt.Sprintf("catalog entry %s: raw file unreadable: %v", entry.ID, hashErr))
			} else if sum != entry.SHA256 {
				problems = append(problems, fmt.Sprintf("catalog entry %s: raw file hash %s does not match catalog %s",
					entry.ID, sum, entry.SHA256))
			}
		}

		if entry.Extraction != nil {
			if _, textErr := v.texts.Get(ctx, entry.ID); errors.Is(textErr, domain.ErrNotFound) {
				problems = append(problems, fmt.Sprintf("catalog entry %s is analysed but has no derived text", entry.ID))
			} else if textErr != nil {
				problems = append(problems, fmt.Sprintf("catalog entry %s: derived text unreadable: %v", entry.ID, textErr))
			}
		}
	}

	for i := range raws {
		if !catalogHashes[raws[i].ContentHash] {
			problems = append(problems, fmt.Sprintf("raw document %s is not catalogued", raws[i].ID))
		}
	}

	problems = append(problems, v.checkManifest(ctx, entries)...)

	if len(problems) > 0 {
		for _, p := range problems {
			logger.Warn("Integrity: %s", p)
		}
		return fmt.Errorf("%w: %d problems found", domain.ErrInvalidInput, len(problems))
	}

	logger.Info("Integrity check passed: %d entries, %d raw documents", len(entries), len(raws))
	return nil
}

// hashFile computes the sha256 of a file on disk.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// checkManifest verifies the published shards against the catalog.
// A missing manifest is fine; validation then covers storage only.
func (v *IntegrityChecker) checkManifest(ctx context.Context, entries []domain.CatalogEntry) []string {
	manifest, err := v.shards.LoadManifest(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return []string{fmt.Sprintf("load manifest: %v", err)}
	}

	var problems []string

	catalogIDs := make(map[string]bool, len(entries))
	for i := range entries {
		catalogIDs[entries[i].ID] = true
	}

	shardIDs := make(map[string]bool)
	for _, shard := range manifest.Shards {
		docs, err := v.shards.LoadShard(ctx, shard)
		if err != nil {
			problems = append(problems, fmt.Sprintf("shard %s unreadable: %v", shard.Path, err))
			continue
		}
		if len(docs) != shard.DocCount {
			problems = append(problems, fmt.Sprintf("shard %s holds %d documents, manifest says %d",
				shard.Path, len(docs), shard.DocCount))
		}
		for _, doc := range docs {
			if shardIDs[doc.ID] {
				problems = append(problems, fmt.Sprintf("document %s appears in more than one shard", doc.ID))
			}
			shardIDs[doc.ID] = true
			if !catalogIDs[doc.ID] {
				problems = append(problems, fmt.Sprintf("shard document %s is not in the catalog", doc.ID))
			}
		}
	}

	for id := range catalogIDs {
		if !shardIDs[id] {
			problems = append(problems, fmt.Sprintf("catalog entry %s is missing from the shards", id))
		}
	}
	return problems
}
