package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
)

var _ driven.ShardStore = (*ShardStore)(nil)

// manifestFile is the manifest name under the index root.
const manifestFile = "manifest.json"

// ShardStore lays shards out under the index root as
// shards/<source-slug>/<year>.json with the manifest beside them. Every
// write is atomic; the manifest is written last so a crashed build
// never publishes.
type ShardStore struct {
	root string
}

// NewShardStore creates a shard store rooted at dir.
func NewShardStore(dir string) *ShardStore {
	return &ShardStore{root: dir}
}

// WriteShard atomically writes one shard file.
func (s *ShardStore) WriteShard(_ context.Context, shard domain.ShardInfo, docs []domain.IndexDocument) error {
	if docs == nil {
		docs = []domain.IndexDocument{}
	}
	return writeJSONAtomic(filepath.Join(s.root, shard.Path), docs)
}

// LoadShard reads one shard file back.
func (s *ShardStore) LoadShard(_ context.Context, shard domain.ShardInfo) ([]domain.IndexDocument, error) {
	var docs []domain.IndexDocument
	err := readJSON(filepath.Join(s.root, shard.Path), &docs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: shard %s", domain.ErrNotFound, shard.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading shard %s: %w", shard.Path, err)
	}
	return docs, nil
}

// WriteManifest atomically publishes the manifest.
func (s *ShardStore) WriteManifest(_ context.Context, manifest *domain.ShardManifest) error {
	return writeJSONAtomic(filepath.Join(s.root, manifestFile), manifest)
}

// LoadManifest returns the published manifest.
func (s *ShardStore) LoadManifest(_ context.Context) (*domain.ShardManifest, error) {
	var manifest domain.ShardManifest
	err := readJSON(filepath.Join(s.root, manifestFile), &manifest)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: no manifest built yet", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	return &manifest, nil
}
