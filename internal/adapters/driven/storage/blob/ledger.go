package blob

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/archivelab/papertrail/internal/core/domain"
)

func unmarshalLedger(data []byte, docs *[]domain.RawDocument) error {
	return json.Unmarshal(data, docs)
}

// writeLedgerAtomic replaces the ledger in one rename.
func writeLedgerAtomic(path string, docs []domain.RawDocument) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling blob ledger: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating blob directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".blobs.tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing blob ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing blob ledger: %w", err)
	}
	return nil
}

func sortDocs(docs []domain.RawDocument) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}
