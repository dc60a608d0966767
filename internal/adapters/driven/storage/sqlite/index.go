package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/archivelab/papertrail/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/archivelab/papertrail/internal/core/domain"
	"github.com/archivelab/papertrail/internal/core/ports/driven"
)

// defaultLimit caps result counts when the caller does not set one.
const defaultLimit = 20

// snippetRadius is how many characters of context surround a match.
const snippetRadius = 80

var _ driven.SearchIndex = (*Index)(nil)

// Index is the SQLite-backed token index over built shards.
type Index struct {
	db   *sql.DB
	path string

	// minTokenLength drops noise tokens at indexing and query time.
	minTokenLength int
}

// NewIndex opens (or creates) the search index at the specified data
// directory. If dataDir is empty, defaults to ~/.papertrail/data/search.db.
func NewIndex(dataDir string, minTokenLength int) (*Index, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".papertrail", "data")
	}
	if minTokenLength <= 0 {
		minTokenLength = 2
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "search.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	idx := &Index{db: db, path: dbPath, minTokenLength: minTokenLength}

	if err := idx.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return idx, nil
}

// Close closes the database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Path returns the database file path.
func (idx *Index) Path() string {
	return idx.path
}

// Reset clears the index before a rebuild.
func (idx *Index) Reset(ctx context.Context) error {
	for _, table := range []string{"tokens", "documents", "shards"} {
		if _, err := idx.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// IndexShard tokenises and indexes one shard's documents. Building
// proceeds shard-at-a-time so large corpora never require the whole
// index in memory.
func (idx *Index) IndexShard(ctx context.Context, shard domain.ShardInfo, docs []domain.IndexDocument) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shards (path, source_slug, source_name, year, doc_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			source_slug = excluded.source_slug,
			source_name = excluded.source_name,
			year = excluded.year,
			doc_count = excluded.doc_count
	`, shard.Path, shard.SourceSlug, shard.SourceName, shard.Year, shard.DocCount)
	if err != nil {
		return fmt.Errorf("saving shard: %w", err)
	}

	docStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, shard_path, title, source_slug, source_name, year, release_date, category, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			shard_path = excluded.shard_path,
			title = excluded.title,
			source_slug = excluded.source_slug,
			source_name = excluded.source_name,
			year = excluded.year,
			release_date = excluded.release_date,
			category = excluded.category,
			content = excluded.content
	`)
	if err != nil {
		return fmt.Errorf("preparing document statement: %w", err)
	}
	defer docStmt.Close()

	tokenStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tokens (token, doc_id, field, freq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(token, doc_id, field) DO UPDATE SET freq = excluded.freq
	`)
	if err != nil {
		return fmt.Errorf("preparing token statement: %w", err)
	}
	defer tokenStmt.Close()

	for _, doc := range docs {
		if _, err := docStmt.ExecContext(ctx, doc.ID, shard.Path, doc.Title, shard.SourceSlug,
			doc.SourceName, shard.Year, doc.ReleaseDate, doc.DocumentCategory, doc.Content); err != nil {
			return fmt.Errorf("saving document %s: %w", doc.ID, err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM tokens WHERE doc_id = ?", doc.ID); err != nil {
			return fmt.Errorf("clearing tokens for %s: %w", doc.ID, err)
		}

		for field, text := range map[string]string{
			"title":     doc.Title,
			"content":   doc.Content,
			"tags":      strings.Join(append(append([]string{}, doc.Tags...), doc.AutoTags...), " "),
			"people":    strings.Join(doc.PersonNames, " "),
			"locations": strings.Join(doc.Locations, " "),
		} {
			for token, freq := range idx.tokenise(text) {
				if _, err := tokenStmt.ExecContext(ctx, token, doc.ID, field, freq); err != nil {
					return fmt.Errorf("saving token: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// fieldWeight ranks matches by where they occur.
func fieldWeight(field string) float64 {
	switch field {
	case "title":
		return 3
	case "tags", "people", "locations":
		return 2
	default:
		return 1
	}
}

// Search runs a case-insensitive token query over the index. Every
// query token must match the document (AND semantics); documents are
// ranked by summed field-weighted token frequency.
func (idx *Index) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	queryTokens := idx.queryTokens(query)
	if len(queryTokens) == 0 {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	type hit struct {
		score   float64
		field   string
		matched int
	}
	hits := make(map[string]*hit)

	for _, qt := range queryTokens {
		matches, err := idx.matchToken(ctx, qt, opts.Fuzzy)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool)
		for _, m := range matches {
			h := hits[m.docID]
			if h == nil {
				h = &hit{}
				hits[m.docID] = h
			}
			h.score += m.score
			if h.field == "" || fieldWeight(m.field) > fieldWeight(h.field) {
				h.field = m.field
			}
			if !seen[m.docID] {
				h.matched++
				seen[m.docID] = true
			}
		}
	}

	var ids []string
	for id, h := range hits {
		if h.matched == len(queryTokens) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Slice(ids, func(i, j int) bool {
		if hits[ids[i]].score != hits[ids[j]].score {
			return hits[ids[i]].score > hits[ids[j]].score
		}
		return ids[i] < ids[j]
	})

	var results []domain.SearchResult
	for _, id := range ids {
		if len(results) >= limit {
			break
		}
		result, ok, err := idx.loadResult(ctx, id, queryTokens, opts)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		result.Score = hits[id].score
		result.MatchedField = hits[id].field
		results = append(results, result)
	}
	return results, nil
}

type tokenMatch struct {
	docID string
	field string
	score float64
}

// matchToken finds documents matching one query token: exact matches
// first, substring matches at half weight, and optionally fuzzy
// (edit-distance-1) matches at quarter weight.
func (idx *Index) matchToken(ctx context.Context, token string, fuzzy bool) ([]tokenMatch, error) {
	var matches []tokenMatch

	rows, err := idx.db.QueryContext(ctx, `
		SELECT token, doc_id, field, freq FROM tokens
		WHERE token = ? OR instr(token, ?) > 0
	`, token, token)
	if err != nil {
		return nil, fmt.Errorf("querying tokens: %w", err)
	}
	defer rows.Close()

	matchedExact := make(map[string]bool)
	for rows.Next() {
		var stored, docID, field string
		var freq int
		if err := rows.Scan(&stored, &docID, &field, &freq); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		weight := fieldWeight(field) * float64(freq)
		if stored == token {
			matchedExact[docID] = true
			matches = append(matches, tokenMatch{docID: docID, field: field, score: weight})
		} else {
			matches = append(matches, tokenMatch{docID: docID, field: field, score: weight / 2})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tokens: %w", err)
	}

	if !fuzzy {
		return matches, nil
	}

	// Fuzzy pass: scan distinct stored tokens of comparable length and
	// keep those within edit distance one.
	fuzzyRows, err := idx.db.QueryContext(ctx, `
		SELECT token, doc_id, field, freq FROM tokens
		WHERE length(token) BETWEEN ? AND ?
	`, len(token)-1, len(token)+1)
	if err != nil {
		return nil, fmt.Errorf("querying fuzzy tokens: %w", err)
	}
	defer fuzzyRows.Close()

	for fuzzyRows.Next() {
		var stored, docID, field string
		var freq int
		if err := fuzzyRows.Scan(&stored, &docID, &field, &freq); err != nil {
			return nil, fmt.Errorf("scanning fuzzy token: %w", err)
		}
		if stored == token || strings.Contains(stored, token) || matchedExact[docID] {
			continue
		}
		if !withinEditDistanceOne(token, stored) {
			continue
		}
		matches = append(matches, tokenMatch{docID: docID, field: field, score: fieldWeight(field) * float64(freq) / 4})
	}
	if err := fuzzyRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fuzzy tokens: %w", err)
	}

	return matches, nil
}

// loadResult builds a SearchResult for one document, applying the
// source/year/category filters. ok=false means filtered out.
func (idx *Index) loadResult(ctx context.Context, id string, queryTokens []string, opts domain.SearchOptions) (domain.SearchResult, bool, error) {
	row := idx.db.QueryRowContext(ctx, `
		SELECT id, title, source_slug, source_name, year, release_date, category, content
		FROM documents WHERE id = ?
	`, id)

	var docID, title, sourceSlug, sourceName, year, releaseDate, category, content string
	if err := row.Scan(&docID, &title, &sourceSlug, &sourceName, &year, &releaseDate, &category, &content); err != nil {
		if err == sql.ErrNoRows {
			return domain.SearchResult{}, false, nil
		}
		return domain.SearchResult{}, false, fmt.Errorf("scanning document: %w", err)
	}

	if len(opts.SourceSlugs) > 0 && !containsString(opts.SourceSlugs, sourceSlug) {
		return domain.SearchResult{}, false, nil
	}
	if len(opts.Years) > 0 && !containsString(opts.Years, year) {
		return domain.SearchResult{}, false, nil
	}
	if opts.Category != "" && !strings.EqualFold(opts.Category, category) {
		return domain.SearchResult{}, false, nil
	}

	return domain.SearchResult{
		DocumentID:  docID,
		Title:       title,
		SourceName:  sourceName,
		ReleaseDate: releaseDate,
		Snippet:     snippet(content, queryTokens),
	}, true, nil
}

// migrate runs all pending migrations.
func (idx *Index) migrate(fsys embed.FS) error {
	_, err := idx.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := idx.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := idx.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := idx.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
