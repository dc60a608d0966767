// Package sqlite provides the SQLite-backed local search index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. The index is a
// derived artifact: it is rebuilt from shard files on every index build
// and can always be deleted and regenerated.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory. Each migration is a pair of .up.sql and
// .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.papertrail/data/search.db
//
// # Thread Safety
//
// All operations are thread-safe. The index uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
