// Package sqlite provides a SQLite-backed implementation of the dual index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Both collections share one table,
// keyed by (collection, id), with embeddings stored as little-endian float32 blobs.
// Metadata filters are evaluated in SQL with json_extract; distances are computed
// in Go over the filtered rows.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Embedding Model
//
// The first open pins the embedding model name and dimensions in index_meta.
// Opening the index later with a different model fails with domain.ErrModelMismatch
// unless WithModelReset is given, which clears every record and re-pins the model.
//
// # Data Location
//
// By default, the database is stored at ~/.courserag/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
