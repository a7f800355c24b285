package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/storage/similarity"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
)

// index_meta keys.
const (
	metaModel      = "embedding_model"
	metaDimensions = "embedding_dimensions"
)

// Store is a SQLite-backed dual index.
type Store struct {
	db       *sql.DB
	path     string
	embedder driven.EmbeddingService

	courses  *collection
	passages *collection
}

// Ensure Store implements the interface.
var _ driven.DualIndex = (*Store)(nil)

// Option configures a Store.
type Option func(*options)

type options struct {
	modelReset bool
}

// WithModelReset clears the index instead of failing when the pinned
// embedding model differs from the configured one.
func WithModelReset() Option {
	return func(o *options) {
		o.modelReset = true
	}
}

// NewStore opens (or creates) the index at the specified data directory.
// If dataDir is empty, defaults to ~/.courserag/data/index.db.
func NewStore(dataDir string, embedder driven.EmbeddingService, opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".courserag", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:       db,
		path:     dbPath,
		embedder: embedder,
	}
	s.courses = &collection{store: s, name: domain.CollectionCourses}
	s.passages = &collection{store: s, name: domain.CollectionPassages}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := s.pinModel(o.modelReset); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Courses returns the identity collection.
func (s *Store) Courses() driven.Collection {
	return s.courses
}

// Passages returns the passage collection.
func (s *Store) Passages() driven.Collection {
	return s.passages
}

// Reset removes every record from both collections.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("%w: clearing records: %w", domain.ErrBackendUnavailable, err)
	}
	return nil
}

// pinModel records the embedding model on first use and rejects a different one later.
func (s *Store) pinModel(reset bool) error {
	model := s.embedder.ModelName()
	dims := strconv.Itoa(s.embedder.Dimensions())

	var pinned string
	err := s.db.QueryRow("SELECT value FROM index_meta WHERE key = ?", metaModel).Scan(&pinned)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return s.writeModel(model, dims)
	case err != nil:
		return fmt.Errorf("reading index metadata: %w", err)
	case pinned == model:
		return nil
	case !reset:
		return fmt.Errorf("%w: index at %s was built with %q, configured model is %q (rebuild the index to switch)",
			domain.ErrModelMismatch, s.path, pinned, model)
	}

	if _, err := s.db.Exec("DELETE FROM records"); err != nil {
		return fmt.Errorf("clearing records for model change: %w", err)
	}
	return s.writeModel(model, dims)
}

func (s *Store) writeModel(model, dims string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for key, value := range map[string]string{metaModel: model, metaDimensions: dims} {
		if _, err := tx.Exec(
			"INSERT INTO index_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			key, value,
		); err != nil {
			return fmt.Errorf("writing index metadata: %w", err)
		}
	}
	return tx.Commit()
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Collection ====================

// collection implements driven.Collection over the shared records table.
type collection struct {
	store *Store
	name  string
}

var _ driven.Collection = (*collection)(nil)

// Name returns the collection name.
func (c *collection) Name() string {
	return c.name
}

// Add embeds the record document and stores the record.
func (c *collection) Add(ctx context.Context, record domain.Record) error {
	if record.ID == "" {
		return fmt.Errorf("%w: record id is required", domain.ErrInvalidInput)
	}

	exists, err := c.exists(ctx, record.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s %q: %w", c.name, record.ID, domain.ErrAlreadyExists)
	}

	vec, err := c.store.embedder.Embed(ctx, record.Document)
	if err != nil {
		return fmt.Errorf("embedding %s record: %w", c.name, err)
	}

	inserted, err := c.insert(ctx, c.store.db, record, vec)
	if err != nil {
		return err
	}
	if !inserted {
		return fmt.Errorf("%s %q: %w", c.name, record.ID, domain.ErrAlreadyExists)
	}
	return nil
}

// AddMany embeds the new records with one batch call and inserts them in
// a single transaction.
func (c *collection) AddMany(ctx context.Context, records []domain.Record) (int, error) {
	batch := make(map[string]bool, len(records))
	var fresh []domain.Record
	for _, r := range records {
		if r.ID == "" {
			return 0, fmt.Errorf("%w: record id is required", domain.ErrInvalidInput)
		}
		if batch[r.ID] {
			continue
		}
		batch[r.ID] = true
		exists, err := c.exists(ctx, r.ID)
		if err != nil {
			return 0, err
		}
		if !exists {
			fresh = append(fresh, r)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	docs := make([]string, len(fresh))
	for i, r := range fresh {
		docs[i] = r.Document
	}
	vecs, err := c.store.embedder.EmbedBatch(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("embedding %s records: %w", c.name, err)
	}
	if len(vecs) != len(fresh) {
		return 0, fmt.Errorf("embedding %s records: got %d vectors for %d documents", c.name, len(vecs), len(fresh))
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: beginning transaction: %w", domain.ErrBackendUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	added := 0
	for i, r := range fresh {
		inserted, err := c.insert(ctx, tx, r, vecs[i])
		if err != nil {
			return 0, err
		}
		if inserted {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: committing %s records: %w", domain.ErrBackendUnavailable, c.name, err)
	}
	return added, nil
}

func (c *collection) exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := c.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE collection = ? AND id = ?", c.name, id,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("%w: checking %s record: %w", domain.ErrBackendUnavailable, c.name, err)
	}
	return n > 0, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insert stores one embedded record. It reports false when the ID was taken.
func (c *collection) insert(ctx context.Context, db execer, record domain.Record, vec []float32) (bool, error) {
	metadata := record.Metadata
	if metadata == nil {
		metadata = domain.Metadata{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return false, fmt.Errorf("marshalling metadata: %w", err)
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO records (collection, id, document, metadata, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO NOTHING
	`, c.name, record.ID, record.Document, string(metadataJSON), similarity.Encode(vec))
	if err != nil {
		return false, fmt.Errorf("%w: inserting %s record: %w", domain.ErrBackendUnavailable, c.name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return false, nil
	}
	return true, nil
}

// Get returns the record with the given ID.
func (c *collection) Get(ctx context.Context, id string) (*domain.Record, error) {
	row := c.store.db.QueryRowContext(ctx,
		"SELECT id, document, metadata FROM records WHERE collection = ? AND id = ?", c.name, id)

	var r domain.Record
	var metadataJSON string
	if err := row.Scan(&r.ID, &r.Document, &metadataJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting %s record: %w", domain.ErrBackendUnavailable, c.name, err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &r.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	return &r, nil
}

// Query returns up to k records matching filter, closest to text first.
func (c *collection) Query(ctx context.Context, text string, k int, filter domain.Filter) ([]domain.Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	vec, err := c.store.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding %s query: %w", c.name, err)
	}

	query := "SELECT id, document, metadata, embedding FROM records WHERE collection = ?"
	args := []any{c.name}
	for _, field := range filter.Fields() {
		query += " AND json_extract(metadata, ?) = ?"
		args = append(args, jsonPath(field), filter[field])
	}
	query += " ORDER BY seq"

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s: %w", domain.ErrBackendUnavailable, c.name, err)
	}
	defer rows.Close()

	var hits []domain.Hit
	for rows.Next() {
		var r domain.Record
		var metadataJSON string
		var blob []byte
		if err := rows.Scan(&r.ID, &r.Document, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning %s record: %w", c.name, err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &r.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
		hits = append(hits, domain.Hit{
			Record:   r,
			Distance: similarity.CosineDistance(vec, similarity.Decode(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating %s: %w", domain.ErrBackendUnavailable, c.name, err)
	}

	return similarity.Rank(hits, k), nil
}

// Count returns the number of records.
func (c *collection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE collection = ?", c.name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: counting %s: %w", domain.ErrBackendUnavailable, c.name, err)
	}
	return n, nil
}

// List returns all records in insertion order.
func (c *collection) List(ctx context.Context) ([]domain.Record, error) {
	rows, err := c.store.db.QueryContext(ctx,
		"SELECT id, document, metadata FROM records WHERE collection = ? ORDER BY seq", c.name)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", domain.ErrBackendUnavailable, c.name, err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var r domain.Record
		var metadataJSON string
		if err := rows.Scan(&r.ID, &r.Document, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning %s record: %w", c.name, err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &r.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// jsonPath quotes a metadata field name as a JSON path.
func jsonPath(field string) string {
	return "$." + strconv.Quote(field)
}
