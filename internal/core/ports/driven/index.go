package driven

import (
	"context"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

// Collection is one append-only semantic collection.
// Records are embedded on insert; queries return the nearest records by
// cosine distance, ties broken by insertion order.
//
// Concurrent Query calls never observe a partially written record.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Add embeds record.Document and stores the record.
	// Returns domain.ErrAlreadyExists if the ID is taken; the stored record is left unchanged.
	Add(ctx context.Context, record domain.Record) error

	// AddMany embeds the documents of records in one batch and stores them in order.
	// Records whose ID is already stored, or repeated earlier in the batch, are skipped.
	// It returns how many records were stored; on error none of the batch is stored.
	AddMany(ctx context.Context, records []domain.Record) (int, error)

	// Get returns the record with the given ID.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Record, error)

	// Query embeds text and returns up to k records satisfying filter,
	// closest first. A nil filter matches every record.
	Query(ctx context.Context, text string, k int, filter domain.Filter) ([]domain.Hit, error)

	// Count returns the number of records.
	Count(ctx context.Context) (int, error)

	// List returns all records in insertion order.
	List(ctx context.Context) ([]domain.Record, error)
}

// DualIndex holds the identity collection and the passage collection.
// It is constructed once and passed explicitly to the services that need it.
type DualIndex interface {
	// Courses returns the identity collection (one record per course title).
	Courses() Collection

	// Passages returns the passage collection.
	Passages() Collection

	// Reset removes every record from both collections.
	// This is the full-index rebuild and the only way records are deleted.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}
