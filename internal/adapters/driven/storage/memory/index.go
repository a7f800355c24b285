// Package memory provides in-process implementations of the dual index.
// Contents are lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/storage/similarity"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driven"
)

// Ensure Collection and DualIndex implement the interfaces.
var (
	_ driven.Collection = (*Collection)(nil)
	_ driven.DualIndex  = (*DualIndex)(nil)
)

// entry is a stored record and its embedding.
type entry struct {
	record domain.Record
	vector []float32
}

// Collection is an in-memory semantic collection.
type Collection struct {
	name     string
	embedder driven.EmbeddingService

	mu      sync.RWMutex
	entries []entry
	byID    map[string]int
}

// NewCollection creates an empty collection that embeds with embedder.
func NewCollection(name string, embedder driven.EmbeddingService) *Collection {
	return &Collection{
		name:     name,
		embedder: embedder,
		byID:     make(map[string]int),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Add embeds the record document and stores the record.
func (c *Collection) Add(ctx context.Context, record domain.Record) error {
	if record.ID == "" {
		return fmt.Errorf("%w: record id is required", domain.ErrInvalidInput)
	}
	if c.has(record.ID) {
		return fmt.Errorf("%s %q: %w", c.name, record.ID, domain.ErrAlreadyExists)
	}

	vec, err := c.embedder.Embed(ctx, record.Document)
	if err != nil {
		return fmt.Errorf("embedding %s record: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Re-check under the write lock; another writer may have won the race.
	if _, ok := c.byID[record.ID]; ok {
		return fmt.Errorf("%s %q: %w", c.name, record.ID, domain.ErrAlreadyExists)
	}
	c.byID[record.ID] = len(c.entries)
	c.entries = append(c.entries, entry{record: cloneRecord(record), vector: vec})
	return nil
}

// AddMany embeds the new records with one batch call and stores them.
func (c *Collection) AddMany(ctx context.Context, records []domain.Record) (int, error) {
	fresh, err := c.unseen(records)
	if err != nil || len(fresh) == 0 {
		return 0, err
	}

	docs := make([]string, len(fresh))
	for i, r := range fresh {
		docs[i] = r.Document
	}
	vecs, err := c.embedder.EmbedBatch(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("embedding %s records: %w", c.name, err)
	}
	if len(vecs) != len(fresh) {
		return 0, fmt.Errorf("embedding %s records: got %d vectors for %d documents", c.name, len(vecs), len(fresh))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	added := 0
	for i, r := range fresh {
		if _, ok := c.byID[r.ID]; ok {
			continue
		}
		c.byID[r.ID] = len(c.entries)
		c.entries = append(c.entries, entry{record: cloneRecord(r), vector: vecs[i]})
		added++
	}
	return added, nil
}

// unseen drops records that are stored already or repeated in the batch.
func (c *Collection) unseen(records []domain.Record) ([]domain.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	batch := make(map[string]bool, len(records))
	var fresh []domain.Record
	for _, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: record id is required", domain.ErrInvalidInput)
		}
		if _, ok := c.byID[r.ID]; ok || batch[r.ID] {
			continue
		}
		batch[r.ID] = true
		fresh = append(fresh, r)
	}
	return fresh, nil
}

// Get returns the record with the given ID.
func (c *Collection) Get(_ context.Context, id string) (*domain.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r := cloneRecord(c.entries[i].record)
	return &r, nil
}

// Query returns up to k records matching filter, closest to text first.
func (c *Collection) Query(ctx context.Context, text string, k int, filter domain.Filter) ([]domain.Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding %s query: %w", c.name, err)
	}

	c.mu.RLock()
	hits := make([]domain.Hit, 0, len(c.entries))
	for _, e := range c.entries {
		if !filter.Matches(e.record.Metadata) {
			continue
		}
		hits = append(hits, domain.Hit{
			Record:   cloneRecord(e.record),
			Distance: similarity.CosineDistance(vec, e.vector),
		})
	}
	c.mu.RUnlock()

	return similarity.Rank(hits, k), nil
}

// Count returns the number of records.
func (c *Collection) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

// List returns all records in insertion order.
func (c *Collection) List(_ context.Context) ([]domain.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Record, len(c.entries))
	for i, e := range c.entries {
		out[i] = cloneRecord(e.record)
	}
	return out, nil
}

func (c *Collection) has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byID[id]
	return ok
}

func (c *Collection) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.byID = make(map[string]int)
}

// DualIndex holds the course and passage collections in memory.
type DualIndex struct {
	courses  *Collection
	passages *Collection
}

// NewDualIndex creates an empty dual index embedding through embedder.
func NewDualIndex(embedder driven.EmbeddingService) *DualIndex {
	return &DualIndex{
		courses:  NewCollection(domain.CollectionCourses, embedder),
		passages: NewCollection(domain.CollectionPassages, embedder),
	}
}

// Courses returns the identity collection.
func (d *DualIndex) Courses() driven.Collection {
	return d.courses
}

// Passages returns the passage collection.
func (d *DualIndex) Passages() driven.Collection {
	return d.passages
}

// Reset removes every record from both collections.
func (d *DualIndex) Reset(_ context.Context) error {
	d.courses.reset()
	d.passages.reset()
	return nil
}

// Close releases resources (no-op for memory index).
func (d *DualIndex) Close() error {
	return nil
}

func cloneRecord(r domain.Record) domain.Record {
	r.Metadata = maps.Clone(r.Metadata)
	return r
}
