package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/embedding/hashing"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

// failingEmbedder returns an error from every embedding call.
type failingEmbedder struct {
	*hashing.EmbeddingService
}

func newFailingEmbedder() failingEmbedder {
	return failingEmbedder{hashing.NewEmbeddingService(hashing.Config{})}
}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("%w: boom", domain.ErrBackendUnavailable)
}

func (failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, fmt.Errorf("%w: boom", domain.ErrBackendUnavailable)
}

func newTestIndex() *DualIndex {
	return NewDualIndex(hashing.NewEmbeddingService(hashing.Config{}))
}

func passage(id, course, lesson, text string) domain.Record {
	return domain.Record{
		ID:       id,
		Document: text,
		Metadata: domain.Metadata{
			domain.FieldCourseTitle:  course,
			domain.FieldLessonNumber: lesson,
		},
	}
}

func TestNewDualIndex(t *testing.T) {
	idx := newTestIndex()
	require.NotNil(t, idx)
	assert.Equal(t, domain.CollectionCourses, idx.Courses().Name())
	assert.Equal(t, domain.CollectionPassages, idx.Passages().Name())
	assert.NoError(t, idx.Close())
}

func TestCollection_AddAndGet(t *testing.T) {
	ctx := context.Background()
	c := newTestIndex().Passages()

	require.NoError(t, c.Add(ctx, passage("p1", "Course A", "1", "vector databases store embeddings")))

	got, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "vector databases store embeddings", got.Document)
	assert.Equal(t, "Course A", got.Metadata[domain.FieldCourseTitle])

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollection_Add_Duplicate(t *testing.T) {
	ctx := context.Background()
	c := newTestIndex().Courses()

	require.NoError(t, c.Add(ctx, domain.Record{ID: "Course A", Document: "first"}))
	err := c.Add(ctx, domain.Record{ID: "Course A", Document: "second"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	got, err := c.Get(ctx, "Course A")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Document)

	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCollection_Add_EmptyID(t *testing.T) {
	err := newTestIndex().Courses().Add(context.Background(), domain.Record{Document: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCollection_Add_EmbedError(t *testing.T) {
	c := NewCollection("test", newFailingEmbedder())
	err := c.Add(context.Background(), domain.Record{ID: "a", Document: "x"})
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)

	n, _ := c.Count(context.Background())
	assert.Zero(t, n)
}

func TestCollection_Query_RanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	c := newTestIndex().Passages()

	require.NoError(t, c.Add(ctx, passage("p1", "A", "1", "cooking pasta with tomato sauce")))
	require.NoError(t, c.Add(ctx, passage("p2", "A", "2", "vector databases store embeddings for retrieval")))
	require.NoError(t, c.Add(ctx, passage("p3", "B", "1", "gardening tips for spring")))

	hits, err := c.Query(ctx, "vector databases embeddings", 2, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "p2", hits[0].Record.ID)
	assert.LessOrEqual(t, hits[0].Distance, hits[1].Distance)
}

func TestCollection_Query_Filter(t *testing.T) {
	ctx := context.Background()
	c := newTestIndex().Passages()

	require.NoError(t, c.Add(ctx, passage("p1", "A", "1", "retrieval augmented generation")))
	require.NoError(t, c.Add(ctx, passage("p2", "A", "2", "retrieval augmented generation")))
	require.NoError(t, c.Add(ctx, passage("p3", "B", "2", "retrieval augmented generation")))

	hits, err := c.Query(ctx, "retrieval", 10, domain.Filter{domain.FieldLessonNumber: "2"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	// Equal distances keep insertion order.
	assert.Equal(t, "p2", hits[0].Record.ID)
	assert.Equal(t, "p3", hits[1].Record.ID)

	hits, err = c.Query(ctx, "retrieval", 10, domain.Filter{
		domain.FieldCourseTitle:  "A",
		domain.FieldLessonNumber: "2",
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p2", hits[0].Record.ID)

	hits, err = c.Query(ctx, "retrieval", 10, domain.Filter{domain.FieldCourseTitle: "C"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestCollection_Query_Empty(t *testing.T) {
	ctx := context.Background()
	c := newTestIndex().Passages()

	hits, err := c.Query(ctx, "anything", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, c.Add(ctx, passage("p1", "A", "1", "text")))
	hits, err = c.Query(ctx, "text", 0, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestCollection_Query_EmbedError(t *testing.T) {
	_, err := NewCollection("test", newFailingEmbedder()).Query(context.Background(), "q", 3, nil)
	assert.True(t, errors.Is(err, domain.ErrBackendUnavailable))
}

func TestCollection_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := newTestIndex().Passages()
	require.NoError(t, c.Add(ctx, passage("p1", "A", "1", "text")))

	got, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	got.Metadata[domain.FieldCourseTitle] = "mutated"

	again, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "A", again.Metadata[domain.FieldCourseTitle])
}

func TestCollection_List_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	c := newTestIndex().Courses()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, c.Add(ctx, domain.Record{ID: id, Document: id}))
	}

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
	assert.Equal(t, "b", list[2].ID)
}

func TestDualIndex_Reset(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex()
	require.NoError(t, idx.Courses().Add(ctx, domain.Record{ID: "A", Document: "A"}))
	require.NoError(t, idx.Passages().Add(ctx, passage("p1", "A", "1", "text")))

	require.NoError(t, idx.Reset(ctx))

	n, _ := idx.Courses().Count(ctx)
	assert.Zero(t, n)
	n, _ = idx.Passages().Count(ctx)
	assert.Zero(t, n)

	// IDs are reusable after a reset.
	assert.NoError(t, idx.Courses().Add(ctx, domain.Record{ID: "A", Document: "A"}))
}

func TestCollection_ConcurrentAddAndQuery(t *testing.T) {
	ctx := context.Background()
	c := newTestIndex().Passages()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, c.Add(ctx, passage(fmt.Sprintf("p%d", i), "A", "1", fmt.Sprintf("passage number %d", i))))
		}(i)
		go func() {
			defer wg.Done()
			hits, err := c.Query(ctx, "passage", 5, nil)
			assert.NoError(t, err)
			for _, h := range hits {
				assert.NotEmpty(t, h.Record.Document)
			}
		}()
	}
	wg.Wait()

	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestCollection_AddMany(t *testing.T) {
	ctx := context.Background()
	c := newTestIndex().Passages()
	require.NoError(t, c.Add(ctx, passage("p1", "A", "1", "already here")))

	added, err := c.AddMany(ctx, []domain.Record{
		passage("p1", "A", "1", "replacement"),
		passage("p2", "A", "1", "second passage"),
		passage("p3", "A", "2", "third passage"),
		passage("p2", "A", "1", "repeated in batch"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	records, err := c.List(ctx)
	require.NoError(t, err)
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids)
	assert.Equal(t, "already here", records[0].Document)
	assert.Equal(t, "second passage", records[1].Document)

	hits, err := c.Query(ctx, "third passage", 1, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p3", hits[0].Record.ID)
}

func TestCollection_AddMany_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("embedding failure stores nothing", func(t *testing.T) {
		c := NewCollection("test", newFailingEmbedder())
		added, err := c.AddMany(ctx, []domain.Record{passage("p1", "A", "1", "x")})
		assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
		assert.Zero(t, added)
		n, err := c.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := newTestIndex().Passages().AddMany(ctx, []domain.Record{{Document: "x"}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("nothing new", func(t *testing.T) {
		added, err := NewCollection("test", newFailingEmbedder()).AddMany(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, added)
	})
}
