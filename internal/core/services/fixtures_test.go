package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/embedding/hashing"
	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driven/storage/memory"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/coursedoc"
	"github.com/syang620/course-materials-rag-chatbot/internal/normalisers"
	"github.com/syang620/course-materials-rag-chatbot/internal/postprocessors/chunker"
)

const mcpCourse = `Course Title: Model Context Protocol: Advanced Patterns
Course Link: https://example.com/mcp
Course Instructor: Ada Lovelace

Lesson 0: Introduction
Lesson Link: https://example.com/mcp/0
MCP standardises how applications provide context to language models. Servers expose tools and resources.

Lesson 1: Sampling
Lesson Link: https://example.com/mcp/1
Sampling lets a server request completions from the client. The client keeps control of model access.

Lesson 2: Transports
Lesson Link: https://example.com/mcp/2
Servers communicate over stdio or streamable HTTP transports. Each transport frames JSON-RPC messages.
`

const chromaCourse = `Course Instructor: Grace Hopper
Course Title: Introduction to Chroma

Lesson 1: Collections
Chroma stores embeddings in collections. A collection holds documents, metadata and vectors.

Lesson 2: Querying
Queries embed the question and return the nearest documents. Metadata filters narrow the candidates.
`

const computerUseCourse = `Course Title: Building Agents with Computer Use
Course Instructor: Alan Turing

Lesson 1: Screenshots
The agent looks at screenshots to decide where to click next.
`

// noMarkersCourse has no lesson markers, so the whole body is one lesson.
const noMarkersCourse = `Course Title: Prompt Engineering Basics

Prompts should state the task clearly. Examples help the model follow a format. Short prompts are easier to debug.
`

const untitledCourse = `Course Link: https://example.com/untitled

Lesson 1: Orphan
This document has no title line.
`

// writeCourse writes a course file into dir and returns its path.
func writeCourse(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// testPipeline wires real adapters over an in-memory index.
type testPipeline struct {
	index    *memory.DualIndex
	ingest   *IngestService
	resolver *Resolver
	search   *SearchService
	catalog  *CatalogService
}

func newTestPipeline(t *testing.T, minSimilarity float64) *testPipeline {
	t.Helper()
	index := memory.NewDualIndex(hashing.NewEmbeddingService(hashing.Config{}))
	resolver := NewResolver(index.Courses(), minSimilarity)
	return &testPipeline{
		index:    index,
		ingest:   NewIngestService(normalisers.NewDefaultRegistry(), coursedoc.NewParser(), chunker.New(), index),
		resolver: resolver,
		search:   NewSearchService(index, resolver, 5),
		catalog:  NewCatalogService(index.Courses(), resolver),
	}
}

// seededPipeline ingests the three lesson-structured courses.
func seededPipeline(t *testing.T, minSimilarity float64) *testPipeline {
	t.Helper()
	p := newTestPipeline(t, minSimilarity)
	dir := t.TempDir()
	writeCourse(t, dir, "course1_script.txt", mcpCourse)
	writeCourse(t, dir, "course2_script.txt", chromaCourse)
	writeCourse(t, dir, "course3_script.txt", computerUseCourse)

	summary, err := p.ingest.IngestFolder(t.Context(), dir, domain.IngestOptions{})
	require.NoError(t, err)
	require.Empty(t, summary.Failed)
	require.Equal(t, 3, summary.CoursesAdded)
	return p
}
