package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

func foundOutcome() *domain.SearchOutcome {
	return &domain.SearchOutcome{
		Status:         domain.SearchStatusFound,
		ResolvedCourse: "Introduction to MCP",
		Hits: []domain.PassageHit{
			{
				Passage: domain.Passage{
					CourseTitle:  "Introduction to MCP",
					LessonNumber: 1,
					ChunkIndex:   3,
					Content:      "Servers expose tools and resources.",
					Text:         "Course Introduction to MCP Lesson 1 content: Servers expose tools and resources.",
				},
				Distance: 0.25,
			},
		},
		Sources: []domain.Source{
			{Label: "Introduction to MCP - Lesson 1", Link: "https://example.com/mcp/1"},
		},
	}
}

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Short(t *testing.T) {
	assert.Equal(t, "Search course passages", searchCmd.Short)
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	_, err := executeCommand("search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestSearchCmd_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "course", shorthand: "c", defValue: ""},
		{name: "lesson", shorthand: "l", defValue: "-1"},
		{name: "limit", shorthand: "n", defValue: "0"},
		{name: "json", shorthand: "", defValue: "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := searchCmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag, "%s flag should exist", tt.name)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestSearchCmd_BuildsRequest(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("search", "--course", "mcp", "--lesson", "2", "--limit", "3", "what", "are", "servers")

	require.NoError(t, err)
	require.Len(t, mocks.search.requests, 1)
	req := mocks.search.requests[0]
	assert.Equal(t, "what are servers", req.Query)
	assert.Equal(t, "mcp", req.CourseName)
	require.NotNil(t, req.LessonNumber)
	assert.Equal(t, 2, *req.LessonNumber)
	assert.Equal(t, 3, req.Limit)
}

func TestSearchCmd_LessonZeroIsAFilter(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("search", "-l", "0", "intro")

	require.NoError(t, err)
	require.NotNil(t, mocks.search.requests[0].LessonNumber)
	assert.Equal(t, 0, *mocks.search.requests[0].LessonNumber)
}

func TestSearchCmd_NegativeLessonIsRejected(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.search.err = fmt.Errorf("%w: lesson number must not be negative", domain.ErrInvalidInput)

	_, err := executeCommand("search", "--lesson=-2", "intro")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Len(t, mocks.search.requests, 1)
	require.NotNil(t, mocks.search.requests[0].LessonNumber)
	assert.Equal(t, -2, *mocks.search.requests[0].LessonNumber)
}

func TestSearchCmd_NoLessonByDefault(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("search", "intro")

	require.NoError(t, err)
	assert.Nil(t, mocks.search.requests[0].LessonNumber)
	assert.Empty(t, mocks.search.requests[0].CourseName)
}

func TestSearchCmd_TextOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.search.outcome = foundOutcome()

	out, err := executeCommand("search", "servers")

	require.NoError(t, err)
	assert.Contains(t, out, "[Introduction to MCP - Lesson 1]")
	assert.Contains(t, out, "Servers expose tools and resources.")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "- Introduction to MCP - Lesson 1 (https://example.com/mcp/1)")
}

func TestSearchCmd_NoResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No relevant content found")
	assert.NotContains(t, out, "Sources:")
}

func TestSearchCmd_CourseNotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.search.outcome = &domain.SearchOutcome{
		Status:  domain.SearchStatusCourseNotFound,
		Request: domain.SearchRequest{Query: "x", CourseName: "Cooking"},
	}

	out, err := executeCommand("search", "-c", "Cooking", "x")

	require.NoError(t, err)
	assert.Contains(t, out, "No course found matching 'Cooking'")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.search.outcome = foundOutcome()

	out, err := executeCommand("search", "--json", "servers")
	require.NoError(t, err)

	var got searchOutputJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "found", got.Status)
	assert.Equal(t, "Introduction to MCP", got.Course)
	require.Len(t, got.Results, 1)
	assert.Equal(t, 1, got.Results[0].Lesson)
	assert.Equal(t, 3, got.Results[0].Chunk)
	assert.InDelta(t, 0.75, got.Results[0].Score, 1e-9)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "https://example.com/mcp/1", got.Sources[0].Link)
}

func TestSearchCmd_JSONEmptyArrays(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("search", "--json", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, `"results": []`)
	assert.Contains(t, out, `"sources": []`)
}

func TestSearchCmd_BackendError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.search.err = domain.ErrEmbeddingUnavailable

	_, err := executeCommand("search", "servers")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
	assert.Contains(t, err.Error(), "search failed")
}

func TestSearchCmd_ErrorsWithoutSearchService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	loaded.Search = nil

	_, err := executeCommand("search", "servers")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}
