package services

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

func TestToolRegistry_DefinitionsInRegistrationOrder(t *testing.T) {
	r := NewToolRegistry()
	r.Register(&mockTool{name: "b"})
	r.Register(&mockTool{name: "a"})
	r.Register(&mockTool{name: "b", result: "replaced"})

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "b", defs[0].Name)
	assert.Equal(t, "a", defs[1].Name)

	out, err := r.Execute(context.Background(), "b", nil)
	require.NoError(t, err)
	assert.Equal(t, "replaced", out)
}

func TestToolRegistry_Execute(t *testing.T) {
	r := NewToolRegistry()
	tool := &mockTool{name: "echo", result: "done"}
	r.Register(tool)

	out, err := r.Execute(context.Background(), "echo", map[string]any{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, map[string]any{"x": 1}, tool.args)
}

func TestToolRegistry_Execute_UnknownTool(t *testing.T) {
	r := NewToolRegistry()

	out, err := r.Execute(context.Background(), "missing", nil)
	require.NoError(t, err)
	assert.Equal(t, "Tool 'missing' not found", out)
}

func TestToolRegistry_Sources(t *testing.T) {
	r := NewToolRegistry()
	first := &mockTool{name: "first", sources: []domain.Source{{Label: "A - Lesson 1"}}}
	second := &mockTool{name: "second", sources: []domain.Source{{Label: "B - Lesson 2", Link: "https://b/2"}}}
	r.Register(first)
	r.Register(plainTool{name: "plain"})
	r.Register(second)

	assert.Equal(t, []domain.Source{
		{Label: "A - Lesson 1"},
		{Label: "B - Lesson 2", Link: "https://b/2"},
	}, r.LastSources())

	r.ResetSources()
	assert.Empty(t, r.LastSources())
	assert.Nil(t, first.sources)
	assert.Nil(t, second.sources)
}

func TestSearchTool_Definition(t *testing.T) {
	def := NewSearchTool(&mockSearchService{}).Definition()

	assert.Equal(t, domain.ToolSearchCourseContent, def.Name)
	require.Len(t, def.Parameters, 3)
	assert.Equal(t, "query", def.Parameters[0].Name)
	assert.True(t, def.Parameters[0].Required)
	assert.False(t, def.Parameters[1].Required)
	assert.Equal(t, "integer", def.Parameters[2].Type)
}

func TestSearchTool_Execute(t *testing.T) {
	search := &mockSearchService{outcome: &domain.SearchOutcome{
		Status: domain.SearchStatusFound,
		Hits: []domain.PassageHit{
			{Passage: domain.Passage{CourseTitle: "MCP", LessonNumber: 1, Text: "Course MCP Lesson 1 content: sampling"}},
			{Passage: domain.Passage{CourseTitle: "MCP", LessonNumber: 2, Text: "Course MCP Lesson 2 content: transports"}},
		},
		Sources: []domain.Source{{Label: "MCP - Lesson 1"}, {Label: "MCP - Lesson 2", Link: "https://example.com/mcp/2"}},
	}}
	tool := NewSearchTool(search)

	out, err := tool.Execute(context.Background(), map[string]any{
		"query":         "  sampling  ",
		"course_name":   "MCP",
		"lesson_number": float64(1),
	})
	require.NoError(t, err)

	assert.Equal(t, "sampling", search.got.Query)
	assert.Equal(t, "MCP", search.got.CourseName)
	require.NotNil(t, search.got.LessonNumber)
	assert.Equal(t, 1, *search.got.LessonNumber)

	assert.Equal(t,
		"[MCP - Lesson 1]\nCourse MCP Lesson 1 content: sampling\n\n[MCP - Lesson 2]\nCourse MCP Lesson 2 content: transports",
		out)
	assert.Len(t, tool.LastSources(), 2)

	tool.ResetSources()
	assert.Empty(t, tool.LastSources())
}

func TestSearchTool_Execute_InvalidArguments(t *testing.T) {
	tool := NewSearchTool(&mockSearchService{outcome: &domain.SearchOutcome{}})

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing query", map[string]any{}},
		{"blank query", map[string]any{"query": "  "}},
		{"non-string query", map[string]any{"query": 3}},
		{"non-string course", map[string]any{"query": "q", "course_name": true}},
		{"fractional lesson", map[string]any{"query": "q", "lesson_number": 1.5}},
		{"negative lesson", map[string]any{"query": "q", "lesson_number": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tool.Execute(context.Background(), tt.args)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSearchTool_Execute_BackendError(t *testing.T) {
	tool := NewSearchTool(&mockSearchService{err: domain.ErrBackendUnavailable})

	_, err := tool.Execute(context.Background(), map[string]any{"query": "q"})
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestSearchTool_Execute_CourseNotFound(t *testing.T) {
	p := seededPipeline(t, 0.1)
	tool := NewSearchTool(p.search)

	out, err := tool.Execute(context.Background(), map[string]any{
		"query":       "What is in lesson 3?",
		"course_name": "Nonexistent Course",
	})
	require.NoError(t, err)
	assert.Equal(t, "No course found matching 'Nonexistent Course'", out)
	assert.Empty(t, tool.LastSources())
}

func TestFormatOutcome_NoResults(t *testing.T) {
	lesson := 4
	tests := []struct {
		name string
		req  domain.SearchRequest
		want string
	}{
		{"unscoped", domain.SearchRequest{Query: "q"}, "No relevant content found."},
		{"course", domain.SearchRequest{Query: "q", CourseName: "MCP"}, "No relevant content found in course 'MCP'."},
		{"lesson", domain.SearchRequest{Query: "q", LessonNumber: &lesson}, "No relevant content found in lesson 4."},
		{
			"course and lesson",
			domain.SearchRequest{Query: "q", CourseName: "MCP", LessonNumber: &lesson},
			"No relevant content found in course 'MCP' in lesson 4.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatOutcome(&domain.SearchOutcome{Status: domain.SearchStatusNoResults, Request: tt.req})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutlineTool_Execute(t *testing.T) {
	p := seededPipeline(t, 0)
	tool := NewOutlineTool(p.catalog)

	out, err := tool.Execute(context.Background(), map[string]any{"course_name": "MCP"})
	require.NoError(t, err)

	want := "Course Title: Model Context Protocol: Advanced Patterns\n" +
		"Course Link: https://example.com/mcp\n" +
		"Course Instructor: Ada Lovelace\n" +
		"Lessons (3):\n" +
		"Lesson 0: Introduction (https://example.com/mcp/0)\n" +
		"Lesson 1: Sampling (https://example.com/mcp/1)\n" +
		"Lesson 2: Transports (https://example.com/mcp/2)"
	assert.Equal(t, want, out)
}

func TestOutlineTool_Execute_NotFound(t *testing.T) {
	p := seededPipeline(t, 0.1)
	tool := NewOutlineTool(p.catalog)

	out, err := tool.Execute(context.Background(), map[string]any{"course_name": "Nonexistent Course"})
	require.NoError(t, err)
	assert.Equal(t, "No course found matching 'Nonexistent Course'", out)

	_, err = tool.Execute(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFormatOutline_Minimal(t *testing.T) {
	got := FormatOutline(&domain.CourseInfo{
		Title:   "Introduction to Chroma",
		Lessons: []domain.LessonInfo{{Number: 1, Title: "Collections"}},
	})
	assert.Equal(t, "Course Title: Introduction to Chroma\nLessons (1):\nLesson 1: Collections", got)
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    *int
		wantErr bool
	}{
		{"absent", nil, nil, false},
		{"int", 2, intPtr(2), false},
		{"int64", int64(3), intPtr(3), false},
		{"float", float64(0), intPtr(0), false},
		{"json number", json.Number("5"), intPtr(5), false},
		{"string", " 7 ", intPtr(7), false},
		{"empty string", "", nil, false},
		{"fraction", 2.5, nil, true},
		{"word", "two", nil, true},
		{"bool", true, nil, true},
		{"negative", -3, nil, true},
		{"largest", float64(math.MaxInt32), intPtr(math.MaxInt32), false},
		{"huge float", 1e30, nil, true},
		{"huge negative float", -1e30, nil, true},
		{"infinite", math.Inf(1), nil, true},
		{"not a number", math.NaN(), nil, true},
		{"huge int64", int64(math.MaxInt64), nil, true},
		{"huge json number", json.Number("9007199254740993"), nil, true},
		{"huge string", "99999999999999999999", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := intArg(map[string]any{"n": tt.value}, "n")
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
