package mcp

import (
	"context"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
)

// toolCall records one registry dispatch.
type toolCall struct {
	name string
	args map[string]any
}

// mockToolRegistry is a mock implementation of driving.ToolRegistry.
type mockToolRegistry struct {
	text    string
	err     error
	sources []domain.Source
	calls   []toolCall
	resets  int
}

func (m *mockToolRegistry) Register(_ driving.Tool) {}

func (m *mockToolRegistry) Definitions() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{Name: domain.ToolSearchCourseContent, Description: "search"},
		{Name: domain.ToolGetCourseOutline, Description: "outline"},
	}
}

func (m *mockToolRegistry) Execute(_ context.Context, name string, args map[string]any) (string, error) {
	m.calls = append(m.calls, toolCall{name: name, args: args})
	return m.text, m.err
}

func (m *mockToolRegistry) LastSources() []domain.Source { return m.sources }

func (m *mockToolRegistry) ResetSources() { m.resets++ }

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	analytics *domain.CourseAnalytics
	info      *domain.CourseInfo
	err       error
	outlined  []string
}

func (m *mockCatalogService) Analytics(_ context.Context) (*domain.CourseAnalytics, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.analytics, nil
}

func (m *mockCatalogService) ListCourses(_ context.Context) ([]domain.CourseInfo, error) {
	return nil, m.err
}

func (m *mockCatalogService) Outline(_ context.Context, name string) (*domain.CourseInfo, error) {
	m.outlined = append(m.outlined, name)
	if m.err != nil {
		return nil, m.err
	}
	return m.info, nil
}

func (m *mockCatalogService) LessonLink(_ context.Context, _ string, _ int) (string, error) {
	return "", m.err
}
