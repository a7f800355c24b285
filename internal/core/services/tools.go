package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
	"github.com/syang620/course-materials-rag-chatbot/internal/logger"
)

// Ensure tools and the registry implement the interfaces.
var (
	_ driving.ToolRegistry  = (*ToolRegistry)(nil)
	_ driving.Tool          = (*SearchTool)(nil)
	_ driving.SourceTracker = (*SearchTool)(nil)
	_ driving.Tool          = (*OutlineTool)(nil)
)

// ToolRegistry dispatches tool calls by name.
type ToolRegistry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]driving.Tool
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]driving.Tool)}
}

// Register adds a tool, replacing any tool with the same name.
func (r *ToolRegistry) Register(tool driving.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Definition().Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Definitions returns the definitions of all tools in registration order.
func (r *ToolRegistry) Definitions() []domain.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]domain.ToolDefinition, len(r.order))
	for i, name := range r.order {
		defs[i] = r.tools[name].Definition()
	}
	return defs
}

// Execute runs the named tool.
func (r *ToolRegistry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name), nil
	}
	logger.Debug("Tool call: %s %v", name, args)
	return tool.Execute(ctx, args)
}

// LastSources returns the citations recorded by source-tracking tools, in registration order.
func (r *ToolRegistry) LastSources() []domain.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Source
	for _, name := range r.order {
		if tracker, ok := r.tools[name].(driving.SourceTracker); ok {
			out = append(out, tracker.LastSources()...)
		}
	}
	return out
}

// ResetSources clears recorded citations on every source-tracking tool.
func (r *ToolRegistry) ResetSources() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tool := range r.tools {
		if tracker, ok := tool.(driving.SourceTracker); ok {
			tracker.ResetSources()
		}
	}
}

// ==================== search_course_content ====================

// SearchTool exposes the search service as search_course_content.
type SearchTool struct {
	search driving.SearchService

	mu          sync.Mutex
	lastSources []domain.Source
}

// NewSearchTool creates the course content search tool.
func NewSearchTool(search driving.SearchService) *SearchTool {
	return &SearchTool{search: search}
}

// Definition describes the tool.
func (t *SearchTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        domain.ToolSearchCourseContent,
		Description: "Search course materials with smart course name matching and lesson filtering",
		Parameters: []domain.ToolParameter{
			{Name: "query", Type: "string", Description: "What to search for in the course content", Required: true},
			{Name: "course_name", Type: "string", Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')"},
			{Name: "lesson_number", Type: "integer", Description: "Specific lesson number to search within (e.g. 1, 2, 3)"},
		},
	}
}

// Execute runs a search and formats the passages for the model.
func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return "", err
	}
	if query == "" {
		return "", fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	courseName, err := stringArg(args, "course_name")
	if err != nil {
		return "", err
	}
	lesson, err := intArg(args, "lesson_number")
	if err != nil {
		return "", err
	}

	outcome, err := t.search.Search(ctx, domain.SearchRequest{
		Query:        query,
		CourseName:   courseName,
		LessonNumber: lesson,
	})
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	t.lastSources = outcome.Sources
	t.mu.Unlock()

	return FormatOutcome(outcome), nil
}

// LastSources returns the citations of the last execution.
func (t *SearchTool) LastSources() []domain.Source {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Source(nil), t.lastSources...)
}

// ResetSources clears the recorded citations.
func (t *SearchTool) ResetSources() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSources = nil
}

// FormatOutcome renders a search outcome as text for a model or terminal.
func FormatOutcome(outcome *domain.SearchOutcome) string {
	req := outcome.Request
	switch outcome.Status {
	case domain.SearchStatusCourseNotFound:
		return fmt.Sprintf("No course found matching '%s'", req.CourseName)

	case domain.SearchStatusNoResults:
		var b strings.Builder
		b.WriteString("No relevant content found")
		if req.CourseName != "" {
			fmt.Fprintf(&b, " in course '%s'", req.CourseName)
		}
		if req.LessonNumber != nil {
			fmt.Fprintf(&b, " in lesson %d", *req.LessonNumber)
		}
		b.WriteString(".")
		return b.String()
	}

	blocks := make([]string, len(outcome.Hits))
	for i, h := range outcome.Hits {
		blocks[i] = fmt.Sprintf("[%s]\n%s",
			domain.CitationLabel(h.Passage.CourseTitle, h.Passage.LessonNumber), h.Passage.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// ==================== get_course_outline ====================

// OutlineTool exposes the catalog as get_course_outline.
type OutlineTool struct {
	catalog driving.CatalogService
}

// NewOutlineTool creates the course outline tool.
func NewOutlineTool(catalog driving.CatalogService) *OutlineTool {
	return &OutlineTool{catalog: catalog}
}

// Definition describes the tool.
func (t *OutlineTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        domain.ToolGetCourseOutline,
		Description: "Get a course's title, link, instructor and complete lesson list",
		Parameters: []domain.ToolParameter{
			{Name: "course_name", Type: "string", Description: "Course title (partial matches work)", Required: true},
		},
	}
}

// Execute resolves the course and formats its outline.
func (t *OutlineTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	name, err := stringArg(args, "course_name")
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("%w: course_name is required", domain.ErrInvalidInput)
	}

	info, err := t.catalog.Outline(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Sprintf("No course found matching '%s'", name), nil
	}
	if err != nil {
		return "", err
	}
	return FormatOutline(info), nil
}

// FormatOutline renders a course outline.
func FormatOutline(info *domain.CourseInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course Title: %s\n", info.Title)
	if info.Link != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", info.Link)
	}
	if info.Instructor != "" {
		fmt.Fprintf(&b, "Course Instructor: %s\n", info.Instructor)
	}
	fmt.Fprintf(&b, "Lessons (%d):", len(info.Lessons))
	for _, l := range info.Lessons {
		fmt.Fprintf(&b, "\nLesson %d: %s", l.Number, l.Title)
		if l.Link != "" {
			fmt.Fprintf(&b, " (%s)", l.Link)
		}
	}
	return b.String()
}

// ==================== argument helpers ====================

// stringArg returns an optional string argument; absent or null yields "".
func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", domain.ErrInvalidInput, name)
	}
	return strings.TrimSpace(s), nil
}

// intArg returns an optional integer argument.
// JSON numbers arrive as float64 or json.Number; numeric strings are accepted too.
func intArg(args map[string]any, name string) (*int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}

	invalid := fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)

	var n64 int64
	switch x := v.(type) {
	case int:
		n64 = int64(x)
	case int64:
		n64 = x
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > math.MaxInt32 {
			return nil, invalid
		}
		n64 = int64(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return nil, invalid
		}
		n64 = i
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, nil
		}
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, invalid
		}
		n64 = i
	default:
		return nil, invalid
	}

	if n64 < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, name)
	}
	if n64 > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %s is out of range", domain.ErrInvalidInput, name)
	}
	n := int(n64)
	return &n, nil
}
