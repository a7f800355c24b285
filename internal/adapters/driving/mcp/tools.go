package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

// SearchInput is the input schema for the search_course_content tool.
type SearchInput struct {
	Query        string `json:"query" jsonschema:"what to search for in the course content"`
	CourseName   string `json:"course_name,omitempty" jsonschema:"course title, partial matches work (e.g. 'MCP', 'Introduction')"`
	LessonNumber *int   `json:"lesson_number,omitempty" jsonschema:"specific lesson number to search within (e.g. 1, 2, 3)"`
}

// SearchOutput is the output schema for the search_course_content tool.
type SearchOutput struct {
	Text    string          `json:"text"`
	Sources []domain.Source `json:"sources"`
}

// OutlineInput is the input schema for the get_course_outline tool.
type OutlineInput struct {
	CourseName string `json:"course_name" jsonschema:"course title, partial matches work"`
}

// OutlineOutput is the output schema for the get_course_outline tool.
type OutlineOutput struct {
	Text string `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
// Descriptions come from the registry so the MCP and in-process tool surfaces agree.
func (s *Server) registerTools() {
	descriptions := make(map[string]string)
	for _, def := range s.ports.Tools.Definitions() {
		descriptions[def.Name] = def.Description
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        domain.ToolSearchCourseContent,
		Description: descriptions[domain.ToolSearchCourseContent],
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        domain.ToolGetCourseOutline,
		Description: descriptions[domain.ToolGetCourseOutline],
	}, s.handleOutline)
}

// handleSearch handles the search_course_content tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	args := map[string]any{"query": input.Query}
	if input.CourseName != "" {
		args["course_name"] = input.CourseName
	}
	if input.LessonNumber != nil {
		args["lesson_number"] = *input.LessonNumber
	}

	s.toolMu.Lock()
	defer s.toolMu.Unlock()

	s.ports.Tools.ResetSources()
	text, err := s.ports.Tools.Execute(ctx, domain.ToolSearchCourseContent, args)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Text:    text,
		Sources: s.ports.Tools.LastSources(),
	}
	if output.Sources == nil {
		output.Sources = []domain.Source{}
	}
	return textResult(text), output, nil
}

// handleOutline handles the get_course_outline tool invocation.
func (s *Server) handleOutline(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input OutlineInput,
) (*mcp.CallToolResult, OutlineOutput, error) {
	text, err := s.ports.Tools.Execute(ctx, domain.ToolGetCourseOutline, map[string]any{
		"course_name": input.CourseName,
	})
	if err != nil {
		return nil, OutlineOutput{}, err
	}
	return textResult(text), OutlineOutput{Text: text}, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
