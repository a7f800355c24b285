package domain

// ToolParameter describes one argument of a tool.
type ToolParameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// ToolDefinition describes a callable tool exposed to a model orchestrator.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  []ToolParameter
}

// Tool names.
const (
	ToolSearchCourseContent = "search_course_content"
	ToolGetCourseOutline    = "get_course_outline"
)
