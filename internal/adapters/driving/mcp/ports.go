package mcp

import (
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Tools dispatches search_course_content and get_course_outline.
	Tools driving.ToolRegistry

	// Catalog backs the course catalog resources.
	Catalog driving.CatalogService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Tools == nil {
		return ErrMissingToolRegistry
	}
	if p.Catalog == nil {
		return ErrMissingCatalogService
	}
	return nil
}
