package driving

import (
	"context"

	"github.com/syang620/course-materials-rag-chatbot/internal/core/domain"
)

// Tool is a capability exposed to a model orchestrator.
type Tool interface {
	// Definition describes the tool's name and parameters.
	Definition() domain.ToolDefinition

	// Execute runs the tool with loosely typed arguments and returns text for the model.
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// SourceTracker is implemented by tools that record citations of their last execution.
type SourceTracker interface {
	LastSources() []domain.Source
	ResetSources()
}

// ToolRegistry dispatches tool calls by name.
type ToolRegistry interface {
	// Register adds a tool, replacing any tool with the same name.
	Register(tool Tool)

	// Definitions returns the definitions of all tools in registration order.
	Definitions() []domain.ToolDefinition

	// Execute runs the named tool. An unknown name yields a not-found message, not an error.
	Execute(ctx context.Context, name string, args map[string]any) (string, error)

	// LastSources returns the citations recorded by the most recent executions.
	LastSources() []domain.Source

	// ResetSources clears recorded citations.
	ResetSources()
}
