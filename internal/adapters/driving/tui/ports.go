// Package tui provides an interactive terminal user interface for courserag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/syang620/course-materials-rag-chatbot/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search answers scoped passage queries.
	Search driving.SearchService

	// Catalog lists courses and their outlines.
	Catalog driving.CatalogService

	// Settings shows the effective configuration. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	search driving.SearchService,
	catalog driving.CatalogService,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Search:   search,
		Catalog:  catalog,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Catalog == nil {
		return ErrMissingCatalogService
	}
	return nil
}
