// Package mcp provides an MCP (Model Context Protocol) server adapter for courserag.
// It exposes the course search and outline tools and the course catalog to AI assistants.
package mcp

import "errors"

// ErrMissingToolRegistry is returned when the tool registry is not provided.
var ErrMissingToolRegistry = errors.New("mcp: tool registry is required")

// ErrMissingCatalogService is returned when the catalog service is not provided.
var ErrMissingCatalogService = errors.New("mcp: catalog service is required")
