// Package driving declares the use cases the CLI, MCP server and TUI call:
// ingesting course folders, searching passages, browsing the catalog,
// editing settings and running tools.
//
// internal/core/services implements them.
package driving
