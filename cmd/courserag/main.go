// Command courserag indexes course transcripts and serves scoped retrieval
// over a CLI, a terminal UI and an MCP server.
package main

import (
	"os"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetFactories(cli.Factories{
		Settings: newSettingsService,
		Services: newServices,
	})

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
