package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syang620/course-materials-rag-chatbot/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so an AI assistant can search
course content and fetch course outlines.

By default, the server communicates over stdio using JSON-RPC.
Use --port to serve streamable HTTP instead.

On startup the configured docs.path is ingested. Use --watch to keep
ingesting files added to it while the server runs.

Examples:
  # Stdio mode (default)
  courserag mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  courserag mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "courserag": {
        "command": "/path/to/courserag",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("ingest", true, "ingest docs.path on startup")
	mcpServeCmd.Flags().Bool("watch", false, "ingest files added to docs.path while serving")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	ingest, err := cmd.Flags().GetBool("ingest")
	if err != nil {
		return fmt.Errorf("getting ingest flag: %w", err)
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}

	svc, err := loadServices(cmd, BuildOptions{})
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Tools:   svc.Tools,
		Catalog: svc.Catalog,
	})
	if err != nil {
		return err
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	// Stdout carries the JSON-RPC stream in stdio mode.
	status := cmd.ErrOrStderr()
	wait := startBackground(ctx, svc, settings.DocsPath, ingest, watch, status)
	defer wait()
	defer cancel()

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(status, "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
