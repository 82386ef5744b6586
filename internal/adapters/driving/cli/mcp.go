package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/artid/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools:
  recognize_artwork  identify the artwork in a photograph (path or base64)
  catalog_lookup     match a title and artist against the curated catalog

By default the server communicates over stdio. Use --port to serve the
streamable HTTP transport instead, e.g. for the MCP Inspector.

Examples:
  # Stdio mode (default, for desktop assistants)
  artid mcp serve

  # HTTP mode
  artid mcp serve --port 8090

Desktop assistant configuration:
  {
    "mcpServers": {
      "artid": {
        "command": "/path/to/artid",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	recognition, err := requireRecognition()
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Recognition: recognition,
		Catalog:     catalogService,
		Collection:  collectionService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
