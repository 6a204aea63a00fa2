// ABOUTME: MCP server subcommand
// ABOUTME: Starts the deal MCP server on stdio for Claude Desktop integration
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealdesk/handlers"
)

// MCPCommand starts the MCP server on stdio and blocks until the client disconnects.
func MCPCommand(ctx context.Context, env *Env) error {
	ws := env.workspace()
	defer ws.Close()

	server := handlers.NewServer(ws, contactDirectory(ctx, env), env.Version)

	if env.Logger != nil {
		env.Logger.Info("starting MCP server", "version", env.Version, "uploads", env.Uploads != nil)
	}
	return server.Run(ctx, &mcp.StdioTransport{})
}
