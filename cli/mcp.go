// ABOUTME: MCP server subcommand
// ABOUTME: Serves the DoFo tools, resources, and prompts over stdio
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harperreed/dofo/handlers"
)

// MCPCommand starts the MCP server on stdio and blocks until the client disconnects.
func MCPCommand(ctx context.Context, env *Env, version string) error {
	logger := env.logger()
	logger.Info("starting MCP server", zap.String("version", version))

	opts := []handlers.Option{handlers.WithPolicy(env.policy())}
	if env.State != nil {
		opts = append(opts, handlers.WithState(env.State))
	}
	if env.Now != nil {
		opts = append(opts, handlers.WithClock(env.Now))
	}

	server := handlers.NewServer(handlers.New(env.Set, logger, opts...), version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
