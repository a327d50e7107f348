package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// NewServer registers the AceMock tools on a new MCP server.
func NewServer(eng Engine, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "acemock", Version: version}, nil)

	tools := NewTools(eng)
	mcp.AddTool(server, MetadataEvaluateAnswer, tools.EvaluateAnswer)
	mcp.AddTool(server, MetadataAssistantChat, tools.AssistantChat)
	return server
}

// Run serves the tools over stdin/stdout until ctx ends or the client
// disconnects. Logs must not go to stdout while it runs.
func Run(ctx context.Context, eng Engine, version string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("starting MCP server on stdio", zap.String("version", version))
	return NewServer(eng, version).Run(ctx, &mcp.StdioTransport{})
}
