// Package mcpserver exposes the routing engine as an MCP tool over stdio,
// so the LLM orchestration layer that writes the actual replies can call
// route_message before generating anything.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jakco/support-router/internal/engine"
)

type routeArgs struct {
	Message   string `json:"message" jsonschema:"the raw customer message"`
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation id; omit to start a new session"`
}

type routeResult struct {
	SessionID    string                `json:"session_id"`
	Category     engine.Category       `json:"category"`
	SearchQuery  string                `json:"search_query"`
	Escalate     bool                  `json:"escalate"`
	Priority     engine.Priority       `json:"priority"`
	BlockHints   []string              `json:"block_hints"`
	Instructions string                `json:"instructions"`
	Facts        engine.ExtractedFacts `json:"facts"`
	Blocks       []engine.Block        `json:"blocks,omitempty"`
}

// Run serves the MCP session on stdin/stdout until the context ends or the
// client disconnects.
func Run(ctx context.Context, eng *engine.Engine, version string, logger *slog.Logger) error {
	server := NewServer(eng, version)
	logger.Info("mcp server started", "transport", "stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}

func NewServer(eng *engine.Engine, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "support-router", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "route_message",
		Description: "Classify a customer support message, extract payment facts, and decide whether a human must take over. Returns the curated content blocks the reply should be based on.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args routeArgs) (*mcp.CallToolResult, routeResult, error) {
		result := eng.Route(ctx, engine.Request{Message: args.Message, SessionID: args.SessionID})
		return nil, routeResult{
			SessionID:    result.SessionID,
			Category:     result.Decision.Category,
			SearchQuery:  result.Decision.SearchQuery,
			Escalate:     result.Decision.Escalate,
			Priority:     result.Decision.Priority,
			BlockHints:   result.Decision.BlockHints,
			Instructions: result.Decision.Instructions,
			Facts:        result.Decision.Facts,
			Blocks:       result.Blocks,
		}, nil
	})
	return server
}
