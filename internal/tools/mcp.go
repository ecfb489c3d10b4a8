package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/joescharf/devteam/internal/llm"
)

// MCPToolset exposes the tools of one stdio MCP server as an llm.Toolset.
type MCPToolset struct {
	client *client.Client
}

// NewGitHubToolset spawns the GitHub MCP server over stdio. The token is
// passed through the child environment, never through argv.
func NewGitHubToolset(ctx context.Context, token string) (*MCPToolset, error) {
	env := []string{"GITHUB_PERSONAL_ACCESS_TOKEN=" + token}
	return NewStdioToolset(ctx, "npx", env, "-y", "@modelcontextprotocol/server-github")
}

// NewStdioToolset starts command as an MCP stdio server and initializes the
// session.
func NewStdioToolset(ctx context.Context, command string, env []string, args ...string) (*MCPToolset, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("start MCP server %s: %w", command, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "devteam", Version: "1.0.0"}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("initialize MCP server %s: %w", command, err)
	}

	return &MCPToolset{client: c}, nil
}

// Tools lists the server's tools as definitions for the model.
func (t *MCPToolset) Tools(ctx context.Context) ([]llm.ToolDef, error) {
	res, err := t.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list MCP tools: %w", err)
	}

	defs := make([]llm.ToolDef, len(res.Tools))
	for i, tool := range res.Tools {
		props := tool.InputSchema.Properties
		if props == nil {
			props = map[string]any{}
		}
		defs[i] = llm.ToolDef{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: props,
			Required:    tool.InputSchema.Required,
		}
	}
	return defs, nil
}

// Call invokes a tool and returns its concatenated text content. A result
// flagged IsError comes back as a Go error carrying that text.
func (t *MCPToolset) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := t.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call tool %s: %w", name, err)
	}

	var b strings.Builder
	for _, content := range res.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	if res.IsError {
		return "", fmt.Errorf("tool %s: %s", name, b.String())
	}
	return b.String(), nil
}

// Close shuts down the underlying MCP server process.
func (t *MCPToolset) Close() error {
	return t.client.Close()
}
