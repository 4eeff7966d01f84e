package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	contractx "github.com/jewelryops/agent/agent/contract"
)

// MCPSource exposes the tools of one MCP server reachable over a stdio
// subprocess. Every operation opens a short-lived connection and tears it
// down afterwards; there is no pooling, which bounds resource usage at the
// cost of per-call startup latency.
type MCPSource struct {
	name    string
	command string
	args    []string
	env     []string
}

// NewMCPSource parses a startup command line ("python3 server.py" style)
// into an MCP stdio source. Returns an error when the command is empty.
func NewMCPSource(name, commandLine string) (*MCPSource, error) {
	parts := strings.Fields(strings.TrimSpace(commandLine))
	if len(parts) == 0 {
		return nil, fmt.Errorf("mcp source %s: empty command", name)
	}
	return &MCPSource{
		name:    name,
		command: parts[0],
		args:    parts[1:],
	}, nil
}

func (s *MCPSource) Name() string {
	return s.name
}

func (s *MCPSource) connect(ctx context.Context) (*mcp.ClientSession, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "jewelryops-agent",
		Version: "0.1.0",
	}, nil)

	cmd := exec.CommandContext(ctx, s.command, s.args...)
	cmd.Env = append(os.Environ(), s.env...)

	sess, err := client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		return nil, fmt.Errorf("connect mcp source %s: %w", s.name, err)
	}
	return sess, nil
}

func (s *MCPSource) ListTools(ctx context.Context) ([]contractx.ToolDescriptor, error) {
	sess, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	res, err := sess.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list tools on %s: %w", s.name, err)
	}

	descriptors := make([]contractx.ToolDescriptor, 0, len(res.Tools))
	for _, t := range res.Tools {
		params, err := schemaToMap(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("decode schema for %s/%s: %w", s.name, t.Name, err)
		}
		descriptors = append(descriptors, contractx.ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		})
	}
	return descriptors, nil
}

// CallTool invokes name on the source and returns the first text content
// item, or an empty string when the result carries no content.
func (s *MCPSource) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	sess, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	defer sess.Close()

	res, err := sess.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return "", fmt.Errorf("call %s on %s: %w", name, s.name, err)
	}

	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			return text.Text, nil
		}
	}
	return "", nil
}

func schemaToMap(schema any) (map[string]any, error) {
	if schema == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
