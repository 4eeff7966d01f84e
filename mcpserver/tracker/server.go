package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type GetIssueArgs struct {
	IssueID string `json:"issue_id" jsonschema:"Issue ID, e.g. ISSUE-1"`
}

type ListIssuesArgs struct {
	Status string `json:"status,omitempty" jsonschema:"Optional status filter: open, in_progress, closed"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of issues to return"`
}

type CreateIssueArgs struct {
	Title    string `json:"title" jsonschema:"Issue title"`
	Priority string `json:"priority,omitempty" jsonschema:"Issue priority, defaults to medium"`
}

// NewServer exposes the issue tracker as an MCP tool set.
func NewServer(store *Store) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "jewelryops-tracker",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_issue",
		Description: "Get a single issue by ID (e.g. ISSUE-1)",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args GetIssueArgs) (*mcp.CallToolResult, any, error) {
		issue, err := store.Get(args.IssueID)
		if errors.Is(err, ErrNotFound) {
			return jsonResult(map[string]string{"error": "Issue not found: " + args.IssueID})
		}
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(issue)
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_issues",
		Description: "List issues, optionally filtered by status (open, in_progress, closed)",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args ListIssuesArgs) (*mcp.CallToolResult, any, error) {
		limit := args.Limit
		if limit <= 0 {
			limit = 20
		}
		issues, err := store.List(args.Status, limit)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(issues)
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_issue",
		Description: "Create a new mock issue. Side effect: persists to the local JSON file",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args CreateIssueArgs) (*mcp.CallToolResult, any, error) {
		priority := args.Priority
		if priority == "" {
			priority = "medium"
		}
		issue, err := store.Create(args.Title, priority)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(map[string]any{"ok": true, "issue": issue})
	})

	return srv
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil, nil
}
