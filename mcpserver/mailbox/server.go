package mailbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultSender = "support@jewelryops.test"

type ListEmailsArgs struct {
	Direction string `json:"direction,omitempty" jsonschema:"Optional direction filter: in or out"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of emails to return"`
}

type SearchEmailsArgs struct {
	Query string `json:"query" jsonschema:"Text to match against subject and body, case-insensitive"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of emails to return"`
}

type SendEmailArgs struct {
	To      string `json:"to" jsonschema:"Recipient address"`
	Subject string `json:"subject" jsonschema:"Email subject"`
	Body    string `json:"body" jsonschema:"Email body"`
	Sender  string `json:"sender,omitempty" jsonschema:"Sender address, defaults to the support mailbox"`
}

// NewServer exposes the mailbox as an MCP tool set.
func NewServer(store *Store) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "jewelryops-mailbox",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_emails",
		Description: "List mock emails, optionally filtered by direction ('in' or 'out')",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args ListEmailsArgs) (*mcp.CallToolResult, any, error) {
		limit := args.Limit
		if limit <= 0 {
			limit = 20
		}
		emails, err := store.List(args.Direction, limit)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(emails)
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_emails",
		Description: "Search emails by subject or body (case-insensitive)",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args SearchEmailsArgs) (*mcp.CallToolResult, any, error) {
		limit := args.Limit
		if limit <= 0 {
			limit = 20
		}
		emails, err := store.Search(args.Query, limit)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(emails)
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "send_email",
		Description: "Send a mock email (adds an 'out' email record)",
	}, func(_ context.Context, _ *mcp.CallToolRequest, args SendEmailArgs) (*mcp.CallToolResult, any, error) {
		sender := args.Sender
		if sender == "" {
			sender = defaultSender
		}
		email, err := store.Send(sender, args.To, args.Subject, args.Body)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(map[string]any{"ok": true, "email": email})
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
