package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type GetCustomerArgs struct {
	CustomerID string `json:"customer_id" jsonschema:"Customer ID, e.g. cust_001"`
}

type ListCustomersArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of customers to return"`
}

type SearchCustomersArgs struct {
	Query string `json:"query" jsonschema:"Name or email fragment, case-insensitive"`
}

type GetOrderArgs struct {
	OrderID string `json:"order_id" jsonschema:"Order ID, e.g. ORD-2038"`
}

type ListOrdersArgs struct {
	Status string `json:"status,omitempty" jsonschema:"Optional status filter: pending, processing, shipped, delivered, returned, cancelled"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of orders to return"`
}

type GetItemArgs struct {
	SKU string `json:"sku" jsonschema:"Inventory SKU, e.g. RING-101"`
}

type ListItemsArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of items to return"`
}

type CheckStockArgs struct {
	SKU      string `json:"sku" jsonschema:"Inventory SKU to check"`
	Quantity int    `json:"quantity,omitempty" jsonschema:"Requested quantity, defaults to 1"`
}

type GetNotesArgs struct {
	EntityType string `json:"entity_type" jsonschema:"Entity kind: order, customer, or inventory"`
	EntityID   string `json:"entity_id" jsonschema:"Entity ID the notes are attached to"`
}

type AddNoteArgs struct {
	EntityType string `json:"entity_type" jsonschema:"Entity kind: order, customer, or inventory"`
	EntityID   string `json:"entity_id" jsonschema:"Entity ID to attach the note to"`
	Body       string `json:"body" jsonschema:"Note text"`
	Author     string `json:"author,omitempty" jsonschema:"Note author, defaults to Agent"`
}

// StockCheck is the check_stock result: available is quantity minus
// reserved units.
type StockCheck struct {
	SKU       string `json:"sku"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
	InStock   bool   `json:"in_stock"`
}

// NewServer exposes the store as an MCP tool set.
func NewServer(store *Store) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "jewelryops-inventory",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_customer",
		Description: "Get a single customer by ID (e.g. cust_001)",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args GetCustomerArgs) (*mcp.CallToolResult, any, error) {
		customer, err := store.GetCustomer(ctx, args.CustomerID)
		if err != nil {
			return lookupResult(err, "Customer not found: "+args.CustomerID)
		}
		return jsonResult(customer)
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_customers",
		Description: "List customers, limited by count",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args ListCustomersArgs) (*mcp.CallToolResult, any, error) {
		customers, err := store.ListCustomers(ctx, defaultLimit(args.Limit, 20))
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(customers)
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_customers",
		Description: "Search customers by name or email (case-insensitive partial match)",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args SearchCustomersArgs) (*mcp.CallToolResult, any, error) {
		customers, err := store.SearchCustomers(ctx, args.Query)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(customers)
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_order",
		Description: "Get a single order by ID (e.g. ORD-2038)",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args GetOrderArgs) (*mcp.CallToolResult, any, error) {
		order, err := store.GetOrder(ctx, args.OrderID)
		if err != nil {
			return lookupResult(err, "Order not found: "+args.OrderID)
		}
		return jsonResult(order)
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_orders",
		Description: "List orders, optionally filtered by status (pending, processing, shipped, delivered, returned, cancelled)",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args ListOrdersArgs) (*mcp.CallToolResult, any, error) {
		orders, err := store.ListOrders(ctx, args.Status, defaultLimit(args.Limit, 20))
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(orders)
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_inventory_item",
		Description: "Get inventory for a single SKU (e.g. RING-101, BRAC-301)",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args GetItemArgs) (*mcp.CallToolResult, any, error) {
		item, err := store.GetItem(ctx, args.SKU)
		if err != nil {
			return lookupResult(err, "SKU not found: "+args.SKU)
		}
		return jsonResult(item)
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_inventory",
		Description: "List all inventory items with quantity and reserved counts",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args ListItemsArgs) (*mcp.CallToolResult, any, error) {
		items, err := store.ListItems(ctx, defaultLimit(args.Limit, 50))
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(items)
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "check_stock",
		Description: "Check if a SKU has at least the given quantity available (quantity - reserved)",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args CheckStockArgs) (*mcp.CallToolResult, any, error) {
		item, err := store.GetItem(ctx, args.SKU)
		if err != nil {
			return lookupResult(err, "SKU not found: "+args.SKU)
		}
		requested := defaultLimit(args.Quantity, 1)
		available := item.Quantity - item.Reserved
		return jsonResult(StockCheck{
			SKU:       args.SKU,
			Available: available,
			Requested: requested,
			InStock:   available >= requested,
		})
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_notes",
		Description: "Get all internal notes for an entity (order, customer, or inventory)",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args GetNotesArgs) (*mcp.CallToolResult, any, error) {
		notes, err := store.Notes(ctx, args.EntityType, args.EntityID)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(notes)
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "add_note",
		Description: "Add an internal note to an entity (order, customer, or inventory). Has side effects: persists the note",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args AddNoteArgs) (*mcp.CallToolResult, any, error) {
		author := args.Author
		if author == "" {
			author = "Agent"
		}
		note, err := store.AddNote(ctx, args.EntityType, args.EntityID, author, args.Body)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(map[string]any{"ok": true, "note": note})
	})

	return srv
}

// jsonResult serializes v as the tool's text content so every tool speaks
// the same JSON shape regardless of the calling client.
func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil, nil
}

// lookupResult maps a missing row to an error payload the model can read;
// anything else is a real failure.
func lookupResult(err error, message string) (*mcp.CallToolResult, any, error) {
	if errors.Is(err, ErrNotFound) {
		return jsonResult(map[string]string{"error": message})
	}
	return nil, nil, err
}

func defaultLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
