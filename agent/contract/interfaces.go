package contract

import "context"

// ToolSource exposes a set of remote tools behind one transport endpoint.
// Both operations may fail with connection or timeout errors; callers treat
// that as "source unavailable", not as a fatal condition.
type ToolSource interface {
	Name() string
	ListTools(ctx context.Context) ([]ToolDescriptor, error)
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// ToolExecutor resolves a tool name and invokes it, uniformly returning a
// text result regardless of origin. A missing tool is reported inside the
// result string, not as an error, so the model can see it as a tool result.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) (string, error)
}
