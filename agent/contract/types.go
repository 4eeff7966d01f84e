package contract

// Role identifies the author of a transcript message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one ordered transcript record within a session.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a fully-assembled model-requested invocation.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// PartialToolCall accumulates streamed tool-call deltas for one positional
// index. Argument fragments are concatenated in arrival order; the call is
// only executable once the stream ends and Arguments parses as JSON.
type PartialToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDescriptor describes one callable tool, local or remote.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ChatRequest is the single client->server message that starts a turn.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Frame types sent over the streaming transport. Exactly one done or error
// frame terminates a turn; no frames follow it.
const (
	FrameToken = "token"
	FrameDone  = "done"
	FrameError = "error"
)

// Frame is one discrete server->client message unit.
type Frame struct {
	Type           string `json:"type"`
	Data           string `json:"data,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
	ToolCallsCount *int   `json:"tool_calls_count,omitempty"`
}

func TokenFrame(text string) Frame {
	return Frame{Type: FrameToken, Data: text}
}

// DoneFrame reports the session id and the cumulative tool-call counter.
// The counter is a pointer so a zero count still serializes.
func DoneFrame(sessionID string, toolCalls int) Frame {
	n := toolCalls
	return Frame{Type: FrameDone, SessionID: sessionID, ToolCallsCount: &n}
}

func ErrorFrame(message string) Frame {
	return Frame{Type: FrameError, Data: message}
}
