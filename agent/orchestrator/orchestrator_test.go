package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	openaisdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	contractx "github.com/jewelryops/agent/agent/contract"
	promptx "github.com/jewelryops/agent/agent/prompt"
	sessionx "github.com/jewelryops/agent/agent/session"
	toolx "github.com/jewelryops/agent/agent/tool"
)

type executedCall struct {
	name string
	args map[string]any
}

type fakeExecutor struct {
	mu      sync.Mutex
	calls   []executedCall
	results map[string]string
}

func (f *fakeExecutor) Execute(_ context.Context, name string, args map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, executedCall{name: name, args: args})
	if result, ok := f.results[name]; ok {
		return result, nil
	}
	return "ok", nil
}

func (f *fakeExecutor) executed() []executedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]executedCall(nil), f.calls...)
}

// completionScript serves scripted SSE responses, one per request, in order.
type completionScript struct {
	mu        sync.Mutex
	responses [][]string
	served    int
}

func (s *completionScript) handler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		if s.served >= len(s.responses) {
			s.mu.Unlock()
			t.Errorf("unexpected completion request #%d", s.served+1)
			http.Error(w, "no scripted response", http.StatusInternalServerError)
			return
		}
		chunks := s.responses[s.served]
		s.served++
		s.mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func contentChunk(text string) string {
	return fmt.Sprintf(`{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"test-model","choices":[{"index":0,"delta":{"content":%q},"finish_reason":null}]}`, text)
}

func toolCallChunk(index int, id, name, arguments string) string {
	var parts []string
	parts = append(parts, fmt.Sprintf(`"index":%d`, index))
	if id != "" {
		parts = append(parts, fmt.Sprintf(`"id":%q,"type":"function"`, id))
	}
	fn := fmt.Sprintf(`"function":{"name":%q,"arguments":%q}`, name, arguments)
	parts = append(parts, fn)
	return fmt.Sprintf(`{"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"test-model","choices":[{"index":0,"delta":{"tool_calls":[{%s}]},"finish_reason":null}]}`, strings.Join(parts, ","))
}

func newTestOrchestrator(t *testing.T, baseURL string, executor contractx.ToolExecutor) (*Orchestrator, *sessionx.Store) {
	t.Helper()

	client := openaisdk.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(baseURL+"/"),
	)
	sessions := sessionx.NewStore()
	registry := toolx.NewRegistry(nil)

	orc, err := New(&client, sessions, nil, registry, executor, promptx.Set{
		System:        "You are a support agent.",
		FinalThoughts: "Summarize your findings.",
	}, Config{Model: "test-model"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return orc, sessions
}

func collectEmitted(out *[]string) func(string) error {
	return func(token string) error {
		*out = append(*out, token)
		return nil
	}
}

func TestRunExecutesAssembledToolCalls(t *testing.T) {
	t.Parallel()

	script := &completionScript{responses: [][]string{
		{
			// Two calls with fragmented arguments, plus an unnamed partial
			// at index 2 that must be discarded.
			toolCallChunk(0, "call_1", "get_order", `{"order`),
			toolCallChunk(0, "", "", `_id":"ORD-1001"}`),
			toolCallChunk(1, "call_2", "check_stock", `{"sku":"RING-102",`),
			toolCallChunk(1, "", "", `"quantity":1}`),
			toolCallChunk(2, "call_3", "", `{"ignored":true}`),
		},
		{
			contentChunk("The order "),
			contentChunk("is on its way."),
		},
	}}
	srv := httptest.NewServer(script.handler(t))
	defer srv.Close()

	executor := &fakeExecutor{results: map[string]string{
		"get_order":   `{"order_id":"ORD-1001","status":"shipped"}`,
		"check_stock": `{"in_stock":false}`,
	}}
	orc, sessions := newTestOrchestrator(t, srv.URL, executor)

	var emitted []string
	result, err := orc.Run(context.Background(), "sess-1", "where is ORD-1001?", collectEmitted(&emitted))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ToolCallsCount != 2 {
		t.Fatalf("ToolCallsCount = %d, want 2", result.ToolCallsCount)
	}

	calls := executor.executed()
	if len(calls) != 2 {
		t.Fatalf("executed %d tools, want 2: %+v", len(calls), calls)
	}
	if calls[0].name != "get_order" || calls[1].name != "check_stock" {
		t.Fatalf("tool order = [%s %s], want [get_order check_stock]", calls[0].name, calls[1].name)
	}
	if got := calls[0].args["order_id"]; got != "ORD-1001" {
		t.Errorf("get_order args = %v, want order_id ORD-1001", calls[0].args)
	}
	if got := calls[1].args["sku"]; got != "RING-102" {
		t.Errorf("check_stock args = %v, want sku RING-102", calls[1].args)
	}

	output := strings.Join(emitted, "")
	wantSteps := "\nInvestigation Steps:\n1. get_order\n2. check_stock\n"
	if !strings.Contains(output, wantSteps) {
		t.Errorf("output missing investigation steps:\n%q", output)
	}
	if !strings.Contains(output, "\nThoughts:\nThe order is on its way.") {
		t.Errorf("output missing final thoughts:\n%q", output)
	}

	sess := sessions.Get("sess-1")
	last := sess.Messages[len(sess.Messages)-1]
	if last.Role != contractx.RoleAssistant || last.Content != "The order is on its way." {
		t.Errorf("last transcript entry = %+v, want assistant final answer", last)
	}
	if sess.InvestigationSummary != "The order is on its way." {
		t.Errorf("summary = %q", sess.InvestigationSummary)
	}
}

func TestRunWithoutToolCallsEmitsBufferedText(t *testing.T) {
	t.Parallel()

	script := &completionScript{responses: [][]string{
		{
			contentChunk("Hello! "),
			contentChunk("How can I help?"),
		},
	}}
	srv := httptest.NewServer(script.handler(t))
	defer srv.Close()

	executor := &fakeExecutor{}
	orc, sessions := newTestOrchestrator(t, srv.URL, executor)

	var emitted []string
	result, err := orc.Run(context.Background(), "sess-greeting", "hi", collectEmitted(&emitted))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ToolCallsCount != 0 {
		t.Fatalf("ToolCallsCount = %d, want 0", result.ToolCallsCount)
	}
	if len(executor.executed()) != 0 {
		t.Fatalf("executor invoked on a tool-free turn")
	}

	output := strings.Join(emitted, "")
	if output != "Hello! How can I help?" {
		t.Errorf("emitted %q, want buffered completion text", output)
	}
	if strings.Contains(output, "Investigation Steps") {
		t.Errorf("tool-free turn must not emit an investigation header: %q", output)
	}

	sess := sessions.Get("sess-greeting")
	if len(sess.Messages) != 2 {
		t.Fatalf("transcript has %d entries, want user + assistant", len(sess.Messages))
	}
	if sess.Messages[1].Content != "Hello! How can I help?" {
		t.Errorf("assistant entry = %q", sess.Messages[1].Content)
	}
}

func TestRunCompletionFailureDoesNotCommit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"backend down"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	executor := &fakeExecutor{}
	orc, sessions := newTestOrchestrator(t, srv.URL, executor)

	_, err := orc.Run(context.Background(), "sess-fail", "hello", func(string) error { return nil })
	if err == nil {
		t.Fatal("Run succeeded against a failing completion backend")
	}
	if !errors.Is(err, contractx.ErrCompletion) {
		t.Fatalf("error = %v, want ErrCompletion", err)
	}

	sess := sessions.Get("sess-fail")
	if len(sess.Messages) != 1 || sess.Messages[0].Role != contractx.RoleUser {
		t.Fatalf("transcript = %+v, want only the user entry", sess.Messages)
	}
	if sess.InvestigationSummary != "" {
		t.Errorf("summary set on a failed turn: %q", sess.InvestigationSummary)
	}
}

func TestRunToolCallsCountAccumulatesAcrossTurns(t *testing.T) {
	t.Parallel()

	turn := [][]string{
		{toolCallChunk(0, "call_1", "get_order", `{"order_id":"ORD-1001"}`)},
		{contentChunk("Done.")},
	}
	script := &completionScript{responses: append(append([][]string{}, turn...), turn...)}
	srv := httptest.NewServer(script.handler(t))
	defer srv.Close()

	executor := &fakeExecutor{}
	orc, _ := newTestOrchestrator(t, srv.URL, executor)

	emit := func(string) error { return nil }
	if _, err := orc.Run(context.Background(), "sess-acc", "first", emit); err != nil {
		t.Fatalf("first turn: %v", err)
	}
	result, err := orc.Run(context.Background(), "sess-acc", "second", emit)
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}

	if result.ToolCallsCount != 2 {
		t.Fatalf("ToolCallsCount = %d after two turns, want 2", result.ToolCallsCount)
	}
}

func TestRunInvalidToolArgumentsSkipExecution(t *testing.T) {
	t.Parallel()

	script := &completionScript{responses: [][]string{
		{toolCallChunk(0, "call_1", "get_order", `{"order_id": not json`)},
		{contentChunk("Could not read the arguments.")},
	}}
	srv := httptest.NewServer(script.handler(t))
	defer srv.Close()

	executor := &fakeExecutor{}
	orc, _ := newTestOrchestrator(t, srv.URL, executor)

	result, err := orc.Run(context.Background(), "sess-badargs", "check my order", func(string) error { return nil })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(executor.executed()) != 0 {
		t.Fatalf("executor invoked despite malformed arguments")
	}
	if result.ToolCallsCount != 1 {
		t.Fatalf("ToolCallsCount = %d, want 1 (counted before parsing)", result.ToolCallsCount)
	}
}

func TestAppendToolCallDelta(t *testing.T) {
	t.Parallel()

	var partials []contractx.PartialToolCall

	// Index 1 arrives first: the list is pre-extended with a placeholder.
	partials = appendToolCallDelta(partials, 1, "call_b", "second_tool", `{"a"`)
	partials = appendToolCallDelta(partials, 0, "call_a", "first_tool", "")
	partials = appendToolCallDelta(partials, 1, "", "", `:1}`)

	if len(partials) != 2 {
		t.Fatalf("len = %d, want 2", len(partials))
	}
	if partials[0].Name != "first_tool" || partials[0].ID != "call_a" {
		t.Errorf("partials[0] = %+v", partials[0])
	}
	if partials[1].Arguments != `{"a":1}` {
		t.Errorf("arguments = %q, want concatenated fragments", partials[1].Arguments)
	}

	if got := appendToolCallDelta(partials, -1, "x", "y", "z"); len(got) != 2 {
		t.Errorf("negative index extended the list: %+v", got)
	}
}

func TestAssembledCallsDropsUnnamedPartials(t *testing.T) {
	t.Parallel()

	calls := assembledCalls([]contractx.PartialToolCall{
		{ID: "call_1", Name: "get_order", Arguments: "{}"},
		{ID: "call_2", Arguments: `{"orphaned":true}`},
		{ID: "call_3", Name: "check_stock", Arguments: "{}"},
	})

	if len(calls) != 2 {
		t.Fatalf("len = %d, want 2", len(calls))
	}
	if calls[0].Name != "get_order" || calls[1].Name != "check_stock" {
		t.Errorf("calls = %+v", calls)
	}
}
