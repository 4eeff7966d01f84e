package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	openaisdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	promptx "github.com/jewelryops/agent/agent/prompt"
)

func completionBackend(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"test-model","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func localToolSet(t *testing.T, baseURL string) map[string]LocalTool {
	t.Helper()
	client := openaisdk.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(baseURL+"/"),
	)
	tools := NewLocalTools(&client, "test-model", promptx.Load())

	byName := make(map[string]LocalTool, len(tools))
	for _, lt := range tools {
		byName[lt.Descriptor.Name] = lt
	}
	return byName
}

func TestExtractEntitiesParsesJSONReply(t *testing.T) {
	t.Parallel()

	srv := completionBackend(t, `Sure, here is the result: {"customer_ids": ["cust_001"], "order_ids": ["ORD-2038"], "skus": []} hope that helps`)
	tools := localToolSet(t, srv.URL)

	result, err := tools[ToolExtractEntities].Run(context.Background(), map[string]any{
		"query": "Lisa Park (cust_001) asked about ORD-2038",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var decoded map[string][]string
	if err := json.Unmarshal([]byte(result), &decoded); err != nil {
		t.Fatalf("result %q is not the extracted JSON object: %v", result, err)
	}
	if len(decoded["customer_ids"]) != 1 || decoded["customer_ids"][0] != "cust_001" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestLocalToolTransportFailureReturnsErrorPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"backend down"}}`, http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	tools := localToolSet(t, srv.URL)

	result, err := tools[ToolExtractEntities].Run(context.Background(), map[string]any{"query": "anything"})
	if err != nil {
		t.Fatalf("Run returned an error instead of a payload: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(result), &decoded); err != nil {
		t.Fatalf("result %q is not JSON: %v", result, err)
	}
	if decoded["error"] == "" || decoded["error"] == nil {
		t.Errorf("payload has no error field: %v", decoded)
	}
}

func TestCheckConfirmationDefaultsSafeOnUnparseableReply(t *testing.T) {
	t.Parallel()

	srv := completionBackend(t, "I think probably yes?")
	tools := localToolSet(t, srv.URL)

	result, err := tools[ToolCheckConfirmation].Run(context.Background(), map[string]any{
		"action_description": "refund ORD-2035",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var decoded struct {
		RequiresConfirmation bool   `json:"requires_confirmation"`
		Reason               string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(result), &decoded); err != nil {
		t.Fatalf("result %q: %v", result, err)
	}
	if !decoded.RequiresConfirmation {
		t.Errorf("unparseable reply must default to requiring confirmation: %+v", decoded)
	}
}

func TestSummarizeStateWrapsPlainReply(t *testing.T) {
	t.Parallel()

	srv := completionBackend(t, "Order delayed at carrier, refund pending.")
	tools := localToolSet(t, srv.URL)

	result, err := tools[ToolSummarizeState].Run(context.Background(), map[string]any{
		"history": "user asked about ORD-2038",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(result), &decoded); err != nil {
		t.Fatalf("result %q: %v", result, err)
	}
	if decoded["summary"] != "Order delayed at carrier, refund pending." {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestSchemaForDescribesArguments(t *testing.T) {
	t.Parallel()

	schema := mustSchemaFor[ExtractEntitiesArgs]()
	if schema["type"] != "object" {
		t.Errorf("schema type = %v", schema["type"])
	}
	if _, present := schema["$schema"]; present {
		t.Error("schema kept the $schema marker")
	}

	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties = %T", schema["properties"])
	}
	query, ok := props["query"].(map[string]any)
	if !ok {
		t.Fatalf("query property = %T", props["query"])
	}
	if query["description"] == nil || query["description"] == "" {
		t.Error("query property has no description")
	}
}
