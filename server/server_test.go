package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	contractx "github.com/jewelryops/agent/agent/contract"
	orchestratorx "github.com/jewelryops/agent/agent/orchestrator"
)

type fakeRunner struct {
	tokens []string
	count  int
	err    error

	gotSessionID string
	gotMessage   string
	ran          bool
}

func (f *fakeRunner) Run(_ context.Context, sessionID, userMessage string, emit func(string) error) (orchestratorx.Result, error) {
	f.ran = true
	f.gotSessionID = sessionID
	f.gotMessage = userMessage
	for _, tok := range f.tokens {
		if err := emit(tok); err != nil {
			return orchestratorx.Result{}, err
		}
	}
	return orchestratorx.Result{ToolCallsCount: f.count}, f.err
}

func dialChat(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) contractx.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame contractx.Frame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func newTestServer(t *testing.T, runner TurnRunner) *httptest.Server {
	t.Helper()
	s, err := New(Config{}, runner)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestChatStreamsTokensThenDone(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{tokens: []string{"Hello", " there"}, count: 3}
	srv := newTestServer(t, runner)
	conn := dialChat(t, srv)

	req := contractx.ChatRequest{SessionID: "sess-1", Message: "where is my order?"}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write request: %v", err)
	}

	first := readFrame(t, conn)
	if first.Type != contractx.FrameToken || first.Data != "Hello" {
		t.Fatalf("first frame = %+v", first)
	}
	second := readFrame(t, conn)
	if second.Type != contractx.FrameToken || second.Data != " there" {
		t.Fatalf("second frame = %+v", second)
	}

	done := readFrame(t, conn)
	if done.Type != contractx.FrameDone {
		t.Fatalf("final frame = %+v, want done", done)
	}
	if done.SessionID != "sess-1" {
		t.Errorf("done session_id = %q", done.SessionID)
	}
	if done.ToolCallsCount == nil || *done.ToolCallsCount != 3 {
		t.Errorf("done tool_calls_count = %v, want 3", done.ToolCallsCount)
	}

	if runner.gotSessionID != "sess-1" || runner.gotMessage != "where is my order?" {
		t.Errorf("runner received %q / %q", runner.gotSessionID, runner.gotMessage)
	}
}

func TestChatDoneFrameCarriesZeroCount(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{tokens: []string{"hi"}}
	srv := newTestServer(t, runner)
	conn := dialChat(t, srv)

	if err := conn.WriteJSON(contractx.ChatRequest{SessionID: "s", Message: "hi"}); err != nil {
		t.Fatalf("write request: %v", err)
	}
	readFrame(t, conn)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read done frame: %v", err)
	}

	// A zero count must still serialize so clients can rely on the field.
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode done frame: %v", err)
	}
	count, ok := decoded["tool_calls_count"]
	if !ok {
		t.Fatalf("done frame missing tool_calls_count: %s", raw)
	}
	if string(count) != "0" {
		t.Errorf("tool_calls_count = %s, want 0", count)
	}
}

func TestChatMalformedRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{"invalid json", `{"session_id": "s", "message":`},
		{"blank message", `{"session_id": "s", "message": "   "}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			runner := &fakeRunner{}
			srv := newTestServer(t, runner)
			conn := dialChat(t, srv)

			if err := conn.WriteMessage(websocket.TextMessage, []byte(tc.payload)); err != nil {
				t.Fatalf("write payload: %v", err)
			}

			frame := readFrame(t, conn)
			if frame.Type != contractx.FrameError {
				t.Fatalf("frame = %+v, want error", frame)
			}
			if frame.Data == "" {
				t.Error("error frame has no message")
			}
			if runner.ran {
				t.Error("agent ran despite invalid request")
			}
		})
	}
}

func TestChatMissingSessionIDUsesDefault(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{tokens: []string{"hi"}}
	srv := newTestServer(t, runner)
	conn := dialChat(t, srv)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"message": "hello"}`)); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	readFrame(t, conn)
	done := readFrame(t, conn)
	if done.Type != contractx.FrameDone || done.SessionID != "default" {
		t.Fatalf("done frame = %+v, want session_id %q", done, "default")
	}
	if runner.gotSessionID != "default" {
		t.Errorf("runner session id = %q, want %q", runner.gotSessionID, "default")
	}
}

func TestChatAgentFailureSendsErrorFrame(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: contractx.ErrCompletion}
	srv := newTestServer(t, runner)
	conn := dialChat(t, srv)

	if err := conn.WriteJSON(contractx.ChatRequest{SessionID: "s", Message: "hi"}); err != nil {
		t.Fatalf("write request: %v", err)
	}

	frame := readFrame(t, conn)
	if frame.Type != contractx.FrameError {
		t.Fatalf("frame = %+v, want error", frame)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &fakeRunner{})
	resp, err := srv.Client().Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}
