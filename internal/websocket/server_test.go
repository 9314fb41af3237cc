package websocket

import (
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/harper/mcp-relay/internal/jsonrpc"
	"github.com/harper/mcp-relay/internal/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *websocket.Conn) {
	t.Helper()

	_, filename, _, _ := runtime.Caller(0)
	mockServerPath := filepath.Join(filepath.Dir(filename), "..", "session", "testdata", "mock_server.py")

	mgr := session.NewManager(session.ManagerConfig{
		ServerCommand:   "python3",
		ServerArgs:      []string{mockServerPath},
		ServerEnv:       map[string]string{},
		ProtocolVersion: jsonrpc.ProtocolVersion20250326,
	}, nil) // nil db for test

	srv := NewServer(mgr, jsonrpc.ProtocolVersion20250326)

	httpSrv := httptest.NewServer(srv)
	t.Cleanup(httpSrv.Close)

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { ws.Close() })

	return httpSrv, ws
}

func TestWebSocketConnection(t *testing.T) {
	_, ws := newTestServer(t)

	// Send session/new
	tmpDir := t.TempDir()
	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "session/new",
		"params": map[string]interface{}{
			"workingDirectory": tmpDir,
		},
		"id": 1,
	}

	if err := ws.WriteJSON(req); err != nil {
		t.Fatalf("failed to send: %v", err)
	}

	// Read response
	var resp map[string]interface{}
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("failed to read: %v", err)
	}

	result, ok := resp["result"].(map[string]interface{})
	if !ok {
		t.Fatal("expected result object")
	}

	if result["sessionId"] == "" {
		t.Error("expected sessionId in result")
	}

	if result["protocolVersion"] != "2025-03-26" {
		t.Errorf("expected negotiated protocolVersion in result, got %v", result["protocolVersion"])
	}
}

func TestWebSocketRejectsMalformedJSON(t *testing.T) {
	_, ws := newTestServer(t)

	if err := ws.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("failed to send: %v", err)
	}

	var resp map[string]interface{}
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("failed to read: %v", err)
	}

	errObj, ok := resp["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object")
	}
	if int64(errObj["code"].(float64)) != jsonrpc.CodeParseError {
		t.Errorf("expected parse error code %d, got %v", jsonrpc.CodeParseError, errObj["code"])
	}
}

func TestWebSocketMethodWithoutSession(t *testing.T) {
	_, ws := newTestServer(t)

	// tools/list before session/new must fail with session_not_found
	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "tools/list",
		"id":      7,
	}
	if err := ws.WriteJSON(req); err != nil {
		t.Fatalf("failed to send: %v", err)
	}

	var resp map[string]interface{}
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("failed to read: %v", err)
	}

	errObj, ok := resp["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object")
	}
	if int64(errObj["code"].(float64)) != jsonrpc.CodeSessionNotFound {
		t.Errorf("expected session not found code %d, got %v", jsonrpc.CodeSessionNotFound, errObj["code"])
	}
	if int(resp["id"].(float64)) != 7 {
		t.Errorf("expected error to carry request id 7, got %v", resp["id"])
	}
}

func TestWebSocketResumeUnknownSession(t *testing.T) {
	_, ws := newTestServer(t)

	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "session/resume",
		"params":  map[string]interface{}{"sessionId": "sess_missing"},
		"id":      2,
	}
	if err := ws.WriteJSON(req); err != nil {
		t.Fatalf("failed to send: %v", err)
	}

	var resp map[string]interface{}
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("failed to read: %v", err)
	}

	errObj, ok := resp["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object")
	}
	if int64(errObj["code"].(float64)) != jsonrpc.CodeSessionNotFound {
		t.Errorf("expected session not found code %d, got %v", jsonrpc.CodeSessionNotFound, errObj["code"])
	}
}

func TestWebSocketForwardsToServer(t *testing.T) {
	_, ws := newTestServer(t)

	// Create a session first
	if err := ws.WriteJSON(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "session/new",
		"params":  map[string]interface{}{"workingDirectory": t.TempDir()},
		"id":      1,
	}); err != nil {
		t.Fatalf("failed to send session/new: %v", err)
	}
	var newResp map[string]interface{}
	if err := ws.ReadJSON(&newResp); err != nil {
		t.Fatalf("failed to read session/new response: %v", err)
	}
	if _, ok := newResp["result"]; !ok {
		t.Fatalf("session/new failed: %v", newResp)
	}

	// tools/list is forwarded to the mock server, which replies {}
	if err := ws.WriteJSON(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "tools/list",
		"id":      2,
	}); err != nil {
		t.Fatalf("failed to send tools/list: %v", err)
	}

	var resp map[string]interface{}
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("failed to read forwarded response: %v", err)
	}
	if int(resp["id"].(float64)) != 2 {
		t.Errorf("expected response id 2, got %v", resp["id"])
	}
	if _, ok := resp["result"]; !ok {
		t.Errorf("expected result in forwarded response, got %v", resp)
	}
}
