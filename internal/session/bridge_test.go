package session

import (
	"context"
	"encoding/json"
	"os/exec"
	"testing"
	"time"
)

// startEchoSession builds a Session around 'cat', which echoes stdin to
// stdout, and starts its stdio bridge. This exercises the bridge without
// requiring a real MCP handshake.
func startEchoSession(t *testing.T) *Session {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, "cat")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		t.Fatalf("failed to create stdin pipe: %v", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		t.Fatalf("failed to create stdout pipe: %v", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		t.Fatalf("failed to create stderr pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		t.Fatalf("failed to start cat: %v", err)
	}

	sess := &Session{
		ID:           "sess_bridge1",
		ServerCmd:    cmd,
		ServerStdin:  stdin,
		ServerStdout: stdout,
		ServerStderr: stderr,
		ToServer:     make(chan []byte, 10),
		FromServer:   make(chan []byte, 10),
		Context:      ctx,
		Cancel:       cancel,
	}
	sess.StartStdioBridge()

	t.Cleanup(func() {
		cancel()
		cmd.Wait()
	})

	return sess
}

func TestStdioBridge(t *testing.T) {
	sess := startEchoSession(t)

	// Send a JSON-RPC message
	msg := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "ping",
		"id":      1,
	}
	data, _ := json.Marshal(msg)
	data = append(data, '\n')

	sess.ToServer <- data

	// Read the echoed message
	select {
	case response := <-sess.FromServer:
		var parsed map[string]interface{}
		if err := json.Unmarshal(response, &parsed); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if parsed["method"] != "ping" {
			t.Errorf("expected method 'ping', got %v", parsed["method"])
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for response")
	}
}

func TestStdioBridgePreservesOrder(t *testing.T) {
	sess := startEchoSession(t)

	for i := 0; i < 5; i++ {
		data, _ := json.Marshal(map[string]interface{}{
			"jsonrpc": "2.0",
			"method":  "ping",
			"id":      i,
		})
		sess.ToServer <- append(data, '\n')
	}

	for i := 0; i < 5; i++ {
		select {
		case response := <-sess.FromServer:
			var parsed map[string]interface{}
			if err := json.Unmarshal(response, &parsed); err != nil {
				t.Fatalf("failed to parse response %d: %v", i, err)
			}
			if int(parsed["id"].(float64)) != i {
				t.Errorf("expected id %d, got %v", i, parsed["id"])
			}
		case <-time.After(1 * time.Second):
			t.Fatalf("timeout waiting for message %d", i)
		}
	}
}
