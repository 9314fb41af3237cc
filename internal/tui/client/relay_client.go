// ABOUTME: WebSocket client for communicating with the mcp-relay server
// ABOUTME: Manages connection lifecycle, message passing via channels, and relay control calls
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harper/mcp-relay/internal/jsonrpc"
)

// SessionInfo is what the relay reports back for session/new.
type SessionInfo struct {
	SessionID       string `json:"sessionId"`
	ProtocolVersion string `json:"protocolVersion"`
}

type RelayClient struct {
	url       string
	conn      *websocket.Conn
	mu        sync.RWMutex
	incoming  chan []byte
	outgoing  chan []byte
	errors    chan error
	done      chan struct{}
	closed    bool
	messageID uint64
}

func NewRelayClient(url string) *RelayClient {
	return &RelayClient{
		url:      url,
		incoming: make(chan []byte, 100),
		outgoing: make(chan []byte, 100),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
	}
}

func (c *RelayClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Prevent double connection
	if c.conn != nil && !c.closed {
		return fmt.Errorf("already connected")
	}

	// Add 30-second connection timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil) //nolint:bodyclose // websocket connection, not HTTP response
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	c.conn = conn
	c.closed = false

	// Start read/write goroutines
	go c.readLoop()
	go c.writeLoop()

	return nil
}

func (c *RelayClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && !c.closed
}

func (c *RelayClient) Send(msg []byte) error {
	if !c.IsConnected() {
		return fmt.Errorf("not connected")
	}

	select {
	case c.outgoing <- msg:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("send timeout")
	}
}

func (c *RelayClient) Incoming() <-chan []byte {
	return c.incoming
}

func (c *RelayClient) Errors() <-chan error {
	return c.errors
}

func (c *RelayClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)

	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}

func (c *RelayClient) readLoop() {
	defer func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case c.errors <- fmt.Errorf("read: %w", err):
			case <-c.done:
			}
			return
		}

		select {
		case c.incoming <- msg:
		case <-c.done:
			return
		}
	}
}

func (c *RelayClient) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.outgoing:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				select {
				case c.errors <- fmt.Errorf("write: %w", err):
				case <-c.done:
				}
				return
			}
		}
	}
}

// NewSession asks the relay to spawn a server and binds this connection
// to the fresh session.
func (c *RelayClient) NewSession(workingDir string) (*SessionInfo, error) {
	result, err := c.call("session/new", map[string]string{
		"workingDirectory": workingDir,
	})
	if err != nil {
		return nil, err
	}

	var info SessionInfo
	if err := json.Unmarshal(result, &info); err != nil {
		return nil, fmt.Errorf("parse session/new result: %w", err)
	}
	if info.SessionID == "" {
		return nil, fmt.Errorf("relay returned no session id")
	}
	return &info, nil
}

// ResumeSession attaches this connection to an existing relay session.
func (c *RelayClient) ResumeSession(sessionID string) error {
	_, err := c.call("session/resume", map[string]string{
		"sessionId": sessionID,
	})
	return err
}

// call sends a relay control request and waits for the correlated reply.
// Unrelated traffic arriving in between is dropped; control calls are
// only made before the session stream starts.
func (c *RelayClient) call(method string, params interface{}) (json.RawMessage, error) {
	if !c.IsConnected() {
		return nil, fmt.Errorf("not connected")
	}

	id := jsonrpc.IntegerID(int64(atomic.AddUint64(&c.messageID, 1)))

	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	rawCall, err := json.Marshal(struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params,omitempty"`
	}{method, rawParams})
	if err != nil {
		return nil, fmt.Errorf("marshal call: %w", err)
	}

	payload, err := jsonrpc.CustomPayload(rawCall)
	if err != nil {
		return nil, fmt.Errorf("build payload: %w", err)
	}
	req, err := jsonrpc.NewRequest(payload, &id)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if err := c.Send(data); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	// Wait for the reply with a 5 second timeout
	timeout := time.After(5 * time.Second)
	for {
		select {
		case <-timeout:
			return nil, fmt.Errorf("timeout waiting for %s response", method)
		case msg := <-c.incoming:
			switch jsonrpc.Classify(msg) {
			case jsonrpc.KindError:
				em, err := jsonrpc.DecodeError(msg)
				if err != nil || !em.ID.Equal(id) {
					continue
				}
				return nil, fmt.Errorf("%s failed: %s (code %d)", method, em.Err.Message, em.Err.Code)
			case jsonrpc.KindResponse:
				var reply struct {
					ID     jsonrpc.RequestID `json:"id"`
					Result json.RawMessage   `json:"result"`
				}
				if err := json.Unmarshal(msg, &reply); err != nil || !reply.ID.Equal(id) {
					continue
				}
				return reply.Result, nil
			default:
				// Not a reply, keep waiting
			}
		}
	}
}
