// ABOUTME: MCP initialize handshake implementation
// ABOUTME: Negotiates the protocol version with the server subprocess on session creation

package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/mcp-relay/internal/jsonrpc"
	"github.com/harper/mcp-relay/internal/mcp"
)

// relayClientInfo identifies the relay to servers during initialize.
var relayClientInfo = mcp.Implementation{
	Name:    "mcp-relay",
	Version: "0.1.0",
}

// Initialize performs the MCP handshake with the server: send initialize,
// wait for the result, then confirm with notifications/initialized. The
// negotiated protocol version and its vocabulary are stored on the session.
// This must complete before any other traffic is forwarded.
func (s *Session) Initialize(requested jsonrpc.ProtocolVersion) error {
	vocab := mcp.Vocabulary(requested)

	id := jsonrpc.IntegerID(0) // ID 0 is reserved for initialize
	payload, err := jsonrpc.KnownPayload(mcp.NewInitializeRequest(requested, mcp.ClientCapabilities{}, relayClientInfo))
	if err != nil {
		return fmt.Errorf("failed to build initialize payload: %w", err)
	}
	req, err := jsonrpc.NewRequest(payload, &id)
	if err != nil {
		return fmt.Errorf("failed to build initialize request: %w", err)
	}

	if err := s.sendMessage(req, "initialize"); err != nil {
		return err
	}

	// Wait for initialize response with timeout
	select {
	case respData := <-s.FromServer:
		msg, err := jsonrpc.DecodeMessage(respData, vocab, jsonrpc.ServerToClient)
		if err != nil {
			return fmt.Errorf("failed to decode initialize response: %w", err)
		}

		if errMsg, narrowErr := jsonrpc.AsError(msg); narrowErr == nil {
			return fmt.Errorf("server returned error on initialize: %s", errMsg.Err.Message)
		}

		resp, err := jsonrpc.AsResponse(msg)
		if err != nil {
			return fmt.Errorf("unexpected initialize reply: %w", err)
		}

		result, ok := resp.Payload.Value().(*mcp.InitializeResult)
		if !ok {
			return fmt.Errorf("initialize response did not carry an initialize result")
		}

		negotiated, err := jsonrpc.ParseProtocolVersion(result.ProtocolVersion)
		if err != nil {
			return fmt.Errorf("server negotiated unsupported protocol version %q", result.ProtocolVersion)
		}
		if negotiated != requested {
			vocab = mcp.Vocabulary(negotiated)
		}

		s.ProtocolVersion = negotiated
		s.Vocabulary = vocab
		s.ServerInfo = result.ServerInfo.Name + " " + result.ServerInfo.Version

	case <-time.After(10 * time.Second):
		return fmt.Errorf("timeout waiting for initialize response from server")
	case <-s.Context.Done():
		return fmt.Errorf("session cancelled while waiting for initialize response")
	}

	// Confirm the handshake
	notifPayload, err := jsonrpc.KnownPayload(mcp.NewInitializedNotification())
	if err != nil {
		return fmt.Errorf("failed to build initialized payload: %w", err)
	}
	notif, err := jsonrpc.NewNotification(notifPayload, nil)
	if err != nil {
		return fmt.Errorf("failed to build initialized notification: %w", err)
	}
	return s.sendMessage(notif, "notifications/initialized")
}

// sendMessage serializes an envelope as line-delimited JSON and queues it
// for the server, with a send timeout.
func (s *Session) sendMessage(m jsonrpc.Message, what string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", what, err)
	}
	data = append(data, '\n')

	select {
	case s.ToServer <- data:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout sending %s to server", what)
	case <-s.Context.Done():
		return fmt.Errorf("session cancelled while sending %s", what)
	}
}
