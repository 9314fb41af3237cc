// ABOUTME: HTTP handlers for MCP JSON-RPC endpoints
// ABOUTME: Translates HTTP requests to JSON-RPC messages and polls for replies

package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/harper/mcp-relay/internal/errors"
	"github.com/harper/mcp-relay/internal/jsonrpc"
)

//nolint:funlen // HTTP handler with protocol logic
func (s *Server) handleSessionNew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeLLMError(w, errors.NewInvalidRequestError(fmt.Sprintf("failed to read body: %v", err)), nil)
		return
	}
	defer func() { _ = r.Body.Close() }()

	// No vocabulary: session/new is a relay method, so it resolves Custom
	req, err := jsonrpc.DecodeRequest(body, nil)
	if err != nil {
		writeDecodeError(w, err)
		return
	}

	// Parse params
	var params struct {
		WorkingDirectory string `json:"workingDirectory"`
	}
	if err := json.Unmarshal(req.Payload.Params(), &params); err != nil || params.WorkingDirectory == "" {
		writeLLMError(w, errors.NewInvalidParamsError("workingDirectory", "string", "invalid or missing"), &req.ID)
		return
	}

	// Create session
	// Use context.Background() because session should outlive this HTTP request
	//nolint:contextcheck // session must outlive HTTP request
	sess, err := s.sessionMgr.CreateSession(context.Background(), params.WorkingDirectory)
	if err != nil {
		writeLLMError(w, errors.NewServerConnectionError(params.WorkingDirectory, 1, 10000, err.Error()), &req.ID)
		return
	}

	// Start draining FromServer into MessageBuffer to prevent channel blocking
	// HTTP is stateless so we can't stream messages like WebSocket does
	go func() {
		log.Printf("[HTTP:%s] Starting drain goroutine", sess.ID[:8])
		drainCount := 0
		for {
			select {
			case msg := <-sess.FromServer:
				drainCount++
				preview := string(msg)
				if len(preview) > 100 {
					preview = preview[:100] + "..."
				}
				log.Printf("[HTTP:%s] Drain #%d received from FromServer: %s", sess.ID[:8], drainCount, preview)

				sess.BufferMutex.Lock()
				sess.MessageBuffer = append(sess.MessageBuffer, msg)
				bufLen := len(sess.MessageBuffer)
				sess.BufferMutex.Unlock()

				log.Printf("[HTTP:%s] Drain #%d added to buffer (total buffered: %d)", sess.ID[:8], drainCount, bufLen)

			case <-sess.Context.Done():
				log.Printf("[HTTP:%s] Drain goroutine stopping, drained %d messages", sess.ID[:8], drainCount)
				return
			}
		}
	}()

	// Return response
	result := map[string]interface{}{
		"sessionId":       sess.ID,
		"protocolVersion": string(sess.ProtocolVersion),
	}

	writeResult(w, result, &req.ID)
}

// handleSessionCall forwards one MCP request to the session's server and
// polls the message buffer until the correlated reply arrives. The reply
// plus everything the server sent in between comes back as a JSON array.
//
//nolint:gocognit,funlen // HTTP polling logic with protocol translation
func (s *Server) handleSessionCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		writeLLMError(w, errors.NewInvalidParamsError("session", "string", "missing query parameter"), nil)
		return
	}

	sess, exists := s.sessionMgr.GetSession(sessionID)
	if !exists {
		writeLLMError(w, errors.NewSessionNotFoundError(sessionID), nil)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeLLMError(w, errors.NewInvalidRequestError(fmt.Sprintf("failed to read body: %v", err)), nil)
		return
	}
	defer func() { _ = r.Body.Close() }()

	// Decode against the session's negotiated vocabulary; unknown methods
	// pass through as Custom
	req, err := jsonrpc.DecodeRequest(body, sess.Vocabulary.Shapes(jsonrpc.ClientToServer, jsonrpc.RoleRequest))
	if err != nil {
		writeDecodeError(w, err)
		return
	}

	reqData, err := json.Marshal(req)
	if err != nil {
		writeLLMError(w, errors.NewInternalError(fmt.Sprintf("failed to marshal request: %v", err)), &req.ID)
		return
	}
	reqData = append(reqData, '\n')

	log.Printf("[HTTP:%s] Sending %s to server (reqID=%s)", sessionID[:8], req.Method(), req.ID.Key())
	sess.ToServer <- reqData

	// Collect all messages until we get the reply to our request. The
	// server may interleave notifications and its own requests before the
	// correlated response or error lands.
	//
	// Note: Messages are buffered in sess.MessageBuffer by a background
	// goroutine to prevent channel blocking since HTTP is stateless
	startTime := time.Now()
	timeout := 30 * time.Second
	pollCount := 0

	log.Printf("[HTTP:%s] Starting poll loop, looking for reqID=%s", sessionID[:8], req.ID.Key())

	for {
		pollCount++

		// Check for timeout
		elapsed := time.Since(startTime)
		if elapsed > timeout {
			sess.BufferMutex.Lock()
			bufSize := len(sess.MessageBuffer)
			sess.BufferMutex.Unlock()
			log.Printf("[HTTP:%s] TIMEOUT after %v, %d polls, buffer size: %d", sessionID[:8], elapsed, pollCount, bufSize)
			writeLLMError(w, errors.NewInternalError("server response timeout after 30 seconds"), &req.ID)
			return
		}

		// Check if request was cancelled
		select {
		case <-r.Context().Done():
			writeLLMError(w, errors.NewInternalError("request cancelled by client"), &req.ID)
			return
		default:
		}

		// Check message buffer for the reply
		sess.BufferMutex.Lock()
		messages := make([]json.RawMessage, len(sess.MessageBuffer))
		for i, msg := range sess.MessageBuffer {
			messages[i] = json.RawMessage(msg)
		}
		sess.BufferMutex.Unlock()

		if pollCount == 1 || pollCount%100 == 0 {
			log.Printf("[HTTP:%s] Poll #%d: buffer=%d messages, elapsed=%v", sessionID[:8], pollCount, len(messages), elapsed)
		}

		for _, respData := range messages {
			if !isReplyTo(respData, req.ID) {
				continue
			}

			log.Printf("[HTTP:%s] Found matching reply on poll #%d, returning %d messages", sessionID[:8], pollCount, len(messages))
			writeMessageArray(w, sessionID, messages)
			return
		}

		// Sleep briefly before checking again
		time.Sleep(100 * time.Millisecond)
	}
}

func (s *Server) handleSessionClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		writeLLMError(w, errors.NewInvalidParamsError("session", "string", "missing query parameter"), nil)
		return
	}

	if err := s.sessionMgr.CloseSession(sessionID); err != nil {
		writeLLMError(w, errors.NewSessionNotFoundError(sessionID), nil)
		return
	}

	writeResult(w, map[string]interface{}{"closed": true}, nil)
}

// isReplyTo reports whether raw is a response or error envelope correlated
// with the given request id.
func isReplyTo(raw json.RawMessage, id jsonrpc.RequestID) bool {
	switch jsonrpc.Classify(raw) {
	case jsonrpc.KindResponse, jsonrpc.KindError:
	default:
		return false
	}

	var probe struct {
		ID *jsonrpc.RequestID `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.ID == nil {
		return false
	}
	return probe.ID.Equal(id)
}

func writeMessageArray(w http.ResponseWriter, sessionID string, messages []json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(messages); err != nil {
		log.Printf("[HTTP:%s] Error writing response: %v", sessionID[:8], err)
	}
}

func writeResult(w http.ResponseWriter, result interface{}, id *jsonrpc.RequestID) {
	resultData, err := json.Marshal(result)
	if err != nil {
		writeLLMError(w, errors.NewInternalError(fmt.Sprintf("failed to marshal result: %v", err)), id)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if id != nil && id.Valid() {
		payload, perr := jsonrpc.CustomPayload(resultData)
		if perr == nil {
			if resp, rerr := jsonrpc.NewResponse(payload, id); rerr == nil {
				if err := json.NewEncoder(w).Encode(resp); err != nil {
					log.Printf("Error encoding response: %v", err)
				}
				return
			}
		}
	}

	// No correlatable id: emit the envelope with a null id
	out := struct {
		ID      interface{}     `json:"id"`
		JSONRPC string          `json:"jsonrpc"`
		Result  json.RawMessage `json:"result"`
	}{nil, jsonrpc.Version, resultData}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeDecodeError maps a request decode failure onto the matching LLM error.
func writeDecodeError(w http.ResponseWriter, err error) {
	eo, ok := err.(*jsonrpc.ErrorObject)
	if !ok {
		writeLLMError(w, errors.NewInternalError(err.Error()), nil)
		return
	}
	switch eo.Code {
	case jsonrpc.CodeParseError:
		writeLLMError(w, errors.NewParseError(eo.Message), nil)
	default:
		writeLLMError(w, errors.NewInvalidRequestError(eo.Message), nil)
	}
}

func writeLLMError(w http.ResponseWriter, eo *jsonrpc.ErrorObject, id *jsonrpc.RequestID) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK) // JSON-RPC errors still return 200

	if id != nil && id.Valid() {
		if errMsg, err := jsonrpc.NewErrorMessage(eo, id); err == nil {
			if err := json.NewEncoder(w).Encode(errMsg); err != nil {
				log.Printf("Error encoding error response: %v", err)
			}
			return
		}
	}

	out := struct {
		ID      interface{}          `json:"id"`
		JSONRPC string               `json:"jsonrpc"`
		Error   *jsonrpc.ErrorObject `json:"error"`
	}{nil, jsonrpc.Version, eo}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Printf("Error encoding error response: %v", err)
	}
}
