// ABOUTME: WebSocket server for bidirectional MCP communication
// ABOUTME: Decodes JSON-RPC envelopes, handles relay control methods, forwards the rest

package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/harper/mcp-relay/internal/db"
	"github.com/harper/mcp-relay/internal/errors"
	"github.com/harper/mcp-relay/internal/jsonrpc"
	"github.com/harper/mcp-relay/internal/mcp"
	"github.com/harper/mcp-relay/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Add proper origin checking
	},
}

type Server struct {
	sessionMgr *session.Manager
	vocab      *jsonrpc.Vocabulary // used before a session's own vocabulary exists
}

func NewServer(mgr *session.Manager, version jsonrpc.ProtocolVersion) *Server {
	return &Server{
		sessionMgr: mgr,
		vocab:      mcp.Vocabulary(version),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	s.handleConnection(conn)
}

func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	var currentSession *session.Session
	var clientID string
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Main loop: Read from WebSocket
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("websocket read error: %v", err)
			break
		}

		// Log client->relay message
		if currentSession != nil && currentSession.DB != nil {
			if err := currentSession.DB.LogMessage(currentSession.ID, db.DirectionClientToRelay, message); err != nil {
				log.Printf("[WS:%s] failed to log client->relay message: %v", currentSession.ID[:8], err)
			}
		}

		// Decode against the session's negotiated vocabulary once one exists
		vocab := s.vocab
		if currentSession != nil && currentSession.Vocabulary != nil {
			vocab = currentSession.Vocabulary
		}

		batch, err := jsonrpc.DecodeMessageBatch(message, vocab, jsonrpc.ClientToServer)
		if err != nil {
			s.sendDecodeError(conn, err)
			continue
		}

		if batch.IsBatch() {
			// Batches carry no relay control methods; forward wholesale
			if currentSession == nil {
				s.sendLLMError(conn, errors.NewSessionNotFoundError("no session"), nil)
				continue
			}
			if batch.IncludesRequest() {
				log.Printf("[WS:%s] Forwarding batch of %d (reply owed)", currentSession.ID[:8], len(batch.Messages()))
			}
			s.forward(currentSession, message)
			continue
		}

		msg, _ := batch.AsSingle()

		req, err := jsonrpc.AsRequest(msg)
		if err != nil {
			// Notifications, responses and errors from the client pass
			// straight through to the server
			if currentSession == nil {
				continue
			}
			s.forward(currentSession, message)
			continue
		}

		// Handle different methods
		switch req.Method() {
		case "session/new":
			var params struct {
				WorkingDirectory string `json:"workingDirectory"`
			}
			if err := json.Unmarshal(req.Payload.Params(), &params); err != nil || params.WorkingDirectory == "" {
				s.sendLLMError(conn, errors.NewInvalidParamsError("workingDirectory", "string", "invalid or missing"), &req.ID)
				continue
			}

			sess, err := s.sessionMgr.CreateSession(ctx, params.WorkingDirectory)
			if err != nil {
				s.sendLLMError(conn, errors.NewServerConnectionError(params.WorkingDirectory, 1, 10000, err.Error()), &req.ID)
				continue
			}

			currentSession = sess
			clientID = sess.Connections.AttachClient(conn)
			sess.Connections.StartBroadcasting()

			s.sendResult(conn, map[string]interface{}{
				"sessionId":       sess.ID,
				"protocolVersion": string(sess.ProtocolVersion),
			}, req.ID)

		case "session/resume":
			var params struct {
				SessionID string `json:"sessionId"`
			}
			if err := json.Unmarshal(req.Payload.Params(), &params); err != nil || params.SessionID == "" {
				s.sendLLMError(conn, errors.NewInvalidParamsError("sessionId", "string", "invalid or missing"), &req.ID)
				continue
			}

			// Try to get existing session
			sess, exists := s.sessionMgr.GetSession(params.SessionID)
			if !exists {
				s.sendLLMError(conn, errors.NewSessionNotFoundError(params.SessionID), &req.ID)
				continue
			}

			currentSession = sess
			clientID = sess.Connections.AttachClient(conn)
			sess.Connections.StartBroadcasting()
			log.Printf("[WS:%s] Client resuming session", sess.ID[:8])

			s.sendResult(conn, map[string]interface{}{
				"sessionId":       sess.ID,
				"protocolVersion": string(sess.ProtocolVersion),
			}, req.ID)

		default:
			// MCP methods, known or Custom, go to the server untouched
			if currentSession == nil {
				s.sendLLMError(conn, errors.NewSessionNotFoundError("no session"), &req.ID)
				continue
			}
			if !req.Payload.Known() {
				log.Printf("[WS:%s] Forwarding custom method %q", currentSession.ID[:8], req.Method())
			}
			s.forward(currentSession, message)
		}
	}

	// Cleanup: Don't close the session, just detach from it
	// This allows the session to be resumed later
	if currentSession != nil {
		currentSession.Connections.DetachClient(clientID)
		log.Printf("[WS:%s] Client disconnected, session remains active for resumption", currentSession.ID[:8])
	}
}

// forward queues raw client bytes for the server as one stdio line.
func (s *Server) forward(sess *session.Session, raw []byte) {
	line := make([]byte, 0, len(raw)+1)
	line = append(line, raw...)
	line = append(line, '\n')
	sess.ToServer <- line
}

func (s *Server) sendResult(conn *websocket.Conn, result interface{}, id jsonrpc.RequestID) {
	resultData, err := json.Marshal(result)
	if err != nil {
		log.Printf("failed to marshal result: %v", err)
		return
	}
	payload, err := jsonrpc.CustomPayload(resultData)
	if err != nil {
		log.Printf("failed to build result payload: %v", err)
		return
	}
	resp, err := jsonrpc.NewResponse(payload, &id)
	if err != nil {
		log.Printf("failed to build response: %v", err)
		return
	}

	data, _ := json.Marshal(resp)
	conn.WriteMessage(websocket.TextMessage, data)
}

// sendDecodeError maps a decode failure onto the matching LLM error.
func (s *Server) sendDecodeError(conn *websocket.Conn, err error) {
	eo, ok := err.(*jsonrpc.ErrorObject)
	if !ok {
		s.sendLLMError(conn, errors.NewInternalError(err.Error()), nil)
		return
	}
	switch eo.Code {
	case jsonrpc.CodeParseError:
		s.sendLLMError(conn, errors.NewParseError(eo.Message), nil)
	default:
		s.sendLLMError(conn, errors.NewInvalidRequestError(eo.Message), nil)
	}
}

func (s *Server) sendLLMError(conn *websocket.Conn, eo *jsonrpc.ErrorObject, id *jsonrpc.RequestID) {
	if id != nil && id.Valid() {
		errMsg, err := jsonrpc.NewErrorMessage(eo, id)
		if err == nil {
			data, _ := json.Marshal(errMsg)
			conn.WriteMessage(websocket.TextMessage, data)
			return
		}
	}

	// The request id is unknown: reply with a null id
	data, _ := json.Marshal(struct {
		ID      interface{}          `json:"id"`
		JSONRPC string               `json:"jsonrpc"`
		Error   *jsonrpc.ErrorObject `json:"error"`
	}{nil, jsonrpc.Version, eo})
	conn.WriteMessage(websocket.TextMessage, data)
}
