// ABOUTME: Management API for runtime config and health monitoring
// ABOUTME: Provides endpoints for health checks, sessions, and message history

package management

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/harper/mcp-relay/internal/config"
	"github.com/harper/mcp-relay/internal/db"
	"github.com/harper/mcp-relay/internal/session"
)

type Server struct {
	config     *config.Config
	sessionMgr *session.Manager
	db         *db.DB
	mux        *http.ServeMux
}

func NewServer(cfg *config.Config, mgr *session.Manager, database *db.DB) *Server {
	s := &Server{
		config:     cfg,
		sessionMgr: mgr,
		db:         database,
		mux:        http.NewServeMux(),
	}

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/config", s.handleConfig)
	s.mux.HandleFunc("/api/sessions", s.handleSessions)
	s.mux.HandleFunc("/api/sessions/", s.handleSessionMessages)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":           "healthy",
		"server_command":   s.config.MCP.Command,
		"protocol_version": s.config.MCP.ProtocolVersion,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.config)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Enable CORS for web interface
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	sessions, err := s.db.GetAllSessions()
	if err != nil {
		http.Error(w, "failed to get sessions", http.StatusInternalServerError)
		return
	}

	// Convert to JSON-friendly format with isActive flag
	type SessionResponse struct {
		ID               string  `json:"id"`
		ServerSessionID  string  `json:"serverSessionId,omitempty"`
		ProtocolVersion  string  `json:"protocolVersion,omitempty"`
		WorkingDirectory string  `json:"workingDirectory"`
		CreatedAt        string  `json:"createdAt"`
		ClosedAt         *string `json:"closedAt,omitempty"`
		IsActive         bool    `json:"isActive"`
	}

	response := make([]SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		closedAt := (*string)(nil)
		if sess.ClosedAt != nil {
			closedAtStr := sess.ClosedAt.Format("2006-01-02 15:04:05")
			closedAt = &closedAtStr
		}

		response = append(response, SessionResponse{
			ID:               sess.ID,
			ServerSessionID:  sess.ServerSessionID,
			ProtocolVersion:  sess.ProtocolVersion,
			WorkingDirectory: sess.WorkingDirectory,
			CreatedAt:        sess.CreatedAt.Format("2006-01-02 15:04:05"),
			ClosedAt:         closedAt,
			IsActive:         sess.ClosedAt == nil,
		})
	}

	json.NewEncoder(w).Encode(response)
}

// handleSessionMessages serves GET /api/sessions/{id}/messages with the
// logged traffic for one session, including the classified kind, method
// and correlation id of every envelope.
func (s *Server) handleSessionMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID, rest, found := strings.Cut(path, "/")
	if !found || rest != "messages" || sessionID == "" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	messages, err := s.db.GetSessionMessages(sessionID)
	if err != nil {
		http.Error(w, "failed to get messages", http.StatusInternalServerError)
		return
	}

	type MessageResponse struct {
		ID        int64           `json:"id"`
		Direction string          `json:"direction"`
		Kind      string          `json:"kind"`
		Method    string          `json:"method,omitempty"`
		RequestID string          `json:"requestId,omitempty"`
		Raw       json.RawMessage `json:"raw"`
		Timestamp string          `json:"timestamp"`
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		raw := json.RawMessage(m.RawMessage)
		if !json.Valid(raw) {
			quoted, _ := json.Marshal(m.RawMessage)
			raw = quoted
		}
		response = append(response, MessageResponse{
			ID:        m.ID,
			Direction: string(m.Direction),
			Kind:      m.Kind,
			Method:    m.Method,
			RequestID: m.RequestID,
			Raw:       raw,
			Timestamp: m.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}

	json.NewEncoder(w).Encode(response)
}
