// ABOUTME: Database package for logging all relayed MCP messages to SQLite
// ABOUTME: Provides message logging, session tracking, and query capabilities

package db

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/harper/mcp-relay/internal/jsonrpc"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

type DB struct {
	conn *sql.DB
}

type MessageDirection string

const (
	DirectionClientToRelay MessageDirection = "client_to_relay"
	DirectionRelayToServer MessageDirection = "relay_to_server"
	DirectionServerToRelay MessageDirection = "server_to_relay"
	DirectionRelayToClient MessageDirection = "relay_to_client"
)

// Open opens or creates the SQLite database
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Create tables
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Printf("Database initialized at %s", dbPath)
	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// CreateSession logs a new session
func (db *DB) CreateSession(sessionID, workingDir string) error {
	_, err := db.conn.Exec(
		"INSERT INTO sessions (id, working_directory) VALUES (?, ?)",
		sessionID, workingDir,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// UpdateSessionServer records the server's negotiated session id and
// protocol version once the initialize handshake completes.
func (db *DB) UpdateSessionServer(sessionID, serverSessionID string, version jsonrpc.ProtocolVersion) error {
	_, err := db.conn.Exec(
		"UPDATE sessions SET server_session_id = ?, protocol_version = ? WHERE id = ?",
		serverSessionID, string(version), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session server info: %w", err)
	}
	return nil
}

// CloseSession marks a session as closed
func (db *DB) CloseSession(sessionID string) error {
	_, err := db.conn.Exec(
		"UPDATE sessions SET closed_at = CURRENT_TIMESTAMP WHERE id = ?",
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

// LogMessage classifies a message and records it with direction, kind,
// method and correlation id.
func (db *DB) LogMessage(sessionID string, direction MessageDirection, rawMessage []byte) error {
	kind := jsonrpc.Classify(rawMessage)

	var probe struct {
		Method string             `json:"method"`
		ID     *jsonrpc.RequestID `json:"id"`
	}
	// Best effort: malformed messages still get logged with their kind
	_ = json.Unmarshal(rawMessage, &probe)

	var requestID *string
	if probe.ID != nil && probe.ID.Valid() {
		key := probe.ID.Key()
		requestID = &key
	}

	_, err := db.conn.Exec(
		`INSERT INTO messages (session_id, direction, kind, method, request_id, raw_message)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, direction, kind.String(), probe.Method, requestID, string(rawMessage),
	)
	if err != nil {
		return fmt.Errorf("failed to log message: %w", err)
	}
	return nil
}

// Message represents a logged message
type Message struct {
	ID         int64
	SessionID  string
	Direction  MessageDirection
	Kind       string
	Method     string
	RequestID  string
	RawMessage string
	Timestamp  time.Time
}

// GetSessionMessages retrieves all messages for a session
func (db *DB) GetSessionMessages(sessionID string) ([]Message, error) {
	rows, err := db.conn.Query(
		`SELECT id, session_id, direction, kind, method, request_id, raw_message, timestamp
		 FROM messages WHERE session_id = ? ORDER BY timestamp ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var kind, method, requestID sql.NullString

		err := rows.Scan(&m.ID, &m.SessionID, &m.Direction, &kind, &method, &requestID, &m.RawMessage, &m.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		if kind.Valid {
			m.Kind = kind.String
		}
		if method.Valid {
			m.Method = method.String
		}
		if requestID.Valid {
			m.RequestID = requestID.String
		}

		messages = append(messages, m)
	}

	return messages, nil
}

// Session represents a logged session
type Session struct {
	ID               string
	ServerSessionID  string
	ProtocolVersion  string
	WorkingDirectory string
	CreatedAt        time.Time
	ClosedAt         *time.Time
}

// GetAllSessions retrieves all sessions
func (db *DB) GetAllSessions() ([]Session, error) {
	rows, err := db.conn.Query(
		`SELECT id, server_session_id, protocol_version, working_directory, created_at, closed_at
		 FROM sessions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var serverSessionID, protocolVersion sql.NullString
		var closedAt sql.NullTime

		err := rows.Scan(&s.ID, &serverSessionID, &protocolVersion, &s.WorkingDirectory, &s.CreatedAt, &closedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if serverSessionID.Valid {
			s.ServerSessionID = serverSessionID.String
		}
		if protocolVersion.Valid {
			s.ProtocolVersion = protocolVersion.String
		}
		if closedAt.Valid {
			s.ClosedAt = &closedAt.Time
		}

		sessions = append(sessions, s)
	}

	return sessions, nil
}
