// ABOUTME: ConnectionManager manages multiple WebSocket clients attached to a session
// ABOUTME: Single broadcaster drains the server channel and fans out to every client

package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/harper/mcp-relay/internal/db"
)

type ConnectionManager struct {
	mu          sync.RWMutex
	connections map[string]*ClientConnection
	session     *Session
	startOnce   sync.Once
}

type ClientConnection struct {
	id       string
	conn     *websocket.Conn
	writeMu  sync.Mutex // gorilla conns allow one concurrent writer
	attached time.Time
}

func NewConnectionManager(sess *Session) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*ClientConnection),
		session:     sess,
	}
}

func (cm *ConnectionManager) AttachClient(conn *websocket.Conn) string {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	clientID := uuid.New().String()[:8]

	client := &ClientConnection{
		id:       clientID,
		conn:     conn,
		attached: time.Now(),
	}

	cm.connections[clientID] = client

	log.Printf("[%s] Client %s attached (%d total clients)",
		cm.session.ID[:8], clientID, len(cm.connections))

	return clientID
}

func (cm *ConnectionManager) DetachClient(clientID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.connections[clientID]; !exists {
		return
	}
	delete(cm.connections, clientID)

	log.Printf("[%s] Client %s detached (%d remaining clients)",
		cm.session.ID[:8], clientID, len(cm.connections))
}

func (cm *ConnectionManager) ClientCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// Broadcast sends a server message to every attached client. The message
// is logged once regardless of how many clients receive it.
func (cm *ConnectionManager) Broadcast(msg []byte) {
	if cm.session.DB != nil {
		if err := cm.session.DB.LogMessage(cm.session.ID, db.DirectionRelayToClient, msg); err != nil {
			log.Printf("[%s] failed to log relay->client message: %v", cm.session.ID[:8], err)
		}
	}

	cm.mu.RLock()
	clients := make([]*ClientConnection, 0, len(cm.connections))
	for _, c := range cm.connections {
		clients = append(clients, c)
	}
	cm.mu.RUnlock()

	for _, c := range clients {
		c.writeMu.Lock()
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		c.writeMu.Unlock()
		if err != nil {
			log.Printf("[%s] write to client %s failed: %v", cm.session.ID[:8], c.id, err)
			cm.DetachClient(c.id)
		}
	}
}

// StartBroadcasting drains the session's FromServer channel into the
// attached clients. Safe to call more than once; only the first call
// starts the goroutine.
func (cm *ConnectionManager) StartBroadcasting() {
	cm.startOnce.Do(func() {
		go func() {
			for {
				select {
				case msg, ok := <-cm.session.FromServer:
					if !ok {
						return
					}
					cm.Broadcast(msg)
				case <-cm.session.Context.Done():
					return
				}
			}
		}()
	})
}
