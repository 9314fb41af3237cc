// ABOUTME: Traffic store for maintaining per-session wire history
// ABOUTME: Implements FIFO queue with configurable history limits
package client

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/harper/mcp-relay/internal/jsonrpc"
)

type Direction int

const (
	DirectionSent Direction = iota
	DirectionReceived
	DirectionSystem
	DirectionError
)

func (d Direction) String() string {
	switch d {
	case DirectionSent:
		return "Sent"
	case DirectionReceived:
		return "Received"
	case DirectionSystem:
		return "System"
	case DirectionError:
		return "Error"
	default:
		return "Unknown"
	}
}

func (d Direction) Icon() string {
	switch d {
	case DirectionSent:
		return "→"
	case DirectionReceived:
		return "←"
	case DirectionSystem:
		return "ℹ️"
	case DirectionError:
		return "⚠️"
	default:
		return "❓"
	}
}

// Entry is one line of relay traffic: a message sent or received over
// the WebSocket, or a local system/error note.
type Entry struct {
	SessionID string
	Direction Direction
	Kind      jsonrpc.MessageKind
	Method    string
	Content   string
	Timestamp time.Time
}

// NewWireEntry classifies a raw wire message and builds a traffic entry
// from it. Method is best-effort: empty for responses and errors.
func NewWireEntry(sessionID string, dir Direction, raw []byte) *Entry {
	return &Entry{
		SessionID: sessionID,
		Direction: dir,
		Kind:      jsonrpc.Classify(raw),
		Method:    probeMethod(raw),
		Content:   string(raw),
		Timestamp: time.Now(),
	}
}

func probeMethod(raw []byte) string {
	var probe struct {
		Method string `json:"method"`
	}
	_ = json.Unmarshal(raw, &probe)
	return probe.Method
}

type MessageStore struct {
	entries map[string][]*Entry
	limit   int
	mu      sync.RWMutex
}

func NewMessageStore(limit int) *MessageStore {
	return &MessageStore{
		entries: make(map[string][]*Entry),
		limit:   limit,
	}
}

func (ms *MessageStore) Add(entry *Entry) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	sessionEntries := ms.entries[entry.SessionID]
	sessionEntries = append(sessionEntries, entry)

	// Enforce history limit (FIFO)
	if len(sessionEntries) > ms.limit {
		sessionEntries = sessionEntries[len(sessionEntries)-ms.limit:]
	}

	ms.entries[entry.SessionID] = sessionEntries
}

func (ms *MessageStore) Entries(sessionID string) []*Entry {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	entries := ms.entries[sessionID]
	// Return copy to prevent external modification
	result := make([]*Entry, len(entries))
	copy(result, entries)
	return result
}

func (ms *MessageStore) Clear(sessionID string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.entries, sessionID)
}

func (ms *MessageStore) ClearAll() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.entries = make(map[string][]*Entry)
}
