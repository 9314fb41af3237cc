// ABOUTME: Session data structure representing a client-server connection
// ABOUTME: Each session has its own MCP server subprocess and working directory

package session

import (
	"bufio"
	"context"
	"io"
	"log"
	"os/exec"
	"sync"

	"github.com/harper/mcp-relay/internal/db"
	"github.com/harper/mcp-relay/internal/jsonrpc"
)

type Session struct {
	ID              string
	ServerSessionID string // Relay-assigned ID for the spawned server instance
	WorkingDir      string
	ContainerID     string // Docker container ID (empty for process mode)

	// Negotiated during the initialize handshake
	ProtocolVersion jsonrpc.ProtocolVersion
	Vocabulary      *jsonrpc.Vocabulary
	ServerInfo      string

	// Process mode fields (nil in container mode)
	ServerCmd *exec.Cmd

	// Common fields (both modes)
	ServerStdin  io.WriteCloser
	ServerStdout io.ReadCloser
	ServerStderr io.ReadCloser
	ToServer     chan []byte
	FromServer   chan []byte
	Context      context.Context
	Cancel       context.CancelFunc
	DB           *db.DB
	Connections  *ConnectionManager

	// For HTTP: buffer messages from the server
	MessageBuffer [][]byte
	BufferMutex   sync.Mutex
}

// StartStdioBridge starts goroutines to bridge channels and stdio
func (s *Session) StartStdioBridge() {
	// Goroutine: ToServer channel -> ServerStdin
	go func() {
		msgCount := 0
		for msg := range s.ToServer {
			msgCount++
			preview := string(msg)
			if len(preview) > 100 {
				preview = preview[:100] + "..."
			}
			log.Printf("[%s] ToServer #%d -> ServerStdin: %s", s.ID[:8], msgCount, preview)

			// Log message to database
			if s.DB != nil {
				if err := s.DB.LogMessage(s.ID, db.DirectionRelayToServer, msg); err != nil {
					log.Printf("[%s] failed to log relay->server message: %v", s.ID[:8], err)
				}
			}

			if _, err := s.ServerStdin.Write(msg); err != nil {
				log.Printf("[%s] error writing to server stdin: %v", s.ID[:8], err)
				return
			}
		}
		log.Printf("[%s] ToServer channel closed, bridge stopped after %d messages", s.ID[:8], msgCount)
	}()

	// Goroutine: ServerStdout -> FromServer channel
	go func() {
		scanner := bufio.NewScanner(s.ServerStdout)
		messageCount := 0
		for scanner.Scan() {
			line := scanner.Bytes()
			messageCount++

			// Make a copy since scanner reuses the buffer
			msg := make([]byte, len(line))
			copy(msg, line)

			preview := string(msg)
			if len(preview) > 100 {
				preview = preview[:100] + "..."
			}
			log.Printf("[%s] ServerStdout->FromServer #%d: %s", s.ID[:8], messageCount, preview)

			// Log message to database
			if s.DB != nil {
				if err := s.DB.LogMessage(s.ID, db.DirectionServerToRelay, msg); err != nil {
					log.Printf("[%s] failed to log server->relay message: %v", s.ID[:8], err)
				}
			}

			select {
			case s.FromServer <- msg:
				log.Printf("[%s] Message #%d sent to FromServer channel (buffer: %d/%d)",
					s.ID[:8], messageCount, len(s.FromServer), cap(s.FromServer))
			case <-s.Context.Done():
				log.Printf("[%s] Context done while sending message #%d", s.ID[:8], messageCount)
				return
			}
		}
		if err := scanner.Err(); err != nil {
			log.Printf("[%s] error reading server stdout: %v", s.ID[:8], err)
		}
		log.Printf("[%s] ServerStdout scanner finished, total messages: %d", s.ID[:8], messageCount)
	}()

	// Goroutine: ServerStderr -> log
	go func() {
		scanner := bufio.NewScanner(s.ServerStderr)
		for scanner.Scan() {
			select {
			case <-s.Context.Done():
				return
			default:
				log.Printf("server stderr [%s]: %s", s.ID, scanner.Text())
			}
		}
	}()
}
