// ABOUTME: Session manager for creating and managing MCP server subprocesses
// ABOUTME: Handles process lifecycle, stdio piping, and cleanup

package session

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"

	"github.com/google/uuid"
	"github.com/harper/mcp-relay/internal/config"
	"github.com/harper/mcp-relay/internal/container"
	"github.com/harper/mcp-relay/internal/db"
	"github.com/harper/mcp-relay/internal/jsonrpc"
)

type ManagerConfig struct {
	Mode            string // "process" or "container"
	ServerCommand   string
	ServerArgs      []string
	ServerEnv       map[string]string
	ProtocolVersion jsonrpc.ProtocolVersion
	ContainerConfig config.ContainerConfig
}

type Manager struct {
	config           ManagerConfig
	sessions         map[string]*Session
	mu               sync.RWMutex
	db               *db.DB
	containerManager *container.Manager // optional container manager
}

func NewManager(cfg ManagerConfig, database *db.DB) *Manager {
	m := &Manager{
		config:   cfg,
		sessions: make(map[string]*Session),
		db:       database,
	}

	// Initialize container manager if mode is "container"
	if cfg.Mode == "container" {
		containerMgr, err := container.NewManager(
			cfg.ContainerConfig,
			cfg.ServerCommand,
			cfg.ServerArgs,
			cfg.ServerEnv,
			database,
		)
		if err != nil {
			log.Fatalf("Failed to initialize container manager: %v", err)
		}
		m.containerManager = containerMgr
		log.Printf("Container manager initialized (image: %s, command: %s)", cfg.ContainerConfig.Image, cfg.ServerCommand)
	}

	return m
}

func (m *Manager) createProcessSession(ctx context.Context, sessionID, workingDir string) (*Session, error) {
	sessionCtx, cancel := context.WithCancel(ctx)

	// Create server command
	cmd := exec.CommandContext(sessionCtx, m.config.ServerCommand, m.config.ServerArgs...)
	cmd.Dir = workingDir

	// Set up environment - inherit parent env and add custom vars
	cmd.Env = append(os.Environ(), "PWD="+workingDir)
	for k, v := range m.config.ServerEnv {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	// Create pipes
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	// Start the process
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start server: %w", err)
	}

	sess := &Session{
		ID:           sessionID,
		WorkingDir:   workingDir,
		ServerCmd:    cmd,
		ServerStdin:  stdin,
		ServerStdout: stdout,
		ServerStderr: stderr,
		ToServer:     make(chan []byte, 10),
		FromServer:   make(chan []byte, 10),
		Context:      sessionCtx,
		Cancel:       cancel,
		DB:           m.db,
	}

	// Log session creation to database
	if m.db != nil {
		if err := m.db.CreateSession(sessionID, workingDir); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to log session creation: %w", err)
		}
	}

	return sess, nil
}

func (m *Manager) CreateSession(ctx context.Context, workingDir string) (*Session, error) {
	sessionID := "sess_" + uuid.New().String()[:8]

	var sess *Session
	var err error

	// Route based on mode
	if m.config.Mode == "container" {
		log.Printf("[%s] Creating container session (image: %s)", sessionID, m.config.ContainerConfig.Image)

		// Get container components
		components, err := m.containerManager.CreateSession(ctx, sessionID, workingDir)
		if err != nil {
			return nil, err
		}

		// Create context with cancel for container session
		sessionCtx, cancel := context.WithCancel(ctx)

		// Assemble Session from components
		sess = &Session{
			ID:           sessionID,
			WorkingDir:   workingDir,
			ContainerID:  components.ContainerID,
			ServerStdin:  components.Stdin,
			ServerStdout: components.Stdout,
			ServerStderr: components.Stderr,
			ToServer:     make(chan []byte, 10),
			FromServer:   make(chan []byte, 10),
			Context:      sessionCtx,
			Cancel:       cancel,
			DB:           m.db,
		}

		// Log session creation to database
		if m.db != nil {
			if err := m.db.CreateSession(sessionID, workingDir); err != nil {
				cancel()                                    // Clean up context
				m.containerManager.StopContainer(sessionID) // Clean up container
				return nil, fmt.Errorf("failed to log session creation: %w", err)
			}
		}
	} else {
		log.Printf("[%s] Creating process session (command: %s)", sessionID, m.config.ServerCommand)
		sess, err = m.createProcessSession(ctx, sessionID, workingDir)
		if err != nil {
			return nil, err
		}
	}

	// Common initialization (same for both modes)
	sess.Connections = NewConnectionManager(sess)

	m.mu.Lock()
	m.sessions[sessionID] = sess
	m.mu.Unlock()

	// Start stdio bridge (works for both modes)
	go sess.StartStdioBridge()

	// Perform the MCP initialize handshake
	if err := sess.Initialize(m.config.ProtocolVersion); err != nil {
		m.CloseSession(sessionID)
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	// Record the server instance and negotiated protocol revision
	sess.ServerSessionID = "srv_" + uuid.New().String()[:8]
	if m.db != nil {
		if err := m.db.UpdateSessionServer(sessionID, sess.ServerSessionID, sess.ProtocolVersion); err != nil {
			log.Printf("[%s] failed to record server instance: %v", sessionID, err)
		}
	}

	log.Printf("[%s] Session ready (mode: %s, protocol: %s, server: %s)",
		sessionID, m.config.Mode, sess.ProtocolVersion, sess.ServerInfo)
	return sess, nil
}

func (m *Manager) CloseSession(sessionID string) error {
	// Common cleanup: remove session from map (both modes)
	m.mu.Lock()
	sess, exists := m.sessions[sessionID]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("session not found: %s", sessionID)
	}
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	// Log session closure to database
	if m.db != nil {
		if err := m.db.CloseSession(sessionID); err != nil {
			// Log error but don't fail the close operation
			log.Printf("failed to log session closure: %v", err)
		}
	}

	// Mode-specific cleanup
	if m.config.Mode == "container" {
		// Cancel context to signal goroutines to stop
		sess.Cancel()
		// Delegate container cleanup to container manager
		return m.containerManager.StopContainer(sessionID)
	}

	// Process mode cleanup
	// Cancel context (kills process)
	sess.Cancel()

	// Wait for process to exit and all goroutines to finish
	sess.ServerCmd.Wait()

	// Close channels after process has exited to prevent race conditions
	close(sess.ToServer)
	close(sess.FromServer)

	return nil
}

func (m *Manager) GetSession(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, exists := m.sessions[sessionID]
	return sess, exists
}

// Sessions returns a snapshot of the active sessions.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}
