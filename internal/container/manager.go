// ABOUTME: Container manager for creating and managing Docker-based MCP server sessions
// ABOUTME: Handles Docker client, container lifecycle, and stdio attachment

package container

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/harper/mcp-relay/internal/config"
	"github.com/harper/mcp-relay/internal/db"
	"github.com/harper/mcp-relay/internal/errors"
	"github.com/harper/mcp-relay/internal/runtime"
)

// Components are the stdio handles of a started server container. The
// session layer assembles its own Session from these, so this package
// stays free of session types.
type Components struct {
	ContainerID string
	Stdin       io.WriteCloser
	Stdout      io.ReadCloser
	Stderr      io.ReadCloser
}

type Manager struct {
	config        config.ContainerConfig
	serverCommand string
	serverArgs    []string
	serverEnv     map[string]string
	dockerClient  *client.Client
	containers    map[string]string // sessionID -> containerID
	mu            sync.RWMutex
	db            *db.DB
}

func NewManager(cfg config.ContainerConfig, command string, args []string, env map[string]string, database *db.DB) (*Manager, error) {
	// Fall back to runtime detection when no host is configured
	host := cfg.DockerHost
	if host == "" {
		rt := runtime.DetectBest()
		if rt == nil {
			return nil, errors.NewRuntimeNotFoundError("docker", availableRuntimeNames())
		}
		host = "unix://" + rt.SocketPath
		log.Printf("Using detected container runtime: %s", rt)
	}

	// Initialize Docker client
	dockerClient, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	// Verify Docker daemon is reachable
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = dockerClient.Ping(ctx)
	if err != nil {
		if names := availableRuntimeNames(); len(names) == 0 {
			return nil, errors.NewRuntimeNotFoundError("docker", nil)
		}
		return nil, NewDockerUnavailableError(err)
	}

	// Verify image exists
	_, _, err = dockerClient.ImageInspectWithRaw(ctx, cfg.Image)
	if err != nil {
		return nil, NewImageNotFoundError(cfg.Image, err)
	}

	return &Manager{
		config:        cfg,
		serverCommand: command,
		serverArgs:    args,
		serverEnv:     env,
		dockerClient:  dockerClient,
		containers:    make(map[string]string),
		db:            database,
	}, nil
}

// availableRuntimeNames lists container runtimes usable on this host.
func availableRuntimeNames() []string {
	var names []string
	for _, rt := range runtime.DetectAll() {
		if rt.Status == "available" || rt.Status == "running" {
			names = append(names, rt.Name)
		}
	}
	return names
}

// allowedHostEnvVars is the allowlist of host environment variables passed
// through to server containers. Everything else stays on the host.
var allowedHostEnvVars = map[string]bool{
	"TERM":      true,
	"LANG":      true,
	"LC_ALL":    true,
	"COLORTERM": true,
}

func (m *Manager) filterAllowedEnvVars(env map[string]string) map[string]string {
	filtered := make(map[string]string)
	for k, v := range env {
		if allowedHostEnvVars[k] {
			filtered[k] = v
		}
	}
	return filtered
}

func (m *Manager) buildContainerLabels(sessionID string) map[string]string {
	return map[string]string{
		"managed-by": "mcp-relay",
		"session-id": sessionID,
		"created-at": time.Now().UTC().Format(time.RFC3339),
	}
}

// sanitizeContainerName maps a session ID to a valid Docker container name.
// Docker allows [a-zA-Z0-9][a-zA-Z0-9_.-]*, but we normalize to lowercase
// and dashes so names are predictable.
func (m *Manager) sanitizeContainerName(sessionID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(sessionID) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return "mcp-relay-" + b.String()
}

// findExistingContainer looks for a container previously created for this
// session, identified by labels. Returns an empty ID when none exists.
func (m *Manager) findExistingContainer(ctx context.Context, sessionID string) (string, error) {
	containers, err := m.dockerClient.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("label", "managed-by=mcp-relay"),
			filters.Arg("label", "session-id="+sessionID),
		),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list containers: %w", err)
	}
	if len(containers) == 0 {
		return "", nil
	}
	return containers[0].ID, nil
}

// reuseContainer attaches to an existing running container for the session.
func (m *Manager) reuseContainer(ctx context.Context, containerID, sessionID string) (*Components, error) {
	inspect, err := m.dockerClient.ContainerInspect(ctx, containerID)
	if err != nil {
		return nil, errors.NewContainerReuseError(containerID, sessionID, fmt.Sprintf("inspect failed: %v", err))
	}
	if inspect.State == nil || !inspect.State.Running {
		return nil, errors.NewContainerReuseError(containerID, sessionID, "container is not running")
	}

	attachResp, err := m.dockerClient.ContainerAttach(ctx, containerID, container.AttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return nil, errors.NewContainerReuseError(containerID, sessionID, fmt.Sprintf("attach failed: %v", err))
	}

	stdoutReader, stderrReader := demuxStreams(attachResp.Reader)

	go m.monitorContainer(ctx, containerID, sessionID)

	m.mu.Lock()
	m.containers[sessionID] = containerID
	m.mu.Unlock()

	return &Components{
		ContainerID: containerID,
		Stdin:       attachResp.Conn,
		Stdout:      stdoutReader,
		Stderr:      stderrReader,
	}, nil
}

func (m *Manager) CreateSession(ctx context.Context, sessionID, workingDir string) (*Components, error) {
	// Reuse the session's container if one already exists
	if existingID, err := m.findExistingContainer(ctx, sessionID); err == nil && existingID != "" {
		log.Printf("[%s] Reusing existing container %s", sessionID, existingID[:12])
		return m.reuseContainer(ctx, existingID, sessionID)
	}

	// 1. Create host workspace directory
	hostWorkspace := filepath.Join(m.config.WorkspaceHostBase, sessionID)
	if err := os.MkdirAll(hostWorkspace, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	// 2. Format environment variables: allowlisted host vars plus the
	// configured server env, with references expanded
	envVars := []string{}
	for k, v := range m.filterAllowedEnvVars(hostEnviron()) {
		envVars = append(envVars, fmt.Sprintf("%s=%s", k, v))
	}
	for k, v := range m.serverEnv {
		expandedVal := os.ExpandEnv(v)
		envVars = append(envVars, fmt.Sprintf("%s=%s", k, expandedVal))
	}

	// 3. Create container config running the MCP server over stdio
	var cmd []string
	if m.serverCommand != "" {
		cmd = append([]string{m.serverCommand}, m.serverArgs...)
	}
	containerConfig := &container.Config{
		Image:      m.config.Image,
		Cmd:        cmd,
		Env:        envVars,
		Labels:     m.buildContainerLabels(sessionID),
		WorkingDir: m.config.WorkspaceContainerPath,
		Tty:        false, // CRITICAL: must be false for stream demuxing
		OpenStdin:  true,
		StdinOnce:  false,
	}

	// 4. Parse memory limit
	memoryLimit, err := parseMemoryLimit(m.config.MemoryLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid memory limit: %w", err)
	}

	// 5. Create host config with mounts and limits
	hostConfig := &container.HostConfig{
		Binds: []string{
			fmt.Sprintf("%s:%s", hostWorkspace, m.config.WorkspaceContainerPath),
		},
		AutoRemove:  m.config.AutoRemove,
		NetworkMode: container.NetworkMode(m.config.NetworkMode),
		Resources: container.Resources{
			Memory:   memoryLimit,
			NanoCPUs: int64(m.config.CPULimit * 1e9),
		},
	}

	// 6. Create container
	resp, err := m.dockerClient.ContainerCreate(
		ctx,
		containerConfig,
		hostConfig,
		nil,
		nil,
		m.sanitizeContainerName(sessionID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	// 7. Start container
	if err := m.dockerClient.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	// 8. Attach to stdio
	attachResp, err := m.dockerClient.ContainerAttach(ctx, resp.ID, container.AttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		m.dockerClient.ContainerStop(ctx, resp.ID, container.StopOptions{})
		return nil, NewAttachFailedError(err)
	}

	// 9. Demux stdout/stderr
	stdoutReader, stderrReader := demuxStreams(attachResp.Reader)

	// 10. Start background monitor
	go m.monitorContainer(ctx, resp.ID, sessionID)

	m.mu.Lock()
	m.containers[sessionID] = resp.ID
	m.mu.Unlock()

	return &Components{
		ContainerID: resp.ID,
		Stdin:       attachResp.Conn,
		Stdout:      stdoutReader,
		Stderr:      stderrReader,
	}, nil
}

func parseMemoryLimit(limit string) (int64, error) {
	if limit == "" {
		return 0, nil
	}

	// Simple parser for memory limits like "512m", "1g"
	var value float64
	var unit string
	_, err := fmt.Sscanf(limit, "%f%s", &value, &unit)
	if err != nil {
		return 0, err
	}

	switch unit {
	case "k", "K":
		return int64(value * 1024), nil
	case "m", "M":
		return int64(value * 1024 * 1024), nil
	case "g", "G":
		return int64(value * 1024 * 1024 * 1024), nil
	default:
		return 0, fmt.Errorf("unknown unit: %s", unit)
	}
}

func (m *Manager) monitorContainer(ctx context.Context, containerID, sessionID string) {
	statusCh, errCh := m.dockerClient.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)

	select {
	case err := <-errCh:
		log.Printf("[%s] Container wait error: %v", sessionID, err)
	case status := <-statusCh:
		if status.StatusCode != 0 {
			// Container exited with error - grab logs
			logs, err := m.dockerClient.ContainerLogs(ctx, containerID, container.LogsOptions{
				ShowStdout: true,
				ShowStderr: true,
				Tail:       "50",
			})
			if err == nil {
				defer logs.Close()
				// Demux the logs since they're also multiplexed
				var stdout, stderr []byte
				stdoutBuf := &bytesBuffer{buf: &stdout}
				stderrBuf := &bytesBuffer{buf: &stderr}
				_, _ = stdcopy.StdCopy(stdoutBuf, stderrBuf, logs)
				log.Printf("[%s] Container exited with code %d. Last 50 lines:\nSTDOUT:\n%s\nSTDERR:\n%s",
					sessionID, status.StatusCode, string(stdout), string(stderr))
			}
		}
	}
}

// hostEnviron returns the process environment as a map.
func hostEnviron() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return env
}

// Helper for capturing logs
type bytesBuffer struct {
	buf *[]byte
}

func (b *bytesBuffer) Write(p []byte) (n int, err error) {
	*b.buf = append(*b.buf, p...)
	return len(p), nil
}

func (m *Manager) StopContainer(sessionID string) error {
	m.mu.Lock()
	containerID, exists := m.containers[sessionID]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("session not found: %s", sessionID)
	}
	delete(m.containers, sessionID)
	m.mu.Unlock()

	// Stop container
	timeout := 10
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout+5)*time.Second)
	defer cancel()

	if err := m.dockerClient.ContainerStop(ctx, containerID, container.StopOptions{
		Timeout: &timeout,
	}); err != nil {
		log.Printf("[%s] Failed to stop container: %v", sessionID, err)
	}

	// Close database session
	if m.db != nil {
		if err := m.db.CloseSession(sessionID); err != nil {
			log.Printf("[%s] Failed to close DB session: %v", sessionID, err)
		}
	}

	return nil
}
