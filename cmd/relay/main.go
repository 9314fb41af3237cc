// ABOUTME: Main entry point for the MCP relay server
// ABOUTME: Loads configuration and starts HTTP/WebSocket/management servers

package main

import (
	"flag"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/harper/mcp-relay/internal/config"
	"github.com/harper/mcp-relay/internal/db"
	"github.com/harper/mcp-relay/internal/errors"
	"github.com/harper/mcp-relay/internal/http"
	"github.com/harper/mcp-relay/internal/logger"
	"github.com/harper/mcp-relay/internal/management"
	"github.com/harper/mcp-relay/internal/session"
	"github.com/harper/mcp-relay/internal/websocket"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger.SetVerbose(*verbose)

	// Load .env if present so ${VAR} references in config resolve
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Info("loaded config: http_port=%d, ws_port=%d, mgmt_port=%d, mode=%s, protocol=%s",
		cfg.Server.HTTPPort, cfg.Server.WebSocketPort, cfg.Server.ManagementPort,
		cfg.MCP.Mode, cfg.MCP.ProtocolVersion)

	// Ensure the database directory exists
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		pathErr := errors.NewXDGPathError("XDG_DATA_HOME", dbDir, err)
		log.Fatalf("%v", pathErr)
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()
	logger.Info("message log opened at %s", cfg.Database.Path)

	sessionMgr := session.NewManager(session.ManagerConfig{
		Mode:            cfg.MCP.Mode,
		ServerCommand:   cfg.MCP.Command,
		ServerArgs:      cfg.MCP.Args,
		ServerEnv:       cfg.MCP.Env,
		ProtocolVersion: cfg.ProtocolVersion(),
		ContainerConfig: cfg.MCP.Container,
	}, database)

	wsServer := websocket.NewServer(sessionMgr, cfg.ProtocolVersion())
	httpServer := http.NewServer(sessionMgr)
	mgmtServer := management.NewServer(cfg, sessionMgr, database)

	errCh := make(chan error, 3)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.WebSocketHost, cfg.Server.WebSocketPort)
		logger.Info("websocket server listening on %s", addr)
		errCh <- stdhttp.ListenAndServe(addr, wsServer)
	}()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.HTTPHost, cfg.Server.HTTPPort)
		logger.Info("http server listening on %s", addr)
		errCh <- stdhttp.ListenAndServe(addr, httpServer)
	}()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.ManagementHost, cfg.Server.ManagementPort)
		logger.Info("management server listening on %s", addr)
		errCh <- stdhttp.ListenAndServe(addr, mgmtServer)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("server error: %v", err)
	case sig := <-sigCh:
		logger.Info("received %s, shutting down", sig)
	}

	// Close active sessions so server processes and containers stop
	for _, sess := range sessionMgr.Sessions() {
		if err := sessionMgr.CloseSession(sess.ID); err != nil {
			logger.Warn("failed to close session %s: %v", sess.ID, err)
		}
	}
}
