package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harper/mcp-relay/internal/jsonrpc"
)

func TestLoadConfig(t *testing.T) {
	// Create test config file
	content := `
server:
  http_port: 8080
  websocket_port: 8081
mcp:
  command: "/usr/local/bin/test-mcp-server"
`
	err := os.WriteFile("test_config.yaml", []byte(content), 0600)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove("test_config.yaml") }()

	cfg, err := Load("test_config.yaml")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Server.HTTPPort != 8080 {
		t.Errorf("expected http_port 8080, got %d", cfg.Server.HTTPPort)
	}

	if cfg.MCP.Command != "/usr/local/bin/test-mcp-server" {
		t.Errorf("expected mcp command '/usr/local/bin/test-mcp-server', got %s", cfg.MCP.Command)
	}

	// Unpinned protocol version defaults to the latest frozen revision
	if cfg.ProtocolVersion() != jsonrpc.LatestProtocolVersion() {
		t.Errorf("expected default protocol version %s, got %s", jsonrpc.LatestProtocolVersion(), cfg.ProtocolVersion())
	}
}

func TestLoadConfig_ProtocolVersionPin(t *testing.T) {
	content := `
mcp:
  command: "/bin/echo"
  protocol_version: "2024-11-05"
`
	if err := os.WriteFile("test_version.yaml", []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove("test_version.yaml") }()

	cfg, err := Load("test_version.yaml")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.ProtocolVersion() != jsonrpc.ProtocolVersion20241105 {
		t.Errorf("expected pinned version 2024-11-05, got %s", cfg.ProtocolVersion())
	}
}

func TestLoadConfig_InvalidProtocolVersion(t *testing.T) {
	content := `
mcp:
  command: "/bin/echo"
  protocol_version: "2023-01-01"
`
	if err := os.WriteFile("test_bad_version.yaml", []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove("test_bad_version.yaml") }()

	if _, err := Load("test_bad_version.yaml"); err == nil {
		t.Error("expected unsupported protocol version to fail")
	}
}

func TestLoadConfig_InvalidMode(t *testing.T) {
	content := `
mcp:
  command: "/bin/echo"
  mode: "kubernetes"
`
	if err := os.WriteFile("test_bad_mode.yaml", []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove("test_bad_mode.yaml") }()

	if _, err := Load("test_bad_mode.yaml"); err == nil {
		t.Error("expected invalid mode to fail")
	}
}

func TestLoadConfig_EnvCasePreservation(t *testing.T) {
	// Create test config with uppercase env var keys
	content := `
server:
  http_port: 8080
mcp:
  mode: "container"
  env:
    ANTHROPIC_API_KEY: "${ANTHROPIC_API_KEY}"
    HOME: "${HOME}"
    PATH: "${PATH}"
    lowercase_var: "test"
    MixedCase_Var: "test2"
`
	err := os.WriteFile("test_env_case.yaml", []byte(content), 0600)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove("test_env_case.yaml") }()

	cfg, err := Load("test_env_case.yaml")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Verify that env var keys preserve their original case from YAML
	expectedKeys := map[string]bool{
		"ANTHROPIC_API_KEY": true,
		"HOME":              true,
		"PATH":              true,
		"lowercase_var":     true,
		"MixedCase_Var":     true,
	}

	if len(cfg.MCP.Env) != len(expectedKeys) {
		t.Errorf("expected %d env vars, got %d", len(expectedKeys), len(cfg.MCP.Env))
	}

	for key := range expectedKeys {
		if _, exists := cfg.MCP.Env[key]; !exists {
			t.Errorf("expected key %q to exist with exact case, but it doesn't", key)
		}
	}

	// Verify values are correct
	if cfg.MCP.Env["ANTHROPIC_API_KEY"] != "${ANTHROPIC_API_KEY}" {
		t.Errorf("expected ANTHROPIC_API_KEY value '${ANTHROPIC_API_KEY}', got %q", cfg.MCP.Env["ANTHROPIC_API_KEY"])
	}
}

func TestLoad_XDGExpansion(t *testing.T) {
	// Create temp config with XDG variable
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  http_port: 8080
  http_host: "0.0.0.0"
  websocket_port: 8081
  websocket_host: "0.0.0.0"
  management_port: 8082
  management_host: "127.0.0.1"

mcp:
  command: "/bin/echo"
  mode: "process"

database:
  path: "$XDG_DATA_HOME/db.sqlite"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatal(err)
	}

	dataHome := filepath.Join(tmpDir, "data")
	t.Setenv("XDG_DATA_HOME", dataHome)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Should NOT contain literal $XDG_DATA_HOME
	if cfg.Database.Path == "$XDG_DATA_HOME/db.sqlite" {
		t.Error("XDG variable not expanded in database path")
	}

	expectedPath := filepath.Join(dataHome, "db.sqlite")
	if cfg.Database.Path != expectedPath {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, expectedPath)
	}
}

func TestLoad_NonXDGPathUnchanged(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  http_port: 8080
  http_host: "0.0.0.0"
  websocket_port: 8081
  websocket_host: "0.0.0.0"
  management_port: 8082
  management_host: "127.0.0.1"

mcp:
  command: "/bin/echo"
  mode: "process"

database:
  path: "/absolute/path/db.sqlite"
`

	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Should remain unchanged
	if cfg.Database.Path != "/absolute/path/db.sqlite" {
		t.Errorf("Non-XDG path was modified: %q", cfg.Database.Path)
	}
}
