// ABOUTME: Configuration loading and management for the MCP relay server
// ABOUTME: Supports YAML files and environment variable overrides

package config

import (
	"fmt"
	"os"

	"github.com/harper/mcp-relay/internal/jsonrpc"
	"github.com/harper/mcp-relay/internal/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MCP      MCPConfig      `mapstructure:"mcp"`
	Database DatabaseConfig `mapstructure:"database"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	HTTPPort       int    `mapstructure:"http_port"`
	HTTPHost       string `mapstructure:"http_host"`
	WebSocketPort  int    `mapstructure:"websocket_port"`
	WebSocketHost  string `mapstructure:"websocket_host"`
	ManagementPort int    `mapstructure:"management_port"`
	ManagementHost string `mapstructure:"management_host"`
}

type MCPConfig struct {
	Command               string            `mapstructure:"command"`
	Mode                  string            `mapstructure:"mode"` // "process" or "container"
	Args                  []string          `mapstructure:"args"`
	Env                   map[string]string `mapstructure:"env"`
	ProtocolVersion       string            `mapstructure:"protocol_version"`
	Container             ContainerConfig   `mapstructure:"container"`
	StartupTimeoutSeconds int               `mapstructure:"startup_timeout_seconds"`
	MaxConcurrentSessions int               `mapstructure:"max_concurrent_sessions"`
}

type ContainerConfig struct {
	Image                  string  `mapstructure:"image"`
	DockerHost             string  `mapstructure:"docker_host"`
	NetworkMode            string  `mapstructure:"network_mode"`
	MemoryLimit            string  `mapstructure:"memory_limit"`
	CPULimit               float64 `mapstructure:"cpu_limit"`
	WorkspaceHostBase      string  `mapstructure:"workspace_host_base"`
	WorkspaceContainerPath string  `mapstructure:"workspace_container_path"`
	AutoRemove             bool    `mapstructure:"auto_remove"`
	StartupTimeoutSeconds  int     `mapstructure:"startup_timeout_seconds"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// IMPORTANT: Viper lowercases all map keys, but environment variables are case-sensitive
	// Parse YAML directly to preserve original key case for mcp.env
	//nolint:gosec // config file path from validated user input
	data, err := os.ReadFile(path)
	if err == nil {
		var rawConfig struct {
			MCP struct {
				Env map[string]string `yaml:"env"`
			} `yaml:"mcp"`
		}
		if yaml.Unmarshal(data, &rawConfig) == nil && len(rawConfig.MCP.Env) > 0 {
			cfg.MCP.Env = rawConfig.MCP.Env
		}
	}

	// Expand XDG variables in database path
	cfg.Database.Path = xdg.ExpandPath(cfg.Database.Path)

	// Default to process mode if not specified
	if cfg.MCP.Mode == "" {
		cfg.MCP.Mode = "process"
	}

	// Validate mode
	if cfg.MCP.Mode != "process" && cfg.MCP.Mode != "container" {
		return nil, fmt.Errorf("invalid mcp.mode: %s (must be 'process' or 'container')", cfg.MCP.Mode)
	}

	// Default to the latest frozen protocol revision
	if cfg.MCP.ProtocolVersion == "" {
		cfg.MCP.ProtocolVersion = string(jsonrpc.LatestProtocolVersion())
	}
	if _, err := jsonrpc.ParseProtocolVersion(cfg.MCP.ProtocolVersion); err != nil {
		return nil, fmt.Errorf("invalid mcp.protocol_version: %w", err)
	}

	return &cfg, nil
}

// ProtocolVersion returns the validated protocol revision the relay pins.
func (c *Config) ProtocolVersion() jsonrpc.ProtocolVersion {
	v, err := jsonrpc.ParseProtocolVersion(c.MCP.ProtocolVersion)
	if err != nil {
		return jsonrpc.LatestProtocolVersion()
	}
	return v
}
