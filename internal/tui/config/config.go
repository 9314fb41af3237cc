// ABOUTME: TUI configuration system with XDG-compliant file loading
// ABOUTME: Handles config loading, validation, defaults, and theme selection
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harper/mcp-relay/internal/xdg"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Relay    RelayConfig    `yaml:"relay"`
	UI       UIConfig       `yaml:"ui"`
	Input    InputConfig    `yaml:"input"`
	Sessions SessionsConfig `yaml:"sessions"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type RelayConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type UIConfig struct {
	Theme               string `yaml:"theme"`
	TrafficHistoryLimit int    `yaml:"traffic_history_limit"`
}

type InputConfig struct {
	SendOnEnter bool `yaml:"send_on_enter"`
}

type SessionsConfig struct {
	DefaultWorkingDir string `yaml:"default_working_dir"`
}

type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Relay: RelayConfig{
			URL:            "ws://localhost:8081",
			TimeoutSeconds: 30,
		},
		UI: UIConfig{
			Theme:               "default",
			TrafficHistoryLimit: 1000,
		},
		Input: InputConfig{
			SendOnEnter: true,
		},
		Sessions: SessionsConfig{
			DefaultWorkingDir: "~/mcp-workspaces",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			File:    "~/.local/share/mcp-tui/tui.log",
		},
	}
}

func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Determine config file location
	if configPath == "" {
		configPath = filepath.Join(xdg.TUIConfigHome(), "config.yaml")
	}

	// If file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := saveDefault(cfg, configPath); err != nil {
			// Log warning but continue with defaults
			return cfg, nil
		}
		return cfg, nil
	}

	// Load existing config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Validate()
	return cfg, nil
}

func (c *Config) Validate() {
	// Clamp traffic history
	if c.UI.TrafficHistoryLimit < 100 {
		c.UI.TrafficHistoryLimit = 100
	}
	if c.UI.TrafficHistoryLimit > 10000 {
		c.UI.TrafficHistoryLimit = 10000
	}

	// Clamp connection timeout
	if c.Relay.TimeoutSeconds < 5 {
		c.Relay.TimeoutSeconds = 5
	}
	if c.Relay.TimeoutSeconds > 300 {
		c.Relay.TimeoutSeconds = 300
	}

	// Unknown log levels fall back to info
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		c.Logging.Level = "info"
	}

	// Expand ~ in paths
	c.Sessions.DefaultWorkingDir = xdg.ExpandPath(c.Sessions.DefaultWorkingDir)
	c.Logging.File = xdg.ExpandPath(c.Logging.File)
}

func saveDefault(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
