// ABOUTME: Entry point for the mcp-relay TUI traffic inspector
// ABOUTME: Initializes configuration, debug logging, and starts the Bubbletea application
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/mcp-relay/internal/tui"
	"github.com/harper/mcp-relay/internal/tui/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: XDG config dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Debug logging goes to a file so it doesn't corrupt the display
	if cfg.Logging.Enabled && cfg.Logging.File != "" {
		if err := tui.EnableDebugFile(cfg.Logging.File); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: debug log unavailable: %v\n", err)
		}
	}

	m := tui.NewModel(cfg)

	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
