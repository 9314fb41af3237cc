// ABOUTME: Core Bubbletea model and state management for the TUI
// ABOUTME: Implements the Model interface with Init, Update, and View methods
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/mcp-relay/internal/tui/client"
	"github.com/harper/mcp-relay/internal/tui/components"
	"github.com/harper/mcp-relay/internal/tui/config"
	"github.com/harper/mcp-relay/internal/tui/theme"
)

// FocusArea represents which component currently has focus
type FocusArea int

const (
	FocusTrafficView FocusArea = iota
	FocusInputArea
)

type Model struct {
	config *config.Config
	theme  theme.Theme
	width  int
	height int

	// Components
	trafficView *components.TrafficView
	inputArea   *components.InputArea
	statusBar   *components.StatusBar

	// Data managers
	relayClient  *client.RelayClient
	messageStore *client.MessageStore

	// UI state
	focusedArea     FocusArea
	activeSessionID string
	protocolVersion string
}

func NewModel(cfg *config.Config) Model {
	th := theme.GetTheme(cfg.UI.Theme)

	// Initialize components with default dimensions (will be resized on first WindowSizeMsg)
	trafficView := components.NewTrafficView(80, 20, th)
	inputArea := components.NewInputArea(80, 4, th)
	statusBar := components.NewStatusBar(80, th)

	// Initialize data managers
	relayClient := client.NewRelayClient(cfg.Relay.URL)
	messageStore := client.NewMessageStore(cfg.UI.TrafficHistoryLimit)

	inputArea.Focus()

	return Model{
		config:       cfg,
		theme:        th,
		trafficView:  trafficView,
		inputArea:    inputArea,
		statusBar:    statusBar,
		relayClient:  relayClient,
		messageStore: messageStore,
		focusedArea:  FocusInputArea,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.inputArea.Init(), m.connectToRelay())
}
