// ABOUTME: Update logic for the TUI (handles all messages and state transitions)
// ABOUTME: Implements the Elm architecture Update function
package tui

import (
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/mcp-relay/internal/tui/client"
)

// Custom message types for relay communication
type RelayMessageMsg struct {
	Data []byte
}

type RelayErrorMsg struct {
	Err error
}

type RelayConnectedMsg struct{}

type SessionCreatedMsg struct {
	Info *client.SessionInfo
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateComponentSizes()
		return m, nil

	case tea.KeyMsg:
		// Global shortcuts
		switch msg.String() {
		case "ctrl+c":
			// Close relay client before quitting
			if m.relayClient != nil {
				m.relayClient.Close()
			}
			return m, tea.Quit

		case "tab":
			m.cycleFocus()
			return m, nil
		}

		// Route to focused component
		return m.handleFocusedInput(msg)

	case RelayConnectedMsg:
		// Connection established, update status and start listening
		DebugLog("Update: RelayConnectedMsg - connection established")
		m.statusBar.SetConnectionStatus("connected")
		return m, tea.Batch(m.createSession(), m.waitForRelayMessage())

	case SessionCreatedMsg:
		DebugLog("Update: SessionCreatedMsg - session %s (%s)", msg.Info.SessionID, msg.Info.ProtocolVersion)
		m.activeSessionID = msg.Info.SessionID
		m.protocolVersion = msg.Info.ProtocolVersion
		m.statusBar.SetActiveSession(msg.Info.SessionID, msg.Info.ProtocolVersion)
		m.messageStore.Add(&client.Entry{
			SessionID: msg.Info.SessionID,
			Direction: client.DirectionSystem,
			Content:   fmt.Sprintf("Session created (protocol %s)", msg.Info.ProtocolVersion),
			Timestamp: time.Now(),
		})
		m = m.updateTrafficView()
		return m, nil

	case RelayMessageMsg:
		// Handle incoming WebSocket messages
		DebugLog("Update: RelayMessageMsg - received %d bytes", len(msg.Data))
		if m.activeSessionID != "" {
			m.messageStore.Add(client.NewWireEntry(m.activeSessionID, client.DirectionReceived, msg.Data))
			m = m.updateTrafficView()
		} else {
			DebugLog("Update: RelayMessageMsg - no active session, message ignored")
		}
		// Continue listening for more messages
		return m, m.waitForRelayMessage()

	case RelayErrorMsg:
		// Handle WebSocket errors
		DebugLog("Update: RelayErrorMsg - %v", msg.Err)
		m.statusBar.SetConnectionStatus("disconnected")

		if m.activeSessionID != "" {
			m.messageStore.Add(&client.Entry{
				SessionID: m.activeSessionID,
				Direction: client.DirectionError,
				Content:   msg.Err.Error(),
				Timestamp: time.Now(),
			})
			m = m.updateTrafficView()
		}
		return m, nil
	}

	// Update components that need to receive all messages (like viewport scrolling)
	if m.focusedArea == FocusTrafficView {
		_, cmd = m.trafficView.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.focusedArea == FocusInputArea {
		_, cmd = m.inputArea.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// connectToRelay dials the relay's WebSocket endpoint.
func (m Model) connectToRelay() tea.Cmd {
	return func() tea.Msg {
		if err := m.relayClient.Connect(); err != nil {
			return RelayErrorMsg{Err: err}
		}
		return RelayConnectedMsg{}
	}
}

// createSession asks the relay for a fresh session.
func (m Model) createSession() tea.Cmd {
	return func() tea.Msg {
		info, err := m.relayClient.NewSession(m.config.Sessions.DefaultWorkingDir)
		if err != nil {
			return RelayErrorMsg{Err: err}
		}
		return SessionCreatedMsg{Info: info}
	}
}

// waitForRelayMessage blocks until the relay delivers a message or error.
func (m Model) waitForRelayMessage() tea.Cmd {
	return func() tea.Msg {
		select {
		case data, ok := <-m.relayClient.Incoming():
			if !ok {
				return RelayErrorMsg{Err: fmt.Errorf("connection closed")}
			}
			return RelayMessageMsg{Data: data}
		case err := <-m.relayClient.Errors():
			return RelayErrorMsg{Err: err}
		}
	}
}

// updateComponentSizes recalculates and applies sizes to all components based on window dimensions
func (m *Model) updateComponentSizes() {
	if m.width == 0 || m.height == 0 {
		return
	}

	// Reserve space for status bar (1 line)
	statusBarHeight := 1
	availableHeight := m.height - statusBarHeight

	inputAreaHeight := 5
	if inputAreaHeight > availableHeight/3 {
		inputAreaHeight = availableHeight / 3
	}
	trafficViewHeight := availableHeight - inputAreaHeight

	m.trafficView.SetSize(m.width, trafficViewHeight)
	m.inputArea.SetSize(m.width, inputAreaHeight)
	m.statusBar.SetSize(m.width)
}

// cycleFocus moves focus between the traffic view and the input area
func (m *Model) cycleFocus() {
	if m.focusedArea == FocusInputArea {
		m.inputArea.Blur()
		m.focusedArea = FocusTrafficView
		return
	}
	m.focusedArea = FocusInputArea
	m.inputArea.Focus()
}

// handleFocusedInput routes key messages to the currently focused component
func (m Model) handleFocusedInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedArea {
	case FocusTrafficView:
		switch msg.String() {
		case "q":
			if m.relayClient != nil {
				m.relayClient.Close()
			}
			return m, tea.Quit
		case "n":
			return m, m.createSession()
		default:
			// TrafficView handles its own scrolling via viewport
			_, cmd = m.trafficView.Update(msg)
		}

	case FocusInputArea:
		// Check if Enter should send message (Shift+Enter will still insert newline)
		if msg.String() == "enter" && m.config.Input.SendOnEnter {
			DebugLog("handleFocusedInput: Enter pressed in InputArea, calling onSendMessage")
			m = m.onSendMessage()
		} else {
			_, cmd = m.inputArea.Update(msg)
		}
	}

	return m, cmd
}

// onSendMessage sends the input area content to the relay as a wire message
func (m Model) onSendMessage() Model {
	DebugLog("onSendMessage: Called (activeSessionID=%s)", m.activeSessionID)

	if m.activeSessionID == "" {
		DebugLog("onSendMessage: No active session, cannot send")
		return m
	}

	content := m.inputArea.GetValue()
	if content == "" {
		DebugLog("onSendMessage: Empty content, ignoring")
		return m
	}

	raw := []byte(content)
	if !json.Valid(raw) {
		m.messageStore.Add(&client.Entry{
			SessionID: m.activeSessionID,
			Direction: client.DirectionError,
			Content:   "Not valid JSON: " + content,
			Timestamp: time.Now(),
		})
		m = m.updateTrafficView()
		return m
	}

	// Record the outgoing message
	m.messageStore.Add(client.NewWireEntry(m.activeSessionID, client.DirectionSent, raw))

	// Clear input
	m.inputArea.Clear()
	m = m.updateTrafficView()

	// Send message to relay server
	if m.relayClient.IsConnected() {
		DebugLog("onSendMessage: Sending message to relay (session=%s)", m.activeSessionID)
		if err := m.relayClient.Send(raw); err != nil {
			DebugLog("onSendMessage: Send failed: %v", err)
			m.messageStore.Add(&client.Entry{
				SessionID: m.activeSessionID,
				Direction: client.DirectionError,
				Content:   "Failed to send: " + err.Error(),
				Timestamp: time.Now(),
			})
			m = m.updateTrafficView()
		}
	} else {
		DebugLog("onSendMessage: Not connected, cannot send message")
		m.messageStore.Add(&client.Entry{
			SessionID: m.activeSessionID,
			Direction: client.DirectionError,
			Content:   "Not connected to relay server",
			Timestamp: time.Now(),
		})
		m = m.updateTrafficView()
	}

	return m
}

// updateTrafficView refreshes the traffic view with current session entries
func (m Model) updateTrafficView() Model {
	if m.activeSessionID == "" {
		m.trafficView.SetEntries([]*client.Entry{})
		return m
	}

	m.trafficView.SetEntries(m.messageStore.Entries(m.activeSessionID))
	return m
}
