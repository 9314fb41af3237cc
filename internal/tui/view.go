// ABOUTME: View rendering for the TUI (converts model state to terminal output)
// ABOUTME: Implements the Elm architecture View function
package tui

import "github.com/charmbracelet/lipgloss"

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.trafficView.View(),
		m.inputArea.View(),
		m.statusBar.View(),
	)
}
