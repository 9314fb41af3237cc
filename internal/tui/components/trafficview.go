// ABOUTME: TrafficView component for displaying relay wire traffic with scrolling
// ABOUTME: Uses bubbles viewport and formats entries with direction arrows and kinds
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/mcp-relay/internal/tui/client"
	"github.com/harper/mcp-relay/internal/tui/theme"
)

type TrafficView struct {
	width    int
	height   int
	theme    theme.Theme
	viewport viewport.Model
	entries  []*client.Entry
}

func NewTrafficView(width, height int, t theme.Theme) *TrafficView {
	vp := viewport.New(width, height)
	vp.Style = t.TrafficViewStyle()

	return &TrafficView{
		width:    width,
		height:   height,
		theme:    t,
		viewport: vp,
		entries:  []*client.Entry{},
	}
}

func (tv *TrafficView) SetEntries(entries []*client.Entry) {
	tv.entries = entries
	tv.updateViewport()
	tv.scrollToBottom()
}

func (tv *TrafficView) formatEntry(entry *client.Entry) string {
	var sb strings.Builder

	// Header line: direction arrow, kind, method, timestamp
	timestamp := entry.Timestamp.Format("15:04:05")
	header := fmt.Sprintf("%s %s", entry.Direction.Icon(), entry.Kind)
	if entry.Method != "" {
		header += " " + entry.Method
	}

	sb.WriteString(header)
	sb.WriteString(" ")
	sb.WriteString(tv.theme.DimStyle().Render(timestamp))
	sb.WriteString("\n")

	// Style content based on direction
	var contentStyle = tv.theme.TrafficViewStyle()

	switch entry.Direction {
	case client.DirectionSent:
		contentStyle = contentStyle.Foreground(tv.theme.ClientMsg)
	case client.DirectionReceived:
		contentStyle = contentStyle.Foreground(tv.theme.ServerMsg)
	case client.DirectionError:
		contentStyle = tv.theme.ErrorStyle()
	case client.DirectionSystem:
		contentStyle = tv.theme.DimStyle()
	}

	sb.WriteString(contentStyle.Render(entry.Content))
	sb.WriteString("\n")

	return sb.String()
}

func (tv *TrafficView) updateViewport() {
	if len(tv.entries) == 0 {
		tv.viewport.SetContent(tv.theme.DimStyle().Render("No traffic yet"))
		return
	}

	var sb strings.Builder
	for i, entry := range tv.entries {
		sb.WriteString(tv.formatEntry(entry))
		// Add spacing between entries
		if i < len(tv.entries)-1 {
			sb.WriteString("\n")
		}
	}

	tv.viewport.SetContent(sb.String())
}

func (tv *TrafficView) scrollToBottom() {
	tv.viewport.GotoBottom()
}

func (tv *TrafficView) View() string {
	if len(tv.entries) == 0 {
		return tv.theme.TrafficViewStyle().
			Width(tv.width - 2).
			Height(tv.height - 2).
			Render(tv.theme.DimStyle().Render("No traffic yet"))
	}

	return tv.viewport.View()
}

func (tv *TrafficView) SetSize(width, height int) {
	tv.width = width
	tv.height = height
	tv.viewport.Width = width
	tv.viewport.Height = height
	tv.updateViewport()
}

func (tv *TrafficView) Init() tea.Cmd {
	return nil
}

func (tv *TrafficView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	tv.viewport, cmd = tv.viewport.Update(msg)
	return tv, cmd
}
