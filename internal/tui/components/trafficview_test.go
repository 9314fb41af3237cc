// ABOUTME: Tests for TrafficView component rendering and entry display
// ABOUTME: Verifies entry formatting, scrolling, and empty states
package components

import (
	"testing"
	"time"

	"github.com/harper/mcp-relay/internal/jsonrpc"
	"github.com/harper/mcp-relay/internal/tui/client"
	"github.com/harper/mcp-relay/internal/tui/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionID = "test-session"

func TestNewTrafficView(t *testing.T) {
	width, height := 80, 24
	th := theme.DefaultTheme
	tv := NewTrafficView(width, height, th)

	require.NotNil(t, tv)
	assert.Equal(t, width, tv.width)
	assert.Equal(t, height, tv.height)
	assert.Equal(t, th, tv.theme)
	assert.Empty(t, tv.entries)
}

func TestTrafficView_SetEntries(t *testing.T) {
	tv := NewTrafficView(80, 24, theme.DefaultTheme)

	entries := []*client.Entry{
		{
			SessionID: testSessionID,
			Direction: client.DirectionSent,
			Kind:      jsonrpc.KindRequest,
			Method:    "tools/list",
			Content:   `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
			Timestamp: time.Now(),
		},
		{
			SessionID: testSessionID,
			Direction: client.DirectionReceived,
			Kind:      jsonrpc.KindResponse,
			Content:   `{"jsonrpc":"2.0","id":1,"result":{}}`,
			Timestamp: time.Now(),
		},
	}

	tv.SetEntries(entries)

	assert.Len(t, tv.entries, 2)
}

func TestTrafficView_EmptyState(t *testing.T) {
	tv := NewTrafficView(80, 24, theme.DefaultTheme)

	view := tv.View()
	assert.Contains(t, view, "No traffic yet")
}

func TestTrafficView_FormatEntry(t *testing.T) {
	tv := NewTrafficView(80, 24, theme.DefaultTheme)

	entry := &client.Entry{
		SessionID: testSessionID,
		Direction: client.DirectionSent,
		Kind:      jsonrpc.KindRequest,
		Method:    "tools/call",
		Content:   `{"jsonrpc":"2.0","id":2,"method":"tools/call"}`,
		Timestamp: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
	}

	formatted := tv.formatEntry(entry)

	assert.Contains(t, formatted, "→")
	assert.Contains(t, formatted, "Request")
	assert.Contains(t, formatted, "tools/call")
	assert.Contains(t, formatted, "15:04:05")
}

func TestTrafficView_FormatEntryWithoutMethod(t *testing.T) {
	tv := NewTrafficView(80, 24, theme.DefaultTheme)

	entry := &client.Entry{
		SessionID: testSessionID,
		Direction: client.DirectionReceived,
		Kind:      jsonrpc.KindResponse,
		Content:   `{"jsonrpc":"2.0","id":2,"result":{}}`,
		Timestamp: time.Now(),
	}

	formatted := tv.formatEntry(entry)

	assert.Contains(t, formatted, "←")
	assert.Contains(t, formatted, "Response")
}

func TestTrafficView_SetSize(t *testing.T) {
	tv := NewTrafficView(80, 24, theme.DefaultTheme)

	tv.SetSize(100, 30)

	assert.Equal(t, 100, tv.width)
	assert.Equal(t, 30, tv.height)
	assert.Equal(t, 100, tv.viewport.Width)
	assert.Equal(t, 30, tv.viewport.Height)
}
