// ABOUTME: Debug logging utilities for TUI development
// ABOUTME: Provides file-based logging that doesn't interfere with TUI display
package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	debugEnabled bool
	debugWriter  io.Writer
	debugMu      sync.Mutex
)

// EnableDebug enables debug logging to the specified writer.
func EnableDebug(w io.Writer) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugEnabled = true
	debugWriter = w
}

// EnableDebugFile opens (appending) a log file and enables debug logging
// to it. The file stays open for the life of the process.
func EnableDebugFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	//nolint:gosec // log path comes from the user's own config
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	EnableDebug(f)
	return nil
}

// DebugLog writes a debug message with timestamp.
func DebugLog(format string, args ...interface{}) {
	debugMu.Lock()
	defer debugMu.Unlock()

	if !debugEnabled || debugWriter == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	message := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(debugWriter, "[%s] %s\n", timestamp, message)
}
