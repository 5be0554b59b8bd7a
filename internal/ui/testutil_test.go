// Package ui provides the terminal user interface for timesplit.
// Shared helpers for the view tests.
package ui

import (
	"testing"
	"time"

	"timesplit/internal/config"
	"timesplit/internal/engine"
	"timesplit/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// testNow is the fixed clock used by test engines: a Sunday at 10:00 local,
// well past the default 04:00 reset boundary.
var testNow = time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)

// setupTest prepares the test environment for deterministic rendering.
// The ASCII profile strips color codes so assertions see plain text.
func setupTest(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
}

// newTestEngine creates an engine with the default state and a fixed clock.
func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(engine.DefaultState())
	e.SetNowFunc(func() time.Time { return testNow })
	return e
}

// createTestStorage creates a Storage instance with a temporary directory.
func createTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	return store
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{})
}

// snapshotOf builds the broadcast message views receive after a mutation.
func snapshotOf(e *engine.Engine) snapshotMsg {
	return snapshotMsg{state: e.Snapshot(), today: e.Today()}
}

// keyRunes builds a plain character key message.
func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes a command and returns the resulting message.
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return cmd()
}
