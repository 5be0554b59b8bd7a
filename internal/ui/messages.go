// Package ui provides the terminal user interface for timesplit.
// This file defines message types for the Bubble Tea command pattern. Engine
// mutations run inside commands so the event loop stays responsive even when
// the save hook hits disk or git.
package ui

import (
	"time"

	"timesplit/internal/engine"
	"timesplit/internal/storage"
	"timesplit/internal/sync"

	tea "github.com/charmbracelet/bubbletea"
)

// snapshotMsg carries a fresh state copy to every view after a mutation.
type snapshotMsg struct {
	state engine.State
	today string
}

// metaMsg is sent once at startup with the persisted app flags.
type metaMsg struct {
	meta storage.Meta
	err  error
}

// timerToggledMsg is sent after a timer toggle completes.
type timerToggledMsg struct {
	categoryName string
	started      bool
}

// resetCheckedMsg is sent after a rollover check; applied is true when a
// daily reset actually ran.
type resetCheckedMsg struct {
	applied bool
}

// suggestionAcceptedMsg is sent when an inferred sleep interval was logged.
type suggestionAcceptedMsg struct {
	duration time.Duration
}

// suggestionIgnoredMsg is sent when a sleep suggestion was dismissed.
type suggestionIgnoredMsg struct{}

// sessionDeletedMsg is sent when a session is removed from the timeline.
type sessionDeletedMsg struct {
	id string
}

// categorySavedMsg is sent when a category create/edit completes.
type categorySavedMsg struct {
	name string
	err  error
}

// categoryDeletedMsg is sent when a category is removed.
type categoryDeletedMsg struct {
	name string
	err  error
}

// categoryMovedMsg is sent after a reorder.
type categoryMovedMsg struct{}

// sleepSettingsSavedMsg is sent when the sleep cycle settings were updated.
type sleepSettingsSavedMsg struct {
	err error
}

// resetHourSavedMsg is sent when the daily reset hour was changed.
type resetHourSavedMsg struct {
	hour int
	err  error
}

// proUpgradedMsg is sent when pro features were unlocked.
type proUpgradedMsg struct{}

// syncStatusMsg is sent when git sync status is refreshed.
type syncStatusMsg struct {
	status *sync.Status
	err    error
}

// confirmRequestMsg asks the app to show a confirmation overlay before
// running cmd. When deletion confirmations are disabled the app runs the
// command immediately.
type confirmRequestMsg struct {
	prompt string
	cmd    tea.Cmd
}
