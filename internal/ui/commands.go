// Package ui provides the terminal user interface for timesplit.
// This file contains tea.Cmd factories that wrap engine mutations. Each
// mutation triggers the engine's save hook, which may hit disk and git, so
// everything runs asynchronously and reports back with a message from
// messages.go.
package ui

import (
	"timesplit/internal/engine"
	"timesplit/internal/storage"
	"timesplit/internal/sync"

	tea "github.com/charmbracelet/bubbletea"
)

// snapshotCmd returns a command that captures a fresh state copy for views.
func snapshotCmd(e *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg{state: e.Snapshot(), today: e.Today()}
	}
}

// loadMetaCmd returns a command that loads the persisted app flags.
func loadMetaCmd(store *storage.Storage) tea.Cmd {
	return func() tea.Msg {
		meta, err := store.LoadMeta()
		return metaMsg{meta: meta, err: err}
	}
}

// toggleTimerCmd returns a command that starts or stops tracking a category.
func toggleTimerCmd(e *engine.Engine, categoryID, categoryName string) tea.Cmd {
	return func() tea.Msg {
		e.ToggleTimer(categoryID)
		sess, _ := e.ActiveSession()
		started := sess != nil && sess.CategoryID == categoryID
		return timerToggledMsg{categoryName: categoryName, started: started}
	}
}

// checkResetCmd returns a command that applies the daily rollover if due.
func checkResetCmd(e *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		return resetCheckedMsg{applied: e.CheckReset()}
	}
}

// acceptSuggestionCmd returns a command that logs an inferred sleep interval.
func acceptSuggestionCmd(e *engine.Engine, s engine.SleepSuggestion) tea.Cmd {
	return func() tea.Msg {
		e.AcceptSuggestion(s)
		return suggestionAcceptedMsg{duration: s.Duration}
	}
}

// ignoreSuggestionCmd returns a command that dismisses a sleep suggestion.
func ignoreSuggestionCmd(e *engine.Engine, id string) tea.Cmd {
	return func() tea.Msg {
		e.IgnoreSuggestion(id)
		return suggestionIgnoredMsg{}
	}
}

// deleteSessionCmd returns a command that removes a session.
func deleteSessionCmd(e *engine.Engine, id string) tea.Cmd {
	return func() tea.Msg {
		e.DeleteSession(id)
		return sessionDeletedMsg{id: id}
	}
}

// saveCategoryCmd returns a command that creates or edits a category.
// An empty id creates a new category.
func saveCategoryCmd(e *engine.Engine, id, name, icon, color string) tea.Cmd {
	return func() tea.Msg {
		cat, err := e.SaveCategory(id, name, icon, color)
		if err != nil {
			return categorySavedMsg{err: err}
		}
		return categorySavedMsg{name: cat.Name}
	}
}

// deleteCategoryCmd returns a command that removes a category. Its sessions
// stay in the timeline with a placeholder label.
func deleteCategoryCmd(e *engine.Engine, id, name string) tea.Cmd {
	return func() tea.Msg {
		err := e.DeleteCategory(id)
		return categoryDeletedMsg{name: name, err: err}
	}
}

// moveCategoryCmd returns a command that swaps a category with its neighbor.
func moveCategoryCmd(e *engine.Engine, id string, up bool) tea.Cmd {
	return func() tea.Msg {
		e.ReorderCategory(id, up)
		return categoryMovedMsg{}
	}
}

// updateSleepSettingsCmd returns a command that replaces the sleep settings.
func updateSleepSettingsCmd(e *engine.Engine, ss engine.SleepSettings) tea.Cmd {
	return func() tea.Msg {
		return sleepSettingsSavedMsg{err: e.UpdateSleepSettings(ss)}
	}
}

// setResetHourCmd returns a command that changes the daily reset hour.
func setResetHourCmd(e *engine.Engine, hour int) tea.Cmd {
	return func() tea.Msg {
		return resetHourSavedMsg{hour: hour, err: e.SetDailyResetHour(hour)}
	}
}

// upgradeProCmd returns a command that unlocks pro features.
func upgradeProCmd(e *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		e.UpgradeToPro()
		return proUpgradedMsg{}
	}
}

// refreshSyncStatusCmd returns a command that checks git sync status.
// Returns nil command if gitSync is nil (sync disabled).
func refreshSyncStatusCmd(gs *sync.GitSync) tea.Cmd {
	if gs == nil {
		return nil
	}
	return func() tea.Msg {
		status, err := gs.Status()
		return syncStatusMsg{status: status, err: err}
	}
}

// requestConfirmCmd returns a command that asks the app to confirm before
// running next.
func requestConfirmCmd(prompt string, next tea.Cmd) tea.Cmd {
	return func() tea.Msg {
		return confirmRequestMsg{prompt: prompt, cmd: next}
	}
}
