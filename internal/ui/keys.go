// Package ui provides the terminal user interface for timesplit.
// This file defines key bindings using the Bubble Tea key package for
// type-safe key matching, help text generation, and customization.
package ui

import (
	"strings"

	"timesplit/internal/config"

	"github.com/charmbracelet/bubbles/key"
)

// parseKeys splits a comma-separated string into individual keys.
// If the input is empty, returns the default keys.
func parseKeys(customKeys string, defaultKeys ...string) []string {
	if customKeys == "" {
		return defaultKeys
	}
	keys := strings.Split(customKeys, ",")
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		trimmed := strings.TrimSpace(k)
		if trimmed != "" {
			if trimmed == "space" {
				trimmed = " "
			}
			result = append(result, trimmed)
		}
	}
	return result
}

// =============================================================================
// Global Keys (available in all contexts)
// =============================================================================

// GlobalKeyMap defines keys available throughout the application.
type GlobalKeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	NextView key.Binding
	View1    key.Binding
	View2    key.Binding
	View3    key.Binding
	View4    key.Binding
}

// DefaultGlobalKeyMap returns the default global key bindings.
func DefaultGlobalKeyMap() GlobalKeyMap {
	return NewGlobalKeyMap(&config.KeysConfig{})
}

// NewGlobalKeyMap creates global key bindings from config.
func NewGlobalKeyMap(cfg *config.KeysConfig) GlobalKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return GlobalKeyMap{
		Quit: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Quit, "q", "ctrl+c")...),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Help, "?")...),
			key.WithHelp("?", "help"),
		),
		NextView: key.NewBinding(
			key.WithKeys(parseKeys(cfg.NextView, "tab")...),
			key.WithHelp("tab", "next view"),
		),
		View1: key.NewBinding(
			key.WithKeys(parseKeys(cfg.View1, "1")...),
			key.WithHelp("1", "track"),
		),
		View2: key.NewBinding(
			key.WithKeys(parseKeys(cfg.View2, "2")...),
			key.WithHelp("2", "timeline"),
		),
		View3: key.NewBinding(
			key.WithKeys(parseKeys(cfg.View3, "3")...),
			key.WithHelp("3", "stats"),
		),
		View4: key.NewBinding(
			key.WithKeys(parseKeys(cfg.View4, "4")...),
			key.WithHelp("4", "settings"),
		),
	}
}

// =============================================================================
// Navigation Keys (shared by list-based views)
// =============================================================================

// NavigationKeyMap defines keys for list navigation.
type NavigationKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// NewNavigationKeyMap creates navigation key bindings from config.
func NewNavigationKeyMap(cfg *config.KeysConfig) NavigationKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return NavigationKeyMap{
		Up: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Up, "k", "up")...),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Down, "j", "down")...),
			key.WithHelp("j/↓", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Top, "g")...),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Bottom, "G")...),
			key.WithHelp("G", "bottom"),
		),
	}
}

// =============================================================================
// Input Keys (shared by text input fields)
// =============================================================================

// InputKeyMap defines keys for text input mode.
type InputKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// NewInputKeyMap creates input key bindings from config.
func NewInputKeyMap(cfg *config.KeysConfig) InputKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return InputKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Confirm, "enter")...),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys(parseKeys(cfg.Cancel, "esc")...),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// =============================================================================
// Track View Keys
// =============================================================================

// TrackKeyMap defines keys for the track view.
type TrackKeyMap struct {
	Toggle key.Binding
	Sleep  key.Binding
	Accept key.Binding
	Ignore key.Binding
	NavigationKeyMap
}

// NewTrackKeyMap creates track view key bindings from config.
func NewTrackKeyMap(cfg *config.KeysConfig) TrackKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return TrackKeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(parseKeys(cfg.ToggleTimer, " ", "enter")...),
			key.WithHelp("space", "start/stop"),
		),
		Sleep: key.NewBinding(
			key.WithKeys(parseKeys(cfg.SleepToggle, "z")...),
			key.WithHelp("z", "sleep"),
		),
		Accept: key.NewBinding(
			key.WithKeys(parseKeys(cfg.AcceptSuggestion, "y")...),
			key.WithHelp("y", "log sleep"),
		),
		Ignore: key.NewBinding(
			key.WithKeys(parseKeys(cfg.IgnoreSuggestion, "n")...),
			key.WithHelp("n", "dismiss"),
		),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp returns the short help for the track view (implements help.KeyMap).
func (k TrackKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Sleep, k.Down}
}

// FullHelp returns the full help for the track view (implements help.KeyMap).
func (k TrackKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Sleep, k.Accept, k.Ignore},
		{k.Up, k.Down, k.Top, k.Bottom},
	}
}

// =============================================================================
// Timeline View Keys
// =============================================================================

// TimelineKeyMap defines keys for the timeline view.
type TimelineKeyMap struct {
	Delete key.Binding
	NavigationKeyMap
}

// NewTimelineKeyMap creates timeline key bindings from config.
func NewTimelineKeyMap(cfg *config.KeysConfig) TimelineKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return TimelineKeyMap{
		Delete: key.NewBinding(
			key.WithKeys(parseKeys(cfg.DeleteSession, "x")...),
			key.WithHelp("x", "delete"),
		),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp returns the short help for the timeline view (implements help.KeyMap).
func (k TimelineKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Delete, k.Down}
}

// FullHelp returns the full help for the timeline view (implements help.KeyMap).
func (k TimelineKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Delete},
		{k.Up, k.Down, k.Top, k.Bottom},
	}
}

// =============================================================================
// Settings View Keys
// =============================================================================

// SettingsKeyMap defines keys for the settings view.
type SettingsKeyMap struct {
	Edit     key.Binding
	Add      key.Binding
	Delete   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	NavigationKeyMap
}

// NewSettingsKeyMap creates settings key bindings from config.
func NewSettingsKeyMap(cfg *config.KeysConfig) SettingsKeyMap {
	if cfg == nil {
		cfg = &config.KeysConfig{}
	}
	return SettingsKeyMap{
		Edit: key.NewBinding(
			key.WithKeys(parseKeys(cfg.EditCategory, "e", "enter")...),
			key.WithHelp("e", "edit"),
		),
		Add: key.NewBinding(
			key.WithKeys(parseKeys(cfg.AddCategory, "a")...),
			key.WithHelp("a", "add category"),
		),
		Delete: key.NewBinding(
			key.WithKeys(parseKeys(cfg.DeleteCategory, "x")...),
			key.WithHelp("x", "delete"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys(parseKeys(cfg.MoveUp, "K")...),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys(parseKeys(cfg.MoveDown, "J")...),
			key.WithHelp("J", "move down"),
		),
		NavigationKeyMap: NewNavigationKeyMap(cfg),
	}
}

// ShortHelp returns the short help for the settings view (implements help.KeyMap).
func (k SettingsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Add, k.Delete, k.Down}
}

// FullHelp returns the full help for the settings view (implements help.KeyMap).
func (k SettingsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Edit, k.Add, k.Delete, k.MoveUp, k.MoveDown},
		{k.Up, k.Down, k.Top, k.Bottom},
	}
}
