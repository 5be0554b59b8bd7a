// Package config handles configuration loading and defaults for timesplit.
// Configuration is loaded from XDG-compliant paths (typically
// ~/.config/timesplit/config.yaml).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"timesplit/internal/fsutil"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.timesplit)
	DataDir string `yaml:"data_dir,omitempty"`

	// Theme customizes the visual appearance
	Theme ThemeConfig `yaml:"theme,omitempty"`

	// Keys customizes keyboard shortcuts
	Keys KeysConfig `yaml:"keys,omitempty"`

	// UX customizes user experience settings
	UX UXConfig `yaml:"ux,omitempty"`

	// Sync configures git synchronization
	Sync SyncConfig `yaml:"sync,omitempty"`
}

// SyncConfig defines git synchronization settings.
type SyncConfig struct {
	// Enabled enables/disables git sync
	Enabled bool `yaml:"enabled,omitempty"`

	// AutoCommit automatically commits changes after saves
	AutoCommit bool `yaml:"auto_commit,omitempty"`

	// AutoPush automatically pushes after each commit
	AutoPush bool `yaml:"auto_push,omitempty"`

	// PullOnStartup pulls latest changes when the app starts
	PullOnStartup bool `yaml:"pull_on_startup,omitempty"`

	// CommitMessage is the commit message template ("auto" for auto-generated)
	CommitMessage string `yaml:"commit_message,omitempty"`
}

// ThemeConfig defines color and style settings.
type ThemeConfig struct {
	// Primary color for focused elements (hex, e.g., "#FF5733")
	Primary string `yaml:"primary,omitempty"`

	// Accent color for highlights (hex)
	Accent string `yaml:"accent,omitempty"`

	// Muted color for secondary text (hex)
	Muted string `yaml:"muted,omitempty"`

	// Background color (hex)
	Background string `yaml:"background,omitempty"`

	// Text color (hex)
	Text string `yaml:"text,omitempty"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "tab", "j,down"
type KeysConfig struct {
	// Global keys
	Quit     string `yaml:"quit,omitempty"`      // default: "q,ctrl+c"
	Help     string `yaml:"help,omitempty"`      // default: "?"
	NextView string `yaml:"next_view,omitempty"` // default: "tab"
	View1    string `yaml:"view_1,omitempty"`    // default: "1"
	View2    string `yaml:"view_2,omitempty"`    // default: "2"
	View3    string `yaml:"view_3,omitempty"`    // default: "3"
	View4    string `yaml:"view_4,omitempty"`    // default: "4"

	// Navigation keys
	Up     string `yaml:"up,omitempty"`     // default: "k,up"
	Down   string `yaml:"down,omitempty"`   // default: "j,down"
	Top    string `yaml:"top,omitempty"`    // default: "g"
	Bottom string `yaml:"bottom,omitempty"` // default: "G"

	// Tracking keys
	ToggleTimer string `yaml:"toggle_timer,omitempty"` // default: "space,enter"
	SleepToggle string `yaml:"sleep_toggle,omitempty"` // default: "z"

	// Sleep suggestion keys
	AcceptSuggestion string `yaml:"accept_suggestion,omitempty"` // default: "y"
	IgnoreSuggestion string `yaml:"ignore_suggestion,omitempty"` // default: "n"

	// Category keys
	AddCategory    string `yaml:"add_category,omitempty"`    // default: "a"
	EditCategory   string `yaml:"edit_category,omitempty"`   // default: "e"
	DeleteCategory string `yaml:"delete_category,omitempty"` // default: "x"
	MoveUp         string `yaml:"move_up,omitempty"`         // default: "K"
	MoveDown       string `yaml:"move_down,omitempty"`       // default: "J"

	// Timeline keys
	DeleteSession string `yaml:"delete_session,omitempty"` // default: "x"

	// Input keys
	Confirm string `yaml:"confirm,omitempty"` // default: "enter"
	Cancel  string `yaml:"cancel,omitempty"`  // default: "esc"
}

// UXConfig defines user experience settings.
type UXConfig struct {
	// ConfirmDeletions shows confirmation dialogs before deleting items
	ConfirmDeletions bool `yaml:"confirm_deletions,omitempty"` // default: true

	// ShowOnboarding shows the first-run hint until tracking has been used
	ShowOnboarding bool `yaml:"show_onboarding,omitempty"` // default: true

	// NarrowLayoutThreshold is the terminal width below which to use stacked layout
	NarrowLayoutThreshold int `yaml:"narrow_layout_threshold,omitempty"` // default: 80
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Theme: ThemeConfig{
			Primary:    "#7C3AED", // Violet
			Accent:     "#10B981", // Emerald
			Muted:      "#6B7280", // Gray
			Background: "",        // Terminal default
			Text:       "",        // Terminal default
		},
		Keys: KeysConfig{
			// Defaults are empty strings, which means use built-in defaults
		},
		UX: UXConfig{
			ConfirmDeletions:      true,
			ShowOnboarding:        true,
			NarrowLayoutThreshold: 80,
		},
		Sync: SyncConfig{
			Enabled:       false, // Disabled by default
			AutoCommit:    true,  // Auto-commit when enabled
			AutoPush:      false, // Don't auto-push by default
			PullOnStartup: false, // Don't auto-pull by default
			CommitMessage: "auto",
		},
	}
}

// defaultDataDir returns the default data directory path.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".timesplit"
	}
	return filepath.Join(home, ".timesplit")
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "timesplit")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "timesplit")
}

// configPath returns the path to the config file.
func configPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration from disk, merging with defaults.
// If no config file exists, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	path := configPath()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return nil, err
	}

	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; fall back to conservative merge if this fails

	cfg.mergeFromYAML(&userCfg, &doc)

	return cfg, nil
}

// mergeNonEmpty applies non-empty values from other to c.
// It intentionally does not touch booleans (those require presence-aware merging).
func (c *Config) mergeNonEmpty(other *Config) {
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}

	if other.Theme.Primary != "" {
		c.Theme.Primary = other.Theme.Primary
	}
	if other.Theme.Accent != "" {
		c.Theme.Accent = other.Theme.Accent
	}
	if other.Theme.Muted != "" {
		c.Theme.Muted = other.Theme.Muted
	}
	if other.Theme.Background != "" {
		c.Theme.Background = other.Theme.Background
	}
	if other.Theme.Text != "" {
		c.Theme.Text = other.Theme.Text
	}

	if other.Keys.Quit != "" {
		c.Keys.Quit = other.Keys.Quit
	}
	if other.Keys.Help != "" {
		c.Keys.Help = other.Keys.Help
	}
	if other.Keys.NextView != "" {
		c.Keys.NextView = other.Keys.NextView
	}
	if other.Keys.View1 != "" {
		c.Keys.View1 = other.Keys.View1
	}
	if other.Keys.View2 != "" {
		c.Keys.View2 = other.Keys.View2
	}
	if other.Keys.View3 != "" {
		c.Keys.View3 = other.Keys.View3
	}
	if other.Keys.View4 != "" {
		c.Keys.View4 = other.Keys.View4
	}
	if other.Keys.Up != "" {
		c.Keys.Up = other.Keys.Up
	}
	if other.Keys.Down != "" {
		c.Keys.Down = other.Keys.Down
	}
	if other.Keys.Top != "" {
		c.Keys.Top = other.Keys.Top
	}
	if other.Keys.Bottom != "" {
		c.Keys.Bottom = other.Keys.Bottom
	}
	if other.Keys.ToggleTimer != "" {
		c.Keys.ToggleTimer = other.Keys.ToggleTimer
	}
	if other.Keys.SleepToggle != "" {
		c.Keys.SleepToggle = other.Keys.SleepToggle
	}
	if other.Keys.AcceptSuggestion != "" {
		c.Keys.AcceptSuggestion = other.Keys.AcceptSuggestion
	}
	if other.Keys.IgnoreSuggestion != "" {
		c.Keys.IgnoreSuggestion = other.Keys.IgnoreSuggestion
	}
	if other.Keys.AddCategory != "" {
		c.Keys.AddCategory = other.Keys.AddCategory
	}
	if other.Keys.EditCategory != "" {
		c.Keys.EditCategory = other.Keys.EditCategory
	}
	if other.Keys.DeleteCategory != "" {
		c.Keys.DeleteCategory = other.Keys.DeleteCategory
	}
	if other.Keys.MoveUp != "" {
		c.Keys.MoveUp = other.Keys.MoveUp
	}
	if other.Keys.MoveDown != "" {
		c.Keys.MoveDown = other.Keys.MoveDown
	}
	if other.Keys.DeleteSession != "" {
		c.Keys.DeleteSession = other.Keys.DeleteSession
	}
	if other.Keys.Confirm != "" {
		c.Keys.Confirm = other.Keys.Confirm
	}
	if other.Keys.Cancel != "" {
		c.Keys.Cancel = other.Keys.Cancel
	}

	if other.UX.NarrowLayoutThreshold > 0 {
		c.UX.NarrowLayoutThreshold = other.UX.NarrowLayoutThreshold
	}

	if other.Sync.CommitMessage != "" {
		c.Sync.CommitMessage = other.Sync.CommitMessage
	}
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	// Fall back to conservative behavior if we can't inspect presence.
	if doc == nil || len(doc.Content) == 0 {
		c.mergeNonEmpty(other)
		return
	}

	// First apply all non-empty string-ish merges.
	c.mergeNonEmpty(other)

	// Now re-apply booleans only when present in YAML.
	if yamlHasPath(doc, "ux", "confirm_deletions") {
		c.UX.ConfirmDeletions = other.UX.ConfirmDeletions
	}
	if yamlHasPath(doc, "ux", "show_onboarding") {
		c.UX.ShowOnboarding = other.UX.ShowOnboarding
	}
	if yamlHasPath(doc, "ux", "narrow_layout_threshold") && other.UX.NarrowLayoutThreshold > 0 {
		c.UX.NarrowLayoutThreshold = other.UX.NarrowLayoutThreshold
	}

	if yamlHasPath(doc, "sync", "enabled") {
		c.Sync.Enabled = other.Sync.Enabled
	}
	if yamlHasPath(doc, "sync", "auto_commit") {
		c.Sync.AutoCommit = other.Sync.AutoCommit
	}
	if yamlHasPath(doc, "sync", "auto_push") {
		c.Sync.AutoPush = other.Sync.AutoPush
	}
	if yamlHasPath(doc, "sync", "pull_on_startup") {
		c.Sync.PullOnStartup = other.Sync.PullOnStartup
	}
	if yamlHasPath(doc, "sync", "commit_message") {
		c.Sync.CommitMessage = other.Sync.CommitMessage
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	// Document -> root mapping.
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			v := n.Content[i+1]
			if k.Kind == yaml.ScalarNode && k.Value == key {
				next = v
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	path := configPath()
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(path, data, 0600)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir != "" {
		// Expand ~ if present
		if c.DataDir == "~" {
			home, err := os.UserHomeDir()
			if err == nil {
				return home
			}
			return c.DataDir
		}

		if strings.HasPrefix(c.DataDir, "~/") || strings.HasPrefix(c.DataDir, `~\`) {
			home, err := os.UserHomeDir()
			if err == nil {
				trimmed := strings.TrimPrefix(c.DataDir, "~/")
				trimmed = strings.TrimPrefix(trimmed, `~\`)
				trimmed = strings.TrimPrefix(trimmed, `\`)
				return filepath.Join(home, trimmed)
			}
		}
		return c.DataDir
	}
	return defaultDataDir()
}
