// Package ui provides the terminal user interface for timesplit.
// This file contains the root Bubble Tea model: view switching, the
// one-second tick that drives the daily rollover check and live timers,
// the status line, and the confirmation and help overlays.
package ui

import (
	"fmt"
	"strings"
	"time"

	"timesplit/internal/config"
	"timesplit/internal/engine"
	"timesplit/internal/storage"
	"timesplit/internal/sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewID identifies one of the four application views.
type ViewID int

const (
	ViewTrack ViewID = iota
	ViewTimeline
	ViewStats
	ViewSettings
	viewCount
)

// Status message display durations.
const (
	statusTTL      = 5 * time.Second
	errorStatusTTL = 8 * time.Second
)

// How many ticks between git status refreshes.
const syncRefreshTicks = 30

// AppConfig holds UI-level configuration passed from the config package.
type AppConfig struct {
	Keys                  *config.KeysConfig
	ConfirmDeletions      bool
	ShowOnboarding        bool
	NarrowLayoutThreshold int
}

// confirmState is a pending destructive action awaiting confirmation.
type confirmState struct {
	prompt string
	cmd    tea.Cmd
}

// tickMsg drives the rollover check and live elapsed rendering.
type tickMsg time.Time

// tickCmd schedules the next tick.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// App is the root application model.
type App struct {
	engine  *engine.Engine
	storage *storage.Storage
	gitSync *sync.GitSync
	styles  *Styles
	cfg     *AppConfig

	track    *TrackView
	timeline *TimelineView
	stats    *StatsView
	settings *SettingsView

	activeView ViewID
	width      int
	height     int

	keys GlobalKeyMap
	help *HelpOverlay

	showHelp   bool
	confirm    *confirmState
	hasStarted bool
	quitting   bool

	syncStatus *sync.Status
	tickCount  int

	statusMsg     string
	statusIsError bool
	statusExpiry  time.Time
}

// NewApp creates the root model without git sync.
func NewApp(e *engine.Engine, store *storage.Storage, styles *Styles, cfg *AppConfig) *App {
	return NewAppWithSync(e, store, styles, cfg, nil)
}

// NewAppWithSync creates the root model with an optional GitSync for the
// status badge.
func NewAppWithSync(e *engine.Engine, store *storage.Storage, styles *Styles, cfg *AppConfig, gs *sync.GitSync) *App {
	if cfg == nil {
		cfg = &AppConfig{
			Keys:                  &config.KeysConfig{},
			ConfirmDeletions:      true,
			ShowOnboarding:        true,
			NarrowLayoutThreshold: 80,
		}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}

	a := &App{
		engine:   e,
		storage:  store,
		gitSync:  gs,
		styles:   styles,
		cfg:      cfg,
		keys:     NewGlobalKeyMap(cfg.Keys),
		help:     NewHelpOverlay(styles),
		track:    NewTrackView(e, styles, cfg.Keys),
		timeline: NewTimelineView(e, styles, cfg.Keys),
		stats:    NewStatsView(e, styles),
		settings: NewSettingsView(e, styles, cfg.Keys),
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		snapshotCmd(a.engine),
		loadMetaCmd(a.storage),
		checkResetCmd(a.engine),
		refreshSyncStatusCmd(a.gitSync),
		tickCmd(),
	)
}

// SetStatus sets a transient status line message.
func (a *App) SetStatus(msg string, isError bool) {
	a.statusMsg = msg
	a.statusIsError = isError
	ttl := statusTTL
	if isError {
		ttl = errorStatusTTL
	}
	a.statusExpiry = time.Now().Add(ttl)
}

// activeViewModel returns the model for the currently visible view.
func (a *App) activeViewModel() interface {
	Update(tea.Msg) tea.Cmd
	View() string
	InputActive() bool
} {
	switch a.activeView {
	case ViewTimeline:
		return a.timeline
	case ViewStats:
		return a.stats
	case ViewSettings:
		return a.settings
	default:
		return a.track
	}
}

// broadcast forwards a message to every view.
func (a *App) broadcast(msg tea.Msg) tea.Cmd {
	cmds := []tea.Cmd{
		a.track.Update(msg),
		a.timeline.Update(msg),
		a.stats.Update(msg),
		a.settings.Update(msg),
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tickMsg:
		if !a.statusExpiry.IsZero() && time.Now().After(a.statusExpiry) {
			a.statusMsg = ""
			a.statusExpiry = time.Time{}
		}
		a.tickCount++
		cmds := []tea.Cmd{tickCmd(), checkResetCmd(a.engine)}
		if a.gitSync != nil && a.tickCount%syncRefreshTicks == 0 {
			cmds = append(cmds, refreshSyncStatusCmd(a.gitSync))
		}
		return a, tea.Batch(cmds...)

	case snapshotMsg:
		return a, a.broadcast(msg)

	case metaMsg:
		if msg.err == nil {
			a.hasStarted = msg.meta.HasStartedOnce
		}
		a.track.SetShowHint(a.cfg.ShowOnboarding && !a.hasStarted)
		return a, nil

	case confirmRequestMsg:
		if !a.cfg.ConfirmDeletions {
			return a, msg.cmd
		}
		a.confirm = &confirmState{prompt: msg.prompt, cmd: msg.cmd}
		return a, nil

	case timerToggledMsg:
		if msg.started {
			a.SetStatus("Tracking "+msg.categoryName, false)
		} else {
			a.SetStatus("Stopped "+msg.categoryName, false)
		}
		a.hasStarted = true
		a.track.SetShowHint(false)
		return a, snapshotCmd(a.engine)

	case resetCheckedMsg:
		if !msg.applied {
			return a, nil
		}
		a.SetStatus("New tracking day started", false)
		return a, snapshotCmd(a.engine)

	case suggestionAcceptedMsg:
		a.SetStatus("Logged "+formatElapsedShort(msg.duration)+" of sleep", false)
		return a, snapshotCmd(a.engine)

	case suggestionIgnoredMsg:
		return a, snapshotCmd(a.engine)

	case sessionDeletedMsg:
		a.SetStatus("Session deleted", false)
		return a, snapshotCmd(a.engine)

	case categorySavedMsg:
		if msg.err != nil {
			a.SetStatus(msg.err.Error(), true)
			return a, nil
		}
		a.SetStatus("Saved "+msg.name, false)
		return a, snapshotCmd(a.engine)

	case categoryDeletedMsg:
		if msg.err != nil {
			a.SetStatus(msg.err.Error(), true)
			return a, nil
		}
		a.SetStatus("Deleted "+msg.name, false)
		return a, snapshotCmd(a.engine)

	case categoryMovedMsg:
		return a, snapshotCmd(a.engine)

	case sleepSettingsSavedMsg:
		if msg.err != nil {
			a.SetStatus(msg.err.Error(), true)
			return a, nil
		}
		a.SetStatus("Sleep settings updated", false)
		return a, snapshotCmd(a.engine)

	case resetHourSavedMsg:
		if msg.err != nil {
			a.SetStatus(msg.err.Error(), true)
			return a, nil
		}
		a.SetStatus(fmt.Sprintf("Daily reset moved to %02d:00", msg.hour), false)
		return a, snapshotCmd(a.engine)

	case proUpgradedMsg:
		a.SetStatus("Pro unlocked", false)
		return a, snapshotCmd(a.engine)

	case syncStatusMsg:
		if msg.err == nil {
			a.syncStatus = msg.status
		}
		return a, nil

	case tea.MouseMsg:
		if a.confirm != nil || a.showHelp {
			return a, nil
		}
		return a, a.activeViewModel().Update(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

// handleKey routes keyboard input through the overlays, global keys, and the
// active view, in that order.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits, even mid-input.
	if msg.String() == "ctrl+c" {
		return a.quit()
	}

	if a.confirm != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			cmd := a.confirm.cmd
			a.confirm = nil
			return a, cmd
		case "n", "N", "esc", "q":
			a.confirm = nil
			return a, nil
		}
		return a, nil
	}

	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	// Text input captures everything except the escape hatch above.
	if a.activeViewModel().InputActive() {
		return a, a.activeViewModel().Update(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return a, nil

	case key.Matches(msg, a.keys.NextView):
		a.activeView = (a.activeView + 1) % viewCount
		return a, nil

	case key.Matches(msg, a.keys.View1):
		a.activeView = ViewTrack
		return a, nil

	case key.Matches(msg, a.keys.View2):
		a.activeView = ViewTimeline
		return a, nil

	case key.Matches(msg, a.keys.View3):
		a.activeView = ViewStats
		return a, nil

	case key.Matches(msg, a.keys.View4):
		a.activeView = ViewSettings
		return a, nil
	}

	return a, a.activeViewModel().Update(msg)
}

// quit flushes pending work and exits. A running timer is left open on
// purpose; it is persisted and keeps accruing until the next launch.
func (a *App) quit() (tea.Model, tea.Cmd) {
	a.quitting = true
	return a, tea.Quit
}

// updateLayout recomputes view dimensions from the window size.
func (a *App) updateLayout() {
	// Title bar, tab bar, status line, help bar.
	const chromeRows = 4
	viewHeight := a.height - chromeRows - 2
	if viewHeight < 5 {
		viewHeight = 5
	}
	viewWidth := a.width - 2
	if viewWidth < 20 {
		viewWidth = 20
	}

	a.track.SetSize(viewWidth, viewHeight)
	a.timeline.SetSize(viewWidth, viewHeight)
	a.stats.SetSize(viewWidth, viewHeight)
	a.settings.SetSize(viewWidth, viewHeight)
	a.help.SetSize(a.width, a.height)
}

// isNarrow reports whether the terminal is below the narrow layout threshold.
func (a *App) isNarrow() bool {
	threshold := a.cfg.NarrowLayoutThreshold
	if threshold <= 0 {
		threshold = 80
	}
	return a.width > 0 && a.width < threshold
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return a.renderGoodbye()
	}

	if a.showHelp {
		return a.help.View()
	}

	var b strings.Builder
	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")
	b.WriteString(a.renderTabBar())
	b.WriteString("\n")
	b.WriteString(a.activeViewModel().View())
	b.WriteString("\n")
	b.WriteString(a.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(a.renderHelpBar())

	if a.confirm != nil {
		return a.renderConfirm()
	}

	return b.String()
}

// renderTitleBar renders the top bar with app name, tracking day, and the
// sync badge.
func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render("⏱ timesplit")
	day := a.styles.DateStyle.Render(a.engine.Today())

	line := title + " " + day
	if badge := a.renderSyncBadge(); badge != "" {
		line += "  " + badge
	}
	return line
}

// renderSyncBadge renders the git sync status indicator.
func (a *App) renderSyncBadge() string {
	if a.gitSync == nil || a.syncStatus == nil || !a.syncStatus.IsRepo {
		return ""
	}
	if a.syncStatus.HasChanges {
		return a.styles.SyncPendingStyle.Render("● sync")
	}
	return a.styles.SyncSyncedStyle.Render("✓ sync")
}

// renderTabBar renders the view switcher.
func (a *App) renderTabBar() string {
	labels := []string{"1 Track", "2 Timeline", "3 Stats", "4 Settings"}
	if a.isNarrow() {
		labels = []string{"1", "2", "3", "4"}
	}

	parts := make([]string, len(labels))
	for i, label := range labels {
		if ViewID(i) == a.activeView {
			parts[i] = a.styles.TabActiveStyle.Render(label)
		} else {
			parts[i] = a.styles.TabInactiveStyle.Render(label)
		}
	}
	return strings.Join(parts, " ")
}

// renderStatusLine renders the transient status message.
func (a *App) renderStatusLine() string {
	if a.statusMsg == "" {
		return ""
	}
	if a.statusIsError {
		return " " + a.styles.ErrorStyle.Render(a.statusMsg)
	}
	return " " + a.styles.StatusStyle.Render(a.statusMsg)
}

// renderHelpBar renders context-sensitive key hints at the bottom.
func (a *App) renderHelpBar() string {
	if a.isNarrow() {
		return " " + a.styles.RenderHelp("?", "help", "q", "quit")
	}

	switch a.activeView {
	case ViewTimeline:
		return " " + a.styles.RenderHelp("j/k", "move", "x", "delete", "tab", "view", "?", "help", "q", "quit")
	case ViewStats:
		return " " + a.styles.RenderHelp("tab", "view", "?", "help", "q", "quit")
	case ViewSettings:
		return " " + a.styles.RenderHelp("e", "edit", "a", "add", "x", "delete", "K/J", "reorder", "?", "help", "q", "quit")
	default:
		return " " + a.styles.RenderHelp("space", "start/stop", "z", "sleep", "j/k", "move", "tab", "view", "?", "help", "q", "quit")
	}
}

// renderConfirm renders the confirmation overlay.
func (a *App) renderConfirm() string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.styles.ColorDanger).
		Padding(1, 2)

	var b strings.Builder
	b.WriteString(a.styles.ErrorStyle.Render("Confirm"))
	b.WriteString("\n\n")
	b.WriteString(a.confirm.prompt)
	b.WriteString("\n\n")
	b.WriteString(a.styles.RenderHelp("y", "yes", "n", "no"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(b.String()))
}

// renderGoodbye renders the exit summary.
func (a *App) renderGoodbye() string {
	today := a.engine.Today()
	var total time.Duration
	for _, d := range a.engine.DailySplit(today) {
		total += d
	}

	if total == 0 {
		return "Bye! Nothing tracked today.\n"
	}
	return fmt.Sprintf("Bye! Tracked %s today.\n", formatElapsedShort(total))
}

// Run starts the TUI without git sync.
func Run(e *engine.Engine, store *storage.Storage, styles *Styles, cfg *AppConfig) error {
	return RunWithSync(e, store, styles, cfg, nil)
}

// RunWithSync starts the TUI with an optional GitSync for the status badge.
func RunWithSync(e *engine.Engine, store *storage.Storage, styles *Styles, cfg *AppConfig, gs *sync.GitSync) error {
	app := NewAppWithSync(e, store, styles, cfg, gs)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
