// Package ui provides the terminal user interface for timesplit.
package ui

import (
	"fmt"
	"strings"
	"time"

	"timesplit/internal/config"
	"timesplit/internal/engine"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TrackView is the main one-tap tracking screen: a category list where
// toggling a row starts or stops its timer.
type TrackView struct {
	engine *engine.Engine
	styles *Styles

	categories      []engine.Category
	today           string
	activeSessionID string
	activeCategory  string
	activeStart     time.Time
	suggestion      *engine.SleepSuggestion
	suggestedNow    map[string]bool

	cursor   int
	width    int
	height   int
	showHint bool

	keys TrackKeyMap
}

// NewTrackView creates the track view.
func NewTrackView(e *engine.Engine, styles *Styles, keyCfg *config.KeysConfig) *TrackView {
	if keyCfg == nil {
		keyCfg = &config.KeysConfig{}
	}
	return &TrackView{
		engine:       e,
		styles:       styles,
		categories:   []engine.Category{},
		suggestedNow: map[string]bool{},
		keys:         NewTrackKeyMap(keyCfg),
	}
}

// SetSize sets the view dimensions.
func (v *TrackView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// SetShowHint controls the first-run hint under the category list.
func (v *TrackView) SetShowHint(show bool) {
	v.showHint = show
}

// InputActive reports whether the view is capturing text input.
func (v *TrackView) InputActive() bool { return false }

// applySnapshot refreshes the view's cached state.
func (v *TrackView) applySnapshot(st engine.State, today string) {
	v.categories = st.Categories
	v.today = today
	v.activeSessionID = st.ActiveSessionID
	v.activeCategory = ""
	for _, s := range st.Sessions {
		if s.ID == st.ActiveSessionID {
			v.activeCategory = s.CategoryID
			v.activeStart = s.StartTime
			break
		}
	}
	v.suggestion = v.engine.Suggestion()
	v.suggestedNow = map[string]bool{}
	for _, c := range st.Categories {
		if v.engine.IsSuggestedNow(c) {
			v.suggestedNow[c.ID] = true
		}
	}
	if v.cursor >= len(v.categories) {
		v.cursor = max(0, len(v.categories)-1)
	}
}

// Update handles messages for the track view.
func (v *TrackView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case snapshotMsg:
		v.applySnapshot(msg.state, msg.today)
		return nil

	case tea.MouseMsg:
		return v.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Down):
			if len(v.categories) > 0 {
				v.cursor = min(v.cursor+1, len(v.categories)-1)
			}

		case key.Matches(msg, v.keys.Up):
			if len(v.categories) > 0 {
				v.cursor = max(v.cursor-1, 0)
			}

		case key.Matches(msg, v.keys.Top):
			v.cursor = 0

		case key.Matches(msg, v.keys.Bottom):
			if len(v.categories) > 0 {
				v.cursor = len(v.categories) - 1
			}

		case key.Matches(msg, v.keys.Accept):
			if v.suggestion != nil {
				return acceptSuggestionCmd(v.engine, *v.suggestion)
			}

		case key.Matches(msg, v.keys.Ignore):
			if v.suggestion != nil {
				return ignoreSuggestionCmd(v.engine, v.suggestion.ID)
			}

		case key.Matches(msg, v.keys.Sleep):
			for _, c := range v.categories {
				if c.ID == engine.SleepCategoryID {
					return toggleTimerCmd(v.engine, c.ID, c.Name)
				}
			}

		case key.Matches(msg, v.keys.Toggle):
			if len(v.categories) > 0 && v.cursor < len(v.categories) {
				c := v.categories[v.cursor]
				return toggleTimerCmd(v.engine, c.ID, c.Name)
			}
		}
	}

	return nil
}

// handleMouse processes mouse events. A click on a category row is the
// one-tap toggle; the wheel moves the cursor.
func (v *TrackView) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if len(v.categories) == 0 {
		return nil
	}

	// Content starts after title (1) + separator (1) = row 2
	const headerRows = 2

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		v.cursor = max(v.cursor-1, 0)
		return nil

	case tea.MouseButtonWheelDown:
		v.cursor = min(v.cursor+1, len(v.categories)-1)
		return nil

	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		row := msg.Y - headerRows
		if row < 0 || row >= len(v.categories) {
			return nil
		}
		v.cursor = row
		c := v.categories[row]
		return toggleTimerCmd(v.engine, c.ID, c.Name)
	}

	return nil
}

// View renders the track view.
func (v *TrackView) View() string {
	var b strings.Builder

	title := v.styles.PaneTitleStyle.Render("⏱  TRACK")
	b.WriteString(title)
	b.WriteString("\n")

	sepWidth := v.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(lipgloss.NewStyle().Foreground(v.styles.ColorMuted).Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	if len(v.categories) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(v.styles.ColorTextMuted).Italic(true).Render("  No categories. Add one in Settings (4)."))
		b.WriteString("\n")
	}

	for i, c := range v.categories {
		active := c.ID == v.activeCategory && v.activeSessionID != ""

		total := engine.FreshTotal(c, v.today)
		if active {
			total += time.Since(v.activeStart)
		}

		indicator := "  "
		if active {
			indicator = v.styles.TimerRunningStyle.Render("▶ ")
		}

		badge := ""
		if v.suggestedNow[c.ID] {
			badge = " " + v.styles.SuggestedBadgeStyle.Render("◆")
		}

		icon := c.Icon
		if icon == "" {
			icon = engine.DefaultIcon
		}

		nameWidth := v.width - 22
		if nameWidth < 8 {
			nameWidth = 8
		}
		name := runewidth.FillRight(runewidth.Truncate(c.Name, nameWidth, ".."), nameWidth)

		totalStr := formatTotal(total)
		line := fmt.Sprintf("%s%s %s %s%s", indicator, icon, name, totalStr, badge)

		if i == v.cursor {
			b.WriteString(v.styles.CategorySelectedStyle.Render(" " + line + " "))
		} else if active {
			b.WriteString(" " + v.styles.CategoryActiveStyle.Render(line))
		} else {
			b.WriteString(" " + v.styles.CategoryStyle.Render(line))
		}
		b.WriteString("\n")
	}

	// Running timer summary
	b.WriteString("\n")
	if v.activeSessionID != "" {
		name := v.categoryName(v.activeCategory)
		elapsed := formatElapsed(time.Since(v.activeStart))
		b.WriteString("  " + v.styles.TimerRunningStyle.Render("▶ "+name+"  "+elapsed))
	} else {
		b.WriteString("  " + v.styles.TimerStoppedStyle.Render("■ Not tracking"))
	}
	b.WriteString("\n")

	if v.suggestion != nil {
		b.WriteString("\n")
		b.WriteString(v.renderSuggestion())
		b.WriteString("\n")
	}

	if v.showHint {
		b.WriteString("\n")
		hint := lipgloss.NewStyle().Foreground(v.styles.ColorTextMuted).Italic(true).
			Render("  Tap a category (space/enter or click) to start tracking.")
		b.WriteString(hint)
		b.WriteString("\n")
	}

	return v.styles.PaneStyle.Width(v.width).Height(v.height).Render(b.String())
}

// renderSuggestion renders the sleep suggestion card.
func (v *TrackView) renderSuggestion() string {
	s := v.suggestion
	var b strings.Builder
	b.WriteString(v.styles.SuggestionTitleStyle.Render("🌙 Were you sleeping?"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s – %s  (%s)",
		s.StartTime.Format("15:04"),
		s.EndTime.Format("15:04"),
		formatElapsedShort(s.Duration)))
	b.WriteString("\n")
	b.WriteString(v.styles.RenderHelp("y", "log as sleep", "n", "dismiss"))
	return v.styles.SuggestionBoxStyle.Render(b.String())
}

// categoryName resolves a category ID to its display name.
func (v *TrackView) categoryName(id string) string {
	for _, c := range v.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return deletedCategoryLabel
}

// formatTotal formats a daily total as a compact right-aligned column value.
func formatTotal(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d - h*time.Hour) / time.Minute
	if h > 0 {
		return fmt.Sprintf("%2dh %02dm", h, m)
	}
	return fmt.Sprintf("   %3dm", m)
}

// formatElapsed formats a live duration as HH:MM:SS.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatElapsedShort formats a duration as Xh Xm.
func formatElapsedShort(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d - h*time.Hour) / time.Minute
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
