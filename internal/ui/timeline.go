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

// deletedCategoryLabel is shown for sessions whose category no longer exists.
const deletedCategoryLabel = "Deleted category"

// TimelineView lists the current tracking day's sessions, newest first.
type TimelineView struct {
	engine *engine.Engine
	styles *Styles

	sessions []engine.Session // newest first
	names    map[string]string
	icons    map[string]string
	today    string
	activeID string

	cursor int
	width  int
	height int

	keys TimelineKeyMap
}

// NewTimelineView creates the timeline view.
func NewTimelineView(e *engine.Engine, styles *Styles, keyCfg *config.KeysConfig) *TimelineView {
	if keyCfg == nil {
		keyCfg = &config.KeysConfig{}
	}
	return &TimelineView{
		engine:   e,
		styles:   styles,
		sessions: []engine.Session{},
		names:    map[string]string{},
		icons:    map[string]string{},
		keys:     NewTimelineKeyMap(keyCfg),
	}
}

// SetSize sets the view dimensions.
func (v *TimelineView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// InputActive reports whether the view is capturing text input.
func (v *TimelineView) InputActive() bool { return false }

// applySnapshot refreshes the view's cached state.
func (v *TimelineView) applySnapshot(st engine.State, today string) {
	v.today = today
	v.activeID = st.ActiveSessionID
	v.names = map[string]string{}
	v.icons = map[string]string{}
	for _, c := range st.Categories {
		v.names[c.ID] = c.Name
		v.icons[c.ID] = c.Icon
	}

	chrono := v.engine.SessionsForDay(today)
	v.sessions = make([]engine.Session, len(chrono))
	for i, s := range chrono {
		v.sessions[len(chrono)-1-i] = s
	}
	if v.cursor >= len(v.sessions) {
		v.cursor = max(0, len(v.sessions)-1)
	}
}

// Update handles messages for the timeline view.
func (v *TimelineView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case snapshotMsg:
		v.applySnapshot(msg.state, msg.today)
		return nil

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			v.cursor = max(v.cursor-1, 0)
		case tea.MouseButtonWheelDown:
			if len(v.sessions) > 0 {
				v.cursor = min(v.cursor+1, len(v.sessions)-1)
			}
		}
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Down):
			if len(v.sessions) > 0 {
				v.cursor = min(v.cursor+1, len(v.sessions)-1)
			}

		case key.Matches(msg, v.keys.Up):
			if len(v.sessions) > 0 {
				v.cursor = max(v.cursor-1, 0)
			}

		case key.Matches(msg, v.keys.Top):
			v.cursor = 0

		case key.Matches(msg, v.keys.Bottom):
			if len(v.sessions) > 0 {
				v.cursor = len(v.sessions) - 1
			}

		case key.Matches(msg, v.keys.Delete):
			if len(v.sessions) > 0 && v.cursor < len(v.sessions) {
				s := v.sessions[v.cursor]
				label := v.label(s.CategoryID)
				prompt := fmt.Sprintf("Delete %s session %s?", label, s.StartTime.Format("15:04"))
				return requestConfirmCmd(prompt, deleteSessionCmd(v.engine, s.ID))
			}
		}
	}

	return nil
}

// label resolves a category ID for display.
func (v *TimelineView) label(id string) string {
	if name, ok := v.names[id]; ok {
		return name
	}
	return deletedCategoryLabel
}

// View renders the timeline view.
func (v *TimelineView) View() string {
	var b strings.Builder

	title := v.styles.PaneTitleStyle.Render("📜 TIMELINE")
	b.WriteString(title)
	b.WriteString("\n")

	sepWidth := v.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(lipgloss.NewStyle().Foreground(v.styles.ColorMuted).Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	if len(v.sessions) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(v.styles.ColorTextMuted).Italic(true).Render("  Nothing tracked yet today."))
		b.WriteString("\n")
		return v.styles.PaneStyle.Width(v.width).Height(v.height).Render(b.String())
	}

	// Window the list around the cursor.
	maxRows := v.height - 5
	if maxRows < 3 {
		maxRows = 5
	}
	startIdx := 0
	if v.cursor >= maxRows {
		startIdx = v.cursor - maxRows + 1
	}

	var total time.Duration
	for i, s := range v.sessions {
		var dur time.Duration
		running := s.EndTime == nil
		if running {
			dur = time.Since(s.StartTime)
		} else {
			dur = s.EndTime.Sub(s.StartTime)
		}
		if dur > 0 {
			total += dur
		}

		if i < startIdx || i >= startIdx+maxRows {
			continue
		}

		var span string
		if running {
			span = s.StartTime.Format("15:04") + "–  ·  "
		} else {
			span = s.StartTime.Format("15:04") + "–" + s.EndTime.Format("15:04")
		}

		name := v.label(s.CategoryID)
		orphan := name == deletedCategoryLabel

		nameWidth := v.width - 28
		if nameWidth < 8 {
			nameWidth = 8
		}
		padded := runewidth.FillRight(runewidth.Truncate(name, nameWidth, ".."), nameWidth)

		var styledName string
		switch {
		case orphan:
			styledName = v.styles.SessionOrphanStyle.Render(padded)
		case running:
			styledName = v.styles.SessionRunningStyle.Render(padded)
		default:
			styledName = padded
		}

		line := fmt.Sprintf("%s  %s %s", v.styles.SessionTimeStyle.Render(span), styledName, formatElapsedShort(dur))

		if i == v.cursor {
			b.WriteString(v.styles.CategorySelectedStyle.Render(" " + line + " "))
		} else {
			b.WriteString(" " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	stats := v.styles.StatLabelStyle.Render("Total: ") + v.styles.StatValueStyle.Render(formatElapsedShort(total))
	b.WriteString("  " + stats)
	b.WriteString("\n")

	return v.styles.PaneStyle.Width(v.width).Height(v.height).Render(b.String())
}
