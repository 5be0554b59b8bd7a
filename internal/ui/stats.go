// Package ui provides the terminal user interface for timesplit.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"timesplit/internal/engine"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// statRow is one category's share of the tracking day.
type statRow struct {
	name     string
	icon     string
	duration time.Duration
	share    float64
}

// StatsView shows today's split per category with percentages.
type StatsView struct {
	engine *engine.Engine
	styles *Styles

	rows  []statRow
	total time.Duration
	today string

	width  int
	height int
}

// NewStatsView creates the stats view.
func NewStatsView(e *engine.Engine, styles *Styles) *StatsView {
	return &StatsView{engine: e, styles: styles}
}

// SetSize sets the view dimensions.
func (v *StatsView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// InputActive reports whether the view is capturing text input.
func (v *StatsView) InputActive() bool { return false }

// applySnapshot recomputes the split from sessions.
func (v *StatsView) applySnapshot(st engine.State, today string) {
	v.today = today
	split := v.engine.DailySplit(today)

	names := map[string]string{}
	icons := map[string]string{}
	for _, c := range st.Categories {
		names[c.ID] = c.Name
		icons[c.ID] = c.Icon
	}

	v.total = 0
	for _, d := range split {
		v.total += d
	}

	v.rows = v.rows[:0]
	for id, d := range split {
		name, ok := names[id]
		if !ok {
			name = deletedCategoryLabel
		}
		share := 0.0
		if v.total > 0 {
			share = float64(d) / float64(v.total) * 100
		}
		v.rows = append(v.rows, statRow{name: name, icon: icons[id], duration: d, share: share})
	}
	sort.Slice(v.rows, func(i, j int) bool {
		if v.rows[i].duration != v.rows[j].duration {
			return v.rows[i].duration > v.rows[j].duration
		}
		return v.rows[i].name < v.rows[j].name
	})
}

// Update handles messages for the stats view.
func (v *StatsView) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(snapshotMsg); ok {
		v.applySnapshot(msg.state, msg.today)
	}
	return nil
}

// View renders the stats view.
func (v *StatsView) View() string {
	var b strings.Builder

	title := v.styles.PaneTitleStyle.Render("📊 STATS")
	b.WriteString(title)
	b.WriteString("\n")

	sepWidth := v.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(lipgloss.NewStyle().Foreground(v.styles.ColorMuted).Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	if v.total == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(v.styles.ColorTextMuted).Italic(true).Render("  Nothing tracked yet today."))
		b.WriteString("\n")
		return v.styles.PaneStyle.Width(v.width).Height(v.height).Render(b.String())
	}

	barWidth := v.width - 40
	if barWidth < 8 {
		barWidth = 8
	}

	for _, r := range v.rows {
		icon := r.icon
		if icon == "" {
			icon = engine.DefaultIcon
		}

		nameWidth := 16
		name := runewidth.FillRight(runewidth.Truncate(r.name, nameWidth, ".."), nameWidth)

		filled := int(r.share/100*float64(barWidth) + 0.5)
		if filled > barWidth {
			filled = barWidth
		}
		bar := v.styles.BarFilledStyle.Render(strings.Repeat("█", filled)) +
			v.styles.BarEmptyStyle.Render(strings.Repeat("░", barWidth-filled))

		b.WriteString(fmt.Sprintf("  %s %s %s %5.1f%%  %s\n",
			icon, name, bar, r.share, formatElapsedShort(r.duration)))
	}

	b.WriteString("\n")
	b.WriteString("  " + v.styles.StatLabelStyle.Render("Tracked: ") + v.styles.StatValueStyle.Render(formatElapsedShort(v.total)))
	b.WriteString("\n")

	return v.styles.PaneStyle.Width(v.width).Height(v.height).Render(b.String())
}
