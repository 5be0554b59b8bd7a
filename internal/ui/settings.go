// Package ui provides the terminal user interface for timesplit.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"timesplit/internal/config"
	"timesplit/internal/engine"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// settingsItemKind distinguishes the row types in the settings list.
type settingsItemKind int

const (
	itemResetHour settingsItemKind = iota
	itemNightStart
	itemNightEnd
	itemMinGap
	itemPro
	itemCategory
)

// settingsItem is one selectable row.
type settingsItem struct {
	kind     settingsItemKind
	category engine.Category // set for itemCategory
}

// SettingsView edits tracking settings and manages categories.
type SettingsView struct {
	engine *engine.Engine
	styles *Styles

	state engine.State
	items []settingsItem

	cursor int
	width  int
	height int

	// Editing state. editingKind is only meaningful while editing is true.
	// Category edits run in two stages: name first, then icon.
	editing     bool
	editingKind settingsItemKind
	editingCat  string // category ID being edited, "" when adding
	editStage   int    // 0 = name, 1 = icon (categories only)
	pendingName string
	input       textinput.Model

	keys      SettingsKeyMap
	inputKeys InputKeyMap
}

// NewSettingsView creates the settings view.
func NewSettingsView(e *engine.Engine, styles *Styles, keyCfg *config.KeysConfig) *SettingsView {
	if keyCfg == nil {
		keyCfg = &config.KeysConfig{}
	}
	ti := textinput.New()
	ti.CharLimit = 60
	ti.Width = 30

	return &SettingsView{
		engine:    e,
		styles:    styles,
		input:     ti,
		keys:      NewSettingsKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
	}
}

// SetSize sets the view dimensions.
func (v *SettingsView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = max(10, width-20)
}

// InputActive reports whether the view is capturing text input.
func (v *SettingsView) InputActive() bool { return v.editing }

// applySnapshot refreshes the view's cached state and rebuilds the row list.
func (v *SettingsView) applySnapshot(st engine.State) {
	v.state = st
	v.items = []settingsItem{
		{kind: itemResetHour},
		{kind: itemNightStart},
		{kind: itemNightEnd},
		{kind: itemMinGap},
		{kind: itemPro},
	}
	for _, c := range st.Categories {
		v.items = append(v.items, settingsItem{kind: itemCategory, category: c})
	}
	if v.cursor >= len(v.items) {
		v.cursor = max(0, len(v.items)-1)
	}
}

// Update handles messages for the settings view.
func (v *SettingsView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case snapshotMsg:
		v.applySnapshot(msg.state)
		return nil

	case tea.KeyMsg:
		if v.editing {
			switch {
			case key.Matches(msg, v.inputKeys.Confirm):
				return v.confirmEdit()
			case key.Matches(msg, v.inputKeys.Cancel):
				v.stopEditing()
				return nil
			}
			v.input, cmd = v.input.Update(msg)
			return cmd
		}
		return v.handleKey(msg)
	}

	if v.editing {
		v.input, cmd = v.input.Update(msg)
		return cmd
	}
	return nil
}

// handleKey processes normal-mode keys.
func (v *SettingsView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Down):
		if len(v.items) > 0 {
			v.cursor = min(v.cursor+1, len(v.items)-1)
		}

	case key.Matches(msg, v.keys.Up):
		if len(v.items) > 0 {
			v.cursor = max(v.cursor-1, 0)
		}

	case key.Matches(msg, v.keys.Top):
		v.cursor = 0

	case key.Matches(msg, v.keys.Bottom):
		if len(v.items) > 0 {
			v.cursor = len(v.items) - 1
		}

	case key.Matches(msg, v.keys.Add):
		v.startCategoryEdit("", "")
		return textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		return v.editCurrent()

	case key.Matches(msg, v.keys.Delete):
		item := v.current()
		if item != nil && item.kind == itemCategory {
			c := item.category
			return requestConfirmCmd(
				fmt.Sprintf("Delete category %q? Its sessions stay in the timeline.", c.Name),
				deleteCategoryCmd(v.engine, c.ID, c.Name),
			)
		}

	case key.Matches(msg, v.keys.MoveUp):
		item := v.current()
		if item != nil && item.kind == itemCategory {
			return moveCategoryCmd(v.engine, item.category.ID, true)
		}

	case key.Matches(msg, v.keys.MoveDown):
		item := v.current()
		if item != nil && item.kind == itemCategory {
			return moveCategoryCmd(v.engine, item.category.ID, false)
		}
	}

	return nil
}

// current returns the item under the cursor, or nil.
func (v *SettingsView) current() *settingsItem {
	if v.cursor < 0 || v.cursor >= len(v.items) {
		return nil
	}
	return &v.items[v.cursor]
}

// editCurrent opens an editor for the row under the cursor.
func (v *SettingsView) editCurrent() tea.Cmd {
	item := v.current()
	if item == nil {
		return nil
	}

	switch item.kind {
	case itemPro:
		if !v.state.IsPro {
			return upgradeProCmd(v.engine)
		}
		return nil

	case itemCategory:
		c := item.category
		v.startCategoryEdit(c.ID, c.Name)
		return textinput.Blink
	}

	v.editing = true
	v.editingKind = item.kind
	v.editStage = 0
	switch item.kind {
	case itemResetHour:
		v.input.Placeholder = "0-23"
		v.input.SetValue(strconv.Itoa(v.state.DailyResetHour))
	case itemNightStart:
		v.input.Placeholder = "0-23"
		v.input.SetValue(strconv.Itoa(v.state.SleepSettings.NightStartHour))
	case itemNightEnd:
		v.input.Placeholder = "0-23"
		v.input.SetValue(strconv.Itoa(v.state.SleepSettings.NightEndHour))
	case itemMinGap:
		v.input.Placeholder = "hours, e.g. 3"
		v.input.SetValue(strconv.FormatFloat(v.state.SleepSettings.MinGapHours, 'f', -1, 64))
	}
	v.input.Focus()
	return textinput.Blink
}

// startCategoryEdit begins the two-stage name/icon editor.
func (v *SettingsView) startCategoryEdit(id, name string) {
	v.editing = true
	v.editingKind = itemCategory
	v.editingCat = id
	v.editStage = 0
	v.pendingName = ""
	v.input.Placeholder = "Category name"
	v.input.SetValue(name)
	v.input.Focus()
}

// confirmEdit applies the current input value.
func (v *SettingsView) confirmEdit() tea.Cmd {
	value := strings.TrimSpace(v.input.Value())

	if v.editingKind == itemCategory {
		if v.editStage == 0 {
			if value == "" {
				v.stopEditing()
				return nil
			}
			v.pendingName = value
			v.editStage = 1
			icon := ""
			if v.editingCat != "" {
				if c := v.findCategory(v.editingCat); c != nil {
					icon = c.Icon
				}
			}
			v.input.Placeholder = "Icon (one emoji)"
			v.input.SetValue(icon)
			return nil
		}

		id, name, icon := v.editingCat, v.pendingName, value
		color := ""
		if c := v.findCategory(id); c != nil {
			color = c.Color
		}
		v.stopEditing()
		return saveCategoryCmd(v.engine, id, name, icon, color)
	}

	kind := v.editingKind
	v.stopEditing()

	switch kind {
	case itemResetHour:
		hour, err := strconv.Atoi(value)
		if err != nil {
			return func() tea.Msg {
				return resetHourSavedMsg{err: fmt.Errorf("invalid hour %q", value)}
			}
		}
		return setResetHourCmd(v.engine, hour)

	case itemNightStart, itemNightEnd, itemMinGap:
		ss := v.state.SleepSettings
		switch kind {
		case itemNightStart, itemNightEnd:
			hour, err := strconv.Atoi(value)
			if err != nil {
				return func() tea.Msg {
					return sleepSettingsSavedMsg{err: fmt.Errorf("invalid hour %q", value)}
				}
			}
			if kind == itemNightStart {
				ss.NightStartHour = hour
			} else {
				ss.NightEndHour = hour
			}
		case itemMinGap:
			gap, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return func() tea.Msg {
					return sleepSettingsSavedMsg{err: fmt.Errorf("invalid gap %q", value)}
				}
			}
			ss.MinGapHours = gap
		}
		return updateSleepSettingsCmd(v.engine, ss)
	}

	return nil
}

// stopEditing leaves input mode.
func (v *SettingsView) stopEditing() {
	v.editing = false
	v.editingCat = ""
	v.editStage = 0
	v.pendingName = ""
	v.input.Reset()
	v.input.Blur()
}

// findCategory looks up a category in the cached snapshot.
func (v *SettingsView) findCategory(id string) *engine.Category {
	for i := range v.state.Categories {
		if v.state.Categories[i].ID == id {
			return &v.state.Categories[i]
		}
	}
	return nil
}

// View renders the settings view.
func (v *SettingsView) View() string {
	var b strings.Builder

	title := v.styles.PaneTitleStyle.Render("⚙  SETTINGS")
	b.WriteString(title)
	b.WriteString("\n")

	sepWidth := v.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(lipgloss.NewStyle().Foreground(v.styles.ColorMuted).Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	for i, item := range v.items {
		line := v.renderItem(item)
		if i == v.cursor && !v.editing {
			b.WriteString(v.styles.CategorySelectedStyle.Render(" " + line + " "))
		} else {
			b.WriteString(" " + line)
		}
		b.WriteString("\n")

		// Blank line between the settings block and the category list.
		if item.kind == itemPro {
			b.WriteString("\n")
			b.WriteString(" " + v.styles.StatLabelStyle.Render("Categories"))
			b.WriteString("\n")
		}
	}

	if v.editing {
		b.WriteString("\n")
		prompt := v.styles.InputPromptStyle.Render(v.editPrompt())
		b.WriteString("  " + prompt + v.input.View())
		b.WriteString("\n")
	}

	return v.styles.PaneStyle.Width(v.width).Height(v.height).Render(b.String())
}

// renderItem renders one settings row.
func (v *SettingsView) renderItem(item settingsItem) string {
	label := func(name, value string) string {
		return v.styles.StatLabelStyle.Render(runewidth.FillRight(name, 24)) + v.styles.StatValueStyle.Render(value)
	}

	switch item.kind {
	case itemResetHour:
		return label("Daily reset hour", fmt.Sprintf("%02d:00", v.state.DailyResetHour))
	case itemNightStart:
		return label("Night starts", fmt.Sprintf("%02d:00", v.state.SleepSettings.NightStartHour))
	case itemNightEnd:
		return label("Night ends", fmt.Sprintf("%02d:00", v.state.SleepSettings.NightEndHour))
	case itemMinGap:
		return label("Min sleep gap", fmt.Sprintf("%gh", v.state.SleepSettings.MinGapHours))
	case itemPro:
		if v.state.IsPro {
			return label("Pro", "unlocked")
		}
		return label("Pro", "press e to upgrade")
	case itemCategory:
		c := item.category
		icon := c.Icon
		if icon == "" {
			icon = engine.DefaultIcon
		}
		name := c.Name
		if c.IsCustom {
			name += v.styles.StatLabelStyle.Render(" (custom)")
		}
		return fmt.Sprintf("%s %s", icon, name)
	}
	return ""
}

// editPrompt returns the label for the active input.
func (v *SettingsView) editPrompt() string {
	if v.editingKind == itemCategory {
		if v.editStage == 0 {
			return "Name: "
		}
		return "Icon: "
	}
	switch v.editingKind {
	case itemResetHour:
		return "Reset hour: "
	case itemNightStart:
		return "Night start: "
	case itemNightEnd:
		return "Night end: "
	case itemMinGap:
		return "Min gap: "
	}
	return "> "
}
