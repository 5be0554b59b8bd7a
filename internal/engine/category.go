package engine

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

const maxCategoryNameLen = 60

// ValidateIcon collapses a user-supplied icon to exactly one Unicode
// grapheme. Empty or invalid input falls back to the default glyph. A
// multi-grapheme string keeps only its first cluster, so a composed emoji
// (skin tone, ZWJ sequence) survives intact.
func ValidateIcon(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultIcon
	}
	first, _, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	if first == "" {
		return DefaultIcon
	}
	return first
}

// SaveCategory creates or edits a category. An empty id creates a new custom
// category; otherwise the matching category is updated in place. The icon is
// normalized to a single grapheme and an empty name refuses the save without
// mutating state.
func (e *Engine) SaveCategory(id, name, icon, color string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}
	if len(name) > maxCategoryNameLen {
		return nil, fmt.Errorf("category name too long (max %d)", maxCategoryNameLen)
	}
	icon = ValidateIcon(icon)

	e.mu.Lock()

	var out Category
	if id == "" {
		if color == "" {
			color = "#F1F3F5"
		}
		out = Category{
			ID:       fmt.Sprintf("cat-%d", e.now().UnixMilli()),
			Name:     name,
			Icon:     icon,
			Color:    color,
			IsCustom: true,
		}
		e.state.Categories = append(e.state.Categories, out)
	} else {
		cat := e.state.category(id)
		if cat == nil {
			e.mu.Unlock()
			return nil, fmt.Errorf("category not found: %s", id)
		}
		cat.Name = name
		cat.Icon = icon
		if color != "" {
			cat.Color = color
		}
		out = *cat
	}

	save, snap := e.endSnapshot()
	e.notify(save, snap, SaveEvent{Op: "category", Detail: out.Name})
	return &out, nil
}

// ReorderCategory swaps a category with its neighbor. Moving the first
// category up or the last one down is a no-op, as is an unknown id.
func (e *Engine) ReorderCategory(id string, up bool) {
	e.mu.Lock()

	idx := -1
	for i := range e.state.Categories {
		if e.state.Categories[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		e.mu.Unlock()
		return
	}

	target := idx + 1
	if up {
		target = idx - 1
	}
	if target < 0 || target >= len(e.state.Categories) {
		e.mu.Unlock()
		return
	}

	cats := e.state.Categories
	cats[idx], cats[target] = cats[target], cats[idx]

	save, snap := e.endSnapshot()
	e.notify(save, snap, SaveEvent{Op: "category", Detail: "reorder"})
}

// RefineCategory attaches advisory refinement metadata to a category.
func (e *Engine) RefineCategory(id string, r Refinement) error {
	e.mu.Lock()
	cat := e.state.category(id)
	if cat == nil {
		e.mu.Unlock()
		return fmt.Errorf("category not found: %s", id)
	}
	ref := r
	cat.Refinements = &ref
	name := cat.Name

	save, snap := e.endSnapshot()
	e.notify(save, snap, SaveEvent{Op: "category", Detail: name})
	return nil
}

// DeleteCategory removes a category. Sessions that reference it are left in
// place and become orphaned; readers resolve them to a placeholder label. A
// timer running on the deleted category keeps running and can be stopped the
// usual way.
func (e *Engine) DeleteCategory(id string) error {
	e.mu.Lock()

	found := false
	kept := e.state.Categories[:0]
	for _, c := range e.state.Categories {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	e.state.Categories = kept
	if !found {
		e.mu.Unlock()
		return fmt.Errorf("category not found: %s", id)
	}

	save, snap := e.endSnapshot()
	e.notify(save, snap, SaveEvent{Op: "category", Detail: id})
	return nil
}
