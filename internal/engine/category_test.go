package engine

import (
	"testing"
	"time"
)

func TestValidateIcon(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty falls back", "", DefaultIcon},
		{"whitespace falls back", "   ", DefaultIcon},
		{"plain emoji kept", "🏠", "🏠"},
		{"ascii letter kept", "W", "W"},
		{"multi grapheme keeps first", "🏠🚲", "🏠"},
		{"word keeps first letter", "Work", "W"},
		{"zwj sequence stays whole", "👩‍💻x", "👩‍💻"},
		{"flag stays whole", "🇩🇪!", "🇩🇪"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateIcon(tt.in); got != tt.want {
				t.Errorf("ValidateIcon(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSaveCategory_Create(t *testing.T) {
	e, _ := newTestEngine(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC))

	cat, err := e.SaveCategory("", "Reading", "📚", "#ABCDEF")
	if err != nil {
		t.Fatalf("SaveCategory() error = %v", err)
	}
	if cat.ID == "" {
		t.Error("new category has no id")
	}
	if !cat.IsCustom {
		t.Error("created category should be custom")
	}

	st := e.Snapshot()
	last := st.Categories[len(st.Categories)-1]
	if last.ID != cat.ID || last.Name != "Reading" || last.Icon != "📚" {
		t.Errorf("persisted category = %+v", last)
	}
}

func TestSaveCategory_EmptyNameRefused(t *testing.T) {
	e, _ := newTestEngine(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC))
	before := e.Snapshot()

	if _, err := e.SaveCategory("", "   ", "📚", ""); err == nil {
		t.Fatal("expected error for empty name")
	}

	after := e.Snapshot()
	if len(after.Categories) != len(before.Categories) {
		t.Error("refused save must not mutate state")
	}
}

func TestSaveCategory_Edit(t *testing.T) {
	e, _ := newTestEngine(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC))

	cat, err := e.SaveCategory("cat-work", "Deep Work", "🧠🧠", "")
	if err != nil {
		t.Fatalf("SaveCategory() error = %v", err)
	}
	if cat.Name != "Deep Work" {
		t.Errorf("Name = %q, want Deep Work", cat.Name)
	}
	if cat.Icon != "🧠" {
		t.Errorf("Icon = %q, want the first grapheme only", cat.Icon)
	}

	if _, err := e.SaveCategory("cat-missing", "X", "x", ""); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestReorderCategory(t *testing.T) {
	e, _ := newTestEngine(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC))
	st := e.Snapshot()
	first := st.Categories[0].ID
	second := st.Categories[1].ID
	last := st.Categories[len(st.Categories)-1].ID

	// Moving the first category up is a no-op.
	e.ReorderCategory(first, true)
	if got := e.Snapshot().Categories[0].ID; got != first {
		t.Errorf("first category moved on up-reorder: %q", got)
	}

	// Moving the last category down is a no-op.
	e.ReorderCategory(last, false)
	got := e.Snapshot()
	if got.Categories[len(got.Categories)-1].ID != last {
		t.Error("last category moved on down-reorder")
	}

	// Adjacent swap.
	e.ReorderCategory(second, true)
	got = e.Snapshot()
	if got.Categories[0].ID != second || got.Categories[1].ID != first {
		t.Errorf("swap failed: got %q, %q", got.Categories[0].ID, got.Categories[1].ID)
	}

	// Unknown id is a no-op.
	e.ReorderCategory("cat-missing", true)
	if e.Snapshot().Categories[0].ID != second {
		t.Error("unknown id reorder mutated state")
	}
}

func TestRefineCategory(t *testing.T) {
	e, _ := newTestEngine(time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC))

	ref := Refinement{WindowStart: "09:00", WindowEnd: "17:00", TargetMinutes: 240}
	if err := e.RefineCategory("cat-work", ref); err != nil {
		t.Fatalf("RefineCategory() error = %v", err)
	}

	work := mustCategory(t, e.Snapshot(), "cat-work")
	if work.Refinements == nil || work.Refinements.WindowStart != "09:00" {
		t.Errorf("refinements not applied: %+v", work.Refinements)
	}

	if err := e.RefineCategory("cat-missing", ref); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestDeleteCategory_OrphansSessions(t *testing.T) {
	start := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	e, clock := newTestEngine(start)

	e.ToggleTimer("cat-walk")
	clock.advance(20 * time.Minute)
	e.ToggleTimer("cat-walk")

	if err := e.DeleteCategory("cat-walk"); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}

	st := e.Snapshot()
	if st.category("cat-walk") != nil {
		t.Error("category still present after delete")
	}
	// The session record survives with its dangling reference.
	if len(st.Sessions) != 1 || st.Sessions[0].CategoryID != "cat-walk" {
		t.Errorf("orphaned session missing: %+v", st.Sessions)
	}

	if err := e.DeleteCategory("cat-walk"); err == nil {
		t.Error("expected error deleting twice")
	}
}

func TestDeleteCategory_LeavesRunningTimerAlone(t *testing.T) {
	start := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	e, clock := newTestEngine(start)

	e.ToggleTimer("cat-walk")
	clock.advance(10 * time.Minute)

	if err := e.DeleteCategory("cat-walk"); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}

	st := e.Snapshot()
	if st.ActiveSessionID == "" {
		t.Fatal("running timer should survive its category being deleted")
	}
	active := st.session(st.ActiveSessionID)
	if active == nil || active.EndTime != nil {
		t.Fatalf("active session should still be open: %+v", active)
	}
	if active.CategoryID != "cat-walk" {
		t.Errorf("active session category = %q, want cat-walk", active.CategoryID)
	}

	// The orphaned timer stops the usual way.
	clock.advance(5 * time.Minute)
	e.ToggleTimer("cat-walk")
	st = e.Snapshot()
	if st.ActiveSessionID != "" {
		t.Errorf("active session = %q after stop, want none", st.ActiveSessionID)
	}
	if got := st.Sessions[0].EndTime; got == nil || !got.Equal(start.Add(15*time.Minute)) {
		t.Errorf("end time = %v, want %v", got, start.Add(15*time.Minute))
	}
}

func TestIsSuggestedNow(t *testing.T) {
	st := DefaultState()
	st.IsPro = true
	clock := &fixedClock{t: time.Date(2024, 3, 12, 9, 30, 0, 0, time.UTC)}
	e := New(st)
	e.SetNowFunc(clock.now)

	inWindow := Category{Refinements: &Refinement{WindowStart: "09:00", WindowEnd: "10:00"}}
	outWindow := Category{Refinements: &Refinement{WindowStart: "12:00", WindowEnd: "13:00"}}
	noWindow := Category{Refinements: &Refinement{TargetMinutes: 30}}
	bare := Category{}

	if !e.IsSuggestedNow(inWindow) {
		t.Error("category inside its window should be suggested")
	}
	if e.IsSuggestedNow(outWindow) {
		t.Error("category outside its window should not be suggested")
	}
	if e.IsSuggestedNow(noWindow) || e.IsSuggestedNow(bare) {
		t.Error("categories without a complete window should never be suggested")
	}

	// Hints are a pro feature.
	plain := New(DefaultState())
	plain.SetNowFunc(clock.now)
	if plain.IsSuggestedNow(inWindow) {
		t.Error("non-pro users should not see window hints")
	}
}
