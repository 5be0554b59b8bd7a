package ui

import (
	"strings"
	"testing"
	"time"

	"timesplit/internal/engine"
)

// timelineEngine builds an engine with two finished sessions this morning.
func timelineEngine(t *testing.T) *engine.Engine {
	t.Helper()
	st := engine.DefaultState()
	end1 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local)
	end2 := time.Date(2026, 8, 30, 9, 45, 0, 0, time.Local)
	st.Sessions = []engine.Session{
		{ID: "sess-1", CategoryID: "cat-work", StartTime: end1.Add(-time.Hour), EndTime: &end1},
		{ID: "sess-2", CategoryID: "cat-break", StartTime: end2.Add(-15 * time.Minute), EndTime: &end2},
	}
	e := engine.New(st)
	e.SetNowFunc(func() time.Time { return testNow })
	return e
}

func newTestTimelineView(t *testing.T, e *engine.Engine) *TimelineView {
	t.Helper()
	v := NewTimelineView(e, createTestStyles(), nil)
	v.SetSize(80, 20)
	v.Update(snapshotOf(e))
	return v
}

func TestTimelineView_NewestFirst(t *testing.T) {
	setupTest(t)
	e := timelineEngine(t)
	v := newTestTimelineView(t, e)

	if len(v.sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(v.sessions))
	}
	if v.sessions[0].ID != "sess-2" {
		t.Errorf("expected newest session first, got %s", v.sessions[0].ID)
	}

	view := v.View()
	breakIdx := strings.Index(view, "Break")
	workIdx := strings.Index(view, "Work")
	if breakIdx == -1 || workIdx == -1 {
		t.Fatal("expected both session labels in view")
	}
	if breakIdx > workIdx {
		t.Error("expected the newer Break session above Work")
	}
}

func TestTimelineView_ShowsSpansAndTotal(t *testing.T) {
	setupTest(t)
	e := timelineEngine(t)
	v := newTestTimelineView(t, e)

	view := v.View()
	if !strings.Contains(view, "08:00–09:00") {
		t.Error("expected the work session span")
	}
	if !strings.Contains(view, "09:30–09:45") {
		t.Error("expected the break session span")
	}
	// 1h work + 15m break
	if !strings.Contains(view, "1h 15m") {
		t.Error("expected total of 1h 15m")
	}
}

func TestTimelineView_RunningSessionOpenEnded(t *testing.T) {
	setupTest(t)
	e := timelineEngine(t)
	e.ToggleTimer("cat-work")
	v := newTestTimelineView(t, e)

	view := v.View()
	if !strings.Contains(view, "10:00–  ·") {
		t.Error("expected open-ended span for the running session")
	}
}

func TestTimelineView_OrphanedSessionLabel(t *testing.T) {
	setupTest(t)
	e := timelineEngine(t)
	if err := e.DeleteCategory("cat-break"); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	v := newTestTimelineView(t, e)

	if !strings.Contains(v.View(), deletedCategoryLabel) {
		t.Error("expected orphaned session to show the placeholder label")
	}
}

func TestTimelineView_DeleteAsksForConfirmation(t *testing.T) {
	setupTest(t)
	e := timelineEngine(t)
	v := newTestTimelineView(t, e)

	msg := runCmd(t, v.Update(keyRunes("x")))
	req, ok := msg.(confirmRequestMsg)
	if !ok {
		t.Fatalf("expected confirmRequestMsg, got %T", msg)
	}
	if !strings.Contains(req.prompt, "Break") {
		t.Errorf("expected prompt to name the category, got %q", req.prompt)
	}

	// Confirming runs the deletion.
	inner := runCmd(t, req.cmd)
	deleted, ok := inner.(sessionDeletedMsg)
	if !ok {
		t.Fatalf("expected sessionDeletedMsg, got %T", inner)
	}
	if deleted.id != "sess-2" {
		t.Errorf("expected sess-2 deleted, got %s", deleted.id)
	}
	if len(e.Snapshot().Sessions) != 1 {
		t.Error("expected one session to remain")
	}
}

func TestTimelineView_EmptyState(t *testing.T) {
	setupTest(t)
	e := newTestEngine(t)
	v := newTestTimelineView(t, e)

	if !strings.Contains(v.View(), "Nothing tracked yet today") {
		t.Error("expected empty state message")
	}
}

func TestTimelineView_ExcludesOtherDays(t *testing.T) {
	setupTest(t)
	st := engine.DefaultState()
	// Finished yesterday afternoon, well before the reset boundary.
	end := time.Date(2026, 8, 29, 15, 0, 0, 0, time.Local)
	st.Sessions = []engine.Session{
		{ID: "sess-old", CategoryID: "cat-work", StartTime: end.Add(-time.Hour), EndTime: &end},
	}
	e := engine.New(st)
	e.SetNowFunc(func() time.Time { return testNow })

	v := newTestTimelineView(t, e)
	if len(v.sessions) != 0 {
		t.Errorf("expected yesterday's session to be excluded, got %d", len(v.sessions))
	}
}
