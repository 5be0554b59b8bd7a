package ui

import (
	"strings"
	"testing"
	"time"

	"timesplit/internal/engine"
)

// statsEngine builds an engine with 3h of work and 1h of break today.
func statsEngine(t *testing.T) *engine.Engine {
	t.Helper()
	st := engine.DefaultState()
	end1 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local)
	end2 := time.Date(2026, 8, 30, 9, 30, 0, 0, time.Local)
	st.Sessions = []engine.Session{
		{ID: "sess-1", CategoryID: "cat-work", StartTime: end1.Add(-3 * time.Hour), EndTime: &end1},
		{ID: "sess-2", CategoryID: "cat-break", StartTime: end2.Add(-time.Hour), EndTime: &end2},
	}
	e := engine.New(st)
	e.SetNowFunc(func() time.Time { return testNow })
	return e
}

func newTestStatsView(t *testing.T, e *engine.Engine) *StatsView {
	t.Helper()
	v := NewStatsView(e, createTestStyles())
	v.SetSize(80, 20)
	v.Update(snapshotOf(e))
	return v
}

func TestStatsView_RowsSortedByDuration(t *testing.T) {
	setupTest(t)
	e := statsEngine(t)
	v := newTestStatsView(t, e)

	if len(v.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(v.rows))
	}
	if v.rows[0].name != "Work" {
		t.Errorf("expected Work first, got %s", v.rows[0].name)
	}
	if v.rows[1].name != "Break" {
		t.Errorf("expected Break second, got %s", v.rows[1].name)
	}
}

func TestStatsView_Percentages(t *testing.T) {
	setupTest(t)
	e := statsEngine(t)
	v := newTestStatsView(t, e)

	if v.total != 4*time.Hour {
		t.Errorf("expected 4h total, got %v", v.total)
	}
	if v.rows[0].share != 75.0 {
		t.Errorf("expected 75%% for Work, got %v", v.rows[0].share)
	}

	view := v.View()
	if !strings.Contains(view, "75.0%") {
		t.Error("expected 75.0% in view")
	}
	if !strings.Contains(view, "25.0%") {
		t.Error("expected 25.0% in view")
	}
	if !strings.Contains(view, "4h 0m") {
		t.Error("expected total line")
	}
}

func TestStatsView_IncludesRunningSession(t *testing.T) {
	setupTest(t)
	st := engine.DefaultState()
	e := engine.New(st)
	start := testNow.Add(-30 * time.Minute)
	e.SetNowFunc(func() time.Time { return start })
	e.ToggleTimer("cat-work")
	e.SetNowFunc(func() time.Time { return testNow })

	v := newTestStatsView(t, e)
	if v.total != 30*time.Minute {
		t.Errorf("expected 30m from the open session, got %v", v.total)
	}
}

func TestStatsView_EmptyState(t *testing.T) {
	setupTest(t)
	e := newTestEngine(t)
	v := newTestStatsView(t, e)

	if !strings.Contains(v.View(), "Nothing tracked yet today") {
		t.Error("expected empty state message")
	}
}

func TestStatsView_OrphanedCategoryRow(t *testing.T) {
	setupTest(t)
	e := statsEngine(t)
	if err := e.DeleteCategory("cat-break"); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	v := newTestStatsView(t, e)

	if !strings.Contains(v.View(), deletedCategoryLabel) {
		t.Error("expected deleted category placeholder row")
	}
}
