package engine

import (
	"testing"
	"time"
)

// Scenario: work tracked since 23:00, scheduler fires at 04:05 the next day
// with a 04:00 reset hour. The session must be cut at the boundary, not at
// the check time; work keeps exactly the 23:00–04:00 span; everything else
// starts the new day at zero.
func TestCheckReset_CutsActiveSessionAtBoundary(t *testing.T) {
	start := time.Date(2024, 3, 12, 23, 0, 0, 0, time.UTC)
	e, clock := newTestEngine(start)

	e.ToggleTimer("cat-work")

	clock.set(time.Date(2024, 3, 13, 4, 5, 0, 0, time.UTC))
	if !e.CheckReset() {
		t.Fatal("CheckReset should apply a rollover after the boundary")
	}

	st := e.Snapshot()
	boundary := time.Date(2024, 3, 13, 4, 0, 0, 0, time.UTC)

	if st.ActiveSessionID != "" {
		t.Error("active session should be cleared by the rollover")
	}
	sess := st.Sessions[0]
	if sess.EndTime == nil || !sess.EndTime.Equal(boundary) {
		t.Errorf("session end = %v, want the boundary %v", sess.EndTime, boundary)
	}

	work := mustCategory(t, st, "cat-work")
	if work.TotalToday != 5*time.Hour {
		t.Errorf("work.TotalToday = %v, want 5h (23:00–04:00)", work.TotalToday)
	}
	for _, c := range st.Categories {
		if c.ID == "cat-work" || c.ID == SleepCategoryID {
			continue
		}
		if c.TotalToday != 0 {
			t.Errorf("%s.TotalToday = %v, want 0 after rollover", c.ID, c.TotalToday)
		}
		if c.LastResetDate != "2024-03-13" {
			t.Errorf("%s.LastResetDate = %q, want 2024-03-13", c.ID, c.LastResetDate)
		}
	}

	if !st.LastGlobalReset.Equal(clock.t) {
		t.Errorf("LastGlobalReset = %v, want %v", st.LastGlobalReset, clock.t)
	}
}

func TestCheckReset_Idempotent(t *testing.T) {
	start := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	e, clock := newTestEngine(start)

	e.ToggleTimer("cat-work")
	clock.advance(time.Hour)
	e.ToggleTimer("cat-work")

	clock.set(time.Date(2024, 3, 13, 4, 30, 0, 0, time.UTC))
	if !e.CheckReset() {
		t.Fatal("first CheckReset should apply")
	}
	first := e.Snapshot()

	if e.CheckReset() {
		t.Error("second CheckReset at the same time should be a no-op")
	}
	clock.advance(10 * time.Minute)
	if e.CheckReset() {
		t.Error("CheckReset within the same boundary should be a no-op")
	}

	second := e.Snapshot()
	if !second.LastGlobalReset.Equal(first.LastGlobalReset) {
		t.Errorf("LastGlobalReset changed on a no-op: %v -> %v", first.LastGlobalReset, second.LastGlobalReset)
	}
	for i, c := range second.Categories {
		if c.TotalToday != first.Categories[i].TotalToday {
			t.Errorf("%s.TotalToday changed on a no-op", c.ID)
		}
	}
}

func TestCheckReset_MissedBoundariesCollapse(t *testing.T) {
	// App closed for three days: a single rollover covers all missed
	// boundaries, with no per-day iteration.
	start := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	e, clock := newTestEngine(start)

	e.ToggleTimer("cat-work")
	clock.advance(time.Hour)
	e.ToggleTimer("cat-work")
	e.CheckReset()

	clock.set(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	if !e.CheckReset() {
		t.Fatal("rollover expected after three missed boundaries")
	}
	if e.CheckReset() {
		t.Error("no second rollover expected")
	}

	st := e.Snapshot()
	work := mustCategory(t, st, "cat-work")
	if work.TotalToday != 0 {
		t.Errorf("work.TotalToday = %v, want 0", work.TotalToday)
	}
	if work.LastResetDate != "2024-03-15" {
		t.Errorf("work.LastResetDate = %q, want 2024-03-15", work.LastResetDate)
	}
}

func TestCheckReset_SleepSessionSurvives(t *testing.T) {
	start := time.Date(2024, 3, 12, 23, 0, 0, 0, time.UTC)
	e, clock := newTestEngine(start)

	// Start a sleep session that will cross the boundary.
	e.ToggleTimer(SleepCategoryID)

	clock.set(time.Date(2024, 3, 13, 6, 0, 0, 0, time.UTC))
	if !e.CheckReset() {
		t.Fatal("rollover expected")
	}

	after := e.Snapshot()
	if after.ActiveSessionID == "" {
		t.Error("active sleep session should survive the rollover")
	}
	sess := after.session(after.ActiveSessionID)
	if sess == nil || sess.EndTime != nil {
		t.Error("sleep session should still be open after the rollover")
	}
	sleep := mustCategory(t, after, SleepCategoryID)
	if sleep.LastResetDate == "2024-03-13" {
		t.Error("sleep category must not be stamped by the rollover sweep")
	}
}

func TestCheckReset_SleepAccumulatorNotSwept(t *testing.T) {
	start := time.Date(2024, 3, 12, 22, 0, 0, 0, time.UTC)
	e, clock := newTestEngine(start)

	// Close a sleep stint so the accumulator holds a value.
	e.ToggleTimer(SleepCategoryID)
	clock.advance(time.Hour)
	e.ToggleTimer(SleepCategoryID)

	before := mustCategory(t, e.Snapshot(), SleepCategoryID)
	if before.TotalToday != time.Hour {
		t.Fatalf("sleep.TotalToday = %v, want 1h", before.TotalToday)
	}

	clock.set(time.Date(2024, 3, 13, 5, 0, 0, 0, time.UTC))
	e.CheckReset()

	after := mustCategory(t, e.Snapshot(), SleepCategoryID)
	if after.TotalToday != time.Hour {
		t.Errorf("sleep.TotalToday = %v after rollover, want 1h untouched", after.TotalToday)
	}
}

func TestCheckReset_NoActiveSession(t *testing.T) {
	start := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	e, clock := newTestEngine(start)

	e.ToggleTimer("cat-break")
	clock.advance(30 * time.Minute)
	e.ToggleTimer("cat-break")

	clock.set(time.Date(2024, 3, 13, 4, 1, 0, 0, time.UTC))
	e.CheckReset()

	st := e.Snapshot()
	brk := mustCategory(t, st, "cat-break")
	if brk.TotalToday != 0 {
		t.Errorf("break.TotalToday = %v, want 0", brk.TotalToday)
	}
	// The closed session itself is untouched by the sweep.
	sess := st.Sessions[0]
	if sess.EndTime == nil || !sess.EndTime.Equal(start.Add(30*time.Minute)) {
		t.Errorf("closed session end = %v, want %v", sess.EndTime, start.Add(30*time.Minute))
	}
}

func TestCheckReset_FiresSaveHook(t *testing.T) {
	e, clock := newTestEngine(time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC))
	e.CheckReset() // initial stamp

	saves := 0
	e.SetOnSave(func(State, SaveEvent) { saves++ })

	clock.set(time.Date(2024, 3, 13, 4, 1, 0, 0, time.UTC))
	e.CheckReset()
	e.CheckReset()

	if saves != 1 {
		t.Errorf("save hook fired %d times, want 1 (no-ops must not save)", saves)
	}
}
