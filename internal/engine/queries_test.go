package engine

import (
	"testing"
	"time"
)

func TestSessionsForDay_AttributesByEndTime(t *testing.T) {
	// Reset at 04:00. A session ending 02:00 on the 13th belongs to the 12th.
	start := time.Date(2024, 3, 12, 22, 0, 0, 0, time.UTC)
	e, clock := newTestEngine(start)

	e.ToggleTimer("cat-work")
	clock.advance(1 * time.Hour)
	e.ToggleTimer("cat-work") // ends 23:00 on the 12th

	clock.set(time.Date(2024, 3, 13, 1, 0, 0, 0, time.UTC))
	e.ToggleTimer("cat-break")
	clock.advance(1 * time.Hour)
	e.ToggleTimer("cat-break") // ends 02:00 on the 13th, still tracking day 12th

	clock.set(time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC))
	e.ToggleTimer("cat-walk")
	clock.advance(30 * time.Minute)
	e.ToggleTimer("cat-walk") // tracking day 13th

	mar12 := e.SessionsForDay("2024-03-12")
	if len(mar12) != 2 {
		t.Fatalf("expected 2 sessions on 2024-03-12, got %d", len(mar12))
	}
	if mar12[0].CategoryID != "cat-work" || mar12[1].CategoryID != "cat-break" {
		t.Errorf("unexpected order: %s, %s", mar12[0].CategoryID, mar12[1].CategoryID)
	}

	mar13 := e.SessionsForDay("2024-03-13")
	if len(mar13) != 1 {
		t.Fatalf("expected 1 session on 2024-03-13, got %d", len(mar13))
	}
	if mar13[0].CategoryID != "cat-walk" {
		t.Errorf("expected cat-walk, got %s", mar13[0].CategoryID)
	}
}

func TestSessionsForDay_IncludesOpenSessionByStart(t *testing.T) {
	start := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	e, _ := newTestEngine(start)

	e.ToggleTimer("cat-work")

	got := e.SessionsForDay("2024-03-12")
	if len(got) != 1 {
		t.Fatalf("expected open session included, got %d sessions", len(got))
	}
	if got[0].EndTime != nil {
		t.Error("expected open session to have nil end time")
	}
}

func TestDailySplit_SumsPerCategory(t *testing.T) {
	start := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	e, clock := newTestEngine(start)

	e.ToggleTimer("cat-work")
	clock.advance(2 * time.Hour)
	e.ToggleTimer("cat-break")
	clock.advance(30 * time.Minute)
	e.ToggleTimer("cat-work")
	clock.advance(1 * time.Hour)
	e.ToggleTimer("cat-work") // stop

	split := e.DailySplit(e.Today())
	if split["cat-work"] != 3*time.Hour {
		t.Errorf("work = %v, want 3h", split["cat-work"])
	}
	if split["cat-break"] != 30*time.Minute {
		t.Errorf("break = %v, want 30m", split["cat-break"])
	}
}

func TestDailySplit_OpenSessionContributesElapsed(t *testing.T) {
	start := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	e, clock := newTestEngine(start)

	e.ToggleTimer("cat-work")
	clock.advance(45 * time.Minute)

	split := e.DailySplit(e.Today())
	if split["cat-work"] != 45*time.Minute {
		t.Errorf("open session elapsed = %v, want 45m", split["cat-work"])
	}
}

func TestFreshTotal_StaleAccumulatorIsZero(t *testing.T) {
	c := Category{TotalToday: time.Hour, LastResetDate: "2024-03-11"}
	if got := FreshTotal(c, "2024-03-12"); got != 0 {
		t.Errorf("stale total = %v, want 0", got)
	}
	if got := FreshTotal(c, "2024-03-11"); got != time.Hour {
		t.Errorf("fresh total = %v, want 1h", got)
	}
}

func TestToday_UsesResetHour(t *testing.T) {
	e, clock := newTestEngine(time.Date(2024, 3, 13, 2, 0, 0, 0, time.UTC))
	if got := e.Today(); got != "2024-03-12" {
		t.Errorf("Today() at 02:00 = %s, want 2024-03-12", got)
	}
	clock.set(time.Date(2024, 3, 13, 4, 0, 0, 0, time.UTC))
	if got := e.Today(); got != "2024-03-13" {
		t.Errorf("Today() at 04:00 = %s, want 2024-03-13", got)
	}
}
