package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"timesplit/internal/engine"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNew_SeedsFiles(t *testing.T) {
	s := newTestStorage(t)

	for _, name := range DataFiles() {
		if _, err := os.Stat(filepath.Join(s.DataDir(), name)); err != nil {
			t.Errorf("expected %s to be seeded: %v", name, err)
		}
	}
}

func TestLoadState_Defaults(t *testing.T) {
	s := newTestStorage(t)

	st, err := s.LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}

	if len(st.Categories) != 8 {
		t.Errorf("len(Categories) = %d, want 8", len(st.Categories))
	}
	if st.DailyResetHour != engine.DefaultResetHour {
		t.Errorf("DailyResetHour = %d, want %d", st.DailyResetHour, engine.DefaultResetHour)
	}
	var hasSleep bool
	for _, c := range st.Categories {
		if c.ID == engine.SleepCategoryID {
			hasSleep = true
		}
	}
	if !hasSleep {
		t.Error("default categories should include the sleep category")
	}
}

func TestSaveState_RoundTrip(t *testing.T) {
	s := newTestStorage(t)

	st, err := s.LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}

	start := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	st.Sessions = append(st.Sessions, engine.Session{
		ID:         "sess-1",
		CategoryID: "cat-work",
		StartTime:  start,
		EndTime:    &end,
	})
	st.Sessions = append(st.Sessions, engine.Session{
		ID:         "sess-2",
		CategoryID: "cat-work",
		StartTime:  end.Add(time.Hour),
	})
	st.ActiveSessionID = "sess-2"
	st.IsPro = true

	if err := s.SaveState(st, SaveContext{Operation: "toggle", Detail: "Work"}); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	got, err := s.LoadState()
	if err != nil {
		t.Fatalf("LoadState() after save error = %v", err)
	}

	if len(got.Sessions) != 2 {
		t.Fatalf("len(Sessions) = %d, want 2", len(got.Sessions))
	}
	if got.Sessions[0].EndTime == nil || !got.Sessions[0].EndTime.Equal(end) {
		t.Errorf("Sessions[0].EndTime = %v, want %v", got.Sessions[0].EndTime, end)
	}
	if got.Sessions[1].EndTime != nil {
		t.Error("open session should round-trip with nil EndTime")
	}
	if got.ActiveSessionID != "sess-2" {
		t.Errorf("ActiveSessionID = %q, want sess-2", got.ActiveSessionID)
	}
	if !got.IsPro {
		t.Error("IsPro lost in round trip")
	}
}

func TestSaveState_NotifiesHook(t *testing.T) {
	s := newTestStorage(t)

	var got []SaveContext
	s.SetOnSave(func(ctx SaveContext) {
		got = append(got, ctx)
	})

	st, _ := s.LoadState()
	if err := s.SaveState(st, SaveContext{Operation: "toggle", Detail: "Deep Work"}); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("hook fired %d times, want 1", len(got))
	}
	if got[0].Filename != "state.json" {
		t.Errorf("Filename = %q, want state.json", got[0].Filename)
	}
	if got[0].Operation != "toggle" || got[0].Detail != "Deep Work" {
		t.Errorf("ctx = %+v, want toggle/Deep Work", got[0])
	}
}

func TestLoadState_RecoversFromBackup(t *testing.T) {
	s := newTestStorage(t)

	st, _ := s.LoadState()
	st.IsPro = true
	if err := s.SaveState(st, SaveContext{Operation: "settings"}); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}
	// Second save pushes the pro state into the .bak copy.
	if err := s.SaveState(st, SaveContext{Operation: "settings"}); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	statePath := filepath.Join(s.DataDir(), "state.json")
	if err := os.WriteFile(statePath, []byte("{not json"), 0600); err != nil {
		t.Fatalf("corrupt write failed: %v", err)
	}

	got, err := s.LoadState()
	if err == nil {
		t.Fatal("expected a recovery error for corrupt state.json")
	}
	if !strings.Contains(err.Error(), "recovered") {
		t.Errorf("error = %v, want mention of recovery", err)
	}
	if !got.IsPro {
		t.Error("recovered state should come from the backup, not defaults")
	}
}

func TestLoadState_CorruptWithoutBackupResets(t *testing.T) {
	s := newTestStorage(t)

	statePath := filepath.Join(s.DataDir(), "state.json")
	if err := os.WriteFile(statePath, []byte("   "), 0600); err != nil {
		t.Fatalf("corrupt write failed: %v", err)
	}

	got, err := s.LoadState()
	if err == nil {
		t.Fatal("expected an error for empty state.json")
	}
	if len(got.Categories) != 8 {
		t.Errorf("len(Categories) = %d, want defaults (8)", len(got.Categories))
	}

	// The broken file should have been preserved.
	entries, readErr := os.ReadDir(s.DataDir())
	if readErr != nil {
		t.Fatalf("ReadDir: %v", readErr)
	}
	var preserved bool
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "state.json.corrupt.") {
			preserved = true
		}
	}
	if !preserved {
		t.Error("corrupt state.json was not preserved")
	}
}

func TestLoadState_MigratesMissingIcons(t *testing.T) {
	s := newTestStorage(t)

	raw := map[string]any{
		"sessions": []any{},
		"categories": []map[string]any{
			{"id": "cat-a", "name": "Alpha", "icon": "", "color": "#FFF"},
		},
		"daily_reset_hour": 4,
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.DataDir(), "state.json"), data, 0600); err != nil {
		t.Fatal(err)
	}

	st, err := s.LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if st.Categories[0].Icon != engine.DefaultIcon {
		t.Errorf("Icon = %q, want default %q", st.Categories[0].Icon, engine.DefaultIcon)
	}
}

func TestMarkStarted_Idempotent(t *testing.T) {
	s := newTestStorage(t)

	var saves int
	s.SetOnSave(func(ctx SaveContext) { saves++ })

	for i := 0; i < 3; i++ {
		if err := s.MarkStarted(); err != nil {
			t.Fatalf("MarkStarted() error = %v", err)
		}
	}

	m, err := s.LoadMeta()
	if err != nil {
		t.Fatalf("LoadMeta() error = %v", err)
	}
	if !m.HasStartedOnce {
		t.Error("HasStartedOnce = false, want true")
	}
	if saves != 1 {
		t.Errorf("save hook fired %d times, want 1", saves)
	}
}

func TestMarkOnboardingDone(t *testing.T) {
	s := newTestStorage(t)

	if err := s.MarkOnboardingDone(); err != nil {
		t.Fatalf("MarkOnboardingDone() error = %v", err)
	}
	m, err := s.LoadMeta()
	if err != nil {
		t.Fatalf("LoadMeta() error = %v", err)
	}
	if !m.OnboardingDone {
		t.Error("OnboardingDone = false, want true")
	}
}

func TestExportSessionsCSV(t *testing.T) {
	s := newTestStorage(t)

	st, _ := s.LoadState()
	start := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	st.Sessions = []engine.Session{
		{ID: "sess-1", CategoryID: "cat-work", StartTime: start, EndTime: &end},
		{ID: "sess-2", CategoryID: "cat-gone", StartTime: end, EndTime: nil},
	}
	if err := s.SaveState(st, SaveContext{Operation: "session"}); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	csv, err := s.ExportSessionsCSV()
	if err != nil {
		t.Fatalf("ExportSessionsCSV() error = %v", err)
	}

	if !strings.HasPrefix(csv, "ID,Category,StartedAt,EndedAt,Duration\n") {
		t.Errorf("missing header, got %q", csv)
	}
	if !strings.Contains(csv, "sess-1,Work,2024-03-12 09:00:00,2024-03-12 09:30:00,30m0s") {
		t.Errorf("finished session not rendered, got:\n%s", csv)
	}
	if !strings.Contains(csv, "sess-2,Deleted category,") {
		t.Errorf("orphaned session should resolve to placeholder, got:\n%s", csv)
	}
}

func TestExportJSON(t *testing.T) {
	s := newTestStorage(t)

	data, err := s.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	var st engine.State
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(st.Categories) == 0 {
		t.Error("exported state has no categories")
	}
}
