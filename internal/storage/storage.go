// Package storage persists the tracking state as JSON snapshots in the
// data directory, with atomic writes and best-effort corruption recovery.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"timesplit/internal/engine"
	"timesplit/internal/fsutil"
)

const (
	stateFile = "state.json"
	metaFile  = "meta.json"

	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600
)

// Storage handles all file I/O for the tracking state.
type Storage struct {
	dataDir string
	onSave  func(ctx SaveContext) // called after each successful save
	now     func() time.Time      // injectable clock for deterministic tests
}

// New creates a Storage rooted at dataDir, creating the directory and
// seeding default files on first run.
func New(dataDir string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{dataDir: dataDir, now: time.Now}
	if err := s.initFiles(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetNowFunc overrides the clock used for corrupt-file timestamps.
// Passing nil resets it to time.Now.
func (s *Storage) SetNowFunc(now func() time.Time) {
	if now == nil {
		s.now = time.Now
		return
	}
	s.now = now
}

// SetOnSave registers a callback invoked after each successful save.
// This is how git sync learns about changes.
func (s *Storage) SetOnSave(fn func(ctx SaveContext)) {
	s.onSave = fn
}

// DataDir returns the path to the data directory.
func (s *Storage) DataDir() string {
	return s.dataDir
}

// DataFiles lists the files this store owns inside the data directory.
func DataFiles() []string {
	return []string{stateFile, metaFile}
}

func (s *Storage) initFiles() error {
	if !fileExists(s.path(stateFile)) {
		st := engine.DefaultState()
		if err := s.writeJSONAtomic(stateFile, &st); err != nil {
			return err
		}
	}
	if !fileExists(s.path(metaFile)) {
		if err := s.writeJSONAtomic(metaFile, &Meta{}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) path(filename string) string {
	return filepath.Join(s.dataDir, filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

func (s *Storage) writeJSONAtomic(filename string, v any) error {
	path := s.path(filename)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize %s: %w", filename, err)
	}

	// Keep a best-effort backup before overwriting.
	fsutil.BestEffortBackup(path, dataFilePerm)

	if err := fsutil.WriteFileAtomic(path, data, dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

func (s *Storage) notifySave(ctx SaveContext) {
	if s.onSave != nil {
		s.onSave(ctx)
	}
}

func (s *Storage) loadJSONWithRecovery(filename string, v any) error {
	path := s.path(filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.writeJSONAtomic(filename, v)
		}
		return fmt.Errorf("read %s: %w", filename, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s.recoverCorruptJSON(filename, v, fmt.Errorf("%s is empty", filename))
	}

	if err := json.Unmarshal(data, v); err != nil {
		return s.recoverCorruptJSON(filename, v, fmt.Errorf("parse %s: %w", filename, err))
	}
	return nil
}

func (s *Storage) recoverCorruptJSON(filename string, v any, cause error) error {
	path := s.path(filename)
	stamp := s.now().Format("20060102-150405")

	// Try the backup first.
	bakData, bakErr := os.ReadFile(path + ".bak")
	if bakErr == nil && len(bytes.TrimSpace(bakData)) > 0 {
		if err := json.Unmarshal(bakData, v); err == nil {
			_ = os.Rename(path, fmt.Sprintf("%s.corrupt.%s", path, stamp))
			_ = s.writeJSONAtomic(filename, v)
			return fmt.Errorf("%s (recovered from %s.bak)", cause.Error(), filename)
		}
	}

	// No usable backup: preserve the broken file (best effort) and reset.
	corruptPath := fmt.Sprintf("%s.corrupt.%s", path, stamp)
	_ = os.Rename(path, corruptPath)
	_ = s.writeJSONAtomic(filename, v)
	return fmt.Errorf("%s (reset to defaults; original moved to %s)", cause.Error(), corruptPath)
}

// LoadState reads the tracking state from disk. Any failure falls back to
// the default state; the returned error then describes what happened so the
// caller can surface it without aborting.
func (s *Storage) LoadState() (engine.State, error) {
	st := engine.DefaultState()
	err := s.loadJSONWithRecovery(stateFile, &st)
	migrateState(&st)
	return st, err
}

// SaveState writes the tracking state to disk and notifies the save hook.
func (s *Storage) SaveState(st engine.State, ctx SaveContext) error {
	if err := s.writeJSONAtomic(stateFile, &st); err != nil {
		return err
	}
	ctx.Filename = stateFile
	s.notifySave(ctx)
	return nil
}

// migrateState repairs snapshots written by older versions: categories
// without an icon get the default glyph, and nil slices become empty.
func migrateState(st *engine.State) {
	if st.Sessions == nil {
		st.Sessions = []engine.Session{}
	}
	if st.Categories == nil {
		st.Categories = []engine.Category{}
	}
	for i := range st.Categories {
		st.Categories[i].Icon = engine.ValidateIcon(st.Categories[i].Icon)
	}
	if st.DailyResetHour < 0 || st.DailyResetHour > 23 {
		st.DailyResetHour = engine.DefaultResetHour
	}
}

// LoadMeta reads the meta flags from disk.
func (s *Storage) LoadMeta() (Meta, error) {
	var m Meta
	err := s.loadJSONWithRecovery(metaFile, &m)
	return m, err
}

// MarkStarted records that tracking has been used at least once. It is
// idempotent and only writes on the first transition.
func (s *Storage) MarkStarted() error {
	m, err := s.LoadMeta()
	if err != nil {
		return err
	}
	if m.HasStartedOnce {
		return nil
	}
	m.HasStartedOnce = true
	return s.saveMeta(m)
}

// MarkOnboardingDone records that the first-run hint has been shown.
func (s *Storage) MarkOnboardingDone() error {
	m, err := s.LoadMeta()
	if err != nil {
		return err
	}
	if m.OnboardingDone {
		return nil
	}
	m.OnboardingDone = true
	return s.saveMeta(m)
}

func (s *Storage) saveMeta(m Meta) error {
	if err := s.writeJSONAtomic(metaFile, &m); err != nil {
		return err
	}
	s.notifySave(SaveContext{Filename: metaFile, Operation: "meta"})
	return nil
}

// ExportJSON returns the full state snapshot as indented JSON.
func (s *Storage) ExportJSON() ([]byte, error) {
	st, err := s.LoadState()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(&st, "", "  ")
}

// ExportSessionsCSV renders all sessions as CSV, resolving category names.
func (s *Storage) ExportSessionsCSV() (string, error) {
	st, err := s.LoadState()
	if err != nil {
		return "", err
	}

	names := make(map[string]string, len(st.Categories))
	for _, c := range st.Categories {
		names[c.ID] = c.Name
	}

	var b strings.Builder
	b.WriteString("ID,Category,StartedAt,EndedAt,Duration\n")
	for _, sess := range st.Sessions {
		name, ok := names[sess.CategoryID]
		if !ok {
			name = "Deleted category"
		}
		if strings.Contains(name, ",") || strings.Contains(name, "\"") {
			name = "\"" + strings.ReplaceAll(name, "\"", "\"\"") + "\""
		}
		ended := ""
		dur := ""
		if sess.EndTime != nil {
			ended = sess.EndTime.Format("2006-01-02 15:04:05")
			dur = sess.EndTime.Sub(sess.StartTime).String()
		}
		b.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s\n",
			sess.ID,
			name,
			sess.StartTime.Format("2006-01-02 15:04:05"),
			ended,
			dur,
		))
	}
	return b.String(), nil
}
