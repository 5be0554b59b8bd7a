package sync

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"timesplit/internal/storage"
)

// skipIfNoGit skips the test if git is not installed.
func skipIfNoGit(t *testing.T) {
	t.Helper()
	if !IsGitInstalled() {
		t.Skip("git not installed")
	}
}

// createTestDir creates a temporary directory for testing.
func createTestDir(t *testing.T) string {
	t.Helper()

	// Avoid mutating the developer's global git config during tests.
	t.Setenv("GIT_AUTHOR_NAME", "Test User")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test User")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	return t.TempDir()
}

func TestGitSync_Init(t *testing.T) {
	skipIfNoGit(t)

	dir := createTestDir(t)
	cfg := &Config{Enabled: true, AutoCommit: true}
	gs := New(dir, cfg)

	if gs.IsRepo() {
		t.Error("Expected IsRepo() to return false before init")
	}

	if err := gs.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	if !gs.IsRepo() {
		t.Error("Expected IsRepo() to return true after init")
	}

	content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatalf("Failed to read .gitignore: %v", err)
	}
	for _, pattern := range []string{"backups/", "*.bak", "*.corrupt.*"} {
		if !strings.Contains(string(content), pattern) {
			t.Errorf("Expected .gitignore to contain %q", pattern)
		}
	}
}

func TestGitSync_AutoCommitOnSave(t *testing.T) {
	skipIfNoGit(t)

	dir := createTestDir(t)
	cfg := &Config{Enabled: true, AutoCommit: true, CommitMessage: "auto"}
	gs := New(dir, cfg)
	gs.debounceDuration = 10 * time.Millisecond

	if err := gs.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "state.json"), []byte(`{"sessions":[]}`), 0600); err != nil {
		t.Fatalf("write state.json: %v", err)
	}

	gs.OnSaved(storage.SaveContext{Filename: "state.json", Operation: "toggle", Detail: "Work"})
	gs.Flush()

	out, err := gs.runGitTimeout(defaultGitTimeout, "log", "-1", "--format=%s")
	if err != nil {
		t.Fatalf("git log: %v", err)
	}
	if got := trimOutput(out); got != "Toggle timer: Work" {
		t.Errorf("commit subject = %q, want 'Toggle timer: Work'", got)
	}
}

func TestGitSync_OnSavedDisabled(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Enabled: false, AutoCommit: true}
	gs := New(dir, cfg)

	gs.OnSaved(storage.SaveContext{Filename: "state.json", Operation: "toggle"})

	gs.mu.Lock()
	pending := len(gs.pendingFiles)
	gs.mu.Unlock()
	if pending != 0 {
		t.Errorf("disabled sync queued %d files, want 0", pending)
	}
}

func TestCommitMessage(t *testing.T) {
	gs := New(t.TempDir(), &Config{CommitMessage: "auto"})

	tests := []struct {
		name     string
		contexts []storage.SaveContext
		want     string
	}{
		{
			name:     "toggle",
			contexts: []storage.SaveContext{{Operation: "toggle", Detail: "Deep Work"}},
			want:     "Toggle timer: Deep Work",
		},
		{
			name:     "reset",
			contexts: []storage.SaveContext{{Operation: "reset"}},
			want:     "Apply daily reset",
		},
		{
			name:     "category",
			contexts: []storage.SaveContext{{Operation: "category", Detail: "Gym"}},
			want:     "Update category: Gym",
		},
		{
			name:     "suggestion",
			contexts: []storage.SaveContext{{Operation: "suggestion", Detail: "7h30m"}},
			want:     "Record sleep: 7h30m",
		},
		{
			name:     "settings without detail",
			contexts: []storage.SaveContext{{Operation: "settings"}},
			want:     "Update settings",
		},
		{
			name: "burst of same operation",
			contexts: []storage.SaveContext{
				{Operation: "toggle", Detail: "Work"},
				{Operation: "toggle", Detail: "Break"},
			},
			want: "Toggle: 2 changes",
		},
		{
			name: "mixed operations",
			contexts: []storage.SaveContext{
				{Operation: "toggle", Detail: "Work"},
				{Operation: "category", Detail: "Gym"},
				{Operation: "settings"},
			},
			want: "Update: 3 changes",
		},
		{
			name:     "no contexts falls back to filename",
			contexts: nil,
			want:     "Update state.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gs.commitMessage([]string{"state.json"}, tt.contexts)
			if got != tt.want {
				t.Errorf("commitMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommitMessage_CustomTemplate(t *testing.T) {
	gs := New(t.TempDir(), &Config{CommitMessage: "checkpoint"})

	got := gs.commitMessage([]string{"state.json"}, []storage.SaveContext{{Operation: "toggle", Detail: "Work"}})
	if got != "checkpoint" {
		t.Errorf("commitMessage() = %q, want custom template", got)
	}
}

func TestTruncateSubject(t *testing.T) {
	long := strings.Repeat("a", 80)
	got := truncateSubject(long)
	if len(got) > 60 {
		t.Errorf("truncateSubject() kept %d bytes", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("truncated subject should end with ellipsis")
	}

	if got := truncateSubject("short"); got != "short" {
		t.Errorf("truncateSubject(short) = %q", got)
	}
}
