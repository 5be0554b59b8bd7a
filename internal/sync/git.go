// Package sync provides git synchronization for the timesplit data
// directory: automatic debounced commits after saves, plus pull and push.
package sync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	gosync "sync"
	"time"

	"timesplit/internal/fsutil"
	"timesplit/internal/storage"
)

// Config holds git sync configuration.
type Config struct {
	Enabled       bool
	AutoCommit    bool
	AutoPush      bool
	PullOnStartup bool
	CommitMessage string // "auto" or custom template
}

// Status represents the current git status of the data directory.
type Status struct {
	IsRepo       bool
	HasRemote    bool
	RemoteName   string
	RemoteURL    string
	Branch       string
	Ahead        int
	Behind       int
	HasChanges   bool
	LastCommitAt *time.Time
}

// GitSync manages git operations for the data directory.
type GitSync struct {
	dataDir string
	config  *Config

	// Debouncing for auto-commit
	pendingFiles    map[string]bool
	pendingContexts []storage.SaveContext
	commitTimer     *time.Timer
	mu              gosync.Mutex

	// Serializes git operations to avoid index/lock conflicts.
	opMu gosync.Mutex

	// Debounce duration (configurable for testing)
	debounceDuration time.Duration
}

// New creates a new GitSync instance.
func New(dataDir string, cfg *Config) *GitSync {
	return &GitSync{
		dataDir:          dataDir,
		config:           cfg,
		pendingFiles:     make(map[string]bool),
		debounceDuration: 2 * time.Second,
	}
}

// IsGitInstalled checks if git is available on the system.
func IsGitInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo checks if the data directory is a git repository.
func (g *GitSync) IsRepo() bool {
	gitDir := filepath.Join(g.dataDir, ".git")
	info, err := os.Stat(gitDir)
	return err == nil && info.IsDir()
}

const (
	defaultGitTimeout  = 10 * time.Second
	pullPushGitTimeout = 60 * time.Second
	commitGitTimeout   = 15 * time.Second
)

// Init initializes a git repository in the data directory.
func (g *GitSync) Init() error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !IsGitInstalled() {
		return fmt.Errorf("git is not installed")
	}

	if _, err := g.runGitTimeout(commitGitTimeout, "init"); err != nil {
		return fmt.Errorf("failed to initialize git repository: %w", err)
	}

	gitignoreContent := `# timesplit - git sync ignore file
backups/
*.bak
*.corrupt.*
`
	gitignorePath := filepath.Join(g.dataDir, ".gitignore")
	if err := fsutil.WriteFileAtomic(gitignorePath, []byte(gitignoreContent), 0600); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	if _, err := g.runGitTimeout(defaultGitTimeout, "add", ".gitignore"); err != nil {
		return fmt.Errorf("failed to stage .gitignore: %w", err)
	}

	if _, err := g.runGitTimeout(commitGitTimeout, "-c", "commit.gpgsign=false", "commit", "-m", "Initialize timesplit data repository"); err != nil {
		if !isGitNothingToCommit(err) {
			return fmt.Errorf("failed to create initial commit: %w", err)
		}
	}

	return nil
}

// Status returns the current git status.
func (g *GitSync) Status() (*Status, error) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	status := &Status{
		IsRepo: g.IsRepo(),
	}

	if !status.IsRepo {
		return status, nil
	}

	branch, err := g.runGitTimeout(defaultGitTimeout, "rev-parse", "--abbrev-ref", "HEAD")
	if err == nil {
		status.Branch = trimOutput(branch)
	}

	remotes, err := g.runGitTimeout(defaultGitTimeout, "remote", "-v")
	if err == nil && trimOutput(remotes) != "" {
		status.HasRemote = true
		// First line: "origin\tgit@...\t(fetch)"
		lines := strings.Split(remotes, "\n")
		if len(lines) > 0 {
			parts := strings.Fields(lines[0])
			if len(parts) >= 2 {
				status.RemoteName = parts[0]
				status.RemoteURL = parts[1]
			}
		}
	}

	statusOutput, err := g.runGitTimeout(defaultGitTimeout, "status", "--porcelain")
	if err == nil {
		status.HasChanges = trimOutput(statusOutput) != ""
	}

	if status.HasRemote && status.Branch != "" {
		remote := status.RemoteName + "/" + status.Branch
		revList, err := g.runGitTimeout(defaultGitTimeout, "rev-list", "--left-right", "--count", status.Branch+"..."+remote)
		if err == nil {
			var ahead, behind int
			fmt.Sscanf(trimOutput(revList), "%d\t%d", &ahead, &behind)
			status.Ahead = ahead
			status.Behind = behind
		}
	}

	lastCommit, err := g.runGitTimeout(defaultGitTimeout, "log", "-1", "--format=%ci")
	if err == nil && trimOutput(lastCommit) != "" {
		t, err := time.Parse("2006-01-02 15:04:05 -0700", trimOutput(lastCommit))
		if err == nil {
			status.LastCommitAt = &t
		}
	}

	return status, nil
}

// Pull fetches and merges changes from the remote.
func (g *GitSync) Pull() error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !g.IsRepo() {
		return fmt.Errorf("not a git repository")
	}

	remotes, err := g.runGitTimeout(defaultGitTimeout, "remote")
	if err != nil || trimOutput(remotes) == "" {
		return fmt.Errorf("no remote configured")
	}

	// Rebase keeps the history linear.
	if _, err := g.runGitTimeout(pullPushGitTimeout, "pull", "--rebase"); err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}

	return nil
}

// Push pushes local commits to the remote.
func (g *GitSync) Push() error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	return g.pushLocked()
}

func (g *GitSync) pushLocked() error {
	if !g.IsRepo() {
		return fmt.Errorf("not a git repository")
	}

	remotes, err := g.runGitTimeout(defaultGitTimeout, "remote")
	if err != nil || trimOutput(remotes) == "" {
		return fmt.Errorf("no remote configured - add one with 'git remote add origin <url>'")
	}

	if _, err := g.runGitTimeout(pullPushGitTimeout, "push"); err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	return nil
}

// AddRemote adds a git remote with the given name and URL.
// If the remote already exists, it will be updated.
func (g *GitSync) AddRemote(name, url string) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !g.IsRepo() {
		return fmt.Errorf("not a git repository - run 'timesplit sync --init' first")
	}

	if name == "" {
		return fmt.Errorf("remote name is required")
	}
	if url == "" {
		return fmt.Errorf("remote URL is required")
	}

	remotes, _ := g.runGitTimeout(defaultGitTimeout, "remote")
	hasRemote := false
	for _, line := range strings.Split(trimOutput(remotes), "\n") {
		if strings.TrimSpace(line) == name {
			hasRemote = true
			break
		}
	}

	if hasRemote {
		if _, err := g.runGitTimeout(defaultGitTimeout, "remote", "set-url", name, url); err != nil {
			return fmt.Errorf("failed to update remote: %w", err)
		}
	} else {
		if _, err := g.runGitTimeout(defaultGitTimeout, "remote", "add", name, url); err != nil {
			return fmt.Errorf("failed to add remote: %w", err)
		}
	}

	return nil
}

// CommitAll stages and commits every change in the data directory with a
// generic message. Used by the manual sync command.
func (g *GitSync) CommitAll() error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !g.IsRepo() {
		return fmt.Errorf("not a git repository - run 'timesplit sync --init' first")
	}

	if _, err := g.runGitTimeout(defaultGitTimeout, "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}

	staged, err := g.runGitTimeout(defaultGitTimeout, "diff", "--cached", "--name-only")
	if err != nil {
		return fmt.Errorf("failed to check staged changes: %w", err)
	}
	if trimOutput(staged) == "" {
		return nil
	}

	if _, err := g.runGitTimeout(commitGitTimeout, "-c", "commit.gpgsign=false", "commit", "-m", "Update timesplit data"); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// OnSaved is the storage save hook. It queues the file and its semantic
// context for a debounced auto-commit.
func (g *GitSync) OnSaved(ctx storage.SaveContext) {
	if !g.config.Enabled || !g.config.AutoCommit {
		return
	}

	if !g.IsRepo() {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.pendingFiles[ctx.Filename] = true
	g.pendingContexts = append(g.pendingContexts, ctx)

	// Reset timer - commit after debounce duration of no changes
	if g.commitTimer != nil {
		g.commitTimer.Stop()
	}
	g.commitTimer = time.AfterFunc(g.debounceDuration, g.flushCommit)
}

// Flush immediately commits any pending files without waiting for debounce.
func (g *GitSync) Flush() {
	g.mu.Lock()
	if g.commitTimer != nil {
		g.commitTimer.Stop()
		g.commitTimer = nil
	}
	g.mu.Unlock()

	g.flushCommit()
}

func (g *GitSync) flushCommit() {
	g.mu.Lock()
	files := make([]string, 0, len(g.pendingFiles))
	for f := range g.pendingFiles {
		files = append(files, f)
	}
	contexts := g.pendingContexts
	g.pendingFiles = make(map[string]bool)
	g.pendingContexts = nil
	g.mu.Unlock()

	if len(files) > 0 {
		// Auto-commit failures are not fatal; the data is on disk either way.
		_ = g.commitWithContexts(files, contexts)
	}
}

func (g *GitSync) commitWithContexts(files []string, contexts []storage.SaveContext) error {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	if !g.IsRepo() {
		return fmt.Errorf("not a git repository - run 'timesplit sync --init' first")
	}

	if len(files) == 0 {
		return nil
	}

	args := append([]string{"add"}, files...)
	if _, err := g.runGitTimeout(defaultGitTimeout, args...); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}

	staged, err := g.runGitTimeout(defaultGitTimeout, "diff", "--cached", "--name-only")
	if err != nil {
		return fmt.Errorf("failed to check staged changes: %w", err)
	}
	if trimOutput(staged) == "" {
		return nil
	}

	message := g.commitMessage(files, contexts)

	if _, err := g.runGitTimeout(commitGitTimeout, "-c", "commit.gpgsign=false", "commit", "-m", message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	if g.config.AutoPush {
		if err := g.pushLocked(); err != nil {
			return fmt.Errorf("committed locally, but push failed: %w", err)
		}
	}

	return nil
}

// commitMessage builds a commit message from save contexts.
// Examples: "Toggle timer: Work", "Apply daily reset", "Update category: Gym"
func (g *GitSync) commitMessage(files []string, contexts []storage.SaveContext) string {
	if g.config.CommitMessage != "" && g.config.CommitMessage != "auto" {
		return g.config.CommitMessage
	}

	if len(contexts) == 0 {
		if len(files) == 1 {
			return fmt.Sprintf("Update %s", files[0])
		}
		return fmt.Sprintf("Update %d files", len(files))
	}

	if len(contexts) == 1 {
		return formatSemanticMessage(contexts[0])
	}

	// Collapse a burst of identical operations.
	firstOp := contexts[0].Operation
	allSame := true
	for _, ctx := range contexts[1:] {
		if ctx.Operation != firstOp {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Sprintf("%s: %d changes", capitalizeFirst(firstOp), len(contexts))
	}

	return fmt.Sprintf("Update: %d changes", len(contexts))
}

func formatSemanticMessage(ctx storage.SaveContext) string {
	switch ctx.Operation {
	case "toggle":
		return fmt.Sprintf("Toggle timer: %s", truncateSubject(ctx.Detail))
	case "reset":
		return "Apply daily reset"
	case "category":
		return fmt.Sprintf("Update category: %s", truncateSubject(ctx.Detail))
	case "session":
		return fmt.Sprintf("Update sessions: %s", truncateSubject(ctx.Detail))
	case "settings":
		if ctx.Detail != "" {
			return fmt.Sprintf("Update settings: %s", truncateSubject(ctx.Detail))
		}
		return "Update settings"
	case "suggestion":
		return fmt.Sprintf("Record sleep: %s", truncateSubject(ctx.Detail))
	case "meta":
		return "Update app flags"
	default:
		if ctx.Detail != "" {
			return fmt.Sprintf("%s: %s", capitalizeFirst(ctx.Operation), truncateSubject(ctx.Detail))
		}
		return fmt.Sprintf("Update %s", ctx.Filename)
	}
}

func truncateSubject(s string) string {
	const maxLen = 50
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (g *GitSync) runGitTimeout(timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dataDir
	cmd.Env = envWithOverrides(os.Environ(), map[string]string{
		"GIT_TERMINAL_PROMPT": "0",
		"GIT_ASKPASS":         "",
		"SSH_ASKPASS":         "",
	})
	cmd.Stdin = bytes.NewReader(nil)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s timed out after %s", strings.Join(args, " "), timeout)
		}

		errMsg := stderr.String()
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", fmt.Errorf("%s", trimOutput(errMsg))
	}
	return stdout.String(), nil
}

func envWithOverrides(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(overrides))
	for _, kv := range base {
		k, _, ok := strings.Cut(kv, "=")
		if !ok {
			out = append(out, kv)
			continue
		}
		if v, ok := overrides[k]; ok {
			out = append(out, k+"="+v)
			seen[k] = true
			continue
		}
		out = append(out, kv)
	}
	for k, v := range overrides {
		if !seen[k] {
			out = append(out, k+"="+v)
		}
	}
	return out
}

func isGitNothingToCommit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "nothing to commit") ||
		strings.Contains(msg, "nothing added to commit") ||
		strings.Contains(msg, "no changes added to commit")
}

func trimOutput(s string) string {
	return strings.TrimSpace(s)
}
