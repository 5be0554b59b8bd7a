// Package main is the entry point for the timesplit application.
// This file contains the sync subcommand handler.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"timesplit/internal/config"
	"timesplit/internal/storage"
	"timesplit/internal/sync"
)

// syncHelpText is the help message for the sync subcommand.
const syncHelpText = `timesplit sync - Keep your tracking data in a git repository

USAGE:
    timesplit sync [OPTIONS]

OPTIONS:
    --setup        Interactive setup wizard
    --init         Initialize a git repository in the data directory
    --status       Show data files and repository state
    --pull         Pull latest changes from the remote
    --push         Push local commits to the remote
    -h, --help     Show this help message

DESCRIPTION:
    The data directory holds two files, state.json and meta.json. With sync
    enabled they are committed to git with messages that describe what
    changed, for example:

        Toggle timer: Work
        Apply daily reset
        Update category: Reading

    Auto-commit batches rapid changes into one commit. Running
    'timesplit sync' with no options commits anything pending and pushes
    if a remote is configured.

CONFIGURATION (~/.config/timesplit/config.yaml):
    sync:
      enabled: true
      auto_commit: true        # commit shortly after each change
      auto_push: false         # push after every commit
      pull_on_startup: false   # pull before the TUI opens
      commit_message: "auto"   # "auto" for semantic messages

EXAMPLES:
    timesplit sync --setup
    timesplit sync --status
    timesplit sync
`

// runSync handles the "timesplit sync" subcommand.
func runSync(args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	setupFlag := fs.Bool("setup", false, "interactive setup wizard")
	initFlag := fs.Bool("init", false, "initialize git repository")
	statusFlag := fs.Bool("status", false, "show sync status")
	pullFlag := fs.Bool("pull", false, "pull latest changes")
	pushFlag := fs.Bool("push", false, "push local changes")
	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, syncHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(syncHelpText)
		os.Exit(0)
	}

	if !sync.IsGitInstalled() {
		fmt.Fprintln(os.Stderr, "Error: git is not installed.")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	gs := sync.New(cfg.GetDataDir(), &sync.Config{
		Enabled:       cfg.Sync.Enabled,
		AutoCommit:    cfg.Sync.AutoCommit,
		AutoPush:      cfg.Sync.AutoPush,
		PullOnStartup: cfg.Sync.PullOnStartup,
		CommitMessage: cfg.Sync.CommitMessage,
	})

	switch {
	case *setupFlag:
		runSyncSetup(gs, cfg)
	case *initFlag:
		runSyncInit(gs, cfg.GetDataDir())
	case *statusFlag:
		runSyncStatus(gs, cfg)
	case *pullFlag:
		runSyncTransfer(gs, false)
	case *pushFlag:
		runSyncTransfer(gs, true)
	default:
		runSyncNow(gs)
	}
}

// runSyncInit initializes the git repository.
func runSyncInit(gs *sync.GitSync, dataDir string) {
	if gs.IsRepo() {
		fmt.Printf("%s is already a git repository.\n", dataDir)
		return
	}

	if err := gs.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Initialized repository in %s\n", dataDir)
	fmt.Println("Run 'timesplit sync --setup' to add a remote and enable auto-commit,")
	fmt.Println("or enable sync by hand in ~/.config/timesplit/config.yaml.")
}

// runSyncStatus reports on the data files first, then the repository.
func runSyncStatus(gs *sync.GitSync, cfg *config.Config) {
	dataDir := cfg.GetDataDir()

	fmt.Printf("Data (%s)\n", dataDir)
	for _, filename := range storage.DataFiles() {
		fi, err := os.Stat(filepath.Join(dataDir, filename))
		if err != nil {
			fmt.Printf("  %-12s missing\n", filename)
			continue
		}
		fmt.Printf("  %-12s %d bytes, modified %s\n", filename, fi.Size(), relativeAge(fi.ModTime()))
	}
	if sessions, categories, day, err := currentDataStats(dataDir); err == nil {
		fmt.Printf("  %d sessions, %d categories, tracking day %s\n", sessions, categories, day)
	}
	fmt.Println()

	status, err := gs.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting status: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Repository")
	if !status.IsRepo {
		fmt.Println("  not initialized; run 'timesplit sync --init'")
		return
	}

	mode := "disabled"
	if cfg.Sync.Enabled {
		mode = "enabled"
		if cfg.Sync.AutoCommit {
			mode += ", auto-commit"
		}
		if cfg.Sync.AutoPush {
			mode += ", auto-push"
		}
	}
	fmt.Printf("  sync:    %s\n", mode)
	fmt.Printf("  branch:  %s\n", status.Branch)

	switch {
	case !status.HasRemote:
		fmt.Println("  remote:  none configured")
	case status.Ahead > 0 || status.Behind > 0:
		fmt.Printf("  remote:  %s (%s), %d ahead / %d behind\n",
			status.RemoteName, status.RemoteURL, status.Ahead, status.Behind)
	default:
		fmt.Printf("  remote:  %s (%s), up to date\n", status.RemoteName, status.RemoteURL)
	}

	if status.HasChanges {
		fmt.Println("  files:   uncommitted changes")
	} else {
		fmt.Println("  files:   clean")
	}
	if status.LastCommitAt != nil {
		fmt.Printf("  commit:  %s\n", relativeAge(*status.LastCommitAt))
	}
}

// runSyncTransfer moves commits one way, pushing when push is true and
// pulling otherwise.
func runSyncTransfer(gs *sync.GitSync, push bool) {
	requireRepo(gs)

	if push {
		if err := gs.Push(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Pushed local commits.")
		return
	}

	if err := gs.Pull(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Pulled latest changes.")
}

// runSyncNow commits anything pending and pushes when a remote exists.
func runSyncNow(gs *sync.GitSync) {
	requireRepo(gs)

	if err := gs.CommitAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Error committing: %v\n", err)
		os.Exit(1)
	}

	status, err := gs.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting status: %v\n", err)
		os.Exit(1)
	}

	if !status.HasRemote {
		fmt.Println("Committed locally. Add a remote via 'timesplit sync --setup' to push.")
		return
	}

	if err := gs.Push(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: push failed: %v\n", err)
		fmt.Println("Committed locally; push again later with 'timesplit sync --push'.")
		return
	}
	fmt.Println("Committed and pushed.")
}

// requireRepo exits with a hint when the data directory is not a repository.
func requireRepo(gs *sync.GitSync) {
	if !gs.IsRepo() {
		fmt.Fprintln(os.Stderr, "Error: not a git repository. Run 'timesplit sync --init' first.")
		os.Exit(1)
	}
}

// runSyncSetup walks through repository, remote, and commit options, then
// saves the result to the config file.
func runSyncSetup(gs *sync.GitSync, cfg *config.Config) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Git sync setup")
	fmt.Printf("Data directory: %s (state.json, meta.json)\n\n", cfg.GetDataDir())

	if !gs.IsRepo() {
		if !askYesNo(reader, "Initialize a git repository here?", true) {
			fmt.Println("Setup cancelled.")
			return
		}
		if err := gs.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Repository initialized")
	} else {
		fmt.Println("✓ Repository already initialized")
	}

	status, err := gs.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting status: %v\n", err)
		os.Exit(1)
	}

	if status.HasRemote {
		fmt.Printf("✓ Remote %s (%s)\n", status.RemoteName, status.RemoteURL)
	} else if askYesNo(reader, "Add a remote to push to?", false) {
		fmt.Print("Remote URL (e.g. git@github.com:you/timesplit-data.git): ")
		url, _ := reader.ReadString('\n')
		url = strings.TrimSpace(url)

		if url == "" {
			fmt.Println("Skipped, no URL given.")
		} else if err := gs.AddRemote("origin", url); err != nil {
			fmt.Fprintf(os.Stderr, "Error adding remote: %v\n", err)
		} else {
			fmt.Println("✓ Remote 'origin' added")
		}
	}
	fmt.Println()

	options := []struct {
		prompt string
		value  *bool
	}{
		{"Commit automatically after each change (toggle, reset, edits)?", &cfg.Sync.AutoCommit},
		{"Push automatically after every commit?", &cfg.Sync.AutoPush},
		{"Pull before the app opens?", &cfg.Sync.PullOnStartup},
	}
	for _, opt := range options {
		*opt.value = askYesNo(reader, opt.prompt, *opt.value)
	}
	cfg.Sync.Enabled = true

	if err := cfg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save config: %v\n", err)
		fmt.Println("Add this to ~/.config/timesplit/config.yaml:")
		fmt.Println("sync:")
		fmt.Println("  enabled: true")
		fmt.Printf("  auto_commit: %v\n", cfg.Sync.AutoCommit)
		fmt.Printf("  auto_push: %v\n", cfg.Sync.AutoPush)
		fmt.Printf("  pull_on_startup: %v\n", cfg.Sync.PullOnStartup)
	} else {
		fmt.Println("✓ Configuration saved")
	}
	fmt.Println()

	if askYesNo(reader, "Commit the current data files now?", true) {
		if err := gs.CommitAll(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: initial commit failed: %v\n", err)
		} else {
			fmt.Println("✓ Data files committed")
		}
	}

	fmt.Println()
	fmt.Println("Done. Commits will describe each change ('Toggle timer: Work').")
	if !cfg.Sync.AutoPush {
		fmt.Println("Push with 'timesplit sync' whenever you want the remote updated.")
	}
}

// askYesNo reads a y/n answer, returning def on an empty line.
func askYesNo(reader *bufio.Reader, prompt string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Printf("%s [%s] ", prompt, hint)

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return def
	}

	switch strings.TrimSpace(strings.ToLower(line)) {
	case "":
		return def
	case "y", "yes":
		return true
	default:
		return false
	}
}
