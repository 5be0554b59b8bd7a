// Package main is the entry point for the timesplit application.
// It loads configuration, initializes storage and the tracking engine, and
// starts the TUI.
package main

import (
	"flag"
	"fmt"
	"os"

	"timesplit/internal/config"
	"timesplit/internal/engine"
	"timesplit/internal/storage"
	"timesplit/internal/sync"
	"timesplit/internal/ui"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const helpText = `timesplit - One-tap time tracking for your terminal

USAGE:
    timesplit [OPTIONS]
    timesplit <command> [ARGS]

COMMANDS:
    backup           Snapshot all data files
    backup --list    List snapshots
    backup --prune N Keep only the N newest snapshots
    restore NAME     Restore from a specific backup
    restore --latest Restore from the most recent backup
    export           Export data or generate a daily report
    export -f json   Output report as JSON
    export --csv     Export all sessions as CSV
    sync             Sync data with git (commit + push)
    sync --init      Initialize git repo in data directory
    sync --status    Show git sync status

OPTIONS:
    -h, --help       Show this help message
    -v, --version    Show version information

DESCRIPTION:
    timesplit tracks where your day goes with a single keypress per activity.
    Tap a category to start its timer; tap it again to stop. Days roll over
    at a configurable reset hour (04:00 by default) so late nights count
    toward the day they belong to.

FEATURES:
    • Track      - Tap a category to start/stop, live daily totals
    • Timeline   - Today's sessions, newest first
    • Stats      - Daily split per category with percentages
    • Sleep      - Inferred sleep from overnight inactivity (pro)
    • Local Data - Plain JSON files in ~/.timesplit/

KEYBINDINGS:
    Global:
        Tab          Next view
        1, 2, 3, 4   Jump to view
        ?            Show help overlay
        q            Quit (a running timer keeps going)

    Track View:
        j/k, ↓/↑     Navigate
        Space/Enter  Start/stop selected category
        z            Toggle sleep
        y / n        Log / dismiss sleep suggestion

    Timeline View:
        j/k, ↓/↑     Navigate
        x            Delete session
        g/G          Go to top/bottom

    Settings View:
        e/Enter      Edit setting or category
        a            Add category
        x            Delete category
        K/J          Reorder category

DATA STORAGE:
    All data is stored in ~/.timesplit/ as plain JSON files:
        state.json   - Categories, sessions, and tracking settings
        meta.json    - App flags

CONFIGURATION:
    Optional config file: ~/.config/timesplit/config.yaml
    See documentation for configuration options.

EXAMPLES:
    # Start the app
    timesplit

    # Create a backup
    timesplit backup

    # Restore from a backup
    timesplit restore --latest

    # Today's report
    timesplit export

    # Report for a specific day as JSON
    timesplit export -f json -d 2026-08-30

    # Show version
    timesplit --version
`

func main() {
	// Check for subcommands first (before flag parsing)
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "backup":
			runBackup(os.Args[2:])
			return
		case "restore":
			runRestore(os.Args[2:])
			return
		case "export":
			runExport(os.Args[2:])
			return
		case "sync":
			runSync(os.Args[2:])
			return
		}
	}

	showVersion := flag.Bool("version", false, "show version information")
	flag.BoolVar(showVersion, "v", false, "show version information (shorthand)")

	showHelp := flag.Bool("help", false, "show help message")
	flag.BoolVar(showHelp, "h", false, "show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, helpText)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("timesplit version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
		os.Exit(0)
	}

	if *showHelp {
		fmt.Print(helpText)
		os.Exit(0)
	}

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unknown arguments: %v\n\n", flag.Args())
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.New(cfg.GetDataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	// Set up git sync if enabled
	var gitSync *sync.GitSync
	if cfg.Sync.Enabled && sync.IsGitInstalled() {
		syncCfg := &sync.Config{
			Enabled:       cfg.Sync.Enabled,
			AutoCommit:    cfg.Sync.AutoCommit,
			AutoPush:      cfg.Sync.AutoPush,
			PullOnStartup: cfg.Sync.PullOnStartup,
			CommitMessage: cfg.Sync.CommitMessage,
		}
		gitSync = sync.New(cfg.GetDataDir(), syncCfg)

		// Pull on startup if configured and repo exists
		if cfg.Sync.PullOnStartup && gitSync.IsRepo() {
			if err := gitSync.Pull(); err != nil {
				// Local data is still valid, continue
				fmt.Fprintf(os.Stderr, "Warning: sync pull failed: %v\n", err)
			}
		}

		if cfg.Sync.AutoCommit && gitSync.IsRepo() {
			store.SetOnSave(gitSync.OnSaved)
		}
	}

	// Load state; corruption degrades to defaults with a warning.
	state, err := store.LoadState()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	eng := engine.New(state)
	eng.SetOnSave(func(st engine.State, ev engine.SaveEvent) {
		if err := store.SaveState(st, storage.SaveContext{Operation: ev.Op, Detail: ev.Detail}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: save failed: %v\n", err)
		}
	})
	eng.SetOnStart(func() {
		if err := store.MarkStarted(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not persist first-run flag: %v\n", err)
		}
	})

	styles := ui.NewStylesFromTheme(&cfg.Theme)

	appCfg := &ui.AppConfig{
		Keys:                  &cfg.Keys,
		ConfirmDeletions:      cfg.UX.ConfirmDeletions,
		ShowOnboarding:        cfg.UX.ShowOnboarding,
		NarrowLayoutThreshold: cfg.UX.NarrowLayoutThreshold,
	}

	if err := ui.RunWithSync(eng, store, styles, appCfg, gitSync); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}

	// Flush any pending git commits before exit
	if gitSync != nil {
		gitSync.Flush()
	}
}
