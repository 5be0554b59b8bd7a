// Package main is the entry point for the timesplit application.
// This file contains the restore subcommand handler.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"timesplit/internal/backup"
	"timesplit/internal/config"
	"timesplit/internal/engine"
	"timesplit/internal/storage"
)

// restoreHelpText is the help message for the restore subcommand.
const restoreHelpText = `timesplit restore - Roll data back to a snapshot

USAGE:
    timesplit restore [OPTIONS] [NAME]

OPTIONS:
    --latest       Restore the newest snapshot
    --force, -f    Skip the confirmation prompt
    -h, --help     Show this help message

DESCRIPTION:
    Replaces state.json and meta.json with the copies stored in the named
    snapshot. Before anything is overwritten, the current files are saved as
    a fresh safety snapshot, so a restore can itself be undone.

    The prompt shows what you have now next to what the snapshot holds.
    Run 'timesplit backup --list' to find snapshot names.

EXAMPLES:
    timesplit restore 2026-08-30_143022_000
    timesplit restore --latest
    timesplit restore -f --latest
`

// runRestore handles the "timesplit restore" subcommand.
func runRestore(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)

	latestFlag := fs.Bool("latest", false, "restore the newest snapshot")
	forceFlag := fs.Bool("force", false, "skip confirmation prompt")
	fs.BoolVar(forceFlag, "f", false, "skip confirmation prompt (shorthand)")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, restoreHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(restoreHelpText)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	manager := backup.NewManager(cfg.GetDataDir(), version)

	name, err := resolveSnapshotName(manager, fs.Args(), *latestFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	info, err := manager.GetBackup(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Snapshot %s (%s)\n", info.Name, relativeAge(info.CreatedAt))
	fmt.Printf("  holds:     %s\n", describeStats(info.Stats))
	if sessions, categories, day, statsErr := currentDataStats(cfg.GetDataDir()); statsErr == nil {
		fmt.Printf("  replaces:  %d sessions, %d categories (tracking day %s)\n",
			sessions, categories, day)
	}
	fmt.Println()

	if !*forceFlag && !confirmRestore(os.Stdin) {
		fmt.Println("Restore cancelled, nothing changed.")
		os.Exit(0)
	}

	if err := manager.Restore(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error restoring snapshot: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Restored %s (current data was saved as a safety snapshot)\n", name)
	if sessions, categories, day, statsErr := currentDataStats(cfg.GetDataDir()); statsErr == nil {
		fmt.Printf("  now:       %d sessions, %d categories (tracking day %s)\n",
			sessions, categories, day)
	}
}

// resolveSnapshotName picks the snapshot from the positional argument or,
// with --latest, the newest one on disk.
func resolveSnapshotName(manager *backup.Manager, args []string, latest bool) (string, error) {
	if latest {
		backups, err := manager.List()
		if err != nil {
			return "", err
		}
		if len(backups) == 0 {
			return "", fmt.Errorf("no snapshots available")
		}
		return backups[0].Name, nil
	}

	if len(args) == 0 {
		return "", fmt.Errorf("no snapshot given; pass a NAME or --latest ('timesplit backup --list' shows names)")
	}
	return args[0], nil
}

// confirmRestore asks before overwriting live data.
func confirmRestore(in io.Reader) bool {
	fmt.Print("Replace current data? [y/N] ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.TrimSpace(strings.ToLower(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// currentDataStats reads the live state file and summarizes it.
func currentDataStats(dataDir string) (sessions, categories int, day string, err error) {
	store, err := storage.New(dataDir)
	if err != nil {
		return 0, 0, "", err
	}

	st, err := store.LoadState()
	if err != nil {
		return 0, 0, "", err
	}

	day = engine.TrackingDay(time.Now(), st.DailyResetHour)
	return len(st.Sessions), len(st.Categories), day, nil
}
