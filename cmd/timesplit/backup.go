// Package main is the entry point for the timesplit application.
// This file contains the backup subcommand handler.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"timesplit/internal/backup"
	"timesplit/internal/config"
)

// backupHelpText is the help message for the backup subcommand.
const backupHelpText = `timesplit backup - Snapshot your tracking data

USAGE:
    timesplit backup [OPTIONS]

OPTIONS:
    -l, --list       List snapshots, newest first
    --prune N        Delete all but the N newest snapshots
    --delete NAME    Delete a single snapshot
    -h, --help       Show this help message

DESCRIPTION:
    Copies state.json (sessions, categories, settings) and meta.json into a
    timestamped directory under ~/.timesplit/backups/. Each snapshot carries
    a manifest with session and category counts so 'backup --list' can
    describe it without opening the files.

    Restoring always creates a safety snapshot first, so pruning with a
    small N is safe.

EXAMPLES:
    timesplit backup
    timesplit backup --list
    timesplit backup --prune 10
    timesplit backup --delete 2026-08-30_143022_000
`

// runBackup handles the "timesplit backup" subcommand.
func runBackup(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)

	listFlag := fs.Bool("list", false, "list snapshots")
	fs.BoolVar(listFlag, "l", false, "list snapshots (shorthand)")
	pruneFlag := fs.Int("prune", -1, "keep only the N newest snapshots")
	deleteFlag := fs.String("delete", "", "delete a single snapshot")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, backupHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(backupHelpText)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	manager := backup.NewManager(cfg.GetDataDir(), version)

	switch {
	case *deleteFlag != "":
		if err := manager.Delete(*deleteFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted snapshot %s\n", *deleteFlag)
	case *pruneFlag >= 0:
		pruneBackups(manager, *pruneFlag)
	case *listFlag:
		listBackups(manager)
	default:
		createBackup(manager)
	}
}

// createBackup snapshots the data files and reports what was captured.
func createBackup(manager *backup.Manager) {
	name, err := manager.Create()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating snapshot: %v\n", err)
		os.Exit(1)
	}

	info, err := manager.GetBackup(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading snapshot manifest: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Snapshot %s\n", name)
	fmt.Printf("  %s\n", describeStats(info.Stats))
	fmt.Printf("  %s\n", info.Path)
}

// listBackups prints a table of snapshots, newest first.
func listBackups(manager *backup.Manager) {
	backups, err := manager.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing snapshots: %v\n", err)
		os.Exit(1)
	}

	if len(backups) == 0 {
		fmt.Println("No snapshots yet. Run 'timesplit backup' to create one.")
		return
	}

	fmt.Printf("%-26s %-14s %s\n", "NAME", "AGE", "CONTENTS")
	for _, b := range backups {
		fmt.Printf("%-26s %-14s %s\n", b.Name, relativeAge(b.CreatedAt), describeStats(b.Stats))
	}
	fmt.Printf("\n%d snapshot(s). Restore with 'timesplit restore NAME'.\n", len(backups))
}

// pruneBackups deletes everything beyond the N newest snapshots.
func pruneBackups(manager *backup.Manager, keep int) {
	deleted, err := manager.Prune(keep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error pruning snapshots: %v\n", err)
		os.Exit(1)
	}

	if deleted == 0 {
		fmt.Printf("Nothing to prune (%d or fewer snapshots).\n", keep)
		return
	}
	fmt.Printf("Pruned %d snapshot(s), kept the %d newest.\n", deleted, keep)
}

// describeStats renders manifest counts, tolerating manifests without them.
func describeStats(stats map[string]int) string {
	if len(stats) == 0 {
		return "unknown contents"
	}
	return fmt.Sprintf("%d sessions, %d categories", stats["sessions"], stats["categories"])
}

// relativeAge renders a timestamp as a compact age, falling back to the
// date once it is more than a week old.
func relativeAge(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
