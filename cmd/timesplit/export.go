// Package main is the entry point for the timesplit application.
// This file contains the export subcommand handler.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"timesplit/internal/config"
	"timesplit/internal/fsutil"
	"timesplit/internal/reports"
	"timesplit/internal/storage"
)

// exportHelpText is the help message for the export subcommand.
const exportHelpText = `timesplit export - Generate reports and export raw data

USAGE:
    timesplit export [OPTIONS]

OPTIONS:
    -d, --day DAY      Tracking day for the report (YYYY-MM-DD).
                       Defaults to the current tracking day.
    -r, --range N      Generate a range report over the last N tracking days
    -f, --format FMT   Output format: markdown (default) or json
    --csv              Export all sessions as CSV instead of a report
    --raw              Export the full state as raw JSON
    -o, --output FILE  Write to file instead of stdout
    -h, --help         Show this help message

DESCRIPTION:
    Generates reports summarizing your tracked time per category. Reports
    can be output as Markdown (human-readable) or JSON (machine-readable).
    Days follow the configured reset hour, so a session ending at 02:00
    counts toward the previous day.

EXAMPLES:
    # Today's report in Markdown
    timesplit export

    # Specific tracking day
    timesplit export -d 2026-08-30

    # Last 7 days
    timesplit export --range 7

    # JSON format
    timesplit export --format json

    # Save to file
    timesplit export --output report.md

    # All sessions as CSV
    timesplit export --csv -o sessions.csv
`

// runExport handles the "timesplit export" subcommand.
func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	dayFlag := fs.String("day", "", "tracking day for the report (YYYY-MM-DD)")
	fs.StringVar(dayFlag, "d", "", "tracking day (shorthand)")

	rangeFlag := fs.Int("range", 0, "range report over the last N tracking days")
	fs.IntVar(rangeFlag, "r", 0, "range report (shorthand)")

	formatFlag := fs.String("format", "markdown", "output format: markdown or json")
	fs.StringVar(formatFlag, "f", "markdown", "output format (shorthand)")

	csvFlag := fs.Bool("csv", false, "export all sessions as CSV")
	rawFlag := fs.Bool("raw", false, "export the full state as raw JSON")

	outputFlag := fs.String("output", "", "write to file instead of stdout")
	fs.StringVar(outputFlag, "o", "", "write to file (shorthand)")

	helpFlag := fs.Bool("help", false, "show help message")
	fs.BoolVar(helpFlag, "h", false, "show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, exportHelpText)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *helpFlag {
		fmt.Print(exportHelpText)
		os.Exit(0)
	}

	// Validate format
	format := *formatFlag
	if format != "markdown" && format != "json" && format != "md" {
		fmt.Fprintf(os.Stderr, "Error: invalid format %q. Use 'markdown' or 'json'.\n", format)
		os.Exit(1)
	}
	if format == "md" {
		format = "markdown"
	}

	// Validate day argument early so a typo fails before touching storage
	if *dayFlag != "" {
		if _, err := time.ParseInLocation("2006-01-02", *dayFlag, time.Local); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid day %q. Use YYYY-MM-DD format.\n", *dayFlag)
			os.Exit(1)
		}
	}

	// Load config and storage
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

	var output string
	switch {
	case *csvFlag:
		csv, err := store.ExportSessionsCSV()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting CSV: %v\n", err)
			os.Exit(1)
		}
		output = csv

	case *rawFlag:
		data, err := store.ExportJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting JSON: %v\n", err)
			os.Exit(1)
		}
		output = string(data)

	case *rangeFlag > 0:
		gen := reports.NewGenerator(store)
		report, err := gen.GenerateRange(*rangeFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating range report: %v\n", err)
			os.Exit(1)
		}
		if format == "json" {
			data, err := reports.FormatRangeJSON(report)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error formatting JSON: %v\n", err)
				os.Exit(1)
			}
			output = string(data)
		} else {
			output = reports.FormatRangeMarkdown(report)
		}

	default:
		gen := reports.NewGenerator(store)
		report, err := gen.GenerateDaily(*dayFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating daily report: %v\n", err)
			os.Exit(1)
		}
		if format == "json" {
			data, err := reports.FormatDailyJSON(report)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error formatting JSON: %v\n", err)
				os.Exit(1)
			}
			output = string(data)
		} else {
			output = reports.FormatDailyMarkdown(report)
		}
	}

	// Write output
	if *outputFlag != "" {
		if err := os.MkdirAll(filepath.Dir(*outputFlag), 0700); err != nil && filepath.Dir(*outputFlag) != "." {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(1)
		}
		if err := fsutil.WriteFileAtomic(*outputFlag, []byte(output), 0600); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Export written to %s\n", *outputFlag)
	} else {
		fmt.Print(output)
	}
}
