// Package reports provides daily and range report generation for timesplit.
// Reports aggregate finished sessions into per-category splits, attributed to
// tracking days the same way the live accumulators are.
package reports

import "time"

// CategorySplit is the share of one category within a report period.
type CategorySplit struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Icon       string        `json:"icon"`
	Duration   time.Duration `json:"duration"`
	Percentage float64       `json:"percentage"`
	Sessions   int           `json:"sessions"`
}

// SessionEntry is one finished session rendered in a daily report.
type SessionEntry struct {
	ID       string        `json:"id"`
	Category string        `json:"category"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
}

// DailyReport contains the split for a single tracking day.
type DailyReport struct {
	Day         string         `json:"day"` // tracking-day key, YYYY-MM-DD
	ResetHour   int            `json:"reset_hour"`
	Total       time.Duration  `json:"total"`
	Splits      []CategorySplit `json:"splits"`
	Sessions    []SessionEntry `json:"sessions"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// DaySummary is one row of a range report.
type DaySummary struct {
	Day         string        `json:"day"`
	Total       time.Duration `json:"total"`
	TopCategory string        `json:"top_category,omitempty"`
}

// RangeReport contains per-day totals plus an aggregate split over a span of
// tracking days.
type RangeReport struct {
	StartDay    string          `json:"start_day"`
	EndDay      string          `json:"end_day"`
	Total       time.Duration   `json:"total"`
	Splits      []CategorySplit `json:"splits"`
	Days        []DaySummary    `json:"days"`
	GeneratedAt time.Time       `json:"generated_at"`
}
