package reports

import (
	"fmt"
	"strings"
	"time"
)

// FormatDailyMarkdown renders a daily report as Markdown.
func FormatDailyMarkdown(report *DailyReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Day Report: %s\n\n", report.Day)
	fmt.Fprintf(&b, "Total tracked: **%s**\n\n", formatDuration(report.Total))

	if len(report.Splits) == 0 {
		b.WriteString("_No finished sessions on this day._\n")
		return b.String()
	}

	b.WriteString("## Split\n\n")
	b.WriteString("| Category | Time | Share | Sessions |\n")
	b.WriteString("|----------|------|-------|----------|\n")
	for _, s := range report.Splits {
		label := s.Name
		if s.Icon != "" {
			label = s.Icon + " " + s.Name
		}
		fmt.Fprintf(&b, "| %s | %s | %.1f%% | %d |\n",
			label, formatDuration(s.Duration), s.Percentage, s.Sessions)
	}

	b.WriteString("\n## Sessions\n\n")
	for _, sess := range report.Sessions {
		fmt.Fprintf(&b, "- %s–%s  %s (%s)\n",
			sess.Start.Format("15:04"),
			sess.End.Format("15:04"),
			sess.Category,
			formatDuration(sess.Duration))
	}

	return b.String()
}

// FormatRangeMarkdown renders a range report as Markdown.
func FormatRangeMarkdown(report *RangeReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Range Report: %s to %s\n\n", report.StartDay, report.EndDay)
	fmt.Fprintf(&b, "Total tracked: **%s**\n\n", formatDuration(report.Total))

	b.WriteString("## Days\n\n")
	b.WriteString("| Day | Time | Top category |\n")
	b.WriteString("|-----|------|--------------|\n")
	for _, d := range report.Days {
		top := d.TopCategory
		if top == "" {
			top = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", d.Day, formatDuration(d.Total), top)
	}

	if len(report.Splits) > 0 {
		b.WriteString("\n## Split\n\n")
		b.WriteString("| Category | Time | Share |\n")
		b.WriteString("|----------|------|-------|\n")
		for _, s := range report.Splits {
			label := s.Name
			if s.Icon != "" {
				label = s.Icon + " " + s.Name
			}
			fmt.Fprintf(&b, "| %s | %s | %.1f%% |\n",
				label, formatDuration(s.Duration), s.Percentage)
		}
	}

	return b.String()
}

// formatDuration renders a duration as "2h 05m" or "35m".
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}
