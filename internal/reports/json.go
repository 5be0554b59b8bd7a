package reports

import "encoding/json"

// FormatDailyJSON formats a daily report as JSON.
func FormatDailyJSON(report *DailyReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// FormatRangeJSON formats a range report as JSON.
func FormatRangeJSON(report *RangeReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
