package engine

import (
	"fmt"
	"time"
)

const dayKeyLayout = "2006-01-02"

// TrackingDay returns the tracking-day key (YYYY-MM-DD) a timestamp belongs
// to. Local times before resetHour are attributed to the previous calendar
// date, so a 04:00 reset keeps 01:00 on the prior day.
func TrackingDay(t time.Time, resetHour int) string {
	if t.Hour() < resetHour {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format(dayKeyLayout)
}

// ResetBoundary returns the most recent occurrence of resetHour:00:00 local
// time at or before now. It marks the start of now's tracking day.
func ResetBoundary(now time.Time, resetHour int) time.Time {
	y, m, d := now.Date()
	boundary := time.Date(y, m, d, resetHour, 0, 0, 0, now.Location())
	if now.Hour() < resetHour {
		boundary = boundary.AddDate(0, 0, -1)
	}
	return boundary
}

// InNightWindow reports whether the local hour of t falls inside
// [startHour, endHour). A window with startHour > endHour wraps midnight.
func InNightWindow(t time.Time, startHour, endHour int) bool {
	h := t.Hour()
	if startHour > endHour {
		return h >= startHour || h < endHour
	}
	return h >= startHour && h < endHour
}

// inClockWindow reports whether the HH:MM clock time of t falls inside the
// window [start, end], endpoints inclusive, with midnight wrapping when
// start > end. Used for refinement time-of-day hints.
func inClockWindow(t time.Time, start, end string) bool {
	cur := fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
	if start < end {
		return cur >= start && cur <= end
	}
	return cur >= start || cur <= end
}
