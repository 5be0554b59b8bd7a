package engine

import (
	"sort"
	"time"
)

// Today returns the current tracking-day key.
func (e *Engine) Today() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return TrackingDay(e.now(), e.state.DailyResetHour)
}

// FreshTotal returns a category's accumulated total for the given
// tracking-day key. A stale accumulator counts as zero.
func FreshTotal(c Category, day string) time.Duration {
	if c.LastResetDate != day {
		return 0
	}
	return c.TotalToday
}

// SessionsForDay returns copies of the sessions attributed to the given
// tracking-day key, ordered by start time ascending. Finished sessions are
// attributed by their end time; the open session by its start time.
func (e *Engine) SessionsForDay(day string) []Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	resetHour := e.state.DailyResetHour
	out := []Session{}
	for _, s := range e.state.Sessions {
		var at time.Time
		if s.EndTime != nil {
			at = *s.EndTime
		} else {
			at = s.StartTime
		}
		if TrackingDay(at, resetHour) != day {
			continue
		}
		if s.EndTime != nil {
			end := *s.EndTime
			s.EndTime = &end
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// DailySplit returns the tracked duration per category for the given
// tracking-day key, computed from sessions. An open session on that day
// contributes its elapsed time so far.
func (e *Engine) DailySplit(day string) map[string]time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	resetHour := e.state.DailyResetHour
	now := e.now()
	split := make(map[string]time.Duration)
	for _, s := range e.state.Sessions {
		if s.EndTime == nil {
			if TrackingDay(s.StartTime, resetHour) != day {
				continue
			}
			if d := now.Sub(s.StartTime); d > 0 {
				split[s.CategoryID] += d
			}
			continue
		}
		if TrackingDay(*s.EndTime, resetHour) != day {
			continue
		}
		split[s.CategoryID] += s.EndTime.Sub(s.StartTime)
	}
	return split
}
