package engine

import "time"

// SleepCategoryID is the reserved category for sleep. It is exempt from the
// daily sweep and its active session survives the day boundary.
const SleepCategoryID = "cat-sleep"

// Refinement holds optional, advisory metadata for a category. Nothing in it
// is ever auto-tracked; it only drives hints in the UI.
type Refinement struct {
	WindowStart     string `json:"window_start,omitempty"` // "HH:MM"
	WindowEnd       string `json:"window_end,omitempty"`   // "HH:MM"
	TypicalDuration int    `json:"typical_duration_minutes,omitempty"`
	TargetMinutes   int    `json:"target_minutes,omitempty"`
	DaysOfWeek      []int  `json:"days_of_week,omitempty"` // 0=Sunday
}

// Category is a tappable activity with a per-tracking-day accumulator.
// TotalToday is only meaningful while LastResetDate equals the current
// tracking-day key; otherwise it is stale and treated as zero.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Icon          string        `json:"icon"`
	Color         string        `json:"color"`
	IsCustom      bool          `json:"is_custom,omitempty"`
	Refinements   *Refinement   `json:"refinements,omitempty"`
	TotalToday    time.Duration `json:"total_time_today"`
	LastResetDate string        `json:"last_reset_date,omitempty"` // tracking-day key, YYYY-MM-DD
}

// Session is one tracked interval. EndTime nil means the session is open
// (currently running). CategoryID may dangle after a category is deleted;
// readers resolve it to a placeholder.
type Session struct {
	ID         string     `json:"id"`
	CategoryID string     `json:"category_id"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
}

// SleepSettings configures the night window and the minimum inactivity gap
// used by sleep inference. The window may wrap midnight.
type SleepSettings struct {
	NightStartHour int     `json:"night_start_hour"` // 0-23
	NightEndHour   int     `json:"night_end_hour"`   // 0-23
	MinGapHours    float64 `json:"min_gap_hours"`
}

// State is the aggregate application state. It is owned by the Engine and
// mutated only through its methods; callers get copies via Snapshot.
type State struct {
	ActiveSessionID string     `json:"active_session_id,omitempty"`
	Sessions        []Session  `json:"sessions"`
	Categories      []Category `json:"categories"`
	IsPro           bool       `json:"is_pro"`

	SleepSettings  SleepSettings `json:"sleep_settings"`
	DailyResetHour int           `json:"daily_reset_hour"`

	// LastGlobalReset is the wall-clock time of the last applied daily
	// rollover. Zero means no rollover has ever been applied.
	LastGlobalReset time.Time `json:"last_global_reset,omitempty"`

	// DismissedSuggestionID remembers the sleep suggestion the user already
	// accepted or ignored, so the same gap is never offered twice.
	DismissedSuggestionID string `json:"dismissed_suggestion_id,omitempty"`
}

// SaveEvent describes the mutation that triggered a save hook invocation.
// Collaborators use it to produce meaningful persistence context, e.g.
// semantic git commit messages.
type SaveEvent struct {
	Op     string // "toggle", "reset", "session", "suggestion", "category", "settings"
	Detail string
}

// SleepSuggestion is a derived candidate sleep interval. It is never
// persisted; its ID is the stringified end time of the last finished session.
type SleepSuggestion struct {
	ID        string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// clone returns a deep copy of the state.
func (s *State) clone() State {
	out := *s
	out.Sessions = make([]Session, len(s.Sessions))
	for i, sess := range s.Sessions {
		out.Sessions[i] = sess
		if sess.EndTime != nil {
			end := *sess.EndTime
			out.Sessions[i].EndTime = &end
		}
	}
	out.Categories = make([]Category, len(s.Categories))
	for i, cat := range s.Categories {
		out.Categories[i] = cat
		if cat.Refinements != nil {
			ref := *cat.Refinements
			ref.DaysOfWeek = append([]int(nil), cat.Refinements.DaysOfWeek...)
			out.Categories[i].Refinements = &ref
		}
	}
	return out
}

// category returns a pointer into s.Categories for id, or nil.
func (s *State) category(id string) *Category {
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			return &s.Categories[i]
		}
	}
	return nil
}

// session returns a pointer into s.Sessions for id, or nil.
func (s *State) session(id string) *Session {
	for i := range s.Sessions {
		if s.Sessions[i].ID == id {
			return &s.Sessions[i]
		}
	}
	return nil
}
