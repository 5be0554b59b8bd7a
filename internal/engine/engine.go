// Package engine owns the timesplit application state and implements every
// state transition: timer toggling, the daily rollover, sleep inference, and
// category management. All transitions are snapshot-to-snapshot; external
// readers only ever see copies.
package engine

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"
)

// Engine is the tracking state engine. Methods serialize access with a
// mutex because Bubble Tea commands run in their own goroutines; within a
// method every transition runs to completion before another can observe it.
type Engine struct {
	mu    sync.Mutex
	state State

	now     func() time.Time
	onSave  func(State, SaveEvent) // fire-and-forget persistence, called after every accepted mutation
	onStart func()                 // marks the external "has started tracking" flag
}

// New creates an engine owning the given initial state.
func New(initial State) *Engine {
	if initial.Sessions == nil {
		initial.Sessions = []Session{}
	}
	if initial.Categories == nil {
		initial.Categories = []Category{}
	}
	if initial.DailyResetHour < 0 || initial.DailyResetHour > 23 {
		initial.DailyResetHour = DefaultResetHour
	}
	return &Engine{state: initial, now: time.Now}
}

// SetNowFunc overrides the engine clock. Passing nil resets it to time.Now.
func (e *Engine) SetNowFunc(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if now == nil {
		now = time.Now
	}
	e.now = now
}

// SetOnSave registers a callback invoked with a state copy after every
// accepted mutation. Persistence errors are the collaborator's problem;
// the engine never hears about them.
func (e *Engine) SetOnSave(fn func(State, SaveEvent)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onSave = fn
}

// SetOnStart registers a callback invoked whenever a timer is toggled. The
// collaborator uses it to persist the first-run "has started tracking" flag.
func (e *Engine) SetOnStart(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStart = fn
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// notify runs the save hook outside the lock.
func (e *Engine) notify(save func(State, SaveEvent), snap State, ev SaveEvent) {
	if save != nil {
		save(snap, ev)
	}
}

// endSnapshot captures the state copy and hook while still locked, then
// releases the lock. Callers must not touch e.state afterwards.
func (e *Engine) endSnapshot() (func(State, SaveEvent), State) {
	save := e.onSave
	var snap State
	if save != nil {
		snap = e.state.clone()
	}
	e.mu.Unlock()
	return save, snap
}

// freshen zeroes a stale accumulator and stamps it to the given tracking
// day. It is the single rollover primitive shared by the toggle path and the
// scheduled reset path.
func freshen(c *Category, day string) {
	if c.LastResetDate != day {
		c.TotalToday = 0
		c.LastResetDate = day
	}
}

// rollInto adds a closed session's duration to its category's accumulator
// for the given tracking day, discarding a stale total first.
func rollInto(c *Category, d time.Duration, day string) {
	freshen(c, day)
	c.TotalToday += d
}

// ToggleTimer starts or stops tracking for a category.
//
// If the active session belongs to categoryID it is closed and its elapsed
// time rolled into the category's daily total. If a session for a different
// category is active, it is closed the same way and a new session opened in
// one transition. Otherwise a new session is opened. The tracking-day key is
// computed once per call and reused for both the close and the open, so a
// toggle spanning the reset boundary cannot double-reset.
//
// An unknown categoryID is accepted and produces an orphaned session.
func (e *Engine) ToggleTimer(categoryID string) {
	e.mu.Lock()
	now := e.now()
	today := TrackingDay(now, e.state.DailyResetHour)
	onStart := e.onStart

	opened := true
	if e.state.ActiveSessionID != "" {
		if active := e.state.session(e.state.ActiveSessionID); active != nil {
			end := now
			active.EndTime = &end
			if cat := e.state.category(active.CategoryID); cat != nil {
				rollInto(cat, now.Sub(active.StartTime), today)
			}
			same := active.CategoryID == categoryID
			e.state.ActiveSessionID = ""
			if same {
				opened = false
			}
		}
	}

	detail := categoryID
	if cat := e.state.category(categoryID); cat != nil {
		detail = cat.Name
	}

	if opened {
		if cat := e.state.category(categoryID); cat != nil {
			freshen(cat, today)
		}
		sess := Session{
			ID:         fmt.Sprintf("sess-%d", now.UnixMilli()),
			CategoryID: categoryID,
			StartTime:  now,
		}
		e.state.Sessions = append(e.state.Sessions, sess)
		e.state.ActiveSessionID = sess.ID
	}

	save, snap := e.endSnapshot()
	if onStart != nil {
		onStart()
	}
	e.notify(save, snap, SaveEvent{Op: "toggle", Detail: detail})
}

// CheckReset applies the daily rollover if the reset boundary has been
// crossed since the last one. It is idempotent within a boundary and
// collapses any number of missed boundaries into a single reset. Returns
// true when a rollover was applied.
//
// An active non-sleep session is cut exactly at the boundary and its span
// rolled into its category; that category therefore starts the new day with
// the pre-boundary tail while every other non-sleep accumulator is zeroed.
// An active sleep session runs on across the boundary untouched.
func (e *Engine) CheckReset() bool {
	e.mu.Lock()
	now := e.now()
	boundary := ResetBoundary(now, e.state.DailyResetHour)
	if !e.state.LastGlobalReset.Before(boundary) {
		e.mu.Unlock()
		return false
	}

	today := TrackingDay(now, e.state.DailyResetHour)

	// Sweep first so the boundary close below lands on a fresh accumulator.
	for i := range e.state.Categories {
		if e.state.Categories[i].ID != SleepCategoryID {
			e.state.Categories[i].TotalToday = 0
			e.state.Categories[i].LastResetDate = today
		}
	}

	if e.state.ActiveSessionID != "" {
		if active := e.state.session(e.state.ActiveSessionID); active != nil && active.CategoryID != SleepCategoryID {
			end := boundary
			active.EndTime = &end
			if cat := e.state.category(active.CategoryID); cat != nil {
				rollInto(cat, boundary.Sub(active.StartTime), today)
			}
			e.state.ActiveSessionID = ""
		}
	}

	e.state.LastGlobalReset = now

	save, snap := e.endSnapshot()
	e.notify(save, snap, SaveEvent{Op: "reset"})
	return true
}

// Suggestion derives a candidate sleep interval from the inactivity gap
// since the last finished session. It returns nil while a session is active,
// for non-pro users, when the gap is shorter than the configured minimum,
// when the suggestion was already dismissed, or when either endpoint of the
// gap falls outside the night window.
func (e *Engine) Suggestion() *SleepSuggestion {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.ActiveSessionID != "" || !e.state.IsPro {
		return nil
	}

	var last *Session
	for i := range e.state.Sessions {
		s := &e.state.Sessions[i]
		if s.EndTime == nil {
			continue
		}
		if last == nil || s.EndTime.After(*last.EndTime) {
			last = s
		}
	}
	if last == nil {
		return nil
	}

	now := e.now()
	gap := now.Sub(*last.EndTime)
	minGap := time.Duration(e.state.SleepSettings.MinGapHours * float64(time.Hour))
	if gap < minGap {
		return nil
	}

	id := strconv.FormatInt(last.EndTime.UnixMilli(), 10)
	if id == e.state.DismissedSuggestionID {
		return nil
	}

	ss := e.state.SleepSettings
	if !InNightWindow(*last.EndTime, ss.NightStartHour, ss.NightEndHour) ||
		!InNightWindow(now, ss.NightStartHour, ss.NightEndHour) {
		return nil
	}

	return &SleepSuggestion{
		ID:        id,
		StartTime: *last.EndTime,
		EndTime:   now,
		Duration:  gap,
	}
}

// AcceptSuggestion records an inferred sleep interval as a completed sleep
// session and dismisses the suggestion so the same gap is not offered again.
func (e *Engine) AcceptSuggestion(s SleepSuggestion) {
	e.mu.Lock()
	end := s.EndTime
	e.state.Sessions = append(e.state.Sessions, Session{
		ID:         "sess-sleep-" + s.ID,
		CategoryID: SleepCategoryID,
		StartTime:  s.StartTime,
		EndTime:    &end,
	})
	e.state.DismissedSuggestionID = s.ID
	save, snap := e.endSnapshot()
	e.notify(save, snap, SaveEvent{Op: "suggestion", Detail: s.Duration.Round(time.Minute).String()})
}

// IgnoreSuggestion dismisses a suggestion without recording a session.
func (e *Engine) IgnoreSuggestion(id string) {
	e.mu.Lock()
	e.state.DismissedSuggestionID = id
	save, snap := e.endSnapshot()
	e.notify(save, snap, SaveEvent{Op: "suggestion", Detail: "dismissed"})
}

// DeleteSession removes a session from the timeline. Deleting the active
// session also clears the active marker.
func (e *Engine) DeleteSession(id string) {
	e.mu.Lock()
	kept := e.state.Sessions[:0]
	for _, s := range e.state.Sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	e.state.Sessions = kept
	if e.state.ActiveSessionID == id {
		e.state.ActiveSessionID = ""
	}
	save, snap := e.endSnapshot()
	e.notify(save, snap, SaveEvent{Op: "session", Detail: id})
}

// ActiveSession returns copies of the open session and its category, or nils.
// The category is nil when the session references a deleted category.
func (e *Engine) ActiveSession() (*Session, *Category) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.ActiveSessionID == "" {
		return nil, nil
	}
	sess := e.state.session(e.state.ActiveSessionID)
	if sess == nil {
		return nil, nil
	}
	s := *sess
	var c *Category
	if cat := e.state.category(sess.CategoryID); cat != nil {
		cc := *cat
		c = &cc
	}
	return &s, c
}

// IsSuggestedNow reports whether a category's refinement window covers the
// current time of day. Always false for non-pro users or categories without
// a complete window.
func (e *Engine) IsSuggestedNow(cat Category) bool {
	e.mu.Lock()
	isPro := e.state.IsPro
	now := e.now()
	e.mu.Unlock()

	if !isPro || cat.Refinements == nil {
		return false
	}
	r := cat.Refinements
	if r.WindowStart == "" || r.WindowEnd == "" {
		return false
	}
	return inClockWindow(now, r.WindowStart, r.WindowEnd)
}

// UpgradeToPro unlocks the pro features.
func (e *Engine) UpgradeToPro() {
	e.mu.Lock()
	e.state.IsPro = true
	save, snap := e.endSnapshot()
	e.notify(save, snap, SaveEvent{Op: "settings", Detail: "pro"})
}

// UpdateSleepSettings replaces the sleep-cycle settings.
func (e *Engine) UpdateSleepSettings(ss SleepSettings) error {
	if ss.NightStartHour < 0 || ss.NightStartHour > 23 {
		return fmt.Errorf("night start hour out of range: %d", ss.NightStartHour)
	}
	if ss.NightEndHour < 0 || ss.NightEndHour > 23 {
		return fmt.Errorf("night end hour out of range: %d", ss.NightEndHour)
	}
	if math.IsNaN(ss.MinGapHours) || math.IsInf(ss.MinGapHours, 0) {
		return fmt.Errorf("minimum gap must be a finite number")
	}
	if ss.MinGapHours < 0 {
		return fmt.Errorf("minimum gap must not be negative")
	}
	e.mu.Lock()
	e.state.SleepSettings = ss
	save, snap := e.endSnapshot()
	e.notify(save, snap, SaveEvent{Op: "settings", Detail: "sleep cycle"})
	return nil
}

// SetDailyResetHour changes the hour at which tracking days roll over.
func (e *Engine) SetDailyResetHour(hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("reset hour out of range: %d", hour)
	}
	e.mu.Lock()
	e.state.DailyResetHour = hour
	save, snap := e.endSnapshot()
	e.notify(save, snap, SaveEvent{Op: "settings", Detail: "reset hour"})
	return nil
}
