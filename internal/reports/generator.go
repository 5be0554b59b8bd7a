package reports

import (
	"fmt"
	"sort"
	"time"

	"timesplit/internal/engine"
	"timesplit/internal/storage"
)

// deletedCategoryName labels sessions whose category no longer exists.
const deletedCategoryName = "Deleted category"

// Generator creates reports from stored tracking state.
type Generator struct {
	store *storage.Storage
	now   func() time.Time
}

// NewGenerator creates a new report generator.
func NewGenerator(store *storage.Storage) *Generator {
	return &Generator{store: store, now: time.Now}
}

// SetNowFunc overrides the clock used to resolve "today".
// Passing nil resets it to time.Now.
func (g *Generator) SetNowFunc(now func() time.Time) {
	if now == nil {
		g.now = time.Now
		return
	}
	g.now = now
}

// GenerateDaily generates a report for a tracking day given as a YYYY-MM-DD
// key. An empty day means the current tracking day.
func (g *Generator) GenerateDaily(day string) (*DailyReport, error) {
	st, err := g.store.LoadState()
	if err != nil {
		return nil, err
	}

	if day == "" {
		day = engine.TrackingDay(g.now(), st.DailyResetHour)
	} else if _, err := time.Parse("2006-01-02", day); err != nil {
		return nil, fmt.Errorf("invalid day %q: expected YYYY-MM-DD", day)
	}

	names, icons := categoryIndex(st.Categories)

	var (
		entries  []SessionEntry
		byCat    = make(map[string]time.Duration)
		catCount = make(map[string]int)
		total    time.Duration
	)
	for _, sess := range st.Sessions {
		if sess.EndTime == nil {
			continue
		}
		if engine.TrackingDay(*sess.EndTime, st.DailyResetHour) != day {
			continue
		}
		d := sess.EndTime.Sub(sess.StartTime)
		if d < 0 {
			d = 0
		}
		total += d
		byCat[sess.CategoryID] += d
		catCount[sess.CategoryID]++

		name, ok := names[sess.CategoryID]
		if !ok {
			name = deletedCategoryName
		}
		entries = append(entries, SessionEntry{
			ID:       sess.ID,
			Category: name,
			Start:    sess.StartTime,
			End:      *sess.EndTime,
			Duration: d,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Start.Before(entries[j].Start)
	})

	return &DailyReport{
		Day:         day,
		ResetHour:   st.DailyResetHour,
		Total:       total,
		Splits:      buildSplits(byCat, catCount, names, icons, total),
		Sessions:    entries,
		GeneratedAt: g.now(),
	}, nil
}

// GenerateRange generates a report covering the last days tracking days,
// ending with the current one.
func (g *Generator) GenerateRange(days int) (*RangeReport, error) {
	if days < 1 {
		return nil, fmt.Errorf("range must cover at least one day")
	}

	st, err := g.store.LoadState()
	if err != nil {
		return nil, err
	}

	today := engine.TrackingDay(g.now(), st.DailyResetHour)
	startDate, err := time.Parse("2006-01-02", today)
	if err != nil {
		return nil, fmt.Errorf("bad tracking-day key %q: %w", today, err)
	}
	startDate = startDate.AddDate(0, 0, -(days - 1))

	wanted := make(map[string]int, days)
	dayKeys := make([]string, days)
	for i := 0; i < days; i++ {
		key := startDate.AddDate(0, 0, i).Format("2006-01-02")
		wanted[key] = i
		dayKeys[i] = key
	}

	names, icons := categoryIndex(st.Categories)

	var (
		byCat      = make(map[string]time.Duration)
		catCount   = make(map[string]int)
		dayTotals  = make([]time.Duration, days)
		dayByCat   = make([]map[string]time.Duration, days)
		grandTotal time.Duration
	)
	for i := range dayByCat {
		dayByCat[i] = make(map[string]time.Duration)
	}

	for _, sess := range st.Sessions {
		if sess.EndTime == nil {
			continue
		}
		key := engine.TrackingDay(*sess.EndTime, st.DailyResetHour)
		idx, ok := wanted[key]
		if !ok {
			continue
		}
		d := sess.EndTime.Sub(sess.StartTime)
		if d < 0 {
			d = 0
		}
		grandTotal += d
		byCat[sess.CategoryID] += d
		catCount[sess.CategoryID]++
		dayTotals[idx] += d
		dayByCat[idx][sess.CategoryID] += d
	}

	summaries := make([]DaySummary, days)
	for i, key := range dayKeys {
		summaries[i] = DaySummary{
			Day:         key,
			Total:       dayTotals[i],
			TopCategory: topCategory(dayByCat[i], names),
		}
	}

	return &RangeReport{
		StartDay:    dayKeys[0],
		EndDay:      dayKeys[days-1],
		Total:       grandTotal,
		Splits:      buildSplits(byCat, catCount, names, icons, grandTotal),
		Days:        summaries,
		GeneratedAt: g.now(),
	}, nil
}

func categoryIndex(cats []engine.Category) (names, icons map[string]string) {
	names = make(map[string]string, len(cats))
	icons = make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
		icons[c.ID] = c.Icon
	}
	return names, icons
}

func buildSplits(byCat map[string]time.Duration, catCount map[string]int, names, icons map[string]string, total time.Duration) []CategorySplit {
	splits := make([]CategorySplit, 0, len(byCat))
	for id, d := range byCat {
		name, ok := names[id]
		if !ok {
			name = deletedCategoryName
		}
		pct := 0.0
		if total > 0 {
			pct = float64(d) / float64(total) * 100
		}
		splits = append(splits, CategorySplit{
			ID:         id,
			Name:       name,
			Icon:       icons[id],
			Duration:   d,
			Percentage: pct,
			Sessions:   catCount[id],
		})
	}

	sort.Slice(splits, func(i, j int) bool {
		if splits[i].Duration != splits[j].Duration {
			return splits[i].Duration > splits[j].Duration
		}
		return splits[i].Name < splits[j].Name
	})
	return splits
}

func topCategory(byCat map[string]time.Duration, names map[string]string) string {
	var (
		bestID string
		bestD  time.Duration
	)
	for id, d := range byCat {
		if d > bestD || (d == bestD && d > 0 && id < bestID) {
			bestID = id
			bestD = d
		}
	}
	if bestID == "" {
		return ""
	}
	if name, ok := names[bestID]; ok {
		return name
	}
	return deletedCategoryName
}
