package engine

// DefaultResetHour is the hour at which a new tracking day begins. A 04:00
// boundary lets late evenings count toward the day they belong to.
const DefaultResetHour = 4

// DefaultIcon is the fallback glyph for categories with a missing or invalid
// icon.
const DefaultIcon = "✨"

// DefaultSleepSettings covers a 21:00–10:00 night window with a three hour
// minimum inactivity gap.
func DefaultSleepSettings() SleepSettings {
	return SleepSettings{
		NightStartHour: 21,
		NightEndHour:   10,
		MinGapHours:    3,
	}
}

// DefaultCategories is the starter set for new users.
func DefaultCategories() []Category {
	return []Category{
		{ID: "cat-work", Name: "Work", Icon: "💼", Color: "#E1E8ED"},
		{ID: "cat-commute", Name: "Commute", Icon: "🚲", Color: "#DEE2E6"},
		{ID: "cat-walk", Name: "Walking", Icon: "🚶", Color: "#F1F3F5"},
		{ID: "cat-break", Name: "Break", Icon: "☕", Color: "#FFF5F5"},
		{ID: SleepCategoryID, Name: "Sleep", Icon: "🌙", Color: "#F3F0FF"},
		{ID: "cat-house", Name: "Household", Icon: "🏠", Color: "#E3FAFC"},
		{ID: "cat-social", Name: "Social Media", Icon: "📱", Color: "#EBFBEE"},
		{ID: "cat-other", Name: "Other", Icon: "✨", Color: "#FFF9DB"},
	}
}

// DefaultState builds the initial state for a fresh install.
func DefaultState() State {
	return State{
		Sessions:       []Session{},
		Categories:     DefaultCategories(),
		SleepSettings:  DefaultSleepSettings(),
		DailyResetHour: DefaultResetHour,
	}
}
