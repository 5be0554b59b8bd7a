package storage

// SaveContext describes a completed save for the git sync auto-commit.
// It carries enough to build a message like "Toggle timer: Deep Work"
// instead of a generic "Update data".
type SaveContext struct {
	Filename  string // file written, e.g. "state.json"
	Operation string // "toggle", "reset", "category", "session", "settings", "suggestion", "meta"
	Detail    string // human-readable subject (category name, setting label)
}

// Meta holds small flags that live outside the tracking state proper.
type Meta struct {
	HasStartedOnce bool `json:"hasStartedOnce"`
	OnboardingDone bool `json:"onboardingDone"`
}
