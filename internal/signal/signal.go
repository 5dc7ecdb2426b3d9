// Package signal evaluates cheap heuristics over the recent event window.
// Every detector is a pure function of an explicit event slice (plus the
// goal string where relevant); the Set is recomputed from scratch on each
// evaluation and never diffed against the previous one.
package signal

// Set holds the outcome of all seven detectors for one evaluation.
type Set struct {
	Loop         Loop         `json:"loop"`
	StuckOnFile  StuckOnFile  `json:"stuckOnFile"`
	ErrorStreak  ErrorStreak  `json:"errorStreak"`
	Paralysis    Paralysis    `json:"paralysis"`
	ScopeCreep   ScopeCreep   `json:"scopeCreep"`
	GoodMomentum GoodMomentum `json:"goodMomentum"`
	NoProgress   NoProgress   `json:"noProgress"`
}

// Loop fires when the same normalized Bash command keeps being re-run.
type Loop struct {
	Detected bool   `json:"detected"`
	Command  string `json:"command,omitempty"`
	Count    int    `json:"count,omitempty"`
}

// StuckOnFile fires when recent edits hammer a single file.
type StuckOnFile struct {
	Detected bool   `json:"detected"`
	File     string `json:"file,omitempty"`
	Count    int    `json:"count,omitempty"`
}

// ErrorStreak fires on a run of consecutive failed tool calls.
type ErrorStreak struct {
	Detected bool `json:"detected"`
	Length   int  `json:"length,omitempty"`
}

// Paralysis fires when many reads pile up with nothing written since.
type Paralysis struct {
	Detected  bool `json:"detected"`
	ReadCount int  `json:"readCount,omitempty"`
}

// ScopeCreep fires when edits spread to files unrelated to the goal.
type ScopeCreep struct {
	Detected bool     `json:"detected"`
	Files    []string `json:"files,omitempty"`
}

// GoodMomentum fires on repeated edit-then-verify cycles. It is the only
// positive signal.
type GoodMomentum struct {
	Detected bool `json:"detected"`
	Count    int  `json:"count,omitempty"`
}

// NoProgress fires when the last stretch of events contains no edit at all.
type NoProgress struct {
	Detected bool `json:"detected"`
	Window   int  `json:"window,omitempty"`
}
