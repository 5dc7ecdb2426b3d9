package session

import (
	"time"

	"github.com/mklatt/ontrack/internal/assess"
	"github.com/mklatt/ontrack/internal/event"
)

// State is the single mutable session-state object. The monitoring loop is
// its only owner; everyone else sees read-only snapshots.
type State struct {
	SessionID   string
	ProjectSlug string
	StartTime   time.Time
	Goal        string
	Log         *event.Log
	Assessment  *assess.Assessment
}

func NewState(sessionID, projectSlug string) *State {
	return &State{
		SessionID:   sessionID,
		ProjectSlug: projectSlug,
		StartTime:   time.Now(),
		Log:         event.NewLog(),
	}
}

// Snapshot is the immutable view handed to presenters. Presenters never
// mutate it; events and the assessment are copies.
type Snapshot struct {
	SessionID   string             `json:"sessionId"`
	ProjectSlug string             `json:"projectSlug"`
	StartTime   time.Time          `json:"startTime"`
	Goal        string             `json:"goal"`
	Assessment  *assess.Assessment `json:"assessment,omitempty"`
	Events      []event.Event      `json:"events"`
}

// Snapshot copies the current state for presentation.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:   s.SessionID,
		ProjectSlug: s.ProjectSlug,
		StartTime:   s.StartTime,
		Goal:        s.Goal,
		Events:      s.Log.CopyEvents(),
	}
	if s.Assessment != nil {
		a := *s.Assessment
		snap.Assessment = &a
	}
	return snap
}
