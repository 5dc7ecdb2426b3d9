package assess

import (
	"encoding/json"
	"time"
)

// Status is the coarse health label attached to every assessment.
type Status int

const (
	OnTrack Status = iota
	HeadsUp
	Drifting
	Stuck
)

var statusNames = map[Status]string{
	OnTrack:  "ON_TRACK",
	HeadsUp:  "HEADS_UP",
	Drifting: "DRIFTING",
	Stuck:    "STUCK",
}

var statusFromName = map[string]Status{
	"ON_TRACK": OnTrack,
	"HEADS_UP": HeadsUp,
	"DRIFTING": Drifting,
	"STUCK":    Stuck,
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "HEADS_UP"
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*s = NormalizeStatus(name)
	return nil
}

// StatusForScore maps a score to a status. The same thresholds apply
// everywhere a score exists, external or heuristic.
func StatusForScore(score int) Status {
	switch {
	case score >= 80:
		return OnTrack
	case score >= 60:
		return HeadsUp
	case score >= 40:
		return Drifting
	default:
		return Stuck
	}
}

// Origin records who produced an assessment.
type Origin string

const (
	OriginExternal  Origin = "external"
	OriginHeuristic Origin = "heuristic"
)

// Assessment is the merged verdict for the session. Immutable once
// produced; the next assessment supersedes it wholesale.
type Assessment struct {
	Score      int       `json:"score"`
	Status     Status    `json:"status"`
	Reason     string    `json:"reason"`
	Suggestion string    `json:"suggestion,omitempty"`
	Origin     Origin    `json:"source"`
	AssessedAt time.Time `json:"assessedAt"`
}
