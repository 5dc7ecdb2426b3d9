package signal

import (
	"fmt"
	"strings"
)

// NoAnomalies is the summary sentinel when no detector fires.
const NoAnomalies = "no anomalies"

const baseScore = 70

// Score derives the heuristic productivity score from a signal set. It is a
// pure function: identical sets always yield identical scores, clamped to
// [0, 100]. Used as the assessor fallback and to drive status thresholds.
func Score(s Set) int {
	score := baseScore
	if s.Loop.Detected {
		score -= 25
	}
	if s.StuckOnFile.Detected {
		score -= 20
	}
	if s.ErrorStreak.Detected {
		score -= 30
	}
	if s.Paralysis.Detected {
		score -= 20
	}
	if s.ScopeCreep.Detected {
		score -= 15
	}
	if s.NoProgress.Detected {
		score -= 20
	}
	if s.GoodMomentum.Detected {
		score += 20
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Summary concatenates the detected signals into one line, or returns the
// NoAnomalies sentinel when nothing fired.
func Summary(s Set) string {
	var parts []string
	if s.Loop.Detected {
		parts = append(parts, fmt.Sprintf("command loop: %q ran %d times", s.Loop.Command, s.Loop.Count))
	}
	if s.StuckOnFile.Detected {
		parts = append(parts, fmt.Sprintf("stuck on %s (%d edits)", s.StuckOnFile.File, s.StuckOnFile.Count))
	}
	if s.ErrorStreak.Detected {
		parts = append(parts, fmt.Sprintf("error streak: %d consecutive failures", s.ErrorStreak.Length))
	}
	if s.Paralysis.Detected {
		parts = append(parts, fmt.Sprintf("analysis paralysis: %d reads since last edit", s.Paralysis.ReadCount))
	}
	if s.ScopeCreep.Detected {
		parts = append(parts, fmt.Sprintf("scope creep: %d files unrelated to goal", len(s.ScopeCreep.Files)))
	}
	if s.NoProgress.Detected {
		parts = append(parts, fmt.Sprintf("no progress: no edits in last %d events", s.NoProgress.Window))
	}
	if s.GoodMomentum.Detected {
		parts = append(parts, fmt.Sprintf("good momentum: %d edit-then-verify cycles", s.GoodMomentum.Count))
	}
	if len(parts) == 0 {
		return NoAnomalies
	}
	return strings.Join(parts, "; ")
}
