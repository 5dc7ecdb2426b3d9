package assess

import (
	"context"
	"log"
	"time"

	"github.com/mklatt/ontrack/internal/signal"
)

// Scheduler decides when a new assessment runs and owns fallback behavior.
// It counts tool-call events since the last assessment and fires at the
// configured threshold, eagerly once at startup when events already exist,
// and immediately on a manual goal update. It never fires while no goal is
// set, and never overlaps two assessor calls.
//
// Not safe for concurrent use; the monitoring loop is the single owner.
type Scheduler struct {
	assessor  Assessor // nil means heuristic-only operation
	threshold int

	sinceLast int
	inFlight  bool
	forced    bool
	started   bool // the eager initial trigger has been consumed
}

// DefaultThreshold is how many tool calls accrue between assessments.
const DefaultThreshold = 10

func NewScheduler(a Assessor, threshold int) *Scheduler {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Scheduler{assessor: a, threshold: threshold}
}

// ObserveToolCalls adds n newly reconciled tool calls to the counter.
func (s *Scheduler) ObserveToolCalls(n int) {
	s.sinceLast += n
}

// Force requests an assessment regardless of the counter. Used when the
// user manually supplies a new goal.
func (s *Scheduler) Force() {
	s.forced = true
}

// InFlight reports whether an assessor call is currently pending.
func (s *Scheduler) InFlight() bool {
	return s.inFlight
}

// Due reports whether a new assessment should start now. An assessment
// without a goal is meaningless and is skipped entirely — not even the
// heuristic fallback runs.
func (s *Scheduler) Due(goal string, eventCount int) bool {
	if s.inFlight || goal == "" {
		return false
	}
	if s.forced {
		return true
	}
	if !s.started && eventCount > 0 {
		return true
	}
	return s.sinceLast >= s.threshold
}

// Begin marks an assessment as started and resets the trigger state. The
// caller must pair it with Finish once the result lands.
func (s *Scheduler) Begin() {
	s.inFlight = true
	s.forced = false
	s.started = true
	s.sinceLast = 0
}

// Finish clears the in-flight flag.
func (s *Scheduler) Finish() {
	s.inFlight = false
}

// Assess invokes the assessor and always returns a usable Assessment: a
// normalized external verdict on success, the heuristic fallback on any
// failure. No error leaves this boundary.
func (s *Scheduler) Assess(ctx context.Context, req Request) Assessment {
	if s.assessor == nil {
		return Fallback(req.Signals, req.Summary, time.Now())
	}
	v, err := s.assessor.Assess(ctx, req)
	if err != nil {
		log.Printf("[assess] external assessor failed, using heuristic: %v", err)
		return Fallback(req.Signals, req.Summary, time.Now())
	}
	return Assessment{
		Score:      clampScore(v.Score),
		Status:     NormalizeStatus(v.Status),
		Reason:     capText(v.Reason),
		Suggestion: capText(v.Suggestion),
		Origin:     OriginExternal,
		AssessedAt: time.Now(),
	}
}

// Fallback builds a heuristic-sourced assessment. The score is exactly
// signal.Score(signals); a suggestion is attached only below 60.
func Fallback(signals signal.Set, summary string, at time.Time) Assessment {
	score := signal.Score(signals)
	a := Assessment{
		Score:      score,
		Status:     StatusForScore(score),
		Reason:     summary,
		Origin:     OriginHeuristic,
		AssessedAt: at,
	}
	if score < 60 {
		a.Suggestion = suggestionFor(signals)
	}
	return a
}

// suggestionFor picks one concrete next step from the strongest detected
// signal, mirroring the score deltas' severity order.
func suggestionFor(s signal.Set) string {
	switch {
	case s.ErrorStreak.Detected:
		return "Several commands failed in a row; re-read the last error before retrying."
	case s.Loop.Detected:
		return "The same command keeps running with no change in between; try a different approach."
	case s.StuckOnFile.Detected:
		return "Edits keep landing on one file; step back and reconsider the fix."
	case s.Paralysis.Detected:
		return "Lots of reading, no writing; commit to a change and test it."
	case s.NoProgress.Detected:
		return "Nothing has been edited recently; break the goal into a smaller next step."
	case s.ScopeCreep.Detected:
		return "Recent edits drift from the stated goal; refocus or update the goal."
	default:
		return "Review the recent activity against the goal."
	}
}
