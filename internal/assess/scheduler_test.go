package assess

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mklatt/ontrack/internal/signal"
)

type stubAssessor struct {
	verdict Verdict
	err     error
	calls   int
}

func (s *stubAssessor) Assess(ctx context.Context, req Request) (Verdict, error) {
	s.calls++
	return s.verdict, s.err
}

func TestSchedulerNeverDueWithoutGoal(t *testing.T) {
	s := NewScheduler(nil, 10)
	s.ObserveToolCalls(50)
	s.Force()

	if s.Due("", 100) {
		t.Error("no goal means no assessment, even forced")
	}
}

func TestSchedulerEagerOnStartupWithHistory(t *testing.T) {
	s := NewScheduler(nil, 10)

	if s.Due("fix the bug", 0) {
		t.Error("no events yet, nothing to assess")
	}
	if !s.Due("fix the bug", 5) {
		t.Error("expected eager first assessment when history exists")
	}

	s.Begin()
	s.Finish()
	if s.Due("fix the bug", 5) {
		t.Error("eager trigger must fire only once")
	}
}

func TestSchedulerThreshold(t *testing.T) {
	s := NewScheduler(nil, 10)
	s.Begin() // consume the eager trigger
	s.Finish()

	s.ObserveToolCalls(9)
	if s.Due("goal words here", 9) {
		t.Error("not due at 9 of 10 calls")
	}
	s.ObserveToolCalls(1)
	if !s.Due("goal words here", 10) {
		t.Error("due at 10 calls")
	}

	s.Begin()
	s.Finish()
	if s.Due("goal words here", 10) {
		t.Error("counter must reset after Begin")
	}
}

func TestSchedulerForce(t *testing.T) {
	s := NewScheduler(nil, 10)
	s.Begin()
	s.Finish()

	s.Force()
	if !s.Due("new goal text", 1) {
		t.Error("forced assessment should be due regardless of counter")
	}
	s.Begin()
	s.Finish()
	if s.Due("new goal text", 1) {
		t.Error("force is consumed by Begin")
	}
}

func TestSchedulerNoOverlap(t *testing.T) {
	s := NewScheduler(nil, 10)
	s.ObserveToolCalls(20)
	if !s.Due("goal", 20) {
		t.Fatal("expected due")
	}
	s.Begin()

	s.ObserveToolCalls(20)
	s.Force()
	if s.Due("goal", 40) {
		t.Error("nothing is due while an assessment is in flight")
	}

	s.Finish()
	if !s.Due("goal", 40) {
		t.Error("due again once the in-flight assessment lands")
	}
}

func TestAssessNormalizesExternalVerdict(t *testing.T) {
	stub := &stubAssessor{verdict: Verdict{
		Score:  250,
		Status: "on track",
		Reason: strings.Repeat("r", 200),
	}}
	s := NewScheduler(stub, 10)

	a := s.Assess(context.Background(), Request{Goal: "g"})
	if a.Origin != OriginExternal {
		t.Errorf("origin = %q, want external", a.Origin)
	}
	if a.Score != 100 {
		t.Errorf("score = %d, want clamped 100", a.Score)
	}
	if a.Status != OnTrack {
		t.Errorf("status = %v, want ON_TRACK", a.Status)
	}
	if len([]rune(a.Reason)) != 140 {
		t.Errorf("reason length = %d, want capped at 140", len([]rune(a.Reason)))
	}
}

func TestAssessFallsBackOnError(t *testing.T) {
	stub := &stubAssessor{err: errors.New("boom")}
	s := NewScheduler(stub, 10)

	signals := signal.Set{ErrorStreak: signal.ErrorStreak{Detected: true, Length: 3}}
	a := s.Assess(context.Background(), Request{
		Goal:    "g",
		Signals: signals,
		Summary: signal.Summary(signals),
	})

	if a.Origin != OriginHeuristic {
		t.Fatalf("origin = %q, want heuristic", a.Origin)
	}
	if a.Score != signal.Score(signals) {
		t.Errorf("fallback score = %d, want signal score %d", a.Score, signal.Score(signals))
	}
	if stub.calls != 1 {
		t.Errorf("assessor calls = %d, want 1", stub.calls)
	}
}

func TestAssessNilAssessorUsesHeuristic(t *testing.T) {
	s := NewScheduler(nil, 10)
	a := s.Assess(context.Background(), Request{Goal: "g", Summary: signal.NoAnomalies})
	if a.Origin != OriginHeuristic {
		t.Errorf("origin = %q, want heuristic", a.Origin)
	}
	if a.Reason != signal.NoAnomalies {
		t.Errorf("reason = %q", a.Reason)
	}
}

func TestFallbackMatchesSignalScore(t *testing.T) {
	tests := []struct {
		name       string
		set        signal.Set
		wantStatus Status
		wantSugg   bool
	}{
		{"clean", signal.Set{}, HeadsUp, false},
		{
			"momentum",
			signal.Set{GoodMomentum: signal.GoodMomentum{Detected: true, Count: 3}},
			OnTrack, false,
		},
		{
			"streak",
			signal.Set{ErrorStreak: signal.ErrorStreak{Detected: true, Length: 4}},
			Drifting, true,
		},
		{
			"streak plus loop",
			signal.Set{
				ErrorStreak: signal.ErrorStreak{Detected: true, Length: 4},
				Loop:        signal.Loop{Detected: true, Command: "make", Count: 3},
			},
			Stuck, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Fallback(tt.set, signal.Summary(tt.set), time.Now())
			if a.Score != signal.Score(tt.set) {
				t.Errorf("score = %d, want %d", a.Score, signal.Score(tt.set))
			}
			if a.Status != tt.wantStatus {
				t.Errorf("status = %v, want %v", a.Status, tt.wantStatus)
			}
			if (a.Suggestion != "") != tt.wantSugg {
				t.Errorf("suggestion = %q, want present=%v", a.Suggestion, tt.wantSugg)
			}
			if a.Origin != OriginHeuristic {
				t.Errorf("origin = %q", a.Origin)
			}
		})
	}
}

func TestFallbackSuggestionSeverityOrder(t *testing.T) {
	set := signal.Set{
		Loop:        signal.Loop{Detected: true},
		ErrorStreak: signal.ErrorStreak{Detected: true},
	}
	a := Fallback(set, signal.Summary(set), time.Now())
	if !strings.Contains(a.Suggestion, "failed in a row") {
		t.Errorf("error streak should dominate the suggestion, got %q", a.Suggestion)
	}
}
