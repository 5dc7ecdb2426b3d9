package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mklatt/ontrack/internal/assess"
	"github.com/mklatt/ontrack/internal/event"
)

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewState("sess-1", "proj")
	s.Log.Append(event.Event{Kind: event.ToolCall, CallID: "toolu_1", Tool: "Bash"})

	snap := s.Snapshot()

	// Later reconciliation must not leak into the snapshot.
	s.Log.Append(event.Event{Kind: event.ToolResult, ResultFor: "toolu_1", IsError: true})
	if snap.Events[0].Failed {
		t.Error("snapshot observed mutation after copy")
	}

	// Nor may assessment replacement.
	s.Assessment = &assess.Assessment{Score: 90, Status: assess.OnTrack}
	if snap.Assessment != nil {
		t.Error("snapshot gained an assessment retroactively")
	}

	snap2 := s.Snapshot()
	s.Assessment.Score = 10
	if snap2.Assessment.Score != 90 {
		t.Error("snapshot assessment should be a copy")
	}
}

func TestSnapshotJSON(t *testing.T) {
	s := NewState("sess-1", "proj")
	s.Goal = "fix the thing"
	s.Log.Append(event.Event{Kind: event.ToolCall, CallID: "toolu_1", Tool: "Edit", Timestamp: time.Now()})
	s.Assessment = &assess.Assessment{
		Score:  85,
		Status: assess.OnTrack,
		Reason: "steady progress",
		Origin: assess.OriginHeuristic,
	}

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["sessionId"] != "sess-1" {
		t.Errorf("sessionId = %v", decoded["sessionId"])
	}
	a, ok := decoded["assessment"].(map[string]any)
	if !ok {
		t.Fatal("assessment missing")
	}
	if a["status"] != "ON_TRACK" {
		t.Errorf("status = %v", a["status"])
	}
	if a["source"] != "heuristic" {
		t.Errorf("source = %v", a["source"])
	}
}
