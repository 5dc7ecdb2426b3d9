package assess

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mklatt/ontrack/internal/event"
)

func TestStatusForScore(t *testing.T) {
	tests := []struct {
		score int
		want  Status
	}{
		{100, OnTrack},
		{80, OnTrack},
		{79, HeadsUp},
		{60, HeadsUp},
		{59, Drifting},
		{40, Drifting},
		{39, Stuck},
		{0, Stuck},
	}
	for _, tt := range tests {
		if got := StatusForScore(tt.score); got != tt.want {
			t.Errorf("StatusForScore(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"ON_TRACK", OnTrack},
		{"on track", OnTrack},
		{"On-Track", OnTrack},
		{"  stuck  ", Stuck},
		{"heads_up", HeadsUp},
		{"DRIFTING", Drifting},
		{"magnificent", HeadsUp},
		{"", HeadsUp},
	}
	for _, tt := range tests {
		if got := NormalizeStatus(tt.in); got != tt.want {
			t.Errorf("NormalizeStatus(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStatusJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Stuck)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"STUCK"` {
		t.Errorf("marshal = %s", data)
	}

	var s Status
	if err := json.Unmarshal([]byte(`"drifting"`), &s); err != nil {
		t.Fatal(err)
	}
	if s != Drifting {
		t.Errorf("unmarshal = %v, want Drifting", s)
	}
}

func TestCapText(t *testing.T) {
	long := strings.Repeat("a", 200)
	if got := capText(long); len([]rune(got)) != maxReasonLen {
		t.Errorf("len = %d, want %d", len([]rune(got)), maxReasonLen)
	}
	if got := capText("  fine  "); got != "fine" {
		t.Errorf("got %q", got)
	}
}

func TestSummarizeCalls(t *testing.T) {
	events := []event.Event{
		{Kind: event.UserMessage, Text: "fix it"},
		{Kind: event.ToolCall, Tool: "Read", Input: map[string]any{"file_path": "a.go"}},
		{Kind: event.ToolCall, Tool: "Bash", Input: map[string]any{"command": "go test"}, Failed: true},
		{Kind: event.ToolResult, ResultFor: "x"},
		{Kind: event.ToolCall, Tool: "Edit", Input: map[string]any{"file_path": "b.go"}},
	}

	got := SummarizeCalls(events, 20)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// Oldest first.
	if got[0].Tool != "Read" || got[0].Detail != "a.go" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Tool != "Bash" || !got[1].Failed {
		t.Errorf("got[1] = %+v", got[1])
	}
	if got[2].Tool != "Edit" {
		t.Errorf("got[2] = %+v", got[2])
	}
}

func TestSummarizeCallsCapsCountAndDetail(t *testing.T) {
	var events []event.Event
	for i := 0; i < 30; i++ {
		events = append(events, event.Event{
			Kind:  event.ToolCall,
			Tool:  "Bash",
			Input: map[string]any{"command": strings.Repeat("x", 120)},
		})
	}

	got := SummarizeCalls(events, 20)
	if len(got) != 20 {
		t.Errorf("len = %d, want 20", len(got))
	}
	if len([]rune(got[0].Detail)) != detailLen {
		t.Errorf("detail len = %d, want %d", len([]rune(got[0].Detail)), detailLen)
	}
}
