package event

import (
	"testing"
	"time"
)

func TestParseUserMessage(t *testing.T) {
	line := `{"type":"user","message":{"role":"user","content":[{"type":"text","text":"fix the login bug"}]},"timestamp":"2026-01-30T10:00:00.000Z"}`

	ev, ok := Parse([]byte(line))
	if !ok {
		t.Fatal("expected event")
	}
	if ev.Kind != UserMessage {
		t.Errorf("kind = %v, want user_message", ev.Kind)
	}
	if ev.Text != "fix the login bug" {
		t.Errorf("text = %q", ev.Text)
	}
	want := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	if !ev.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", ev.Timestamp, want)
	}
}

func TestParseBareStringContent(t *testing.T) {
	line := `{"type":"user","message":{"role":"user","content":"just a plain string"},"timestamp":"2026-01-30T10:00:00.000Z"}`

	ev, ok := Parse([]byte(line))
	if !ok {
		t.Fatal("expected event")
	}
	if ev.Kind != UserMessage || ev.Text != "just a plain string" {
		t.Errorf("got kind=%v text=%q", ev.Kind, ev.Text)
	}
}

func TestParseToolCall(t *testing.T) {
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"let me check"},{"type":"tool_use","id":"toolu_01","name":"Bash","input":{"command":"go test ./..."}}]},"timestamp":"2026-01-30T10:00:01.000Z"}`

	ev, ok := Parse([]byte(line))
	if !ok {
		t.Fatal("expected event")
	}
	if ev.Kind != ToolCall {
		t.Fatalf("kind = %v, want tool_call", ev.Kind)
	}
	if ev.CallID != "toolu_01" || ev.Tool != "Bash" {
		t.Errorf("got id=%q tool=%q", ev.CallID, ev.Tool)
	}
	if cmd, _ := ev.Input["command"].(string); cmd != "go test ./..." {
		t.Errorf("command = %q", cmd)
	}
	if ev.Failed {
		t.Error("new tool call must start with Failed=false")
	}
}

func TestParseMultipleToolUseBlocksYieldsFirst(t *testing.T) {
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","id":"toolu_a","name":"Read","input":{}},{"type":"tool_use","id":"toolu_b","name":"Grep","input":{}}]},"timestamp":"2026-01-30T10:00:01.000Z"}`

	ev, ok := Parse([]byte(line))
	if !ok {
		t.Fatal("expected event")
	}
	if ev.CallID != "toolu_a" {
		t.Errorf("callID = %q, want toolu_a", ev.CallID)
	}
}

func TestParseToolResult(t *testing.T) {
	line := `{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_01","content":"FAIL","is_error":true}]},"timestamp":"2026-01-30T10:00:02.000Z"}`

	ev, ok := Parse([]byte(line))
	if !ok {
		t.Fatal("expected event")
	}
	if ev.Kind != ToolResult {
		t.Fatalf("kind = %v, want tool_result", ev.Kind)
	}
	if ev.ResultFor != "toolu_01" || !ev.IsError {
		t.Errorf("got resultFor=%q isError=%v", ev.ResultFor, ev.IsError)
	}
}

func TestParseUnrecognizedShapes(t *testing.T) {
	lines := []string{
		`{"type":"summary","summary":"compacted"}`,
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"thinking out loud"}]}}`,
		`{"type":"system","message":{}}`,
		`{}`,
	}
	for _, line := range lines {
		if _, ok := Parse([]byte(line)); ok {
			t.Errorf("expected no event for %s", line)
		}
	}
}

func TestParseMissingTimestampDefaultsToNow(t *testing.T) {
	line := `{"type":"user","message":{"role":"user","content":[{"type":"text","text":"hello there friend"}]}}`

	before := time.Now()
	ev, ok := Parse([]byte(line))
	if !ok {
		t.Fatal("expected event")
	}
	if ev.Timestamp.Before(before) || ev.Timestamp.After(time.Now()) {
		t.Errorf("timestamp %v not near now", ev.Timestamp)
	}
}
