package event

import (
	"encoding/json"
	"time"
)

// rawRecord mirrors the outer shape of one transcript line. The format is
// externally defined; anything we don't recognize is dropped, never raised.
type rawRecord struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Message   json.RawMessage `json:"message"`
}

type rawMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type rawBlock struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	IsError   bool           `json:"is_error,omitempty"`
}

// Parse maps one raw transcript line to zero or one Event. Classification
// is first match wins: a user record with a text block becomes a
// UserMessage, an assistant record with a tool_use block becomes a ToolCall
// (first block only; a record carrying several tool calls yields one
// event), and a user record with a tool_result block becomes a ToolResult.
// Every other shape yields ok == false.
func Parse(line []byte) (Event, bool) {
	var rec rawRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return Event{}, false
	}

	var msg rawMessage
	if rec.Message != nil {
		if err := json.Unmarshal(rec.Message, &msg); err != nil {
			return Event{}, false
		}
	}

	author := rec.Type
	if author == "" {
		author = msg.Role
	}

	blocks := contentBlocks(msg.Content)
	ts := parseTimestamp(rec.Timestamp)

	switch author {
	case "user":
		for _, b := range blocks {
			if b.Type == "text" && b.Text != "" {
				return Event{Kind: UserMessage, Text: b.Text, Timestamp: ts}, true
			}
		}
		for _, b := range blocks {
			if b.Type == "tool_result" && b.ToolUseID != "" {
				return Event{Kind: ToolResult, ResultFor: b.ToolUseID, IsError: b.IsError, Timestamp: ts}, true
			}
		}
	case "assistant":
		for _, b := range blocks {
			if b.Type == "tool_use" && b.ID != "" {
				return Event{Kind: ToolCall, CallID: b.ID, Tool: b.Name, Input: b.Input, Timestamp: ts}, true
			}
		}
	}

	return Event{}, false
}

// contentBlocks decodes a message content field that is either an array of
// typed blocks or, in older user records, a bare string.
func contentBlocks(raw json.RawMessage) []rawBlock {
	if len(raw) == 0 {
		return nil
	}
	var blocks []rawBlock
	if err := json.Unmarshal(raw, &blocks); err == nil {
		return blocks
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return []rawBlock{{Type: "text", Text: s}}
	}
	return nil
}

func parseTimestamp(s string) time.Time {
	if s != "" {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return time.Now()
}
