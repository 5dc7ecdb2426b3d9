package event

import (
	"encoding/json"
	"time"
)

// Kind tags the closed set of event variants. The variant is decided once
// at parse time; downstream consumers switch on Kind and never re-inspect
// raw record shapes.
type Kind int

const (
	UserMessage Kind = iota
	ToolCall
	ToolResult
)

var kindNames = map[Kind]string{
	UserMessage: "user_message",
	ToolCall:    "tool_call",
	ToolResult:  "tool_result",
}

var kindFromName = map[string]Kind{
	"user_message": UserMessage,
	"tool_call":    ToolCall,
	"tool_result":  ToolResult,
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if v, ok := kindFromName[s]; ok {
		*k = v
	}
	return nil
}

// Event is one normalized transcript record. Only the fields for its Kind
// are meaningful; the rest stay zero.
type Event struct {
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	// UserMessage
	Text string `json:"text,omitempty"`

	// ToolCall. Failed starts false and is set at most once, by
	// reconciliation, when the matching result arrives.
	CallID string         `json:"callId,omitempty"`
	Tool   string         `json:"tool,omitempty"`
	Input  map[string]any `json:"input,omitempty"`
	Failed bool           `json:"failed,omitempty"`

	// ToolResult. Transient: retained only so late calls can still match.
	ResultFor string `json:"resultFor,omitempty"`
	IsError   bool   `json:"isError,omitempty"`
}
