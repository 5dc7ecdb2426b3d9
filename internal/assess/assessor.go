package assess

import (
	"context"

	"github.com/mklatt/ontrack/internal/event"
	"github.com/mklatt/ontrack/internal/signal"
)

// maxSummaries is the most tool-call summaries handed to the assessor.
const maxSummaries = 20

// detailLen caps the type-specific detail on each summary.
const detailLen = 80

// Request is everything the external assessor sees.
type Request struct {
	Goal    string
	Recent  []CallSummary // newest last, at most maxSummaries
	Signals signal.Set
	Summary string // textual signal summary
}

// CallSummary is one tool call condensed for the assessor: the tool name, a
// type-specific truncated detail, and the failure flag.
type CallSummary struct {
	Tool   string `json:"tool"`
	Detail string `json:"detail,omitempty"`
	Failed bool   `json:"failed,omitempty"`
}

// Verdict is a raw, un-normalized assessor response. The scheduler owns
// normalization and fallback.
type Verdict struct {
	Score      int
	Status     string
	Reason     string
	Suggestion string
}

// Assessor is the external scoring boundary. Any error — timeout, malformed
// response, network or auth failure — makes the scheduler fall back to the
// heuristic score; errors never propagate past it.
type Assessor interface {
	Assess(ctx context.Context, req Request) (Verdict, error)
}

// SummarizeCalls condenses the newest tool calls, oldest first.
func SummarizeCalls(events []event.Event, max int) []CallSummary {
	var calls []event.Event
	for i := len(events) - 1; i >= 0 && len(calls) < max; i-- {
		if events[i].Kind == event.ToolCall {
			calls = append(calls, events[i])
		}
	}
	out := make([]CallSummary, 0, len(calls))
	for i := len(calls) - 1; i >= 0; i-- {
		c := calls[i]
		out = append(out, CallSummary{
			Tool:   c.Tool,
			Detail: callDetail(c),
			Failed: c.Failed,
		})
	}
	return out
}

// callDetail picks the most telling input field for a tool: the command for
// Bash, the file path for edits and reads, the pattern for searches.
func callDetail(c event.Event) string {
	keys := []string{"command", "file_path", "pattern", "path", "url", "query"}
	for _, k := range keys {
		if v, ok := c.Input[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return truncateDetail(s)
			}
		}
	}
	return ""
}

func truncateDetail(s string) string {
	runes := []rune(s)
	if len(runes) > detailLen {
		return string(runes[:detailLen])
	}
	return s
}
