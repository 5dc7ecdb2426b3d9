package assess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client calls an OpenAI-compatible chat-completions endpoint and asks it
// to score the session. Any deviation from the expected response shape is
// returned as an error so the scheduler can fall back.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
}

// ClientOptions configures the HTTP assessor.
type ClientOptions struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		model:   opts.Model,
		apiKey:  opts.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// verdictWire is the JSON object the assessor must return. Pointer fields
// distinguish missing from zero; missing score/status/reason is a failure.
type verdictWire struct {
	Score      *int    `json:"score"`
	Status     *string `json:"status"`
	Reason     *string `json:"reason"`
	Suggestion *string `json:"suggestion"`
}

const systemPrompt = `You supervise an AI coding session. Given the session goal, ` +
	`recent tool activity, and heuristic observations, judge whether the session ` +
	`is making progress toward the goal. Respond with a single JSON object: ` +
	`{"score": 0-100, "status": "ON_TRACK"|"HEADS_UP"|"DRIFTING"|"STUCK", ` +
	`"reason": "one sentence", "suggestion": "one sentence or null"}. No other text.`

func (c *Client) Assess(ctx context.Context, req Request) (Verdict, error) {
	if c.baseURL == "" {
		return Verdict{}, fmt.Errorf("assessor base URL is not configured")
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
		Temperature: 0.2,
		MaxTokens:   300,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Verdict{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Verdict{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Verdict{}, fmt.Errorf("status %s", resp.Status)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Verdict{}, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return Verdict{}, fmt.Errorf("response missing choices")
	}

	return parseVerdict(decoded.Choices[0].Message.Content)
}

// buildPrompt renders the request as plain text the model can read.
func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Goal: ")
	b.WriteString(req.Goal)
	b.WriteString("\n\nRecent tool calls (oldest first):\n")
	if len(req.Recent) == 0 {
		b.WriteString("(none)\n")
	}
	for _, c := range req.Recent {
		b.WriteString("- ")
		b.WriteString(c.Tool)
		if c.Detail != "" {
			b.WriteString(": ")
			b.WriteString(c.Detail)
		}
		if c.Failed {
			b.WriteString(" [FAILED]")
		}
		b.WriteString("\n")
	}
	b.WriteString("\nHeuristic observations: ")
	b.WriteString(req.Summary)
	b.WriteString("\n")
	return b.String()
}

// parseVerdict extracts and decodes the JSON object from the model's reply.
// Models wrap JSON in prose or code fences often enough that we scan for
// the first balanced object instead of decoding the raw content.
func parseVerdict(content string) (Verdict, error) {
	raw := extractJSON(content)
	var wire verdictWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Verdict{}, fmt.Errorf("parse verdict json: %w", err)
	}
	if wire.Score == nil || wire.Status == nil || wire.Reason == nil {
		return Verdict{}, fmt.Errorf("verdict missing required fields")
	}
	v := Verdict{
		Score:  *wire.Score,
		Status: *wire.Status,
		Reason: *wire.Reason,
	}
	if wire.Suggestion != nil {
		v.Suggestion = *wire.Suggestion
	}
	return v, nil
}

// extractJSON strips code fences and returns the first balanced JSON
// object within content, or the trimmed content when none is found.
func extractJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimLeft(trimmed, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		trimmed = strings.TrimSpace(trimmed)
	}
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	if obj, ok := extractJSONObject(trimmed); ok {
		return obj
	}
	return trimmed
}

func extractJSONObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escape := false
	for i, r := range text {
		if start == -1 {
			if r == '{' {
				start = i
				depth = 1
			}
			continue
		}
		if inString {
			if escape {
				escape = false
				continue
			}
			if r == '\\' {
				escape = true
				continue
			}
			if r == '"' {
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(text[start : i+1]), true
			}
		}
	}
	return "", false
}
