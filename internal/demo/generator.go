// Package demo writes a synthetic transcript so the watcher can be tried
// without a live coding session. The generator appends records shaped like
// real session logs (user messages, assistant tool_use blocks, matching
// tool_result blocks) on a fixed tick, cycling through behavioral phases
// that exercise the detectors: productive editing, a command retry loop,
// an error streak, and a read-only stretch.
package demo

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"
)

type phase struct {
	name  string
	ticks int
}

var script = []phase{
	{name: "productive", ticks: 14},
	{name: "loop", ticks: 10},
	{name: "errors", ticks: 8},
	{name: "reading", ticks: 12},
	{name: "recovery", ticks: 14},
}

// Generator appends synthetic records to a transcript file.
type Generator struct {
	path     string
	interval time.Duration
	tick     int
	callSeq  int
}

// NewGenerator creates a generator writing to path.
func NewGenerator(path string, interval time.Duration) *Generator {
	if interval <= 0 {
		interval = 700 * time.Millisecond
	}
	return &Generator{path: path, interval: interval}
}

// Run emits the scripted transcript until the script ends or done closes.
func (g *Generator) Run(done <-chan struct{}) error {
	if err := g.emit(userRecord("Fix the retry logic in the sync worker so failed uploads are retried with backoff")); err != nil {
		return err
	}

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	total := 0
	for _, p := range script {
		total += p.ticks
	}

	for g.tick < total {
		select {
		case <-done:
			return nil
		case <-ticker.C:
			g.tick++
			if err := g.step(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generator) step() error {
	switch g.currentPhase() {
	case "productive":
		return g.emitCall("Edit", map[string]any{"file_path": "internal/sync/worker.go"}, false, "ok")
	case "loop":
		return g.emitCall("Bash", map[string]any{"command": "go test ./internal/sync/"}, true,
			"--- FAIL: TestRetryBackoff (0.01s)\n    worker_test.go:42: expected 3 attempts, got 1")
	case "errors":
		cmds := []string{"go build ./...", "go vet ./...", "golangci-lint run"}
		return g.emitCall("Bash", map[string]any{"command": cmds[g.tick%len(cmds)]}, true,
			"internal/sync/worker.go:88: undefined: backoffSchedule")
	case "reading":
		files := []string{"internal/sync/worker.go", "internal/sync/queue.go", "internal/sync/backoff.go"}
		return g.emitCall("Read", map[string]any{"file_path": files[g.tick%len(files)]}, false, "…")
	case "recovery":
		if g.tick%2 == 0 {
			return g.emitCall("Edit", map[string]any{"file_path": "internal/sync/backoff.go"}, false, "ok")
		}
		return g.emitCall("Bash", map[string]any{"command": "go test ./internal/sync/"}, false,
			"ok  \tinternal/sync\t0.31s")
	}
	return nil
}

func (g *Generator) currentPhase() string {
	remaining := g.tick
	for _, p := range script {
		if remaining <= p.ticks {
			return p.name
		}
		remaining -= p.ticks
	}
	return script[len(script)-1].name
}

func (g *Generator) emitCall(tool string, input map[string]any, failed bool, result string) error {
	g.callSeq++
	id := fmt.Sprintf("toolu_demo_%04d_%04x", g.callSeq, rand.Intn(0xffff))
	if err := g.emit(toolUseRecord(id, tool, input)); err != nil {
		return err
	}
	return g.emit(toolResultRecord(id, result, failed))
}

func (g *Generator) emit(rec map[string]any) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(g.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}

func userRecord(text string) map[string]any {
	return map[string]any{
		"type":      "user",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"message": map[string]any{
			"role":    "user",
			"content": text,
		},
	}
}

func toolUseRecord(id, tool string, input map[string]any) map[string]any {
	return map[string]any{
		"type":      "assistant",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"message": map[string]any{
			"role": "assistant",
			"content": []map[string]any{
				{"type": "tool_use", "id": id, "name": tool, "input": input},
			},
		},
	}
}

func toolResultRecord(id, content string, isError bool) map[string]any {
	return map[string]any{
		"type":      "user",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"message": map[string]any{
			"role": "user",
			"content": []map[string]any{
				{"type": "tool_result", "tool_use_id": id, "content": content, "is_error": isError},
			},
		},
	}
}
