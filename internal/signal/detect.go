package signal

import (
	"strings"

	"github.com/mklatt/ontrack/internal/event"
)

const (
	// recentCallWindow is how many of the newest tool calls the
	// call-oriented detectors look at.
	recentCallWindow = 15
	// noProgressWindow is how many of the newest events (of any kind)
	// the no-progress detector looks at.
	noProgressWindow = 20
	// noProgressMinEvents suppresses the detector on very young sessions.
	noProgressMinEvents = 10

	loopThreshold      = 3
	stuckFileThreshold = 5
	streakThreshold    = 3
	paralysisThreshold = 8
	scopeThreshold     = 3
	momentumThreshold  = 2

	// normalizedCommandLen is how much of a Bash command is compared when
	// looking for loops.
	normalizedCommandLen = 80
)

var editTools = map[string]bool{
	"Edit":         true,
	"Write":        true,
	"MultiEdit":    true,
	"NotebookEdit": true,
}

var readTools = map[string]bool{
	"Read":      true,
	"Grep":      true,
	"Glob":      true,
	"LS":        true,
	"WebFetch":  true,
	"WebSearch": true,
}

func isBash(ev event.Event) bool {
	return ev.Tool == "Bash"
}

func isEdit(ev event.Event) bool {
	return editTools[ev.Tool]
}

func isRead(ev event.Event) bool {
	return readTools[ev.Tool]
}

// inputString pulls a string field out of a tool call's input map.
func inputString(ev event.Event, key string) string {
	if v, ok := ev.Input[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func commandOf(ev event.Event) string {
	return inputString(ev, "command")
}

func fileOf(ev event.Event) string {
	return inputString(ev, "file_path")
}

// Detect evaluates all detectors over the full event log and the current
// goal. Detectors are independent and order-insensitive with respect to
// each other.
func Detect(events []event.Event, goal string) Set {
	calls := recentToolCalls(events, recentCallWindow)
	return Set{
		Loop:         detectLoop(calls),
		StuckOnFile:  detectStuckOnFile(calls),
		ErrorStreak:  detectErrorStreak(calls),
		Paralysis:    detectParalysis(calls),
		ScopeCreep:   detectScopeCreep(calls, goal),
		GoodMomentum: detectGoodMomentum(calls),
		NoProgress:   detectNoProgress(events),
	}
}

// recentToolCalls returns the newest n tool-call events in log order.
func recentToolCalls(events []event.Event, n int) []event.Event {
	var calls []event.Event
	for i := len(events) - 1; i >= 0 && len(calls) < n; i-- {
		if events[i].Kind == event.ToolCall {
			calls = append(calls, events[i])
		}
	}
	// Reverse back into log order.
	for i, j := 0, len(calls)-1; i < j; i, j = i+1, j-1 {
		calls[i], calls[j] = calls[j], calls[i]
	}
	return calls
}

func normalizeCommand(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if len(cmd) > normalizedCommandLen {
		cmd = cmd[:normalizedCommandLen]
	}
	return cmd
}

func detectLoop(calls []event.Event) Loop {
	counts := make(map[string]int)
	var top string
	var topCount int
	for _, c := range calls {
		if !isBash(c) {
			continue
		}
		cmd := normalizeCommand(commandOf(c))
		if cmd == "" {
			continue
		}
		counts[cmd]++
		if counts[cmd] > topCount {
			top, topCount = cmd, counts[cmd]
		}
	}
	if topCount >= loopThreshold {
		return Loop{Detected: true, Command: top, Count: topCount}
	}
	return Loop{}
}

func detectStuckOnFile(calls []event.Event) StuckOnFile {
	counts := make(map[string]int)
	edits := 0
	var top string
	var topCount int
	for _, c := range calls {
		if !isEdit(c) {
			continue
		}
		edits++
		file := fileOf(c)
		if file == "" {
			continue
		}
		counts[file]++
		if counts[file] > topCount {
			top, topCount = file, counts[file]
		}
	}
	if edits >= stuckFileThreshold && topCount >= stuckFileThreshold {
		return StuckOnFile{Detected: true, File: top, Count: topCount}
	}
	return StuckOnFile{}
}

func detectErrorStreak(calls []event.Event) ErrorStreak {
	longest, run := 0, 0
	for _, c := range calls {
		if c.Failed {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	if longest >= streakThreshold {
		return ErrorStreak{Detected: true, Length: longest}
	}
	return ErrorStreak{}
}

func detectParalysis(calls []event.Event) Paralysis {
	reads := 0
	for i := len(calls) - 1; i >= 0; i-- {
		if isEdit(calls[i]) {
			break
		}
		if isRead(calls[i]) {
			reads++
		}
	}
	if reads >= paralysisThreshold {
		return Paralysis{Detected: true, ReadCount: reads}
	}
	return Paralysis{}
}

// goalWords extracts the goal's significant words (longer than 3 chars).
func goalWords(goal string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(goal)) {
		w = strings.Trim(w, ".,;:!?\"'`()[]")
		if len(w) > 3 {
			words = append(words, w)
		}
	}
	return words
}

// incidentalPath reports whether a path is test/spec/config housekeeping
// that shouldn't count toward scope creep.
func incidentalPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.Contains(lower, "test") ||
		strings.Contains(lower, "spec") ||
		strings.Contains(lower, "config")
}

func detectScopeCreep(calls []event.Event, goal string) ScopeCreep {
	words := goalWords(goal)
	if len(words) == 0 {
		return ScopeCreep{}
	}
	seen := make(map[string]bool)
	var unrelated []string
	for _, c := range calls {
		if !isEdit(c) {
			continue
		}
		file := fileOf(c)
		if file == "" || seen[file] {
			continue
		}
		seen[file] = true
		if incidentalPath(file) {
			continue
		}
		lower := strings.ToLower(file)
		related := false
		for _, w := range words {
			if strings.Contains(lower, w) {
				related = true
				break
			}
		}
		if !related {
			unrelated = append(unrelated, file)
		}
	}
	if len(unrelated) >= scopeThreshold {
		return ScopeCreep{Detected: true, Files: unrelated}
	}
	return ScopeCreep{}
}

func detectGoodMomentum(calls []event.Event) GoodMomentum {
	count := 0
	for i := 0; i+1 < len(calls); i++ {
		if isEdit(calls[i]) && isBash(calls[i+1]) && !calls[i+1].Failed {
			count++
		}
	}
	if count >= momentumThreshold {
		return GoodMomentum{Detected: true, Count: count}
	}
	return GoodMomentum{}
}

func detectNoProgress(events []event.Event) NoProgress {
	if len(events) < noProgressMinEvents {
		return NoProgress{}
	}
	window := events
	if len(window) > noProgressWindow {
		window = window[len(window)-noProgressWindow:]
	}
	for _, ev := range window {
		if ev.Kind == event.ToolCall && isEdit(ev) {
			return NoProgress{}
		}
	}
	return NoProgress{Detected: true, Window: len(window)}
}
