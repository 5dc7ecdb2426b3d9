package event

import (
	"regexp"
	"strings"
)

var (
	// Common error prefixes: JS/Python exception names, Go panics, tool
	// failure banners. A message starting with one of these is a paste,
	// not an objective.
	errorPrefixPattern = regexp.MustCompile(`^\s*(\w+(Error|Exception)\b|Traceback\b|panic:|fatal:|error\[|ERROR\b|FAILED\b)`)

	// Stack frame lines: "  at fn (file.js:10:2)", 'File "x.py", line 3',
	// or Go's "\tpkg.fn(...)" frames.
	stackFramePattern = regexp.MustCompile(`(?m)(^\s+at\s+\S+|^\s*File "[^"]+", line \d+|\.(go|js|ts|py|rb|java):\d+)`)
)

// LikelyGoal reports whether a user message reads like a session objective
// rather than a pasted error, a stack trace, a code block, or a terse
// command. The first qualifying user message becomes the session goal when
// none is set.
func LikelyGoal(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "```") {
		return false
	}
	if errorPrefixPattern.MatchString(trimmed) {
		return false
	}
	if stackFramePattern.MatchString(trimmed) {
		return false
	}
	if len(strings.Fields(trimmed)) <= 2 && len(trimmed) < 20 {
		return false
	}
	return true
}

// maxGoalLen caps stored goal text.
const maxGoalLen = 500

// TruncateGoal trims and caps goal text at 500 characters.
func TruncateGoal(text string) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) > maxGoalLen {
		return string(runes[:maxGoalLen])
	}
	return trimmed
}
