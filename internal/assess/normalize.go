package assess

import "strings"

// maxReasonLen caps free-text fields coming back from the assessor.
const maxReasonLen = 140

// NormalizeStatus matches a label from the assessor against the four known
// statuses, tolerating case, spaces, and hyphens. Unrecognized labels
// default to HEADS_UP.
func NormalizeStatus(label string) Status {
	key := strings.ToUpper(strings.TrimSpace(label))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	if s, ok := statusFromName[key]; ok {
		return s
	}
	return HeadsUp
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func capText(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > maxReasonLen {
		return string(runes[:maxReasonLen])
	}
	return s
}
