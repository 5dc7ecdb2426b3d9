// Package ui renders session snapshots as a compact terminal panel. It is
// a leaf package with no internal imports beyond the data types it draws.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mklatt/ontrack/internal/assess"
	"github.com/mklatt/ontrack/internal/event"
	"github.com/mklatt/ontrack/internal/session"
)

// Status colors.
var (
	colorOnTrack  = lipgloss.Color("#22c55e")
	colorHeadsUp  = lipgloss.Color("#d97706")
	colorDrifting = lipgloss.Color("#f59e0b")
	colorStuck    = lipgloss.Color("#dc2626")
	colorDimmed   = lipgloss.Color("#6b7280")
	colorBright   = lipgloss.Color("#f9fafb")
	colorBorder   = lipgloss.Color("#4b5563")
	colorAdvice   = lipgloss.Color("#3b82f6")
)

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	styleGoal = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBright)

	styleDimmed = lipgloss.NewStyle().
			Foreground(colorDimmed)

	styleAdvice = lipgloss.NewStyle().
			Foreground(colorAdvice)

	styleFailed = lipgloss.NewStyle().
			Foreground(colorStuck)
)

const (
	barWidth     = 20
	recentShown  = 8
	detailColumn = 48
)

// StatusColor returns the color for an assessment status.
func StatusColor(s assess.Status) lipgloss.Color {
	switch s {
	case assess.OnTrack:
		return colorOnTrack
	case assess.HeadsUp:
		return colorHeadsUp
	case assess.Drifting:
		return colorDrifting
	case assess.Stuck:
		return colorStuck
	default:
		return colorDimmed
	}
}

// StatusGlyph returns a glyph representing an assessment status.
func StatusGlyph(s assess.Status) string {
	switch s {
	case assess.OnTrack:
		return "✓"
	case assess.HeadsUp:
		return "◌"
	case assess.Drifting:
		return "◍"
	case assess.Stuck:
		return "✗"
	default:
		return "·"
	}
}

// Renderer draws snapshots to a writer, clearing the previous frame each
// time so the panel updates in place.
type Renderer struct {
	out       io.Writer
	prevLines int
	now       func() time.Time
}

// NewRenderer creates a renderer targeting the given writer.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out, now: time.Now}
}

// Render draws a snapshot, replacing the previously drawn frame.
func (r *Renderer) Render(snap session.Snapshot) {
	frame := r.View(snap)
	if r.prevLines > 0 {
		fmt.Fprintf(r.out, "\033[%dA\033[J", r.prevLines)
	}
	fmt.Fprintln(r.out, frame)
	r.prevLines = strings.Count(frame, "\n") + 2
}

// View renders a snapshot to a string.
func (r *Renderer) View(snap session.Snapshot) string {
	var b strings.Builder

	b.WriteString(headerLine(snap, r.now()))
	b.WriteString("\n")

	if snap.Assessment != nil {
		b.WriteString(assessmentLines(*snap.Assessment))
	} else {
		b.WriteString(styleDimmed.Render("no assessment yet"))
	}
	b.WriteString("\n\n")
	b.WriteString(recentCalls(snap.Events))

	return stylePanel.Render(b.String())
}

func headerLine(snap session.Snapshot, now time.Time) string {
	elapsed := now.Sub(snap.StartTime).Round(time.Second)
	left := styleDimmed.Render(fmt.Sprintf("%s · %s", snap.ProjectSlug, elapsed))

	goal := snap.Goal
	if goal == "" {
		goal = styleDimmed.Render("no goal set (use `ontrack goal`)")
	} else {
		goal = styleGoal.Render(goal)
	}
	return left + "\n" + goal + "\n"
}

func assessmentLines(a assess.Assessment) string {
	color := StatusColor(a.Status)
	badge := lipgloss.NewStyle().Bold(true).Foreground(color).
		Render(fmt.Sprintf("%s %s", StatusGlyph(a.Status), a.Status))

	var b strings.Builder
	b.WriteString(badge)
	b.WriteString("  ")
	b.WriteString(scoreBar(a.Score, color))
	b.WriteString(styleDimmed.Render(fmt.Sprintf(" %d/100", a.Score)))
	b.WriteString("\n")
	b.WriteString(a.Reason)
	if a.Suggestion != "" {
		b.WriteString("\n")
		b.WriteString(styleAdvice.Render("→ " + a.Suggestion))
	}
	return b.String()
}

func scoreBar(score int, color lipgloss.Color) string {
	filled := score * barWidth / 100
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

func recentCalls(events []event.Event) string {
	calls := make([]event.Event, 0, recentShown)
	for i := len(events) - 1; i >= 0 && len(calls) < recentShown; i-- {
		if events[i].Kind == event.ToolCall {
			calls = append(calls, events[i])
		}
	}
	if len(calls) == 0 {
		return styleDimmed.Render("waiting for tool activity")
	}

	var b strings.Builder
	for i := len(calls) - 1; i >= 0; i-- {
		c := calls[i]
		line := fmt.Sprintf("%-14s %s", c.Tool, callDetail(c))
		if c.Failed {
			line = styleFailed.Render(line + "  ✗")
		} else {
			line = styleDimmed.Render(line)
		}
		b.WriteString(line)
		if i > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func callDetail(e event.Event) string {
	for _, key := range []string{"command", "file_path", "pattern", "path", "url", "query"} {
		if v, ok := e.Input[key].(string); ok && v != "" {
			return truncate(v, detailColumn)
		}
	}
	return ""
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
