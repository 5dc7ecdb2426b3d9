// Package monitor owns the session monitoring loop: it drives the tailer,
// feeds reconciled events into the log, schedules assessments, and hands
// read-only snapshots to presenters. One monitor watches one session.
package monitor

import (
	"context"
	"log"
	"time"

	"github.com/mklatt/ontrack/internal/assess"
	"github.com/mklatt/ontrack/internal/config"
	"github.com/mklatt/ontrack/internal/event"
	"github.com/mklatt/ontrack/internal/goalstore"
	"github.com/mklatt/ontrack/internal/session"
	"github.com/mklatt/ontrack/internal/signal"
	"github.com/mklatt/ontrack/internal/tail"
)

// Presenter receives a state snapshot whenever the monitor renders. It must
// not block for long and must never mutate the snapshot.
type Presenter func(session.Snapshot)

// Monitor multiplexes the named trigger sources — tail batches, the render
// tick, goal updates, assessment completions — into one serialized
// event-processing loop. All session state is owned by that loop; nothing
// else mutates it.
type Monitor struct {
	cfg    *config.Config
	state  *session.State
	tailer *tail.Tailer
	sched  *assess.Scheduler
	goals  *goalstore.Store

	presenters []Presenter

	batches chan [][]byte
	// results is buffered so an assessment finishing after stop does not
	// leak its goroutine; the result is simply never read.
	results chan assess.Assessment

	goalSeen time.Time // mtime of the goal file as last observed
}

func New(cfg *config.Config, transcriptPath, sessionID, projectSlug string, sched *assess.Scheduler, goals *goalstore.Store) *Monitor {
	m := &Monitor{
		cfg:     cfg,
		state:   session.NewState(sessionID, projectSlug),
		sched:   sched,
		goals:   goals,
		batches: make(chan [][]byte, 16),
		results: make(chan assess.Assessment, 1),
	}
	m.tailer = tail.New(transcriptPath, cfg.Monitor.PollInterval, func(lines [][]byte) {
		m.batches <- lines
	})
	return m
}

// AddPresenter registers a presentation hook. Must be called before Run.
func (m *Monitor) AddPresenter(p Presenter) {
	m.presenters = append(m.presenters, p)
}

// SetGoal seeds the goal before Run, e.g. from a -goal flag.
func (m *Monitor) SetGoal(text string) {
	m.state.Goal = event.TruncateGoal(text)
}

// Snapshot exposes the current state. Only safe before Run starts or from
// within the monitor's own presenters.
func (m *Monitor) Snapshot() session.Snapshot {
	return m.state.Snapshot()
}

// Run executes the monitoring loop until ctx is cancelled. Stopping halts
// polling and rendering; an in-flight assessment completes on its own but
// its result is discarded.
func (m *Monitor) Run(ctx context.Context) {
	m.loadStoredGoal()
	m.loadHistory()

	go m.tailer.Run(ctx)

	renderTicker := time.NewTicker(m.cfg.Monitor.RenderInterval)
	defer renderTicker.Stop()

	// A dashboard is never shown empty: assess eagerly when history
	// already holds events (and a goal exists).
	m.maybeAssess(ctx)
	m.render()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[monitor] stopped")
			return
		case lines := <-m.batches:
			m.ingest(lines)
			m.maybeAssess(ctx)
		case a := <-m.results:
			m.sched.Finish()
			m.state.Assessment = &a
			// Completed assessments re-render immediately rather than
			// waiting for the next tick.
			m.render()
			m.maybeAssess(ctx)
		case <-renderTicker.C:
			m.checkGoalFile(ctx)
			m.render()
		}
	}
}

// loadStoredGoal picks up a goal persisted by an earlier run or written by
// "ontrack goal" before the monitor started.
func (m *Monitor) loadStoredGoal() {
	if m.state.Goal != "" {
		m.goalSeen = m.goals.ModTime(m.state.SessionID)
		return
	}
	stored, err := m.goals.Read(m.state.SessionID)
	if err != nil {
		log.Printf("[monitor] goal store read failed: %v", err)
		return
	}
	if stored != "" {
		m.state.Goal = event.TruncateGoal(stored)
	}
	m.goalSeen = m.goals.ModTime(m.state.SessionID)
}

// loadHistory performs the one-time full read of the transcript so the
// event log starts complete. A missing transcript just means the session
// has not written anything yet.
func (m *Monitor) loadHistory() {
	lines, err := m.tailer.ReadAll()
	if err != nil {
		log.Printf("[monitor] no transcript history yet: %v", err)
		m.tailer.SeekEnd()
		return
	}
	m.ingest(lines)
	log.Printf("[monitor] loaded %d historical events from transcript", m.state.Log.Len())
}

// ingest reconciles a batch of raw lines into the event log and applies
// the goal auto-capture side effect.
func (m *Monitor) ingest(lines [][]byte) {
	newCalls := 0
	for _, line := range lines {
		ev, ok := event.Parse(line)
		if !ok {
			continue
		}
		m.state.Log.Append(ev)

		switch ev.Kind {
		case event.ToolCall:
			newCalls++
		case event.UserMessage:
			m.maybeCaptureGoal(ev.Text)
		}
	}
	if newCalls > 0 {
		m.sched.ObserveToolCalls(newCalls)
	}
}

// maybeCaptureGoal adopts the first user message that reads like a real
// objective as the session goal, when none is set.
func (m *Monitor) maybeCaptureGoal(text string) {
	if m.state.Goal != "" || !event.LikelyGoal(text) {
		return
	}
	m.state.Goal = event.TruncateGoal(text)
	if err := m.goals.Write(m.state.SessionID, m.state.Goal); err != nil {
		log.Printf("[monitor] goal store write failed: %v", err)
	}
	// Our own write must not read back as a manual update.
	m.goalSeen = m.goals.ModTime(m.state.SessionID)
	log.Printf("[monitor] goal captured: %s", m.state.Goal)
}

// checkGoalFile detects goals written by another process. A manual goal
// update force-triggers an assessment, bypassing the counter.
func (m *Monitor) checkGoalFile(ctx context.Context) {
	mt := m.goals.ModTime(m.state.SessionID)
	if mt.IsZero() || !mt.After(m.goalSeen) {
		return
	}
	m.goalSeen = mt
	text, err := m.goals.Read(m.state.SessionID)
	if err != nil || text == "" || text == m.state.Goal {
		return
	}
	m.state.Goal = event.TruncateGoal(text)
	log.Printf("[monitor] goal updated: %s", m.state.Goal)
	m.sched.Force()
	m.maybeAssess(ctx)
}

// maybeAssess starts a new assessment when one is due. The assessor call
// is the only genuinely blocking operation, so it runs off the loop;
// tailing and rendering continue while it is pending, but a second
// assessment cannot start until this one lands.
func (m *Monitor) maybeAssess(ctx context.Context) {
	if !m.sched.Due(m.state.Goal, m.state.Log.Len()) {
		return
	}
	m.sched.Begin()

	events := m.state.Log.Events()
	signals := signal.Detect(events, m.state.Goal)
	req := assess.Request{
		Goal:    m.state.Goal,
		Recent:  assess.SummarizeCalls(events, 20),
		Signals: signals,
		Summary: signal.Summary(signals),
	}

	go func() {
		m.results <- m.sched.Assess(ctx, req)
	}()
}

func (m *Monitor) render() {
	snap := m.state.Snapshot()
	for _, p := range m.presenters {
		p(snap)
	}
}
