package event

// Log is the append-only event sequence for one session. Insertion order is
// arrival order; entries are never reordered or truncated while the session
// runs. The Log also owns reconciliation: each appended ToolResult resolves
// the ToolCall sharing its id, wherever that call sits in the log, setting
// Failed exactly once. Results that arrive before their call are retained
// and resolved when the call shows up.
//
// Not safe for concurrent use; the monitoring loop is the single owner.
type Log struct {
	events  []Event
	calls   map[string]int // CallID -> index into events
	pending []Event        // ToolResults with no matching call yet
}

func NewLog() *Log {
	return &Log{calls: make(map[string]int)}
}

// Append adds ev to the log and runs reconciliation for it.
func (l *Log) Append(ev Event) {
	idx := len(l.events)
	l.events = append(l.events, ev)

	switch ev.Kind {
	case ToolCall:
		// Duplicate ids within a session are undefined behavior per the
		// data model; last one wins for matching purposes.
		l.calls[ev.CallID] = idx
		l.resolvePending(ev.CallID)
	case ToolResult:
		if !l.resolve(ev.ResultFor, ev.IsError) {
			l.pending = append(l.pending, ev)
		}
	}
}

// resolve back-fills the Failed flag on the call with the given id.
// Returns false when no such call exists yet (out-of-order delivery).
func (l *Log) resolve(callID string, isError bool) bool {
	idx, ok := l.calls[callID]
	if !ok {
		return false
	}
	l.events[idx].Failed = isError
	return true
}

func (l *Log) resolvePending(callID string) {
	n := 0
	for _, res := range l.pending {
		if res.ResultFor == callID && l.resolve(callID, res.IsError) {
			continue
		}
		l.pending[n] = res
		n++
	}
	l.pending = l.pending[:n]
}

// Events returns the backing slice. Callers must treat it as read-only;
// presenters get copies via the session snapshot instead.
func (l *Log) Events() []Event {
	return l.events
}

func (l *Log) Len() int {
	return len(l.events)
}

// CopyEvents returns an independent copy of the log for snapshots.
func (l *Log) CopyEvents() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}
