// Package tail watches an append-only file and yields newly appended,
// complete lines. It polls rather than using filesystem notifications:
// change events for append-only growth proved unreliable on at least one
// target platform, and a cheap stat every 500ms is plenty.
package tail

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"time"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = 500 * time.Millisecond

// Handler receives each batch of newly appended lines. Every line is a
// complete, syntactically valid JSON document; malformed lines are dropped
// before the handler sees them.
type Handler func(lines [][]byte)

// Tailer reads a growing file forward-only from a byte cursor. The cursor
// is monotonically non-decreasing except on an explicit re-seek after
// truncation, and only ever advances past complete lines, so each line is
// delivered at most once.
//
// The cursor is owned by the poll loop; Tailer is not safe for concurrent
// use beyond running Run in one goroutine.
type Tailer struct {
	path     string
	interval time.Duration
	handler  Handler
	cursor   int64
}

func New(path string, interval time.Duration, h Handler) *Tailer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Tailer{path: path, interval: interval, handler: h}
}

// Cursor returns the current byte offset. Exposed for tests.
func (t *Tailer) Cursor() int64 {
	return t.cursor
}

// SeekEnd positions the cursor at the current end of file so history is not
// replayed. A missing file leaves the cursor at zero; the first successful
// poll will pick up from whatever gets written.
func (t *Tailer) SeekEnd() {
	info, err := os.Stat(t.path)
	if err != nil {
		t.cursor = 0
		return
	}
	t.cursor = info.Size()
}

// ReadAll reads the whole file from the beginning, leaving the cursor just
// past the last complete line. Used once at monitor startup for the initial
// full-history load.
func (t *Tailer) ReadAll() ([][]byte, error) {
	info, err := os.Stat(t.path)
	if err != nil {
		return nil, err
	}
	t.cursor = 0
	return t.readTo(info.Size())
}

// Run polls until ctx is cancelled. Transient stat/read errors are retried
// on the next tick and never terminate the loop. After cancellation the
// results of an in-flight read are discarded.
func (t *Tailer) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.poll(ctx)
		}
	}
}

func (t *Tailer) poll(ctx context.Context) {
	info, err := os.Stat(t.path)
	if err != nil {
		// File briefly missing (deleted/recreated mid-session); retry
		// on the next tick.
		return
	}

	size := info.Size()
	if size < t.cursor {
		// Truncated or rotated. Resume from the new end; the gap is
		// lost, which is acceptable — rotation is not a first-class
		// concern here.
		log.Printf("[tail] %s shrank (%d -> %d), resuming from new end", t.path, t.cursor, size)
		t.cursor = size
		return
	}
	if size == t.cursor {
		return
	}

	lines, err := t.readTo(size)
	if err != nil {
		return
	}
	if ctx.Err() != nil {
		// Stopped while reading; drop the batch.
		return
	}
	if len(lines) > 0 && t.handler != nil {
		t.handler(lines)
	}
}

// readTo reads the byte range [cursor, size), splits it on line boundaries,
// and returns the complete lines that parse as JSON. The cursor advances
// past the last complete line; a trailing partial line is left in place for
// the next poll.
func (t *Tailer) readTo(size int64) ([][]byte, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(t.cursor, io.SeekStart); err != nil {
		return nil, err
	}

	buf := make([]byte, size-t.cursor)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, err
	}

	last := bytes.LastIndexByte(buf, '\n')
	if last < 0 {
		// No complete line yet.
		return nil, nil
	}
	complete := buf[:last+1]
	t.cursor += int64(last + 1)

	var lines [][]byte
	for _, line := range bytes.Split(complete, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			// Malformed lines are dropped, never raised.
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
