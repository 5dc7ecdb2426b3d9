// Package goalstore owns the on-disk goal and pid bookkeeping under the
// state directory. The monitoring core only ever calls Read and Write; the
// file layout is nobody else's business.
package goalstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) goalPath(sessionID string) string {
	return filepath.Join(s.root, "goals", sessionID)
}

// Read returns the stored goal for a session, or "" when none is set.
func (s *Store) Read(sessionID string) (string, error) {
	data, err := os.ReadFile(s.goalPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read goal: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Write stores the goal for a session, creating the layout as needed.
func (s *Store) Write(sessionID, text string) error {
	dir := filepath.Join(s.root, "goals")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create goal dir: %w", err)
	}
	if err := os.WriteFile(s.goalPath(sessionID), []byte(text+"\n"), 0644); err != nil {
		return fmt.Errorf("write goal: %w", err)
	}
	return nil
}

// ModTime returns when the goal file last changed. A zero time means no
// goal file exists. The monitor polls this to pick up goals written by
// another process ("ontrack goal ...").
func (s *Store) ModTime(sessionID string) time.Time {
	info, err := os.Stat(s.goalPath(sessionID))
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
