package goalstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

func (s *Store) pidPath(sessionID string) string {
	return filepath.Join(s.root, "pids", sessionID+".pid")
}

// WritePID records the monitor process watching a session.
func (s *Store) WritePID(sessionID string, pid int) error {
	dir := filepath.Join(s.root, "pids")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create pid dir: %w", err)
	}
	if err := os.WriteFile(s.pidPath(sessionID), []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return fmt.Errorf("write pid: %w", err)
	}
	return nil
}

// ClearPID removes the pid record. Missing files are fine.
func (s *Store) ClearPID(sessionID string) {
	_ = os.Remove(s.pidPath(sessionID))
}

// MonitorPID returns the recorded pid and whether that process is still
// alive. A stale pid file (process gone) reports 0, false.
func (s *Store) MonitorPID(sessionID string) (int, bool) {
	data, err := os.ReadFile(s.pidPath(sessionID))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	alive, err := process.PidExists(int32(pid))
	if err != nil || !alive {
		return 0, false
	}
	return pid, true
}
